// Package parserdb builds the fully resolved database behind the schema
// toolchain. It walks the CST exactly once per pass: a names pass interns
// identifiers and detects duplicates, a types pass classifies every field
// as scalar or relation, an attributes pass resolves and validates each
// attribute against the active connector, and a relations pass pairs
// relation fields into their final shapes.
//
// Validation is accumulate-all: passes record diagnostics and keep going,
// so a document with five independent problems reports five errors in one
// run.
package parserdb

import (
	"sdlkit/internal/ast"
	"sdlkit/internal/connector"
	"sdlkit/internal/diag"
)

// DB is the resolved parser database. It is built once per parse and never
// mutated afterwards.
type DB struct {
	Schema *ast.Schema

	conn     connector.Connector
	interner Interner

	modelsByName     map[StringID]ast.ModelID
	enumsByName      map[StringID]ast.EnumID
	compositesByName map[StringID]ast.CompositeTypeID
	modelFields      map[ast.ModelID]map[StringID]ast.FieldID
	compositeFields  map[ast.CompositeTypeID]map[StringID]ast.FieldID

	scalarFields          map[ModelFieldKey]*ScalarField
	relationFields        map[ModelFieldKey]*RelationField
	compositeScalarFields map[CompositeFieldKey]*ScalarField

	modelAttributes map[ast.ModelID]*ModelAttributes
	enumAttributes  map[ast.EnumID]*EnumAttributes

	relations []Relation

	datasourceName string
}

// New resolves the given CST against a connector. Diagnostics accumulate
// into diags; the returned DB is always usable for best-effort consumers
// such as the reformatter, but lowering requires diags to be error-free.
func New(schema *ast.Schema, conn connector.Connector, diags *diag.Diagnostics) *DB {
	db := &DB{
		Schema:                schema,
		conn:                  conn,
		interner:              newInterner(),
		modelsByName:          make(map[StringID]ast.ModelID),
		enumsByName:           make(map[StringID]ast.EnumID),
		compositesByName:      make(map[StringID]ast.CompositeTypeID),
		modelFields:           make(map[ast.ModelID]map[StringID]ast.FieldID),
		compositeFields:       make(map[ast.CompositeTypeID]map[StringID]ast.FieldID),
		scalarFields:          make(map[ModelFieldKey]*ScalarField),
		relationFields:        make(map[ModelFieldKey]*RelationField),
		compositeScalarFields: make(map[CompositeFieldKey]*ScalarField),
		modelAttributes:       make(map[ast.ModelID]*ModelAttributes),
		enumAttributes:        make(map[ast.EnumID]*EnumAttributes),
	}
	if len(schema.Datasources) > 0 {
		db.datasourceName = schema.Datasources[0].Name.Name
	}
	db.resolveNames(diags)
	db.resolveTypes(diags)
	db.resolveAttributes(diags)
	db.resolveRelations(diags)
	return db
}

// ConnectorFor picks the connector for a schema from its first datasource's
// provider property, falling back to the permissive default connector when
// there is no datasource or the provider is unknown to the registry.
func ConnectorFor(schema *ast.Schema) connector.Connector {
	if len(schema.Datasources) > 0 {
		if sv, ok := schema.Datasources[0].Property("provider").(ast.StringValue); ok {
			if c, err := connector.ByName(sv.Value); err == nil {
				return c
			}
		}
	}
	return connector.Default()
}

// Connector returns the active connector.
func (db *DB) Connector() connector.Connector { return db.conn }

// Get returns the text behind an interned id.
func (db *DB) Get(id StringID) string { return db.interner.Get(id) }

// ModelByName resolves a model name.
func (db *DB) ModelByName(name string) (ast.ModelID, bool) {
	id, ok := db.interner.Lookup(name)
	if !ok {
		return 0, false
	}
	mid, ok := db.modelsByName[id]
	return mid, ok
}

// FieldByName resolves a field name on a model.
func (db *DB) FieldByName(model ast.ModelID, name string) (ast.FieldID, bool) {
	id, ok := db.interner.Lookup(name)
	if !ok {
		return 0, false
	}
	fid, ok := db.modelFields[model][id]
	return fid, ok
}

// ScalarField returns the resolved scalar field record, or nil when the
// field is not scalar.
func (db *DB) ScalarField(model ast.ModelID, field ast.FieldID) *ScalarField {
	return db.scalarFields[ModelFieldKey{Model: model, Field: field}]
}

// RelationField returns the resolved relation field record, or nil when
// the field is not a relation.
func (db *DB) RelationField(model ast.ModelID, field ast.FieldID) *RelationField {
	return db.relationFields[ModelFieldKey{Model: model, Field: field}]
}

// CompositeScalarField returns the resolved record of a composite type
// field.
func (db *DB) CompositeScalarField(ct ast.CompositeTypeID, field ast.FieldID) *ScalarField {
	return db.compositeScalarFields[CompositeFieldKey{Composite: ct, Field: field}]
}

// ModelAttributes returns the resolved block-level state of a model.
func (db *DB) ModelAttributes(model ast.ModelID) *ModelAttributes {
	return db.modelAttributes[model]
}

// EnumAttributes returns the resolved state of an enum.
func (db *DB) EnumAttributes(enum ast.EnumID) *EnumAttributes {
	return db.enumAttributes[enum]
}

// Relations returns every resolved relation.
func (db *DB) Relations() []Relation { return db.relations }
