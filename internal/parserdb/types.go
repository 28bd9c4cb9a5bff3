package parserdb

import (
	"sdlkit/internal/ast"
	"sdlkit/internal/connector"
	"sdlkit/internal/diag"
)

// resolveTypes classifies every field as scalar (built-in, enum, or
// composite) or relation, enforcing the invariant that each field lands in
// exactly one of the two maps.
func (db *DB) resolveTypes(diags *diag.Diagnostics) {
	caps := db.conn.Capabilities()

	for mid := range db.Schema.Models {
		model := &db.Schema.Models[mid]
		for fid := range model.Fields {
			f := &model.Fields[fid]
			key := ModelFieldKey{Model: ast.ModelID(mid), Field: ast.FieldID(fid)}
			typeName := f.Type.Name

			if scalar, ok := connector.ScalarTypeFromName(typeName); ok {
				db.scalarFields[key] = &ScalarField{
					Model: key.Model,
					Field: key.Field,
					Type:  ScalarFieldType{Kind: ScalarBuiltIn, BuiltIn: scalar},
				}
				continue
			}
			nameID, _ := db.interner.Lookup(typeName)
			if eid, ok := db.enumsByName[nameID]; ok {
				if !caps.Enums {
					diags.AddErrorf(f.Type.Span, "Enums are not supported for provider %q.", db.conn.Name())
				}
				db.scalarFields[key] = &ScalarField{
					Model: key.Model,
					Field: key.Field,
					Type:  ScalarFieldType{Kind: ScalarEnum, Enum: eid},
				}
				continue
			}
			if cid, ok := db.compositesByName[nameID]; ok {
				if !caps.CompositeTypes {
					diags.AddErrorf(f.Type.Span, "Composite types are not supported for provider %q.", db.conn.Name())
				}
				db.scalarFields[key] = &ScalarField{
					Model: key.Model,
					Field: key.Field,
					Type:  ScalarFieldType{Kind: ScalarComposite, Composite: cid},
				}
				continue
			}
			if rid, ok := db.modelsByName[nameID]; ok {
				db.relationFields[key] = &RelationField{
					Model:           key.Model,
					Field:           key.Field,
					ReferencedModel: rid,
					Name:            NoString,
					FieldSpan:       f.Span,
				}
				continue
			}
			diags.AddErrorf(f.Type.Span, "Type %q is neither a built-in type, nor refers to another model, composite type, or enum.", typeName)
			// Recorded as a plain string scalar so later passes stay
			// consistent.
			db.scalarFields[key] = &ScalarField{
				Model: key.Model,
				Field: key.Field,
				Type:  ScalarFieldType{Kind: ScalarBuiltIn, BuiltIn: connector.ScalarString},
			}
		}
	}

	for cid := range db.Schema.CompositeTypes {
		ct := &db.Schema.CompositeTypes[cid]
		for fid := range ct.Fields {
			f := &ct.Fields[fid]
			key := CompositeFieldKey{Composite: ast.CompositeTypeID(cid), Field: ast.FieldID(fid)}
			typeName := f.Type.Name

			if scalar, ok := connector.ScalarTypeFromName(typeName); ok {
				db.compositeScalarFields[key] = &ScalarField{
					Field: key.Field,
					Type:  ScalarFieldType{Kind: ScalarBuiltIn, BuiltIn: scalar},
				}
				continue
			}
			nameID, _ := db.interner.Lookup(typeName)
			if eid, ok := db.enumsByName[nameID]; ok {
				db.compositeScalarFields[key] = &ScalarField{
					Field: key.Field,
					Type:  ScalarFieldType{Kind: ScalarEnum, Enum: eid},
				}
				continue
			}
			if nested, ok := db.compositesByName[nameID]; ok {
				db.compositeScalarFields[key] = &ScalarField{
					Field: key.Field,
					Type:  ScalarFieldType{Kind: ScalarComposite, Composite: nested},
				}
				continue
			}
			if _, ok := db.modelsByName[nameID]; ok {
				diags.AddErrorf(f.Type.Span, "Composite type fields cannot refer to the model %q. Only scalars, enums, and other composite types are allowed.", typeName)
				continue
			}
			diags.AddErrorf(f.Type.Span, "Type %q is neither a built-in type, nor refers to another model, composite type, or enum.", typeName)
		}
	}
}
