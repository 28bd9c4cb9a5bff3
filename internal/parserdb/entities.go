package parserdb

import (
	"sdlkit/internal/ast"
	"sdlkit/internal/connector"
	"sdlkit/internal/diag"
)

// ModelFieldKey addresses one field of one model. Every key appears in
// exactly one of the scalar-field or relation-field maps, never both and
// never neither; lowering enforces this with a panic.
type ModelFieldKey struct {
	Model ast.ModelID
	Field ast.FieldID
}

// CompositeFieldKey addresses one field of one composite type.
type CompositeFieldKey struct {
	Composite ast.CompositeTypeID
	Field     ast.FieldID
}

// ScalarKind discriminates what a scalar field's type refers to.
type ScalarKind int

const (
	ScalarBuiltIn ScalarKind = iota
	ScalarEnum
	ScalarComposite
)

// ScalarFieldType is the resolved type of a scalar field.
type ScalarFieldType struct {
	Kind      ScalarKind
	BuiltIn   connector.ScalarType
	Enum      ast.EnumID
	Composite ast.CompositeTypeID
}

// ScalarField is the resolved attribute record for a non-relation field.
type ScalarField struct {
	Model       ast.ModelID
	Field       ast.FieldID
	Type        ScalarFieldType
	IsIgnored   bool
	IsUpdatedAt bool
	MappedName  StringID
	Default     *DefaultAttribute
	NativeType  *connector.NativeType
}

// DefaultAttribute is a resolved `@default`.
type DefaultAttribute struct {
	Value      ast.Expression
	MappedName StringID
	Span       diag.Span
}

// RelationField is the resolved attribute record for a relation field.
type RelationField struct {
	Model           ast.ModelID
	Field           ast.FieldID
	ReferencedModel ast.ModelID
	Name            StringID
	// Fields and References hold the resolved `fields:` / `references:`
	// arguments. HasFieldsArg is true whenever the argument was present in
	// source, even if none of its entries resolved.
	Fields           []ast.FieldID
	HasFieldsArg     bool
	References       []ast.FieldID
	HasReferencesArg bool
	OnDelete         connector.ReferentialAction
	OnUpdate         connector.ReferentialAction
	MappedName       StringID
	IsIgnored        bool
	AttributeSpan    diag.Span
	FieldSpan        diag.Span
}

// IndexType distinguishes the index-like block attributes.
type IndexType int

const (
	IndexNormal IndexType = iota
	IndexUnique
	IndexFulltext
)

// FieldPath is a resolved index field reference. Names holds the dotted
// path as written; for plain fields it has exactly one segment. Root is
// the first segment's field id on the owning model.
type FieldPath struct {
	Root  ast.FieldID
	Names []string
}

// FieldWithArgs is one entry of an index or id field list together with
// its per-field arguments.
type FieldWithArgs struct {
	Path             FieldPath
	SortOrder        string
	Length           *int
	OperatorClass    string
	OperatorClassRaw bool
}

// IndexAttribute is a resolved `@@index`, `@@unique`, `@@fulltext`, or a
// field-level `@unique`.
type IndexAttribute struct {
	Type IndexType
	// SourceField is set for field-level `@unique`.
	SourceField *ast.FieldID
	Fields      []FieldWithArgs
	Name        StringID
	MappedName  StringID
	Algorithm   string
	Clustered   *bool
	Span        diag.Span
}

// IDAttribute is a resolved `@id` or `@@id`.
type IDAttribute struct {
	// SourceField is set for field-level `@id`.
	SourceField *ast.FieldID
	Fields      []FieldWithArgs
	Name        StringID
	MappedName  StringID
	Clustered   *bool
	Span        diag.Span
}

// ModelAttributes aggregates the resolved block-level state of one model.
type ModelAttributes struct {
	PrimaryKey *IDAttribute
	Indexes    []IndexAttribute
	MappedName StringID
	IsIgnored  bool
}

// EnumAttributes aggregates the resolved state of one enum.
type EnumAttributes struct {
	MappedName StringID
	// ValueMappedNames maps a value's index in the enum to its `@map` name.
	ValueMappedNames map[int]StringID
}
