// Package ast defines the concrete syntax tree produced by the schema
// parser. Unlike a conventional AST it keeps everything the reformatter
// needs to round-trip a document: doc comments, trailing comments, and the
// source span of every node.
//
// Top-level declarations live in flat slices on Schema and are referred to
// by integer ids (ModelID, EnumID, ...) rather than pointers. Relations in a
// schema are inherently cyclic, and index-based handles sidestep ownership
// cycles while giving O(1) lookup.
package ast

import "sdlkit/internal/diag"

// ModelID indexes Schema.Models.
type ModelID int

// EnumID indexes Schema.Enums.
type EnumID int

// CompositeTypeID indexes Schema.CompositeTypes.
type CompositeTypeID int

// FieldID indexes the Fields slice of one model or composite type.
type FieldID int

// TopKind discriminates the top-level declaration kinds.
type TopKind int

const (
	TopModel TopKind = iota
	TopEnum
	TopCompositeType
	TopDatasource
	TopGenerator
	TopComment
	TopDocComment
)

// Top points at one top-level declaration in source order. Comment tops
// carry their text inline instead of an id; consecutive comment lines are
// stored as one entry with newline separators.
type Top struct {
	Kind    TopKind
	ID      int
	Comment string
}

// Schema is the root of the CST. Tops preserves declaration order across
// the per-kind slices.
type Schema struct {
	Models         []Model
	Enums          []Enum
	CompositeTypes []CompositeType
	Datasources    []Datasource
	Generators     []Generator
	Tops           []Top
}

// Model returns the model with the given id.
func (s *Schema) Model(id ModelID) *Model { return &s.Models[id] }

// Enum returns the enum with the given id.
func (s *Schema) Enum(id EnumID) *Enum { return &s.Enums[id] }

// CompositeType returns the composite type with the given id.
func (s *Schema) CompositeType(id CompositeTypeID) *CompositeType {
	return &s.CompositeTypes[id]
}

// Identifier is a name together with its source span.
type Identifier struct {
	Name string
	Span diag.Span
}

// FieldArity is the declared cardinality of a field.
type FieldArity int

const (
	Required FieldArity = iota
	Optional
	List
)

func (a FieldArity) String() string {
	switch a {
	case Optional:
		return "optional"
	case List:
		return "list"
	default:
		return "required"
	}
}

// FieldType is the declared type of a field, before resolution.
type FieldType struct {
	Name string
	Span diag.Span
}

// Field is one field declaration inside a model or composite type.
type Field struct {
	Name          Identifier
	Type          FieldType
	Arity         FieldArity
	Attributes    []Attribute
	Documentation string
	// Comment is a trailing same-line // comment, kept for reformatting.
	Comment string
	Span    diag.Span
}

// ItemKind discriminates the ordered items of a block body.
type ItemKind int

const (
	ItemField ItemKind = iota
	ItemAttribute
	ItemComment
	ItemEnumValue
)

// Item records one line of a block body in source order, so the
// reformatter can interleave fields, block attributes, and standalone
// comments exactly as written.
type Item struct {
	Kind ItemKind
	// Index into the owning block's Fields, Attributes, or Values slice.
	Index int
	// Comment text for ItemComment entries, without the leading slashes.
	Comment string
}

// Model is a `model` block.
type Model struct {
	Name          Identifier
	Fields        []Field
	Attributes    []Attribute
	Items         []Item
	Documentation string
	Span          diag.Span
}

// Field returns the field with the given id.
func (m *Model) Field(id FieldID) *Field { return &m.Fields[id] }

// CompositeType is a `type` block. It has the same body shape as a model
// but only carries field declarations.
type CompositeType struct {
	Name          Identifier
	Fields        []Field
	Items         []Item
	Documentation string
	Span          diag.Span
}

// Field returns the field with the given id.
func (ct *CompositeType) Field(id FieldID) *Field { return &ct.Fields[id] }

// Enum is an `enum` block.
type Enum struct {
	Name          Identifier
	Values        []EnumValue
	Attributes    []Attribute
	Items         []Item
	Documentation string
	Span          diag.Span
}

// EnumValue is one value declaration inside an enum.
type EnumValue struct {
	Name          Identifier
	Attributes    []Attribute
	Documentation string
	Comment       string
	Span          diag.Span
}

// Attribute is a field attribute (`@name(...)`) or block attribute
// (`@@name(...)`). Name holds the full dotted name for native-type
// attributes such as `db.VarChar`.
type Attribute struct {
	Name      Identifier
	Arguments []Argument
	Span      diag.Span
}

// Argument is one positional or named attribute argument.
type Argument struct {
	// Name is nil for positional arguments.
	Name  *Identifier
	Value Expression
	Span  diag.Span
}

// ConfigProperty is a `key = value` line inside a datasource or generator.
type ConfigProperty struct {
	Name  Identifier
	Value Expression
	Span  diag.Span
}

// Datasource is a `datasource` block.
type Datasource struct {
	Name          Identifier
	Properties    []ConfigProperty
	Documentation string
	Span          diag.Span
}

// Property returns the value of a named property, or nil.
func (d *Datasource) Property(name string) Expression {
	for i := range d.Properties {
		if d.Properties[i].Name.Name == name {
			return d.Properties[i].Value
		}
	}
	return nil
}

// Generator is a `generator` block.
type Generator struct {
	Name          Identifier
	Properties    []ConfigProperty
	Documentation string
	Span          diag.Span
}
