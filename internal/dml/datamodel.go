// Package dml defines the canonical datamodel produced by lowering a
// resolved schema. It is the stable contract downstream consumers read:
// plain values, fully resolved names, declaration order preserved.
package dml

import "sdlkit/internal/connector"

// Datamodel is the lowered form of one schema document.
type Datamodel struct {
	Models         []Model
	Enums          []Enum
	CompositeTypes []CompositeType
}

// FieldArity mirrors the source arity of a field.
type FieldArity int

const (
	Required FieldArity = iota
	Optional
	List
)

// FieldTypeKind discriminates FieldType.
type FieldTypeKind int

const (
	TypeScalar FieldTypeKind = iota
	TypeEnum
	TypeComposite
	TypeRelation
	TypeUnsupported
)

// FieldType is the lowered type of a field.
type FieldType struct {
	Kind      FieldTypeKind
	Scalar    connector.ScalarType
	Name      string // enum, composite, or related model name
	RawReason string // set for TypeUnsupported
}

// SortOrder is an index column direction.
type SortOrder string

const (
	Ascending  SortOrder = "Asc"
	Descending SortOrder = "Desc"
)

// Model is one lowered model block.
type Model struct {
	Name          string
	DatabaseName  string
	Documentation string
	Fields        []Field
	PrimaryKey    *PrimaryKey
	Indexes       []Index
	IsIgnored     bool
}

// Field is one lowered field, scalar or relation. Relation fields carry a
// RelationInfo; scalar fields may carry a default and a native type.
type Field struct {
	Name          string
	DatabaseName  string
	Documentation string
	Type          FieldType
	Arity         FieldArity
	Default       *DefaultValue
	NativeType    *connector.NativeType
	IsUpdatedAt   bool
	IsIgnored     bool
	Relation      *RelationInfo
	// Synthesized marks a back-relation field that lowering inferred
	// because source declared only one side. The reformatter offers these
	// for insertion.
	Synthesized bool
}

// RelationInfo is the relation metadata of one relation field.
type RelationInfo struct {
	To         string
	Name       string
	Fields     []string
	References []string
	OnDelete   connector.ReferentialAction
	OnUpdate   connector.ReferentialAction
	// ForeignKeyName is the mapped constraint name from `map:`, when
	// supported by the connector.
	ForeignKeyName string
}

// PrimaryKey is the lowered id criteria of a model.
type PrimaryKey struct {
	Name         string
	DatabaseName string
	Fields       []IndexField
	Clustered    *bool
}

// IndexKind mirrors parserdb's index classification.
type IndexKind int

const (
	IndexKindNormal IndexKind = iota
	IndexKindUnique
	IndexKindFulltext
)

// Index is one lowered index definition.
type Index struct {
	Name         string
	DatabaseName string
	Kind         IndexKind
	Algorithm    string
	Clustered    *bool
	Fields       []IndexField
}

// IndexField is one column of an index or primary key. Path traverses
// composite types; for plain fields it has one segment.
type IndexField struct {
	Path          []string
	SortOrder     SortOrder
	Length        *int
	OperatorClass OperatorClass
}

// OperatorClass names the index operator class of a column. The known
// classes cover the Gist, Gin, SpGist and Brin families; anything else is
// carried through raw.
type OperatorClass struct {
	Class string
	Raw   bool
}

var knownOperatorClasses = map[string]bool{
	"InetOps":            true,
	"JsonbOps":           true,
	"JsonbPathOps":       true,
	"ArrayOps":           true,
	"TextOps":            true,
	"BitMinMaxOps":       true,
	"VarBitMinMaxOps":    true,
	"ByteaBloomOps":      true,
	"ByteaMinMaxOps":     true,
	"DateBloomOps":       true,
	"DateMinMaxOps":      true,
	"Float4BloomOps":     true,
	"Float8MinMaxOps":    true,
	"Int4BloomOps":       true,
	"Int4MinMaxOps":      true,
	"TextBloomOps":       true,
	"TimestampMinMaxOps": true,
	"UuidBloomOps":       true,
}

// OperatorClassFromString maps a source-level operator class name to an
// OperatorClass, falling back to raw for unrecognized names.
func OperatorClassFromString(name string, raw bool) OperatorClass {
	if !raw && knownOperatorClasses[name] {
		return OperatorClass{Class: name}
	}
	return OperatorClass{Class: name, Raw: true}
}

// Enum is one lowered enum block.
type Enum struct {
	Name          string
	DatabaseName  string
	Documentation string
	Values        []EnumValue
}

// EnumValue is one lowered enum value.
type EnumValue struct {
	Name         string
	DatabaseName string
}

// CompositeType is one lowered composite type block.
type CompositeType struct {
	Name   string
	Fields []Field
}

// Model returns the model with the given name.
func (dm *Datamodel) Model(name string) (*Model, bool) {
	for i := range dm.Models {
		if dm.Models[i].Name == name {
			return &dm.Models[i], true
		}
	}
	return nil, false
}

// FieldByName returns the model field with the given name.
func (m *Model) FieldByName(name string) (*Field, bool) {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i], true
		}
	}
	return nil, false
}
