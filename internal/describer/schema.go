package describer

// SqlSchema is the backend-neutral snapshot of one logical schema. Tables
// and columns keep catalog order; index and foreign key columns keep their
// position-in-constraint order.
type SqlSchema struct {
	Schema     string
	Tables     []Table
	Enums      []Enum
	Views      []View
	Procedures []Procedure
	Sequences  []Sequence
}

// Table is one introspected table.
type Table struct {
	Name        string
	Comment     string
	Columns     []Column
	Indexes     []Index
	PrimaryKey  *Index
	ForeignKeys []ForeignKey
}

// Column is one introspected column, in ordinal position order within its
// table.
type Column struct {
	Name          string
	Type          ColumnType
	Default       *ColumnDefault
	AutoIncrement bool
	Comment       string
}

// ColumnArity mirrors nullability and array-ness of a column.
type ColumnArity int

const (
	ColumnRequired ColumnArity = iota
	ColumnNullable
	ColumnList
)

// ColumnTypeFamily is the portable family of a column type.
type ColumnTypeFamily string

const (
	FamilyInt      ColumnTypeFamily = "Int"
	FamilyBigInt   ColumnTypeFamily = "BigInt"
	FamilyFloat    ColumnTypeFamily = "Float"
	FamilyDecimal  ColumnTypeFamily = "Decimal"
	FamilyBoolean  ColumnTypeFamily = "Boolean"
	FamilyString   ColumnTypeFamily = "String"
	FamilyDateTime ColumnTypeFamily = "DateTime"
	FamilyBinary   ColumnTypeFamily = "Binary"
	FamilyJSON     ColumnTypeFamily = "Json"
	FamilyUUID     ColumnTypeFamily = "Uuid"
	FamilyEnum     ColumnTypeFamily = "Enum"
	// FamilyUnsupported carries the raw type name of anything the mapping
	// table does not know. New database types extend the table; they never
	// fail introspection.
	FamilyUnsupported ColumnTypeFamily = "Unsupported"
)

// ColumnType is the full type description of a column. FullType is the raw
// catalog rendering, kept for round-trips and for Unsupported families.
type ColumnType struct {
	FullType string
	Family   ColumnTypeFamily
	Arity    ColumnArity
	// EnumName is set when Family is FamilyEnum.
	EnumName string
}

// DefaultKind classifies a column default.
type DefaultKind int

const (
	// DefaultValue is a plain literal; Value holds the cleaned text.
	DefaultValue DefaultKind = iota
	// DefaultNow is the current timestamp.
	DefaultNow
	// DefaultSequence is a reference to a named sequence; Value holds the
	// sequence name.
	DefaultSequence
	// DefaultDBGenerated is any expression the classifier did not
	// recognize, passed through raw. Unrecognized defaults degrade to this
	// rather than failing introspection.
	DefaultDBGenerated
	// DefaultUniqueRowid is CockroachDB-style unique_rowid().
	DefaultUniqueRowid
)

// ColumnDefault is one classified column default.
type ColumnDefault struct {
	Kind  DefaultKind
	Value string
}

// SortOrder of an index column.
type SortOrder string

const (
	Ascending  SortOrder = "ASC"
	Descending SortOrder = "DESC"
)

// IndexColumn is one column of an index, in position order.
type IndexColumn struct {
	Name      string
	SortOrder SortOrder
	// Length is a prefix length, where the backend supports one.
	Length *int
}

// Index is one introspected index.
type Index struct {
	Name    string
	Columns []IndexColumn
	Unique  bool
	// Type is the backend index algorithm, such as BTREE or GIN.
	Type string
}

// ForeignKey is one introspected foreign key constraint. Columns and
// ReferencedColumns are parallel, in constraint position order.
type ForeignKey struct {
	ConstraintName    string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          string
	OnUpdate          string
}

// Enum is one introspected enum type, on backends that have them.
type Enum struct {
	Name   string
	Values []string
}

// View is one introspected view.
type View struct {
	Name       string
	Definition string
}

// Procedure is one introspected stored procedure.
type Procedure struct {
	Name       string
	Definition string
}

// Sequence is one introspected sequence.
type Sequence struct {
	Name string
}

// Table returns the table with the given name.
func (s *SqlSchema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}
