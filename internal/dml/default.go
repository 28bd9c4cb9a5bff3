package dml

// DefaultKind discriminates DefaultValue.
type DefaultKind int

const (
	// DefaultLiteral is a plain value default; Value holds its source
	// rendering.
	DefaultLiteral DefaultKind = iota
	DefaultAutoincrement
	// DefaultSequence is a named database sequence; Value holds the
	// sequence name, possibly empty.
	DefaultSequence
	// DefaultDBGenerated is an opaque database expression; Value holds the
	// expression text, possibly empty.
	DefaultDBGenerated
	DefaultUUID
	DefaultCUID
	DefaultNow
)

// DefaultValue is one lowered `@default`.
type DefaultValue struct {
	Kind DefaultKind
	// Value carries the literal, sequence name, or generated expression,
	// depending on Kind.
	Value string
	// DatabaseName is the mapped constraint name, when the source supplied
	// one via `map:`.
	DatabaseName string
}

// IsNow reports whether the default is the current timestamp.
func (d *DefaultValue) IsNow() bool { return d.Kind == DefaultNow }

// IsAutoincrement reports whether the default increments automatically,
// either directly or through a sequence.
func (d *DefaultValue) IsAutoincrement() bool {
	return d.Kind == DefaultAutoincrement || d.Kind == DefaultSequence
}
