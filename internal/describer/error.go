package describer

import "fmt"

// ErrorKind discriminates Error.
type ErrorKind int

const (
	// KindConnection wraps a driver-level connection or query failure.
	KindConnection ErrorKind = iota
	// KindCrossSchemaReference is a foreign key whose referenced table
	// lives outside the schema under introspection. The tool operates one
	// logical schema at a time; such constraints are rejected, never
	// silently dropped.
	KindCrossSchemaReference
)

// Error is the typed failure of a Describe call.
type Error struct {
	Kind ErrorKind

	// Cross-schema reference details.
	From       string
	To         string
	Constraint string

	// Err is the wrapped driver error for KindConnection.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindCrossSchemaReference:
		return fmt.Sprintf("describer: foreign key %q on table %q references a table in another schema %q; cross-schema constraints are not supported", e.Constraint, e.From, e.To)
	default:
		return fmt.Sprintf("describer: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// CrossSchema builds a cross-schema reference error.
func CrossSchema(from, to, constraint string) *Error {
	return &Error{Kind: KindCrossSchemaReference, From: from, To: to, Constraint: constraint}
}

// Wrap wraps a driver error, passing through errors that already carry a
// kind.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Kind: KindConnection, Err: err}
}
