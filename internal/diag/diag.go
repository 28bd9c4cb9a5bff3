// Package diag contains the span and diagnostics types shared by the whole
// toolchain. A Span is a byte-offset range into the original schema source;
// every error or warning produced by the parser and the validation passes
// carries one, so that a renderer can slice the source text and point at the
// exact offending characters.
package diag

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// NewSpan returns a span covering [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// EmptySpan returns a zero-length span at offset 0. It is used for
// diagnostics that have no natural source location.
func EmptySpan() Span {
	return Span{}
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether the byte offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d..%d]", s.Start, s.End)
}

// Diagnostic is a single message anchored to a source span.
type Diagnostic struct {
	Message string
	Span    Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s", d.Message, d.Span)
}

// Diagnostics accumulates errors and warnings over a whole parse/validation
// run. Validation is best-effort: passes keep going after an error so that
// every independent problem in one document is reported together.
type Diagnostics struct {
	errors   []Diagnostic
	warnings []Diagnostic
}

// AddError appends an error diagnostic.
func (d *Diagnostics) AddError(message string, span Span) {
	d.errors = append(d.errors, Diagnostic{Message: message, Span: span})
}

// AddErrorf appends a formatted error diagnostic.
func (d *Diagnostics) AddErrorf(span Span, format string, args ...any) {
	d.AddError(fmt.Sprintf(format, args...), span)
}

// AddWarning appends a warning diagnostic.
func (d *Diagnostics) AddWarning(message string, span Span) {
	d.warnings = append(d.warnings, Diagnostic{Message: message, Span: span})
}

// HasErrors reports whether at least one error was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.errors) > 0
}

// Errors returns the recorded errors in insertion order.
func (d *Diagnostics) Errors() []Diagnostic {
	return d.errors
}

// Warnings returns the recorded warnings in insertion order.
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.warnings
}

// Merge appends all diagnostics from other into d.
func (d *Diagnostics) Merge(other *Diagnostics) {
	d.errors = append(d.errors, other.errors...)
	d.warnings = append(d.warnings, other.warnings...)
}

// Error implements the error interface by joining all error messages.
// It panics if called on a collection without errors.
func (d *Diagnostics) Error() string {
	if !d.HasErrors() {
		panic("diag: Error called on a Diagnostics without errors")
	}
	msgs := make([]string, len(d.errors))
	for i, e := range d.errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "\n")
}

// LineCol translates a byte offset into a 1-based line and column for
// human-readable rendering. Offsets past the end of src map to the final
// position.
func LineCol(src string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(src) {
		offset = len(src)
	}
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
