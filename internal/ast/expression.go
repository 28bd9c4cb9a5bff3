package ast

import (
	"strconv"
	"strings"

	"sdlkit/internal/diag"
)

// Expression is a value position in the grammar: attribute arguments,
// default values, and datasource/generator property values.
type Expression interface {
	Span() diag.Span
	// String renders the expression back to source form. String literals
	// keep their original quoting so that reformatting round-trips.
	String() string
}

// StringValue is a double-quoted string literal. Raw keeps the literal
// exactly as written, including quotes and escapes; Value is the decoded
// text.
type StringValue struct {
	Value string
	Raw   string
	Sp    diag.Span
}

func (v StringValue) Span() diag.Span { return v.Sp }
func (v StringValue) String() string  { return v.Raw }

// NumericValue is an integer or float literal, kept raw.
type NumericValue struct {
	Raw string
	Sp  diag.Span
}

func (v NumericValue) Span() diag.Span { return v.Sp }
func (v NumericValue) String() string  { return v.Raw }

// AsInt parses the literal as an int.
func (v NumericValue) AsInt() (int, bool) {
	n, err := strconv.Atoi(v.Raw)
	return n, err == nil
}

// AsFloat parses the literal as a float.
func (v NumericValue) AsFloat() (float64, bool) {
	f, err := strconv.ParseFloat(v.Raw, 64)
	return f, err == nil
}

// ConstantValue is a bare identifier in value position: enum values, sort
// orders, booleans, and dotted paths like `address.street`.
type ConstantValue struct {
	Name string
	Sp   diag.Span
}

func (v ConstantValue) Span() diag.Span { return v.Sp }
func (v ConstantValue) String() string  { return v.Name }

// AsBool interprets the constant as a boolean literal.
func (v ConstantValue) AsBool() (bool, bool) {
	switch v.Name {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// ArrayExpression is a `[a, b, c]` literal.
type ArrayExpression struct {
	Elements []Expression
	Sp       diag.Span
}

func (v ArrayExpression) Span() diag.Span { return v.Sp }

func (v ArrayExpression) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FunctionCall is `name(...)` in value position, e.g. `now()` or
// `dbgenerated("uuid_generate_v4()")`.
type FunctionCall struct {
	Name      Identifier
	Arguments []Argument
	Sp        diag.Span
}

func (v FunctionCall) Span() diag.Span { return v.Sp }

func (v FunctionCall) String() string {
	parts := make([]string, len(v.Arguments))
	for i, a := range v.Arguments {
		if a.Name != nil {
			parts[i] = a.Name.Name + ": " + a.Value.String()
		} else {
			parts[i] = a.Value.String()
		}
	}
	return v.Name.Name + "(" + strings.Join(parts, ", ") + ")"
}
