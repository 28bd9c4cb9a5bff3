// Package connector defines the capability interface consulted during
// attribute validation, lowering, and native type parsing. There is one
// implementation per database backend; shared validation code only ever
// talks to this interface and never branches on a provider-name string, so
// adding a backend means implementing Connector, not editing validators.
package connector

import (
	"fmt"
	"strings"
	"sync"
)

// ScalarType is a portable field type family.
type ScalarType string

const (
	ScalarString   ScalarType = "String"
	ScalarBoolean  ScalarType = "Boolean"
	ScalarInt      ScalarType = "Int"
	ScalarBigInt   ScalarType = "BigInt"
	ScalarFloat    ScalarType = "Float"
	ScalarDecimal  ScalarType = "Decimal"
	ScalarDateTime ScalarType = "DateTime"
	ScalarJSON     ScalarType = "Json"
	ScalarBytes    ScalarType = "Bytes"
)

// ScalarTypeFromName maps a built-in type name from schema source to its
// ScalarType, reporting whether the name is a built-in scalar at all.
func ScalarTypeFromName(name string) (ScalarType, bool) {
	switch name {
	case "String":
		return ScalarString, true
	case "Boolean":
		return ScalarBoolean, true
	case "Int":
		return ScalarInt, true
	case "BigInt":
		return ScalarBigInt, true
	case "Float":
		return ScalarFloat, true
	case "Decimal":
		return ScalarDecimal, true
	case "DateTime":
		return ScalarDateTime, true
	case "Json":
		return ScalarJSON, true
	case "Bytes":
		return ScalarBytes, true
	}
	return "", false
}

// ReferentialAction is an ON DELETE / ON UPDATE action.
type ReferentialAction string

const (
	ActionCascade    ReferentialAction = "Cascade"
	ActionRestrict   ReferentialAction = "Restrict"
	ActionNoAction   ReferentialAction = "NoAction"
	ActionSetNull    ReferentialAction = "SetNull"
	ActionSetDefault ReferentialAction = "SetDefault"
)

// NativeType is a parsed backend-specific column type, e.g. VarChar(191).
type NativeType struct {
	Name string
	Args []string
}

func (nt NativeType) String() string {
	if len(nt.Args) == 0 {
		return nt.Name
	}
	return nt.Name + "(" + strings.Join(nt.Args, ", ") + ")"
}

// Capabilities is the set of feature flags queried by the validation pass.
type Capabilities struct {
	SortOrderInIndex      bool
	SortOrderInPrimaryKey bool
	IndexLengthPrefix     bool
	Clustering            bool
	FulltextIndex         bool
	CompositeTypes        bool
	Enums                 bool
	NamedPrimaryKeys      bool
	NamedForeignKeys      bool
	AutoIncrement         bool
	AutoIncrementNonID    bool
	AutoIncrementMultiple bool
}

// Connector is the per-backend capability provider.
type Connector interface {
	// Name is the canonical provider name, e.g. "postgresql".
	Name() string
	Capabilities() Capabilities
	SupportedReferentialActions() []ReferentialAction
	// MaxIdentifierLength is the backend's limit on constraint and index
	// names.
	MaxIdentifierLength() int
	// ParseNativeType validates a native type attribute such as
	// `@db.VarChar(191)` against the backend's type table. The name is the
	// part after the datasource prefix.
	ParseNativeType(name string, args []string) (NativeType, error)
	// ScalarFor maps a native type to its portable scalar family.
	ScalarFor(nt NativeType) (ScalarType, bool)
}

// SupportsAction reports whether the connector accepts the referential
// action.
func SupportsAction(c Connector, action ReferentialAction) bool {
	for _, a := range c.SupportedReferentialActions() {
		if a == action {
			return true
		}
	}
	return false
}

var (
	registry = make(map[string]func() Connector)
	mu       sync.RWMutex
)

// Register adds a connector constructor under a provider name. Backends
// call it from init, once per accepted alias.
func Register(provider string, fn func() Connector) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(provider)] = fn
}

// ByName returns the connector registered for the provider name.
func ByName(provider string) (Connector, error) {
	mu.RLock()
	fn, ok := registry[strings.ToLower(provider)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("connector: unsupported provider %q", provider)
	}
	return fn(), nil
}

// TypeSpec describes one entry of a backend's native type table.
type TypeSpec struct {
	MinArgs int
	MaxArgs int
	Scalar  ScalarType
}

// ParseFromTable is the shared native type parsing used by every backend:
// look the name up case-sensitively, then check the argument count.
func ParseFromTable(provider string, types map[string]TypeSpec, name string, args []string) (NativeType, error) {
	spec, ok := types[name]
	if !ok {
		return NativeType{}, fmt.Errorf("Native type %s is not supported for %s connector.", name, provider)
	}
	if len(args) < spec.MinArgs || len(args) > spec.MaxArgs {
		expected := fmt.Sprintf("%d", spec.MaxArgs)
		if spec.MinArgs != spec.MaxArgs {
			expected = fmt.Sprintf("between %d and %d", spec.MinArgs, spec.MaxArgs)
		}
		return NativeType{}, fmt.Errorf("Native type %s takes %s arguments, but received %d.", name, expected, len(args))
	}
	return NativeType{Name: name, Args: args}, nil
}

// ScalarFromTable is the shared ScalarFor lookup.
func ScalarFromTable(types map[string]TypeSpec, nt NativeType) (ScalarType, bool) {
	spec, ok := types[nt.Name]
	if !ok {
		return "", false
	}
	return spec.Scalar, true
}
