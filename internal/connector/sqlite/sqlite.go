// Package sqlite implements the SQLite connector capabilities. SQLite has
// no native type attributes: column affinity is derived from the portable
// scalar type alone.
package sqlite

import (
	"fmt"

	"sdlkit/internal/connector"
)

func init() {
	connector.Register("sqlite", New)
}

type lite struct{}

// New returns the SQLite connector.
func New() connector.Connector {
	return lite{}
}

func (lite) Name() string { return "sqlite" }

func (lite) Capabilities() connector.Capabilities {
	return connector.Capabilities{
		SortOrderInIndex:      true,
		SortOrderInPrimaryKey: false,
		IndexLengthPrefix:     false,
		Clustering:            false,
		FulltextIndex:         false,
		CompositeTypes:        false,
		Enums:                 false,
		NamedPrimaryKeys:      false,
		NamedForeignKeys:      false,
		AutoIncrement:         true,
		AutoIncrementNonID:    false,
		AutoIncrementMultiple: false,
	}
}

func (lite) SupportedReferentialActions() []connector.ReferentialAction {
	return []connector.ReferentialAction{
		connector.ActionCascade,
		connector.ActionRestrict,
		connector.ActionNoAction,
		connector.ActionSetNull,
		connector.ActionSetDefault,
	}
}

func (lite) MaxIdentifierLength() int { return 10000 }

func (lite) ParseNativeType(name string, args []string) (connector.NativeType, error) {
	return connector.NativeType{}, fmt.Errorf("Native type %s is not supported for sqlite connector.", name)
}

func (lite) ScalarFor(nt connector.NativeType) (connector.ScalarType, bool) {
	return "", false
}
