// Package postgres implements the PostgreSQL connector capabilities.
package postgres

import "sdlkit/internal/connector"

func init() {
	connector.Register("postgresql", New)
	connector.Register("postgres", New)
}

type pg struct{}

// New returns the PostgreSQL connector.
func New() connector.Connector {
	return pg{}
}

func (pg) Name() string { return "postgresql" }

func (pg) Capabilities() connector.Capabilities {
	return connector.Capabilities{
		SortOrderInIndex:      true,
		SortOrderInPrimaryKey: false,
		IndexLengthPrefix:     false,
		Clustering:            false,
		FulltextIndex:         false,
		CompositeTypes:        false,
		Enums:                 true,
		NamedPrimaryKeys:      true,
		NamedForeignKeys:      true,
		AutoIncrement:         true,
		AutoIncrementNonID:    true,
		AutoIncrementMultiple: true,
	}
}

func (pg) SupportedReferentialActions() []connector.ReferentialAction {
	return []connector.ReferentialAction{
		connector.ActionCascade,
		connector.ActionRestrict,
		connector.ActionNoAction,
		connector.ActionSetNull,
		connector.ActionSetDefault,
	}
}

func (pg) MaxIdentifierLength() int { return 63 }

var nativeTypes = map[string]connector.TypeSpec{
	"SmallInt":        {Scalar: connector.ScalarInt},
	"Integer":         {Scalar: connector.ScalarInt},
	"BigInt":          {Scalar: connector.ScalarBigInt},
	"Oid":             {Scalar: connector.ScalarInt},
	"Decimal":         {MaxArgs: 2, Scalar: connector.ScalarDecimal},
	"Money":           {Scalar: connector.ScalarDecimal},
	"Real":            {Scalar: connector.ScalarFloat},
	"DoublePrecision": {Scalar: connector.ScalarFloat},
	"VarChar":         {MaxArgs: 1, Scalar: connector.ScalarString},
	"Char":            {MaxArgs: 1, Scalar: connector.ScalarString},
	"Text":            {Scalar: connector.ScalarString},
	"Citext":          {Scalar: connector.ScalarString},
	"Bit":             {MaxArgs: 1, Scalar: connector.ScalarString},
	"VarBit":          {MaxArgs: 1, Scalar: connector.ScalarString},
	"Uuid":            {Scalar: connector.ScalarString},
	"Xml":             {Scalar: connector.ScalarString},
	"Inet":            {Scalar: connector.ScalarString},
	"Boolean":         {Scalar: connector.ScalarBoolean},
	"Timestamp":       {MaxArgs: 1, Scalar: connector.ScalarDateTime},
	"Timestamptz":     {MaxArgs: 1, Scalar: connector.ScalarDateTime},
	"Date":            {Scalar: connector.ScalarDateTime},
	"Time":            {MaxArgs: 1, Scalar: connector.ScalarDateTime},
	"Timetz":          {MaxArgs: 1, Scalar: connector.ScalarDateTime},
	"Json":            {Scalar: connector.ScalarJSON},
	"JsonB":           {Scalar: connector.ScalarJSON},
	"ByteA":           {Scalar: connector.ScalarBytes},
}

func (pg) ParseNativeType(name string, args []string) (connector.NativeType, error) {
	return connector.ParseFromTable("postgresql", nativeTypes, name, args)
}

func (pg) ScalarFor(nt connector.NativeType) (connector.ScalarType, bool) {
	return connector.ScalarFromTable(nativeTypes, nt)
}
