// Package mssql implements the SQL Server connector capabilities.
package mssql

import "sdlkit/internal/connector"

func init() {
	connector.Register("sqlserver", New)
	connector.Register("mssql", New)
}

type ms struct{}

// New returns the SQL Server connector.
func New() connector.Connector {
	return ms{}
}

func (ms) Name() string { return "sqlserver" }

func (ms) Capabilities() connector.Capabilities {
	return connector.Capabilities{
		SortOrderInIndex:      true,
		SortOrderInPrimaryKey: true,
		IndexLengthPrefix:     false,
		Clustering:            true,
		FulltextIndex:         false,
		CompositeTypes:        false,
		Enums:                 false,
		NamedPrimaryKeys:      true,
		NamedForeignKeys:      true,
		AutoIncrement:         true,
		AutoIncrementNonID:    true,
		AutoIncrementMultiple: false,
	}
}

func (ms) SupportedReferentialActions() []connector.ReferentialAction {
	// SQL Server has no RESTRICT; NO ACTION is the closest it gets.
	return []connector.ReferentialAction{
		connector.ActionCascade,
		connector.ActionNoAction,
		connector.ActionSetNull,
		connector.ActionSetDefault,
	}
}

func (ms) MaxIdentifierLength() int { return 128 }

var nativeTypes = map[string]connector.TypeSpec{
	"TinyInt":          {Scalar: connector.ScalarInt},
	"SmallInt":         {Scalar: connector.ScalarInt},
	"Int":              {Scalar: connector.ScalarInt},
	"BigInt":           {Scalar: connector.ScalarBigInt},
	"Decimal":          {MaxArgs: 2, Scalar: connector.ScalarDecimal},
	"Money":            {Scalar: connector.ScalarFloat},
	"SmallMoney":       {Scalar: connector.ScalarFloat},
	"Float":            {MaxArgs: 1, Scalar: connector.ScalarFloat},
	"Real":             {Scalar: connector.ScalarFloat},
	"Bit":              {Scalar: connector.ScalarBoolean},
	"Char":             {MaxArgs: 1, Scalar: connector.ScalarString},
	"NChar":            {MaxArgs: 1, Scalar: connector.ScalarString},
	"VarChar":          {MaxArgs: 1, Scalar: connector.ScalarString},
	"NVarChar":         {MaxArgs: 1, Scalar: connector.ScalarString},
	"Text":             {Scalar: connector.ScalarString},
	"NText":            {Scalar: connector.ScalarString},
	"Xml":              {Scalar: connector.ScalarString},
	"UniqueIdentifier": {Scalar: connector.ScalarString},
	"Date":             {Scalar: connector.ScalarDateTime},
	"Time":             {Scalar: connector.ScalarDateTime},
	"DateTime":         {Scalar: connector.ScalarDateTime},
	"DateTime2":        {Scalar: connector.ScalarDateTime},
	"SmallDateTime":    {Scalar: connector.ScalarDateTime},
	"DateTimeOffset":   {Scalar: connector.ScalarDateTime},
	"Binary":           {MaxArgs: 1, Scalar: connector.ScalarBytes},
	"VarBinary":        {MaxArgs: 1, Scalar: connector.ScalarBytes},
	"Image":            {Scalar: connector.ScalarBytes},
}

func (ms) ParseNativeType(name string, args []string) (connector.NativeType, error) {
	return connector.ParseFromTable("sqlserver", nativeTypes, name, args)
}

func (ms) ScalarFor(nt connector.NativeType) (connector.ScalarType, bool) {
	return connector.ScalarFromTable(nativeTypes, nt)
}
