// Package mysql implements the MySQL / MariaDB connector capabilities.
package mysql

import "sdlkit/internal/connector"

func init() {
	connector.Register("mysql", New)
	connector.Register("mariadb", New)
}

type my struct{}

// New returns the MySQL connector.
func New() connector.Connector {
	return my{}
}

func (my) Name() string { return "mysql" }

func (my) Capabilities() connector.Capabilities {
	return connector.Capabilities{
		SortOrderInIndex:      true,
		SortOrderInPrimaryKey: false,
		IndexLengthPrefix:     true,
		Clustering:            false,
		FulltextIndex:         true,
		CompositeTypes:        false,
		Enums:                 true,
		NamedPrimaryKeys:      false,
		NamedForeignKeys:      true,
		AutoIncrement:         true,
		// MySQL requires an auto_increment column to be the first column of
		// a key, and allows only one per table.
		AutoIncrementNonID:    false,
		AutoIncrementMultiple: false,
	}
}

func (my) SupportedReferentialActions() []connector.ReferentialAction {
	// InnoDB parses SET DEFAULT but rejects it at runtime, so it is not
	// offered.
	return []connector.ReferentialAction{
		connector.ActionCascade,
		connector.ActionRestrict,
		connector.ActionNoAction,
		connector.ActionSetNull,
	}
}

func (my) MaxIdentifierLength() int { return 64 }

var nativeTypes = map[string]connector.TypeSpec{
	"TinyInt":    {MaxArgs: 1, Scalar: connector.ScalarInt},
	"SmallInt":   {Scalar: connector.ScalarInt},
	"MediumInt":  {Scalar: connector.ScalarInt},
	"Int":        {Scalar: connector.ScalarInt},
	"BigInt":     {Scalar: connector.ScalarBigInt},
	"UnsignedInt": {Scalar: connector.ScalarInt},
	"Decimal":    {MaxArgs: 2, Scalar: connector.ScalarDecimal},
	"Float":      {Scalar: connector.ScalarFloat},
	"Double":     {Scalar: connector.ScalarFloat},
	"Bit":        {MaxArgs: 1, Scalar: connector.ScalarBytes},
	"Char":       {MinArgs: 1, MaxArgs: 1, Scalar: connector.ScalarString},
	"VarChar":    {MinArgs: 1, MaxArgs: 1, Scalar: connector.ScalarString},
	"TinyText":   {Scalar: connector.ScalarString},
	"Text":       {Scalar: connector.ScalarString},
	"MediumText": {Scalar: connector.ScalarString},
	"LongText":   {Scalar: connector.ScalarString},
	"Binary":     {MaxArgs: 1, Scalar: connector.ScalarBytes},
	"VarBinary":  {MinArgs: 1, MaxArgs: 1, Scalar: connector.ScalarBytes},
	"TinyBlob":   {Scalar: connector.ScalarBytes},
	"Blob":       {Scalar: connector.ScalarBytes},
	"MediumBlob": {Scalar: connector.ScalarBytes},
	"LongBlob":   {Scalar: connector.ScalarBytes},
	"Date":       {Scalar: connector.ScalarDateTime},
	"Time":       {MaxArgs: 1, Scalar: connector.ScalarDateTime},
	"DateTime":   {MaxArgs: 1, Scalar: connector.ScalarDateTime},
	"Timestamp":  {MaxArgs: 1, Scalar: connector.ScalarDateTime},
	"Year":       {Scalar: connector.ScalarInt},
	"Json":       {Scalar: connector.ScalarJSON},
}

func (my) ParseNativeType(name string, args []string) (connector.NativeType, error) {
	return connector.ParseFromTable("mysql", nativeTypes, name, args)
}

func (my) ScalarFor(nt connector.NativeType) (connector.ScalarType, bool) {
	return connector.ScalarFromTable(nativeTypes, nt)
}
