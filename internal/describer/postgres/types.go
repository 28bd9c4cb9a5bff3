package postgres

import (
	"strings"

	"sdlkit/internal/describer"
)

var typeFamilies = map[string]describer.ColumnTypeFamily{
	"int2":        describer.FamilyInt,
	"int4":        describer.FamilyInt,
	"int8":        describer.FamilyBigInt,
	"oid":         describer.FamilyInt,
	"float4":      describer.FamilyFloat,
	"float8":      describer.FamilyFloat,
	"numeric":     describer.FamilyDecimal,
	"money":       describer.FamilyDecimal,
	"bool":        describer.FamilyBoolean,
	"text":        describer.FamilyString,
	"varchar":     describer.FamilyString,
	"bpchar":      describer.FamilyString,
	"char":        describer.FamilyString,
	"citext":      describer.FamilyString,
	"inet":        describer.FamilyString,
	"cidr":        describer.FamilyString,
	"bit":         describer.FamilyString,
	"varbit":      describer.FamilyString,
	"xml":         describer.FamilyString,
	"date":        describer.FamilyDateTime,
	"time":        describer.FamilyDateTime,
	"timetz":      describer.FamilyDateTime,
	"timestamp":   describer.FamilyDateTime,
	"timestamptz": describer.FamilyDateTime,
	"bytea":       describer.FamilyBinary,
	"json":        describer.FamilyJSON,
	"jsonb":       describer.FamilyJSON,
	"uuid":        describer.FamilyUUID,
}

// mapColumnType maps a catalog type to its portable family. Array types
// arrive with a leading underscore on the udt name and map to a list of
// the element family. Unknown types fall through to Unsupported with the
// raw name preserved; extending the table above is the only change a new
// type needs.
func mapColumnType(dataType, udtName string, nullable bool, enums map[string]bool) describer.ColumnType {
	arity := describer.ColumnRequired
	if nullable {
		arity = describer.ColumnNullable
	}

	elem := udtName
	if strings.HasPrefix(udtName, "_") {
		elem = strings.TrimPrefix(udtName, "_")
		arity = describer.ColumnList
	}

	ct := describer.ColumnType{FullType: udtName, Arity: arity}
	if enums[elem] {
		ct.Family = describer.FamilyEnum
		ct.EnumName = elem
		return ct
	}
	if family, ok := typeFamilies[elem]; ok {
		ct.Family = family
		return ct
	}
	ct.Family = describer.FamilyUnsupported
	return ct
}
