package mysql

import (
	"strings"

	"sdlkit/internal/describer"
)

var typeFamilies = map[string]describer.ColumnTypeFamily{
	"tinyint":    describer.FamilyInt,
	"smallint":   describer.FamilyInt,
	"mediumint":  describer.FamilyInt,
	"int":        describer.FamilyInt,
	"year":       describer.FamilyInt,
	"bigint":     describer.FamilyBigInt,
	"float":      describer.FamilyFloat,
	"double":     describer.FamilyFloat,
	"decimal":    describer.FamilyDecimal,
	"char":       describer.FamilyString,
	"varchar":    describer.FamilyString,
	"tinytext":   describer.FamilyString,
	"text":       describer.FamilyString,
	"mediumtext": describer.FamilyString,
	"longtext":   describer.FamilyString,
	"set":        describer.FamilyString,
	"date":       describer.FamilyDateTime,
	"time":       describer.FamilyDateTime,
	"datetime":   describer.FamilyDateTime,
	"timestamp":  describer.FamilyDateTime,
	"binary":     describer.FamilyBinary,
	"varbinary":  describer.FamilyBinary,
	"tinyblob":   describer.FamilyBinary,
	"blob":       describer.FamilyBinary,
	"mediumblob": describer.FamilyBinary,
	"longblob":   describer.FamilyBinary,
	"bit":        describer.FamilyBinary,
	"json":       describer.FamilyJSON,
}

// mapColumnType maps a catalog data type to its portable family.
// tinyint(1) is the MySQL convention for booleans and is special-cased on
// the full column_type rendering. Unknown types map to Unsupported with
// the raw rendering preserved.
func mapColumnType(dataType, columnType, nullable string) describer.ColumnType {
	ct := describer.ColumnType{FullType: columnType, Arity: arity(nullable)}

	if strings.HasPrefix(columnType, "tinyint(1)") {
		ct.Family = describer.FamilyBoolean
		return ct
	}
	if family, ok := typeFamilies[dataType]; ok {
		ct.Family = family
		return ct
	}
	ct.Family = describer.FamilyUnsupported
	return ct
}
