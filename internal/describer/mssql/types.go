package mssql

import (
	"regexp"
	"strings"

	"sdlkit/internal/describer"
)

var typeFamilies = map[string]describer.ColumnTypeFamily{
	"tinyint":          describer.FamilyInt,
	"smallint":         describer.FamilyInt,
	"int":              describer.FamilyInt,
	"bigint":           describer.FamilyBigInt,
	"real":             describer.FamilyFloat,
	"float":            describer.FamilyFloat,
	"decimal":          describer.FamilyDecimal,
	"numeric":          describer.FamilyDecimal,
	"money":            describer.FamilyDecimal,
	"smallmoney":       describer.FamilyDecimal,
	"bit":              describer.FamilyBoolean,
	"char":             describer.FamilyString,
	"nchar":            describer.FamilyString,
	"varchar":          describer.FamilyString,
	"nvarchar":         describer.FamilyString,
	"text":             describer.FamilyString,
	"ntext":            describer.FamilyString,
	"xml":              describer.FamilyString,
	"date":             describer.FamilyDateTime,
	"time":             describer.FamilyDateTime,
	"datetime":         describer.FamilyDateTime,
	"datetime2":        describer.FamilyDateTime,
	"smalldatetime":    describer.FamilyDateTime,
	"datetimeoffset":   describer.FamilyDateTime,
	"binary":           describer.FamilyBinary,
	"varbinary":        describer.FamilyBinary,
	"image":            describer.FamilyBinary,
	"uniqueidentifier": describer.FamilyUUID,
}

func mapColumnType(typeName string, nullable bool) describer.ColumnType {
	arity := describer.ColumnRequired
	if nullable {
		arity = describer.ColumnNullable
	}
	ct := describer.ColumnType{FullType: typeName, Arity: arity}
	if family, ok := typeFamilies[typeName]; ok {
		ct.Family = family
		return ct
	}
	ct.Family = describer.FamilyUnsupported
	return ct
}

var (
	parenRe   = regexp.MustCompile(`^\((.*)\)$`)
	nowRe     = regexp.MustCompile(`(?i)^(getdate|sysdatetime|getutcdate|sysutcdatetime|current_timestamp)(\(\))?$`)
	stringRe  = regexp.MustCompile(`^N?'(.*)'$`)
	numericRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	seqRe     = regexp.MustCompile(`(?i)^NEXT VALUE FOR (?:\[?[^\].]+\]?\.)?\[?([^\]]+)\]?$`)
)

// classifyDefault classifies a default constraint definition. SQL Server
// wraps every definition in at least one layer of parentheses, numerics in
// two, so the wrapping is stripped before matching. Unrecognized text
// degrades to a raw passthrough.
func classifyDefault(raw string, family describer.ColumnTypeFamily) *describer.ColumnDefault {
	stripped := raw
	for {
		m := parenRe.FindStringSubmatch(stripped)
		if m == nil || !balanced(m[1]) {
			break
		}
		stripped = m[1]
	}

	if nowRe.MatchString(stripped) {
		return &describer.ColumnDefault{Kind: describer.DefaultNow}
	}
	if m := seqRe.FindStringSubmatch(stripped); m != nil {
		return &describer.ColumnDefault{Kind: describer.DefaultSequence, Value: m[1]}
	}
	if m := stringRe.FindStringSubmatch(stripped); m != nil {
		value := strings.ReplaceAll(m[1], "''", "'")
		return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: value}
	}

	switch family {
	case describer.FamilyInt, describer.FamilyBigInt, describer.FamilyFloat, describer.FamilyDecimal:
		if numericRe.MatchString(stripped) {
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: stripped}
		}
	case describer.FamilyBoolean:
		switch stripped {
		case "1":
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: "true"}
		case "0":
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: "false"}
		}
	}

	return &describer.ColumnDefault{Kind: describer.DefaultDBGenerated, Value: raw}
}

// balanced reports whether parentheses pair up within s, so that
// stripping an outer pair never splits an expression such as
// (a)+(b).
func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
