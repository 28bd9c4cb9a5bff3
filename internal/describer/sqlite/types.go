package sqlite

import (
	"regexp"
	"strings"

	"sdlkit/internal/describer"
)

var (
	nowRe     = regexp.MustCompile(`(?i)^current_(timestamp|date|time)$`)
	numericRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// mapColumnType maps a declared type through SQLite's affinity rules into
// a portable family. SQLite stores the declaration verbatim, so matching
// is substring-based, mirroring the engine's own affinity detection.
func mapColumnType(declared string, nullable bool) describer.ColumnType {
	arity := describer.ColumnRequired
	if nullable {
		arity = describer.ColumnNullable
	}
	ct := describer.ColumnType{FullType: declared, Arity: arity}

	upper := strings.ToUpper(declared)
	switch {
	case strings.Contains(upper, "BIGINT"):
		ct.Family = describer.FamilyBigInt
	case strings.Contains(upper, "INT"):
		ct.Family = describer.FamilyInt
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		ct.Family = describer.FamilyString
	case strings.Contains(upper, "BLOB"), upper == "":
		ct.Family = describer.FamilyBinary
	case strings.Contains(upper, "DECIMAL"), strings.Contains(upper, "NUMERIC"):
		ct.Family = describer.FamilyDecimal
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		ct.Family = describer.FamilyFloat
	case strings.Contains(upper, "BOOL"):
		ct.Family = describer.FamilyBoolean
	case strings.Contains(upper, "DATE"), strings.Contains(upper, "TIME"):
		ct.Family = describer.FamilyDateTime
	default:
		ct.Family = describer.FamilyUnsupported
	}
	return ct
}

// classifyDefault classifies a dflt_value rendering. SQLite keeps the
// default expression as written in the CREATE TABLE statement.
func classifyDefault(raw string, family describer.ColumnTypeFamily) *describer.ColumnDefault {
	if nowRe.MatchString(raw) {
		return &describer.ColumnDefault{Kind: describer.DefaultNow}
	}
	if strings.EqualFold(raw, "NULL") {
		return nil
	}
	if strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") && len(raw) >= 2 {
		value := strings.ReplaceAll(raw[1:len(raw)-1], "''", "'")
		return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: value}
	}
	switch family {
	case describer.FamilyInt, describer.FamilyBigInt, describer.FamilyFloat, describer.FamilyDecimal:
		if numericRe.MatchString(raw) {
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: raw}
		}
	case describer.FamilyBoolean:
		switch strings.ToLower(raw) {
		case "1", "true":
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: "true"}
		case "0", "false":
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: "false"}
		}
	}
	return &describer.ColumnDefault{Kind: describer.DefaultDBGenerated, Value: raw}
}
