package mysql

import (
	"regexp"
	"strings"

	"sdlkit/internal/describer"
)

var (
	nowRe     = regexp.MustCompile(`(?i)^current_timestamp(\(\d*\))?$`)
	numericRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// classifyDefault classifies a column_default value. MySQL 8 marks
// expression defaults with DEFAULT_GENERATED in the extra column and
// stores plain string defaults unquoted; MariaDB stores string defaults
// quoted and renders expressions bare, so the flavor changes the parse.
// Unrecognized forms degrade to a raw passthrough.
func (dc *describeCtx) classifyDefault(raw string, family describer.ColumnTypeFamily, extra string) *describer.ColumnDefault {
	if nowRe.MatchString(raw) {
		return &describer.ColumnDefault{Kind: describer.DefaultNow}
	}
	if strings.Contains(strings.ToUpper(extra), "DEFAULT_GENERATED") {
		return &describer.ColumnDefault{Kind: describer.DefaultDBGenerated, Value: raw}
	}

	value := raw
	if dc.mariadb {
		switch strings.ToUpper(value) {
		case "NULL":
			return nil
		}
		if strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") && len(value) >= 2 {
			value = value[1 : len(value)-1]
			value = strings.ReplaceAll(value, "''", "'")
			value = strings.ReplaceAll(value, `\'`, "'")
		} else if !numericRe.MatchString(value) {
			// Bare non-numeric text on MariaDB is an expression.
			return &describer.ColumnDefault{Kind: describer.DefaultDBGenerated, Value: raw}
		}
	}

	switch family {
	case describer.FamilyInt, describer.FamilyBigInt, describer.FamilyFloat, describer.FamilyDecimal:
		if numericRe.MatchString(value) {
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: value}
		}
	case describer.FamilyBoolean:
		switch value {
		case "1", "true":
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: "true"}
		case "0", "false":
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: "false"}
		}
	case describer.FamilyString, describer.FamilyEnum, describer.FamilyDateTime:
		return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: value}
	}

	return &describer.ColumnDefault{Kind: describer.DefaultDBGenerated, Value: raw}
}

// parseEnumValues pulls the labels out of a column_type rendering such as
// enum('a','b','c').
func parseEnumValues(columnType string) []string {
	open := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if open < 0 || end <= open {
		return nil
	}
	var out []string
	for _, part := range splitEnumBody(columnType[open+1 : end]) {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "'") && strings.HasSuffix(part, "'") && len(part) >= 2 {
			part = strings.ReplaceAll(part[1:len(part)-1], "''", "'")
		}
		out = append(out, part)
	}
	return out
}

// splitEnumBody splits on commas outside single quotes.
func splitEnumBody(s string) []string {
	var parts []string
	var sb strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' && i+1 < len(s) && s[i+1] == '\'' && inQuote:
			sb.WriteString("''")
			i++
		case c == '\'':
			inQuote = !inQuote
			sb.WriteByte(c)
		case c == ',' && !inQuote:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}
