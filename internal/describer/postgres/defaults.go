package postgres

import (
	"regexp"
	"strings"

	"sdlkit/internal/describer"
)

var (
	sequenceRe = regexp.MustCompile(`(?i)^nextval\('(?:"([^"]+)"|([^']+))'(?:::text)?::regclass\)$`)
	// castSuffixRe strips one trailing '::type' cast, including array and
	// multi-word types such as '::character varying[]'.
	castSuffixRe = regexp.MustCompile(`::[a-zA-Z_][a-zA-Z0-9_ ]*(\[\])?$`)
	numericRe    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	quotedRe     = regexp.MustCompile(`^'(.*)'$`)
	identRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// classifyDefault turns a pg_catalog default expression into a classified
// default. Anything unrecognized degrades to a raw db-generated
// passthrough; classification never fails.
func classifyDefault(raw string, family describer.ColumnTypeFamily) *describer.ColumnDefault {
	if m := sequenceRe.FindStringSubmatch(raw); m != nil {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		// The regclass literal may be schema-qualified.
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		return &describer.ColumnDefault{Kind: describer.DefaultSequence, Value: name}
	}

	stripped := raw
	for {
		next := castSuffixRe.ReplaceAllString(stripped, "")
		if next == stripped {
			break
		}
		stripped = next
	}

	switch strings.ToUpper(stripped) {
	case "NOW()", "CURRENT_TIMESTAMP":
		return &describer.ColumnDefault{Kind: describer.DefaultNow}
	case "UNIQUE_ROWID()":
		return &describer.ColumnDefault{Kind: describer.DefaultUniqueRowid}
	}

	if m := quotedRe.FindStringSubmatch(stripped); m != nil {
		value := strings.ReplaceAll(m[1], "''", "'")
		return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: value}
	}

	switch family {
	case describer.FamilyInt, describer.FamilyBigInt, describer.FamilyFloat, describer.FamilyDecimal:
		if numericRe.MatchString(stripped) {
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: stripped}
		}
	case describer.FamilyBoolean:
		switch strings.ToLower(stripped) {
		case "true", "false":
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: strings.ToLower(stripped)}
		}
	case describer.FamilyString, describer.FamilyEnum:
		// Unquoted identifiers remain after cast stripping for enum
		// defaults in some catalog versions.
		if identRe.MatchString(stripped) {
			return &describer.ColumnDefault{Kind: describer.DefaultValue, Value: stripped}
		}
	}

	return &describer.ColumnDefault{Kind: describer.DefaultDBGenerated, Value: raw}
}
