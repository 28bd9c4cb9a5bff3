package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdlkit/internal/describer"
)

func TestMapColumnTypeAffinity(t *testing.T) {
	cases := []struct {
		declared string
		want     describer.ColumnTypeFamily
	}{
		{"INTEGER", describer.FamilyInt},
		{"BIGINT", describer.FamilyBigInt},
		{"UNSIGNED BIG INT", describer.FamilyInt},
		{"VARCHAR(255)", describer.FamilyString},
		{"NVARCHAR(100)", describer.FamilyString},
		{"TEXT", describer.FamilyString},
		{"CLOB", describer.FamilyString},
		{"BLOB", describer.FamilyBinary},
		{"", describer.FamilyBinary},
		{"DECIMAL(10,5)", describer.FamilyDecimal},
		{"NUMERIC", describer.FamilyDecimal},
		{"REAL", describer.FamilyFloat},
		{"DOUBLE PRECISION", describer.FamilyFloat},
		{"FLOAT", describer.FamilyFloat},
		{"BOOLEAN", describer.FamilyBoolean},
		{"DATETIME", describer.FamilyDateTime},
		{"DATE", describer.FamilyDateTime},
		{"JSONB", describer.FamilyUnsupported},
	}
	for _, c := range cases {
		ct := mapColumnType(c.declared, false)
		assert.Equal(t, c.want, ct.Family, c.declared)
		assert.Equal(t, c.declared, ct.FullType, c.declared)
	}
}

func TestMapColumnTypeArity(t *testing.T) {
	assert.Equal(t, describer.ColumnNullable, mapColumnType("TEXT", true).Arity)
	assert.Equal(t, describer.ColumnRequired, mapColumnType("TEXT", false).Arity)
}

func TestClassifyDefault(t *testing.T) {
	d := classifyDefault("CURRENT_TIMESTAMP", describer.FamilyDateTime)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultNow, d.Kind)

	assert.Nil(t, classifyDefault("NULL", describer.FamilyString))

	d = classifyDefault("'it''s'", describer.FamilyString)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "it's", d.Value)

	d = classifyDefault("42", describer.FamilyInt)
	require.NotNil(t, d)
	assert.Equal(t, "42", d.Value)

	d = classifyDefault("1", describer.FamilyBoolean)
	require.NotNil(t, d)
	assert.Equal(t, "true", d.Value)

	d = classifyDefault("abs(random())", describer.FamilyInt)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultDBGenerated, d.Kind)
}
