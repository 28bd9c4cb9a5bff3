package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdlkit/internal/describer"
)

func TestClassifyDefaultNow(t *testing.T) {
	dc := &describeCtx{}
	for _, raw := range []string{"CURRENT_TIMESTAMP", "current_timestamp()", "current_timestamp(3)"} {
		d := dc.classifyDefault(raw, describer.FamilyDateTime, "")
		require.NotNil(t, d, raw)
		assert.Equal(t, describer.DefaultNow, d.Kind, raw)
	}
}

func TestClassifyDefaultExpressionExtra(t *testing.T) {
	dc := &describeCtx{}
	d := dc.classifyDefault("uuid()", describer.FamilyString, "DEFAULT_GENERATED")
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultDBGenerated, d.Kind)
	assert.Equal(t, "uuid()", d.Value)
}

func TestClassifyDefaultPlainString(t *testing.T) {
	// MySQL 8 stores string defaults without quotes.
	dc := &describeCtx{}
	d := dc.classifyDefault("pending", describer.FamilyString, "")
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "pending", d.Value)
}

func TestClassifyDefaultMariaDB(t *testing.T) {
	dc := &describeCtx{mariadb: true}

	assert.Nil(t, dc.classifyDefault("NULL", describer.FamilyString, ""))

	d := dc.classifyDefault("'it''s'", describer.FamilyString, "")
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "it's", d.Value)

	d = dc.classifyDefault("uuid()", describer.FamilyString, "")
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultDBGenerated, d.Kind)

	d = dc.classifyDefault("3", describer.FamilyInt, "")
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "3", d.Value)
}

func TestClassifyDefaultBoolean(t *testing.T) {
	dc := &describeCtx{}
	d := dc.classifyDefault("1", describer.FamilyBoolean, "")
	require.NotNil(t, d)
	assert.Equal(t, "true", d.Value)

	d = dc.classifyDefault("0", describer.FamilyBoolean, "")
	require.NotNil(t, d)
	assert.Equal(t, "false", d.Value)
}

func TestParseEnumValues(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, parseEnumValues("enum('a','b','c')"))
	assert.Equal(t, []string{"it's", "x,y"}, parseEnumValues("enum('it''s','x,y')"))
	assert.Nil(t, parseEnumValues("enum"))
}
