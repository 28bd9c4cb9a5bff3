package mssql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdlkit/internal/describer"
)

func TestClassifyDefaultUnwrapsParens(t *testing.T) {
	d := classifyDefault("((42))", describer.FamilyInt)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "42", d.Value)

	d = classifyDefault("('hello')", describer.FamilyString)
	require.NotNil(t, d)
	assert.Equal(t, "hello", d.Value)

	d = classifyDefault("(N'héllo')", describer.FamilyString)
	require.NotNil(t, d)
	assert.Equal(t, "héllo", d.Value)
}

func TestClassifyDefaultBalancedParens(t *testing.T) {
	// The outer pair of ((1)+(2)) wraps the whole expression; the next
	// strip would split it and must not happen.
	d := classifyDefault("((1)+(2))", describer.FamilyInt)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultDBGenerated, d.Kind)
	assert.Equal(t, "((1)+(2))", d.Value)
}

func TestClassifyDefaultNow(t *testing.T) {
	for _, raw := range []string{"(getdate())", "(sysdatetime())", "(sysutcdatetime())", "(CURRENT_TIMESTAMP)"} {
		d := classifyDefault(raw, describer.FamilyDateTime)
		require.NotNil(t, d, raw)
		assert.Equal(t, describer.DefaultNow, d.Kind, raw)
	}
}

func TestClassifyDefaultSequence(t *testing.T) {
	d := classifyDefault("(NEXT VALUE FOR [dbo].[order_seq])", describer.FamilyBigInt)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultSequence, d.Kind)
	assert.Equal(t, "order_seq", d.Value)

	d = classifyDefault("(NEXT VALUE FOR order_seq)", describer.FamilyBigInt)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultSequence, d.Kind)
	assert.Equal(t, "order_seq", d.Value)
}

func TestClassifyDefaultBit(t *testing.T) {
	d := classifyDefault("((1))", describer.FamilyBoolean)
	require.NotNil(t, d)
	assert.Equal(t, "true", d.Value)

	d = classifyDefault("((0))", describer.FamilyBoolean)
	require.NotNil(t, d)
	assert.Equal(t, "false", d.Value)
}

func TestMapColumnType(t *testing.T) {
	ct := mapColumnType("nvarchar", true)
	assert.Equal(t, describer.FamilyString, ct.Family)
	assert.Equal(t, describer.ColumnNullable, ct.Arity)

	ct = mapColumnType("uniqueidentifier", false)
	assert.Equal(t, describer.FamilyUUID, ct.Family)
	assert.Equal(t, describer.ColumnRequired, ct.Arity)

	ct = mapColumnType("geography", false)
	assert.Equal(t, describer.FamilyUnsupported, ct.Family)
	assert.Equal(t, "geography", ct.FullType)
}
