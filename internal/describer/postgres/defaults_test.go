package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdlkit/internal/describer"
)

func TestClassifyDefaultSequence(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`nextval('users_id_seq'::regclass)`, "users_id_seq"},
		{`nextval('"Users_id_seq"'::regclass)`, "Users_id_seq"},
		{`nextval('public.users_id_seq'::regclass)`, "users_id_seq"},
		{`nextval('users_id_seq'::text::regclass)`, "users_id_seq"},
	}
	for _, c := range cases {
		d := classifyDefault(c.raw, describer.FamilyInt)
		require.NotNil(t, d, c.raw)
		assert.Equal(t, describer.DefaultSequence, d.Kind, c.raw)
		assert.Equal(t, c.want, d.Value, c.raw)
	}
}

func TestClassifyDefaultNow(t *testing.T) {
	for _, raw := range []string{"now()", "NOW()", "CURRENT_TIMESTAMP", "now()::timestamp with time zone"} {
		d := classifyDefault(raw, describer.FamilyDateTime)
		require.NotNil(t, d, raw)
		assert.Equal(t, describer.DefaultNow, d.Kind, raw)
	}
}

func TestClassifyDefaultString(t *testing.T) {
	d := classifyDefault(`'hello'::text`, describer.FamilyString)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "hello", d.Value)

	d = classifyDefault(`'it''s'::character varying`, describer.FamilyString)
	require.NotNil(t, d)
	assert.Equal(t, "it's", d.Value)
}

func TestClassifyDefaultNumericAndBoolean(t *testing.T) {
	d := classifyDefault("42", describer.FamilyInt)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "42", d.Value)

	d = classifyDefault("-1.5", describer.FamilyFloat)
	require.NotNil(t, d)
	assert.Equal(t, "-1.5", d.Value)

	d = classifyDefault("true", describer.FamilyBoolean)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "true", d.Value)
}

func TestClassifyDefaultEnumIdentifier(t *testing.T) {
	d := classifyDefault(`'ACTIVE'::status`, describer.FamilyEnum)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultValue, d.Kind)
	assert.Equal(t, "ACTIVE", d.Value)
}

func TestClassifyDefaultUniqueRowid(t *testing.T) {
	d := classifyDefault("unique_rowid()", describer.FamilyBigInt)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultUniqueRowid, d.Kind)
}

func TestClassifyDefaultUnknownExpressionDegrades(t *testing.T) {
	raw := "gen_random_uuid()"
	d := classifyDefault(raw, describer.FamilyUUID)
	require.NotNil(t, d)
	assert.Equal(t, describer.DefaultDBGenerated, d.Kind)
	assert.Equal(t, raw, d.Value)
}
