package parserdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdlkit/internal/connector"
	cmysql "sdlkit/internal/connector/mysql"
	cpostgres "sdlkit/internal/connector/postgres"
	csqlite "sdlkit/internal/connector/sqlite"
	"sdlkit/internal/diag"
	"sdlkit/internal/parser"
)

func resolve(t *testing.T, src string, conn connector.Connector) (*DB, *diag.Diagnostics) {
	t.Helper()
	schema, diags := parser.Parse(src)
	require.False(t, diags.HasErrors(), "parse errors: %v", diags.Errors())
	db := New(schema, conn, &diags)
	return db, &diags
}

func errorMessages(diags *diag.Diagnostics) []string {
	var out []string
	for _, e := range diags.Errors() {
		out = append(out, e.Message)
	}
	return out
}

func TestUnknownArgumentOnFieldLevelID(t *testing.T) {
	src := `model User {
  id Int @id(name: "x")
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "No such argument.")
}

func TestSortInPrimaryKeyGatedByConnector(t *testing.T) {
	const want = "The sort argument is not supported in the primary key with the current connector"

	conns := map[string]connector.Connector{
		"mysql":      cmysql.New(),
		"postgresql": cpostgres.New(),
		"sqlite":     csqlite.New(),
	}

	for name, conn := range conns {
		t.Run(name+"/field", func(t *testing.T) {
			src := `model User {
  id Int @id(sort: Desc)
}`
			_, diags := resolve(t, src, conn)
			require.True(t, diags.HasErrors())
			assert.Contains(t, errorMessages(diags), want)
		})
		t.Run(name+"/compound", func(t *testing.T) {
			src := `model User {
  a Int
  b Int
  @@id([a(sort: Desc), b])
}`
			_, diags := resolve(t, src, conn)
			require.True(t, diags.HasErrors())
			assert.Contains(t, errorMessages(diags), want)
		})
	}
}

func TestDuplicateFieldLevelID(t *testing.T) {
	src := `model User {
  a Int @id
  b Int @id
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "At most one field must be marked as the id field with the `@id` attribute.")
}

func TestFieldAndBlockIDConflict(t *testing.T) {
	src := `model User {
  a Int @id
  b Int
  @@id([b])
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "Each model must have at most one id criteria. You can't have `@id` and `@@id` at the same time.")
}

func TestScalarFieldRejectsRelationAttribute(t *testing.T) {
	src := `model User {
  id   Int @id
  name String @relation("nope")
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "The field `name` is a scalar field and cannot have a `@relation` attribute.")
}

func TestUpdatedAtRequiresDateTime(t *testing.T) {
	src := `model User {
  id      Int    @id
  touched String @updatedAt
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "Fields that are marked with `@updatedAt` must be of type `DateTime`.")
}

func TestDefaultEnumValueMembership(t *testing.T) {
	src := `enum Role {
  USER
  ADMIN
}

model User {
  id   Int  @id
  role Role @default(SUPERADMIN)
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "The defined default value `SUPERADMIN` is not a valid value of the enum `Role`.")
}

func TestDefaultFunctions(t *testing.T) {
	src := `model User {
  id        Int      @id @default(autoincrement())
  token     String   @default(uuid())
  createdAt DateTime @default(now())
  raw       String   @default(dbgenerated("gen_random_uuid()"))
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	mid, ok := db.ModelByName("User")
	require.True(t, ok)
	fid, ok := db.FieldByName(mid, "id")
	require.True(t, ok)
	require.NotNil(t, db.ScalarField(mid, fid).Default)
}

func TestAutoincrementRequiresIntField(t *testing.T) {
	src := `model User {
  id   Int    @id
  name String @default(autoincrement())
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "The `autoincrement()` default can only be used on `Int` and `BigInt` fields.")
}

func TestNativeTypeResolution(t *testing.T) {
	src := `datasource db {
  provider = "mysql"
}

model User {
  id    Int    @id
  title String @db.VarChar(191)
}`
	db, diags := resolve(t, src, cmysql.New())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	mid, _ := db.ModelByName("User")
	fid, _ := db.FieldByName(mid, "title")
	sf := db.ScalarField(mid, fid)
	require.NotNil(t, sf.NativeType)
	assert.Equal(t, "VarChar", sf.NativeType.Name)
	assert.Equal(t, []string{"191"}, sf.NativeType.Args)
}

func TestNativeTypePrefixMustMatchDatasource(t *testing.T) {
	src := `datasource db {
  provider = "mysql"
}

model User {
  id    Int    @id
  title String @pg.VarChar(191)
}`
	_, diags := resolve(t, src, cmysql.New())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags)[0], `The prefix "pg" is invalid.`)
}

func TestUnknownNativeType(t *testing.T) {
	src := `datasource db {
  provider = "mysql"
}

model User {
  id Int @id @db.Serial
}`
	_, diags := resolve(t, src, cmysql.New())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "Native type Serial is not supported for mysql connector.")
}

func TestEnumsGatedBySQLite(t *testing.T) {
	src := `enum Role {
  USER
}

model User {
  id   Int  @id
  role Role
}`
	_, diags := resolve(t, src, csqlite.New())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), `Enums are not supported for provider "sqlite".`)
}

func TestMappedNames(t *testing.T) {
	src := `model User {
  id       Int    @id(map: "User_pkey")
  fullName String @map("full_name")

  @@map("users")
}`
	db, diags := resolve(t, src, cpostgres.New())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	mid, _ := db.ModelByName("User")
	ma := db.ModelAttributes(mid)
	assert.Equal(t, "users", db.Get(ma.MappedName))
	require.NotNil(t, ma.PrimaryKey)
	assert.Equal(t, "User_pkey", db.Get(ma.PrimaryKey.MappedName))

	fid, _ := db.FieldByName(mid, "fullName")
	assert.Equal(t, "full_name", db.Get(db.ScalarField(mid, fid).MappedName))
}

func TestUnknownAttribute(t *testing.T) {
	src := `model User {
  id Int @id @banana
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), `Attribute not known: "@banana".`)
}

func TestEnumValueMap(t *testing.T) {
	src := `enum Role {
  USER  @map("user")
  ADMIN
}`
	db, diags := resolve(t, src, cpostgres.New())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	ea := db.EnumAttributes(0)
	require.NotNil(t, ea)
	assert.Equal(t, "user", db.Get(ea.ValueMappedNames[0]))
	_, hasSecond := ea.ValueMappedNames[1]
	assert.False(t, hasSecond)
}
