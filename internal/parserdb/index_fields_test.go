package parserdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdlkit/internal/connector"
	cmysql "sdlkit/internal/connector/mysql"
	cpostgres "sdlkit/internal/connector/postgres"
)

func TestCompoundUniqueResolvesInDeclaredOrder(t *testing.T) {
	src := `model User {
  a String
  b String

  @@unique([a, b], name: "compound")
}`
	db, diags := resolve(t, src, cpostgres.New())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	mid, _ := db.ModelByName("User")
	ma := db.ModelAttributes(mid)
	require.Len(t, ma.Indexes, 1)

	idx := ma.Indexes[0]
	assert.Equal(t, IndexUnique, idx.Type)
	assert.Equal(t, "compound", db.Get(idx.Name))
	require.Len(t, idx.Fields, 2)
	assert.Equal(t, []string{"a"}, idx.Fields[0].Path.Names)
	assert.Equal(t, []string{"b"}, idx.Fields[1].Path.Names)
}

func TestCompoundIDUnknownFieldSingleDiagnostic(t *testing.T) {
	src := `model User {
  a Int

  @@id([a, c])
}`
	_, diags := resolve(t, src, cpostgres.New())
	require.True(t, diags.HasErrors())
	require.Len(t, diags.Errors(), 1)
	assert.Equal(t, "The id definition refers to the unknown fields: c.", diags.Errors()[0].Message)
}

func TestIndexDuplicateField(t *testing.T) {
	src := `model User {
  id Int @id
  a  String

  @@index([a, a])
}`
	_, diags := resolve(t, src, cpostgres.New())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "The index definition refers to the field `a` multiple times.")
}

func TestIndexOnRelationFieldSuggestsScalars(t *testing.T) {
	src := `model Post {
  id       Int  @id
  authorId Int
  author   User @relation(fields: [authorId], references: [id])

  @@index([author])
}

model User {
  id    Int    @id
  posts Post[]
}`
	_, diags := resolve(t, src, cpostgres.New())
	require.True(t, diags.HasErrors())
	require.Len(t, diags.Errors(), 1)
	msg := diags.Errors()[0].Message
	assert.Contains(t, msg, "The index definition refers to the relation fields: author. Index definitions must reference only scalar fields.")
	assert.Contains(t, msg, "Did you mean `@@index([authorId])`?")
}

func TestIndexNameArgumentSuggestsMap(t *testing.T) {
	src := `model User {
  id Int @id
  a  String

  @@index([a], name: "idx")
}`
	_, diags := resolve(t, src, cpostgres.New())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "The `name` argument is not allowed on `@@index`. Did you mean `map`?")
}

func TestIndexFieldArgumentsOnMySQL(t *testing.T) {
	src := `model Post {
  id    Int    @id
  title String

  @@index([title(length: 10)])
}`
	db, diags := resolve(t, src, cmysql.New())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	mid, _ := db.ModelByName("Post")
	idx := db.ModelAttributes(mid).Indexes[0]
	require.Len(t, idx.Fields, 1)
	require.NotNil(t, idx.Fields[0].Length)
	assert.Equal(t, 10, *idx.Fields[0].Length)
}

func TestIndexLengthGatedOnPostgres(t *testing.T) {
	src := `model Post {
  id    Int    @id
  title String

  @@index([title(length: 10)])
}`
	_, diags := resolve(t, src, cpostgres.New())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "The length argument is not supported in an index definition with the current connector")
}

func TestFulltextGatedByConnector(t *testing.T) {
	src := `model Post {
  id    Int    @id
  title String

  @@fulltext([title])
}`
	_, diags := resolve(t, src, cpostgres.New())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "Defining fulltext indexes is not supported with the current connector.")

	db, diags2 := resolve(t, src, cmysql.New())
	require.False(t, diags2.HasErrors(), "%v", diags2.Errors())
	mid, _ := db.ModelByName("Post")
	require.Len(t, db.ModelAttributes(mid).Indexes, 1)
	assert.Equal(t, IndexFulltext, db.ModelAttributes(mid).Indexes[0].Type)
}

func TestOperatorClassRaw(t *testing.T) {
	src := `model Post {
  id   Int    @id
  body String

  @@index([body(ops: raw("gin_trgm_ops"))], type: Gin)
}`
	db, diags := resolve(t, src, cpostgres.New())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	mid, _ := db.ModelByName("Post")
	idx := db.ModelAttributes(mid).Indexes[0]
	assert.Equal(t, "Gin", idx.Algorithm)
	assert.Equal(t, "gin_trgm_ops", idx.Fields[0].OperatorClass)
	assert.True(t, idx.Fields[0].OperatorClassRaw)
}

func TestCompositePathInIndex(t *testing.T) {
	src := `type Address {
  street String
  city   String
}

model User {
  id      Int     @id
  address Address

  @@index([address.city])
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	mid, _ := db.ModelByName("User")
	idx := db.ModelAttributes(mid).Indexes[0]
	assert.Equal(t, []string{"address", "city"}, idx.Fields[0].Path.Names)
}
