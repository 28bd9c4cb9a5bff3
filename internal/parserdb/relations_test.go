package parserdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdlkit/internal/connector"
)

// fieldName resolves a ModelFieldKey back to "Model.field" for assertions.
func fieldName(db *DB, key ModelFieldKey) string {
	m := db.Schema.Model(key.Model)
	return m.Name.Name + "." + m.Field(key.Field).Name.Name
}

func TestInlineRelationForwardIsFieldsSide(t *testing.T) {
	src := `model User {
  id    Int    @id
  posts Post[]
}

model Post {
  id       Int  @id
  authorId Int
  author   User @relation(fields: [authorId], references: [id])
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	rels := db.Relations()
	require.Len(t, rels, 1)
	r := rels[0]
	assert.Equal(t, RelationInline, r.Kind)
	assert.Equal(t, "Post.author", fieldName(db, r.Forward))
	require.NotNil(t, r.Back)
	assert.Equal(t, "User.posts", fieldName(db, *r.Back))
}

func TestInlineRelationWithoutFieldsPicksNonListSide(t *testing.T) {
	src := `model User {
  id      Int      @id
  profile Profile?
}

model Profile {
  id   Int  @id
  user User
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	rels := db.Relations()
	require.Len(t, rels, 1)
	r := rels[0]
	assert.Equal(t, RelationInline, r.Kind)
	// Neither side carries fields and neither is a list; the first side
	// walked stays forward.
	require.NotNil(t, r.Back)
}

func TestOneSidedRelationHasNoBack(t *testing.T) {
	src := `model Post {
  id       Int  @id
  authorId Int
  author   User @relation(fields: [authorId], references: [id])
}

model User {
  id Int @id
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	rels := db.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, RelationInline, rels[0].Kind)
	assert.Equal(t, "Post.author", fieldName(db, rels[0].Forward))
	assert.Nil(t, rels[0].Back)
}

func TestImplicitManyToMany(t *testing.T) {
	src := `model Post {
  id         Int        @id
  categories Category[]
}

model Category {
  id    Int    @id
  posts Post[]
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	rels := db.Relations()
	require.Len(t, rels, 1)
	r := rels[0]
	assert.Equal(t, RelationImplicitManyToMany, r.Kind)
	assert.Equal(t, "Post.categories", fieldName(db, r.Forward))
	require.NotNil(t, r.Back)
	assert.Equal(t, "Category.posts", fieldName(db, *r.Back))
}

func TestTwoWayEmbeddedManyToMany(t *testing.T) {
	src := `model Post {
  id          Int        @id
  categoryIds Int[]
  categories  Category[] @relation(fields: [categoryIds], references: [id])
}

model Category {
  id      Int    @id
  postIds Int[]
  posts   Post[] @relation(fields: [postIds], references: [id])
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	rels := db.Relations()
	require.Len(t, rels, 1)
	r := rels[0]
	assert.Equal(t, RelationTwoWayEmbeddedManyToMany, r.Kind)
	assert.Equal(t, "Post.categories", fieldName(db, r.Forward))
	require.NotNil(t, r.Back)
	assert.Equal(t, "Category.posts", fieldName(db, *r.Back))
}

func TestBackListWithFieldsForcesEmbedded(t *testing.T) {
	// Only the second side carries a fields argument; that side still
	// flips the pair from an implied join table to embedded references,
	// and becomes the forward side.
	src := `model Post {
  id         Int        @id
  categories Category[]
}

model Category {
  id      Int    @id
  postIds Int[]
  posts   Post[] @relation(fields: [postIds], references: [id])
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	rels := db.Relations()
	require.Len(t, rels, 1)
	r := rels[0]
	assert.Equal(t, RelationTwoWayEmbeddedManyToMany, r.Kind)
	assert.Equal(t, "Category.posts", fieldName(db, r.Forward))
	require.NotNil(t, r.Back)
	assert.Equal(t, "Post.categories", fieldName(db, *r.Back))
}

func TestNamedRelationsDisambiguate(t *testing.T) {
	src := `model User {
  id       Int    @id
  written  Post[] @relation("Author")
  reviewed Post[] @relation("Reviewer")
}

model Post {
  id         Int  @id
  authorId   Int
  reviewerId Int
  author     User @relation("Author", fields: [authorId], references: [id])
  reviewer   User @relation("Reviewer", fields: [reviewerId], references: [id])
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	rels := db.Relations()
	require.Len(t, rels, 2)
	for _, r := range rels {
		assert.Equal(t, RelationInline, r.Kind)
		require.NotNil(t, r.Back)
	}
	assert.Equal(t, "Author", db.Get(rels[0].Name))
	assert.Equal(t, "Reviewer", db.Get(rels[1].Name))
}

func TestAmbiguousRelationReported(t *testing.T) {
	src := `model Post {
  id       Int  @id
  authorId Int
  author   User @relation(fields: [authorId], references: [id])
}

model User {
  id     Int    @id
  posts1 Post[]
  posts2 Post[]
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags),
		"Ambiguous relation detected. The fields `posts1` and `posts2` in model `User` both refer to `Post`. Please provide different relation names for them by adding `@relation(<name>)`.")
}

func TestSelfRelation(t *testing.T) {
	src := `model Employee {
  id        Int        @id
  managerId Int?
  manager   Employee?  @relation("Reports", fields: [managerId], references: [id])
  reports   Employee[] @relation("Reports")
}`
	db, diags := resolve(t, src, connector.Default())
	require.False(t, diags.HasErrors(), "%v", diags.Errors())

	rels := db.Relations()
	require.Len(t, rels, 1)
	r := rels[0]
	assert.Equal(t, RelationInline, r.Kind)
	assert.Equal(t, "Employee.manager", fieldName(db, r.Forward))
	require.NotNil(t, r.Back)
	assert.Equal(t, "Employee.reports", fieldName(db, *r.Back))
}

func TestFieldsReferencesArityMismatch(t *testing.T) {
	src := `model Post {
  id       Int  @id
  authorId Int
  extra    Int
  author   User @relation(fields: [authorId, extra], references: [id])
}

model User {
  id Int @id
}`
	_, diags := resolve(t, src, connector.Default())
	require.True(t, diags.HasErrors())
	assert.Contains(t, errorMessages(diags), "You must specify the same number of fields in `fields` and `references`.")
}
