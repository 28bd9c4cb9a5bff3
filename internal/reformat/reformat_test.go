package reformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReformatAlignsFieldColumns(t *testing.T) {
	src := `model User {
  id Int @id
  email String @unique
  name String?
}`
	want := `model User {
  id    Int     @id
  email String  @unique
  name  String?
}
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatOrdersFieldAttributes(t *testing.T) {
	src := `model User {
  id Int @map("user_id") @default(autoincrement()) @id
}`
	want := `model User {
  id Int @id @default(autoincrement()) @map("user_id")
}
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatInsertsMissingBackRelationField(t *testing.T) {
	src := `model Post {
  id Int @id
  authorId Int
  author User @relation(fields: [authorId], references: [id])
}

model User {
  id Int @id
}`
	want := `model Post {
  id       Int  @id
  authorId Int
  author   User @relation(fields: [authorId], references: [id])
}

model User {
  id   Int    @id
  Post Post[]
}
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatInsertedFieldCarriesExplicitRelationName(t *testing.T) {
	src := `model Post {
  id Int @id
  authorId Int
  author User @relation("Written", fields: [authorId], references: [id])
}

model User {
  id Int @id
}`
	got := Reformat(src)
	assert.Contains(t, got, "Post Post[] @relation(\"Written\")")
}

func TestReformatIsIdempotent(t *testing.T) {
	sources := []string{
		`model User {
  id Int @id
  email String? @unique @map("mail")
  posts Post[]
}

model Post {
  id Int @id
  authorId Int
  author User @relation(fields: [authorId], references: [id])
}`,
		`model Post {
  id Int @id
  authorId Int
  author User @relation(fields: [authorId], references: [id])
}

model User {
  id Int @id
}`,
		`datasource db {
  provider = "postgresql"
  url = env("DATABASE_URL")
}

enum Role {
  ADMIN @map("admin")
  USER
}

model User {
  id Int @id @default(autoincrement())
  role Role @default(USER)
}`,
	}
	for _, src := range sources {
		once := Reformat(src)
		assert.Equal(t, once, Reformat(once))
	}
}

func TestReformatFailsOpenOnParseError(t *testing.T) {
	src := `model User {
  id Int @id
this is not valid
}`
	assert.Equal(t, src, Reformat(src))
}

func TestReformatPreservesCommentsAndDocs(t *testing.T) {
	src := `/// A registered account.
model User {
  // internal note
  id Int @id // primary
  /// Display name.
  name String?
}`
	want := `/// A registered account.
model User {
  // internal note
  id   Int     @id // primary
  /// Display name.
  name String?
}
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatAlignsConfigBlocks(t *testing.T) {
	src := `datasource db {
  provider = "postgresql"
  url = env("DATABASE_URL")
}`
	want := `datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatAlignsEnumValues(t *testing.T) {
	src := `enum Role {
  ADMIN @map("admin")
  USER
  MODERATOR
}`
	want := `enum Role {
  ADMIN     @map("admin")
  USER
  MODERATOR
}
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatPreservesStringQuoting(t *testing.T) {
	src := `model User {
  id Int @id
  bio String @default("he said \"hi\"")
}`
	got := Reformat(src)
	assert.Contains(t, got, `@default("he said \"hi\"")`)
	assert.Equal(t, got, Reformat(got))
}

func TestReformatKeepsBlockAttributesInPlace(t *testing.T) {
	src := `model Account {
  a String
  b String

  @@unique([a, b], map: "account_ab_key")
}`
	want := `model Account {
  a String
  b String

  @@unique([a, b], map: "account_ab_key")
}
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatPreservesTopLevelComments(t *testing.T) {
	src := `// accounts are soft-deleted, never dropped
model User {
  id Int @id
}

// imported from the legacy schema
model Team {
  id Int @id
}`
	want := `// accounts are soft-deleted, never dropped
model User {
  id Int @id
}

// imported from the legacy schema
model Team {
  id Int @id
}
`
	assert.Equal(t, want, Reformat(src))
	assert.Equal(t, want, Reformat(want))
}

func TestReformatKeepsTrailingTopLevelComment(t *testing.T) {
	src := `model User {
  id Int @id
}

// end of schema
`
	want := `model User {
  id Int @id
}

// end of schema
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatKeepsDanglingDocComment(t *testing.T) {
	src := `model User {
  id Int @id
}

/// Holds notes for the next block.`
	want := `model User {
  id Int @id
}

/// Holds notes for the next block.
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatInsertsBackRelationFieldBeforeBlockAttributes(t *testing.T) {
	src := `model Post {
  id Int @id
  authorId Int
  author User @relation(fields: [authorId], references: [id])
}

model User {
  id Int @id
  email String

  @@unique([email])
}`
	want := `model Post {
  id       Int  @id
  authorId Int
  author   User @relation(fields: [authorId], references: [id])
}

model User {
  id    Int    @id
  email String
  Post  Post[]

  @@unique([email])
}
`
	assert.Equal(t, want, Reformat(src))
}

func TestReformatInsertsOptionalSideForBareListRelation(t *testing.T) {
	src := `model User {
  id Int @id
  posts Post[]
}

model Post {
  id Int @id
}`
	want := `model User {
  id    Int    @id
  posts Post[]
}

model Post {
  id   Int   @id
  User User?
}
`
	assert.Equal(t, want, Reformat(src))
	assert.Equal(t, want, Reformat(want))
}
