package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdlkit/internal/ast"
)

func TestParseModelWithFields(t *testing.T) {
	src := `model User {
  id    Int     @id
  email String  @unique
  name  String?
  posts Post[]
}`

	schema, diags := Parse(src)
	require.False(t, diags.HasErrors(), "%v", diags.Errors())
	require.Len(t, schema.Models, 1)

	m := schema.Models[0]
	assert.Equal(t, "User", m.Name.Name)
	require.Len(t, m.Fields, 4)

	assert.Equal(t, "id", m.Fields[0].Name.Name)
	assert.Equal(t, "Int", m.Fields[0].Type.Name)
	assert.Equal(t, ast.Required, m.Fields[0].Arity)
	require.Len(t, m.Fields[0].Attributes, 1)
	assert.Equal(t, "id", m.Fields[0].Attributes[0].Name.Name)

	assert.Equal(t, ast.Optional, m.Fields[2].Arity)
	assert.Equal(t, ast.List, m.Fields[3].Arity)
	assert.Equal(t, "Post", m.Fields[3].Type.Name)
}

func TestParseSpansCoverSource(t *testing.T) {
	src := "model User {\n  id Int @id\n}"
	schema, diags := Parse(src)
	require.False(t, diags.HasErrors())

	m := schema.Models[0]
	assert.Equal(t, 0, m.Span.Start)
	assert.Equal(t, len(src), m.Span.End)

	f := m.Fields[0]
	assert.Equal(t, "id Int @id", src[f.Span.Start:f.Span.End])
}

func TestParseDocAndTrailingComments(t *testing.T) {
	src := `/// A user of the system.
model User {
  /// Primary identifier.
  id   Int    @id // trailing note
  // standalone comment
  name String
}`

	schema, diags := Parse(src)
	require.False(t, diags.HasErrors())

	m := schema.Models[0]
	assert.Equal(t, "A user of the system.", m.Documentation)
	assert.Equal(t, "Primary identifier.", m.Fields[0].Documentation)
	assert.Equal(t, "trailing note", m.Fields[0].Comment)

	var comments []string
	for _, item := range m.Items {
		if item.Kind == ast.ItemComment {
			comments = append(comments, item.Comment)
		}
	}
	assert.Equal(t, []string{"standalone comment"}, comments)
}

func TestParseRecoversFromInvalidDeclaration(t *testing.T) {
	src := `model User {
  id Int @id
}

banana

model Post {
  id Int @id
}`

	schema, diags := Parse(src)
	require.True(t, diags.HasErrors())
	require.Len(t, diags.Errors(), 1)
	assert.Equal(t, "This line is invalid. It does not start with any known keyword.", diags.Errors()[0].Message)

	// Both surrounding models still parse.
	require.Len(t, schema.Models, 2)
	assert.Equal(t, "User", schema.Models[0].Name.Name)
	assert.Equal(t, "Post", schema.Models[1].Name.Name)
}

func TestParseEnumAndTopOrder(t *testing.T) {
	src := `enum Role {
  USER
  ADMIN @map("admin")
}

model User {
  id   Int  @id
  role Role
}`

	schema, diags := Parse(src)
	require.False(t, diags.HasErrors())
	require.Len(t, schema.Enums, 1)
	require.Len(t, schema.Enums[0].Values, 2)
	assert.Equal(t, "USER", schema.Enums[0].Values[0].Name.Name)

	require.Len(t, schema.Tops, 2)
	assert.Equal(t, ast.TopEnum, schema.Tops[0].Kind)
	assert.Equal(t, ast.TopModel, schema.Tops[1].Kind)
}

func TestParseDatasourceAndGenerator(t *testing.T) {
	src := `datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}

generator client {
  provider = "sdlkit-client"
}`

	schema, diags := Parse(src)
	require.False(t, diags.HasErrors())
	require.Len(t, schema.Datasources, 1)
	require.Len(t, schema.Generators, 1)

	provider, ok := schema.Datasources[0].Property("provider").(ast.StringValue)
	require.True(t, ok)
	assert.Equal(t, "postgresql", provider.Value)

	url, ok := schema.Datasources[0].Property("url").(ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "env", url.Name.Name)
}

func TestParseAttributeArguments(t *testing.T) {
	src := `model Post {
  id       Int    @id
  authorId Int
  author   User   @relation("Wrote", fields: [authorId], references: [id], onDelete: Cascade)
  title    String @db.VarChar(191)
}`

	schema, diags := Parse(src)
	require.False(t, diags.HasErrors())

	rel := schema.Models[0].Fields[2].Attributes[0]
	require.Len(t, rel.Arguments, 4)
	assert.Nil(t, rel.Arguments[0].Name)
	assert.Equal(t, "fields", rel.Arguments[1].Name.Name)
	_, isArray := rel.Arguments[1].Value.(ast.ArrayExpression)
	assert.True(t, isArray)

	nt := schema.Models[0].Fields[3].Attributes[0]
	assert.Equal(t, "db.VarChar", nt.Name.Name)
	require.Len(t, nt.Arguments, 1)
}

func TestParseCommentInAttributeArgumentsFails(t *testing.T) {
	src := `model User {
  id Int @default(
    // not supported here
    1
  )
}`

	_, diags := Parse(src)
	require.True(t, diags.HasErrors())
	found := false
	for _, e := range diags.Errors() {
		if e.Message == "Comments inside attribute argument lists are not supported." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseCompositeTypeRejectsBlockAttributes(t *testing.T) {
	src := `type Address {
  street String
  @@map("addresses")
}`

	schema, diags := Parse(src)
	require.True(t, diags.HasErrors())
	require.Len(t, schema.CompositeTypes, 1)
	assert.Len(t, schema.CompositeTypes[0].Fields, 1)
}

func TestParseStringEscapes(t *testing.T) {
	src := `model M {
  id Int @id @map("line\nbreak")
}`

	schema, diags := Parse(src)
	require.False(t, diags.HasErrors())

	arg := schema.Models[0].Fields[0].Attributes[1].Arguments[0]
	sv, ok := arg.Value.(ast.StringValue)
	require.True(t, ok)
	assert.Equal(t, "line\nbreak", sv.Value)
	assert.Equal(t, `"line\nbreak"`, sv.Raw)
}

func TestParseTopLevelComments(t *testing.T) {
	src := `// read replica only
// refreshed nightly
model User {
  id Int @id
}

// retired models live below

/// Kept for the next migration.`

	schema, diags := Parse(src)
	require.False(t, diags.HasErrors())

	require.Len(t, schema.Tops, 4)
	assert.Equal(t, ast.TopComment, schema.Tops[0].Kind)
	assert.Equal(t, "read replica only\nrefreshed nightly", schema.Tops[0].Comment)
	assert.Equal(t, ast.TopModel, schema.Tops[1].Kind)
	assert.Equal(t, ast.TopComment, schema.Tops[2].Kind)
	assert.Equal(t, "retired models live below", schema.Tops[2].Comment)
	assert.Equal(t, ast.TopDocComment, schema.Tops[3].Kind)
	assert.Equal(t, "Kept for the next migration.", schema.Tops[3].Comment)
}
