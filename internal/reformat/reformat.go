// Package reformat renders schema text in canonical form: fields aligned
// into name/type/attribute columns, attributes in a fixed order, and
// missing back-relation fields inserted. Formatting is fail-open: input
// that does not parse is returned unchanged, because formatting must never
// destroy user text.
package reformat

import (
	"strings"

	"sdlkit/internal/ast"
	"sdlkit/internal/diag"
	"sdlkit/internal/dml"
	"sdlkit/internal/parser"
	"sdlkit/internal/parserdb"
)

// Reformat returns the canonical rendering of src, or src unchanged when
// it cannot be parsed.
func Reformat(src string) (out string) {
	schema, diags := parser.Parse(src)
	if diags.HasErrors() {
		return src
	}
	// Lowering assumes a validated database. Semantic errors in otherwise
	// parseable input must not make formatting destructive, so any panic
	// on the way to the missing-field sets falls back to the input.
	defer func() {
		if recover() != nil {
			out = src
		}
	}()

	var semDiags diag.Diagnostics
	db := parserdb.New(schema, parserdb.ConnectorFor(schema), &semDiags)
	missing := missingBackFields(db)

	r := &renderer{schema: schema, missing: missing}
	return r.render()
}

// missingBackFields maps a model name to the back-relation fields lowering
// synthesized for it, in relation order.
func missingBackFields(db *parserdb.DB) map[string][]dml.Field {
	dm := dml.Lift(db)
	out := make(map[string][]dml.Field)
	for i := range dm.Models {
		for _, f := range dm.Models[i].Fields {
			if f.Synthesized {
				out[dm.Models[i].Name] = append(out[dm.Models[i].Name], f)
			}
		}
	}
	return out
}

type renderer struct {
	schema  *ast.Schema
	missing map[string][]dml.Field
	sb      strings.Builder
}

func (r *renderer) render() string {
	for i, top := range r.schema.Tops {
		// A comment top attaches to whatever follows it, so no blank
		// line is inserted between the two.
		if i > 0 && !isCommentTop(r.schema.Tops[i-1].Kind) {
			r.sb.WriteString("\n")
		}
		switch top.Kind {
		case ast.TopModel:
			r.renderModel(r.schema.Model(ast.ModelID(top.ID)))
		case ast.TopCompositeType:
			r.renderCompositeType(r.schema.CompositeType(ast.CompositeTypeID(top.ID)))
		case ast.TopEnum:
			r.renderEnum(r.schema.Enum(ast.EnumID(top.ID)))
		case ast.TopDatasource:
			d := &r.schema.Datasources[top.ID]
			r.renderConfigBlock("datasource", d.Name.Name, d.Documentation, d.Properties)
		case ast.TopGenerator:
			g := &r.schema.Generators[top.ID]
			r.renderConfigBlock("generator", g.Name.Name, g.Documentation, g.Properties)
		case ast.TopComment:
			for _, line := range strings.Split(top.Comment, "\n") {
				r.line(strings.TrimRight("// "+line, " "))
			}
		case ast.TopDocComment:
			r.renderDoc(top.Comment, "")
		}
	}
	return r.sb.String()
}

func isCommentTop(k ast.TopKind) bool {
	return k == ast.TopComment || k == ast.TopDocComment
}

func (r *renderer) renderDoc(doc, indent string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		r.line(indent + strings.TrimRight("/// "+line, " "))
	}
}

func (r *renderer) line(s string) {
	r.sb.WriteString(strings.TrimRight(s, " "))
	r.sb.WriteString("\n")
}

// fieldRow is one body line of a model or composite type block, split into
// the columns the aligner pads.
type fieldRow struct {
	doc     string
	name    string
	typ     string
	attrs   string
	comment string
}

func (r *renderer) renderModel(m *ast.Model) {
	rows := make([]fieldRow, 0, len(m.Fields))
	for i := range m.Fields {
		rows = append(rows, r.fieldRow(&m.Fields[i]))
	}
	inserted := make([]fieldRow, 0)
	for _, f := range r.missing[m.Name.Name] {
		inserted = append(inserted, synthesizedRow(m.Name.Name, f))
	}

	nameW, typeW := columnWidths(append(append([]fieldRow{}, rows...), inserted...))

	// Inferred back-relation fields go right after the last declared
	// field, ahead of any block attributes.
	lastField := -1
	for i, item := range m.Items {
		if item.Kind == ast.ItemField {
			lastField = i
		}
	}

	r.renderDoc(m.Documentation, "")
	r.line("model " + m.Name.Name + " {")
	if lastField < 0 {
		for _, row := range inserted {
			r.renderRow(row, nameW, typeW)
		}
	}
	for i, item := range m.Items {
		switch item.Kind {
		case ast.ItemField:
			r.renderRow(rows[item.Index], nameW, typeW)
			if i == lastField {
				for _, row := range inserted {
					r.renderRow(row, nameW, typeW)
				}
			}
		case ast.ItemAttribute:
			// Block attributes are set off from the field list by one
			// blank line, whether or not source had one.
			if i > 0 && m.Items[i-1].Kind != ast.ItemAttribute && m.Items[i-1].Kind != ast.ItemComment {
				r.line("")
			}
			r.line("  " + renderAttribute(&m.Attributes[item.Index], "@@"))
		case ast.ItemComment:
			r.line("  " + strings.TrimRight("// "+item.Comment, " "))
		}
	}
	r.line("}")
}

func (r *renderer) renderCompositeType(ct *ast.CompositeType) {
	rows := make([]fieldRow, 0, len(ct.Fields))
	for i := range ct.Fields {
		rows = append(rows, r.fieldRow(&ct.Fields[i]))
	}
	nameW, typeW := columnWidths(rows)

	r.renderDoc(ct.Documentation, "")
	r.line("type " + ct.Name.Name + " {")
	for _, item := range ct.Items {
		switch item.Kind {
		case ast.ItemField:
			r.renderRow(rows[item.Index], nameW, typeW)
		case ast.ItemComment:
			r.line("  " + strings.TrimRight("// "+item.Comment, " "))
		}
	}
	r.line("}")
}

func (r *renderer) renderEnum(e *ast.Enum) {
	nameW := 0
	for i := range e.Values {
		if w := len(e.Values[i].Name.Name); w > nameW {
			nameW = w
		}
	}

	r.renderDoc(e.Documentation, "")
	r.line("enum " + e.Name.Name + " {")
	for _, item := range e.Items {
		switch item.Kind {
		case ast.ItemEnumValue:
			v := &e.Values[item.Index]
			r.renderDoc(v.Documentation, "  ")
			cols := []string{pad(v.Name.Name, nameW)}
			if s := renderAttributes(v.Attributes, "@"); s != "" {
				cols = append(cols, s)
			}
			if v.Comment != "" {
				cols = append(cols, "// "+v.Comment)
			}
			r.line("  " + strings.Join(cols, " "))
		case ast.ItemAttribute:
			r.line("  " + renderAttribute(&e.Attributes[item.Index], "@@"))
		case ast.ItemComment:
			r.line("  " + strings.TrimRight("// "+item.Comment, " "))
		}
	}
	r.line("}")
}

func (r *renderer) renderConfigBlock(keyword, name, doc string, props []ast.ConfigProperty) {
	nameW := 0
	for i := range props {
		if w := len(props[i].Name.Name); w > nameW {
			nameW = w
		}
	}
	r.renderDoc(doc, "")
	r.line(keyword + " " + name + " {")
	for i := range props {
		r.line("  " + pad(props[i].Name.Name, nameW) + " = " + props[i].Value.String())
	}
	r.line("}")
}

func (r *renderer) fieldRow(f *ast.Field) fieldRow {
	return fieldRow{
		doc:     f.Documentation,
		name:    f.Name.Name,
		typ:     renderFieldType(f),
		attrs:   renderAttributes(f.Attributes, "@"),
		comment: f.Comment,
	}
}

func (r *renderer) renderRow(row fieldRow, nameW, typeW int) {
	r.renderDoc(row.doc, "  ")
	cols := []string{pad(row.name, nameW)}
	if row.attrs == "" && row.comment == "" {
		cols = append(cols, row.typ)
	} else {
		cols = append(cols, pad(row.typ, typeW))
	}
	if row.attrs != "" {
		cols = append(cols, row.attrs)
	}
	if row.comment != "" {
		cols = append(cols, "// "+row.comment)
	}
	r.line("  " + strings.Join(cols, " "))
}

func renderFieldType(f *ast.Field) string {
	switch f.Arity {
	case ast.List:
		return f.Type.Name + "[]"
	case ast.Optional:
		return f.Type.Name + "?"
	default:
		return f.Type.Name
	}
}

// synthesizedRow renders one inferred back-relation field. The relation
// name argument is emitted only when it does not match the name that would
// be derived from the two model names anyway.
func synthesizedRow(modelName string, f dml.Field) fieldRow {
	attrs := ""
	if f.Relation != nil {
		a, b := modelName, f.Relation.To
		if strings.Compare(a, b) > 0 {
			a, b = b, a
		}
		if f.Relation.Name != a+"To"+b {
			attrs = "@relation(\"" + f.Relation.Name + "\")"
		}
	}
	typ := f.Type.Name
	switch f.Arity {
	case dml.List:
		typ += "[]"
	case dml.Optional:
		typ += "?"
	}
	return fieldRow{name: f.Name, typ: typ, attrs: attrs}
}

func columnWidths(rows []fieldRow) (nameW, typeW int) {
	for _, row := range rows {
		if len(row.name) > nameW {
			nameW = len(row.name)
		}
		if len(row.typ) > typeW {
			typeW = len(row.typ)
		}
	}
	return nameW, typeW
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
