// Package parser turns schema definition text into the CST defined in
// internal/ast. Parsing is tolerant: a malformed declaration or body line
// produces a diagnostic with a byte-accurate span and parsing resumes at the
// next recovery point, so every syntactically valid sibling declaration
// still yields a node.
package parser

import (
	"strings"

	"sdlkit/internal/ast"
	"sdlkit/internal/diag"
)

// Parse parses src into a CST. The returned diagnostics may contain errors
// even when a schema is returned; callers that need a fully valid tree must
// check HasErrors.
func Parse(src string) (*ast.Schema, diag.Diagnostics) {
	p := &parser{
		src:    src,
		toks:   lex(src),
		schema: &ast.Schema{},
	}
	p.parseTop()
	return p.schema, p.diags
}

type parser struct {
	src    string
	toks   []token
	pos    int
	diags  diag.Diagnostics
	schema *ast.Schema
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) peek() token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) at(kind tokenKind) bool { return p.cur().kind == kind }

func spanOf(t token) diag.Span { return diag.NewSpan(t.start, t.end) }

func (p *parser) errAt(t token, msg string) {
	p.diags.AddError(msg, spanOf(t))
}

// skipLine advances past the current line inside a block body. The closing
// brace is left for the caller.
func (p *parser) skipLine() {
	for {
		switch p.cur().kind {
		case tokNewline:
			p.next()
			return
		case tokRBrace, tokEOF:
			return
		default:
			p.next()
		}
	}
}

// recoverTop skips to the next line at brace depth zero, so one broken
// declaration cannot swallow its siblings.
func (p *parser) recoverTop() {
	depth := 0
	for {
		switch p.cur().kind {
		case tokEOF:
			return
		case tokLBrace:
			depth++
		case tokRBrace:
			if depth > 0 {
				depth--
			}
		case tokNewline:
			if depth == 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}

// takeDoc consumes a run of doc-comment lines and returns the joined text
// without the leading slashes.
func (p *parser) takeDoc() string {
	var lines []string
	for {
		switch p.cur().kind {
		case tokDocComment:
			lines = append(lines, docText(p.next().text))
		case tokNewline:
			if len(lines) == 0 {
				p.next()
				continue
			}
			if p.peek().kind == tokDocComment {
				p.next()
				continue
			}
			p.next()
			return strings.Join(lines, "\n")
		default:
			return strings.Join(lines, "\n")
		}
	}
}

func docText(raw string) string {
	return strings.TrimPrefix(strings.TrimPrefix(raw, "///"), " ")
}

func commentText(raw string) string {
	return strings.TrimPrefix(strings.TrimPrefix(raw, "//"), " ")
}

// takeTopComment records a run of free-standing `//` lines as a comment
// top, so the reformatter can emit them back in place.
func (p *parser) takeTopComment() {
	var lines []string
	for {
		switch {
		case p.at(tokComment):
			lines = append(lines, commentText(p.next().text))
		case p.at(tokNewline) && p.peek().kind == tokComment:
			p.next()
		default:
			p.schema.Tops = append(p.schema.Tops, ast.Top{Kind: ast.TopComment, Comment: strings.Join(lines, "\n")})
			return
		}
	}
}

func (p *parser) parseTop() {
	for {
		for p.at(tokNewline) {
			p.next()
		}
		if p.at(tokComment) {
			p.takeTopComment()
			continue
		}
		doc := p.takeDoc()
		if p.at(tokEOF) {
			if doc != "" {
				p.schema.Tops = append(p.schema.Tops, ast.Top{Kind: ast.TopDocComment, Comment: doc})
			}
			return
		}
		if !p.at(tokIdent) {
			p.errAt(p.cur(), "This line is invalid. It does not start with any known keyword.")
			p.recoverTop()
			continue
		}
		switch p.cur().text {
		case "model":
			p.parseModel(doc)
		case "type":
			p.parseCompositeType(doc)
		case "enum":
			p.parseEnum(doc)
		case "datasource":
			p.parseConfigBlock(doc, true)
		case "generator":
			p.parseConfigBlock(doc, false)
		default:
			p.errAt(p.cur(), "This line is invalid. It does not start with any known keyword.")
			p.recoverTop()
		}
	}
}

// blockHeader parses `<keyword> Name {`. It returns false when the header
// is malformed, after recovering to the next top-level line.
func (p *parser) blockHeader(what string) (ast.Identifier, token, bool) {
	kw := p.next()
	if !p.at(tokIdent) {
		p.errAt(p.cur(), "Expected a name for the "+what+".")
		p.recoverTop()
		return ast.Identifier{}, kw, false
	}
	nameTok := p.next()
	name := ast.Identifier{Name: nameTok.text, Span: spanOf(nameTok)}
	if !p.at(tokLBrace) {
		p.errAt(p.cur(), "Expected a `{` to start the "+what+" body.")
		p.recoverTop()
		return ast.Identifier{}, kw, false
	}
	p.next()
	return name, kw, true
}

func (p *parser) parseModel(doc string) {
	name, kw, ok := p.blockHeader("model")
	if !ok {
		return
	}
	m := ast.Model{Name: name, Documentation: doc}
	p.parseFieldBody(&m.Fields, &m.Attributes, &m.Items, true)
	m.Span = diag.NewSpan(kw.start, p.toks[p.pos-1].end)
	p.schema.Models = append(p.schema.Models, m)
	p.schema.Tops = append(p.schema.Tops, ast.Top{Kind: ast.TopModel, ID: len(p.schema.Models) - 1})
}

func (p *parser) parseCompositeType(doc string) {
	name, kw, ok := p.blockHeader("composite type")
	if !ok {
		return
	}
	ct := ast.CompositeType{Name: name, Documentation: doc}
	// Block attributes are rejected inside parseFieldBody; the slice only
	// keeps them out of the composite type node.
	var attrs []ast.Attribute
	p.parseFieldBody(&ct.Fields, &attrs, &ct.Items, false)
	ct.Span = diag.NewSpan(kw.start, p.toks[p.pos-1].end)
	p.schema.CompositeTypes = append(p.schema.CompositeTypes, ct)
	p.schema.Tops = append(p.schema.Tops, ast.Top{Kind: ast.TopCompositeType, ID: len(p.schema.CompositeTypes) - 1})
}

// parseFieldBody parses the lines of a model or composite type block until
// the closing brace.
func (p *parser) parseFieldBody(fields *[]ast.Field, attrs *[]ast.Attribute, items *[]ast.Item, allowBlockAttrs bool) {
	var pendingDoc []string
	for {
		switch p.cur().kind {
		case tokNewline:
			p.next()
		case tokComment:
			t := p.next()
			*items = append(*items, ast.Item{Kind: ast.ItemComment, Comment: commentText(t.text)})
		case tokDocComment:
			pendingDoc = append(pendingDoc, docText(p.next().text))
		case tokRBrace:
			p.next()
			return
		case tokEOF:
			p.errAt(p.cur(), "Expected a `}` to close the block.")
			return
		case tokAtAt:
			a, ok := p.parseAttribute()
			if ok {
				if !allowBlockAttrs {
					p.diags.AddError("Block attributes are not allowed here.", a.Span)
				}
				*attrs = append(*attrs, a)
				*items = append(*items, ast.Item{Kind: ast.ItemAttribute, Index: len(*attrs) - 1})
			} else {
				p.skipLine()
			}
			pendingDoc = nil
		case tokIdent:
			f, ok := p.parseField(strings.Join(pendingDoc, "\n"))
			pendingDoc = nil
			if ok {
				*fields = append(*fields, f)
				*items = append(*items, ast.Item{Kind: ast.ItemField, Index: len(*fields) - 1})
			}
		default:
			p.errAt(p.cur(), "This line is invalid.")
			p.skipLine()
			pendingDoc = nil
		}
	}
}

func (p *parser) parseField(doc string) (ast.Field, bool) {
	nameTok := p.next()
	f := ast.Field{
		Name:          ast.Identifier{Name: nameTok.text, Span: spanOf(nameTok)},
		Documentation: doc,
	}
	if !p.at(tokIdent) {
		p.errAt(p.cur(), "This field declaration is invalid. It is missing a type.")
		p.skipLine()
		return ast.Field{}, false
	}
	typeTok := p.next()
	f.Type = ast.FieldType{Name: typeTok.text, Span: spanOf(typeTok)}
	f.Arity = ast.Required
	if p.at(tokLBracket) {
		p.next()
		if !p.at(tokRBracket) {
			p.errAt(p.cur(), "Expected a `]` after `[` in the field type.")
			p.skipLine()
			return ast.Field{}, false
		}
		p.next()
		f.Arity = ast.List
	} else if p.at(tokQuestion) {
		p.next()
		f.Arity = ast.Optional
	}
	for p.at(tokAt) {
		a, ok := p.parseAttribute()
		if !ok {
			p.skipLine()
			return ast.Field{}, false
		}
		f.Attributes = append(f.Attributes, a)
	}
	if p.at(tokComment) {
		f.Comment = commentText(p.next().text)
	}
	switch p.cur().kind {
	case tokNewline, tokRBrace, tokEOF:
	default:
		p.errAt(p.cur(), "This line is invalid.")
		p.skipLine()
		return ast.Field{}, false
	}
	f.Span = diag.NewSpan(nameTok.start, p.toks[p.pos-1].end)
	return f, true
}

func (p *parser) parseEnum(doc string) {
	name, kw, ok := p.blockHeader("enum")
	if !ok {
		return
	}
	e := ast.Enum{Name: name, Documentation: doc}
	finish := func() {
		e.Span = diag.NewSpan(kw.start, p.toks[p.pos-1].end)
		p.schema.Enums = append(p.schema.Enums, e)
		p.schema.Tops = append(p.schema.Tops, ast.Top{Kind: ast.TopEnum, ID: len(p.schema.Enums) - 1})
	}
	var pendingDoc []string
	for {
		switch p.cur().kind {
		case tokNewline:
			p.next()
		case tokComment:
			t := p.next()
			e.Items = append(e.Items, ast.Item{Kind: ast.ItemComment, Comment: commentText(t.text)})
		case tokDocComment:
			pendingDoc = append(pendingDoc, docText(p.next().text))
		case tokRBrace:
			p.next()
			finish()
			return
		case tokEOF:
			p.errAt(p.cur(), "Expected a `}` to close the enum.")
			finish()
			return
		case tokAtAt:
			a, ok := p.parseAttribute()
			if ok {
				e.Attributes = append(e.Attributes, a)
				e.Items = append(e.Items, ast.Item{Kind: ast.ItemAttribute, Index: len(e.Attributes) - 1})
			} else {
				p.skipLine()
			}
			pendingDoc = nil
		case tokIdent:
			v := ast.EnumValue{Documentation: strings.Join(pendingDoc, "\n")}
			pendingDoc = nil
			nameTok := p.next()
			v.Name = ast.Identifier{Name: nameTok.text, Span: spanOf(nameTok)}
			bad := false
			for p.at(tokAt) {
				a, ok := p.parseAttribute()
				if !ok {
					p.skipLine()
					bad = true
					break
				}
				v.Attributes = append(v.Attributes, a)
			}
			if bad {
				continue
			}
			if p.at(tokComment) {
				v.Comment = commentText(p.next().text)
			}
			v.Span = diag.NewSpan(nameTok.start, p.toks[p.pos-1].end)
			e.Values = append(e.Values, v)
			e.Items = append(e.Items, ast.Item{Kind: ast.ItemEnumValue, Index: len(e.Values) - 1})
		default:
			p.errAt(p.cur(), "This line is invalid.")
			p.skipLine()
			pendingDoc = nil
		}
	}
}

func (p *parser) parseConfigBlock(doc string, datasource bool) {
	what := "generator"
	if datasource {
		what = "datasource"
	}
	name, kw, ok := p.blockHeader(what)
	if !ok {
		return
	}
	var props []ast.ConfigProperty
	for {
		switch p.cur().kind {
		case tokNewline, tokComment, tokDocComment:
			p.next()
		case tokRBrace:
			p.next()
			span := diag.NewSpan(kw.start, p.toks[p.pos-1].end)
			if datasource {
				p.schema.Datasources = append(p.schema.Datasources, ast.Datasource{Name: name, Properties: props, Documentation: doc, Span: span})
				p.schema.Tops = append(p.schema.Tops, ast.Top{Kind: ast.TopDatasource, ID: len(p.schema.Datasources) - 1})
			} else {
				p.schema.Generators = append(p.schema.Generators, ast.Generator{Name: name, Properties: props, Documentation: doc, Span: span})
				p.schema.Tops = append(p.schema.Tops, ast.Top{Kind: ast.TopGenerator, ID: len(p.schema.Generators) - 1})
			}
			return
		case tokEOF:
			p.errAt(p.cur(), "Expected a `}` to close the "+what+".")
			return
		case tokIdent:
			keyTok := p.next()
			if !p.at(tokEquals) {
				p.errAt(p.cur(), "Expected `=` after the property name.")
				p.skipLine()
				continue
			}
			p.next()
			value, ok := p.parseExpression()
			if !ok {
				p.skipLine()
				continue
			}
			props = append(props, ast.ConfigProperty{
				Name:  ast.Identifier{Name: keyTok.text, Span: spanOf(keyTok)},
				Value: value,
				Span:  diag.NewSpan(keyTok.start, value.Span().End),
			})
		default:
			p.errAt(p.cur(), "This line is invalid.")
			p.skipLine()
		}
	}
}

// parseAttribute parses `@name(...)` or `@@name(...)`. The leading marker
// token is consumed here. Dotted names are kept whole, so a native type
// attribute like `@db.VarChar(191)` has the name "db.VarChar".
func (p *parser) parseAttribute() (ast.Attribute, bool) {
	atTok := p.next()
	if !p.at(tokIdent) {
		p.errAt(p.cur(), "Expected an attribute name.")
		return ast.Attribute{}, false
	}
	nameTok := p.next()
	name := nameTok.text
	nameEnd := nameTok.end
	for p.at(tokDot) && p.peek().kind == tokIdent {
		p.next()
		part := p.next()
		name += "." + part.text
		nameEnd = part.end
	}
	a := ast.Attribute{Name: ast.Identifier{Name: name, Span: diag.NewSpan(nameTok.start, nameEnd)}}
	end := nameEnd
	if p.at(tokLParen) {
		p.next()
		args, closeEnd, ok := p.parseArguments()
		if !ok {
			return ast.Attribute{}, false
		}
		a.Arguments = args
		end = closeEnd
	}
	a.Span = diag.NewSpan(atTok.start, end)
	return a, true
}

// parseArguments parses a comma-separated argument list up to and including
// the closing paren, returning the end offset of that paren.
func (p *parser) parseArguments() ([]ast.Argument, int, bool) {
	var args []ast.Argument
	for {
		for p.at(tokNewline) {
			p.next()
		}
		if p.at(tokComment) || p.at(tokDocComment) {
			// There is no sensible position to reattach these on rendering.
			p.errAt(p.cur(), "Comments inside attribute argument lists are not supported.")
			return nil, 0, false
		}
		if p.at(tokRParen) {
			t := p.next()
			return args, t.end, true
		}
		if p.at(tokEOF) {
			p.errAt(p.cur(), "Expected a closing `)` in the argument list.")
			return nil, 0, false
		}
		arg, ok := p.parseArgument()
		if !ok {
			return nil, 0, false
		}
		args = append(args, arg)
		for p.at(tokNewline) {
			p.next()
		}
		if p.at(tokComma) {
			p.next()
			continue
		}
		if !p.at(tokRParen) {
			p.errAt(p.cur(), "Expected `,` or `)` in the argument list.")
			return nil, 0, false
		}
	}
}

func (p *parser) parseArgument() (ast.Argument, bool) {
	if p.at(tokIdent) && p.peek().kind == tokColon {
		nameTok := p.next()
		p.next()
		value, ok := p.parseExpression()
		if !ok {
			return ast.Argument{}, false
		}
		name := ast.Identifier{Name: nameTok.text, Span: spanOf(nameTok)}
		return ast.Argument{
			Name:  &name,
			Value: value,
			Span:  diag.NewSpan(nameTok.start, value.Span().End),
		}, true
	}
	value, ok := p.parseExpression()
	if !ok {
		return ast.Argument{}, false
	}
	return ast.Argument{Value: value, Span: value.Span()}, true
}

func (p *parser) parseExpression() (ast.Expression, bool) {
	switch p.cur().kind {
	case tokString:
		t := p.next()
		return ast.StringValue{Value: unquote(t.text), Raw: t.text, Sp: spanOf(t)}, true
	case tokNumber:
		t := p.next()
		return ast.NumericValue{Raw: t.text, Sp: spanOf(t)}, true
	case tokLBracket:
		open := p.next()
		var elems []ast.Expression
		for {
			for p.at(tokNewline) {
				p.next()
			}
			if p.at(tokRBracket) {
				t := p.next()
				return ast.ArrayExpression{Elements: elems, Sp: diag.NewSpan(open.start, t.end)}, true
			}
			if p.at(tokEOF) {
				p.errAt(p.cur(), "Expected a closing `]` in the array.")
				return nil, false
			}
			e, ok := p.parseExpression()
			if !ok {
				return nil, false
			}
			elems = append(elems, e)
			for p.at(tokNewline) {
				p.next()
			}
			if p.at(tokComma) {
				p.next()
			}
		}
	case tokIdent:
		nameTok := p.next()
		if p.at(tokLParen) {
			p.next()
			args, closeEnd, ok := p.parseArguments()
			if !ok {
				return nil, false
			}
			return ast.FunctionCall{
				Name:      ast.Identifier{Name: nameTok.text, Span: spanOf(nameTok)},
				Arguments: args,
				Sp:        diag.NewSpan(nameTok.start, closeEnd),
			}, true
		}
		name := nameTok.text
		end := nameTok.end
		for p.at(tokDot) && p.peek().kind == tokIdent {
			p.next()
			part := p.next()
			name += "." + part.text
			end = part.end
		}
		return ast.ConstantValue{Name: name, Sp: diag.NewSpan(nameTok.start, end)}, true
	default:
		p.errAt(p.cur(), "Expected a value.")
		return nil, false
	}
}
