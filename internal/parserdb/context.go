package parserdb

import (
	"strings"

	"sdlkit/internal/ast"
	"sdlkit/internal/connector"
	"sdlkit/internal/diag"
)

// attrContext implements the consume-and-validate discipline for one
// attribute list. Every visit marks the attribute as handled and every
// argument accessor marks the argument as consumed; finish() turns anything
// left over into a diagnostic, so an attribute or argument a connector
// silently ignores still surfaces as a user-facing error.
type attrContext struct {
	db    *DB
	diags *diag.Diagnostics

	attrs   []ast.Attribute
	visited []bool

	cur      int
	usedArgs map[int]bool
}

func (db *DB) newAttrContext(attrs []ast.Attribute, diags *diag.Diagnostics) *attrContext {
	return &attrContext{
		db:      db,
		diags:   diags,
		attrs:   attrs,
		visited: make([]bool, len(attrs)),
		cur:     -1,
	}
}

// attr returns the attribute currently being visited.
func (c *attrContext) attr() *ast.Attribute { return &c.attrs[c.cur] }

// span returns the span of the current attribute.
func (c *attrContext) span() diag.Span { return c.attrs[c.cur].Span }

// visit runs fn on the first occurrence of the named attribute, if present.
// A second occurrence of a non-repeatable attribute is an error.
func (c *attrContext) visit(name string, fn func()) {
	found := -1
	for i := range c.attrs {
		if c.attrs[i].Name.Name != name {
			continue
		}
		if found >= 0 {
			c.diags.AddErrorf(c.attrs[i].Span, "Attribute %q can only be defined once.", "@"+name)
			c.visited[i] = true
			continue
		}
		found = i
	}
	if found < 0 {
		return
	}
	c.enter(found)
	fn()
	c.leave()
}

// visitRepeated runs fn once per occurrence of the named attribute.
func (c *attrContext) visitRepeated(name string, fn func()) {
	for i := range c.attrs {
		if c.attrs[i].Name.Name != name {
			continue
		}
		c.enter(i)
		fn()
		c.leave()
	}
}

func (c *attrContext) enter(i int) {
	c.cur = i
	c.visited[i] = true
	c.usedArgs = make(map[int]bool)
}

// leave reports every argument of the current attribute that no accessor
// consumed.
func (c *attrContext) leave() {
	for i, arg := range c.attrs[c.cur].Arguments {
		if !c.usedArgs[i] {
			c.diags.AddError("No such argument.", arg.Span)
		}
	}
	c.cur = -1
	c.usedArgs = nil
}

// consumeRest marks every remaining argument of the current attribute as
// consumed, suppressing follow-up "No such argument." noise after the
// attribute as a whole has already been rejected.
func (c *attrContext) consumeRest() {
	for i := range c.attr().Arguments {
		c.usedArgs[i] = true
	}
}

// rejected records an error for an attribute that is not allowed in this
// position, consuming it and all its arguments.
func (c *attrContext) rejected(name, message string) {
	c.visit(name, func() {
		c.diags.AddError(message, c.span())
		for i := range c.attr().Arguments {
			c.usedArgs[i] = true
		}
	})
}

// finish reports unknown attributes: anything never visited. Dotted names
// are native type attributes and are handled by the caller before finish.
func (c *attrContext) finish() {
	for i := range c.attrs {
		if c.visited[i] {
			continue
		}
		name := c.attrs[i].Name.Name
		if strings.Contains(name, ".") {
			// Native type attributes are consumed explicitly by the scalar
			// field resolver. Reaching finish unvisited means they were
			// attached somewhere they cannot apply.
			c.diags.AddErrorf(c.attrs[i].Span, "Native type attributes are not allowed here.")
			continue
		}
		c.diags.AddErrorf(c.attrs[i].Span, "Attribute not known: %q.", "@"+name)
	}
}

// arg returns the named argument, or the first positional argument when no
// argument carries the name. The returned expression is marked consumed.
func (c *attrContext) arg(name string) (ast.Expression, bool) {
	args := c.attr().Arguments
	for i := range args {
		if args[i].Name != nil && args[i].Name.Name == name {
			c.usedArgs[i] = true
			return args[i].Value, true
		}
	}
	for i := range args {
		if args[i].Name == nil && !c.usedArgs[i] {
			c.usedArgs[i] = true
			return args[i].Value, true
		}
	}
	return nil, false
}

// namedArg returns only an explicitly named argument.
func (c *attrContext) namedArg(name string) (ast.Expression, bool) {
	args := c.attr().Arguments
	for i := range args {
		if args[i].Name != nil && args[i].Name.Name == name {
			c.usedArgs[i] = true
			return args[i].Value, true
		}
	}
	return nil, false
}

// Coercers. Each returns ok=false after recording a diagnostic.

func (c *attrContext) asString(e ast.Expression) (string, bool) {
	if sv, ok := e.(ast.StringValue); ok {
		return sv.Value, true
	}
	c.diags.AddError("Expected a string value.", e.Span())
	return "", false
}

func (c *attrContext) asConstant(e ast.Expression) (string, bool) {
	if cv, ok := e.(ast.ConstantValue); ok {
		return cv.Name, true
	}
	c.diags.AddError("Expected a constant value.", e.Span())
	return "", false
}

func (c *attrContext) asInt(e ast.Expression) (int, bool) {
	if nv, ok := e.(ast.NumericValue); ok {
		if n, ok := nv.AsInt(); ok {
			return n, true
		}
	}
	c.diags.AddError("Expected an integer value.", e.Span())
	return 0, false
}

func (c *attrContext) asBool(e ast.Expression) (bool, bool) {
	if cv, ok := e.(ast.ConstantValue); ok {
		if b, ok := cv.AsBool(); ok {
			return b, true
		}
	}
	c.diags.AddError("Expected a boolean value.", e.Span())
	return false, false
}

// asArray returns the elements of an array literal. A bare value counts as
// a one-element array.
func (c *attrContext) asArray(e ast.Expression) []ast.Expression {
	if arr, ok := e.(ast.ArrayExpression); ok {
		return arr.Elements
	}
	return []ast.Expression{e}
}

func (c *attrContext) asSortOrder(e ast.Expression) (string, bool) {
	name, ok := c.asConstant(e)
	if !ok {
		return "", false
	}
	if name != "Asc" && name != "Desc" {
		c.diags.AddErrorf(e.Span(), "The `sort` argument must be `Asc` or `Desc`, got %q.", name)
		return "", false
	}
	return name, true
}

func (c *attrContext) asReferentialAction(e ast.Expression) (connector.ReferentialAction, bool) {
	name, ok := c.asConstant(e)
	if !ok {
		return "", false
	}
	action := connector.ReferentialAction(name)
	switch action {
	case connector.ActionCascade, connector.ActionRestrict, connector.ActionNoAction,
		connector.ActionSetNull, connector.ActionSetDefault:
	default:
		c.diags.AddErrorf(e.Span(), "Invalid referential action: %q.", name)
		return "", false
	}
	if !connector.SupportsAction(c.db.conn, action) {
		c.diags.AddErrorf(e.Span(), "Referential action %s is not supported for the current connector.", name)
		return "", false
	}
	return action, true
}
