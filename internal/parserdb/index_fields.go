package parserdb

import (
	"strings"

	"sdlkit/internal/ast"
	"sdlkit/internal/diag"
)

// resolveIndexFieldArray resolves the `fields:` array of an index-like
// block attribute. what names the construct in diagnostics ("id" or
// "index"); keyword is the attribute keyword for suggestion messages.
// Returns ok=false when the list is unusable as a whole (duplicates,
// unknown fields, relation fields); per-entry argument problems are
// reported but do not fail the list.
func (db *DB) resolveIndexFieldArray(mid ast.ModelID, what, keyword string, elems []ast.Expression, c *attrContext, diags *diag.Diagnostics) ([]FieldWithArgs, bool) {
	span := c.span()
	fields := make([]FieldWithArgs, 0, len(elems))
	seen := make(map[string]bool, len(elems))
	var unknown, relation []string
	duplicated := false

	for _, e := range elems {
		fwa, name, ok := db.resolveIndexFieldEntry(mid, e, c, diags)
		if !ok {
			continue
		}
		if seen[name] {
			diags.AddErrorf(span, "The %s definition refers to the field `%s` multiple times.", what, name)
			duplicated = true
			continue
		}
		seen[name] = true

		root := strings.SplitN(name, ".", 2)[0]
		fid, found := db.FieldByName(mid, root)
		if !found {
			unknown = append(unknown, root)
			continue
		}
		if db.relationFields[ModelFieldKey{Model: mid, Field: fid}] != nil {
			relation = append(relation, root)
			continue
		}
		fwa.Path.Root = fid
		if strings.Contains(name, ".") {
			if !db.resolveCompositePath(mid, fid, fwa.Path.Names, span, diags) {
				continue
			}
		}
		fields = append(fields, fwa)
	}

	if len(unknown) > 0 || len(relation) > 0 {
		var parts []string
		if len(unknown) > 0 {
			parts = append(parts, "The "+what+" definition refers to the unknown fields: "+strings.Join(unknown, ", ")+".")
		}
		if len(relation) > 0 {
			parts = append(parts, "The "+what+" definition refers to the relation fields: "+strings.Join(relation, ", ")+". Index definitions must reference only scalar fields."+db.scalarSuggestion(mid, relation, keyword))
		}
		diags.AddError(strings.Join(parts, " "), span)
		return nil, false
	}
	if duplicated {
		return nil, false
	}
	return fields, true
}

// resolveIndexFieldEntry resolves one entry of the array. A plain constant
// is a bare field reference; a function call carries per-field arguments,
// as in `title(sort: Desc, length: 10)`.
func (db *DB) resolveIndexFieldEntry(mid ast.ModelID, e ast.Expression, c *attrContext, diags *diag.Diagnostics) (FieldWithArgs, string, bool) {
	switch v := e.(type) {
	case ast.ConstantValue:
		return FieldWithArgs{Path: FieldPath{Names: strings.Split(v.Name, ".")}}, v.Name, true
	case ast.FunctionCall:
		fwa := FieldWithArgs{Path: FieldPath{Names: strings.Split(v.Name.Name, ".")}}
		for _, a := range v.Arguments {
			if a.Name == nil {
				diags.AddError("Expected a named argument.", a.Span)
				continue
			}
			switch a.Name.Name {
			case "sort":
				if s, ok := c.asSortOrder(a.Value); ok {
					fwa.SortOrder = s
				}
			case "length":
				if n, ok := c.asInt(a.Value); ok {
					fwa.Length = &n
				}
			case "ops":
				db.resolveOperatorClass(&fwa, a.Value, diags)
			default:
				diags.AddError("No such argument.", a.Span)
			}
		}
		return fwa, v.Name.Name, true
	default:
		diags.AddError("Expected a field reference.", e.Span())
		return FieldWithArgs{}, "", false
	}
}

// resolveOperatorClass handles `ops: SomeClass` and `ops: raw("...")`.
func (db *DB) resolveOperatorClass(fwa *FieldWithArgs, e ast.Expression, diags *diag.Diagnostics) {
	switch v := e.(type) {
	case ast.ConstantValue:
		fwa.OperatorClass = v.Name
	case ast.FunctionCall:
		if v.Name.Name != "raw" || len(v.Arguments) != 1 {
			diags.AddError("The `ops` argument takes an operator class or raw(\"...\").", e.Span())
			return
		}
		sv, ok := v.Arguments[0].Value.(ast.StringValue)
		if !ok {
			diags.AddError("raw() takes a single string argument.", e.Span())
			return
		}
		fwa.OperatorClass = sv.Value
		fwa.OperatorClassRaw = true
	default:
		diags.AddError("The `ops` argument takes an operator class or raw(\"...\").", e.Span())
	}
}

// resolveCompositePath walks a dotted field path through composite types,
// validating each segment. The first segment has already been resolved on
// the model.
func (db *DB) resolveCompositePath(mid ast.ModelID, root ast.FieldID, names []string, span diag.Span, diags *diag.Diagnostics) bool {
	sf := db.scalarFields[ModelFieldKey{Model: mid, Field: root}]
	if sf == nil || sf.Type.Kind != ScalarComposite {
		diags.AddErrorf(span, "The field `%s` is not a composite type, so the path `%s` is invalid.", names[0], strings.Join(names, "."))
		return false
	}
	ct := sf.Type.Composite
	for i := 1; i < len(names); i++ {
		fid, ok := db.compositeFieldByName(ct, names[i])
		if !ok {
			diags.AddErrorf(span, "The path `%s` refers to the unknown field `%s`.", strings.Join(names, "."), names[i])
			return false
		}
		if i == len(names)-1 {
			break
		}
		next := db.compositeScalarFields[CompositeFieldKey{Composite: ct, Field: fid}]
		if next == nil || next.Type.Kind != ScalarComposite {
			diags.AddErrorf(span, "The field `%s` is not a composite type, so the path `%s` is invalid.", names[i], strings.Join(names, "."))
			return false
		}
		ct = next.Type.Composite
	}
	return true
}

func (db *DB) compositeFieldByName(ct ast.CompositeTypeID, name string) (ast.FieldID, bool) {
	id, ok := db.interner.Lookup(name)
	if !ok {
		return 0, false
	}
	fid, ok := db.compositeFields[ct][id]
	return fid, ok
}

// scalarSuggestion proposes the scalar columns behind referenced relation
// fields, when each relation field carries a usable `fields:` argument.
func (db *DB) scalarSuggestion(mid ast.ModelID, relationNames []string, keyword string) string {
	var scalars []string
	for _, name := range relationNames {
		fid, ok := db.FieldByName(mid, name)
		if !ok {
			return ""
		}
		rf := db.relationFields[ModelFieldKey{Model: mid, Field: fid}]
		if rf == nil || len(rf.Fields) == 0 {
			return ""
		}
		for _, sfid := range rf.Fields {
			scalars = append(scalars, db.Schema.Model(mid).Field(sfid).Name.Name)
		}
	}
	if len(scalars) == 0 {
		return ""
	}
	return " Did you mean `@@" + keyword + "([" + strings.Join(scalars, ", ") + "])`?"
}
