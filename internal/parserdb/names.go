package parserdb

import (
	"sdlkit/internal/ast"
	"sdlkit/internal/diag"
)

// resolveNames interns every identifier and fills the name lookup tables,
// reporting duplicate declarations. Models, enums, and composite types
// share one type namespace.
func (db *DB) resolveNames(diags *diag.Diagnostics) {
	topKind := make(map[StringID]string)

	checkTop := func(name ast.Identifier, kind string) (StringID, bool) {
		id := db.interner.Intern(name.Name)
		if existing, ok := topKind[id]; ok {
			diags.AddErrorf(name.Span, "The %s %q cannot be defined because a %s with that name already exists.", kind, name.Name, existing)
			return id, false
		}
		topKind[id] = kind
		return id, true
	}

	for mid := range db.Schema.Models {
		model := &db.Schema.Models[mid]
		nameID, ok := checkTop(model.Name, "model")
		if ok {
			db.modelsByName[nameID] = ast.ModelID(mid)
		}
		fields := make(map[StringID]ast.FieldID, len(model.Fields))
		for fid := range model.Fields {
			f := &model.Fields[fid]
			fieldID := db.interner.Intern(f.Name.Name)
			if _, dup := fields[fieldID]; dup {
				diags.AddErrorf(f.Name.Span, "Field %q is already defined on model %q.", f.Name.Name, model.Name.Name)
				continue
			}
			fields[fieldID] = ast.FieldID(fid)
		}
		db.modelFields[ast.ModelID(mid)] = fields
	}

	for eid := range db.Schema.Enums {
		enum := &db.Schema.Enums[eid]
		nameID, ok := checkTop(enum.Name, "enum")
		if ok {
			db.enumsByName[nameID] = ast.EnumID(eid)
		}
		seen := make(map[StringID]bool, len(enum.Values))
		for i := range enum.Values {
			v := &enum.Values[i]
			valueID := db.interner.Intern(v.Name.Name)
			if seen[valueID] {
				diags.AddErrorf(v.Name.Span, "Value %q is already defined on enum %q.", v.Name.Name, enum.Name.Name)
				continue
			}
			seen[valueID] = true
		}
	}

	for cid := range db.Schema.CompositeTypes {
		ct := &db.Schema.CompositeTypes[cid]
		nameID, ok := checkTop(ct.Name, "composite type")
		if ok {
			db.compositesByName[nameID] = ast.CompositeTypeID(cid)
		}
		fields := make(map[StringID]ast.FieldID, len(ct.Fields))
		for fid := range ct.Fields {
			f := &ct.Fields[fid]
			fieldID := db.interner.Intern(f.Name.Name)
			if _, dup := fields[fieldID]; dup {
				diags.AddErrorf(f.Name.Span, "Field %q is already defined on composite type %q.", f.Name.Name, ct.Name.Name)
				continue
			}
			fields[fieldID] = ast.FieldID(fid)
		}
		db.compositeFields[ast.CompositeTypeID(cid)] = fields
	}
}
