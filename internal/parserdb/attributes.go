package parserdb

import (
	"strings"

	"sdlkit/internal/ast"
	"sdlkit/internal/connector"
	"sdlkit/internal/diag"
)

// resolveAttributes runs the attribute pass over every model, enum, and
// composite type. Attributes are visited in a fixed precedence order per
// field kind; see resolveScalarFieldAttributes and
// resolveRelationFieldAttributes.
func (db *DB) resolveAttributes(diags *diag.Diagnostics) {
	for mid := range db.Schema.Models {
		modelID := ast.ModelID(mid)
		db.modelAttributes[modelID] = &ModelAttributes{MappedName: NoString}
		for fid := range db.Schema.Models[mid].Fields {
			fieldID := ast.FieldID(fid)
			key := ModelFieldKey{Model: modelID, Field: fieldID}
			if sf := db.scalarFields[key]; sf != nil {
				db.resolveScalarFieldAttributes(modelID, fieldID, sf, diags)
			} else if rf := db.relationFields[key]; rf != nil {
				db.resolveRelationFieldAttributes(modelID, fieldID, rf, diags)
			}
		}
		db.resolveModelBlockAttributes(modelID, diags)
	}
	for eid := range db.Schema.Enums {
		db.resolveEnumAttributes(ast.EnumID(eid), diags)
	}
	for cid := range db.Schema.CompositeTypes {
		db.resolveCompositeTypeAttributes(ast.CompositeTypeID(cid), diags)
	}
}

// Scalar field attribute precedence: @map, @ignore, @relation (rejected),
// @id, @updatedAt, @default, native type, @unique.
func (db *DB) resolveScalarFieldAttributes(mid ast.ModelID, fid ast.FieldID, sf *ScalarField, diags *diag.Diagnostics) {
	f := db.Schema.Model(mid).Field(fid)
	sf.MappedName = NoString
	c := db.newAttrContext(f.Attributes, diags)

	c.visit("map", func() {
		db.resolveMappedName(c, &sf.MappedName, diags)
	})
	c.visit("ignore", func() {
		sf.IsIgnored = true
	})
	c.rejected("relation", "The field `"+f.Name.Name+"` is a scalar field and cannot have a `@relation` attribute.")
	c.visit("id", func() {
		db.resolveFieldLevelID(mid, fid, f, c, diags)
	})
	c.visit("updatedAt", func() {
		if sf.Type.Kind != ScalarBuiltIn || sf.Type.BuiltIn != connector.ScalarDateTime {
			diags.AddError("Fields that are marked with `@updatedAt` must be of type `DateTime`.", c.span())
			return
		}
		sf.IsUpdatedAt = true
	})
	c.visit("default", func() {
		db.resolveDefault(sf, f, c, diags)
	})
	for i := range f.Attributes {
		if !c.visited[i] && strings.Contains(f.Attributes[i].Name.Name, ".") {
			c.enter(i)
			db.resolveNativeType(sf, c, diags)
			c.leave()
		}
	}
	c.visit("unique", func() {
		db.resolveFieldLevelUnique(mid, fid, f, c, diags)
	})
	c.finish()
}

// Relation field attribute precedence: @relation, @id (rejected), @ignore,
// @default (rejected), @map (rejected), @unique (rejected).
func (db *DB) resolveRelationFieldAttributes(mid ast.ModelID, fid ast.FieldID, rf *RelationField, diags *diag.Diagnostics) {
	f := db.Schema.Model(mid).Field(fid)
	rf.MappedName = NoString
	c := db.newAttrContext(f.Attributes, diags)

	c.visit("relation", func() {
		db.resolveRelationAttribute(rf, c, diags)
	})
	c.rejected("id", "Fields that are marked as relation fields cannot be marked with the `@id` attribute.")
	c.visit("ignore", func() {
		rf.IsIgnored = true
	})
	c.rejected("default", "Cannot set a default value on a relation field.")
	c.rejected("map", "The attribute `@map` cannot be used on relation fields.")
	c.rejected("unique", "The field `"+f.Name.Name+"` is a relation field and cannot be marked with `@unique`. Only scalar fields can be unique.")
	c.finish()
}

func (db *DB) resolveMappedName(c *attrContext, dest *StringID, diags *diag.Diagnostics) {
	e, ok := c.arg("name")
	if !ok {
		diags.AddError("Argument \"name\" is missing.", c.span())
		return
	}
	if s, ok := c.asString(e); ok {
		*dest = db.interner.Intern(s)
	}
}

func (db *DB) resolveFieldLevelID(mid ast.ModelID, fid ast.FieldID, f *ast.Field, c *attrContext, diags *diag.Diagnostics) {
	caps := db.conn.Capabilities()
	ma := db.modelAttributes[mid]
	fieldID := fid
	id := &IDAttribute{SourceField: &fieldID, Name: NoString, MappedName: NoString, Span: c.span()}
	fwa := FieldWithArgs{Path: FieldPath{Root: fid, Names: []string{f.Name.Name}}}

	if e, ok := c.namedArg("map"); ok {
		if !caps.NamedPrimaryKeys {
			diags.AddError("Named primary keys are not supported with the current connector.", e.Span())
		} else if s, ok := c.asString(e); ok {
			id.MappedName = db.interner.Intern(s)
		}
	}
	if e, ok := c.namedArg("sort"); ok {
		if !caps.SortOrderInPrimaryKey {
			diags.AddError("The sort argument is not supported in the primary key with the current connector", e.Span())
		} else if s, ok := c.asSortOrder(e); ok {
			fwa.SortOrder = s
		}
	}
	if e, ok := c.namedArg("length"); ok {
		if !caps.IndexLengthPrefix {
			diags.AddError("The length argument is not supported in the primary key with the current connector", e.Span())
		} else if n, ok := c.asInt(e); ok {
			fwa.Length = &n
		}
	}
	if e, ok := c.namedArg("clustered"); ok {
		if !caps.Clustering {
			diags.AddError("Defining clustering is not supported with the current connector", e.Span())
		} else if b, ok := c.asBool(e); ok {
			id.Clustered = &b
		}
	}
	id.Fields = []FieldWithArgs{fwa}

	if f.Arity != ast.Required {
		diags.AddError("Fields that are marked as id must be required.", c.span())
	}
	if ma.PrimaryKey != nil {
		diags.AddError("At most one field must be marked as the id field with the `@id` attribute.", c.span())
		return
	}
	ma.PrimaryKey = id
}

func (db *DB) resolveFieldLevelUnique(mid ast.ModelID, fid ast.FieldID, f *ast.Field, c *attrContext, diags *diag.Diagnostics) {
	caps := db.conn.Capabilities()
	fieldID := fid
	idx := IndexAttribute{
		Type:        IndexUnique,
		SourceField: &fieldID,
		Name:        NoString,
		MappedName:  NoString,
		Span:        c.span(),
	}
	fwa := FieldWithArgs{Path: FieldPath{Root: fid, Names: []string{f.Name.Name}}}

	if e, ok := c.namedArg("map"); ok {
		if s, ok := c.asString(e); ok {
			idx.MappedName = db.interner.Intern(s)
		}
	}
	if e, ok := c.namedArg("sort"); ok {
		if !caps.SortOrderInIndex {
			diags.AddError("The sort argument is not supported in an index definition with the current connector", e.Span())
		} else if s, ok := c.asSortOrder(e); ok {
			fwa.SortOrder = s
		}
	}
	if e, ok := c.namedArg("length"); ok {
		if !caps.IndexLengthPrefix {
			diags.AddError("The length argument is not supported in an index definition with the current connector", e.Span())
		} else if n, ok := c.asInt(e); ok {
			fwa.Length = &n
		}
	}
	if e, ok := c.namedArg("clustered"); ok {
		if !caps.Clustering {
			diags.AddError("Defining clustering is not supported with the current connector", e.Span())
		} else if b, ok := c.asBool(e); ok {
			idx.Clustered = &b
		}
	}
	idx.Fields = []FieldWithArgs{fwa}
	db.modelAttributes[mid].Indexes = append(db.modelAttributes[mid].Indexes, idx)
}

func (db *DB) resolveDefault(sf *ScalarField, f *ast.Field, c *attrContext, diags *diag.Diagnostics) {
	caps := db.conn.Capabilities()
	e, ok := c.arg("value")
	if !ok {
		diags.AddError("Argument missing: you must provide a value for the `@default` attribute.", c.span())
		return
	}
	da := &DefaultAttribute{Value: e, MappedName: NoString, Span: c.span()}
	if me, ok := c.namedArg("map"); ok {
		if s, ok := c.asString(me); ok {
			da.MappedName = db.interner.Intern(s)
		}
	}

	switch v := e.(type) {
	case ast.FunctionCall:
		switch v.Name.Name {
		case "autoincrement", "sequence":
			if !caps.AutoIncrement {
				diags.AddErrorf(e.Span(), "The `%s()` default value is not supported with the current connector.", v.Name.Name)
				return
			}
			if sf.Type.Kind != ScalarBuiltIn || (sf.Type.BuiltIn != connector.ScalarInt && sf.Type.BuiltIn != connector.ScalarBigInt) {
				diags.AddErrorf(e.Span(), "The `%s()` default can only be used on `Int` and `BigInt` fields.", v.Name.Name)
				return
			}
		case "now":
			if sf.Type.Kind != ScalarBuiltIn || sf.Type.BuiltIn != connector.ScalarDateTime {
				diags.AddError("The `now()` default can only be used on `DateTime` fields.", e.Span())
				return
			}
		case "uuid", "cuid":
			if sf.Type.Kind != ScalarBuiltIn || sf.Type.BuiltIn != connector.ScalarString {
				diags.AddErrorf(e.Span(), "The `%s()` default can only be used on `String` fields.", v.Name.Name)
				return
			}
		case "dbgenerated":
			if len(v.Arguments) > 1 {
				diags.AddError("dbgenerated() takes either no argument, or a single nonempty string argument.", e.Span())
				return
			}
			if len(v.Arguments) == 1 {
				sv, ok := v.Arguments[0].Value.(ast.StringValue)
				if !ok || sv.Value == "" {
					diags.AddError("dbgenerated() takes either no argument, or a single nonempty string argument.", e.Span())
					return
				}
			}
		default:
			diags.AddErrorf(e.Span(), "Unknown function in `@default()`: `%s`.", v.Name.Name)
			return
		}
	case ast.StringValue:
		if sf.Type.Kind == ScalarBuiltIn {
			switch sf.Type.BuiltIn {
			case connector.ScalarString, connector.ScalarDateTime, connector.ScalarDecimal, connector.ScalarBytes:
			default:
				diags.AddErrorf(e.Span(), "A string default is not valid on a `%s` field.", sf.Type.BuiltIn)
				return
			}
		}
		if sf.Type.Kind == ScalarEnum {
			diags.AddError("The default value of an enum field must be one of the enum's values.", e.Span())
			return
		}
	case ast.NumericValue:
		if sf.Type.Kind != ScalarBuiltIn {
			diags.AddError("A numeric default is only valid on numeric fields.", e.Span())
			return
		}
		switch sf.Type.BuiltIn {
		case connector.ScalarInt, connector.ScalarBigInt, connector.ScalarFloat, connector.ScalarDecimal:
		default:
			diags.AddErrorf(e.Span(), "A numeric default is not valid on a `%s` field.", sf.Type.BuiltIn)
			return
		}
	case ast.ConstantValue:
		if _, isBool := v.AsBool(); isBool {
			if sf.Type.Kind != ScalarBuiltIn || sf.Type.BuiltIn != connector.ScalarBoolean {
				diags.AddError("A boolean default is only valid on `Boolean` fields.", e.Span())
				return
			}
			break
		}
		if sf.Type.Kind != ScalarEnum {
			diags.AddErrorf(e.Span(), "The constant `%s` is not a valid default value here.", v.Name)
			return
		}
		enum := db.Schema.Enum(sf.Type.Enum)
		found := false
		for i := range enum.Values {
			if enum.Values[i].Name.Name == v.Name {
				found = true
				break
			}
		}
		if !found {
			diags.AddErrorf(e.Span(), "The defined default value `%s` is not a valid value of the enum `%s`.", v.Name, enum.Name.Name)
			return
		}
	case ast.ArrayExpression:
		if f.Arity != ast.List {
			diags.AddError("An array default is only valid on list fields.", e.Span())
			return
		}
	}
	sf.Default = da
}

// resolveNativeType handles a dotted attribute such as `@db.VarChar(191)`.
// The prefix must match the schema's datasource name; the rest is parsed by
// the active connector.
func (db *DB) resolveNativeType(sf *ScalarField, c *attrContext, diags *diag.Diagnostics) {
	attr := c.attr()
	for i := range attr.Arguments {
		c.usedArgs[i] = true
	}
	dot := strings.Index(attr.Name.Name, ".")
	prefix, typeName := attr.Name.Name[:dot], attr.Name.Name[dot+1:]

	if db.datasourceName == "" {
		diags.AddError("Native types require a datasource in the schema.", attr.Span)
		return
	}
	if prefix != db.datasourceName {
		diags.AddErrorf(attr.Span, "The prefix %q is invalid. It must be equal to the name of an existing datasource e.g. @db.VarChar(10).", prefix)
		return
	}

	args := make([]string, 0, len(attr.Arguments))
	for _, a := range attr.Arguments {
		switch v := a.Value.(type) {
		case ast.StringValue:
			args = append(args, v.Value)
		default:
			args = append(args, a.Value.String())
		}
	}
	nt, err := db.conn.ParseNativeType(typeName, args)
	if err != nil {
		diags.AddError(err.Error(), attr.Span)
		return
	}
	if sf.Type.Kind == ScalarBuiltIn {
		if scalar, ok := db.conn.ScalarFor(nt); ok && scalar != sf.Type.BuiltIn {
			diags.AddErrorf(attr.Span, "Native type %s is not compatible with declared field type %s, expected field type %s.", nt.String(), sf.Type.BuiltIn, scalar)
			return
		}
	}
	sf.NativeType = &nt
}

func (db *DB) resolveRelationAttribute(rf *RelationField, c *attrContext, diags *diag.Diagnostics) {
	rf.AttributeSpan = c.span()

	if e, ok := c.arg("name"); ok {
		if s, ok := c.asString(e); ok {
			rf.Name = db.interner.Intern(s)
		}
	}
	if e, ok := c.namedArg("fields"); ok {
		rf.HasFieldsArg = true
		rf.Fields = db.resolveLocalFields(rf.Model, c.asArray(e), "The argument fields must refer to existing fields on the current model.", e.Span(), c, diags)
	}
	if e, ok := c.namedArg("references"); ok {
		rf.HasReferencesArg = true
		rf.References = db.resolveLocalFields(rf.ReferencedModel, c.asArray(e), "The argument `references` must refer to existing fields on the related model.", e.Span(), c, diags)
	}
	if e, ok := c.namedArg("onDelete"); ok {
		if a, ok := c.asReferentialAction(e); ok {
			rf.OnDelete = a
		}
	}
	if e, ok := c.namedArg("onUpdate"); ok {
		if a, ok := c.asReferentialAction(e); ok {
			rf.OnUpdate = a
		}
	}
	if e, ok := c.namedArg("map"); ok {
		if !db.conn.Capabilities().NamedForeignKeys {
			diags.AddError("Named foreign keys are not supported with the current connector.", e.Span())
		} else if s, ok := c.asString(e); ok {
			rf.MappedName = db.interner.Intern(s)
		}
	}
}

// resolveLocalFields resolves a list of constant field references on one
// model. Unresolved names are reported in one comma-joined diagnostic.
func (db *DB) resolveLocalFields(mid ast.ModelID, elems []ast.Expression, missingMsg string, span diag.Span, c *attrContext, diags *diag.Diagnostics) []ast.FieldID {
	var ids []ast.FieldID
	var missing []string
	for _, e := range elems {
		name, ok := c.asConstant(e)
		if !ok {
			continue
		}
		fid, ok := db.FieldByName(mid, name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		ids = append(ids, fid)
	}
	if len(missing) > 0 {
		diags.AddErrorf(span, "%s The following fields do not exist: %s.", missingMsg, strings.Join(missing, ", "))
	}
	return ids
}

// Model block attributes: @@map, @@ignore, @@id, @@unique, @@index,
// @@fulltext.
func (db *DB) resolveModelBlockAttributes(mid ast.ModelID, diags *diag.Diagnostics) {
	ma := db.modelAttributes[mid]
	model := db.Schema.Model(mid)
	caps := db.conn.Capabilities()
	c := db.newAttrContext(model.Attributes, diags)

	c.visit("map", func() {
		db.resolveMappedName(c, &ma.MappedName, diags)
	})
	c.visit("ignore", func() {
		ma.IsIgnored = true
	})
	c.visit("id", func() {
		db.resolveCompoundID(mid, ma, c, diags)
	})
	c.visitRepeated("unique", func() {
		db.resolveBlockIndex(mid, ma, IndexUnique, c, diags)
	})
	c.visitRepeated("index", func() {
		db.resolveBlockIndex(mid, ma, IndexNormal, c, diags)
	})
	c.visitRepeated("fulltext", func() {
		if !caps.FulltextIndex {
			diags.AddError("Defining fulltext indexes is not supported with the current connector.", c.span())
			c.consumeRest()
			return
		}
		db.resolveBlockIndex(mid, ma, IndexFulltext, c, diags)
	})
	c.finish()
}

func (db *DB) resolveCompoundID(mid ast.ModelID, ma *ModelAttributes, c *attrContext, diags *diag.Diagnostics) {
	caps := db.conn.Capabilities()
	e, ok := c.arg("fields")
	if !ok {
		diags.AddError("Argument \"fields\" is missing.", c.span())
		return
	}
	fields, ok := db.resolveIndexFieldArray(mid, "id", "id", c.asArray(e), c, diags)
	if !ok {
		c.consumeRest()
		return
	}
	id := &IDAttribute{Fields: fields, Name: NoString, MappedName: NoString, Span: c.span()}

	if ne, ok := c.namedArg("name"); ok {
		if s, ok := c.asString(ne); ok {
			id.Name = db.interner.Intern(s)
		}
	}
	if me, ok := c.namedArg("map"); ok {
		if !caps.NamedPrimaryKeys {
			diags.AddError("Named primary keys are not supported with the current connector.", me.Span())
		} else if s, ok := c.asString(me); ok {
			id.MappedName = db.interner.Intern(s)
		}
	}
	if ce, ok := c.namedArg("clustered"); ok {
		if !caps.Clustering {
			diags.AddError("Defining clustering is not supported with the current connector", ce.Span())
		} else if b, ok := c.asBool(ce); ok {
			id.Clustered = &b
		}
	}
	for i := range fields {
		if fields[i].SortOrder != "" && !caps.SortOrderInPrimaryKey {
			diags.AddError("The sort argument is not supported in the primary key with the current connector", c.span())
		}
		if fields[i].Length != nil && !caps.IndexLengthPrefix {
			diags.AddError("The length argument is not supported in the primary key with the current connector", c.span())
		}
	}

	if ma.PrimaryKey != nil {
		diags.AddError("Each model must have at most one id criteria. You can't have `@id` and `@@id` at the same time.", c.span())
		return
	}
	ma.PrimaryKey = id
}

func (db *DB) resolveBlockIndex(mid ast.ModelID, ma *ModelAttributes, typ IndexType, c *attrContext, diags *diag.Diagnostics) {
	caps := db.conn.Capabilities()
	attrKeyword := map[IndexType]string{IndexNormal: "index", IndexUnique: "unique", IndexFulltext: "fulltext"}[typ]

	e, ok := c.arg("fields")
	if !ok {
		diags.AddError("Argument \"fields\" is missing.", c.span())
		return
	}
	fields, ok := db.resolveIndexFieldArray(mid, "index", attrKeyword, c.asArray(e), c, diags)
	if !ok {
		c.consumeRest()
		return
	}
	idx := IndexAttribute{Type: typ, Fields: fields, Name: NoString, MappedName: NoString, Span: c.span()}

	if ne, ok := c.namedArg("name"); ok {
		if typ == IndexUnique {
			if s, ok := c.asString(ne); ok {
				idx.Name = db.interner.Intern(s)
			}
		} else {
			diags.AddErrorf(ne.Span(), "The `name` argument is not allowed on `@@%s`. Did you mean `map`?", attrKeyword)
		}
	}
	if me, ok := c.namedArg("map"); ok {
		if s, ok := c.asString(me); ok {
			idx.MappedName = db.interner.Intern(s)
		}
	}
	if typ == IndexNormal {
		if te, ok := c.namedArg("type"); ok {
			if s, ok := c.asConstant(te); ok {
				switch s {
				case "BTree", "Hash", "Gist", "Gin", "SpGist", "Brin":
					idx.Algorithm = s
				default:
					diags.AddErrorf(te.Span(), "Unknown index type: `%s`.", s)
				}
			}
		}
	}
	if ce, ok := c.namedArg("clustered"); ok {
		if !caps.Clustering {
			diags.AddError("Defining clustering is not supported with the current connector", ce.Span())
		} else if b, ok := c.asBool(ce); ok {
			idx.Clustered = &b
		}
	}
	for i := range fields {
		if fields[i].SortOrder != "" && !caps.SortOrderInIndex {
			diags.AddError("The sort argument is not supported in an index definition with the current connector", c.span())
		}
		if fields[i].Length != nil && !caps.IndexLengthPrefix {
			diags.AddError("The length argument is not supported in an index definition with the current connector", c.span())
		}
	}
	ma.Indexes = append(ma.Indexes, idx)
}

func (db *DB) resolveEnumAttributes(eid ast.EnumID, diags *diag.Diagnostics) {
	enum := db.Schema.Enum(eid)
	ea := &EnumAttributes{MappedName: NoString, ValueMappedNames: make(map[int]StringID)}

	c := db.newAttrContext(enum.Attributes, diags)
	c.visit("map", func() {
		db.resolveMappedName(c, &ea.MappedName, diags)
	})
	c.finish()

	for i := range enum.Values {
		vc := db.newAttrContext(enum.Values[i].Attributes, diags)
		vc.visit("map", func() {
			mapped := NoString
			db.resolveMappedName(vc, &mapped, diags)
			if mapped != NoString {
				ea.ValueMappedNames[i] = mapped
			}
		})
		vc.finish()
	}
	db.enumAttributes[eid] = ea
}

// Composite type fields accept @map, @default, and native types; anything
// model-specific is rejected.
func (db *DB) resolveCompositeTypeAttributes(cid ast.CompositeTypeID, diags *diag.Diagnostics) {
	ct := db.Schema.CompositeType(cid)
	for fid := range ct.Fields {
		key := CompositeFieldKey{Composite: cid, Field: ast.FieldID(fid)}
		sf := db.compositeScalarFields[key]
		if sf == nil {
			continue
		}
		f := &ct.Fields[fid]
		sf.MappedName = NoString
		c := db.newAttrContext(f.Attributes, diags)
		c.visit("map", func() {
			db.resolveMappedName(c, &sf.MappedName, diags)
		})
		c.visit("default", func() {
			db.resolveDefault(sf, f, c, diags)
		})
		c.rejected("id", "Composite type fields cannot be marked with the `@id` attribute.")
		c.rejected("unique", "Composite type fields cannot be marked with the `@unique` attribute.")
		c.rejected("relation", "Composite type fields cannot have a `@relation` attribute.")
		c.rejected("updatedAt", "Composite type fields cannot be marked with the `@updatedAt` attribute.")
		for i := range f.Attributes {
			if !c.visited[i] && strings.Contains(f.Attributes[i].Name.Name, ".") {
				c.enter(i)
				db.resolveNativeType(sf, c, diags)
				c.leave()
			}
		}
		c.finish()
	}
}
