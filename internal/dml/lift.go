package dml

import (
	"fmt"
	"sort"
	"strings"

	"sdlkit/internal/ast"
	"sdlkit/internal/parserdb"
)

// Lift lowers a resolved database into the canonical datamodel. It assumes
// validation already passed; a field that is neither scalar nor relation at
// this point is a resolver bug and panics.
//
// Scalar and relation fields are lowered in two separate passes. A side
// table keyed by (model name, field name) records each field's declaration
// index, and a final stable sort per model restores source order.
// Synthesized back-relation fields have no declaration index and sort after
// all declared fields.
func Lift(db *parserdb.DB) *Datamodel {
	l := &lifter{db: db, order: make(map[orderKey]int)}
	return l.lift()
}

type orderKey struct {
	model string
	field string
}

type lifter struct {
	db    *parserdb.DB
	order map[orderKey]int
}

func (l *lifter) lift() *Datamodel {
	dm := &Datamodel{}
	schema := l.db.Schema

	for mid := range schema.Models {
		dm.Models = append(dm.Models, l.liftModelScalars(ast.ModelID(mid)))
	}
	l.liftRelations(dm)
	for i := range dm.Models {
		l.sortFields(&dm.Models[i])
	}

	for eid := range schema.Enums {
		dm.Enums = append(dm.Enums, l.liftEnum(ast.EnumID(eid)))
	}
	for cid := range schema.CompositeTypes {
		dm.CompositeTypes = append(dm.CompositeTypes, l.liftCompositeType(ast.CompositeTypeID(cid)))
	}
	return dm
}

// liftModelScalars lowers a model's block-level state and its scalar
// fields. Relation fields are recorded in the order table but lowered by
// liftRelations.
func (l *lifter) liftModelScalars(mid ast.ModelID) Model {
	model := l.db.Schema.Model(mid)
	ma := l.db.ModelAttributes(mid)

	m := Model{
		Name:          model.Name.Name,
		DatabaseName:  l.str(ma.MappedName),
		Documentation: model.Documentation,
		IsIgnored:     ma.IsIgnored,
	}
	if ma.PrimaryKey != nil {
		m.PrimaryKey = &PrimaryKey{
			Name:         l.str(ma.PrimaryKey.Name),
			DatabaseName: l.str(ma.PrimaryKey.MappedName),
			Fields:       l.liftIndexFields(ma.PrimaryKey.Fields),
			Clustered:    ma.PrimaryKey.Clustered,
		}
	}
	for _, idx := range ma.Indexes {
		m.Indexes = append(m.Indexes, Index{
			Name:         l.str(idx.Name),
			DatabaseName: l.str(idx.MappedName),
			Kind:         indexKind(idx.Type),
			Algorithm:    idx.Algorithm,
			Clustered:    idx.Clustered,
			Fields:       l.liftIndexFields(idx.Fields),
		})
	}

	for fid := range model.Fields {
		f := model.Field(ast.FieldID(fid))
		l.order[orderKey{model: model.Name.Name, field: f.Name.Name}] = fid

		if sf := l.db.ScalarField(mid, ast.FieldID(fid)); sf != nil {
			m.Fields = append(m.Fields, l.liftScalarField(f, sf))
			continue
		}
		if l.db.RelationField(mid, ast.FieldID(fid)) == nil {
			panic(fmt.Sprintf("dml: field %s.%s is neither scalar nor relation", model.Name.Name, f.Name.Name))
		}
	}
	return m
}

func (l *lifter) liftScalarField(f *ast.Field, sf *parserdb.ScalarField) Field {
	out := Field{
		Name:          f.Name.Name,
		DatabaseName:  l.str(sf.MappedName),
		Documentation: f.Documentation,
		Arity:         arity(f.Arity),
		IsUpdatedAt:   sf.IsUpdatedAt,
		IsIgnored:     sf.IsIgnored,
		NativeType:    sf.NativeType,
	}
	switch sf.Type.Kind {
	case parserdb.ScalarBuiltIn:
		out.Type = FieldType{Kind: TypeScalar, Scalar: sf.Type.BuiltIn}
	case parserdb.ScalarEnum:
		out.Type = FieldType{Kind: TypeEnum, Name: l.db.Schema.Enum(sf.Type.Enum).Name.Name}
	case parserdb.ScalarComposite:
		out.Type = FieldType{Kind: TypeComposite, Name: l.db.Schema.CompositeType(sf.Type.Composite).Name.Name}
	}
	if sf.Default != nil {
		out.Default = l.liftDefault(sf.Default)
	}
	return out
}

func (l *lifter) liftDefault(da *parserdb.DefaultAttribute) *DefaultValue {
	dv := &DefaultValue{DatabaseName: l.str(da.MappedName)}
	switch v := da.Value.(type) {
	case ast.FunctionCall:
		switch v.Name.Name {
		case "autoincrement":
			dv.Kind = DefaultAutoincrement
		case "sequence":
			dv.Kind = DefaultSequence
			dv.Value = firstStringArg(v)
		case "dbgenerated":
			dv.Kind = DefaultDBGenerated
			dv.Value = firstStringArg(v)
		case "uuid":
			dv.Kind = DefaultUUID
		case "cuid":
			dv.Kind = DefaultCUID
		case "now":
			dv.Kind = DefaultNow
		default:
			panic(fmt.Sprintf("dml: unvalidated default function %q", v.Name.Name))
		}
	case ast.StringValue:
		dv.Kind = DefaultLiteral
		dv.Value = v.Value
	case ast.NumericValue:
		dv.Kind = DefaultLiteral
		dv.Value = v.Raw
	case ast.ConstantValue:
		dv.Kind = DefaultLiteral
		dv.Value = v.Name
	default:
		dv.Kind = DefaultLiteral
		dv.Value = da.Value.String()
	}
	return dv
}

func firstStringArg(fc ast.FunctionCall) string {
	if len(fc.Arguments) == 0 {
		return ""
	}
	if sv, ok := fc.Arguments[0].Value.(ast.StringValue); ok {
		return sv.Value
	}
	return ""
}

// liftRelations lowers every resolved relation into forward and back
// fields, synthesizing the back field when source declares only one side.
func (l *lifter) liftRelations(dm *Datamodel) {
	for _, rel := range l.db.Relations() {
		fwdRF := l.db.RelationField(rel.Forward.Model, rel.Forward.Field)
		fwdModel := l.db.Schema.Model(rel.Forward.Model)
		backModel := l.db.Schema.Model(fwdRF.ReferencedModel)
		relName := l.relationName(rel.Name, fwdModel.Name.Name, backModel.Name.Name)

		dm.Models[rel.Forward.Model].Fields = append(dm.Models[rel.Forward.Model].Fields,
			l.liftRelationField(rel.Forward, fwdRF, relName))

		if rel.Back != nil {
			backRF := l.db.RelationField(rel.Back.Model, rel.Back.Field)
			dm.Models[rel.Back.Model].Fields = append(dm.Models[rel.Back.Model].Fields,
				l.liftRelationField(*rel.Back, backRF, relName))
			continue
		}

		// When the only declared side is a list, the counterpart is the
		// side that would carry the foreign key, so it comes out
		// optional rather than as a second list.
		backArity := List
		if fwdModel.Field(rel.Forward.Field).Arity == ast.List {
			backArity = Optional
		}
		dm.Models[fwdRF.ReferencedModel].Fields = append(dm.Models[fwdRF.ReferencedModel].Fields, Field{
			Name:        fwdModel.Name.Name,
			Arity:       backArity,
			Type:        FieldType{Kind: TypeRelation, Name: fwdModel.Name.Name},
			IsIgnored:   l.db.ModelAttributes(rel.Forward.Model).IsIgnored,
			Relation:    &RelationInfo{To: fwdModel.Name.Name, Name: relName},
			Synthesized: true,
		})
	}
}

func (l *lifter) liftRelationField(key parserdb.ModelFieldKey, rf *parserdb.RelationField, relName string) Field {
	f := l.db.Schema.Model(key.Model).Field(key.Field)
	info := &RelationInfo{
		To:             l.db.Schema.Model(rf.ReferencedModel).Name.Name,
		Name:           relName,
		OnDelete:       rf.OnDelete,
		OnUpdate:       rf.OnUpdate,
		ForeignKeyName: l.str(rf.MappedName),
	}
	for _, fid := range rf.Fields {
		info.Fields = append(info.Fields, l.db.Schema.Model(key.Model).Field(fid).Name.Name)
	}
	for _, fid := range rf.References {
		info.References = append(info.References, l.db.Schema.Model(rf.ReferencedModel).Field(fid).Name.Name)
	}
	return Field{
		Name:          f.Name.Name,
		Documentation: f.Documentation,
		Arity:         arity(f.Arity),
		Type:          FieldType{Kind: TypeRelation, Name: info.To},
		IsIgnored:     rf.IsIgnored,
		Relation:      info,
	}
}

// relationName returns the explicit relation name, or one derived from the
// two model names sorted alphabetically.
func (l *lifter) relationName(name parserdb.StringID, a, b string) string {
	if name != parserdb.NoString {
		return l.str(name)
	}
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "To" + b
}

// sortFields restores declaration order. Synthesized fields keep their
// relative append order after all declared fields.
func (l *lifter) sortFields(m *Model) {
	sort.SliceStable(m.Fields, func(i, j int) bool {
		return l.fieldIndex(m, &m.Fields[i]) < l.fieldIndex(m, &m.Fields[j])
	})
}

func (l *lifter) fieldIndex(m *Model, f *Field) int {
	if f.Synthesized {
		return len(m.Fields)
	}
	idx, ok := l.order[orderKey{model: m.Name, field: f.Name}]
	if !ok {
		panic(fmt.Sprintf("dml: field %s.%s has no declaration index", m.Name, f.Name))
	}
	return idx
}

func (l *lifter) liftEnum(eid ast.EnumID) Enum {
	enum := l.db.Schema.Enum(eid)
	ea := l.db.EnumAttributes(eid)
	out := Enum{
		Name:          enum.Name.Name,
		DatabaseName:  l.str(ea.MappedName),
		Documentation: enum.Documentation,
	}
	for i := range enum.Values {
		v := EnumValue{Name: enum.Values[i].Name.Name}
		if mapped, ok := ea.ValueMappedNames[i]; ok {
			v.DatabaseName = l.str(mapped)
		}
		out.Values = append(out.Values, v)
	}
	return out
}

func (l *lifter) liftCompositeType(cid ast.CompositeTypeID) CompositeType {
	ct := l.db.Schema.CompositeType(cid)
	out := CompositeType{Name: ct.Name.Name}
	for fid := range ct.Fields {
		f := ct.Field(ast.FieldID(fid))
		sf := l.db.CompositeScalarField(cid, ast.FieldID(fid))
		if sf == nil {
			panic(fmt.Sprintf("dml: composite field %s.%s is unresolved", ct.Name.Name, f.Name.Name))
		}
		out.Fields = append(out.Fields, l.liftScalarField(f, sf))
	}
	return out
}

func (l *lifter) liftIndexFields(fields []parserdb.FieldWithArgs) []IndexField {
	out := make([]IndexField, 0, len(fields))
	for _, fwa := range fields {
		f := IndexField{Path: fwa.Path.Names, SortOrder: SortOrder(fwa.SortOrder)}
		f.Length = fwa.Length
		if fwa.OperatorClass != "" {
			f.OperatorClass = OperatorClassFromString(fwa.OperatorClass, fwa.OperatorClassRaw)
		}
		out = append(out, f)
	}
	return out
}

func (l *lifter) str(id parserdb.StringID) string {
	if id == parserdb.NoString {
		return ""
	}
	return l.db.Get(id)
}

func arity(a ast.FieldArity) FieldArity {
	switch a {
	case ast.Optional:
		return Optional
	case ast.List:
		return List
	default:
		return Required
	}
}

func indexKind(t parserdb.IndexType) IndexKind {
	switch t {
	case parserdb.IndexUnique:
		return IndexKindUnique
	case parserdb.IndexFulltext:
		return IndexKindFulltext
	default:
		return IndexKindNormal
	}
}
