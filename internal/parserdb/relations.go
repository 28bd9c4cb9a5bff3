package parserdb

import (
	"sdlkit/internal/ast"
	"sdlkit/internal/diag"
)

// RelationKind classifies a resolved relation.
type RelationKind int

const (
	// RelationInline is a one-to-one or one-to-many relation held by a
	// foreign key on the forward side.
	RelationInline RelationKind = iota
	// RelationImplicitManyToMany is a list on both sides with no fields
	// argument; the join table is implied.
	RelationImplicitManyToMany
	// RelationTwoWayEmbeddedManyToMany is a list on both sides where the
	// sides reference each other through scalar fields directly.
	RelationTwoWayEmbeddedManyToMany
)

// Relation is one resolved relation between two models. Forward is the
// side that defines the relation (carries the fields argument, or the
// non-list side); Back is nil for one-sided relations, where lowering
// infers the missing field.
type Relation struct {
	Kind    RelationKind
	Name    StringID
	Forward ModelFieldKey
	Back    *ModelFieldKey
}

// resolveRelations pairs every relation field with its counterpart on the
// referenced model and classifies the pair. Fields are walked in
// declaration order so the resulting slice is deterministic.
func (db *DB) resolveRelations(diags *diag.Diagnostics) {
	paired := make(map[ModelFieldKey]bool)

	for mid := range db.Schema.Models {
		modelID := ast.ModelID(mid)
		for fid := range db.Schema.Models[mid].Fields {
			key := ModelFieldKey{Model: modelID, Field: ast.FieldID(fid)}
			rf := db.relationFields[key]
			if rf == nil || paired[key] {
				continue
			}
			paired[key] = true

			counterparts := db.findCounterparts(rf, key, paired)
			if len(counterparts) > 1 {
				db.reportAmbiguousRelation(rf, counterparts, diags)
				for _, ck := range counterparts {
					paired[ck] = true
				}
				continue
			}

			var back *ModelFieldKey
			var backField *RelationField
			if len(counterparts) == 1 {
				ck := counterparts[0]
				paired[ck] = true
				back = &ck
				backField = db.relationFields[ck]
			}

			db.relations = append(db.relations, db.classifyRelation(rf, key, back, backField, diags))
		}
	}
}

// findCounterparts returns every unpaired relation field on the referenced
// model that points back at rf's model under the same relation name. The
// field itself is excluded so a self-relation does not pair with itself.
func (db *DB) findCounterparts(rf *RelationField, self ModelFieldKey, paired map[ModelFieldKey]bool) []ModelFieldKey {
	var out []ModelFieldKey
	other := db.Schema.Model(rf.ReferencedModel)
	for fid := range other.Fields {
		key := ModelFieldKey{Model: rf.ReferencedModel, Field: ast.FieldID(fid)}
		if key == self || paired[key] {
			continue
		}
		orf := db.relationFields[key]
		if orf == nil || orf.ReferencedModel != rf.Model || orf.Name != rf.Name {
			continue
		}
		out = append(out, key)
	}
	return out
}

func (db *DB) reportAmbiguousRelation(rf *RelationField, counterparts []ModelFieldKey, diags *diag.Diagnostics) {
	other := db.Schema.Model(counterparts[0].Model)
	a := other.Field(counterparts[0].Field).Name.Name
	b := other.Field(counterparts[1].Field).Name.Name
	diags.AddErrorf(rf.FieldSpan,
		"Ambiguous relation detected. The fields `%s` and `%s` in model `%s` both refer to `%s`. Please provide different relation names for them by adding `@relation(<name>)`.",
		a, b, other.Name.Name, db.Schema.Model(rf.Model).Name.Name)
}

// classifyRelation decides the relation kind and which side is forward.
func (db *DB) classifyRelation(rf *RelationField, key ModelFieldKey, back *ModelFieldKey, backField *RelationField, diags *diag.Diagnostics) Relation {
	fwdArity := db.Schema.Model(key.Model).Field(key.Field).Arity

	if backField != nil {
		backArity := db.Schema.Model(back.Model).Field(back.Field).Arity
		if fwdArity == ast.List && backArity == ast.List {
			if rf.HasFieldsArg || backField.HasFieldsArg {
				// Both sides are lists yet hold scalar references, so the
				// relation is embedded on both ends rather than routed
				// through an implied join table. The side with a usable
				// fields argument stays forward.
				fwd, bk := key, back
				if !rf.HasFieldsArg && backField.HasFieldsArg {
					fwd, bk = *back, &key
				}
				return Relation{Kind: RelationTwoWayEmbeddedManyToMany, Name: rf.Name, Forward: fwd, Back: bk}
			}
			return Relation{Kind: RelationImplicitManyToMany, Name: rf.Name, Forward: key, Back: back}
		}

		// Inline: the side carrying fields is forward; with no fields
		// argument anywhere, the non-list side is forward.
		fwd, bk, fwdRF := key, back, rf
		switch {
		case rf.HasFieldsArg:
		case backField.HasFieldsArg:
			fwd, bk, fwdRF = *back, &key, backField
		case fwdArity == ast.List:
			fwd, bk, fwdRF = *back, &key, backField
		}
		db.validateInlineForward(fwdRF, diags)
		return Relation{Kind: RelationInline, Name: rf.Name, Forward: fwd, Back: bk}
	}

	// One-sided relation. Lowering infers the back field.
	db.validateInlineForward(rf, diags)
	return Relation{Kind: RelationInline, Name: rf.Name, Forward: key, Back: nil}
}

func (db *DB) validateInlineForward(rf *RelationField, diags *diag.Diagnostics) {
	if rf.HasFieldsArg && rf.HasReferencesArg && len(rf.Fields) != len(rf.References) &&
		len(rf.Fields) > 0 && len(rf.References) > 0 {
		diags.AddError("You must specify the same number of fields in `fields` and `references`.", rf.AttributeSpan)
	}
}
