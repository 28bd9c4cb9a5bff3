package describer

import "sort"

// FKRow is one catalog row of a foreign key constraint. A multi-column
// constraint produces one row per column pair, all sharing the same
// backend-native ConstraintID.
type FKRow struct {
	ConstraintID     string
	ConstraintName   string
	Table            string
	Column           string
	ReferencedSchema string
	ReferencedTable  string
	ReferencedColumn string
	Ordinal          int
	OnDelete         string
	OnUpdate         string
}

// AssembleForeignKeys merges catalog rows into one ForeignKey per
// constraint id, columns in ordinal order. A constraint whose referenced
// table lives outside schema fails with a cross-schema error.
//
// Constraints come out ordered by first appearance in rows, which callers
// keep in catalog order.
func AssembleForeignKeys(schema string, rows []FKRow) (map[string][]ForeignKey, error) {
	type group struct {
		table string
		first int
		rows  []FKRow
	}
	groups := make(map[string]*group)
	var order []string

	for i, row := range rows {
		if row.ReferencedSchema != "" && row.ReferencedSchema != schema {
			return nil, CrossSchema(row.Table, row.ReferencedSchema, row.ConstraintName)
		}
		g, ok := groups[row.ConstraintID]
		if !ok {
			g = &group{table: row.Table, first: i}
			groups[row.ConstraintID] = g
			order = append(order, row.ConstraintID)
		}
		g.rows = append(g.rows, row)
	}

	out := make(map[string][]ForeignKey)
	for _, id := range order {
		g := groups[id]
		sort.SliceStable(g.rows, func(i, j int) bool {
			return g.rows[i].Ordinal < g.rows[j].Ordinal
		})
		fk := ForeignKey{
			ConstraintName:  g.rows[0].ConstraintName,
			ReferencedTable: g.rows[0].ReferencedTable,
			OnDelete:        g.rows[0].OnDelete,
			OnUpdate:        g.rows[0].OnUpdate,
		}
		for _, row := range g.rows {
			fk.Columns = append(fk.Columns, row.Column)
			fk.ReferencedColumns = append(fk.ReferencedColumns, row.ReferencedColumn)
		}
		out[g.table] = append(out[g.table], fk)
	}
	return out, nil
}
