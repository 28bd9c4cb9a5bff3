// Package sqlite contains the describer implementation for SQLite. SQLite
// has no schema namespaces; the schema argument is ignored and cross
// schema constraints cannot occur. The catalog is read through PRAGMA
// statements and sqlite_master.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"sdlkit/internal/describer"
)

func init() {
	describer.Register("sqlite", New)
}

type liteDescriber struct{}

type describeCtx struct {
	ctx context.Context
	db  *sql.DB
}

// New returns the SQLite describer.
func New() describer.Describer {
	return &liteDescriber{}
}

func (d *liteDescriber) Describe(ctx context.Context, db *sql.DB, schema string) (*describer.SqlSchema, error) {
	dc := &describeCtx{ctx: ctx, db: db}
	out := &describer.SqlSchema{Schema: schema}

	if err := dc.describeTables(out); err != nil {
		return nil, describer.Wrap(err)
	}
	if err := dc.describeViews(out); err != nil {
		return nil, describer.Wrap(err)
	}
	return out, nil
}

func (dc *describeCtx) describeTables(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT name, sql
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type tableRow struct{ name, createSQL string }
	var tables []tableRow
	for rows.Next() {
		var tr tableRow
		var createSQL sql.NullString
		if err := rows.Scan(&tr.name, &createSQL); err != nil {
			return err
		}
		tr.createSQL = createSQL.String
		tables = append(tables, tr)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, tr := range tables {
		t := describer.Table{Name: tr.name}
		if err := dc.describeColumns(&t, tr.createSQL); err != nil {
			return err
		}
		if err := dc.describeIndexes(&t); err != nil {
			return err
		}
		if err := dc.describeForeignKeys(&t); err != nil {
			return err
		}
		out.Tables = append(out.Tables, t)
	}
	return nil
}

func (dc *describeCtx) describeColumns(t *describer.Table, createSQL string) error {
	rows, err := dc.db.QueryContext(dc.ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(t.Name)))
	if err != nil {
		return err
	}
	defer rows.Close()

	hasAutoincrement := strings.Contains(strings.ToUpper(createSQL), "AUTOINCREMENT")
	var pkCols []struct {
		name string
		ord  int
	}

	for rows.Next() {
		var cid, notNull, pk int
		var name, typ string
		var defaultVal sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return err
		}

		col := describer.Column{
			Name: name,
			Type: mapColumnType(typ, notNull == 0),
		}
		if defaultVal.Valid {
			col.Default = classifyDefault(defaultVal.String, col.Type.Family)
		}
		// A single INTEGER primary key column is a rowid alias and
		// auto-assigns.
		if pk == 1 && col.Type.Family == describer.FamilyInt && hasAutoincrement {
			col.AutoIncrement = true
		}
		if pk > 0 {
			pkCols = append(pkCols, struct {
				name string
				ord  int
			}{name, pk})
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(pkCols) > 0 {
		sort.Slice(pkCols, func(i, j int) bool { return pkCols[i].ord < pkCols[j].ord })
		pk := &describer.Index{Unique: true}
		for _, c := range pkCols {
			pk.Columns = append(pk.Columns, describer.IndexColumn{Name: c.name, SortOrder: describer.Ascending})
		}
		t.PrimaryKey = pk
	}
	return nil
}

func (dc *describeCtx) describeIndexes(t *describer.Table) error {
	rows, err := dc.db.QueryContext(dc.ctx, fmt.Sprintf(`PRAGMA index_list(%s)`, quoteIdent(t.Name)))
	if err != nil {
		return err
	}
	defer rows.Close()

	type indexRow struct {
		name   string
		unique bool
	}
	var indexes []indexRow
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return err
		}
		// Autoindexes back primary keys and inline UNIQUE constraints;
		// the primary key is reported separately.
		if origin == "pk" {
			continue
		}
		indexes = append(indexes, indexRow{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, ir := range indexes {
		idx := describer.Index{Name: ir.name, Unique: ir.unique}
		cols, err := dc.indexColumns(ir.name)
		if err != nil {
			return err
		}
		idx.Columns = cols
		t.Indexes = append(t.Indexes, idx)
	}
	return nil
}

func (dc *describeCtx) indexColumns(index string) ([]describer.IndexColumn, error) {
	rows, err := dc.db.QueryContext(dc.ctx, fmt.Sprintf(`PRAGMA index_info(%s)`, quoteIdent(index)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []describer.IndexColumn
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		out = append(out, describer.IndexColumn{Name: name.String, SortOrder: describer.Ascending})
	}
	return out, rows.Err()
}

func (dc *describeCtx) describeForeignKeys(t *describer.Table) error {
	rows, err := dc.db.QueryContext(dc.ctx, fmt.Sprintf(`PRAGMA foreign_key_list(%s)`, quoteIdent(t.Name)))
	if err != nil {
		return err
	}
	defer rows.Close()

	var fkRows []describer.FKRow
	for rows.Next() {
		var id, seq int
		var table, from, onUpdate, onDelete, match string
		var to sql.NullString
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return err
		}
		fkRows = append(fkRows, describer.FKRow{
			ConstraintID:     strconv.Itoa(id),
			Table:            t.Name,
			Column:           from,
			ReferencedTable:  table,
			ReferencedColumn: to.String,
			Ordinal:          seq,
			OnDelete:         onDelete,
			OnUpdate:         onUpdate,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	byTable, err := describer.AssembleForeignKeys("", fkRows)
	if err != nil {
		return err
	}
	t.ForeignKeys = byTable[t.Name]
	return nil
}

func (dc *describeCtx) describeViews(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT name, sql
		FROM sqlite_master
		WHERE type = 'view'
		ORDER BY name
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var def sql.NullString
		if err := rows.Scan(&name, &def); err != nil {
			return err
		}
		out.Views = append(out.Views, describer.View{Name: name, Definition: def.String})
	}
	return rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
