// Package postgres contains the describer implementation for PostgreSQL.
// It reads pg_catalog and information_schema and assembles one SqlSchema
// per logical schema (namespace).
package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"sdlkit/internal/describer"
)

func init() {
	describer.Register("postgresql", New)
	describer.Register("postgres", New)
}

type pgDescriber struct{}

type describeCtx struct {
	ctx    context.Context
	db     *sql.DB
	schema string
}

// New returns the PostgreSQL describer.
func New() describer.Describer {
	return &pgDescriber{}
}

func (d *pgDescriber) Describe(ctx context.Context, db *sql.DB, schema string) (*describer.SqlSchema, error) {
	dc := &describeCtx{ctx: ctx, db: db, schema: schema}
	out := &describer.SqlSchema{Schema: schema}

	if err := dc.describeEnums(out); err != nil {
		return nil, describer.Wrap(err)
	}
	if err := dc.describeSequences(out); err != nil {
		return nil, describer.Wrap(err)
	}
	if err := dc.describeTables(out); err != nil {
		return nil, describer.Wrap(err)
	}
	if err := dc.describeForeignKeys(out); err != nil {
		return nil, describer.Wrap(err)
	}
	if err := dc.describeViews(out); err != nil {
		return nil, describer.Wrap(err)
	}
	if err := dc.describeProcedures(out); err != nil {
		return nil, describer.Wrap(err)
	}
	return out, nil
}

func (dc *describeCtx) describeTables(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, dc.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	enums := make(map[string]bool, len(out.Enums))
	for _, e := range out.Enums {
		enums[e.Name] = true
	}

	for _, name := range names {
		t := describer.Table{Name: name}
		if err := dc.describeColumns(&t, enums); err != nil {
			return err
		}
		if err := dc.describeIndexes(&t); err != nil {
			return err
		}
		out.Tables = append(out.Tables, t)
	}
	return nil
}

func (dc *describeCtx) describeColumns(t *describer.Table, enums map[string]bool) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.is_nullable,
			c.column_default,
			c.is_identity,
			col_description(format('%I.%I', c.table_schema, c.table_name)::regclass::oid, c.ordinal_position)
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`, dc.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, dataType, udtName, nullable, isIdentity string
		var defaultVal, comment sql.NullString
		if err := rows.Scan(&name, &dataType, &udtName, &nullable, &defaultVal, &isIdentity, &comment); err != nil {
			return err
		}

		col := describer.Column{
			Name:    name,
			Type:    mapColumnType(dataType, udtName, nullable == "YES", enums),
			Comment: comment.String,
		}
		if defaultVal.Valid {
			col.Default = classifyDefault(defaultVal.String, col.Type.Family)
			if col.Default.Kind == describer.DefaultSequence {
				col.AutoIncrement = true
			} else if col.Default.Kind == describer.DefaultDBGenerated &&
				(col.Type.Family == describer.FamilyInt || col.Type.Family == describer.FamilyBigInt) {
				// Serial columns set up by hand can carry a default the
				// classifier does not recognize; ask the server directly.
				if seq, err := dc.serialSequence(t.Name, name); err == nil && seq != "" {
					col.Default = &describer.ColumnDefault{Kind: describer.DefaultSequence, Value: seq}
					col.AutoIncrement = true
				}
			}
		}
		if isIdentity == "YES" {
			col.AutoIncrement = true
		}
		t.Columns = append(t.Columns, col)
	}
	return rows.Err()
}

func (dc *describeCtx) describeIndexes(t *describer.Table) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT
			i.relname,
			ix.indisunique,
			ix.indisprimary,
			am.amname,
			a.attname,
			CASE WHEN ix.indoption[k.ord - 1] & 1 = 1 THEN 'DESC' ELSE 'ASC' END
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class tc ON tc.oid = ix.indrelid
		JOIN pg_namespace ns ON ns.oid = tc.relnamespace
		JOIN pg_am am ON am.oid = i.relam
		JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = tc.oid AND a.attnum = k.attnum
		WHERE ns.nspname = $1 AND tc.relname = $2
		ORDER BY i.relname, k.ord
	`, dc.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]*describer.Index)
	var order []string
	primary := make(map[string]bool)

	for rows.Next() {
		var name, amname, column, sortOrder string
		var unique, isPrimary bool
		if err := rows.Scan(&name, &unique, &isPrimary, &amname, &column, &sortOrder); err != nil {
			return err
		}
		idx, ok := byName[name]
		if !ok {
			idx = &describer.Index{Name: name, Unique: unique, Type: amname}
			byName[name] = idx
			order = append(order, name)
			primary[name] = isPrimary
		}
		idx.Columns = append(idx.Columns, describer.IndexColumn{
			Name:      column,
			SortOrder: describer.SortOrder(sortOrder),
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range order {
		if primary[name] {
			t.PrimaryKey = byName[name]
			continue
		}
		t.Indexes = append(t.Indexes, *byName[name])
	}
	return nil
}

func (dc *describeCtx) describeForeignKeys(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT
			con.oid::text,
			con.conname,
			tc.relname,
			a.attname,
			ns2.nspname,
			tc2.relname,
			a2.attname,
			k.ord,
			con.confdeltype::text,
			con.confupdtype::text
		FROM pg_constraint con
		JOIN pg_class tc ON tc.oid = con.conrelid
		JOIN pg_namespace ns ON ns.oid = tc.relnamespace
		JOIN pg_class tc2 ON tc2.oid = con.confrelid
		JOIN pg_namespace ns2 ON ns2.oid = tc2.relnamespace
		JOIN LATERAL unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = tc.oid AND a.attnum = k.attnum
		JOIN pg_attribute a2 ON a2.attrelid = tc2.oid AND a2.attnum = con.confkey[k.ord]
		WHERE con.contype = 'f' AND ns.nspname = $1
		ORDER BY con.oid, k.ord
	`, dc.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	var fkRows []describer.FKRow
	for rows.Next() {
		var row describer.FKRow
		var onDelete, onUpdate string
		if err := rows.Scan(&row.ConstraintID, &row.ConstraintName, &row.Table, &row.Column,
			&row.ReferencedSchema, &row.ReferencedTable, &row.ReferencedColumn, &row.Ordinal,
			&onDelete, &onUpdate); err != nil {
			return err
		}
		row.OnDelete = referentialAction(onDelete)
		row.OnUpdate = referentialAction(onUpdate)
		fkRows = append(fkRows, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	byTable, err := describer.AssembleForeignKeys(dc.schema, fkRows)
	if err != nil {
		return err
	}
	for i := range out.Tables {
		out.Tables[i].ForeignKeys = byTable[out.Tables[i].Name]
	}
	return nil
}

// referentialAction decodes pg_constraint action characters.
func referentialAction(c string) string {
	switch c {
	case "c":
		return "CASCADE"
	case "r":
		return "RESTRICT"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

func (dc *describeCtx) describeEnums(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON e.enumtypid = t.oid
		JOIN pg_namespace ns ON ns.oid = t.typnamespace
		WHERE ns.nspname = $1
		ORDER BY t.typname, e.enumsortorder
	`, dc.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]int)
	for rows.Next() {
		var name, label string
		if err := rows.Scan(&name, &label); err != nil {
			return err
		}
		i, ok := byName[name]
		if !ok {
			i = len(out.Enums)
			byName[name] = i
			out.Enums = append(out.Enums, describer.Enum{Name: name})
		}
		out.Enums[i].Values = append(out.Enums[i].Values, label)
	}
	return rows.Err()
}

func (dc *describeCtx) describeSequences(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT sequence_name
		FROM information_schema.sequences
		WHERE sequence_schema = $1
		ORDER BY sequence_name
	`, dc.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		out.Sequences = append(out.Sequences, describer.Sequence{Name: name})
	}
	return rows.Err()
}

func (dc *describeCtx) describeViews(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT viewname, definition
		FROM pg_views
		WHERE schemaname = $1
		ORDER BY viewname
	`, dc.schema)
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

func (dc *describeCtx) describeProcedures(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT routine_name, routine_definition
		FROM information_schema.routines
		WHERE specific_schema = $1
		ORDER BY routine_name
	`, dc.schema)
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
		out.Procedures = append(out.Procedures, describer.Procedure{Name: name, Definition: def.String})
	}
	return rows.Err()
}

// serialSequence resolves the sequence feeding a serial column, if any.
// pg_get_serial_sequence takes a quoted qualified name as text, so the
// identifiers are quoted explicitly.
func (dc *describeCtx) serialSequence(table, column string) (string, error) {
	qualified := pq.QuoteIdentifier(dc.schema) + "." + pq.QuoteIdentifier(table)
	var seq sql.NullString
	err := dc.db.QueryRowContext(dc.ctx, `SELECT pg_get_serial_sequence($1, $2)`, qualified, column).Scan(&seq)
	if err != nil {
		return "", err
	}
	return seq.String, nil
}
