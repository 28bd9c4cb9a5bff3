// Package mysql contains the describer implementation for MySQL and
// MariaDB. The two share a wire protocol but differ in how the catalog
// renders column defaults, so the flavor is detected up front and threaded
// through default classification.
package mysql

import (
	"context"
	"database/sql"
	"strings"

	"sdlkit/internal/describer"
)

func init() {
	describer.Register("mysql", New)
	describer.Register("mariadb", New)
}

type myDescriber struct{}

type describeCtx struct {
	ctx     context.Context
	db      *sql.DB
	schema  string
	mariadb bool
}

// New returns the MySQL describer.
func New() describer.Describer {
	return &myDescriber{}
}

func (d *myDescriber) Describe(ctx context.Context, db *sql.DB, schema string) (*describer.SqlSchema, error) {
	dc := &describeCtx{ctx: ctx, db: db, schema: schema}

	if dc.schema == "" {
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&dc.schema); err != nil {
			return nil, describer.Wrap(err)
		}
	}
	var version string
	if err := db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return nil, describer.Wrap(err)
	}
	dc.mariadb = strings.Contains(strings.ToLower(version), "mariadb")

	out := &describer.SqlSchema{Schema: dc.schema}
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
		SELECT table_name, table_comment
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, dc.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	type tableRow struct{ name, comment string }
	var tables []tableRow
	for rows.Next() {
		var tr tableRow
		var comment sql.NullString
		if err := rows.Scan(&tr.name, &comment); err != nil {
			return err
		}
		tr.comment = comment.String
		tables = append(tables, tr)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, tr := range tables {
		t := describer.Table{Name: tr.name, Comment: tr.comment}
		if err := dc.describeColumns(&t, out); err != nil {
			return err
		}
		if err := dc.describeIndexes(&t); err != nil {
			return err
		}
		out.Tables = append(out.Tables, t)
	}
	return nil
}

func (dc *describeCtx) describeColumns(t *describer.Table, out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT
			c.column_name,
			c.data_type,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.extra,
			c.column_comment
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, dc.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, dataType, columnType, nullable, extra, comment string
		var defaultVal sql.NullString
		if err := rows.Scan(&name, &dataType, &columnType, &nullable, &defaultVal, &extra, &comment); err != nil {
			return err
		}

		col := describer.Column{
			Name:          name,
			Comment:       comment,
			AutoIncrement: strings.Contains(extra, "auto_increment"),
		}

		if dataType == "enum" {
			// MySQL enums are per-column; they surface as a synthetic
			// schema-level enum named after the table and column.
			enumName := t.Name + "_" + name
			out.Enums = append(out.Enums, describer.Enum{Name: enumName, Values: parseEnumValues(columnType)})
			col.Type = describer.ColumnType{
				FullType: columnType,
				Family:   describer.FamilyEnum,
				EnumName: enumName,
				Arity:    arity(nullable),
			}
		} else {
			col.Type = mapColumnType(dataType, columnType, nullable)
		}

		if defaultVal.Valid {
			col.Default = dc.classifyDefault(defaultVal.String, col.Type.Family, extra)
		}
		if col.AutoIncrement {
			col.Default = &describer.ColumnDefault{Kind: describer.DefaultSequence}
		}

		t.Columns = append(t.Columns, col)
	}
	return rows.Err()
}

func (dc *describeCtx) describeIndexes(t *describer.Table) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT
			s.index_name,
			s.non_unique,
			s.index_type,
			s.column_name,
			s.sub_part,
			s.collation
		FROM information_schema.statistics s
		WHERE s.table_schema = ? AND s.table_name = ?
		ORDER BY s.index_name, s.seq_in_index
	`, dc.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]*describer.Index)
	var order []string

	for rows.Next() {
		var name, indexType, column string
		var nonUnique int
		var subPart sql.NullInt64
		var collation sql.NullString
		if err := rows.Scan(&name, &nonUnique, &indexType, &column, &subPart, &collation); err != nil {
			return err
		}

		idx, ok := byName[name]
		if !ok {
			idx = &describer.Index{Name: name, Unique: nonUnique == 0, Type: indexType}
			byName[name] = idx
			order = append(order, name)
		}
		ic := describer.IndexColumn{Name: column, SortOrder: describer.Ascending}
		if collation.String == "D" {
			ic.SortOrder = describer.Descending
		}
		if subPart.Valid {
			length := int(subPart.Int64)
			ic.Length = &length
		}
		idx.Columns = append(idx.Columns, ic)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range order {
		if name == "PRIMARY" {
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
			kcu.constraint_name,
			kcu.table_name,
			kcu.column_name,
			kcu.referenced_table_schema,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			kcu.ordinal_position,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
		WHERE kcu.table_schema = ? AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position
	`, dc.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	var fkRows []describer.FKRow
	for rows.Next() {
		var row describer.FKRow
		if err := rows.Scan(&row.ConstraintName, &row.Table, &row.Column,
			&row.ReferencedSchema, &row.ReferencedTable, &row.ReferencedColumn,
			&row.Ordinal, &row.OnDelete, &row.OnUpdate); err != nil {
			return err
		}
		// constraint_name is only unique per table in MySQL.
		row.ConstraintID = row.Table + "." + row.ConstraintName
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

func (dc *describeCtx) describeViews(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT table_name, view_definition
		FROM information_schema.views
		WHERE table_schema = ?
		ORDER BY table_name
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
		out.Views = append(out.Views, describer.View{
			Name:       name,
			Definition: normalizeViewDefinition(def.String),
		})
	}
	return rows.Err()
}

func (dc *describeCtx) describeProcedures(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT routine_name, routine_definition
		FROM information_schema.routines
		WHERE routine_schema = ?
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

func arity(nullable string) describer.ColumnArity {
	if nullable == "YES" {
		return describer.ColumnNullable
	}
	return describer.ColumnRequired
}
