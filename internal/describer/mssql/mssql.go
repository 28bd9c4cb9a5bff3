// Package mssql contains the describer implementation for SQL Server. It
// reads the sys catalog views; multi-column constraints are merged on
// their constraint_object_id.
package mssql

import (
	"context"
	"database/sql"
	"strings"

	"sdlkit/internal/describer"
)

func init() {
	describer.Register("sqlserver", New)
	describer.Register("mssql", New)
}

type msDescriber struct{}

type describeCtx struct {
	ctx    context.Context
	db     *sql.DB
	schema string
}

// New returns the SQL Server describer.
func New() describer.Describer {
	return &msDescriber{}
}

func (d *msDescriber) Describe(ctx context.Context, db *sql.DB, schema string) (*describer.SqlSchema, error) {
	dc := &describeCtx{ctx: ctx, db: db, schema: schema}
	out := &describer.SqlSchema{Schema: schema}

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
	if err := dc.describeSequences(out); err != nil {
		return nil, describer.Wrap(err)
	}
	return out, nil
}

func (dc *describeCtx) describeTables(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT t.name
		FROM sys.tables t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		WHERE s.name = @p1
		ORDER BY t.name
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

	for _, name := range names {
		t := describer.Table{Name: name}
		if err := dc.describeColumns(&t); err != nil {
			return err
		}
		if err := dc.describeIndexes(&t); err != nil {
			return err
		}
		out.Tables = append(out.Tables, t)
	}
	return nil
}

func (dc *describeCtx) describeColumns(t *describer.Table) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT
			c.name,
			ty.name,
			c.is_nullable,
			c.is_identity,
			dc.definition
		FROM sys.columns c
		JOIN sys.tables tb ON tb.object_id = c.object_id
		JOIN sys.schemas s ON s.schema_id = tb.schema_id
		JOIN sys.types ty ON ty.user_type_id = c.user_type_id
		LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
		WHERE s.name = @p1 AND tb.name = @p2
		ORDER BY c.column_id
	`, dc.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, typeName string
		var nullable, identity bool
		var defaultDef sql.NullString
		if err := rows.Scan(&name, &typeName, &nullable, &identity, &defaultDef); err != nil {
			return err
		}

		col := describer.Column{
			Name:          name,
			Type:          mapColumnType(typeName, nullable),
			AutoIncrement: identity,
		}
		if defaultDef.Valid {
			col.Default = classifyDefault(defaultDef.String, col.Type.Family)
		}
		t.Columns = append(t.Columns, col)
	}
	return rows.Err()
}

func (dc *describeCtx) describeIndexes(t *describer.Table) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT
			i.name,
			i.is_unique,
			i.is_primary_key,
			i.type_desc,
			col.name,
			ic.is_descending_key
		FROM sys.indexes i
		JOIN sys.tables tb ON tb.object_id = i.object_id
		JOIN sys.schemas s ON s.schema_id = tb.schema_id
		JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns col ON col.object_id = i.object_id AND col.column_id = ic.column_id
		WHERE s.name = @p1 AND tb.name = @p2 AND i.name IS NOT NULL AND ic.key_ordinal > 0
		ORDER BY i.index_id, ic.key_ordinal
	`, dc.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]*describer.Index)
	var order []string
	primary := make(map[string]bool)

	for rows.Next() {
		var name, typeDesc, column string
		var unique, isPrimary, descending bool
		if err := rows.Scan(&name, &unique, &isPrimary, &typeDesc, &column, &descending); err != nil {
			return err
		}
		idx, ok := byName[name]
		if !ok {
			idx = &describer.Index{Name: name, Unique: unique, Type: typeDesc}
			byName[name] = idx
			order = append(order, name)
			primary[name] = isPrimary
		}
		sortOrder := describer.Ascending
		if descending {
			sortOrder = describer.Descending
		}
		idx.Columns = append(idx.Columns, describer.IndexColumn{Name: column, SortOrder: sortOrder})
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
			CAST(fkc.constraint_object_id AS varchar(32)),
			fk.name,
			tp.name,
			cp.name,
			SCHEMA_NAME(tr.schema_id),
			tr.name,
			cr.name,
			fkc.constraint_column_id,
			fk.delete_referential_action_desc,
			fk.update_referential_action_desc
		FROM sys.foreign_key_columns fkc
		JOIN sys.foreign_keys fk ON fk.object_id = fkc.constraint_object_id
		JOIN sys.tables tp ON tp.object_id = fkc.parent_object_id
		JOIN sys.schemas s ON s.schema_id = tp.schema_id
		JOIN sys.columns cp ON cp.object_id = fkc.parent_object_id AND cp.column_id = fkc.parent_column_id
		JOIN sys.tables tr ON tr.object_id = fkc.referenced_object_id
		JOIN sys.columns cr ON cr.object_id = fkc.referenced_object_id AND cr.column_id = fkc.referenced_column_id
		WHERE s.name = @p1
		ORDER BY fkc.constraint_object_id, fkc.constraint_column_id
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
		row.OnDelete = strings.ReplaceAll(onDelete, "_", " ")
		row.OnUpdate = strings.ReplaceAll(onUpdate, "_", " ")
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
		SELECT v.name, m.definition
		FROM sys.views v
		JOIN sys.schemas s ON s.schema_id = v.schema_id
		JOIN sys.sql_modules m ON m.object_id = v.object_id
		WHERE s.name = @p1
		ORDER BY v.name
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
		SELECT p.name, m.definition
		FROM sys.procedures p
		JOIN sys.schemas s ON s.schema_id = p.schema_id
		JOIN sys.sql_modules m ON m.object_id = p.object_id
		WHERE s.name = @p1
		ORDER BY p.name
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

func (dc *describeCtx) describeSequences(out *describer.SqlSchema) error {
	rows, err := dc.db.QueryContext(dc.ctx, `
		SELECT sq.name
		FROM sys.sequences sq
		JOIN sys.schemas s ON s.schema_id = sq.schema_id
		WHERE s.name = @p1
		ORDER BY sq.name
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
