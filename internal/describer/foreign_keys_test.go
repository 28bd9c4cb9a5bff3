package describer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleForeignKeysGroupsByConstraint(t *testing.T) {
	rows := []FKRow{
		{ConstraintID: "17", ConstraintName: "order_fk", Table: "orders", Column: "customer_region", ReferencedTable: "customers", ReferencedColumn: "region", Ordinal: 2, OnDelete: "CASCADE", OnUpdate: "NO ACTION"},
		{ConstraintID: "17", ConstraintName: "order_fk", Table: "orders", Column: "customer_id", ReferencedTable: "customers", ReferencedColumn: "id", Ordinal: 1, OnDelete: "CASCADE", OnUpdate: "NO ACTION"},
		{ConstraintID: "23", ConstraintName: "order_item_fk", Table: "items", Column: "order_id", ReferencedTable: "orders", ReferencedColumn: "id", Ordinal: 1, OnDelete: "RESTRICT", OnUpdate: "NO ACTION"},
	}

	byTable, err := AssembleForeignKeys("public", rows)
	require.NoError(t, err)

	require.Len(t, byTable["orders"], 1)
	fk := byTable["orders"][0]
	assert.Equal(t, "order_fk", fk.ConstraintName)
	assert.Equal(t, []string{"customer_id", "customer_region"}, fk.Columns)
	assert.Equal(t, []string{"id", "region"}, fk.ReferencedColumns)
	assert.Equal(t, "customers", fk.ReferencedTable)
	assert.Equal(t, "CASCADE", fk.OnDelete)

	require.Len(t, byTable["items"], 1)
	assert.Equal(t, "order_item_fk", byTable["items"][0].ConstraintName)
}

func TestAssembleForeignKeysSameNameDifferentTables(t *testing.T) {
	// MySQL allows the same constraint name on different tables, so the
	// id has to disambiguate, not the name.
	rows := []FKRow{
		{ConstraintID: "a.fk", ConstraintName: "fk", Table: "a", Column: "x", ReferencedTable: "c", ReferencedColumn: "id", Ordinal: 1},
		{ConstraintID: "b.fk", ConstraintName: "fk", Table: "b", Column: "y", ReferencedTable: "c", ReferencedColumn: "id", Ordinal: 1},
	}

	byTable, err := AssembleForeignKeys("", rows)
	require.NoError(t, err)
	assert.Len(t, byTable["a"], 1)
	assert.Len(t, byTable["b"], 1)
}

func TestAssembleForeignKeysRejectsCrossSchema(t *testing.T) {
	rows := []FKRow{
		{ConstraintID: "9", ConstraintName: "audit_fk", Table: "orders", Column: "audit_id", ReferencedSchema: "audit", ReferencedTable: "entries", ReferencedColumn: "id", Ordinal: 1},
	}

	_, err := AssembleForeignKeys("public", rows)
	require.Error(t, err)

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindCrossSchemaReference, de.Kind)
	assert.Equal(t, "orders", de.From)
	assert.Equal(t, "audit", de.To)
	assert.Equal(t, "audit_fk", de.Constraint)
}

func TestAssembleForeignKeysEmptyReferencedSchemaIsLocal(t *testing.T) {
	rows := []FKRow{
		{ConstraintID: "0", ConstraintName: "", Table: "a", Column: "x", ReferencedTable: "b", ReferencedColumn: "id", Ordinal: 1},
	}
	byTable, err := AssembleForeignKeys("main", rows)
	require.NoError(t, err)
	assert.Len(t, byTable["a"], 1)
}
