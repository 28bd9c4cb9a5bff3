package mysql

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"sdlkit/internal/describer"
)

func TestDescribeIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupMySQL(t)
	ctx := context.Background()

	ddl := []string{
		`CREATE TABLE customers (
			id INT NOT NULL AUTO_INCREMENT,
			email VARCHAR(191) NOT NULL,
			status ENUM('active', 'blocked') NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY customers_email_key (email)
		)`,
		`CREATE TABLE orders (
			id INT NOT NULL AUTO_INCREMENT,
			customer_id INT NOT NULL,
			note VARCHAR(255) NULL,
			PRIMARY KEY (id),
			KEY orders_customer_idx (customer_id),
			CONSTRAINT orders_customer_fk FOREIGN KEY (customer_id)
				REFERENCES customers (id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range ddl {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	schema, err := New().Describe(ctx, db, "testdb")
	require.NoError(t, err)
	require.Len(t, schema.Tables, 2)

	customers, ok := schema.Table("customers")
	require.True(t, ok)

	t.Run("columns", func(t *testing.T) {
		require.Len(t, customers.Columns, 4)

		id := customers.Columns[0]
		assert.Equal(t, "id", id.Name)
		assert.True(t, id.AutoIncrement)
		assert.Equal(t, describer.FamilyInt, id.Type.Family)
		require.NotNil(t, id.Default)
		assert.Equal(t, describer.DefaultSequence, id.Default.Kind)

		email := customers.Columns[1]
		assert.Equal(t, describer.FamilyString, email.Type.Family)
		assert.Equal(t, describer.ColumnRequired, email.Type.Arity)

		createdAt := customers.Columns[3]
		require.NotNil(t, createdAt.Default)
		assert.Equal(t, describer.DefaultNow, createdAt.Default.Kind)
	})

	t.Run("enum column", func(t *testing.T) {
		status := customers.Columns[2]
		assert.Equal(t, describer.FamilyEnum, status.Type.Family)
		assert.Equal(t, "customers_status", status.Type.EnumName)
		require.NotNil(t, status.Default)
		assert.Equal(t, "active", status.Default.Value)

		var found *describer.Enum
		for i := range schema.Enums {
			if schema.Enums[i].Name == "customers_status" {
				found = &schema.Enums[i]
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, []string{"active", "blocked"}, found.Values)
	})

	t.Run("primary key and indexes", func(t *testing.T) {
		require.NotNil(t, customers.PrimaryKey)
		require.Len(t, customers.PrimaryKey.Columns, 1)
		assert.Equal(t, "id", customers.PrimaryKey.Columns[0].Name)

		var unique *describer.Index
		for i := range customers.Indexes {
			if customers.Indexes[i].Name == "customers_email_key" {
				unique = &customers.Indexes[i]
			}
		}
		require.NotNil(t, unique)
		assert.True(t, unique.Unique)
		assert.Equal(t, []describer.IndexColumn{{Name: "email", SortOrder: describer.Ascending}}, unique.Columns)
	})

	t.Run("foreign keys", func(t *testing.T) {
		orders, ok := schema.Table("orders")
		require.True(t, ok)
		require.Len(t, orders.ForeignKeys, 1)

		fk := orders.ForeignKeys[0]
		assert.Equal(t, "orders_customer_fk", fk.ConstraintName)
		assert.Equal(t, []string{"customer_id"}, fk.Columns)
		assert.Equal(t, "customers", fk.ReferencedTable)
		assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
		assert.Equal(t, "CASCADE", fk.OnDelete)
	})
}

func setupMySQL(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("testdb"),
		tcmysql.WithUsername("root"),
		tcmysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	require.NoError(t, db.PingContext(ctx), "failed to ping database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB connection: %v", err)
		}
	})

	return db
}
