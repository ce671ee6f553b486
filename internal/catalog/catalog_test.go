package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/database/dbtest"
	"github.com/koustreak/dbframe/internal/database/duckdb"
	"github.com/koustreak/dbframe/internal/dialect"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/typemap"
)

func seeded(t *testing.T) *dbtest.DB {
	t.Helper()
	ctx := context.Background()
	db := dbtest.New("public", "sales")
	for _, stmt := range []string{
		`CREATE TABLE "sales"."orders" ("id" bigint, "placed" timestamp, "note" text)`,
		`CREATE TABLE "sales"."customers" ("id" bigint, "tags" jsonb)`,
	} {
		_, err := db.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func TestCatalog_Postgres(t *testing.T) {
	ctx := context.Background()
	c := New(seeded(t), dialect.Postgres)

	schemas, err := c.ListSchemas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "sales"}, schemas)

	ok, err := c.SchemaExists(ctx, "sales")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.SchemaExists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	tables, err := c.ListTables(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	tables, err = c.ListTables(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)

	ok, err = c.TableExists(ctx, "sales", "orders")
	require.NoError(t, err)
	assert.True(t, ok)

	cols, err := c.ListColumns(ctx, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, []typemap.ColumnSpec{
		{Name: "id", Type: typemap.BigInt, DataType: "bigint"},
		{Name: "placed", Type: typemap.Timestamp, DataType: "timestamp"},
		{Name: "note", Type: typemap.Text, DataType: "text"},
	}, cols)

	cols, err = c.ListColumns(ctx, "sales", "customers")
	require.NoError(t, err)
	assert.Equal(t, typemap.Other, cols[1].Type)
	assert.Equal(t, "jsonb", cols[1].DataType)
}

func TestCatalog_KeepsErrorKind(t *testing.T) {
	db := seeded(t)
	db.FailOn("pg_namespace", errs.New(errs.ErrKindPermissionDenied, "denied"))

	_, err := New(db, dialect.Postgres).ListSchemas(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))
	assert.Contains(t, err.Error(), "list schemas")
}

func TestCatalog_DuckDB(t *testing.T) {
	ctx := context.Background()
	d, err := duckdb.New(ctx, database.DefaultConfig(database.DriverDuckDB, ""))
	require.NoError(t, err)
	defer d.Close()

	for _, stmt := range []string{
		`CREATE SCHEMA "s1"`,
		`CREATE TABLE "s1"."t1" ("a" BIGINT, "b" VARCHAR, "c" BOOLEAN)`,
		`CREATE VIEW "s1"."v1" AS SELECT 1 AS x`,
	} {
		_, err := d.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	c := New(d, dialect.DuckDB)

	schemas, err := c.ListSchemas(ctx)
	require.NoError(t, err)
	assert.Contains(t, schemas, "s1")
	assert.Contains(t, schemas, "main")

	tables, err := c.ListTables(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, tables)

	views, err := c.ListViews(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, views)

	cols, err := c.ListColumns(ctx, "s1", "t1")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "a", cols[0].Name)
	assert.Equal(t, typemap.BigInt, cols[0].Type)
	assert.Equal(t, typemap.Text, cols[1].Type)
	assert.Equal(t, typemap.Boolean, cols[2].Type)
}
