package duckdb

import (
	"context"
	"errors"
	"testing"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
)

func openMemory(t *testing.T) *Driver {
	t.Helper()
	d, err := New(context.Background(), database.DefaultConfig(database.DriverDuckDB, ""))
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"dependency", &duckdb.Error{Type: duckdb.ErrorTypeDependency, Msg: "Dependency Error: cannot drop"}, errs.ErrKindHasDependents},
		{"catalog depend", &duckdb.Error{Type: duckdb.ErrorTypeCatalog, Msg: "Catalog Error: entries depend on schema"}, errs.ErrKindHasDependents},
		{"catalog", &duckdb.Error{Type: duckdb.ErrorTypeCatalog, Msg: "Catalog Error: Table does not exist"}, errs.ErrKindQueryFailed},
		{"other", errors.New("could not open file"), errs.ErrKindConnectionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestDataSource(t *testing.T) {
	assert.Equal(t, "", dataSource(&database.Config{}))
	assert.Equal(t, "/tmp/x.db", dataSource(&database.Config{Path: "/tmp/x.db"}))
	assert.Equal(t, "a.db?threads=1", dataSource(&database.Config{DSN: "a.db?threads=1", Path: "b.db"}))
}

func TestDriver_RoundTrip(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)

	_, err := d.Exec(ctx, `CREATE SCHEMA "s1"`)
	require.NoError(t, err)
	_, err = d.Exec(ctx, `CREATE TABLE "s1"."t" ("a" BIGINT, "b" VARCHAR)`)
	require.NoError(t, err)

	n, err := d.Exec(ctx, `INSERT INTO "s1"."t" ("a", "b") VALUES (?, ?), (?, ?)`, int64(1), "x", int64(2), "y")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rs, err := database.QueryAll(ctx, d, `SELECT "a", "b" FROM "s1"."t" ORDER BY "a"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rs.Columns)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, []any{int64(1), "x"}, rs.Rows[0])

	names, err := database.QueryStrings(ctx, d, `SELECT table_name FROM information_schema.tables WHERE table_schema = ?`, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, names)
}

func TestDriver_QueryErrorIsQueryFailed(t *testing.T) {
	d := openMemory(t)
	_, err := d.Query(context.Background(), `SELECT * FROM "missing"."t"`)
	assert.True(t, errs.IsQueryFailed(err))
}

func TestDriver_RollbackDiscardsDDL(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)

	tx, err := d.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `CREATE TABLE "t" ("a" INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	names, err := database.QueryStrings(ctx, d, `SELECT table_name FROM information_schema.tables WHERE table_name = 't'`)
	require.NoError(t, err)
	assert.Empty(t, names)
}
