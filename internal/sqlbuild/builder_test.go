package sqlbuild

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbframe/internal/dialect"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/typemap"
)

var (
	pg    = New(dialect.Postgres)
	my    = New(dialect.MySQL)
	duck  = New(dialect.DuckDB)
	specs = []typemap.ColumnSpec{
		{Name: "id", Type: typemap.BigInt},
		{Name: "name", Type: typemap.Text},
	}
)

func TestSchemaStatements(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (string, error)
		want    string
		wantErr errs.ErrKind
	}{
		{
			name:  "create",
			build: func() (string, error) { return pg.CreateSchema("s1") },
			want:  `CREATE SCHEMA "s1"`,
		},
		{
			name:  "create_quotes_embedded_quote",
			build: func() (string, error) { return pg.CreateSchema(`we"ird`) },
			want:  `CREATE SCHEMA "we""ird"`,
		},
		{
			name:  "create_mysql",
			build: func() (string, error) { return my.CreateSchema("s1") },
			want:  "CREATE SCHEMA `s1`",
		},
		{
			name:    "create_empty",
			build:   func() (string, error) { return pg.CreateSchema("") },
			wantErr: errs.ErrKindInvalidInput,
		},
		{
			name:  "rename",
			build: func() (string, error) { return pg.RenameSchema("a", "b") },
			want:  `ALTER SCHEMA "a" RENAME TO "b"`,
		},
		{
			name:    "rename_mysql_unsupported",
			build:   func() (string, error) { return my.RenameSchema("a", "b") },
			wantErr: errs.ErrKindInvalidInput,
		},
		{
			name:    "rename_duckdb_unsupported",
			build:   func() (string, error) { return duck.RenameSchema("a", "b") },
			wantErr: errs.ErrKindInvalidInput,
		},
		{
			name:  "drop",
			build: func() (string, error) { return pg.DropSchema("s1", false) },
			want:  `DROP SCHEMA "s1"`,
		},
		{
			name:  "drop_cascade",
			build: func() (string, error) { return pg.DropSchema("s1", true) },
			want:  `DROP SCHEMA "s1" CASCADE`,
		},
		{
			name:  "drop_cascade_mysql",
			build: func() (string, error) { return my.DropSchema("s1", true) },
			want:  "DROP SCHEMA `s1`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			if tt.wantErr != errs.ErrKindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateTable(t *testing.T) {
	tests := []struct {
		name    string
		b       Builder
		columns []typemap.ColumnSpec
		want    string
		wantErr errs.ErrKind
	}{
		{
			name:    "postgres",
			b:       pg,
			columns: specs,
			want:    `CREATE TABLE "s1"."t1" ("id" bigint, "name" text)`,
		},
		{
			name:    "mysql",
			b:       my,
			columns: specs,
			want:    "CREATE TABLE `s1`.`t1` (`id` BIGINT, `name` LONGTEXT)",
		},
		{
			name:    "duckdb",
			b:       duck,
			columns: specs,
			want:    `CREATE TABLE "s1"."t1" ("id" BIGINT, "name" VARCHAR)`,
		},
		{
			name:    "no_columns",
			b:       pg,
			wantErr: errs.ErrKindInvalidInput,
		},
		{
			name:    "duplicate_column",
			b:       pg,
			columns: []typemap.ColumnSpec{{Name: "a", Type: typemap.Text}, {Name: "a", Type: typemap.Text}},
			wantErr: errs.ErrKindInvalidInput,
		},
		{
			name:    "other_type",
			b:       pg,
			columns: []typemap.ColumnSpec{{Name: "a", Type: typemap.Other}},
			wantErr: errs.ErrKindUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.b.CreateTable("s1", "t1", tt.columns)
			if tt.wantErr != errs.ErrKindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableStatements(t *testing.T) {
	got, err := pg.RenameTable("s1", "t1", "t2")
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "s1"."t1" RENAME TO "t2"`, got)

	got, err = my.RenameTable("s1", "t1", "t2")
	require.NoError(t, err)
	assert.Equal(t, "RENAME TABLE `s1`.`t1` TO `s1`.`t2`", got)

	got, err = pg.DropTable("s1", "t1")
	require.NoError(t, err)
	assert.Equal(t, `DROP TABLE "s1"."t1"`, got)

	got, err = pg.RenameColumn("s1", "t1", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "s1"."t1" RENAME COLUMN "a" TO "b"`, got)

	_, err = pg.DropTable("", "t1")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		clause  string
		want    string
	}{
		{name: "star_nil", want: `SELECT * FROM "s1"."t1"`},
		{name: "star_explicit", columns: []string{"*"}, want: `SELECT * FROM "s1"."t1"`},
		{name: "projection", columns: []string{"b", "a"}, want: `SELECT "b", "a" FROM "s1"."t1"`},
		{
			name:   "clause_verbatim",
			clause: "WHERE a > 1 ORDER BY b LIMIT 3",
			want:   `SELECT * FROM "s1"."t1" WHERE a > 1 ORDER BY b LIMIT 3`,
		},
		{
			name:    "clause_not_validated",
			columns: []string{"a"},
			clause:  "garbage",
			want:    `SELECT "a" FROM "s1"."t1" garbage`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pg.Select("s1", "t1", tt.columns, tt.clause)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsert(t *testing.T) {
	got, err := pg.Insert("s1", "t1", []string{"a", "b"}, 2)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "s1"."t1" ("a", "b") VALUES ($1, $2), ($3, $4)`, got)

	got, err = my.Insert("s1", "t1", []string{"a"}, 3)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `s1`.`t1` (`a`) VALUES (?), (?), (?)", got)

	_, err = pg.Insert("s1", "t1", []string{"a"}, 0)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = duck.Insert("s1", "t1", []string{"a", "b"}, 20000)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestRowsPerInsert(t *testing.T) {
	assert.Equal(t, 32767, pg.RowsPerInsert(2))
	assert.Equal(t, 16383, duck.RowsPerInsert(2))
	assert.Equal(t, 1, pg.RowsPerInsert(100000))

	n := pg.RowsPerInsert(7)
	_, err := pg.Insert("s", "t", []string{"a", "b", "c", "d", "e", "f", "g"}, n)
	assert.NoError(t, err)
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, pg.ValidateIdentifier("table", "my-table with spaces"))
	assert.NoError(t, pg.ValidateIdentifier("table", strings.Repeat("x", 63)))
	assert.Error(t, pg.ValidateIdentifier("table", strings.Repeat("x", 64)))
	assert.NoError(t, my.ValidateIdentifier("table", strings.Repeat("x", 64)))
	assert.Error(t, pg.ValidateIdentifier("table", "a\x00b"))
	assert.Error(t, pg.ValidateIdentifier("table", "\xff"))

	err := pg.ValidateIdentifier("column", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid column name")
}
