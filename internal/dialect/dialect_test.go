package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	assert.Equal(t, `"users"`, Postgres.Quote("users"))
	assert.Equal(t, `"we""ird"`, Postgres.Quote(`we"ird`))
	assert.Equal(t, "`we``ird`", MySQL.Quote("we`ird"))
	assert.Equal(t, `"Mixed Case"`, DuckDB.Quote("Mixed Case"))
}

func TestQualified(t *testing.T) {
	assert.Equal(t, `"s1"."t1"`, Postgres.Qualified("s1", "t1"))
	assert.Equal(t, "`s1`.`t1`", MySQL.Qualified("s1", "t1"))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?", MySQL.Placeholder(3))
	assert.Equal(t, "?", DuckDB.Placeholder(1))
}

func TestParse(t *testing.T) {
	for name, want := range map[string]Dialect{
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"mysql":      MySQL,
		"duckdb":     DuckDB,
	} {
		got, err := Parse(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := Parse("oracle")
	assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	assert.True(t, Postgres.SupportsSchemaRename())
	assert.False(t, MySQL.SupportsSchemaRename())
	assert.False(t, DuckDB.SupportsSchemaRename())
	assert.False(t, MySQL.SupportsCascade())
	assert.True(t, DuckDB.SupportsCascade())
	assert.Equal(t, 63, Postgres.MaxIdentifierLen())
	assert.Equal(t, "mysql", MySQL.String())
}
