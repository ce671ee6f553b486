// Package dialect captures the per-backend SQL differences the statement
// builder and catalog care about: identifier quoting, placeholders,
// identifier length limits, and a few capability flags.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect identifies the SQL flavour a statement is built for.
type Dialect int

const (
	// Postgres uses "ident" quoting and $1, $2, … placeholders.
	Postgres Dialect = iota

	// MySQL uses `ident` quoting and ? placeholders. Schemas are databases.
	MySQL

	// DuckDB uses "ident" quoting and ? placeholders.
	DuckDB
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case DuckDB:
		return "duckdb"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Parse maps a driver name to its Dialect.
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "duckdb":
		return DuckDB, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", name)
	}
}

// Quote wraps an identifier in the dialect's quote character, doubling any
// embedded quote characters.
func (d Dialect) Quote(name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Qualified returns the quoted schema.table pair.
func (d Dialect) Qualified(schema, table string) string {
	return d.Quote(schema) + "." + d.Quote(table)
}

// Placeholder returns the bind parameter marker for the 1-based index idx.
func (d Dialect) Placeholder(idx int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}

// MaxIdentifierLen is the longest identifier the backend keeps without
// truncating or rejecting it.
func (d Dialect) MaxIdentifierLen() int {
	switch d {
	case Postgres:
		return 63
	case MySQL:
		return 64
	default:
		return 255
	}
}

// MaxParams is the largest number of bind parameters one statement may carry.
func (d Dialect) MaxParams() int {
	switch d {
	case Postgres, MySQL:
		return 65535
	default:
		return 32767
	}
}

// SupportsSchemaRename reports whether ALTER SCHEMA … RENAME exists.
func (d Dialect) SupportsSchemaRename() bool {
	return d == Postgres
}

// SupportsCascade reports whether DROP SCHEMA accepts a CASCADE keyword.
func (d Dialect) SupportsCascade() bool {
	return d != MySQL
}
