// Package catalog answers metadata questions (which schemas, tables and
// columns exist) from each backend's system views. It never writes.
package catalog

import (
	"context"
	"slices"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/dialect"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/typemap"
)

// queries holds the per-dialect metadata statements.
type queries struct {
	schemas string // no arguments
	tables  string // schema
	views   string // schema
	columns string // schema, table; returns (name, type) rows
}

// Catalog reads metadata through a Querier. Pass a transaction to see the
// transaction's own uncommitted DDL.
type Catalog struct {
	q database.Querier
	queries
}

// New returns a Catalog for the given dialect.
func New(q database.Querier, d dialect.Dialect) *Catalog {
	c := &Catalog{q: q}
	switch d {
	case dialect.MySQL:
		c.queries = mysqlQueries
	case dialect.DuckDB:
		c.queries = duckdbQueries
	default:
		c.queries = postgresQueries
	}
	return c
}

// ListSchemas returns user schema names, sorted. System schemas are omitted.
func (c *Catalog) ListSchemas(ctx context.Context) ([]string, error) {
	names, err := database.QueryStrings(ctx, c.q, c.schemas)
	if err != nil {
		return nil, wrap(err, "list schemas")
	}
	return names, nil
}

// SchemaExists reports whether schema is present.
func (c *Catalog) SchemaExists(ctx context.Context, schema string) (bool, error) {
	names, err := c.ListSchemas(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, schema), nil
}

// ListTables returns the base tables of schema, sorted. Views are omitted.
// A missing schema yields an empty list.
func (c *Catalog) ListTables(ctx context.Context, schema string) ([]string, error) {
	names, err := database.QueryStrings(ctx, c.q, c.tables, schema)
	if err != nil {
		return nil, wrap(err, "list tables")
	}
	return names, nil
}

// ListViews returns the views of schema, sorted.
func (c *Catalog) ListViews(ctx context.Context, schema string) ([]string, error) {
	names, err := database.QueryStrings(ctx, c.q, c.views, schema)
	if err != nil {
		return nil, wrap(err, "list views")
	}
	return names, nil
}

// TableExists reports whether schema.table is present.
func (c *Catalog) TableExists(ctx context.Context, schema, table string) (bool, error) {
	names, err := c.ListTables(ctx, schema)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, table), nil
}

// ListColumns returns the columns of schema.table in ordinal order. A
// missing table yields an empty list.
func (c *Catalog) ListColumns(ctx context.Context, schema, table string) ([]typemap.ColumnSpec, error) {
	rows, err := c.q.Query(ctx, c.columns, schema, table)
	if err != nil {
		return nil, wrap(err, "list columns")
	}
	defer rows.Close()

	cols := make([]typemap.ColumnSpec, 0)
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "scan column", err)
		}
		cols = append(cols, typemap.ColumnSpec{
			Name:     name,
			Type:     typemap.ParseDBType(dataType),
			DataType: dataType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "list columns")
	}
	return cols, nil
}

// wrap adds context while keeping the kind of an *errs.Error.
func wrap(err error, msg string) error {
	return errs.Wrap(errs.KindOf(err), msg, err)
}
