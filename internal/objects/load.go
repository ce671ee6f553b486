package objects

import (
	"context"
	"fmt"

	"github.com/koustreak/dbframe/internal/catalog"
	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/frame"
	"github.com/koustreak/dbframe/internal/typemap"
)

// columnSpecs maps each frame column to a database type. It runs before any
// statement is built so an unmappable column leaves the database untouched.
func columnSpecs(f *frame.Frame) ([]typemap.ColumnSpec, error) {
	if f == nil || f.NumCols() == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "frame has no columns")
	}
	specs := make([]typemap.ColumnSpec, f.NumCols())
	for i, c := range f.Columns() {
		tag, err := typemap.ToDBType(c.Type)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindUnsupportedType, fmt.Sprintf("column %q", c.Name), err)
		}
		specs[i] = typemap.ColumnSpec{Name: c.Name, Type: tag}
	}
	return specs, nil
}

// replaceTable drops schema.name if present, recreates it from f and loads
// f's rows, all through q.
func (db *Database) replaceTable(ctx context.Context, q database.Querier, cat *catalog.Catalog, schema, name string, f *frame.Frame) error {
	specs, err := columnSpecs(f)
	if err != nil {
		return err
	}
	create, err := db.build.CreateTable(schema, name, specs)
	if err != nil {
		return err
	}
	drop, err := db.build.DropTable(schema, name)
	if err != nil {
		return err
	}

	exists, err := cat.TableExists(ctx, schema, name)
	if err != nil {
		return err
	}
	if exists {
		if _, err := db.exec(ctx, q, "drop_table", schema, name, drop); err != nil {
			return err
		}
	}
	if _, err := db.exec(ctx, q, "create_table", schema, name, create); err != nil {
		return err
	}
	return db.load(ctx, q, schema, name, f)
}

// load inserts every row of f, through the bulk-load path when q has one
// and batched INSERTs otherwise.
func (db *Database) load(ctx context.Context, q database.Querier, schema, name string, f *frame.Frame) error {
	if f.NumRows() == 0 {
		return nil
	}
	columns := f.Names()
	rows := f.Rows()

	if bl, ok := q.(database.BulkLoader); ok {
		db.log.DebugWith("bulk load", map[string]any{
			"op":     "load",
			"schema": schema,
			"table":  name,
			"rows":   len(rows),
		})
		_, err := bl.CopyFrom(ctx, schema, name, columns, rows)
		return err
	}

	batch := db.build.RowsPerInsert(len(columns))
	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))
		stmt, err := db.build.Insert(schema, name, columns, end-start)
		if err != nil {
			return err
		}
		args := make([]any, 0, (end-start)*len(columns))
		for _, row := range rows[start:end] {
			args = append(args, row...)
		}
		if _, err := db.exec(ctx, q, "insert", schema, name, stmt, args...); err != nil {
			return err
		}
	}
	return nil
}
