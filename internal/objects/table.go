package objects

import (
	"context"
	"fmt"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/frame"
	"github.com/koustreak/dbframe/internal/sqlbuild"
	"github.com/koustreak/dbframe/internal/typemap"
)

// Table is a handle on one table. It does not own the connection.
type Table struct {
	db     *Database
	schema string
	name   string
}

// TableMeta describes a table's columns in ordinal order.
type TableMeta struct {
	Name    string
	Columns []typemap.ColumnSpec
}

// RenameSpec, ColumnRename, FullRename and PartialRename describe a column
// rename for RenameColumns.
type (
	RenameSpec   = sqlbuild.RenameSpec
	ColumnRename = sqlbuild.ColumnRename
)

var (
	FullRename    = sqlbuild.FullRename
	PartialRename = sqlbuild.PartialRename
)

// Name is the table's current name.
func (t *Table) Name() string { return t.name }

// SchemaName is the name of the schema the table was looked up in.
func (t *Table) SchemaName() string { return t.schema }

// Meta fetches the table's current columns.
func (t *Table) Meta(ctx context.Context) (_ TableMeta, err error) {
	defer t.db.logFailure("table_meta", t.schema, t.name, &err)
	if err := t.db.checkOpen(); err != nil {
		return TableMeta{}, err
	}

	cols, err := t.columns(ctx)
	if err != nil {
		return TableMeta{}, err
	}
	return TableMeta{Name: t.name, Columns: cols}, nil
}

// SelectColumns reads every row, projecting the named columns. No names, or
// the single name "*", selects all columns. An unknown name fails with
// ErrKindColumnNotFound before the table is queried.
func (t *Table) SelectColumns(ctx context.Context, columns ...string) (_ *frame.Frame, err error) {
	defer t.db.logFailure("select_columns", t.schema, t.name, &err)
	if err := t.db.checkOpen(); err != nil {
		return nil, err
	}

	all, err := t.columns(ctx)
	if err != nil {
		return nil, err
	}
	specs, err := project(all, columns)
	if err != nil {
		return nil, err
	}
	return t.read(ctx, specs, "")
}

// All reads every row and column.
func (t *Table) All(ctx context.Context) (*frame.Frame, error) {
	return t.SelectColumns(ctx)
}

// Select reads all columns with clause appended verbatim after the FROM
// target, e.g. "WHERE id > 10 ORDER BY id". The clause is caller-supplied
// SQL; a malformed one fails as a database error.
func (t *Table) Select(ctx context.Context, clause string) (_ *frame.Frame, err error) {
	defer t.db.logFailure("select", t.schema, t.name, &err)
	if err := t.db.checkOpen(); err != nil {
		return nil, err
	}

	specs, err := t.columns(ctx)
	if err != nil {
		return nil, err
	}
	return t.read(ctx, specs, clause)
}

// Rename renames the table within its schema and updates the handle. It
// fails with ErrKindAlreadyExists when newName is taken.
func (t *Table) Rename(ctx context.Context, newName string) (err error) {
	defer t.db.logFailure("rename_table", t.schema, t.name, &err)
	if err := t.db.checkOpen(); err != nil {
		return err
	}

	stmt, err := t.db.build.RenameTable(t.schema, t.name, newName)
	if err != nil {
		return err
	}
	exists, err := t.db.cat.TableExists(ctx, t.schema, newName)
	if err != nil {
		return err
	}
	if exists {
		return errs.Newf(errs.ErrKindAlreadyExists, "table %q.%q already exists", t.schema, newName)
	}
	if _, err := t.db.exec(ctx, t.db.conn, "rename_table", t.schema, t.name, stmt); err != nil {
		return err
	}
	t.name = newName
	return nil
}

// RenameColumns applies spec. The spec is checked in full against the
// current columns first, so a bad spec renames nothing. The renames
// themselves run as one statement per column and are not transactional.
func (t *Table) RenameColumns(ctx context.Context, spec RenameSpec) (err error) {
	defer t.db.logFailure("rename_columns", t.schema, t.name, &err)
	if err := t.db.checkOpen(); err != nil {
		return err
	}

	cols, err := t.columns(ctx)
	if err != nil {
		return err
	}
	current := make([]string, len(cols))
	for i, c := range cols {
		current[i] = c.Name
	}

	stmts, err := t.db.build.RenameColumns(t.schema, t.name, current, spec)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := t.db.exec(ctx, t.db.conn, "rename_column", t.schema, t.name, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Delete drops the table. Whether dependent objects block the drop is up to
// the backend.
func (t *Table) Delete(ctx context.Context) (err error) {
	defer t.db.logFailure("drop_table", t.schema, t.name, &err)
	if err := t.db.checkOpen(); err != nil {
		return err
	}

	stmt, err := t.db.build.DropTable(t.schema, t.name)
	if err != nil {
		return err
	}
	_, err = t.db.exec(ctx, t.db.conn, "drop_table", t.schema, t.name, stmt)
	return err
}

// columns fetches the live column list; an empty list means the table is
// gone.
func (t *Table) columns(ctx context.Context) ([]typemap.ColumnSpec, error) {
	cols, err := t.db.cat.ListColumns(ctx, t.schema, t.name)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %q.%q does not exist", t.schema, t.name)
	}
	return cols, nil
}

// project picks the requested columns out of all, in request order. A name
// requested twice is InvalidInput since a frame holds each column once.
func project(all []typemap.ColumnSpec, names []string) ([]typemap.ColumnSpec, error) {
	if len(names) == 0 || (len(names) == 1 && names[0] == "*") {
		return all, nil
	}
	byName := make(map[string]typemap.ColumnSpec, len(all))
	for _, c := range all {
		byName[c.Name] = c
	}
	out := make([]typemap.ColumnSpec, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		c, ok := byName[n]
		if !ok {
			return nil, errs.Newf(errs.ErrKindColumnNotFound, "column %q does not exist", n)
		}
		if seen[n] {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "column %q requested twice", n)
		}
		seen[n] = true
		out[i] = c
	}
	return out, nil
}

// read runs a SELECT of specs and converts the result to a frame typed by
// the catalog.
func (t *Table) read(ctx context.Context, specs []typemap.ColumnSpec, clause string) (*frame.Frame, error) {
	names := make([]string, len(specs))
	for i, c := range specs {
		names[i] = c.Name
	}
	stmt, err := t.db.build.Select(t.schema, t.name, names, clause)
	if err != nil {
		return nil, err
	}
	rs, err := t.db.query(ctx, t.db.conn, "select", t.schema, t.name, stmt)
	if err != nil {
		return nil, err
	}
	return toFrame(specs, rs)
}

func toFrame(specs []typemap.ColumnSpec, rs *database.ResultSet) (*frame.Frame, error) {
	if len(rs.Columns) != len(specs) {
		return nil, errs.Newf(errs.ErrKindQueryFailed,
			"result has %d columns, want %d", len(rs.Columns), len(specs))
	}
	cols := make([]frame.Column, len(specs))
	for j, spec := range specs {
		vals := make([]any, len(rs.Rows))
		for i, row := range rs.Rows {
			v, err := typemap.Normalize(spec.Type, row[j])
			if err != nil {
				return nil, errs.Wrap(errs.KindOf(err), fmt.Sprintf("column %q row %d", spec.Name, i), err)
			}
			vals[i] = v
		}
		cols[j] = frame.Column{Name: spec.Name, Type: typemap.FromDBType(spec.Type), Values: vals}
	}
	return frame.New(cols...)
}
