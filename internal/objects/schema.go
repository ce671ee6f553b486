package objects

import (
	"context"

	"github.com/koustreak/dbframe/internal/catalog"
	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/frame"
)

// Schema is a handle on one schema. It does not own the connection.
type Schema struct {
	db   *Database
	name string
}

// SchemaMeta describes a schema.
type SchemaMeta struct {
	Name   string
	Tables []string
}

// Name is the schema's current name.
func (s *Schema) Name() string { return s.name }

// Meta lists the schema's tables.
func (s *Schema) Meta(ctx context.Context) (_ SchemaMeta, err error) {
	defer s.db.logFailure("schema_meta", s.name, "", &err)
	if err := s.db.checkOpen(); err != nil {
		return SchemaMeta{}, err
	}

	tables, err := s.db.cat.ListTables(ctx, s.name)
	if err != nil {
		return SchemaMeta{}, err
	}
	return SchemaMeta{Name: s.name, Tables: tables}, nil
}

// Table looks up an existing table in the schema. It fails with
// ErrKindNotFound when there is none by that name.
func (s *Schema) Table(ctx context.Context, name string) (_ *Table, err error) {
	defer s.db.logFailure("table", s.name, name, &err)
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}

	exists, err := s.db.cat.TableExists(ctx, s.name, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %q.%q does not exist", s.name, name)
	}
	return &Table{db: s.db, schema: s.name, name: name}, nil
}

// Rename renames the schema and updates the handle. It fails with
// ErrKindAlreadyExists when newName is taken.
//
// Table handles obtained before the rename keep the old schema name.
func (s *Schema) Rename(ctx context.Context, newName string) (err error) {
	defer s.db.logFailure("rename_schema", s.name, "", &err)
	if err := s.db.checkOpen(); err != nil {
		return err
	}

	stmt, err := s.db.build.RenameSchema(s.name, newName)
	if err != nil {
		return err
	}
	exists, err := s.db.cat.SchemaExists(ctx, newName)
	if err != nil {
		return err
	}
	if exists {
		return errs.Newf(errs.ErrKindAlreadyExists, "schema %q already exists", newName)
	}
	if _, err := s.db.exec(ctx, s.db.conn, "rename_schema", s.name, "", stmt); err != nil {
		return err
	}
	s.name = newName
	return nil
}

// Delete drops the schema. Without cascade it fails with
// ErrKindHasDependents while the schema still holds tables or views.
func (s *Schema) Delete(ctx context.Context, cascade bool) (err error) {
	defer s.db.logFailure("drop_schema", s.name, "", &err)
	if err := s.db.checkOpen(); err != nil {
		return err
	}

	stmt, err := s.db.build.DropSchema(s.name, cascade)
	if err != nil {
		return err
	}
	if !cascade {
		// MySQL would drop tables and views anyway, so check up front.
		tables, err := s.db.cat.ListTables(ctx, s.name)
		if err != nil {
			return err
		}
		views, err := s.db.cat.ListViews(ctx, s.name)
		if err != nil {
			return err
		}
		if n := len(tables) + len(views); n > 0 {
			return errs.Newf(errs.ErrKindHasDependents,
				"schema %q still holds %d table(s) and %d view(s)", s.name, len(tables), len(views))
		}
	}
	_, err = s.db.exec(ctx, s.db.conn, "drop_schema", s.name, "", stmt)
	return err
}

// CreateOrReplaceTable stores f as table name: an existing table of that
// name is dropped, a new one is created with columns typed from f, and
// every row of f is loaded.
//
// The three steps are separate statements. If one fails, the earlier ones
// stay applied: the old table may already be gone, or the new one may be
// partly loaded. Use ReplaceTableAtomic to avoid that.
func (s *Schema) CreateOrReplaceTable(ctx context.Context, name string, f *frame.Frame) (_ *Table, err error) {
	defer s.db.logFailure("create_table", s.name, name, &err)
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}

	if err := s.db.replaceTable(ctx, s.db.conn, s.db.cat, s.name, name, f); err != nil {
		return nil, err
	}
	return &Table{db: s.db, schema: s.name, name: name}, nil
}

// ReplaceTableAtomic is CreateOrReplaceTable inside one transaction: either
// the new table with all its rows becomes visible, or nothing changes. It
// fails with ErrKindInvalidInput when the backend cannot run DDL in a
// transaction.
func (s *Schema) ReplaceTableAtomic(ctx context.Context, name string, f *frame.Frame) (_ *Table, err error) {
	defer s.db.logFailure("replace_table_atomic", s.name, name, &err)
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}

	txr, ok := s.db.conn.(database.Transactor)
	if !ok {
		return nil, errs.Newf(errs.ErrKindInvalidInput,
			"%s connection does not support transactional replace", s.db.dialect)
	}

	tx, err := txr.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = s.db.replaceTable(ctx, tx, catalog.New(tx, s.db.dialect), s.name, name, f); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &Table{db: s.db, schema: s.name, name: name}, nil
}
