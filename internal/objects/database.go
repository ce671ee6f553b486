// Package objects is the object model over a relational database:
// Database → Schema → Table handles that turn method calls into catalog
// lookups and built statements.
//
// Handles are views, not caches. A Schema or Table is checked against the
// catalog when it is looked up and is not revalidated afterwards; an object
// dropped by another session surfaces as a database error on the next call.
//
// A Database owns one connection and is meant for one goroutine at a time.
// Multi-statement operations (CreateOrReplaceTable, RenameColumns) are not
// transactional: a failure part-way leaves the statements already run in
// place. Schema.ReplaceTableAtomic is the transactional alternative where
// the backend supports it.
package objects

import (
	"context"
	"sync/atomic"

	"github.com/koustreak/dbframe/internal/catalog"
	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/dialect"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/logger"
	"github.com/koustreak/dbframe/internal/sqlbuild"
)

// Database is the top-level handle. It owns its connection.
type Database struct {
	conn    database.DB
	dialect dialect.Dialect
	build   sqlbuild.Builder
	cat     *catalog.Catalog
	log     *logger.Logger
	closed  atomic.Bool
}

// New wraps an open connection. A nil log discards output.
func New(conn database.DB, d dialect.Dialect, log *logger.Logger) *Database {
	if log == nil {
		log = logger.Nop()
	}
	return &Database{
		conn:    conn,
		dialect: d,
		build:   sqlbuild.New(d),
		cat:     catalog.New(conn, d),
		log:     log.With().Str("dialect", d.String()).Logger(),
	}
}

// Dialect is the SQL dialect of the connection.
func (db *Database) Dialect() dialect.Dialect { return db.dialect }

// Closed reports whether Close has been called.
func (db *Database) Closed() bool { return db.closed.Load() }

// Close releases the connection. Calling it again is a no-op. Every Schema
// and Table obtained from db stops working.
func (db *Database) Close() {
	if db.closed.Swap(true) {
		return
	}
	db.conn.Close()
	db.log.Debug("connection closed")
}

// Meta lists the schemas in the database.
func (db *Database) Meta(ctx context.Context) (_ []string, err error) {
	defer db.logFailure("meta", "", "", &err)
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	return db.cat.ListSchemas(ctx)
}

// CreateSchema creates a schema and returns its handle. It fails with
// ErrKindAlreadyExists when the name is taken.
func (db *Database) CreateSchema(ctx context.Context, name string) (_ *Schema, err error) {
	defer db.logFailure("create_schema", name, "", &err)
	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	stmt, err := db.build.CreateSchema(name)
	if err != nil {
		return nil, err
	}
	exists, err := db.cat.SchemaExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Newf(errs.ErrKindAlreadyExists, "schema %q already exists", name)
	}
	if _, err := db.exec(ctx, db.conn, "create_schema", name, "", stmt); err != nil {
		return nil, err
	}
	return &Schema{db: db, name: name}, nil
}

// Schema looks up an existing schema. It fails with ErrKindNotFound when
// there is none by that name.
func (db *Database) Schema(ctx context.Context, name string) (_ *Schema, err error) {
	defer db.logFailure("schema", name, "", &err)
	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	exists, err := db.cat.SchemaExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.Newf(errs.ErrKindNotFound, "schema %q does not exist", name)
	}
	return &Schema{db: db, name: name}, nil
}

func (db *Database) checkOpen() error {
	if db.closed.Load() {
		return errs.New(errs.ErrKindConnectionClosed, "database handle is closed")
	}
	return nil
}

// exec runs one statement on q and logs it.
func (db *Database) exec(ctx context.Context, q database.Querier, op, schema, table, stmt string, args ...any) (int64, error) {
	db.log.DebugWith(stmt, map[string]any{
		"op":     op,
		"schema": schema,
		"table":  table,
		"args":   len(args),
	})
	return q.Exec(ctx, stmt, args...)
}

// query runs one row-returning statement on q and logs it.
func (db *Database) query(ctx context.Context, q database.Querier, op, schema, table, stmt string) (*database.ResultSet, error) {
	db.log.DebugWith(stmt, map[string]any{
		"op":     op,
		"schema": schema,
		"table":  table,
	})
	return database.QueryAll(ctx, q, stmt)
}

// logFailure is deferred by every public method so each error is logged
// once, where it leaves the package.
func (db *Database) logFailure(op, schema, table string, err *error) {
	if *err == nil {
		return
	}
	db.log.WarnWith(op+" failed", *err, map[string]any{
		"op":     op,
		"schema": schema,
		"table":  table,
		"kind":   errs.KindOf(*err).String(),
	})
}
