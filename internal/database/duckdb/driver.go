// Package duckdb is the embedded DuckDB Connection Facade, backed by
// database/sql and duckdb-go. An empty Path opens an in-memory database.
package duckdb

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register "duckdb" driver

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
)

// Driver implements database.DB and database.Transactor for DuckDB.
type Driver struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// New opens a DuckDB database using the provided Config and returns a Driver.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	db, err := sql.Open("duckdb", dataSource(cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to open duckdb", err)
	}

	// An in-memory database lives and dies with its connection, so the
	// pool must never recycle it.
	db.SetMaxOpenConns(int(cfg.PoolSize()))
	db.SetMaxIdleConns(int(cfg.PoolSize()))
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	d := &Driver{db: db, queryTimeout: cfg.QueryTimeout}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// dataSource picks the DSN, falling back to Path.
func dataSource(cfg *database.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return cfg.Path
}

// withTimeout applies the per-statement deadline, if any.
func (d *Driver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.queryTimeout)
}

// --- database.DB implementation ---

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return runQuery(ctx, d, d.db, query, args...)
}

func (d *Driver) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return runExec(ctx, d, d.db, query, args...)
}

// --- database.Transactor implementation ---

// Begin starts a transaction. DuckDB DDL is transactional, so a whole
// drop/create/load sequence can be committed or discarded as one unit.
func (d *Driver) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err, "begin failed")
	}
	return &duckTx{tx: tx, d: d}, nil
}

// --- shared helpers for *sql.DB and *sql.Tx ---

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func runQuery(ctx context.Context, d *Driver, q sqlQuerier, query string, args ...any) (database.Rows, error) {
	ctx, cancel := d.withTimeout(ctx)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, mapError(err, "query failed")
	}
	return &duckRows{rows: rows, cancel: cancel}, nil
}

func runExec(ctx context.Context, d *Driver, q sqlQuerier, query string, args ...any) (int64, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "exec failed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		// DDL reports no row count.
		return 0, nil
	}
	return n, nil
}

// --- sql type wrappers ---

type duckRows struct {
	rows   *sql.Rows
	cancel context.CancelFunc
}

func (r *duckRows) Next() bool                 { return r.rows.Next() }
func (r *duckRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *duckRows) Columns() ([]string, error) { return r.rows.Columns() }

func (r *duckRows) Close() {
	_ = r.rows.Close()
	r.cancel()
}

func (r *duckRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return mapError(err, "row iteration failed")
	}
	return nil
}

type duckTx struct {
	tx *sql.Tx
	d  *Driver
}

func (t *duckTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return runQuery(ctx, t.d, t.tx, query, args...)
}

func (t *duckTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return runExec(ctx, t.d, t.tx, query, args...)
}

func (t *duckTx) Commit(_ context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return mapError(err, "commit failed")
	}
	return nil
}

func (t *duckTx) Rollback(_ context.Context) error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return mapError(err, "rollback failed")
	}
	return nil
}

var (
	_ database.DB         = (*Driver)(nil)
	_ database.Transactor = (*Driver)(nil)
)
