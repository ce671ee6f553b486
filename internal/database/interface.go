package database

import "context"

// Querier is the Connection Facade: the only two calls the object layer
// makes against a backend. Both report backend failures as *errs.Error with
// the backend's own message in the cause chain.
type Querier interface {
	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Exec executes a statement and returns the number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

// DB is a Querier that owns a live connection.
type DB interface {
	Querier

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close()
}

// BulkLoader is implemented by drivers with a native bulk-load path
// (e.g. Postgres COPY). Callers fall back to batched INSERTs without it.
type BulkLoader interface {
	CopyFrom(ctx context.Context, schema, table string, columns []string, rows [][]any) (int64, error)
}

// Transactor is implemented by drivers that can run statements inside an
// explicit transaction.
type Transactor interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an open transaction. Exactly one of Commit or Rollback must be
// called; Rollback after Commit is a no-op.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
