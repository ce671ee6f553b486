// Package dbtest provides an in-memory database for tests.
//
// DB implements database.DB, database.BulkLoader and database.Transactor.
// It understands exactly the Postgres-dialect statements the statement
// builder and the catalog produce, records every statement it receives, and
// can be told to fail chosen statements.
package dbtest

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
)

// DB is an in-memory database. The zero value is not usable; call New.
type DB struct {
	mu       sync.Mutex
	st       *state
	log      []string
	failures []failure
	closed   bool
}

type failure struct {
	substr string
	err    error
}

// New returns an empty database holding the given schemas. With no
// arguments it holds only "public".
func New(schemas ...string) *DB {
	if len(schemas) == 0 {
		schemas = []string{"public"}
	}
	return &DB{st: newState(schemas...)}
}

// Statements returns every statement received so far, in order.
func (f *DB) Statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

// StatementsMatching returns the recorded statements containing substr.
func (f *DB) StatementsMatching(substr string) []string {
	var out []string
	for _, s := range f.Statements() {
		if strings.Contains(s, substr) {
			out = append(out, s)
		}
	}
	return out
}

// ResetStatements clears the statement log.
func (f *DB) ResetStatements() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = nil
}

// FailOn makes the next statement containing substr fail with err without
// being applied.
func (f *DB) FailOn(substr string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, failure{substr: substr, err: err})
}

// Plain hides the bulk-load and transaction capabilities, so callers take
// their generic paths.
func (f *DB) Plain() database.DB {
	return plainDB{f}
}

type plainDB struct{ f *DB }

func (p plainDB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	return p.f.Query(ctx, sql, args...)
}

func (p plainDB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return p.f.Exec(ctx, sql, args...)
}

func (p plainDB) Ping(ctx context.Context) error { return p.f.Ping(ctx) }
func (p plainDB) Close()                         { p.f.Close() }

// --- database.DB implementation ---

func (f *DB) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errClosed
	}
	return nil
}

func (f *DB) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// Closed reports whether Close has been called.
func (f *DB) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *DB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query(ctx, f.st, sql, args)
}

func (f *DB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exec(ctx, f.st, sql, args)
}

// CopyFrom appends rows directly, the way COPY does.
func (f *DB) CopyFrom(ctx context.Context, schema, table string, columns []string, rows [][]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyFrom(ctx, f.st, schema, table, columns, rows)
}

// Begin starts a transaction over a private copy of the database.
func (f *DB) Begin(ctx context.Context) (database.Tx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx, "BEGIN"); err != nil {
		return nil, err
	}
	return &Tx{f: f, st: f.st.clone()}, nil
}

var errClosed = errs.New(errs.ErrKindConnectionClosed, "dbtest: database is closed")

// check records sql and applies closed state, context and injected failures.
// f.mu must be held.
func (f *DB) check(ctx context.Context, sql string) error {
	if f.closed {
		return errClosed
	}
	f.log = append(f.log, sql)
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.ErrKindTimeout, "dbtest: context done", err)
	}
	for i, fl := range f.failures {
		if strings.Contains(sql, fl.substr) {
			f.failures = append(f.failures[:i], f.failures[i+1:]...)
			return fl.err
		}
	}
	return nil
}

func (f *DB) query(ctx context.Context, st *state, sql string, args []any) (database.Rows, error) {
	if err := f.check(ctx, sql); err != nil {
		return nil, err
	}
	res, _, err := st.run(sql, args)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &result{}
	}
	return &rows{res: res, pos: -1}, nil
}

func (f *DB) exec(ctx context.Context, st *state, sql string, args []any) (int64, error) {
	if err := f.check(ctx, sql); err != nil {
		return 0, err
	}
	_, n, err := st.run(sql, args)
	return n, err
}

func (f *DB) copyFrom(ctx context.Context, st *state, schema, name string, columns []string, data [][]any) (int64, error) {
	if err := f.check(ctx, fmt.Sprintf("COPY %q.%q (%s) FROM STDIN", schema, name, strings.Join(columns, ", "))); err != nil {
		return 0, err
	}
	t, err := st.table(schema, name)
	if err != nil {
		return 0, err
	}
	targets := make([]int, len(columns))
	for k, col := range columns {
		if targets[k] = t.index(col); targets[k] < 0 {
			return 0, errs.Newf(errs.ErrKindQueryFailed, "dbtest: column %q does not exist", col)
		}
	}
	for _, in := range data {
		if len(in) != len(columns) {
			return 0, errs.Newf(errs.ErrKindQueryFailed, "dbtest: row has %d values, want %d", len(in), len(columns))
		}
	}
	for _, in := range data {
		row := make([]any, len(t.columns))
		for k, i := range targets {
			row[i] = in[k]
		}
		t.rows = append(t.rows, row)
	}
	return int64(len(data)), nil
}

// --- transactions ---

// Tx is a transaction on DB. Its statements are logged on the parent DB.
type Tx struct {
	f    *DB
	st   *state
	done bool
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.done {
		return nil, errTxDone
	}
	return t.f.query(ctx, t.st, sql, args)
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.done {
		return 0, errTxDone
	}
	return t.f.exec(ctx, t.st, sql, args)
}

func (t *Tx) CopyFrom(ctx context.Context, schema, table string, columns []string, rows [][]any) (int64, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.done {
		return 0, errTxDone
	}
	return t.f.copyFrom(ctx, t.st, schema, table, columns, rows)
}

func (t *Tx) Commit(ctx context.Context) error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.done {
		return errTxDone
	}
	if err := t.f.check(ctx, "COMMIT"); err != nil {
		return err
	}
	t.done = true
	t.f.st = t.st
	return nil
}

func (t *Tx) Rollback(_ context.Context) error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.f.log = append(t.f.log, "ROLLBACK")
	return nil
}

var errTxDone = errs.New(errs.ErrKindQueryFailed, "dbtest: transaction already finished")

// --- result rows ---

type rows struct {
	res *result
	pos int
}

func (r *rows) Next() bool {
	r.pos++
	return r.pos < len(r.res.rows)
}

func (r *rows) Columns() ([]string, error) { return r.res.columns, nil }
func (r *rows) Close()                     {}
func (r *rows) Err() error                 { return nil }

// Scan assigns the current row into dest. *any receives the stored value;
// other pointers must be assignable from it.
func (r *rows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.res.rows) {
		return errs.New(errs.ErrKindQueryFailed, "dbtest: scan called without a current row")
	}
	row := r.res.rows[r.pos]
	if len(dest) != len(row) {
		return errs.Newf(errs.ErrKindQueryFailed, "dbtest: scan got %d destinations, want %d", len(dest), len(row))
	}
	for i, d := range dest {
		if p, ok := d.(*any); ok {
			*p = row[i]
			continue
		}
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return errs.Newf(errs.ErrKindQueryFailed, "dbtest: destination %d is not a pointer", i)
		}
		if row[i] == nil {
			dv.Elem().Set(reflect.Zero(dv.Elem().Type()))
			continue
		}
		sv := reflect.ValueOf(row[i])
		if !sv.Type().AssignableTo(dv.Elem().Type()) {
			return errs.Newf(errs.ErrKindQueryFailed, "dbtest: cannot scan %T into %s", row[i], dv.Elem().Type())
		}
		dv.Elem().Set(sv)
	}
	return nil
}

var (
	_ database.DB         = (*DB)(nil)
	_ database.BulkLoader = (*DB)(nil)
	_ database.Transactor = (*DB)(nil)
	_ database.Tx         = (*Tx)(nil)
	_ database.BulkLoader = (*Tx)(nil)
)
