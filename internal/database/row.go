package database

import (
	"context"

	"github.com/koustreak/dbframe/internal/errs"
)

// ResultSet is a fully read query result: ordered column names and
// row-major values as the driver produced them.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// ScanAll reads every row from rows into a ResultSet.
//
// The returned Rows slice is always non-nil (empty on zero rows).
// ScanAll always closes rows; callers do not need to call Close().
func ScanAll(rows Rows) (*ResultSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	rs := &ResultSet{Columns: columns, Rows: make([][]any, 0)}
	for rows.Next() {
		// Allocate scan targets as *any so the driver can write any type.
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}
		rs.Rows = append(rs.Rows, dest)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}
	return rs, nil
}

// QueryAll runs sql on q and reads the full result.
func QueryAll(ctx context.Context, q Querier, sql string, args ...any) (*ResultSet, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return ScanAll(rows)
}

// QueryStrings runs a single-column query and returns its values as strings.
func QueryStrings(ctx context.Context, q Querier, sql string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan value", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}
	return list, nil
}
