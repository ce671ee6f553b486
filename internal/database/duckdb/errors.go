package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/duckdb/duckdb-go/v2"

	"github.com/koustreak/dbframe/internal/errs"
)

// mapError translates duckdb-go errors into *errs.Error. DuckDB runs
// in-process, so anything that is not a typed engine error is a failure to
// open or use the database file.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var duckErr *duckdb.Error
	if errors.As(err, &duckErr) {
		return errs.Wrap(classifyErrorType(duckErr), msg+": "+duckErr.Msg, err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classifyErrorType(e *duckdb.Error) errs.ErrKind {
	switch e.Type {
	case duckdb.ErrorTypeDependency:
		return errs.ErrKindHasDependents
	case duckdb.ErrorTypePermission:
		return errs.ErrKindPermissionDenied
	case duckdb.ErrorTypeInterrupt:
		return errs.ErrKindTimeout
	}
	// Dependency failures are sometimes reported as catalog errors.
	if strings.Contains(e.Msg, "depend on") {
		return errs.ErrKindHasDependents
	}
	return errs.ErrKindQueryFailed
}
