package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/dbframe/internal/errs"
)

// PostgreSQL SQLSTATE codes that get a dedicated kind.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrDependentObjects      = "2BP01"
	pgErrInsufficientPrivilege = "42501"
	pgClassConnection          = "08"
	pgClassAuth                = "28"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
// Server-side rejections keep the server's message and stay QueryFailed
// unless the SQLSTATE says otherwise.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classifySQLState(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classifySQLState(code string) errs.ErrKind {
	switch {
	case code == pgErrDependentObjects:
		return errs.ErrKindHasDependents
	case code == pgErrInsufficientPrivilege, strings.HasPrefix(code, pgClassAuth):
		return errs.ErrKindPermissionDenied
	case strings.HasPrefix(code, pgClassConnection):
		return errs.ErrKindConnectionFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
