// Package errs provides the unified error type used across dbframe.
//
// Every layer (drivers, catalog, statement builder, object model) wraps its
// failures into *errs.Error before returning them. Callers use the Is*
// predicates to branch on the failure without importing driver packages.
//
// Usage:
//
//	// In a driver, wrap native errors:
//	return errs.Wrap(errs.ErrKindQueryFailed, "exec failed", pgErr)
//
//	// In a caller, check the kind:
//	if errs.IsNotFound(err) {
//	    ...
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing backend-specific codes.
type ErrKind int

const (
	ErrKindUnknown             ErrKind = iota
	ErrKindNotFound                    // schema or table name does not exist
	ErrKindAlreadyExists               // create/rename collides with a live name
	ErrKindUnsupportedType             // native column kind has no database type
	ErrKindColumnCountMismatch         // full rename list length != column count
	ErrKindColumnNotFound              // projection or rename names an unknown column
	ErrKindHasDependents               // drop blocked by dependent objects
	ErrKindQueryFailed                 // backend rejected the statement
	ErrKindConnectionClosed            // handle used after Close
	ErrKindConnectionFailed            // cannot reach or authenticate to the backend
	ErrKindTimeout                     // context deadline / cancellation
	ErrKindInvalidInput                // structurally bad arguments from the caller
	ErrKindPermissionDenied            // access denied
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindAlreadyExists:
		return "already_exists"
	case ErrKindUnsupportedType:
		return "unsupported_type"
	case ErrKindColumnCountMismatch:
		return "column_count_mismatch"
	case ErrKindColumnNotFound:
		return "column_not_found"
	case ErrKindHasDependents:
		return "has_dependents"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindConnectionClosed:
		return "connection_closed"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all dbframe packages.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original backend error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err is a failed schema or table lookup.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsAlreadyExists reports whether err is a name collision on create or rename.
func IsAlreadyExists(err error) bool {
	return KindOf(err) == ErrKindAlreadyExists
}

// IsUnsupportedType reports whether a column kind could not be mapped.
func IsUnsupportedType(err error) bool {
	return KindOf(err) == ErrKindUnsupportedType
}

// IsColumnCountMismatch reports whether a full rename list had the wrong length.
func IsColumnCountMismatch(err error) bool {
	return KindOf(err) == ErrKindColumnCountMismatch
}

// IsColumnNotFound reports whether a projection or rename named an unknown column.
func IsColumnNotFound(err error) bool {
	return KindOf(err) == ErrKindColumnNotFound
}

// IsHasDependents reports whether a drop was blocked by dependent objects.
func IsHasDependents(err error) bool {
	return KindOf(err) == ErrKindHasDependents
}

// IsQueryFailed reports whether the backend itself rejected a statement.
// The backend's native message is kept in the cause chain.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsConnectionClosed reports whether a handle was used after Close.
func IsConnectionClosed(err error) bool {
	return KindOf(err) == ErrKindConnectionClosed
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// KindOf extracts the ErrKind from the first *Error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
