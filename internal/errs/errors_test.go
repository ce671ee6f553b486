package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "[not_found] schema \"s1\" does not exist",
		New(ErrKindNotFound, `schema "s1" does not exist`).Error())

	cause := errors.New("relation does not exist")
	assert.Equal(t, "[query_failed] select failed: relation does not exist",
		Wrap(ErrKindQueryFailed, "select failed", cause).Error())
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(ErrKindQueryFailed, "exec", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsQueryFailed(err))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		kind ErrKind
		pred func(error) bool
	}{
		{ErrKindNotFound, IsNotFound},
		{ErrKindAlreadyExists, IsAlreadyExists},
		{ErrKindUnsupportedType, IsUnsupportedType},
		{ErrKindColumnCountMismatch, IsColumnCountMismatch},
		{ErrKindColumnNotFound, IsColumnNotFound},
		{ErrKindHasDependents, IsHasDependents},
		{ErrKindQueryFailed, IsQueryFailed},
		{ErrKindConnectionClosed, IsConnectionClosed},
		{ErrKindConnectionFailed, IsConnectionFailed},
		{ErrKindTimeout, IsTimeout},
		{ErrKindInvalidInput, IsInvalidInput},
		{ErrKindPermissionDenied, IsPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.True(t, tt.pred(New(tt.kind, "x")))
			assert.False(t, tt.pred(errors.New("plain")))
			assert.False(t, tt.pred(nil))
		})
	}
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "unknown", ErrKindUnknown.String())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrKindColumnNotFound, "column %q does not exist", "age")
	assert.Equal(t, `[column_not_found] column "age" does not exist`, err.Error())
}
