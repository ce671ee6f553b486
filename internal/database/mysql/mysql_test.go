package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"no rows", sql.ErrNoRows, errs.ErrKindNotFound},
		{"access denied", &gomysql.MySQLError{Number: 1045, Message: "Access denied"}, errs.ErrKindPermissionDenied},
		{"too many connections", &gomysql.MySQLError{Number: 1040, Message: "Too many connections"}, errs.ErrKindConnectionFailed},
		{"fk blocks drop", &gomysql.MySQLError{Number: 3730, Message: "Cannot drop table referenced by a foreign key"}, errs.ErrKindHasDependents},
		{"syntax", &gomysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"}, errs.ErrKindQueryFailed},
		{"unknown table", &gomysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, errs.ErrKindQueryFailed},
		{"network", errors.New("dial tcp: refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
	assert.Nil(t, mapError(nil, "op"))
}

func TestBuildDSN_FromParams(t *testing.T) {
	dsn, err := BuildDSN(&database.Config{
		Host:           "db.local",
		User:           "app",
		Password:       "secret",
		Database:       "warehouse",
		ConnectTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	mc, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", mc.User)
	assert.Equal(t, "secret", mc.Passwd)
	assert.Equal(t, "db.local:3306", mc.Addr)
	assert.Equal(t, "warehouse", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.False(t, mc.MultiStatements)
	assert.Equal(t, 2*time.Second, mc.Timeout)
}

func TestBuildDSN_ForcesParseTime(t *testing.T) {
	dsn, err := BuildDSN(&database.Config{DSN: "app:pw@tcp(h:3307)/db?multiStatements=true"})
	require.NoError(t, err)

	mc, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, mc.ParseTime)
	assert.False(t, mc.MultiStatements)
	assert.Equal(t, "h:3307", mc.Addr)
}

func TestBuildDSN_Invalid(t *testing.T) {
	_, err := BuildDSN(&database.Config{DSN: "not a dsn"})
	assert.True(t, errs.IsConnectionFailed(err))
}
