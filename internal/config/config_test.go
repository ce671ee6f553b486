package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbframe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
database:
  driver: postgres
  host: db.local
  port: 6543
  user: app
  database: warehouse
  query_timeout: 5s
log:
  level: debug
  format: json
filestore:
  endpoint: localhost:9000
  access_key: minio
  secret_key: minio123
  default_bucket: lake
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, database.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, int32(1), cfg.Database.MaxConns, "default kept")
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout, "default kept")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "lake", cfg.FileStore.DefaultBucket)
	assert.True(t, cfg.FileStore.Enabled())
	require.NoError(t, cfg.Database.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "database:\n  driver: postgres\n  host: from-file\n")
	t.Setenv("DBFRAME_HOST", "from-env")
	t.Setenv("DBFRAME_PORT", "15432")
	t.Setenv("DBFRAME_LOG_LEVEL", "warn")
	t.Setenv("DBFRAME_S3_USE_SSL", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, 15432, cfg.Database.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.FileStore.UseSSL)
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(missing)
	assert.True(t, errs.IsNotFound(err))

	t.Setenv("DBFRAME_DRIVER", "duckdb")
	cfg, err := Load(missing)
	require.NoError(t, err)
	assert.Equal(t, database.DriverDuckDB, cfg.Database.Driver)
}

func TestLoad_NoPath(t *testing.T) {
	t.Setenv("DBFRAME_DSN", "postgres://u@h/db")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u@h/db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.FileStore.Enabled())
}

func TestLoad_BadValues(t *testing.T) {
	_, err := Load(writeFile(t, "database: [not, a, map]\n"))
	assert.True(t, errs.IsInvalidInput(err))

	t.Setenv("DBFRAME_PORT", "abc")
	_, err = Load("")
	assert.True(t, errs.IsInvalidInput(err))
}
