package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/logger"
)

// runCLI executes one command against the DuckDB file at dbPath and returns
// what it printed on stdout.
func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&app{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--driver=duckdb", "--dsn="+dbPath))
	err := cmd.Execute()
	return out.String(), err
}

func newDuckFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cli.duckdb")
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCLI_SchemaLifecycle(t *testing.T) {
	db := newDuckFile(t)

	out, err := runCLI(t, db, "schema", "create", "sales")
	require.NoError(t, err)
	assert.Equal(t, "created schema sales\n", out)

	out, err = runCLI(t, db, "schemas")
	require.NoError(t, err)
	assert.Contains(t, out, "sales\n")

	_, err = runCLI(t, db, "schema", "create", "sales")
	assert.True(t, errs.IsAlreadyExists(err))

	out, err = runCLI(t, db, "schema", "drop", "sales")
	require.NoError(t, err)
	assert.Equal(t, "dropped schema sales\n", out)

	_, err = runCLI(t, db, "tables", "sales")
	assert.True(t, errs.IsNotFound(err))
}

func TestCLI_ImportSelectExport(t *testing.T) {
	db := newDuckFile(t)
	_, err := runCLI(t, db, "schema", "create", "sales")
	require.NoError(t, err)

	in := writeCSV(t, "id,name\n1,alice\n2,bob\n")
	out, err := runCLI(t, db, "import", "sales", "people", "--file", in)
	require.NoError(t, err)
	assert.Equal(t, "loaded 2 rows into sales.people\n", out)

	out, err = runCLI(t, db, "tables", "sales")
	require.NoError(t, err)
	assert.Equal(t, "people\n", out)

	out, err = runCLI(t, db, "describe", "sales", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "BIGINT")
	assert.Contains(t, out, "VARCHAR")

	out, err = runCLI(t, db, "select", "sales", "people")
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,alice\n2,bob\n", out)

	out, err = runCLI(t, db, "select", "sales", "people", "--where", "id > 1")
	require.NoError(t, err)
	assert.Equal(t, "id,name\n2,bob\n", out)

	out, err = runCLI(t, db, "select", "sales", "people", "--columns", "name")
	require.NoError(t, err)
	assert.Equal(t, "name\nalice\nbob\n", out)

	_, err = runCLI(t, db, "select", "sales", "people", "--columns", "nope")
	assert.True(t, errs.IsColumnNotFound(err))

	dst := filepath.Join(t.TempDir(), "out.csv")
	out, err = runCLI(t, db, "export", "sales", "people", "--file", dst, "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "exported 1 rows to "+dst+"\n", out)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,alice\n", string(data))
}

func TestCLI_ImportAtomicReplaces(t *testing.T) {
	db := newDuckFile(t)
	_, err := runCLI(t, db, "schema", "create", "sales")
	require.NoError(t, err)

	_, err = runCLI(t, db, "import", "sales", "t", "--file", writeCSV(t, "a\n1\n"))
	require.NoError(t, err)
	_, err = runCLI(t, db, "import", "sales", "t", "--atomic", "--file", writeCSV(t, "b,c\nx,true\n"))
	require.NoError(t, err)

	out, err := runCLI(t, db, "select", "sales", "t")
	require.NoError(t, err)
	assert.Equal(t, "b,c\nx,true\n", out)
}

func TestCLI_TableAndColumnRenames(t *testing.T) {
	db := newDuckFile(t)
	_, err := runCLI(t, db, "schema", "create", "sales")
	require.NoError(t, err)
	_, err = runCLI(t, db, "import", "sales", "people", "--file", writeCSV(t, "id,name\n1,alice\n"))
	require.NoError(t, err)

	out, err := runCLI(t, db, "columns", "rename", "sales", "people", "id=person_id")
	require.NoError(t, err)
	assert.Contains(t, out, "person_id")

	_, err = runCLI(t, db, "columns", "rename", "sales", "people", "--all", "name,person_id")
	require.NoError(t, err)
	out, err = runCLI(t, db, "select", "sales", "people")
	require.NoError(t, err)
	assert.Equal(t, "name,person_id\n1,alice\n", out)

	_, err = runCLI(t, db, "columns", "rename", "sales", "people", "--all", "only_one")
	assert.True(t, errs.IsColumnCountMismatch(err))

	out, err = runCLI(t, db, "table", "rename", "sales", "people", "customers")
	require.NoError(t, err)
	assert.Equal(t, "renamed table sales.people to customers\n", out)

	_, err = runCLI(t, db, "schema", "drop", "sales")
	assert.True(t, errs.IsHasDependents(err))

	_, err = runCLI(t, db, "table", "drop", "sales", "customers")
	require.NoError(t, err)
	_, err = runCLI(t, db, "schema", "drop", "sales")
	require.NoError(t, err)
}

func TestCLI_FlagValidation(t *testing.T) {
	db := newDuckFile(t)

	tests := []struct {
		name string
		args []string
	}{
		{"import needs a source", []string{"import", "s", "t"}},
		{"file and object exclusive", []string{"import", "s", "t", "--file", "a.csv", "--object", "b/k"}},
		{"columns and where exclusive", []string{"select", "s", "t", "--columns", "a", "--where", "a > 1"}},
		{"schemas takes no args", []string{"schemas", "extra"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCLI(t, db, tc.args...)
			require.Error(t, err)
		})
	}
}

func TestCLI_ObjectStoreNotConfigured(t *testing.T) {
	t.Setenv("DBFRAME_S3_ENDPOINT", "")
	db := newDuckFile(t)
	_, err := runCLI(t, db, "import", "s", "t", "--object", "raw/in.csv")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestReport(t *testing.T) {
	var stderr bytes.Buffer
	(&app{}).report(errs.New(errs.ErrKindInvalidInput, "bad flag"), &stderr)
	assert.Equal(t, "Error: [invalid_input] bad flag\n", stderr.String())

	var logs bytes.Buffer
	a := &app{log: logger.New(&logger.Config{Level: "info", Format: "json", Output: &logs})}
	stderr.Reset()
	a.report(errs.New(errs.ErrKindNotFound, `schema "x" does not exist`), &stderr)
	assert.Empty(t, stderr.String())
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), `"message":"command failed"`)
	assert.Contains(t, logs.String(), `"kind":"not_found"`)
}

func TestRenameSpec(t *testing.T) {
	_, err := renameSpec([]string{"a"}, []string{"b=c"})
	assert.True(t, errs.IsInvalidInput(err))

	_, err = renameSpec(nil, nil)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = renameSpec(nil, []string{"novalue"})
	assert.True(t, errs.IsInvalidInput(err))

	spec, err := renameSpec(nil, []string{"a=b"})
	require.NoError(t, err)
	assert.NotNil(t, spec)
}
