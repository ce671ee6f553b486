// Package sqlbuild assembles DDL and DML statements for the object layer.
//
// Builders are pure: they validate identifiers structurally and quote them
// for the target dialect, but never consult the live database. Existence
// checks belong to the catalog.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/koustreak/dbframe/internal/dialect"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/typemap"
)

// Builder builds statements for one dialect.
type Builder struct {
	d dialect.Dialect
}

// New returns a Builder for d.
func New(d dialect.Dialect) Builder {
	return Builder{d: d}
}

// Dialect is the dialect statements are built for.
func (b Builder) Dialect() dialect.Dialect { return b.d }

// CreateSchema returns: CREATE SCHEMA "name".
func (b Builder) CreateSchema(name string) (string, error) {
	if err := b.ValidateIdentifier("schema", name); err != nil {
		return "", err
	}
	return "CREATE SCHEMA " + b.d.Quote(name), nil
}

// RenameSchema returns: ALTER SCHEMA "old" RENAME TO "new".
func (b Builder) RenameSchema(oldName, newName string) (string, error) {
	if !b.d.SupportsSchemaRename() {
		return "", errs.Newf(errs.ErrKindInvalidInput, "renaming a schema is not supported by %s", b.d)
	}
	if err := b.ValidateIdentifier("schema", oldName); err != nil {
		return "", err
	}
	if err := b.ValidateIdentifier("schema", newName); err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER SCHEMA %s RENAME TO %s", b.d.Quote(oldName), b.d.Quote(newName)), nil
}

// DropSchema returns: DROP SCHEMA "name" [CASCADE].
//
// MySQL has no CASCADE keyword; dropping a MySQL schema always removes its
// tables, so the caller must enforce cascade=false itself.
func (b Builder) DropSchema(name string, cascade bool) (string, error) {
	if err := b.ValidateIdentifier("schema", name); err != nil {
		return "", err
	}
	stmt := "DROP SCHEMA " + b.d.Quote(name)
	if cascade && b.d.SupportsCascade() {
		stmt += " CASCADE"
	}
	return stmt, nil
}

// CreateTable returns: CREATE TABLE "schema"."table" ("c1" TYPE1, ...).
func (b Builder) CreateTable(schema, table string, columns []typemap.ColumnSpec) (string, error) {
	if err := b.validateTable(schema, table); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", errs.New(errs.ErrKindInvalidInput, "at least one column is required")
	}

	seen := make(map[string]bool, len(columns))
	defs := make([]string, len(columns))
	for i, c := range columns {
		if err := b.ValidateIdentifier("column", c.Name); err != nil {
			return "", err
		}
		if seen[c.Name] {
			return "", errs.Newf(errs.ErrKindInvalidInput, "duplicate column %q", c.Name)
		}
		seen[c.Name] = true

		typ, err := typemap.SQLType(c.Type, b.d)
		if err != nil {
			return "", err
		}
		defs[i] = b.d.Quote(c.Name) + " " + typ
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", b.d.Qualified(schema, table), strings.Join(defs, ", ")), nil
}

// RenameTable returns: ALTER TABLE "schema"."old" RENAME TO "new"
// (RENAME TABLE `schema`.`old` TO `schema`.`new` on MySQL).
func (b Builder) RenameTable(schema, oldName, newName string) (string, error) {
	if err := b.validateTable(schema, oldName); err != nil {
		return "", err
	}
	if err := b.ValidateIdentifier("table", newName); err != nil {
		return "", err
	}
	if b.d == dialect.MySQL {
		return fmt.Sprintf("RENAME TABLE %s TO %s",
			b.d.Qualified(schema, oldName), b.d.Qualified(schema, newName)), nil
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", b.d.Qualified(schema, oldName), b.d.Quote(newName)), nil
}

// DropTable returns: DROP TABLE "schema"."table".
func (b Builder) DropTable(schema, table string) (string, error) {
	if err := b.validateTable(schema, table); err != nil {
		return "", err
	}
	return "DROP TABLE " + b.d.Qualified(schema, table), nil
}

// RenameColumn returns: ALTER TABLE "schema"."table" RENAME COLUMN "old" TO "new".
func (b Builder) RenameColumn(schema, table, oldName, newName string) (string, error) {
	if err := b.validateTable(schema, table); err != nil {
		return "", err
	}
	if err := b.ValidateIdentifier("column", oldName); err != nil {
		return "", err
	}
	if err := b.ValidateIdentifier("column", newName); err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		b.d.Qualified(schema, table), b.d.Quote(oldName), b.d.Quote(newName)), nil
}

// Select returns: SELECT "c1", "c2" FROM "schema"."table" [clause].
//
// An empty columns list, or the single entry "*", projects every column.
// clause is appended verbatim; it is not parsed or validated.
func (b Builder) Select(schema, table string, columns []string, clause string) (string, error) {
	if err := b.validateTable(schema, table); err != nil {
		return "", err
	}

	projection := "*"
	if len(columns) > 0 && !(len(columns) == 1 && columns[0] == "*") {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			if err := b.ValidateIdentifier("column", c); err != nil {
				return "", err
			}
			quoted[i] = b.d.Quote(c)
		}
		projection = strings.Join(quoted, ", ")
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", projection, b.d.Qualified(schema, table))
	if clause = strings.TrimSpace(clause); clause != "" {
		stmt += " " + clause
	}
	return stmt, nil
}

// Insert returns a multi-row parameterised INSERT for rows rows of columns:
// INSERT INTO "schema"."table" ("a", "b") VALUES ($1, $2), ($3, $4).
// Arguments are bound row-major.
func (b Builder) Insert(schema, table string, columns []string, rows int) (string, error) {
	if err := b.validateTable(schema, table); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", errs.New(errs.ErrKindInvalidInput, "at least one column is required")
	}
	if rows < 1 {
		return "", errs.New(errs.ErrKindInvalidInput, "at least one row is required")
	}
	if n := len(columns) * rows; n > b.d.MaxParams() {
		return "", errs.Newf(errs.ErrKindInvalidInput,
			"%d parameters exceed the %s limit of %d", n, b.d, b.d.MaxParams())
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		if err := b.ValidateIdentifier("column", c); err != nil {
			return "", err
		}
		quoted[i] = b.d.Quote(c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", b.d.Qualified(schema, table), strings.Join(quoted, ", "))
	idx := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(b.d.Placeholder(idx))
			idx++
		}
		sb.WriteByte(')')
	}
	return sb.String(), nil
}

// RowsPerInsert is how many rows of width columns fit in one Insert.
func (b Builder) RowsPerInsert(columns int) int {
	if columns < 1 {
		return 1
	}
	return max(1, b.d.MaxParams()/columns)
}

func (b Builder) validateTable(schema, table string) error {
	if err := b.ValidateIdentifier("schema", schema); err != nil {
		return err
	}
	return b.ValidateIdentifier("table", table)
}
