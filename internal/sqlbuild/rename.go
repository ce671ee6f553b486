package sqlbuild

import (
	"fmt"

	"github.com/koustreak/dbframe/internal/errs"
)

// ColumnRename is one old → new column name pair.
type ColumnRename struct {
	Old string
	New string
}

// RenameSpec describes a column rename. Build one with FullRename or
// PartialRename.
type RenameSpec interface {
	// resolve checks the spec against the table's current columns and
	// returns the renames that actually change a name.
	resolve(current []string) ([]ColumnRename, error)
}

type fullRename struct {
	names []string
}

type partialRename struct {
	pairs []ColumnRename
}

// FullRename replaces every column name, in table order. The number of names
// must equal the table's column count.
func FullRename(names ...string) RenameSpec {
	return fullRename{names: append([]string(nil), names...)}
}

// PartialRename renames only the listed columns. Every Old must exist.
func PartialRename(pairs ...ColumnRename) RenameSpec {
	return partialRename{pairs: append([]ColumnRename(nil), pairs...)}
}

func (r fullRename) resolve(current []string) ([]ColumnRename, error) {
	if len(r.names) != len(current) {
		return nil, errs.Newf(errs.ErrKindColumnCountMismatch,
			"got %d column names, table has %d columns", len(r.names), len(current))
	}
	var out []ColumnRename
	for i, name := range r.names {
		if name != current[i] {
			out = append(out, ColumnRename{Old: current[i], New: name})
		}
	}
	return out, checkFinalNames(current, out)
}

func (r partialRename) resolve(current []string) ([]ColumnRename, error) {
	if len(r.pairs) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "no columns to rename")
	}
	exists := make(map[string]bool, len(current))
	for _, c := range current {
		exists[c] = true
	}

	seen := make(map[string]bool, len(r.pairs))
	var out []ColumnRename
	for _, p := range r.pairs {
		if !exists[p.Old] {
			return nil, errs.Newf(errs.ErrKindColumnNotFound, "column %q does not exist", p.Old)
		}
		if seen[p.Old] {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "column %q is renamed twice", p.Old)
		}
		seen[p.Old] = true
		if p.New != p.Old {
			out = append(out, p)
		}
	}
	return out, checkFinalNames(current, out)
}

// checkFinalNames rejects renames that would leave two columns with the
// same name.
func checkFinalNames(current []string, renames []ColumnRename) error {
	to := make(map[string]string, len(renames))
	for _, r := range renames {
		to[r.Old] = r.New
	}
	final := make(map[string]bool, len(current))
	for _, c := range current {
		name := c
		if n, ok := to[c]; ok {
			name = n
		}
		if final[name] {
			return errs.Newf(errs.ErrKindAlreadyExists, "column %q would appear twice after rename", name)
		}
		final[name] = true
	}
	return nil
}

// RenameColumns resolves spec against the current column names and returns
// the ALTER statements to run, in order. An all-identity spec yields no
// statements.
//
// When a target name is still held by another column that is itself being
// renamed (a swap or rotation), every rename goes through a temporary name
// first so no intermediate statement creates a duplicate.
func (b Builder) RenameColumns(schema, table string, current []string, spec RenameSpec) ([]string, error) {
	if err := b.validateTable(schema, table); err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "rename spec is nil")
	}

	renames, err := spec.resolve(current)
	if err != nil {
		return nil, err
	}
	for _, r := range renames {
		if err := b.ValidateIdentifier("column", r.New); err != nil {
			return nil, err
		}
	}

	steps := renames
	if collides(current, renames) {
		steps = b.viaTemporaries(current, renames)
	}

	stmts := make([]string, len(steps))
	for i, r := range steps {
		stmt, err := b.RenameColumn(schema, table, r.Old, r.New)
		if err != nil {
			return nil, err
		}
		stmts[i] = stmt
	}
	return stmts, nil
}

// collides reports whether any rename targets a name that exists now.
func collides(current []string, renames []ColumnRename) bool {
	live := make(map[string]bool, len(current))
	for _, c := range current {
		live[c] = true
	}
	for _, r := range renames {
		if live[r.New] {
			return true
		}
	}
	return false
}

// viaTemporaries splits every rename into old → tmp followed by tmp → new.
func (b Builder) viaTemporaries(current []string, renames []ColumnRename) []ColumnRename {
	taken := make(map[string]bool, len(current)+len(renames))
	for _, c := range current {
		taken[c] = true
	}
	for _, r := range renames {
		taken[r.New] = true
	}

	tmp := make([]string, len(renames))
	n := 0
	for i := range renames {
		for {
			name := fmt.Sprintf("__dbframe_tmp_%d", n)
			n++
			if !taken[name] {
				tmp[i] = name
				taken[name] = true
				break
			}
		}
	}

	steps := make([]ColumnRename, 0, 2*len(renames))
	for i, r := range renames {
		steps = append(steps, ColumnRename{Old: r.Old, New: tmp[i]})
	}
	for i, r := range renames {
		steps = append(steps, ColumnRename{Old: tmp[i], New: r.New})
	}
	return steps
}
