// Package frame is the tabular value exchanged with the object layer: an
// ordered list of named, typed columns of equal length.
//
// Usage:
//
//	f, err := frame.New(
//	    frame.Col("id", int64(1), int64(2)),
//	    frame.Col("name", "ada", "grace"),
//	)
package frame

import (
	"bytes"
	"reflect"
	"time"

	"github.com/koustreak/dbframe/internal/errs"
)

// Column is one named column. Type is the Go element type of Values; nil
// entries in Values are NULLs.
type Column struct {
	Name   string
	Type   reflect.Type
	Values []any
}

// Col builds a column whose type is T.
func Col[T any](name string, values ...T) Column {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return Column{Name: name, Type: reflect.TypeOf((*T)(nil)).Elem(), Values: vals}
}

// Infer builds a column whose type is taken from its first non-nil value.
// Type stays nil when every value is nil.
func Infer(name string, values ...any) Column {
	c := Column{Name: name, Values: values}
	for _, v := range values {
		if v != nil {
			c.Type = reflect.TypeOf(v)
			break
		}
	}
	return c
}

// Len is the number of values in the column.
func (c Column) Len() int { return len(c.Values) }

// Frame is an immutable-by-convention table value.
type Frame struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New validates cols and assembles them into a Frame. It requires at least
// one column, unique non-empty names, equal column lengths, and non-nil
// values of each column's Type.
func New(cols ...Column) (*Frame, error) {
	if len(cols) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "frame needs at least one column")
	}

	f := &Frame{
		columns: make([]Column, len(cols)),
		index:   make(map[string]int, len(cols)),
		rows:    cols[0].Len(),
	}
	for i, c := range cols {
		if c.Name == "" {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "column %d has no name", i)
		}
		if _, dup := f.index[c.Name]; dup {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "duplicate column %q", c.Name)
		}
		if c.Len() != f.rows {
			return nil, errs.Newf(errs.ErrKindInvalidInput,
				"column %q has %d values, want %d", c.Name, c.Len(), f.rows)
		}
		if err := c.checkTypes(); err != nil {
			return nil, err
		}
		f.columns[i] = c
		f.index[c.Name] = i
	}
	return f, nil
}

// checkTypes rejects a non-nil value whose type differs from c.Type once
// pointers are dereferenced. An interface Type accepts any implementation.
func (c Column) checkTypes() error {
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		vt := reflect.TypeOf(v)
		if c.Type == nil {
			return errs.Newf(errs.ErrKindInvalidInput,
				"column %q has a %s value at row %d but no type", c.Name, vt, i)
		}
		if c.Type.Kind() == reflect.Interface {
			if vt.Implements(c.Type) {
				continue
			}
		} else if deref(vt) == deref(c.Type) {
			continue
		}
		return errs.Newf(errs.ErrKindInvalidInput,
			"column %q is %s but row %d holds %s", c.Name, c.Type, i, vt)
	}
	return nil
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// FromRows builds a frame from row-major data. types may be nil, in which
// case each column's type is inferred from its values.
func FromRows(names []string, types []reflect.Type, rows [][]any) (*Frame, error) {
	cols := make([]Column, len(names))
	for j, name := range names {
		vals := make([]any, len(rows))
		for i, row := range rows {
			if len(row) != len(names) {
				return nil, errs.Newf(errs.ErrKindInvalidInput,
					"row %d has %d values, want %d", i, len(row), len(names))
			}
			vals[i] = row[j]
		}
		if types != nil {
			cols[j] = Column{Name: name, Type: types[j], Values: vals}
		} else {
			cols[j] = Infer(name, vals...)
		}
	}
	return New(cols...)
}

// Columns returns the columns in order. The slice is shared; do not modify.
func (f *Frame) Columns() []Column { return f.columns }

// NumCols is the number of columns.
func (f *Frame) NumCols() int { return len(f.columns) }

// NumRows is the number of rows.
func (f *Frame) NumRows() int { return f.rows }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (f *Frame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, false
	}
	return f.columns[i], true
}

// Row returns the i-th row as a fresh slice.
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.columns))
	for j, c := range f.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Rows returns all rows in row-major order.
func (f *Frame) Rows() [][]any {
	rows := make([][]any, f.rows)
	for i := range rows {
		rows[i] = f.Row(i)
	}
	return rows
}

// Equal reports whether f and g have the same column names, types, and
// values in the same order.
func (f *Frame) Equal(g *Frame) bool {
	if f == nil || g == nil {
		return f == g
	}
	if f.NumCols() != g.NumCols() || f.rows != g.rows {
		return false
	}
	for j, c := range f.columns {
		d := g.columns[j]
		if c.Name != d.Name || c.Type != d.Type {
			return false
		}
		for i := range c.Values {
			if !valueEqual(c.Values[i], d.Values[i]) {
				return false
			}
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}
