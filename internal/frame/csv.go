package frame

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/dbframe/internal/errs"
)

// WriteCSV writes a header row followed by one record per row. NULLs are
// written as empty cells, times as RFC 3339 and binary values as base64.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Names()); err != nil {
		return err
	}

	record := make([]string, f.NumCols())
	for i := 0; i < f.rows; i++ {
		for j, c := range f.columns {
			record[j] = formatCell(c.Values[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case uuid.UUID:
		return x.String()
	}
	return fmt.Sprint(v)
}

// ReadCSV reads a header row and the records after it. Each column's type
// is inferred from its non-empty cells, trying int64, float64, bool and
// RFC 3339 time before falling back to string. Empty cells are NULLs.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "malformed csv", err)
	}
	if len(records) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "csv has no header row")
	}

	header, body := records[0], records[1:]
	cols := make([]Column, len(header))
	for j, name := range header {
		cells := make([]string, len(body))
		for i, rec := range body {
			cells[i] = rec[j]
		}
		cols[j] = parseColumn(name, cells)
	}
	return New(cols...)
}

type cellParser struct {
	typ   reflect.Type
	parse func(string) (any, error)
}

var cellParsers = []cellParser{
	{reflect.TypeOf(int64(0)), func(s string) (any, error) { return strconv.ParseInt(s, 10, 64) }},
	{reflect.TypeOf(float64(0)), func(s string) (any, error) { return strconv.ParseFloat(s, 64) }},
	{reflect.TypeOf(false), func(s string) (any, error) { return strconv.ParseBool(s) }},
	{reflect.TypeOf(time.Time{}), func(s string) (any, error) { return time.Parse(time.RFC3339Nano, s) }},
}

func parseColumn(name string, cells []string) Column {
	for _, p := range cellParsers {
		if vals, ok := parseAll(cells, p.parse); ok {
			return Column{Name: name, Type: p.typ, Values: vals}
		}
	}

	vals := make([]any, len(cells))
	for i, s := range cells {
		if s != "" {
			vals[i] = s
		}
	}
	return Column{Name: name, Type: reflect.TypeOf(""), Values: vals}
}

// parseAll parses every non-empty cell; ok is false if any cell fails or
// every cell is empty.
func parseAll(cells []string, parse func(string) (any, error)) ([]any, bool) {
	vals := make([]any, len(cells))
	seen := false
	for i, s := range cells {
		if s == "" {
			continue
		}
		v, err := parse(s)
		if err != nil {
			return nil, false
		}
		vals[i] = v
		seen = true
	}
	return vals, seen
}
