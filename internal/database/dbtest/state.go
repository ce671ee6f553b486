package dbtest

import (
	"sort"
	"strconv"
	"strings"

	"github.com/koustreak/dbframe/internal/errs"
)

type column struct {
	name     string
	dataType string
}

type table struct {
	columns []column
	rows    [][]any
}

func (t *table) index(name string) int {
	for i, c := range t.columns {
		if c.name == name {
			return i
		}
	}
	return -1
}

// state is the whole database: schema → table name → table.
type state struct {
	schemas map[string]map[string]*table
}

func newState(schemas ...string) *state {
	st := &state{schemas: make(map[string]map[string]*table)}
	for _, s := range schemas {
		st.schemas[s] = make(map[string]*table)
	}
	return st
}

func (st *state) clone() *state {
	out := newState()
	for s, tables := range st.schemas {
		out.schemas[s] = make(map[string]*table, len(tables))
		for name, t := range tables {
			rows := make([][]any, len(t.rows))
			for i, r := range t.rows {
				rows[i] = append([]any(nil), r...)
			}
			out.schemas[s][name] = &table{
				columns: append([]column(nil), t.columns...),
				rows:    rows,
			}
		}
	}
	return out
}

func (st *state) table(schema, name string) (*table, error) {
	tables, ok := st.schemas[schema]
	if !ok {
		return nil, errs.Newf(errs.ErrKindQueryFailed, "dbtest: schema %q does not exist", schema)
	}
	t, ok := tables[name]
	if !ok {
		return nil, errs.Newf(errs.ErrKindQueryFailed, "dbtest: relation %q.%q does not exist", schema, name)
	}
	return t, nil
}

// result is a materialised rowset.
type result struct {
	columns []string
	rows    [][]any
}

// run executes one statement against st. Query-shaped statements return a
// result; everything else returns an affected-row count.
func (st *state) run(sql string, args []any) (*result, int64, error) {
	switch {
	case strings.Contains(sql, "pg_namespace"):
		return st.listSchemas(), 0, nil
	case strings.Contains(sql, "'VIEW'"):
		return &result{columns: []string{"table_name"}}, 0, nil
	case strings.Contains(sql, "information_schema.tables"):
		return st.listTables(stringArg(args, 0)), 0, nil
	case strings.Contains(sql, "information_schema.columns"):
		return st.listColumns(stringArg(args, 0), stringArg(args, 1)), 0, nil
	}

	toks, err := lex(sql)
	if err != nil {
		return nil, 0, err
	}
	p := &parser{toks: toks}

	switch {
	case p.word("CREATE"):
		if p.word("SCHEMA") {
			return nil, 0, st.createSchema(p)
		}
		if p.word("TABLE") {
			return nil, 0, st.createTable(p)
		}
	case p.word("ALTER"):
		if p.word("SCHEMA") {
			return nil, 0, st.renameSchema(p)
		}
		if p.word("TABLE") {
			return nil, 0, st.alterTable(p)
		}
	case p.word("DROP"):
		if p.word("SCHEMA") {
			return nil, 0, st.dropSchema(p)
		}
		if p.word("TABLE") {
			return nil, 0, st.dropTable(p)
		}
	case p.word("INSERT"):
		n, err := st.insert(p, args)
		return nil, n, err
	case p.word("SELECT"):
		res, err := st.selectRows(p)
		return res, 0, err
	}
	return nil, 0, syntaxError("unsupported statement: " + sql)
}

func stringArg(args []any, i int) string {
	if i < len(args) {
		if s, ok := args[i].(string); ok {
			return s
		}
	}
	return ""
}

func (st *state) listSchemas() *result {
	res := &result{columns: []string{"nspname"}}
	for _, s := range sortedKeys(st.schemas) {
		res.rows = append(res.rows, []any{s})
	}
	return res
}

func (st *state) listTables(schema string) *result {
	res := &result{columns: []string{"table_name"}}
	for _, name := range sortedKeys(st.schemas[schema]) {
		res.rows = append(res.rows, []any{name})
	}
	return res
}

func (st *state) listColumns(schema, name string) *result {
	res := &result{columns: []string{"column_name", "data_type"}}
	if t, ok := st.schemas[schema][name]; ok {
		for _, c := range t.columns {
			res.rows = append(res.rows, []any{c.name, c.dataType})
		}
	}
	return res
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (st *state) createSchema(p *parser) error {
	name, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.end(); err != nil {
		return err
	}
	if _, ok := st.schemas[name]; ok {
		return errs.Newf(errs.ErrKindQueryFailed, "dbtest: schema %q already exists", name)
	}
	st.schemas[name] = make(map[string]*table)
	return nil
}

func (st *state) renameSchema(p *parser) error {
	oldName, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.expectWords("RENAME", "TO"); err != nil {
		return err
	}
	newName, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.end(); err != nil {
		return err
	}
	tables, ok := st.schemas[oldName]
	if !ok {
		return errs.Newf(errs.ErrKindQueryFailed, "dbtest: schema %q does not exist", oldName)
	}
	if _, ok := st.schemas[newName]; ok {
		return errs.Newf(errs.ErrKindQueryFailed, "dbtest: schema %q already exists", newName)
	}
	delete(st.schemas, oldName)
	st.schemas[newName] = tables
	return nil
}

func (st *state) dropSchema(p *parser) error {
	name, err := p.ident()
	if err != nil {
		return err
	}
	cascade := p.word("CASCADE")
	if err := p.end(); err != nil {
		return err
	}
	tables, ok := st.schemas[name]
	if !ok {
		return errs.Newf(errs.ErrKindQueryFailed, "dbtest: schema %q does not exist", name)
	}
	if len(tables) > 0 && !cascade {
		return errs.Newf(errs.ErrKindHasDependents,
			"dbtest: cannot drop schema %q because other objects depend on it", name)
	}
	delete(st.schemas, name)
	return nil
}

func (st *state) createTable(p *parser) error {
	schema, name, err := p.qualified()
	if err != nil {
		return err
	}
	if err := p.expectPunct("("); err != nil {
		return err
	}

	t := &table{}
	for {
		col, err := p.ident()
		if err != nil {
			return err
		}
		if t.index(col) >= 0 {
			return errs.Newf(errs.ErrKindQueryFailed, "dbtest: column %q specified more than once", col)
		}
		var typeWords []string
		for {
			tok, ok := p.peek()
			if !ok || tok.kind != tokWord {
				break
			}
			typeWords = append(typeWords, strings.ToLower(tok.text))
			p.pos++
		}
		if len(typeWords) == 0 {
			return syntaxError("missing type for column " + col)
		}
		t.columns = append(t.columns, column{name: col, dataType: strings.Join(typeWords, " ")})

		if p.punct(")") {
			break
		}
		if err := p.expectPunct(","); err != nil {
			return err
		}
	}
	if err := p.end(); err != nil {
		return err
	}

	tables, ok := st.schemas[schema]
	if !ok {
		return errs.Newf(errs.ErrKindQueryFailed, "dbtest: schema %q does not exist", schema)
	}
	if _, ok := tables[name]; ok {
		return errs.Newf(errs.ErrKindQueryFailed, "dbtest: relation %q.%q already exists", schema, name)
	}
	tables[name] = t
	return nil
}

func (st *state) alterTable(p *parser) error {
	schema, name, err := p.qualified()
	if err != nil {
		return err
	}
	if err := p.expectWords("RENAME"); err != nil {
		return err
	}
	t, err := st.table(schema, name)
	if err != nil {
		return err
	}

	if p.word("COLUMN") {
		oldCol, err := p.ident()
		if err != nil {
			return err
		}
		if err := p.expectWords("TO"); err != nil {
			return err
		}
		newCol, err := p.ident()
		if err != nil {
			return err
		}
		if err := p.end(); err != nil {
			return err
		}
		i := t.index(oldCol)
		if i < 0 {
			return errs.Newf(errs.ErrKindQueryFailed, "dbtest: column %q does not exist", oldCol)
		}
		if t.index(newCol) >= 0 {
			return errs.Newf(errs.ErrKindQueryFailed, "dbtest: column %q already exists", newCol)
		}
		t.columns[i].name = newCol
		return nil
	}

	if err := p.expectWords("TO"); err != nil {
		return err
	}
	newName, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.end(); err != nil {
		return err
	}
	if _, ok := st.schemas[schema][newName]; ok {
		return errs.Newf(errs.ErrKindQueryFailed, "dbtest: relation %q.%q already exists", schema, newName)
	}
	delete(st.schemas[schema], name)
	st.schemas[schema][newName] = t
	return nil
}

func (st *state) dropTable(p *parser) error {
	schema, name, err := p.qualified()
	if err != nil {
		return err
	}
	if err := p.end(); err != nil {
		return err
	}
	if _, err := st.table(schema, name); err != nil {
		return err
	}
	delete(st.schemas[schema], name)
	return nil
}

func (st *state) insert(p *parser, args []any) (int64, error) {
	if err := p.expectWords("INTO"); err != nil {
		return 0, err
	}
	schema, name, err := p.qualified()
	if err != nil {
		return 0, err
	}
	t, err := st.table(schema, name)
	if err != nil {
		return 0, err
	}

	if err := p.expectPunct("("); err != nil {
		return 0, err
	}
	var targets []int
	for {
		col, err := p.ident()
		if err != nil {
			return 0, err
		}
		i := t.index(col)
		if i < 0 {
			return 0, errs.Newf(errs.ErrKindQueryFailed, "dbtest: column %q does not exist", col)
		}
		targets = append(targets, i)
		if p.punct(")") {
			break
		}
		if err := p.expectPunct(","); err != nil {
			return 0, err
		}
	}

	if err := p.expectWords("VALUES"); err != nil {
		return 0, err
	}
	var added [][]any
	for {
		if err := p.expectPunct("("); err != nil {
			return 0, err
		}
		row := make([]any, len(t.columns))
		for k, target := range targets {
			if k > 0 {
				if err := p.expectPunct(","); err != nil {
					return 0, err
				}
			}
			tok, ok := p.peek()
			if !ok || tok.kind != tokParam {
				return 0, syntaxError("expected parameter")
			}
			p.pos++
			n, _ := strconv.Atoi(tok.text)
			if n < 1 || n > len(args) {
				return 0, errs.Newf(errs.ErrKindQueryFailed, "dbtest: parameter $%d not bound", n)
			}
			row[target] = args[n-1]
		}
		if err := p.expectPunct(")"); err != nil {
			return 0, err
		}
		added = append(added, row)
		if !p.punct(",") {
			break
		}
	}
	if err := p.end(); err != nil {
		return 0, err
	}

	t.rows = append(t.rows, added...)
	return int64(len(added)), nil
}

// selectRows handles SELECT * | "a", "b" FROM "s"."t" [LIMIT n]. Any other
// trailing clause is rejected the way a server rejects a malformed one.
func (st *state) selectRows(p *parser) (*result, error) {
	var projection []string
	if !p.punct("*") {
		for {
			col, err := p.ident()
			if err != nil {
				return nil, err
			}
			projection = append(projection, col)
			if !p.punct(",") {
				break
			}
		}
	}
	if err := p.expectWords("FROM"); err != nil {
		return nil, err
	}
	schema, name, err := p.qualified()
	if err != nil {
		return nil, err
	}
	t, err := st.table(schema, name)
	if err != nil {
		return nil, err
	}

	limit := -1
	if p.word("LIMIT") {
		tok, ok := p.peek()
		if !ok || tok.kind != tokNumber {
			return nil, syntaxError("expected LIMIT count")
		}
		p.pos++
		limit, _ = strconv.Atoi(tok.text)
	}
	if err := p.end(); err != nil {
		return nil, err
	}

	idx := make([]int, 0, len(t.columns))
	res := &result{}
	if projection == nil {
		for i, c := range t.columns {
			idx = append(idx, i)
			res.columns = append(res.columns, c.name)
		}
	} else {
		for _, col := range projection {
			i := t.index(col)
			if i < 0 {
				return nil, errs.Newf(errs.ErrKindQueryFailed, "dbtest: column %q does not exist", col)
			}
			idx = append(idx, i)
			res.columns = append(res.columns, col)
		}
	}

	for n, row := range t.rows {
		if limit >= 0 && n >= limit {
			break
		}
		out := make([]any, len(idx))
		for k, i := range idx {
			out[k] = row[i]
		}
		res.rows = append(res.rows, out)
	}
	return res, nil
}
