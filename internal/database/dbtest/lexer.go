package dbtest

import (
	"strings"
	"unicode"

	"github.com/koustreak/dbframe/internal/errs"
)

type tokenKind int

const (
	tokWord   tokenKind = iota // unquoted keyword or bare identifier
	tokIdent                   // "quoted identifier"
	tokParam                   // $n
	tokNumber                  // 123
	tokString                  // 'literal'
	tokPunct                   // ( ) , . * and friends
)

type token struct {
	kind tokenKind
	text string // identifiers unquoted, words upper-cased
}

// lex splits a Postgres-dialect statement into tokens.
func lex(sql string) ([]token, error) {
	var toks []token
	r := []rune(sql)
	for i := 0; i < len(r); {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '"':
			var sb strings.Builder
			i++
			for {
				if i >= len(r) {
					return nil, syntaxError("unterminated quoted identifier")
				}
				if r[i] == '"' {
					if i+1 < len(r) && r[i+1] == '"' {
						sb.WriteRune('"')
						i += 2
						continue
					}
					i++
					break
				}
				sb.WriteRune(r[i])
				i++
			}
			toks = append(toks, token{tokIdent, sb.String()})
		case c == '\'':
			var sb strings.Builder
			i++
			for {
				if i >= len(r) {
					return nil, syntaxError("unterminated string literal")
				}
				if r[i] == '\'' {
					if i+1 < len(r) && r[i+1] == '\'' {
						sb.WriteRune('\'')
						i += 2
						continue
					}
					i++
					break
				}
				sb.WriteRune(r[i])
				i++
			}
			toks = append(toks, token{tokString, sb.String()})
		case c == '$':
			j := i + 1
			for j < len(r) && unicode.IsDigit(r[j]) {
				j++
			}
			if j == i+1 {
				return nil, syntaxError("bad parameter marker")
			}
			toks = append(toks, token{tokParam, string(r[i+1 : j])})
			i = j
		case unicode.IsDigit(c):
			j := i
			for j < len(r) && unicode.IsDigit(r[j]) {
				j++
			}
			toks = append(toks, token{tokNumber, string(r[i:j])})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(r) && (unicode.IsLetter(r[j]) || unicode.IsDigit(r[j]) || r[j] == '_') {
				j++
			}
			toks = append(toks, token{tokWord, strings.ToUpper(string(r[i:j]))})
			i = j
		default:
			toks = append(toks, token{tokPunct, string(c)})
			i++
		}
	}
	return toks, nil
}

// parser walks a token slice.
type parser struct {
	toks []token
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() (token, bool) {
	if p.done() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

// word consumes the keyword w if it is next.
func (p *parser) word(w string) bool {
	t, ok := p.peek()
	if ok && t.kind == tokWord && t.text == w {
		p.pos++
		return true
	}
	return false
}

func (p *parser) punct(s string) bool {
	t, ok := p.peek()
	if ok && t.kind == tokPunct && t.text == s {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectWords(ws ...string) error {
	for _, w := range ws {
		if !p.word(w) {
			return syntaxError("expected " + w)
		}
	}
	return nil
}

func (p *parser) expectPunct(s string) error {
	if !p.punct(s) {
		return syntaxError("expected " + s)
	}
	return nil
}

func (p *parser) ident() (string, error) {
	t, ok := p.peek()
	if !ok || t.kind != tokIdent {
		return "", syntaxError("expected quoted identifier")
	}
	p.pos++
	return t.text, nil
}

// qualified reads "schema"."table".
func (p *parser) qualified() (string, string, error) {
	schema, err := p.ident()
	if err != nil {
		return "", "", err
	}
	if err := p.expectPunct("."); err != nil {
		return "", "", err
	}
	table, err := p.ident()
	if err != nil {
		return "", "", err
	}
	return schema, table, nil
}

func (p *parser) end() error {
	if !p.done() {
		return syntaxError("unexpected " + p.toks[p.pos].text)
	}
	return nil
}

func syntaxError(msg string) *errs.Error {
	return errs.New(errs.ErrKindQueryFailed, "dbtest: syntax error: "+msg)
}
