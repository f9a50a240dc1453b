package vault

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokDate
	tokOp
	tokLParen
	tokRParen
	tokDot
	tokComma
	tokNot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of query"
	}
	return fmt.Sprintf("%q at %d", t.text, t.pos)
}

// lex splits a query into tokens. date(...) is read as a single token so
// that date(2024-01-15) needs no quoting.
func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case r == '.':
			toks = append(toks, token{tokDot, ".", i})
			i++
		case r == '!' && (i+1 >= len(rs) || rs[i+1] != '='):
			toks = append(toks, token{tokNot, "!", i})
			i++
		case strings.ContainsRune("=!<>", r):
			op := string(r)
			if i+1 < len(rs) && rs[i+1] == '=' {
				op += "="
			}
			toks = append(toks, token{tokOp, op, i})
			i += len(op)
		case r == '"':
			s, n, err := lexString(rs[i:])
			if err != nil {
				return nil, fmt.Errorf("%v at %d", err, i)
			}
			toks = append(toks, token{tokString, s, i})
			i += n
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, string(rs[i:j]), i})
			i = j
		case isIdentStart(r):
			j := i + 1
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			word := string(rs[i:j])
			if strings.EqualFold(word, "date") && j < len(rs) && rs[j] == '(' {
				end := j + 1
				for end < len(rs) && rs[end] != ')' {
					end++
				}
				if end >= len(rs) {
					return nil, fmt.Errorf("unterminated date( at %d", i)
				}
				arg := strings.Trim(strings.TrimSpace(string(rs[j+1:end])), `"`)
				toks = append(toks, token{tokDate, arg, i})
				i = end + 1
				continue
			}
			toks = append(toks, token{tokIdent, word, i})
			i = j
		default:
			return nil, fmt.Errorf("unexpected %q at %d", r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

// lexString reads a double-quoted string. Only \" is an escape; any other
// backslash is kept verbatim.
func lexString(rs []rune) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(rs); i++ {
		switch rs[i] {
		case '"':
			return b.String(), i + 1, nil
		case '\\':
			if i+1 < len(rs) && rs[i+1] == '"' {
				b.WriteRune('"')
				i++
				continue
			}
			b.WriteRune('\\')
		default:
			b.WriteRune(rs[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '@' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
