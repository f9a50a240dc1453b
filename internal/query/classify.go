package query

import (
	"regexp"
	"strings"
)

// Kind is the literal kind inferred for a raw filter value.
type Kind int

const (
	KindRelativeDate Kind = iota + 1
	KindDate
	KindTag
	KindBool
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindRelativeDate:
		return "relative-date"
	case KindDate:
		return "date"
	case KindTag:
		return "tag"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "unknown"
}

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numberPattern  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// Literal is a classified filter value.
type Literal struct {
	Kind Kind
	Raw  string
}

// Render returns the literal in query-language syntax.
func (l Literal) Render() string {
	switch l.Kind {
	case KindRelativeDate, KindDate:
		return "date(" + l.Raw + ")"
	case KindBool, KindNumber:
		return l.Raw
	default:
		return Quote(l.Raw)
	}
}

// Classify infers the literal kind of raw. Rules are tried in a fixed order
// and the first match wins, so "#2024-01-15" is a tag, not a date:
//
//  1. "today" or "now"        relative date
//  2. YYYY-MM-DD              absolute date
//  3. leading "#"             tag, rendered as a quoted string
//  4. "true" or "false"       boolean
//  5. -?digits(.digits)?      number
//  6. anything else           quoted string
func Classify(raw string) Literal {
	switch {
	case raw == "today" || raw == "now":
		return Literal{Kind: KindRelativeDate, Raw: raw}
	case isoDatePattern.MatchString(raw):
		return Literal{Kind: KindDate, Raw: raw}
	case strings.HasPrefix(raw, "#"):
		return Literal{Kind: KindTag, Raw: raw}
	case raw == "true" || raw == "false":
		return Literal{Kind: KindBool, Raw: raw}
	case numberPattern.MatchString(raw):
		return Literal{Kind: KindNumber, Raw: raw}
	}
	return Literal{Kind: KindString, Raw: raw}
}

// Quote renders s as a double-quoted string literal. Only double quotes are
// escaped, so a value ending in a backslash produces a literal the engine
// reads as unterminated.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
