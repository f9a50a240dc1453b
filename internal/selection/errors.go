package selection

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a configuration error.
type Kind int

const (
	MalformedJSON Kind = iota + 1
	MissingOrInvalidVersion
	InvalidSource
	InvalidView
)

func (k Kind) String() string {
	switch k {
	case MalformedJSON:
		return "malformed JSON"
	case MissingOrInvalidVersion:
		return "missing or invalid version"
	case InvalidSource:
		return "invalid source"
	case InvalidView:
		return "invalid view"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinel errors matched by *Error through errors.Is.
var (
	ErrMalformedJSON  = errors.New("malformed JSON")
	ErrInvalidVersion = errors.New("missing or invalid version")
	ErrInvalidSource  = errors.New("invalid source")
	ErrInvalidView    = errors.New("invalid view")
)

func (k Kind) sentinel() error {
	switch k {
	case MalformedJSON:
		return ErrMalformedJSON
	case MissingOrInvalidVersion:
		return ErrInvalidVersion
	case InvalidSource:
		return ErrInvalidSource
	case InvalidView:
		return ErrInvalidView
	}
	return nil
}

// Error is a configuration error. Path is the dotted location of the first
// violation; Details lists every violation found in the same section.
type Error struct {
	Kind    Kind
	Path    string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	switch {
	case len(e.Details) > 0:
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, path string, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Details: []string{fmt.Sprintf(format, args...)}}
}
