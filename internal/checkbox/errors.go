package checkbox

import (
	"errors"
	"fmt"
)

// Kind classifies a toggle failure.
type Kind int

const (
	NotFound Kind = iota + 1
	NotAFile
	InvalidLine
	NotACheckbox
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case NotAFile:
		return "not a file"
	case InvalidLine:
		return "invalid line"
	case NotACheckbox:
		return "not a checkbox"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinel errors matched by *ToggleError through errors.Is.
var (
	ErrNotFound     = errors.New("document not found")
	ErrNotAFile     = errors.New("not a file")
	ErrInvalidLine  = errors.New("invalid line")
	ErrNotACheckbox = errors.New("not a checkbox line")
)

// ToggleError reports why a toggle did not apply. The document is unchanged.
type ToggleError struct {
	Kind Kind
	Path string
	Line int
	Err  error
}

func (e *ToggleError) Error() string {
	msg := fmt.Sprintf("toggle %s:%d: %s", e.Path, e.Line, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ToggleError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *ToggleError) Is(target error) bool {
	switch e.Kind {
	case NotFound:
		return target == ErrNotFound
	case NotAFile:
		return target == ErrNotAFile
	case InvalidLine:
		return target == ErrInvalidLine
	case NotACheckbox:
		return target == ErrNotACheckbox
	}
	return false
}
