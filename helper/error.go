package helper

import (
	"errors"
	"strings"
)

// Error wraps an original error with the trace of operations it passed through.
// The innermost operation comes last.
type Error struct {
	Original error
	Trace    []string
}

// NewError wraps original with the operation trace. If original already is an
// *Error, the trace is prepended and the original error is kept.
func NewError(trace string, original error) error {
	var e *Error
	if errors.As(original, &e) {
		return &Error{
			Original: e.Original,
			Trace:    append([]string{trace}, e.Trace...),
		}
	}

	return &Error{
		Original: original,
		Trace:    []string{trace},
	}
}

// Error returns the trace joined with the original message.
func (e *Error) Error() string {
	if e.Original == nil {
		return strings.Join(e.Trace, ": ")
	}
	return strings.Join(e.Trace, ": ") + ": " + e.Original.Error()
}

// Unwrap returns the original error so errors.Is and errors.As see through the trace.
func (e *Error) Unwrap() error {
	return e.Original
}
