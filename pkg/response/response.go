// Package response attaches HTTP status codes to errors raised below the
// handler layer, so the error handler can map a verification failure to a
// response without a second lookup table.
package response

import (
	"errors"
)

// Error is an error with the HTTP status the handler should answer with.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// NewError builds a status-coded error, e.g. the 429 returned by the rate
// limiter or the 500 wrapping an engine failure.
func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}
