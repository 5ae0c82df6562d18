package booking

import (
	"errors"
	"fmt"
	"shareIt/internal/models"
)

// Error kinds. Match them with errors.Is; the concrete *Error carries a
// message that is safe to show to the caller.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("booking validation failed")
	ErrUnknownState = models.ErrUnknownState
)

type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

func notFound(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) error {
	return &Error{kind: ErrForbidden, msg: msg}
}

func invalid(format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func unknownState(token string) error {
	return &Error{kind: ErrUnknownState, msg: "Unknown state: " + token}
}

// outcome is the metrics label for the result of an operation.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnknownState):
		return "invalid"
	default:
		return "error"
	}
}
