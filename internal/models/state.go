package models

import (
	"errors"
	"fmt"
	"strings"
)

// State selects which slice of a user's bookings a listing returns.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateApproved State = "APPROVED"
	StateRejected State = "REJECTED"
)

var ErrUnknownState = errors.New("unknown state")

// ParseState accepts the token in any letter case.
func ParseState(token string) (State, error) {
	switch s := State(strings.ToUpper(strings.TrimSpace(token))); s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateApproved, StateRejected:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownState, token)
	}
}

// Status returns the booking status a status-category state filters on.
func (s State) Status() (Status, bool) {
	switch s {
	case StateWaiting:
		return StatusWaiting, true
	case StateApproved:
		return StatusApproved, true
	case StateRejected:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Page is a resolved LIMIT/OFFSET pair.
type Page struct {
	Offset int
	Limit  int
}

// NewPage turns a from/size request into a page. from is not a cursor: it is
// rounded down to the start of the page that contains it, so from=5,size=10
// yields the first page.
func NewPage(from, size int) Page {
	return Page{
		Offset: (from / size) * size,
		Limit:  size,
	}
}
