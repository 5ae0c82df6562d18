// Package request holds helpers shared by handlers for reading the caller
// identity and query parameters.
package request

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// UserIDHeader carries the id of the acting user. The gateway in front of the
// service is trusted to set it.
const UserIDHeader = "X-Sharer-User-Id"

var (
	ErrNoUserID      = errors.New("user id header is required")
	ErrInvalidUserID = errors.New("invalid user id header format")
)

func UserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if raw == "" {
		return 0, ErrNoUserID
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidUserID
	}

	return id, nil
}

// QueryInt returns def when the parameter is absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	return strconv.Atoi(raw)
}
