package authclient

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
)

var (
	// ErrUnauthenticated is returned for a 401 when nobody is signed in
	ErrUnauthenticated = apperrors.ErrUnauthenticated
	// ErrSessionEnded fails requests waiting on a refresh when the session ends
	ErrSessionEnded = apperrors.ErrSessionEnded
	// ErrRefreshTimeout fails the whole batch when a forced refresh exceeds its bound
	ErrRefreshTimeout = apperrors.ErrRefreshTimeout
)

// StatusError is returned for every response outside the 2xx range. The body has been read
// and closed.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("backend returned %s", e.Status)
	}
	return fmt.Sprintf("backend returned %s: %s", e.Status, e.Body)
}

// IsUnauthorized reports whether err carries a 401 response
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
