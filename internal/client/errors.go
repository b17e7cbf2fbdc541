// ABOUTME: Error types returned by the data adapter
// ABOUTME: Distinguishes missing sessions from backend and transport failures

package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthenticated is returned when no session token is available.
// No request is issued in that case.
var ErrUnauthenticated = errors.New("authentication token is missing")

const maxErrorBody = 64 << 10

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HTTPError is a non-2xx backend response
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsUnauthorized reports whether err means the session is missing or was rejected
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthenticated) {
		return true
	}
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == http.StatusUnauthorized
}
