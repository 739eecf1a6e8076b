package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the protocol server used when the config does not name one.
const DefaultBaseURL = "http://localhost:5000"

// NewDefaultClient builds a client pointed at the default server URL.
func NewDefaultClient(apiKey string, timeout ...time.Duration) *Client {
	return NewClient(DefaultBaseURL, apiKey, timeout...)
}

// StatusError is returned for any response with a 4xx or 5xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// IsUnauthorized reports whether the server rejected the token.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}
