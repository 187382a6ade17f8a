package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrOffline is returned by every call of the offline client.
var ErrOffline = errors.New("backend is offline")

// HTTPError is a non-2xx answer from the backend.
type HTTPError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s failed: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// NotFound reports a 404.
func (e *HTTPError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// RejectedError is a 2xx answer whose success flag is false.
type RejectedError struct {
	Endpoint string
	Message  string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected the request", e.Endpoint)
	}
	return fmt.Sprintf("%s rejected the request: %s", e.Endpoint, e.Message)
}

// IsNotFound reports whether err carries a 404 from the backend.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.NotFound()
}

// IsRejected reports whether err is a success:false answer.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}
