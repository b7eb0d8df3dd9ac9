package console

import (
	"errors"
	"fmt"
	"net/http"
)

// Local validation failures. Operations return these before any request is
// issued, so callers can distinguish "never sent" from "server rejected".
var (
	ErrEmptyText      = errors.New("text is required")
	ErrEmptyQuery     = errors.New("query is required")
	ErrMissingCaseID  = errors.New("case id is required")
	ErrMissingSummary = errors.New("summary is required")
)

// APIError represents an error status from the console API. Callers should
// prefer the predicate functions (IsNotFound, HasStatusCode) to inspect
// errors rather than asserting on this type directly.
type APIError struct {
	operation  string
	statusCode int
	body       string
	value      any
}

func newAPIError(operation string, statusCode int, body string, value any) *APIError {
	return &APIError{
		operation:  operation,
		statusCode: statusCode,
		body:       body,
		value:      value,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.operation, e.statusCode, e.body)
}

// StatusCode returns the HTTP status code from the response.
func (e *APIError) StatusCode() int { return e.statusCode }

// Body returns the raw response body text.
func (e *APIError) Body() string { return e.body }

// Value returns the decoded response body, or the raw text when the body
// was not JSON.
func (e *APIError) Value() any { return e.value }

// Operation returns a short description of the API call that failed.
func (e *APIError) Operation() string { return e.operation }

// IsNotFound reports whether err is an API error with HTTP 404 status.
func IsNotFound(err error) bool { return HasStatusCode(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is an API error with HTTP 401 status.
func IsUnauthorized(err error) bool { return HasStatusCode(err, http.StatusUnauthorized) }

// HasStatusCode reports whether err is an API error whose HTTP status code matches.
func HasStatusCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.statusCode == code
}

// IsLocal reports whether err is a local validation failure, i.e. the
// operation was rejected before any request went out.
func IsLocal(err error) bool {
	return errors.Is(err, ErrEmptyText) ||
		errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrMissingCaseID) ||
		errors.Is(err, ErrMissingSummary)
}
