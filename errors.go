package pilot

import (
	"fmt"
	"strings"
	"time"
)

// Error is a type that allows for error constants below
type Error string

// Error returns a string representation of the error
func (e Error) Error() string { return string(e) }

const (
	// ErrMissingCredentials - neither a password nor an access token was supplied
	ErrMissingCredentials = Error("either a password or an access token is required")

	// ErrAccessTokenRequired - Credentials cannot be built without an access token
	ErrAccessTokenRequired = Error("access token is required")

	// ErrBadRequest - server answered with code 400
	ErrBadRequest = Error("bad request")

	// ErrUnauthorized - server answered with code 401
	ErrUnauthorized = Error("unauthorized")

	// ErrForbidden - server answered with code 403
	ErrForbidden = Error("forbidden")

	// ErrNotFound - server answered with code 404
	ErrNotFound = Error("not found")

	// ErrConflict - server answered with code 409
	ErrConflict = Error("conflict")

	// ErrInternalServerError - server answered with any other code >= 300
	ErrInternalServerError = Error("internal server error")

	// ErrTimeout - a job did not reach a terminal state within its budget
	ErrTimeout = Error("job completion timed out")

	// ErrChannelClosed - the notification subscription ended before the job completed
	ErrChannelClosed = Error("notification channel closed")

	// ErrJobFailed - a polled job settled in a status other than the expected one
	ErrJobFailed = Error("job failed")
)

// ResponseError is returned when the server embeds a code >= 300 in its response envelope.
// Body holds the complete response body as received.
type ResponseError struct {
	Code int
	Body []byte
}

// NewResponseError returns a ResponseError for code and body.
func NewResponseError(code int, body []byte) *ResponseError {
	return &ResponseError{Code: code, Body: body}
}

// Kind returns the sentinel error the code maps to.
func (e *ResponseError) Kind() error {
	switch e.Code {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	default:
		return ErrInternalServerError
	}
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s (code %d): %s", e.Kind(), e.Code, e.Body)
}

// Unwrap lets errors.Is match the mapped sentinel.
func (e *ResponseError) Unwrap() error {
	return e.Kind()
}

// AuthenticationError is returned when a login request is rejected.
type AuthenticationError struct {
	StatusCode int
	Body       []byte
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("failed to login (status %d): %s", e.StatusCode, e.Body)
}

// PayloadTypeError is returned when a payload field does not hold the expected type.
// Element is set when the field is a list but one of its elements has the wrong type.
// Expected names the wanted kind and defaults to "list".
type PayloadTypeError struct {
	Field    string
	Expected string
	Received string
	Element  bool
}

func (e *PayloadTypeError) Error() string {
	if e.Element {
		return fmt.Sprintf("payload `%s` should be a list of strings, found element of type %s", e.Field, e.Received)
	}
	expected := e.Expected
	if expected == "" {
		expected = "list"
	}
	return fmt.Sprintf("payload `%s` should be a %s but received %s", e.Field, expected, e.Received)
}

// TimeoutError names the job that ran out of time and, for batch jobs, the ids still pending.
type TimeoutError struct {
	Op      string
	After   time.Duration
	Pending []string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s: timed out after %s", e.Op, e.After)
	if len(e.Pending) > 0 {
		msg += ", pending: " + strings.Join(e.Pending, ", ")
	}
	return msg
}

// Unwrap returns ErrTimeout.
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}
