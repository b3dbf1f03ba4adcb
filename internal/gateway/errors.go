package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the single failure type of the gateway. Transport failures carry
// StatusCode 0; malformed bodies keep the status and wrap the decode error.
type Error struct {
	StatusCode int
	Message    string // server-provided "error", then "message"
	Detail     string // raw body text when it was not a JSON error document
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("api error %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("api error %d", e.StatusCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// errorBody is the JSON error document returned by the API.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Message returns the server-provided message carried by err, or fallback
// when there is none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the API rejected the credential.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, 0 if none.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
