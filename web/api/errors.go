package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinels for the status classes the API returns
var (
	ErrBadRequest          = errors.New(http.StatusText(http.StatusBadRequest))
	ErrInternalServerError = errors.New(http.StatusText(http.StatusInternalServerError))
	ErrServiceUnavailable  = errors.New(http.StatusText(http.StatusServiceUnavailable))
)

// Error is the JSON error body. Only message and code reach the client; cause stays in the logs.
type Error struct {
	cause    error
	message  string
	httpCode int
}

func newError(code int, cause error, message string) *Error {
	return &Error{cause: cause, message: message, httpCode: code}
}

// BadRequest exposes the cause message, which describes what the client sent
func BadRequest(cause error) *Error {
	return newError(http.StatusBadRequest, cause, cause.Error())
}

// InternalServerError hides the cause behind the generic status text
func InternalServerError(cause error) *Error {
	return newError(http.StatusInternalServerError, cause, http.StatusText(http.StatusInternalServerError))
}

// ServiceUnavailable reports a timed out or abandoned query that the client may retry
func ServiceUnavailable(cause error) *Error {
	return newError(http.StatusServiceUnavailable, cause, http.StatusText(http.StatusServiceUnavailable))
}

// Wrap classifies err for the response; API errors pass through unchanged
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ServiceUnavailable(err)
	default:
		return InternalServerError(err)
	}
}

func (e *Error) HTTPCode() int { return e.httpCode }
func (e *Error) Error() string { return e.message }
func (e *Error) Cause() error  { return e.cause }
func (e *Error) Unwrap() error { return e.cause }

// Is matches sentinels anywhere in the cause chain
func (e *Error) Is(target error) bool {
	return errors.Is(e.cause, target)
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{e.httpCode, e.message})
}
