// Package httpkit holds the small handler toolkit shared by the web API.
package httpkit

import (
	"context"
	"encoding/json"
	"net/http"
)

// HTTPError is an error that knows its response status and keeps the detailed cause for logs
type HTTPError interface {
	HTTPCode() int
	Cause() error
	error
}

// HandlerFunc returns the response to write instead of writing it directly.
// A nil result means the handler already wrote the response.
type HandlerFunc func(http.ResponseWriter, *http.Request) http.HandlerFunc

func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = r.WithContext(WithErrorTracking(r.Context()))

	if respond := h(w, r); respond != nil {
		respond(w, r)
	}
}

// JSON responds 200 with data encoded as JSON
func JSON(data any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, data)
	}
}

// JsonError records err for the logging middleware and responds with its status
func JsonError(err HTTPError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SetError(r.Context(), err)
		writeJSON(w, err.HTTPCode(), err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	header := w.Header()
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if header.Get("X-Content-Type-Options") == "" {
		header.Set("X-Content-Type-Options", "nosniff")
	}
	// Snapshots change after every run
	if header.Get("Cache-Control") == "" {
		header.Set("Cache-Control", "no-store")
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorKey struct{}

type errorSlot struct {
	err error
}

// WithErrorTracking attaches an error slot to ctx unless one is already present
func WithErrorTracking(ctx context.Context) context.Context {
	if _, ok := ctx.Value(errorKey{}).(*errorSlot); ok {
		return ctx
	}
	return context.WithValue(ctx, errorKey{}, &errorSlot{})
}

// SetError stores err in the request's error slot, if any
func SetError(ctx context.Context, err error) {
	if slot, ok := ctx.Value(errorKey{}).(*errorSlot); ok {
		slot.err = err
	}
}

// Error returns the error stored for the request
func Error(ctx context.Context) error {
	if slot, ok := ctx.Value(errorKey{}).(*errorSlot); ok {
		return slot.err
	}
	return nil
}
