package logger

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/screwyprof/airdrop/pkg/httpkit"
)

// statusWriter captures the status code and body size written by the wrapped handler
type statusWriter struct {
	http.ResponseWriter
	status   int
	bytesOut int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesOut += n
	return n, err
}

// NewMiddleware creates HTTP request logging middleware.
// 5xx responses log at error level except 503, which is retryable and logs at warn.
func NewMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Handlers outside httpkit.HandlerFunc still get error tracking
			r = r.WithContext(httpkit.WithErrorTracking(r.Context()))

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("uri", r.RequestURI),
				slog.String("route", routeOf(r)),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes_in", max(0, int(r.ContentLength))),
				slog.Int("bytes_out", sw.bytesOut),
			}

			if err := httpkit.Error(r.Context()); err != nil {
				attrs = append(attrs, slog.String("error", errorMessage(err)))
			}

			logger.LogAttrs(r.Context(), levelFor(sw.status), "HTTP", attrs...)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status == http.StatusServiceUnavailable:
		return slog.LevelWarn
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routeOf returns the ServeMux pattern that matched, or "-" when nothing did
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return "-"
	}
	return r.Pattern
}

// errorMessage prefers the detailed cause over the user-facing message
func errorMessage(err error) string {
	var httpErr httpkit.HTTPError
	if errors.As(err, &httpErr) && httpErr.Cause() != nil {
		return httpErr.Cause().Error()
	}
	return err.Error()
}
