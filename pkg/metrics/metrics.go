// Package metrics exposes Prometheus collectors for the snapshot CLI and the web API.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const namespace = "airdrop"

// Sentinel errors
var (
	ErrWriteTextfile = errors.New("failed to write metrics textfile")
)

// Registry owns an isolated set of collectors so tests never share global state.
type Registry struct {
	registry *prometheus.Registry

	grpcCalls        *prometheus.CounterVec
	grpcCallDuration *prometheus.HistogramVec

	recordsProduced prometheus.Counter
	addressFailures *prometheus.CounterVec
	batchDuration   prometheus.Histogram

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates a Registry with all collectors registered.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		grpcCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_calls_total",
				Help:      "Outgoing gRPC calls by method and status code",
			},
			[]string{"method", "code"},
		),
		grpcCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_call_duration_seconds",
				Help:      "Outgoing gRPC call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		recordsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_produced_total",
			Help:      "Snapshot records produced",
		}),
		addressFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "address_failures_total",
				Help:      "Addresses that failed aggregation by error kind",
			},
			[]string{"kind"},
		),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a snapshot batch",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	r.registry.MustRegister(
		r.grpcCalls,
		r.grpcCallDuration,
		r.recordsProduced,
		r.addressFailures,
		r.batchDuration,
		r.httpRequests,
		r.httpRequestDuration,
	)

	return r
}

// Gatherer exposes the underlying registry for scraping or testing.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// UnaryClientInterceptor records the method, status code and latency of every unary call.
func (r *Registry) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)

		r.grpcCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		r.grpcCalls.WithLabelValues(method, status.Code(err).String()).Inc()

		return err
	}
}

// RecordProduced counts one successfully aggregated address.
func (r *Registry) RecordProduced() {
	r.recordsProduced.Inc()
}

// AddressFailed counts one failed address under its error kind.
func (r *Registry) AddressFailed(kind string) {
	r.addressFailures.WithLabelValues(kind).Inc()
}

// BatchDone observes the duration of a finished batch.
func (r *Registry) BatchDone(d time.Duration) {
	r.batchDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Middleware counts requests by route pattern and response status.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, req)

		// Pattern is set by ServeMux after routing; unmatched requests share one label
		path := req.Pattern
		if path == "" {
			path = "unmatched"
		}

		r.httpRequestDuration.WithLabelValues(req.Method, path).Observe(time.Since(start).Seconds())
		r.httpRequests.WithLabelValues(req.Method, path, strconv.Itoa(rec.status)).Inc()
	})
}

// WriteTextfile dumps the current values for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteTextfile, path, err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
