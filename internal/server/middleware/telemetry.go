package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// statusRecorder wraps http.ResponseWriter to capture status code and size.
type statusRecorder struct {
	http.ResponseWriter
	status       int
	bytesWritten int
	wroteHeader  bool
}

func wrapWriter(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

const maxRequestIDLen = 64

// RequestID assigns each request an id through chi's RequestID (a client
// X-Request-ID is kept, truncated to 64 bytes), echoes it in the response
// header and installs the per-request state read by Audit and the access log.
func RequestID(next http.Handler) http.Handler {
	return chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chimw.GetReqID(r.Context()))
		if len(id) > maxRequestIDLen {
			id = id[:maxRequestIDLen]
		}
		w.Header().Set(chimw.RequestIDHeader, id)
		st := &requestState{requestID: id}
		next.ServeHTTP(w, r.WithContext(withState(r.Context(), st)))
	}))
}

// Metrics holds the HTTP Prometheus collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec
	AccessDenied    *prometheus.CounterVec
}

// NewMetrics creates the HTTP collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psychaid_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "psychaid_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "psychaid_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),
		AccessDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psychaid_access_denied_total",
				Help: "Requests rejected with 401 or 403",
			},
			[]string{"route", "status"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.ResponseSize, m.AccessDenied)
	return m
}

// Instrument records request metrics, renames the active span to the route
// pattern and writes one access log line per request. m or log may be nil.
func Instrument(m *Metrics, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := wrapWriter(w)
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			route := routePattern(r)
			status := strconv.Itoa(rec.status)
			trace.SpanFromContext(r.Context()).SetName(r.Method + " " + route)
			if m != nil {
				m.RequestsTotal.WithLabelValues(r.Method, route, status).Inc()
				m.RequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
				m.ResponseSize.WithLabelValues(r.Method, route).Observe(float64(rec.bytesWritten))
				if rec.status == http.StatusUnauthorized || rec.status == http.StatusForbidden {
					m.AccessDenied.WithLabelValues(route, status).Inc()
				}
			}
			if log == nil {
				return
			}
			entry := requestLogger(r, log).WithFields(logrus.Fields{
				"route":       route,
				"status":      rec.status,
				"duration_ms": elapsed.Milliseconds(),
				"bytes":       rec.bytesWritten,
				"remote_ip":   ClientIP(r),
			})
			switch {
			case rec.status >= http.StatusInternalServerError:
				entry.Error("http request")
			case rec.status >= http.StatusBadRequest:
				entry.Warn("http request")
			default:
				entry.Info("http request")
			}
		})
	}
}
