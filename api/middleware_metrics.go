package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/metrics"
)

// RequestIDHeader carries the request id in and out of the API
const RequestIDHeader = "X-Request-ID"

const slowRequestThreshold = time.Second

// MetricsMiddleware tags every request with an id, records its latency in Prometheus
// under the route template and logs slow requests.
func MetricsMiddleware(m *metrics.Registry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip tracking the scrape and health endpoints
			path := r.URL.Path
			if path == "/metrics" || path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			startTime := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)
			r = r.WithContext(WithRequestID(r.Context(), requestID))

			// Wrap response writer to capture status code
			wrappedWriter := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrappedWriter, r)

			totalDuration := time.Since(startTime)
			m.ObserveHTTPRequest(r.Method, routeTemplate(r), wrappedWriter.statusCode, totalDuration)

			if totalDuration > slowRequestThreshold {
				zap.S().Warnw("Slow request detected",
					"requestId", requestID,
					"method", r.Method,
					"path", path,
					"duration", totalDuration,
					"status", wrappedWriter.statusCode,
				)
			}
		})
	}
}

// routeTemplate keeps label cardinality bounded by using the mux path template
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}
