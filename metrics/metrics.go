// Package metrics holds the Prometheus collectors of the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry encapsulates the Prometheus collectors. A nil *Registry is valid and records nothing.
type Registry struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	searchDuration *prometheus.HistogramVec
	searchResults  prometheus.Histogram

	registrations *prometheus.CounterVec
	guardRetries  *prometheus.CounterVec

	bulkModified *prometheus.CounterVec

	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	cacheErrors      *prometheus.CounterVec
	cacheBreakerOpen prometheus.Gauge

	reconcileRuns    *prometheus.CounterVec
	reconcileRemoved *prometheus.CounterVec
}

// New registers the collectors on a dedicated registry
func New() *Registry {
	registry := prometheus.NewRegistry()

	r := &Registry{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "announcement_search_duration_seconds",
			Help:    "Duration of announcement searches, geo or not",
			Buckets: prometheus.DefBuckets,
		}, []string{"geo", "outcome"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "announcement_search_total_matches",
			Help:    "Number of announcements matched by a search before pagination",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_transitions_total",
			Help: "Registration transitions by operation and outcome",
		}, []string{"operation", "outcome"}),
		guardRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_guard_retries_total",
			Help: "Guarded updates that lost a race and were re-validated",
		}, []string{"operation"}),
		bulkModified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_removal_modified_total",
			Help: "Announcements modified by remove-everywhere operations",
		}, []string{"role"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}, []string{"keyspace"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}, []string{"keyspace"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Cache operations that failed or were rejected by the circuit breaker",
		}, []string{"operation"}),
		cacheBreakerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_circuit_breaker_open",
			Help: "1 when the cache circuit breaker is open",
		}),
		reconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reconcile_runs_total",
			Help: "Reconciliation passes by pass and outcome",
		}, []string{"pass", "outcome"}),
		reconcileRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reconcile_removed_total",
			Help: "Orphan references removed by reconciliation",
		}, []string{"pass"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requestDuration, r.requestTotal,
		r.searchDuration, r.searchResults,
		r.registrations, r.guardRetries, r.bulkModified,
		r.cacheHits, r.cacheMisses, r.cacheErrors, r.cacheBreakerOpen,
		r.reconcileRuns, r.reconcileRemoved,
	)
	r.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return r
}

// Handler exposes the Prometheus HTTP handler
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying registry, mostly for tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// ObserveHTTPRequest records one served request
func (r *Registry) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	s := strconv.Itoa(status)
	r.requestDuration.WithLabelValues(method, route, s).Observe(duration.Seconds())
	r.requestTotal.WithLabelValues(method, route, s).Inc()
}

// ObserveSearch records a search execution and, on success, the size of the matched set
func (r *Registry) ObserveSearch(geo bool, total int64, err error, duration time.Duration) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.searchDuration.WithLabelValues(strconv.FormatBool(geo), outcome).Observe(duration.Seconds())
	if err == nil {
		r.searchResults.Observe(float64(total))
	}
}

// RecordRegistration counts a registration transition. outcome is "ok" or an error code.
func (r *Registry) RecordRegistration(operation, outcome string) {
	if r == nil {
		return
	}
	r.registrations.WithLabelValues(operation, outcome).Inc()
}

// RecordGuardRetry counts a guarded update that had to re-read the announcement
func (r *Registry) RecordGuardRetry(operation string) {
	if r == nil {
		return
	}
	r.guardRetries.WithLabelValues(operation).Inc()
}

// RecordBulkRemoval adds the number of announcements a remove-everywhere touched
func (r *Registry) RecordBulkRemoval(role string, modified int64) {
	if r == nil {
		return
	}
	r.bulkModified.WithLabelValues(role).Add(float64(modified))
}

// RecordCacheLookup counts a hit or a miss for a keyspace
func (r *Registry) RecordCacheLookup(keyspace string, hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.cacheHits.WithLabelValues(keyspace).Inc()
		return
	}
	r.cacheMisses.WithLabelValues(keyspace).Inc()
}

// RecordCacheError counts a failed cache operation
func (r *Registry) RecordCacheError(operation string) {
	if r == nil {
		return
	}
	r.cacheErrors.WithLabelValues(operation).Inc()
}

// SetCacheBreakerOpen flips the breaker gauge
func (r *Registry) SetCacheBreakerOpen(open bool) {
	if r == nil {
		return
	}
	if open {
		r.cacheBreakerOpen.Set(1)
		return
	}
	r.cacheBreakerOpen.Set(0)
}

// RecordReconcile counts a reconciliation pass and the references it removed
func (r *Registry) RecordReconcile(pass string, removed int64, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.reconcileRuns.WithLabelValues(pass, outcome).Inc()
	r.reconcileRemoved.WithLabelValues(pass).Add(float64(removed))
}
