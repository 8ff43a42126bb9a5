package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the attendance pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	tapsIngested    *prometheus.CounterVec
	tapsRejected    prometheus.Counter
	finalizeRecords prometheus.Counter
	finalizeRuns    prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	tapsIngested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taps_ingested_total",
		Help: "Card taps accepted by the ingestion endpoint",
	}, []string{"event"})

	tapsRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taps_rejected_total",
		Help: "Card taps rejected for unknown or unenrolled cards",
	})

	finalizeRecords := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_records_finalized_total",
		Help: "Attendance records written by finalize calls",
	})

	finalizeRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_finalize_runs_total",
		Help: "Finalize invocations",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "summary_cache_hits_total",
		Help: "Summary cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "summary_cache_misses_total",
		Help: "Summary cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, tapsIngested, tapsRejected,
		finalizeRecords, finalizeRuns, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		tapsIngested:    tapsIngested,
		tapsRejected:    tapsRejected,
		finalizeRecords: finalizeRecords,
		finalizeRuns:    finalizeRuns,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveTap counts an accepted tap by event type.
func (m *MetricsService) ObserveTap(event string) {
	if m == nil {
		return
	}
	m.tapsIngested.WithLabelValues(event).Inc()
}

// ObserveTapRejected counts a rejected tap.
func (m *MetricsService) ObserveTapRejected() {
	if m == nil {
		return
	}
	m.tapsRejected.Inc()
}

// ObserveFinalize counts a finalize run and its written records.
func (m *MetricsService) ObserveFinalize(records int) {
	if m == nil {
		return
	}
	m.finalizeRuns.Inc()
	m.finalizeRecords.Add(float64(records))
}

// RecordCacheOperation counts summary cache hits and misses.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
