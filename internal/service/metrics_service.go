package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// two engines.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	aggregations    *prometheus.HistogramVec
	draws           *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
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

	aggregations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grade_aggregation_duration_seconds",
		Help:    "Duration of grade aggregation computations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	draws := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_draws_total",
		Help: "Total group draw attempts by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, aggregations, draws, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		aggregations:    aggregations,
		draws:           draws,
	}
}

// Handler serves the scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	s.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, code).Inc()
}

// ObserveAggregation records one total or average computation.
func (s *MetricsService) ObserveAggregation(op string, duration time.Duration) {
	s.aggregations.WithLabelValues(op).Observe(duration.Seconds())
}

// CountDraw records a draw attempt outcome ("ok", "conflict", "error").
func (s *MetricsService) CountDraw(outcome string) {
	s.draws.WithLabelValues(outcome).Inc()
}
