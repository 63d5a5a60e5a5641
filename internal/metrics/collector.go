// internal/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricType identifies one of the collectors held by Collector.
type MetricType string

const (
	RefreshCounterType  MetricType = "refresh_counter"
	RefreshDurationType MetricType = "refresh_duration"
	StaleDiscardedType  MetricType = "stale_discarded"
	APILatencyType      MetricType = "api_latency"
	APIRequestsType     MetricType = "api_requests"
)

// Refresh results used as the "result" label.
const (
	ResultOK    = "ok"
	ResultEmpty = "empty"
	ResultError = "error"
	ResultStale = "stale"
)

// Collector owns the dashboard metrics and the registry they live in. Each
// collector gets its own registry so several can coexist in one process.
type Collector struct {
	metrics  sync.Map
	registry *prometheus.Registry
}

// NewCollector creates a new collector with every metric registered.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}
	c.initializeMetrics()
	return c
}

func (c *Collector) initializeMetrics() {
	metricsMap := map[MetricType]prometheus.Collector{
		RefreshCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pairdash",
				Name:      "refresh_total",
				Help:      "Dashboard refreshes by result",
			},
			[]string{"result"},
		),
		RefreshDurationType: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pairdash",
				Name:      "refresh_duration_seconds",
				Help:      "Time to fetch and reconcile one refresh",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
		),
		StaleDiscardedType: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pairdash",
				Name:      "stale_discarded_total",
				Help:      "Refresh results dropped because the selection changed",
			},
		),
		APILatencyType: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pairdash",
				Name:      "api_request_duration_seconds",
				Help:      "Trading API request latency",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"method", "endpoint"},
		),
		APIRequestsType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pairdash",
				Name:      "api_requests_total",
				Help:      "Trading API requests by outcome",
			},
			[]string{"method", "endpoint", "status"},
		),
	}

	for metricType, metric := range metricsMap {
		c.metrics.Store(metricType, metric)
		c.registry.MustRegister(metric)
	}
}

// Registry exposes the underlying registry for gathering.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Reset clears every vector metric (useful in tests)
func (c *Collector) Reset() {
	c.metrics.Range(func(_, value interface{}) bool {
		switch m := value.(type) {
		case *prometheus.CounterVec:
			m.Reset()
		case *prometheus.HistogramVec:
			m.Reset()
		}
		return true
	})
}

// RecordRefresh records the outcome and duration of one refresh. A nil
// collector is a no-op so callers may leave metrics disabled.
func (c *Collector) RecordRefresh(result string, duration time.Duration) {
	if c == nil {
		return
	}
	if m, ok := c.metrics.Load(RefreshCounterType); ok {
		m.(*prometheus.CounterVec).WithLabelValues(result).Inc()
	}
	if result == ResultStale {
		if m, ok := c.metrics.Load(StaleDiscardedType); ok {
			m.(prometheus.Counter).Inc()
		}
		return
	}
	if m, ok := c.metrics.Load(RefreshDurationType); ok {
		m.(prometheus.Histogram).Observe(duration.Seconds())
	}
}

// RecordAPI records one trading API request. status is the HTTP status code
// as text, or "error" when no response arrived.
func (c *Collector) RecordAPI(method, endpoint, status string, duration time.Duration) {
	if c == nil {
		return
	}
	if m, ok := c.metrics.Load(APILatencyType); ok {
		m.(*prometheus.HistogramVec).WithLabelValues(method, endpoint).Observe(duration.Seconds())
	}
	if m, ok := c.metrics.Load(APIRequestsType); ok {
		m.(*prometheus.CounterVec).WithLabelValues(method, endpoint, status).Inc()
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
