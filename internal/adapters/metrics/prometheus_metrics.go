package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics - собственный реестр сервиса и все его метрики.
// Реализует port.MetricsPort и наблюдатель кэша.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	valuations       *prometheus.CounterVec
	valuationSeconds prometheus.Histogram
	dealTiers        *prometheus.CounterVec
	rateFallbacks    prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	importRows       *prometheus.CounterVec
}

// NewPrometheusMetrics регистрирует метрики в новом реестре
func NewPrometheusMetrics(namespace string, withRuntime bool) (*PrometheusMetrics, error) {
	if namespace == "" {
		return nil, fmt.Errorf("metrics namespace is required")
	}

	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		valuations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuations_total",
			Help:      "Valuations by outcome.",
		}, []string{"outcome"}),
		valuationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "valuation_duration_seconds",
			Help:      "Time to produce one valuation, reference lookups included.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		dealTiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deal_tiers_total",
			Help:      "Deal assessments by tier.",
		}, []string{"tier"}),
		rateFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legal_rate_fallback_total",
			Help:      "Valuations computed with the fallback legal rate.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Reference cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "omi_import_rows_total",
			Help:      "OMI dataset rows by table and status.",
		}, []string{"table", "status"}),
	}

	toRegister := []prometheus.Collector{
		m.httpRequests, m.httpDuration, m.valuations, m.valuationSeconds,
		m.dealTiers, m.rateFallbacks, m.cacheLookups, m.importRows,
	}
	if withRuntime {
		toRegister = append(toRegister,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range toRegister {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// Handler отдает метрики реестра
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *PrometheusMetrics) ObserveValuation(outcome string, d time.Duration) {
	m.valuations.WithLabelValues(outcome).Inc()
	m.valuationSeconds.Observe(d.Seconds())
}

func (m *PrometheusMetrics) IncDealTier(tier string) {
	m.dealTiers.WithLabelValues(tier).Inc()
}

func (m *PrometheusMetrics) IncLegalRateFallback() {
	m.rateFallbacks.Inc()
}

func (m *PrometheusMetrics) AddImportRows(table, status string, n int) {
	if n <= 0 {
		return
	}
	m.importRows.WithLabelValues(table, status).Add(float64(n))
}

func (m *PrometheusMetrics) ObserveCacheLookup(cache, result string) {
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// HTTPMiddleware считает запросы по шаблону маршрута chi, а не по сырому пути
func (m *PrometheusMetrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
