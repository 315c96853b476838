package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/core/port"
)

var _ port.MetricsPort = (*PrometheusMetrics)(nil)

func TestNewPrometheusMetrics_RequiresNamespace(t *testing.T) {
	_, err := NewPrometheusMetrics("", false)
	assert.Error(t, err)
}

func TestBusinessCounters(t *testing.T) {
	m, err := NewPrometheusMetrics("valuation", false)
	require.NoError(t, err)

	m.ObserveValuation(port.OutcomeSuccess, 20*time.Millisecond)
	m.ObserveValuation(port.OutcomeSuccess, 30*time.Millisecond)
	m.ObserveValuation(port.OutcomeNotFound, time.Millisecond)
	m.IncDealTier("AFFARE_ECCEZIONALE")
	m.IncLegalRateFallback()
	m.AddImportRows("omi_zones", "imported", 1000)
	m.AddImportRows("omi_zones", "failed", 0)
	m.ObserveCacheLookup("quotes", "hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.valuations.WithLabelValues(port.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.valuations.WithLabelValues(port.OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dealTiers.WithLabelValues("AFFARE_ECCEZIONALE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateFallbacks))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.importRows.WithLabelValues("omi_zones", "imported")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.importRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("quotes", "hit")))
}

func TestHTTPMiddleware_UsesRoutePattern(t *testing.T) {
	m, err := NewPrometheusMetrics("valuation", false)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/zones/{municipality}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	for _, path := range []string{"/zones/PESCARA", "/zones/ROMA", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/zones/{municipality}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/health", "200")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `valuation_http_requests_total{method="GET",route="/zones/{municipality}",status="404"} 2`)
}
