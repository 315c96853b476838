package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/valuation"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)                 {}
func (nopLogger) Warn(string, port.Fields)                 {}
func (nopLogger) Error(string, error, port.Fields)         {}
func (nopLogger) Debug(string, port.Fields)                {}
func (n nopLogger) WithFields(port.Fields) port.LoggerPort { return n }

type fakeValuate struct {
	err     error
	lastIn  domain.PropertyValuationInput
	invoked bool
}

func (f *fakeValuate) Execute(_ context.Context, in domain.PropertyValuationInput) (*domain.ValuationResult, error) {
	f.invoked = true
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	quote := domain.NewReferenceQuote(1500, 1800, "B1", "B1", "2025/1")
	r, err := valuation.Assemble(in, quote, valuation.LegalRate{Rate: 0.025}, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 0)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type fakeQuickQuote struct {
	err     error
	lastKey domain.QuoteKey
}

func (f *fakeQuickQuote) Execute(_ context.Context, key domain.QuoteKey) (*domain.ReferenceQuote, error) {
	f.lastKey = key
	if f.err != nil {
		return nil, f.err
	}
	q := domain.NewReferenceQuote(2000, 3000, "C2", "C2", "2025/1")
	return &q, nil
}

type fakeZones struct {
	zones []domain.Zone
	err   error
}

func (f fakeZones) Execute(context.Context, string) ([]domain.Zone, error) {
	return f.zones, f.err
}

type fakeCoefficients struct {
	fallback bool
}

func (f fakeCoefficients) List(context.Context) (*domain.UsufructTable, error) {
	return &domain.UsufructTable{Bands: valuation.UsufructBands(), LegalRate: 0.025, FallbackRate: f.fallback}, nil
}

func (f fakeCoefficients) ByAge(_ context.Context, age int) (*domain.UsufructBand, error) {
	if age < 0 || age > domain.MaxUsufructAge {
		return nil, domain.ErrInvalidAge
	}
	band, _ := valuation.LookupUsufructBand(age)
	return &band, nil
}

type testEnv struct {
	valuate *fakeValuate
	quote   *fakeQuickQuote
	zones   fakeZones
	handler http.Handler
}

func newTestEnv(t *testing.T, cfg ServerConfig) *testEnv {
	t.Helper()
	env := &testEnv{
		valuate: &fakeValuate{},
		quote:   &fakeQuickQuote{},
		zones: fakeZones{zones: []domain.Zone{
			{Code: "B1", Link: "B1", PriceBand: domain.PriceBandCentral},
			{Code: "C1", Link: "C1", PriceBand: domain.PriceBandSemiCentral},
		}},
	}
	env.build(cfg)
	return env
}

func (e *testEnv) build(cfg ServerConfig) {
	h := NewValuationHandler(e.valuate, e.quote, e.zones, fakeCoefficients{})
	e.handler = NewServer(cfg, h, nil, nopLogger{}).Handler()
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCalculate_Success(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodPost, "/api/v1/valuation/calculate",
		`{"comune":"pescara","superficie":100,"superficie_balconi":15,"has_box":true,"piano":3,
		  "eta_usufruttuario":78,"prezzo_richiesto":115000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["report"], "Immobile: PESCARA - 100 mq")

	val := body["valutazione"].(map[string]interface{})
	assert.Equal(t, "PESCARA", val["comune"])
	assert.NotNil(t, val["deal_score"])

	assert.Equal(t, 3, env.valuate.lastIn.Floor)
	assert.True(t, env.valuate.lastIn.HasElevator)
	assert.Equal(t, domain.ConditionGood, env.valuate.lastIn.Condition)
}

func TestCalculate_SchemaViolation(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodPost, "/api/v1/valuation/calculate", `{"comune":"PESCARA","superficie":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.valuate.invoked)
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestCalculate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantSugg   int
	}{
		{"not found", domain.NewReferenceNotFoundError(domain.QuoteKey{Municipality: "ATLANTIDE"}), http.StatusNotFound, 3},
		{"invalid", &domain.InvalidInputError{Field: "anno_costruzione", Reason: "in the future"}, http.StatusBadRequest, 0},
		{"bare value", fmt.Errorf("fiscal: %w", domain.ErrNonPositiveBareValue), http.StatusUnprocessableEntity, 0},
		{"database", errors.New("connection refused"), http.StatusInternalServerError, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, ServerConfig{})
			env.valuate.err = tt.err

			rec := env.do(http.MethodPost, "/api/v1/valuation/calculate",
				`{"comune":"ATLANTIDE","superficie":100,"eta_usufruttuario":78}`)
			assert.Equal(t, tt.wantStatus, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			if tt.wantSugg > 0 {
				assert.Len(t, body["suggestions"], tt.wantSugg)
			} else {
				assert.NotContains(t, body, "suggestions")
			}
		})
	}
}

func TestGetCoefficients(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodGet, "/api/v1/valuation/coefficients", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.InDelta(t, 2.5, body["tasso_legale_percentuale"], 1e-9)
	items := body["coefficienti"].([]interface{})
	assert.Len(t, items, len(valuation.UsufructBands()))
	first := items[0].(map[string]interface{})
	assert.Equal(t, "0-20", first["range_eta"])
}

func TestGetCoefficientByAge(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodGet, "/api/v1/valuation/coefficient/78", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 12, body["coefficiente"])
	assert.EqualValues(t, 70, body["percentuale_nuda_proprieta"])

	for _, bad := range []string{"101", "-1", "abc"} {
		rec = env.do(http.MethodGet, "/api/v1/valuation/coefficient/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestGetZones(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodGet, "/api/v1/valuation/zones/pescara", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "PESCARA", body["comune"])
	assert.EqualValues(t, 2, body["zone_count"])

	env.zones = fakeZones{err: fmt.Errorf("ATLANTIDE: %w", domain.ErrMunicipalityNotFound)}
	env.build(ServerConfig{})
	rec = env.do(http.MethodGet, "/api/v1/valuation/zones/atlantide", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, decode(t, rec)["suggestions"], 2)
}

func TestGetQuickQuote(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodGet, "/api/v1/valuation/quick-quote?comune=milano&fascia=c&stato=ottimo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "MILANO", body["comune"])
	assert.Equal(t, "C", body["fascia"])
	assert.InDelta(t, 2500, body["quotazione"].(map[string]interface{})["medio"], 1e-9)
	assert.Equal(t, domain.MarketState("OTTIMO"), env.quote.lastKey.State)

	rec = env.do(http.MethodGet, "/api/v1/valuation/quick-quote", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.quote.err = domain.NewReferenceNotFoundError(domain.QuoteKey{Municipality: "ATLANTIDE"})
	rec = env.do(http.MethodGet, "/api/v1/valuation/quick-quote?comune=atlantide", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, decode(t, rec)["suggestions"], 2)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, ServerConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/valuation/coefficients", "").Code)
	rec := env.do(http.MethodGet, "/api/v1/valuation/coefficients", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// health не ограничивается
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "").Code)
}

func TestLoggerMiddleware_TraceID(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	const traceID = "6f1c2b1e-4a5d-4c3e-9b8a-1d2e3f4a5b6c"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", traceID)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, traceID, rec.Header().Get("X-Trace-ID"))

	rec = env.do(http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
	assert.NotEqual(t, traceID, rec.Header().Get("X-Trace-ID"))
}
