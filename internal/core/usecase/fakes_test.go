package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"valuation-service/internal/core/domain"
)

var errDatabaseDown = errors.New("connection refused")

type fakeQuotes struct {
	quote   *domain.ReferenceQuote
	zones   []domain.Zone
	err     error
	lastKey domain.QuoteKey
	lookups int
}

func (f *fakeQuotes) FindQuote(_ context.Context, key domain.QuoteKey) (*domain.ReferenceQuote, error) {
	f.lookups++
	f.lastKey = key
	if f.err != nil {
		return nil, f.err
	}
	if f.quote == nil {
		return nil, domain.ErrReferenceQuoteNotFound
	}
	q := *f.quote
	return &q, nil
}

func (f *fakeQuotes) ListZones(_ context.Context, _ string) ([]domain.Zone, error) {
	return f.zones, f.err
}

type fakeRates struct {
	rate float64
	err  error
}

func (f fakeRates) GetLegalRate(context.Context) (float64, error) {
	return f.rate, f.err
}

type fakeMetrics struct {
	mu        sync.Mutex
	outcomes  []string
	tiers     []string
	fallbacks int
	rows      map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{rows: map[string]int{}}
}

func (m *fakeMetrics) ObserveValuation(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *fakeMetrics) IncDealTier(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers = append(m.tiers, tier)
}

func (m *fakeMetrics) IncLegalRateFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *fakeMetrics) AddImportRows(table, status string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[table+"/"+status] += n
}

type fakeReporter struct {
	completed []string
	failed    []string
	reports   []string
	causes    []error
	err       error
}

func (r *fakeReporter) ReportCompleted(_ context.Context, requestID string, _ domain.ValuationResult, report string) error {
	if r.err != nil {
		return r.err
	}
	r.completed = append(r.completed, requestID)
	r.reports = append(r.reports, report)
	return nil
}

func (r *fakeReporter) ReportFailed(_ context.Context, requestID string, cause error) error {
	if r.err != nil {
		return r.err
	}
	r.failed = append(r.failed, requestID)
	r.causes = append(r.causes, cause)
	return nil
}

type fakeValuate struct {
	result *domain.ValuationResult
	err    error
}

func (f fakeValuate) Execute(context.Context, domain.PropertyValuationInput) (*domain.ValuationResult, error) {
	return f.result, f.err
}

// fakeReader отдает заранее заданные строки пачками
type fakeReader struct {
	zones      []domain.OMIZoneRow
	quotations []domain.OMIQuotationRow
	err        error
}

func (r fakeReader) ReadZones(_ context.Context, _ string, batchSize int, handle func([]domain.OMIZoneRow) error) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	for start := 0; start < len(r.zones); start += batchSize {
		end := min(start+batchSize, len(r.zones))
		if err := handle(r.zones[start:end]); err != nil {
			return start, err
		}
	}
	return len(r.zones), nil
}

func (r fakeReader) ReadQuotations(_ context.Context, _ string, batchSize int, handle func([]domain.OMIQuotationRow) error) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	for start := 0; start < len(r.quotations); start += batchSize {
		end := min(start+batchSize, len(r.quotations))
		if err := handle(r.quotations[start:end]); err != nil {
			return start, err
		}
	}
	return len(r.quotations), nil
}

// fakeImportRepo падает на пачках с номерами из failBatches
type fakeImportRepo struct {
	failBatches map[int]bool
	calls       int
	meta        domain.OMIDatasetMeta
}

func (r *fakeImportRepo) insert(meta domain.OMIDatasetMeta, n int) (int64, error) {
	r.meta = meta
	call := r.calls
	r.calls++
	if r.failBatches[call] {
		return 0, errDatabaseDown
	}
	return int64(n), nil
}

func (r *fakeImportRepo) InsertZones(_ context.Context, meta domain.OMIDatasetMeta, rows []domain.OMIZoneRow) (int64, error) {
	return r.insert(meta, len(rows))
}

func (r *fakeImportRepo) InsertQuotations(_ context.Context, meta domain.OMIDatasetMeta, rows []domain.OMIQuotationRow) (int64, error) {
	return r.insert(meta, len(rows))
}
