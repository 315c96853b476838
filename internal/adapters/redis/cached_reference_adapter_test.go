package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/core/domain"
)

type stubSource struct {
	mu         sync.Mutex
	quoteCalls int
	zoneCalls  int
	quote      *domain.ReferenceQuote
	zones      []domain.Zone
	err        error
}

func (s *stubSource) FindQuote(_ context.Context, key domain.QuoteKey) (*domain.ReferenceQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quoteCalls++
	if s.err != nil {
		return nil, s.err
	}
	if s.quote == nil {
		return nil, fmt.Errorf("quotation for %s: %w", key.Municipality, domain.ErrReferenceQuoteNotFound)
	}
	q := *s.quote
	return &q, nil
}

func (s *stubSource) ListZones(_ context.Context, municipality string) ([]domain.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoneCalls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.zones) == 0 {
		return nil, fmt.Errorf("zones for %s: %w", municipality, domain.ErrMunicipalityNotFound)
	}
	return s.zones, nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveCacheLookup(cache, result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[cache+"/"+result]++
}

func setup(t *testing.T, src *stubSource, opts ...Option) (*CachedReferenceAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a, err := NewCachedReferenceAdapter(src, client, opts...)
	require.NoError(t, err)
	return a, mr
}

var pescaraKey = domain.QuoteKey{
	Municipality: "PESCARA",
	PriceBand:    domain.PriceBandCentral,
	Category:     domain.CategoryResidential,
	State:        domain.MarketStateNormal,
}

func TestFindQuote_CachesSourceResult(t *testing.T) {
	q := domain.NewReferenceQuote(1500, 1800, "B1", "B1", "2025/1")
	src := &stubSource{quote: &q}
	obs := &countingObserver{}
	a, mr := setup(t, src, WithObserver(obs), WithTTL(time.Hour))

	first, err := a.FindQuote(context.Background(), pescaraKey)
	require.NoError(t, err)
	second, err := a.FindQuote(context.Background(), pescaraKey)
	require.NoError(t, err)

	assert.Equal(t, 1, src.quoteCalls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1650.0, second.MidPrice)
	assert.Equal(t, "2025/1", second.Semester)

	assert.True(t, mr.Exists("valuation:quote:PESCARA:B::20:NORMALE"))
	ttl := mr.TTL("valuation:quote:PESCARA:B::20:NORMALE")
	assert.InDelta(t, float64(time.Hour), float64(ttl), float64(6*time.Minute)+1)

	assert.Equal(t, 1, obs.counts["quotes/miss"])
	assert.Equal(t, 1, obs.counts["quotes/hit"])
}

func TestFindQuote_NotFoundIsRemembered(t *testing.T) {
	src := &stubSource{}
	a, _ := setup(t, src, WithNullTTL(time.Minute))

	_, err := a.FindQuote(context.Background(), pescaraKey)
	assert.ErrorIs(t, err, domain.ErrReferenceQuoteNotFound)
	_, err = a.FindQuote(context.Background(), pescaraKey)
	assert.ErrorIs(t, err, domain.ErrReferenceQuoteNotFound)

	assert.Equal(t, 1, src.quoteCalls)
}

func TestFindQuote_SourceErrorIsNotCached(t *testing.T) {
	src := &stubSource{err: errors.New("db down")}
	a, mr := setup(t, src)

	_, err := a.FindQuote(context.Background(), pescaraKey)
	assert.EqualError(t, err, "db down")
	assert.Empty(t, mr.Keys())
}

func TestFindQuote_RedisDownFallsBackToSource(t *testing.T) {
	q := domain.NewReferenceQuote(1000, 1200, "C2", "C2", "2025/1")
	src := &stubSource{quote: &q}
	obs := &countingObserver{}
	a, mr := setup(t, src, WithObserver(obs))
	mr.Close()

	got, err := a.FindQuote(context.Background(), pescaraKey)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, got.MidPrice)
	assert.Equal(t, 1, obs.counts["quotes/error"])
}

func TestListZones_Cached(t *testing.T) {
	src := &stubSource{zones: []domain.Zone{
		{Code: "B1", Link: "B1", PriceBand: domain.PriceBandCentral},
		{Code: "C1", Link: "C1", PriceBand: domain.PriceBandSemiCentral},
	}}
	a, _ := setup(t, src)

	first, err := a.ListZones(context.Background(), "pescara")
	require.NoError(t, err)
	second, err := a.ListZones(context.Background(), "PESCARA")
	require.NoError(t, err)

	assert.Equal(t, 1, src.zoneCalls)
	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
}

func TestListZones_UnknownMunicipality(t *testing.T) {
	a, _ := setup(t, &stubSource{})

	_, err := a.ListZones(context.Background(), "ATLANTIDE")
	assert.ErrorIs(t, err, domain.ErrMunicipalityNotFound)
}

func TestJitterTTL(t *testing.T) {
	for i := 0; i < 100; i++ {
		got := jitterTTL(time.Hour)
		assert.GreaterOrEqual(t, got, 54*time.Minute)
		assert.LessOrEqual(t, got, 66*time.Minute)
	}
	assert.Equal(t, time.Duration(0), jitterTTL(0))
}

func TestNewCachedReferenceAdapter_Validation(t *testing.T) {
	_, err := NewCachedReferenceAdapter(nil, goredis.NewClient(&goredis.Options{}))
	assert.Error(t, err)
	_, err = NewCachedReferenceAdapter(&stubSource{}, nil)
	assert.Error(t, err)
}
