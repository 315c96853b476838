package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/core/domain"
)

func TestGetQuickQuote_AppliesDefaults(t *testing.T) {
	quote := domain.NewReferenceQuote(1000, 1400, "C3", "C3", "2025/1")
	quotes := &fakeQuotes{quote: &quote}
	uc := NewGetQuickQuoteUseCase(quotes)

	got, err := uc.Execute(context.Background(), domain.QuoteKey{Municipality: " chieti "})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, got.MidPrice)
	assert.Equal(t, "CHIETI", quotes.lastKey.Municipality)
	assert.Equal(t, domain.PriceBandCentral, quotes.lastKey.PriceBand)
	assert.Equal(t, domain.MarketStateNormal, quotes.lastKey.State)
}

func TestGetQuickQuote_Errors(t *testing.T) {
	uc := NewGetQuickQuoteUseCase(&fakeQuotes{})

	_, err := uc.Execute(context.Background(), domain.QuoteKey{Municipality: "CHIETI", PriceBand: "Z"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Execute(context.Background(), domain.QuoteKey{Municipality: "CHIETI"})
	var nf *domain.ReferenceNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestListZones(t *testing.T) {
	zones := []domain.Zone{{Code: "B1", PriceBand: domain.PriceBandCentral}, {Code: "C1", PriceBand: domain.PriceBandSemiCentral}}
	uc := NewListZonesUseCase(&fakeQuotes{zones: zones})

	got, err := uc.Execute(context.Background(), "pescara")
	require.NoError(t, err)
	assert.Equal(t, zones, got)

	uc = NewListZonesUseCase(&fakeQuotes{})
	_, err = uc.Execute(context.Background(), "nowhere")
	assert.ErrorIs(t, err, domain.ErrMunicipalityNotFound)
}

func TestUsufructCoefficients(t *testing.T) {
	metrics := newFakeMetrics()
	uc := NewUsufructCoefficientsUseCase(nil, metrics, 0)

	table, err := uc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Bands, 18)
	assert.True(t, table.FallbackRate)
	assert.Equal(t, 0.025, table.LegalRate)
	assert.Equal(t, 1, metrics.fallbacks)

	uc = NewUsufructCoefficientsUseCase(fakeRates{rate: 0.02}, metrics, 0.025)
	table, err = uc.List(context.Background())
	require.NoError(t, err)
	assert.False(t, table.FallbackRate)
	assert.Equal(t, 0.02, table.LegalRate)

	band, err := uc.ByAge(context.Background(), 65)
	require.NoError(t, err)
	assert.Equal(t, 20, band.Coefficient)

	band, err = uc.ByAge(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 4, band.Coefficient)

	_, err = uc.ByAge(context.Background(), 101)
	assert.ErrorIs(t, err, domain.ErrInvalidAge)
}
