package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/core/domain"
)

func TestBuildQuoteQuery_ByBand(t *testing.T) {
	query, args := buildQuoteQuery(domain.QuoteKey{
		Municipality: "PESCARA",
		PriceBand:    domain.PriceBandSemiCentral,
	})

	assert.Contains(t, query, "UPPER(comune_descrizione) = UPPER($1)")
	assert.Contains(t, query, "cod_tipologia = $2")
	assert.Contains(t, query, "stato = $3")
	assert.Contains(t, query, "prezzo_min IS NOT NULL")
	assert.Contains(t, query, "fascia = $4")
	assert.NotContains(t, query, "zona_codice = $")
	assert.True(t, strings.HasSuffix(query, "ORDER BY fascia, zona_codice LIMIT 1"))
	assert.Equal(t, []interface{}{"PESCARA", "20", "NORMALE", "C"}, args)
}

func TestBuildQuoteQuery_ZoneWinsOverBand(t *testing.T) {
	query, args := buildQuoteQuery(domain.QuoteKey{
		Municipality: "MILANO",
		PriceBand:    domain.PriceBandSuburban,
		ZoneCode:     "C12",
		Category:     domain.CategoryResidential,
		State:        domain.MarketStateExcellent,
	})

	assert.Contains(t, query, "zona_codice = $4")
	assert.NotContains(t, query, "fascia = $")
	assert.Equal(t, []interface{}{"MILANO", "20", "OTTIMO", "C12"}, args)
}

func TestBuildQuoteQuery_DefaultBand(t *testing.T) {
	_, args := buildQuoteQuery(domain.QuoteKey{Municipality: "ROMA"})
	assert.Equal(t, "B", args[3])
}

func TestMigrateURL(t *testing.T) {
	url, err := migrateURL("postgres://u:p@db:5432/omi?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@db:5432/omi?sslmode=disable", url)

	url, err = migrateURL("postgresql://db/omi")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://db/omi", url)

	_, err = migrateURL("mysql://db/omi")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	seed, err := migrationsFS.ReadFile("migrations/000002_create_omi_settings.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(seed), "'tasso_legale_corrente', 0.025")
}

func TestRowValues_MatchColumns(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	price := 1500.0

	zone := zoneValues(domain.OMIZoneRow{Municipality: "PESCARA", ZoneCode: "B1", Microzone: 3}, "2025/1", date)
	require.Len(t, zone, len(zoneColumns))
	assert.Equal(t, int32(3), zone[15])
	assert.Nil(t, zone[0])
	assert.Equal(t, date, zone[len(zone)-1])

	quote := quotationValues(domain.OMIQuotationRow{Municipality: "PESCARA", PriceMin: &price}, "2025/1", date)
	require.Len(t, quote, len(quotationColumns))
	assert.Equal(t, &price, quote[15])
	assert.Equal(t, "2025/1", quote[len(quote)-2])
}

func TestSurveyDate(t *testing.T) {
	d, err := surveyDate(domain.OMIDatasetMeta{SurveyDate: "2025-01-15"})
	require.NoError(t, err)
	assert.Equal(t, time.January, d.Month())

	_, err = surveyDate(domain.OMIDatasetMeta{SurveyDate: "15/01/2025"})
	assert.Error(t, err)
}

func TestNewAdaptersRejectNilPool(t *testing.T) {
	_, err := NewPostgresReferenceAdapter(nil)
	assert.Error(t, err)
	_, err = NewPostgresSettingsAdapter(nil)
	assert.Error(t, err)
	_, err = NewPostgresOMIImportAdapter(nil)
	assert.Error(t, err)
}
