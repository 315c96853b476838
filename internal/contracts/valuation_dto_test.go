package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/constants"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/valuation"
)

func TestParseValuationRequest_AppliesFormDefaults(t *testing.T) {
	dto, err := ParseValuationRequest([]byte(`{"comune":"pescara","superficie":100,"eta_usufruttuario":78}`))
	require.NoError(t, err)

	in := dto.ToDomain()
	assert.Equal(t, "PESCARA", in.Municipality)
	assert.Equal(t, domain.PriceBandCentral, in.PriceBand)
	assert.Equal(t, 2, in.Floor)
	assert.True(t, in.HasElevator)
	assert.Equal(t, domain.ConditionGood, in.Condition)
	assert.Equal(t, domain.BrightnessBright, in.Brightness)
	assert.Equal(t, domain.ViewExternal, in.View)
	assert.Equal(t, domain.HeatingIndependent, in.Heating)
	assert.Equal(t, "C", in.EnergyClass)
	assert.Equal(t, domain.UsufructLifetime, in.UsufructKind)
	assert.Equal(t, domain.BuildingNormal, in.BuildingCondition)
	assert.False(t, in.HasAskingPrice())
	assert.NoError(t, in.Validate(2025))
}

func TestParseValuationRequest_ExplicitValues(t *testing.T) {
	body := `{"comune":"Milano","provincia":"mi","fascia":"c","zona_codice":"C12","superficie":80,
		"superficie_balconi":10,"superficie_soffitta":20,"has_box":true,"num_garages":1,"num_parking":2,
		"piano":0,"has_ascensore":false,"is_ultimo_piano":true,"has_giardino":true,
		"stato_conservazione":"ristrutturato","luminosita":"poco_luminoso","vista":"interna",
		"anno_costruzione":1970,"anno_ristrutturazione":2015,"stato_edificio":"scadente",
		"tipo_riscaldamento":"centralizzato","classe_energetica":"a4+","eta_usufruttuario":65,
		"tipo_usufrutto":"temporaneo","prezzo_richiesto":250000}`

	dto, err := ParseValuationRequest([]byte(body))
	require.NoError(t, err)
	in := dto.ToDomain()

	assert.Equal(t, "MI", in.Province)
	assert.Equal(t, domain.PriceBandSemiCentral, in.PriceBand)
	assert.Equal(t, "C12", in.ZoneCode)
	assert.Equal(t, 10.0, in.BalconySurface)
	assert.Equal(t, 20.0, in.AtticSurface)
	assert.True(t, in.HasBox)
	assert.Equal(t, 1, in.NumGarages)
	assert.Equal(t, 2, in.NumParking)
	assert.Equal(t, 0, in.Floor)
	assert.False(t, in.HasElevator)
	assert.True(t, in.IsLastFloor)
	assert.True(t, in.HasGarden)
	assert.Equal(t, domain.PropertyCondition("ristrutturato"), in.Condition)
	assert.Equal(t, domain.BuildingCondition("scadente"), in.BuildingCondition)
	assert.Equal(t, 1970, in.BuildingYear)
	assert.Equal(t, 2015, in.RenovationYear)
	assert.Equal(t, domain.UsufructKind("temporaneo"), in.UsufructKind)
	assert.Equal(t, 250000.0, in.AskingPrice)
}

func TestParseValuationRequest_SchemaErrorIsInvalidInput(t *testing.T) {
	_, err := ParseValuationRequest([]byte(`{"comune":"PESCARA","superficie":-1,"eta_usufruttuario":78}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestParseValuationRequestedEvent(t *testing.T) {
	id, dto, err := ParseValuationRequestedEvent([]byte(
		`{"request_id":"r-42","property":{"comune":"ROMA","superficie":70,"eta_usufruttuario":80}}`))
	require.NoError(t, err)
	assert.Equal(t, "r-42", id)
	assert.Equal(t, "ROMA", dto.Comune)

	id, _, err = ParseValuationRequestedEvent([]byte(`{"request_id":"r-43","property":{"comune":"ROMA"}}`))
	assert.Equal(t, "r-43", id)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, _, err = ParseValuationRequestedEvent([]byte(`{"property":{}}`))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
}

func sampleResult(t *testing.T) domain.ValuationResult {
	t.Helper()
	in := domain.NewPropertyValuationInput("PESCARA", 100, 78,
		domain.WithBalcony(15),
		domain.WithBox(),
		domain.WithFloor(3, true),
		domain.WithAskingPrice(115000),
	)
	quote := domain.NewReferenceQuote(1500, 1800, "B1", "B1", "2025/1")
	r, err := valuation.Assemble(in, quote, valuation.LegalRate{Rate: 0.025}, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	return r
}

func TestNewValuationCompletedEvent_MatchesSchema(t *testing.T) {
	r := sampleResult(t)
	event := NewValuationCompletedEvent("r-1", r, valuation.RenderReport(r))

	body, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NoError(t, ValidateEvent(constants.EventValuationCompleted, constants.ContractVersion, body))

	assert.Equal(t, r.ID.String(), event.ValuationID)
	require.NotNil(t, event.DealScore)
	assert.Equal(t, string(r.Deal.Tier), event.DealScore.Rating)
	assert.InDelta(t, r.Fiscal.BareValue, event.ValoreFiscale.ValoreNudaProprieta, 1e-9)
}

func TestNewValuationDTO(t *testing.T) {
	r := sampleResult(t)
	dto := NewValuationDTO(r)

	assert.Equal(t, "PESCARA", dto.Comune)
	assert.Equal(t, "B", dto.Fascia)
	assert.Equal(t, "B1", dto.Quotazione.ZonaCodice)
	assert.InDelta(t, r.Surface.Total, dto.Superficie.Totale, 1e-9)
	assert.Contains(t, dto.Superficie.Dettaglio, "Balconi")
	assert.Len(t, dto.Coefficienti.Fattori, len(r.Merit.Adjustments))
	assert.InDelta(t, r.AdjustedValue.Mid, dto.ValoreStimato.Medio, 1e-9)
	assert.InDelta(t, 115000, dto.DealScore.PrezzoRichiesto, 1e-9)
}

func TestNewValuationFailedEvent(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	notFound := domain.NewReferenceNotFoundError(domain.QuoteKey{Municipality: "ATLANTIDE"})

	tests := []struct {
		name       string
		cause      error
		wantReason string
		wantSugg   bool
	}{
		{"not found", fmt.Errorf("wrapped: %w", notFound), ReasonNotFound, true},
		{"invalid", &domain.InvalidInputError{Field: "superficie", Reason: "must be positive"}, ReasonInvalidInput, false},
		{"bare value", domain.ErrNonPositiveBareValue, ReasonNonPositiveBareValue, false},
		{"other", errors.New("boom"), ReasonError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewValuationFailedEvent("r-1", tt.cause, at)
			assert.Equal(t, tt.wantReason, event.Reason)
			assert.Equal(t, tt.wantSugg, len(event.Suggestions) > 0)

			body, err := json.Marshal(event)
			require.NoError(t, err)
			assert.NoError(t, ValidateEvent(constants.EventValuationFailed, constants.ContractVersion, body))
		})
	}
}
