package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/contracts"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/port/usecases_port"
	"valuation-service/internal/core/valuation"
)

const maxRequestBody = 1 << 20

var (
	internalErrorSuggestions = []string{"Riprova più tardi", "Contatta il supporto"}
	zonesNotFoundSuggestions = []string{
		"Verifica l'ortografia del comune",
		"Usa il nome completo in maiuscolo (es. PESCARA)",
	}
)

type ValuationHandler struct {
	valuateUC      usecases_port.ValuatePropertyPort
	quickQuoteUC   usecases_port.GetQuickQuotePort
	listZonesUC    usecases_port.ListZonesPort
	coefficientsUC usecases_port.UsufructCoefficientsPort
}

func NewValuationHandler(valuateUC usecases_port.ValuatePropertyPort,
	quickQuoteUC usecases_port.GetQuickQuotePort,
	listZonesUC usecases_port.ListZonesPort,
	coefficientsUC usecases_port.UsufructCoefficientsPort) *ValuationHandler {
	return &ValuationHandler{
		valuateUC:      valuateUC,
		quickQuoteUC:   quickQuoteUC,
		listZonesUC:    listZonesUC,
		coefficientsUC: coefficientsUC,
	}
}

// Calculate обрабатывает POST /api/v1/valuation/calculate
func (h *ValuationHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := contracts.ParseValuationRequest(body)
	if err != nil {
		logger.Warn("Valuation request rejected by schema", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.valuateUC.Execute(r.Context(), req.ToDomain())
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, CalculateResponse{
		Success:     true,
		Valutazione: contracts.NewValuationDTO(*result),
		Report:      valuation.RenderReport(*result),
	})
}

// GetCoefficients обрабатывает GET /api/v1/valuation/coefficients
func (h *ValuationHandler) GetCoefficients(w http.ResponseWriter, r *http.Request) {
	table, err := h.coefficientsUC.List(r.Context())
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}

	items := make([]CoefficientDTO, 0, len(table.Bands))
	for _, b := range table.Bands {
		items = append(items, CoefficientDTO{
			EtaMin:                   b.MinAge,
			EtaMax:                   b.MaxAge,
			RangeEta:                 ageRange(b),
			Coefficiente:             b.Coefficient,
			PercentualeUsufrutto:     b.UsufructPercent,
			PercentualeNudaProprieta: b.BarePercent,
		})
	}

	RespondWithJSON(w, http.StatusOK, CoefficientsResponse{
		Success:                true,
		Fonte:                  "Agenzia delle Entrate",
		TassoLegalePercentuale: table.LegalRate * 100,
		TassoDiRiserva:         table.FallbackRate,
		Note:                   "Il coefficiente moltiplica l'annualità al tasso legale per ottenere il valore dell'usufrutto",
		Coefficienti:           items,
	})
}

// GetCoefficientByAge обрабатывает GET /api/v1/valuation/coefficient/{age}
func (h *ValuationHandler) GetCoefficientByAge(w http.ResponseWriter, r *http.Request) {
	age, err := strconv.Atoi(chi.URLParam(r, "age"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Età deve essere tra 0 e 100")
		return
	}

	band, err := h.coefficientsUC.ByAge(r.Context(), age)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAge) {
			WriteJSONError(w, http.StatusBadRequest, "Età deve essere tra 0 e 100")
			return
		}
		h.writeUseCaseError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, CoefficientByAgeResponse{
		Success:                  true,
		Eta:                      age,
		Coefficiente:             band.Coefficient,
		PercentualeUsufrutto:     band.UsufructPercent,
		PercentualeNudaProprieta: band.BarePercent,
		RangeEta:                 ageRange(*band),
		Fonte:                    "Agenzia delle Entrate",
	})
}

// GetZones обрабатывает GET /api/v1/valuation/zones/{municipality}
func (h *ValuationHandler) GetZones(w http.ResponseWriter, r *http.Request) {
	municipality := domain.NormalizeMunicipality(chi.URLParam(r, "municipality"))

	zones, err := h.listZonesUC.Execute(r.Context(), municipality)
	if err != nil {
		if errors.Is(err, domain.ErrMunicipalityNotFound) {
			RespondWithJSON(w, http.StatusNotFound, ErrorResponse{
				Error:       fmt.Sprintf("Comune '%s' non trovato nel database OMI", municipality),
				Suggestions: zonesNotFoundSuggestions,
			})
			return
		}
		h.writeUseCaseError(w, r, err)
		return
	}

	items := make([]ZoneDTO, 0, len(zones))
	for _, z := range zones {
		items = append(items, ZoneDTO{Codice: z.Code, Descrizione: z.Link, Fascia: string(z.PriceBand)})
	}

	RespondWithJSON(w, http.StatusOK, ZonesResponse{
		Success:   true,
		Comune:    municipality,
		ZoneCount: len(items),
		Zones:     items,
	})
}

// GetQuickQuote обрабатывает GET /api/v1/valuation/quick-quote?comune=&fascia=&zona=&stato=
func (h *ValuationHandler) GetQuickQuote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	municipality := query.Get("comune")
	if strings.TrimSpace(municipality) == "" {
		WriteJSONError(w, http.StatusBadRequest, "Parametro 'comune' obbligatorio")
		return
	}

	key := domain.QuoteKey{
		Municipality: municipality,
		PriceBand:    domain.PriceBand(strings.ToUpper(strings.TrimSpace(query.Get("fascia")))),
		ZoneCode:     strings.TrimSpace(query.Get("zona")),
		State:        domain.MarketState(strings.ToUpper(strings.TrimSpace(query.Get("stato")))),
	}

	quote, err := h.quickQuoteUC.Execute(r.Context(), key)
	if err != nil {
		var notFound *domain.ReferenceNotFoundError
		if errors.As(err, &notFound) {
			RespondWithJSON(w, http.StatusNotFound, ErrorResponse{
				Error:       fmt.Sprintf("Quotazione non trovata per %s", notFound.Municipality),
				Suggestions: notFound.Suggestions[:2],
			})
			return
		}
		h.writeUseCaseError(w, r, err)
		return
	}

	band := key.PriceBand
	if band == "" {
		band = domain.PriceBandCentral
	}
	RespondWithJSON(w, http.StatusOK, QuickQuoteResponse{
		Success:    true,
		Comune:     domain.NormalizeMunicipality(municipality),
		Fascia:     string(band),
		Quotazione: contracts.NewQuoteDTO(*quote),
	})
}

// writeUseCaseError переводит ошибки use case в HTTP-статусы
func (h *ValuationHandler) writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var notFound *domain.ReferenceNotFoundError
	switch {
	case errors.As(err, &notFound):
		RespondWithJSON(w, http.StatusNotFound, ErrorResponse{
			Error:       notFound.Error(),
			Suggestions: notFound.Suggestions,
		})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidAge):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNonPositiveBareValue):
		WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("Request failed", err, nil)
		RespondWithJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:       "Errore interno",
			Suggestions: internalErrorSuggestions,
		})
	}
}

func ageRange(b domain.UsufructBand) string {
	return fmt.Sprintf("%d-%d", b.MinAge, b.MaxAge)
}
