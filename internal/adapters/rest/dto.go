package rest

import "valuation-service/internal/contracts"

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Success     bool     `json:"success"`
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CalculateResponse - ответ POST /calculate
type CalculateResponse struct {
	Success     bool                   `json:"success"`
	Valutazione contracts.ValuationDTO `json:"valutazione"`
	Report      string                 `json:"report"`
}

type CoefficientDTO struct {
	EtaMin                   int    `json:"eta_min"`
	EtaMax                   int    `json:"eta_max"`
	RangeEta                 string `json:"range_eta"`
	Coefficiente             int    `json:"coefficiente"`
	PercentualeUsufrutto     int    `json:"percentuale_usufrutto"`
	PercentualeNudaProprieta int    `json:"percentuale_nuda_proprieta"`
}

// CoefficientsResponse - ответ GET /coefficients
type CoefficientsResponse struct {
	Success                bool             `json:"success"`
	Fonte                  string           `json:"fonte"`
	TassoLegalePercentuale float64          `json:"tasso_legale_percentuale"`
	TassoDiRiserva         bool             `json:"tasso_di_riserva"`
	Note                   string           `json:"note"`
	Coefficienti           []CoefficientDTO `json:"coefficienti"`
}

// CoefficientByAgeResponse - ответ GET /coefficient/{age}
type CoefficientByAgeResponse struct {
	Success                  bool   `json:"success"`
	Eta                      int    `json:"eta"`
	Coefficiente             int    `json:"coefficiente"`
	PercentualeUsufrutto     int    `json:"percentuale_usufrutto"`
	PercentualeNudaProprieta int    `json:"percentuale_nuda_proprieta"`
	RangeEta                 string `json:"range_eta"`
	Fonte                    string `json:"fonte"`
}

type ZoneDTO struct {
	Codice      string `json:"codice"`
	Descrizione string `json:"descrizione"`
	Fascia      string `json:"fascia"`
}

// ZonesResponse - ответ GET /zones/{municipality}
type ZonesResponse struct {
	Success   bool      `json:"success"`
	Comune    string    `json:"comune"`
	ZoneCount int       `json:"zone_count"`
	Zones     []ZoneDTO `json:"zones"`
}

// QuickQuoteResponse - ответ GET /quick-quote
type QuickQuoteResponse struct {
	Success    bool               `json:"success"`
	Comune     string             `json:"comune"`
	Fascia     string             `json:"fascia"`
	Quotazione contracts.QuoteDTO `json:"quotazione"`
}
