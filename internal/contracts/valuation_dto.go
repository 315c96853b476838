package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"valuation-service/internal/constants"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/valuation"
)

// Значения по умолчанию формы оценки
const (
	defaultFloor        = 2
	defaultElevator     = true
	defaultEnergyClass  = "C"
	defaultCondition    = domain.ConditionGood
	defaultBrightness   = domain.BrightnessBright
	defaultView         = domain.ViewExternal
	defaultHeating      = domain.HeatingIndependent
	defaultUsufructKind = domain.UsufructLifetime
)

// ValuationRequestDTO - тело запроса оценки (REST, очередь, файл CLI).
// Необязательные поля - указатели, чтобы отличать "не передано" от нуля.
type ValuationRequestDTO struct {
	Comune     string  `json:"comune"`
	Provincia  *string `json:"provincia,omitempty"`
	Fascia     *string `json:"fascia,omitempty"`
	ZonaCodice *string `json:"zona_codice,omitempty"`

	Superficie         float64  `json:"superficie"`
	SuperficieBalconi  *float64 `json:"superficie_balconi,omitempty"`
	SuperficieTerrazzi *float64 `json:"superficie_terrazzi,omitempty"`
	SuperficieGiardino *float64 `json:"superficie_giardino,omitempty"`
	SuperficieCantina  *float64 `json:"superficie_cantina,omitempty"`
	SuperficieSoffitta *float64 `json:"superficie_soffitta,omitempty"`

	HasBox     bool `json:"has_box,omitempty"`
	NumGarages int  `json:"num_garages,omitempty"`
	NumParking int  `json:"num_parking,omitempty"`

	Piano         *int  `json:"piano,omitempty"`
	HasAscensore  *bool `json:"has_ascensore,omitempty"`
	IsAttico      bool  `json:"is_attico,omitempty"`
	IsUltimoPiano bool  `json:"is_ultimo_piano,omitempty"`
	HasGiardino   bool  `json:"has_giardino,omitempty"`

	StatoConservazione *string `json:"stato_conservazione,omitempty"`
	Luminosita         *string `json:"luminosita,omitempty"`
	Vista              *string `json:"vista,omitempty"`

	AnnoCostruzione      *int    `json:"anno_costruzione,omitempty"`
	AnnoRistrutturazione *int    `json:"anno_ristrutturazione,omitempty"`
	StatoEdificio        *string `json:"stato_edificio,omitempty"`

	TipoRiscaldamento *string `json:"tipo_riscaldamento,omitempty"`
	ClasseEnergetica  *string `json:"classe_energetica,omitempty"`

	EtaUsufruttuario int     `json:"eta_usufruttuario"`
	TipoUsufrutto    *string `json:"tipo_usufrutto,omitempty"`

	PrezzoRichiesto *float64 `json:"prezzo_richiesto,omitempty"`
}

// ValuationRequestedEventDTO - конверт запроса оценки в очереди
type ValuationRequestedEventDTO struct {
	RequestID string          `json:"request_id"`
	Property  json.RawMessage `json:"property"`
}

// ParseValuationRequest проверяет тело по схеме и разбирает его.
// Ошибка схемы возвращается как InvalidInputError.
func ParseValuationRequest(body []byte) (*ValuationRequestDTO, error) {
	if err := ValidateEvent(constants.SchemaValuationRequest, constants.ContractVersion, body); err != nil {
		return nil, &domain.InvalidInputError{Field: "body", Reason: err.Error()}
	}
	var dto ValuationRequestDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &domain.InvalidInputError{Field: "body", Reason: err.Error()}
	}
	return &dto, nil
}

// ParseValuationRequestedEvent разбирает конверт из очереди вместе с вложенным запросом
func ParseValuationRequestedEvent(body []byte) (string, *ValuationRequestDTO, error) {
	if err := ValidateEvent(constants.EventValuationRequested, constants.ContractVersion, body); err != nil {
		return "", nil, err
	}
	var env ValuationRequestedEventDTO
	if err := json.Unmarshal(body, &env); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal valuation request envelope: %w", err)
	}
	dto, err := ParseValuationRequest(env.Property)
	if err != nil {
		return env.RequestID, nil, err
	}
	return env.RequestID, dto, nil
}

// ToDomain переводит запрос во входные данные оценки с умолчаниями формы
func (dto *ValuationRequestDTO) ToDomain() domain.PropertyValuationInput {
	floor := defaultFloor
	if dto.Piano != nil {
		floor = *dto.Piano
	}
	elevator := defaultElevator
	if dto.HasAscensore != nil {
		elevator = *dto.HasAscensore
	}

	opts := []domain.InputOption{
		domain.WithFloor(floor, elevator),
		domain.WithCondition(domain.PropertyCondition(strOr(dto.StatoConservazione, string(defaultCondition)))),
		domain.WithBrightness(domain.Brightness(strOr(dto.Luminosita, string(defaultBrightness)))),
		domain.WithView(domain.ViewType(strOr(dto.Vista, string(defaultView)))),
		domain.WithHeating(domain.HeatingType(strOr(dto.TipoRiscaldamento, string(defaultHeating)))),
		domain.WithEnergyClass(strOr(dto.ClasseEnergetica, defaultEnergyClass)),
		domain.WithUsufructKind(domain.UsufructKind(strOr(dto.TipoUsufrutto, string(defaultUsufructKind)))),
		domain.WithBalcony(floatOr(dto.SuperficieBalconi)),
		domain.WithTerrace(floatOr(dto.SuperficieTerrazzi)),
		domain.WithGarden(floatOr(dto.SuperficieGiardino)),
		domain.WithCellar(floatOr(dto.SuperficieCantina)),
		domain.WithAttic(floatOr(dto.SuperficieSoffitta)),
		domain.WithGarages(dto.NumGarages),
		domain.WithParking(dto.NumParking),
		domain.WithAskingPrice(floatOr(dto.PrezzoRichiesto)),
	}
	if dto.Provincia != nil {
		opts = append(opts, domain.WithProvince(*dto.Provincia))
	}
	if dto.Fascia != nil {
		opts = append(opts, domain.WithPriceBand(domain.PriceBand(*dto.Fascia)))
	}
	if dto.ZonaCodice != nil {
		opts = append(opts, domain.WithZoneCode(*dto.ZonaCodice))
	}
	if dto.StatoEdificio != nil {
		opts = append(opts, domain.WithBuildingCondition(domain.BuildingCondition(*dto.StatoEdificio)))
	}
	if dto.AnnoCostruzione != nil {
		opts = append(opts, domain.WithBuildingYear(*dto.AnnoCostruzione))
	}
	if dto.AnnoRistrutturazione != nil {
		opts = append(opts, domain.WithRenovationYear(*dto.AnnoRistrutturazione))
	}
	if dto.HasBox {
		opts = append(opts, domain.WithBox())
	}
	if dto.IsAttico {
		opts = append(opts, domain.AsAttic())
	}
	if dto.IsUltimoPiano {
		opts = append(opts, domain.AsLastFloor())
	}
	if dto.HasGiardino {
		opts = append(opts, domain.WithPrivateGarden())
	}

	return domain.NewPropertyValuationInput(dto.Comune, dto.Superficie, dto.EtaUsufruttuario, opts...)
}

func strOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// --- Результат ---

type RangeDTO struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Medio float64 `json:"medio"`
}

type SurfaceDTO struct {
	Principale float64 `json:"principale"`
	Balconi    float64 `json:"balconi"`
	Terrazzi   float64 `json:"terrazzi"`
	Giardino   float64 `json:"giardino"`
	Cantina    float64 `json:"cantina"`
	Soffitta   float64 `json:"soffitta"`
	Box        float64 `json:"box"`
	Garage     float64 `json:"garage"`
	PostiAuto  float64 `json:"posti_auto"`
	Totale     float64 `json:"totale"`
	Rapporto   float64 `json:"rapporto"`
	Dettaglio  string  `json:"dettaglio"`
}

type QuoteDTO struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Medio      float64 `json:"medio"`
	ZonaCodice string  `json:"zona_codice,omitempty"`
	LinkZona   string  `json:"link_zona,omitempty"`
	Semestre   string  `json:"semestre,omitempty"`
}

type MeritDTO struct {
	Fattori        map[string]float64 `json:"fattori"`
	Totale         float64            `json:"totale"`
	Moltiplicatore float64            `json:"moltiplicatore"`
}

type FiscalDTO struct {
	TassoLegale              float64 `json:"tasso_legale"`
	TassoDiRiserva           bool    `json:"tasso_di_riserva,omitempty"`
	Coefficiente             int     `json:"coefficiente"`
	Annualita                float64 `json:"annualita"`
	ValoreUsufrutto          float64 `json:"valore_usufrutto"`
	ValoreNudaProprieta      float64 `json:"valore_nuda_proprieta"`
	PercentualeUsufrutto     int     `json:"percentuale_usufrutto"`
	PercentualeNudaProprieta int     `json:"percentuale_nuda_proprieta"`
}

type DealDTO struct {
	Rating                 string  `json:"rating"`
	Stelle                 int     `json:"stelle"`
	Colore                 string  `json:"colore,omitempty"`
	PrezzoRichiesto        float64 `json:"prezzo_richiesto,omitempty"`
	ScostamentoPercentuale float64 `json:"scostamento_percentuale"`
	ScontoPercentuale      float64 `json:"sconto_percentuale"`
	Messaggio              string  `json:"messaggio,omitempty"`
}

// ValuationDTO - полный результат оценки для ответа API и вывода CLI
type ValuationDTO struct {
	ID               string     `json:"id"`
	Comune           string     `json:"comune"`
	Fascia           string     `json:"fascia"`
	ZonaCodice       string     `json:"zona_codice,omitempty"`
	EtaUsufruttuario int        `json:"eta_usufruttuario"`
	Superficie       SurfaceDTO `json:"superficie"`
	Quotazione       QuoteDTO   `json:"quotazione_omi"`
	Coefficienti     MeritDTO   `json:"coefficienti_merito"`
	ValorePieno      RangeDTO   `json:"valore_piena_proprieta"`
	ValoreStimato    RangeDTO   `json:"valore_stimato"`
	ValoreFiscale    FiscalDTO  `json:"valore_fiscale"`
	DealScore        *DealDTO   `json:"deal_score,omitempty"`
	Avvisi           []string   `json:"avvisi,omitempty"`
	ValutatoIl       time.Time  `json:"valutato_il"`
}

// ValuationCompletedEventDTO - событие об успешной оценке
type ValuationCompletedEventDTO struct {
	RequestID             string    `json:"request_id"`
	ValuationID           string    `json:"valuation_id"`
	Comune                string    `json:"comune"`
	ZonaCodice            string    `json:"zona_codice,omitempty"`
	SuperficieCommerciale float64   `json:"superficie_commerciale"`
	Moltiplicatore        float64   `json:"moltiplicatore"`
	ValorePieno           RangeDTO  `json:"valore_pieno"`
	ValoreStimato         RangeDTO  `json:"valore_stimato"`
	ValoreFiscale         FiscalDTO `json:"valore_fiscale"`
	DealScore             *DealDTO  `json:"deal_score,omitempty"`
	Avvisi                []string  `json:"avvisi,omitempty"`
	Report                string    `json:"report"`
	ValutatoIl            time.Time `json:"valutato_il"`
}

// Причины неуспешной оценки в событии
const (
	ReasonNotFound             = "not_found"
	ReasonInvalidInput         = "invalid_input"
	ReasonNonPositiveBareValue = "non_positive_bare_value"
	ReasonError                = "error"
)

// ValuationFailedEventDTO - событие об отклоненной оценке
type ValuationFailedEventDTO struct {
	RequestID   string    `json:"request_id"`
	Error       string    `json:"error"`
	Reason      string    `json:"reason"`
	Suggestions []string  `json:"suggestions,omitempty"`
	FailedAt    time.Time `json:"failed_at"`
}

func toRange(r domain.ValueRange) RangeDTO {
	return RangeDTO{Min: r.Min, Max: r.Max, Medio: r.Mid}
}

func toFiscal(f domain.FiscalSplit) FiscalDTO {
	return FiscalDTO{
		TassoLegale:              f.LegalRate,
		TassoDiRiserva:           f.FallbackRate,
		Coefficiente:             f.Coefficient,
		Annualita:                f.Annuity,
		ValoreUsufrutto:          f.UsufructValue,
		ValoreNudaProprieta:      f.BareValue,
		PercentualeUsufrutto:     f.UsufructPercent,
		PercentualeNudaProprieta: f.BarePercent,
	}
}

func toDeal(d *domain.DealAssessment, askingPrice float64) *DealDTO {
	if d == nil {
		return nil
	}
	return &DealDTO{
		Rating:                 string(d.Tier),
		Stelle:                 d.Stars,
		Colore:                 d.Color,
		PrezzoRichiesto:        askingPrice,
		ScostamentoPercentuale: d.DeviationPercent,
		ScontoPercentuale:      d.DiscountPercent,
		Messaggio:              d.Message,
	}
}

// NewValuationDTO переводит результат в представление API
func NewValuationDTO(r domain.ValuationResult) ValuationDTO {
	factors := make(map[string]float64, len(r.Merit.Adjustments))
	for _, a := range r.Merit.Adjustments {
		factors[string(a.Factor)] = a.Value
	}

	return ValuationDTO{
		ID:               r.ID.String(),
		Comune:           r.Input.Municipality,
		Fascia:           string(r.Input.PriceBand),
		ZonaCodice:       r.Quote.ZoneCode,
		EtaUsufruttuario: r.Input.UsufructuaryAge,
		Superficie: SurfaceDTO{
			Principale: r.Surface.Main,
			Balconi:    r.Surface.Balcony,
			Terrazzi:   r.Surface.Terrace,
			Giardino:   r.Surface.Garden,
			Cantina:    r.Surface.Cellar,
			Soffitta:   r.Surface.Attic,
			Box:        r.Surface.Box,
			Garage:     r.Surface.Garage,
			PostiAuto:  r.Surface.Parking,
			Totale:     r.Surface.Total,
			Rapporto:   r.Surface.Ratio,
			Dettaglio:  valuation.SurfaceBreakdownText(r.Surface),
		},
		Quotazione: NewQuoteDTO(r.Quote),
		Coefficienti: MeritDTO{
			Fattori:        factors,
			Totale:         r.Merit.Total,
			Moltiplicatore: r.Merit.Multiplier,
		},
		ValorePieno:   toRange(r.FullValue),
		ValoreStimato: toRange(r.AdjustedValue),
		ValoreFiscale: toFiscal(r.Fiscal),
		DealScore:     toDeal(r.Deal, r.Input.AskingPrice),
		Avvisi:        r.Warnings,
		ValutatoIl:    r.ValuatedAt,
	}
}

// NewQuoteDTO - котировка OMI для ответа
func NewQuoteDTO(q domain.ReferenceQuote) QuoteDTO {
	return QuoteDTO{
		Min:        q.MinPrice,
		Max:        q.MaxPrice,
		Medio:      q.MidPrice,
		ZonaCodice: q.ZoneCode,
		LinkZona:   q.ZoneLink,
		Semestre:   q.Semester,
	}
}

// NewValuationCompletedEvent собирает событие об успешной оценке
func NewValuationCompletedEvent(requestID string, r domain.ValuationResult, report string) ValuationCompletedEventDTO {
	return ValuationCompletedEventDTO{
		RequestID:             requestID,
		ValuationID:           r.ID.String(),
		Comune:                r.Input.Municipality,
		ZonaCodice:            r.Quote.ZoneCode,
		SuperficieCommerciale: r.Surface.Total,
		Moltiplicatore:        r.Merit.Multiplier,
		ValorePieno:           toRange(r.FullValue),
		ValoreStimato:         toRange(r.AdjustedValue),
		ValoreFiscale:         toFiscal(r.Fiscal),
		DealScore:             toDeal(r.Deal, r.Input.AskingPrice),
		Avvisi:                r.Warnings,
		Report:                report,
		ValutatoIl:            r.ValuatedAt,
	}
}

// NewValuationFailedEvent собирает событие об отклоненной оценке
func NewValuationFailedEvent(requestID string, cause error, at time.Time) ValuationFailedEventDTO {
	event := ValuationFailedEventDTO{
		RequestID: requestID,
		Error:     cause.Error(),
		Reason:    FailureReason(cause),
		FailedAt:  at,
	}
	var notFound *domain.ReferenceNotFoundError
	if errors.As(cause, &notFound) {
		event.Suggestions = notFound.Suggestions
	}
	return event
}

// FailureReason - код причины для события
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrReferenceQuoteNotFound), errors.Is(err, domain.ErrMunicipalityNotFound):
		return ReasonNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidAge):
		return ReasonInvalidInput
	case errors.Is(err, domain.ErrNonPositiveBareValue):
		return ReasonNonPositiveBareValue
	default:
		return ReasonError
	}
}
