package valuation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"valuation-service/internal/core/domain"
)

// LegalRate - ставка и признак резервного значения
type LegalRate struct {
	Rate     float64
	Fallback bool
}

// Assemble собирает результат оценки из уже полученной котировки и ставки:
// площадь, стоимость по котировке, коэффициенты, фискальное разделение на
// скорректированной средней стоимости и, при наличии цены, оценка сделки.
// currentYear задает год для возраста здания, 0 - год из now.
func Assemble(in domain.PropertyValuationInput, quote domain.ReferenceQuote, rate LegalRate, now time.Time, currentYear int) (domain.ValuationResult, error) {
	if currentYear == 0 {
		currentYear = now.Year()
	}

	surface := NormalizeSurface(SurfaceParamsFromInput(in))

	full := domain.ValueRange{
		Min: quote.MinPrice * surface.Total,
		Max: quote.MaxPrice * surface.Total,
		Mid: quote.MidPrice * surface.Total,
	}

	merit := ComputeCoefficients(MeritParamsFromInput(in, currentYear))
	adjusted := full.Scale(merit.Multiplier)

	fiscal, err := ComputeFiscalSplit(adjusted.Mid, in.UsufructuaryAge, rate.Rate)
	if err != nil {
		return domain.ValuationResult{}, fmt.Errorf("fiscal split: %w", err)
	}
	fiscal.FallbackRate = rate.Fallback

	result := domain.ValuationResult{
		ID:            uuid.New(),
		ValuatedAt:    now,
		Input:         in,
		Surface:       surface,
		Quote:         quote,
		Merit:         merit,
		FullValue:     full,
		AdjustedValue: adjusted,
		Fiscal:        fiscal,
	}

	if rate.Fallback {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Tasso legale non disponibile, utilizzato valore di riserva %.2f%%", rate.Rate*100))
	}
	if _, inTable := LookupUsufructBand(in.UsufructuaryAge); !inTable {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Età %d fuori tabella, applicato coefficiente %d", in.UsufructuaryAge, fiscal.Coefficient))
	}

	if in.HasAskingPrice() {
		deal, err := ScoreDeal(in.AskingPrice, fiscal.BareValue)
		if err != nil {
			return domain.ValuationResult{}, fmt.Errorf("deal score: %w", err)
		}
		result.Deal = &deal
	}

	return result, nil
}
