package usecase

import (
	"context"

	"valuation-service/internal/core/port"
	"valuation-service/internal/core/valuation"
)

// resolveLegalRate берет ставку из справочника, при недоступности - резервную.
// Ошибка справочника не прерывает оценку, а только помечается в результате.
func resolveLegalRate(ctx context.Context, rates port.LegalRatePort, fallback float64, metrics port.MetricsPort, logger port.LoggerPort) valuation.LegalRate {
	if rates == nil {
		metrics.IncLegalRateFallback()
		return valuation.LegalRate{Rate: fallback, Fallback: true}
	}

	rate, err := rates.GetLegalRate(ctx)
	if err != nil || rate <= 0 {
		logger.Warn("Legal rate unavailable, using fallback", port.Fields{
			"fallback_rate": fallback,
			"reason":        errString(err),
		})
		metrics.IncLegalRateFallback()
		return valuation.LegalRate{Rate: fallback, Fallback: true}
	}
	return valuation.LegalRate{Rate: rate}
}

func errString(err error) string {
	if err == nil {
		return "non-positive value"
	}
	return err.Error()
}
