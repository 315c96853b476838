package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/valuation"
)

// ValuationSettings - параметры расчета из конфигурации
type ValuationSettings struct {
	FallbackLegalRate float64
	CurrentYear       int // 0 - текущий год по часам
}

// ValuatePropertyUseCase - полный конвейер оценки: проверка входа, котировка,
// ставка, расчет и сборка результата.
type ValuatePropertyUseCase struct {
	quotes   port.ReferencePricePort
	rates    port.LegalRatePort
	metrics  port.MetricsPort
	settings ValuationSettings
	now      func() time.Time
}

// NewValuatePropertyUseCase создает новый экземпляр use case.
func NewValuatePropertyUseCase(quotes port.ReferencePricePort, rates port.LegalRatePort, metrics port.MetricsPort, settings ValuationSettings) *ValuatePropertyUseCase {
	if metrics == nil {
		metrics = port.NoopMetrics{}
	}
	if settings.FallbackLegalRate <= 0 {
		settings.FallbackLegalRate = valuation.DefaultLegalRate
	}
	return &ValuatePropertyUseCase{
		quotes:   quotes,
		rates:    rates,
		metrics:  metrics,
		settings: settings,
		now:      time.Now,
	}
}

func (uc *ValuatePropertyUseCase) Execute(ctx context.Context, input domain.PropertyValuationInput) (*domain.ValuationResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":     "ValuateProperty",
		"municipality": input.Municipality,
		"price_band":   string(input.PriceBand),
		"zone":         input.ZoneCode,
	})
	ucLogger.Info("Use case started", nil)

	now := uc.now()
	started := now
	currentYear := uc.settings.CurrentYear
	if currentYear == 0 {
		currentYear = now.Year()
	}

	if err := input.Validate(currentYear); err != nil {
		ucLogger.Warn("Input rejected", port.Fields{"error": err.Error()})
		uc.metrics.ObserveValuation(port.OutcomeInvalid, time.Since(started))
		return nil, err
	}

	key := input.QuoteKey()
	quote, err := uc.quotes.FindQuote(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrReferenceQuoteNotFound) {
			ucLogger.Warn("Reference quote not found", nil)
			uc.metrics.ObserveValuation(port.OutcomeNotFound, time.Since(started))
			return nil, domain.NewReferenceNotFoundError(key)
		}
		ucLogger.Error("Failed to resolve reference quote", err, nil)
		uc.metrics.ObserveValuation(port.OutcomeError, time.Since(started))
		return nil, fmt.Errorf("failed to resolve reference quote for %s: %w", key.Municipality, err)
	}

	rate := resolveLegalRate(ctx, uc.rates, uc.settings.FallbackLegalRate, uc.metrics, ucLogger)

	result, err := valuation.Assemble(input, *quote, rate, now, currentYear)
	if err != nil {
		ucLogger.Warn("Valuation could not be completed", port.Fields{"error": err.Error()})
		uc.metrics.ObserveValuation(port.OutcomeInvalid, time.Since(started))
		return nil, fmt.Errorf("failed to valuate property in %s: %w", key.Municipality, err)
	}

	if result.Deal != nil {
		uc.metrics.IncDealTier(string(result.Deal.Tier))
	}
	uc.metrics.ObserveValuation(port.OutcomeSuccess, time.Since(started))

	ucLogger.Info("Use case finished", port.Fields{
		"valuation_id":  result.ID.String(),
		"surface_total": result.Surface.Total,
		"bare_value":    result.Fiscal.BareValue,
		"fallback_rate": result.Fiscal.FallbackRate,
	})
	return &result, nil
}
