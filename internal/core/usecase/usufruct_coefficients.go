package usecase

import (
	"context"
	"fmt"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/valuation"
)

// UsufructCoefficientsUseCase - справочная таблица коэффициентов узуфрукта.
// rates может быть nil, тогда используется резервная ставка.
type UsufructCoefficientsUseCase struct {
	rates        port.LegalRatePort
	metrics      port.MetricsPort
	fallbackRate float64
}

func NewUsufructCoefficientsUseCase(rates port.LegalRatePort, metrics port.MetricsPort, fallbackRate float64) *UsufructCoefficientsUseCase {
	if metrics == nil {
		metrics = port.NoopMetrics{}
	}
	if fallbackRate <= 0 {
		fallbackRate = valuation.DefaultLegalRate
	}
	return &UsufructCoefficientsUseCase{rates: rates, metrics: metrics, fallbackRate: fallbackRate}
}

func (uc *UsufructCoefficientsUseCase) List(ctx context.Context) (*domain.UsufructTable, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "ListUsufructCoefficients"})

	rate := resolveLegalRate(ctx, uc.rates, uc.fallbackRate, uc.metrics, logger)
	return &domain.UsufructTable{
		Bands:        valuation.UsufructBands(),
		LegalRate:    rate.Rate,
		FallbackRate: rate.Fallback,
	}, nil
}

func (uc *UsufructCoefficientsUseCase) ByAge(ctx context.Context, age int) (*domain.UsufructBand, error) {
	if age < 0 || age > domain.MaxUsufructAge {
		return nil, fmt.Errorf("age %d: %w", age, domain.ErrInvalidAge)
	}
	band, _ := valuation.LookupUsufructBand(age)
	return &band, nil
}
