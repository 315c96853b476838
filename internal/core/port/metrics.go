package port

import "time"

// Исходы оценки для метрик
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// MetricsPort - метрики бизнес-операций
type MetricsPort interface {
	ObserveValuation(outcome string, duration time.Duration)
	IncDealTier(tier string)
	IncLegalRateFallback()
	AddImportRows(table, status string, n int)
}

// NoopMetrics используется, когда метрики выключены
type NoopMetrics struct{}

func (NoopMetrics) ObserveValuation(string, time.Duration) {}
func (NoopMetrics) IncDealTier(string)                     {}
func (NoopMetrics) IncLegalRateFallback()                  {}
func (NoopMetrics) AddImportRows(string, string, int)      {}
