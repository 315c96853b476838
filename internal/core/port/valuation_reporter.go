package port

import (
	"context"

	"valuation-service/internal/core/domain"
)

// ValuationReporterPort публикует итоги пакетных оценок
type ValuationReporterPort interface {
	ReportCompleted(ctx context.Context, requestID string, result domain.ValuationResult, report string) error
	ReportFailed(ctx context.Context, requestID string, cause error) error
}
