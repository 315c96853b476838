package usecases_port

import (
	"context"

	"valuation-service/internal/core/domain"
)

// ProcessValuationRequestPort - оценка по запросу из очереди с публикацией итога
type ProcessValuationRequestPort interface {
	Execute(ctx context.Context, requestID string, input domain.PropertyValuationInput) error
}
