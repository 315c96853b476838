package usecases_port

import (
	"context"

	"valuation-service/internal/core/domain"
)

type ValuatePropertyPort interface {
	Execute(ctx context.Context, input domain.PropertyValuationInput) (*domain.ValuationResult, error)
}
