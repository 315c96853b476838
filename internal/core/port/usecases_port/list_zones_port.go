package usecases_port

import (
	"context"

	"valuation-service/internal/core/domain"
)

type ListZonesPort interface {
	Execute(ctx context.Context, municipality string) ([]domain.Zone, error)
}
