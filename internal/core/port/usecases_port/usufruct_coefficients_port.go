package usecases_port

import (
	"context"

	"valuation-service/internal/core/domain"
)

type UsufructCoefficientsPort interface {
	List(ctx context.Context) (*domain.UsufructTable, error)
	ByAge(ctx context.Context, age int) (*domain.UsufructBand, error)
}
