package usecases_port

import (
	"context"

	"valuation-service/internal/core/domain"
)

type ImportOMIDataPort interface {
	Execute(ctx context.Context, req domain.OMIImportRequest) ([]domain.ImportStats, error)
}
