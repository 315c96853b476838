package port

import (
	"context"

	"valuation-service/internal/core/domain"
)

// OMIDatasetReaderPort читает файлы выгрузки OMI пачками.
// Обработчик вызывается для каждой пачки, возвращаемое число - прочитанные строки.
type OMIDatasetReaderPort interface {
	ReadZones(ctx context.Context, path string, batchSize int, handle func([]domain.OMIZoneRow) error) (int, error)
	ReadQuotations(ctx context.Context, path string, batchSize int, handle func([]domain.OMIQuotationRow) error) (int, error)
}

// OMIImportRepositoryPort сохраняет пачки строк выгрузки
type OMIImportRepositoryPort interface {
	InsertZones(ctx context.Context, meta domain.OMIDatasetMeta, rows []domain.OMIZoneRow) (int64, error)
	InsertQuotations(ctx context.Context, meta domain.OMIDatasetMeta, rows []domain.OMIQuotationRow) (int64, error)
}
