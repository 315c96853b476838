package usecase

import (
	"context"
	"fmt"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
)

const defaultImportBatchSize = 1000

// ImportOMIDataUseCase загружает выгрузку OMI (зоны и котировки) пачками.
// Ошибка записи пачки учитывается в статистике, импорт продолжается.
type ImportOMIDataUseCase struct {
	reader  port.OMIDatasetReaderPort
	repo    port.OMIImportRepositoryPort
	metrics port.MetricsPort
}

func NewImportOMIDataUseCase(reader port.OMIDatasetReaderPort, repo port.OMIImportRepositoryPort, metrics port.MetricsPort) *ImportOMIDataUseCase {
	if metrics == nil {
		metrics = port.NoopMetrics{}
	}
	return &ImportOMIDataUseCase{reader: reader, repo: repo, metrics: metrics}
}

func (uc *ImportOMIDataUseCase) Execute(ctx context.Context, req domain.OMIImportRequest) ([]domain.ImportStats, error) {
	if req.BatchSize <= 0 {
		req.BatchSize = defaultImportBatchSize
	}
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "ImportOMIData",
		"semester":   req.Meta.Semester,
		"batch_size": req.BatchSize,
	})
	logger.Info("Use case started", nil)

	if req.ZonesPath == "" && req.QuotationsPath == "" {
		return nil, &domain.InvalidInputError{Field: "files", Reason: "at least one of zones or quotations file is required"}
	}

	var result []domain.ImportStats

	// 1. Зоны
	if req.ZonesPath != "" {
		stats := domain.ImportStats{Table: domain.OMITableZones}
		read, err := uc.reader.ReadZones(ctx, req.ZonesPath, req.BatchSize, func(rows []domain.OMIZoneRow) error {
			n, err := uc.repo.InsertZones(ctx, req.Meta, rows)
			uc.account(&stats, len(rows), n, err, logger)
			return nil
		})
		stats.Read = read
		if err != nil {
			logger.Error("Failed to read zones file", err, port.Fields{"path": req.ZonesPath})
			return result, fmt.Errorf("failed to read zones file %s: %w", req.ZonesPath, err)
		}
		uc.summary(stats, logger)
		result = append(result, stats)
	}

	// 2. Котировки
	if req.QuotationsPath != "" {
		stats := domain.ImportStats{Table: domain.OMITableQuotations}
		read, err := uc.reader.ReadQuotations(ctx, req.QuotationsPath, req.BatchSize, func(rows []domain.OMIQuotationRow) error {
			n, err := uc.repo.InsertQuotations(ctx, req.Meta, rows)
			uc.account(&stats, len(rows), n, err, logger)
			return nil
		})
		stats.Read = read
		if err != nil {
			logger.Error("Failed to read quotations file", err, port.Fields{"path": req.QuotationsPath})
			return result, fmt.Errorf("failed to read quotations file %s: %w", req.QuotationsPath, err)
		}
		uc.summary(stats, logger)
		result = append(result, stats)
	}

	logger.Info("Use case finished", nil)
	return result, nil
}

func (uc *ImportOMIDataUseCase) account(stats *domain.ImportStats, batch int, inserted int64, err error, logger port.LoggerPort) {
	table := string(stats.Table)
	if err != nil {
		logger.Error("Batch insert failed, continuing", err, port.Fields{
			"table":      table,
			"batch_rows": batch,
			"offset":     stats.Imported + stats.Failed,
		})
		stats.Failed += batch
		uc.metrics.AddImportRows(table, "failed", batch)
		return
	}
	stats.Imported += int(inserted)
	uc.metrics.AddImportRows(table, "imported", int(inserted))
}

func (uc *ImportOMIDataUseCase) summary(stats domain.ImportStats, logger port.LoggerPort) {
	fields := port.Fields{
		"table":    string(stats.Table),
		"read":     stats.Read,
		"imported": stats.Imported,
		"failed":   stats.Failed,
	}
	if stats.Failed > 0 {
		logger.Warn("Import finished with failed batches", fields)
		return
	}
	logger.Info("Import finished", fields)
}
