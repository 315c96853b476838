package usecase

import (
	"context"
	"errors"
	"fmt"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/port/usecases_port"
	"valuation-service/internal/core/valuation"
)

// ProcessValuationRequestUseCase выполняет оценку для сообщения из очереди
// и публикует итог. Ошибки предметной области публикуются как неуспешный итог,
// сообщение при этом подтверждается. Инфраструктурные ошибки возвращаются для повтора.
type ProcessValuationRequestUseCase struct {
	valuate  usecases_port.ValuatePropertyPort
	reporter port.ValuationReporterPort
}

func NewProcessValuationRequestUseCase(valuate usecases_port.ValuatePropertyPort, reporter port.ValuationReporterPort) *ProcessValuationRequestUseCase {
	return &ProcessValuationRequestUseCase{valuate: valuate, reporter: reporter}
}

func (uc *ProcessValuationRequestUseCase) Execute(ctx context.Context, requestID string, input domain.PropertyValuationInput) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "ProcessValuationRequest",
		"request_id": requestID,
	})
	logger.Info("Use case started", nil)

	result, err := uc.valuate.Execute(ctx, input)
	if err != nil {
		if !IsValuationRejection(err) {
			logger.Error("Valuation failed with infrastructure error", err, nil)
			return fmt.Errorf("valuation request %s: %w", requestID, err)
		}

		logger.Warn("Valuation rejected, reporting failure", port.Fields{"reason": err.Error()})
		if repErr := uc.reporter.ReportFailed(ctx, requestID, err); repErr != nil {
			logger.Error("Failed to report rejected valuation", repErr, nil)
			return fmt.Errorf("failed to report rejected valuation %s: %w", requestID, repErr)
		}
		logger.Info("Use case finished: rejection reported", nil)
		return nil
	}

	if err := uc.reporter.ReportCompleted(ctx, requestID, *result, valuation.RenderReport(*result)); err != nil {
		logger.Error("Failed to report completed valuation", err, nil)
		return fmt.Errorf("failed to report valuation %s: %w", requestID, err)
	}

	logger.Info("Use case finished", port.Fields{"valuation_id": result.ID.String()})
	return nil
}

// IsValuationRejection - ошибка относится к данным запроса, повтор не поможет
func IsValuationRejection(err error) bool {
	return errors.Is(err, domain.ErrReferenceQuoteNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInvalidAge) ||
		errors.Is(err, domain.ErrNonPositiveBareValue) ||
		errors.Is(err, domain.ErrMunicipalityNotFound)
}
