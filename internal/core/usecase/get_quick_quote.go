package usecase

import (
	"context"
	"errors"
	"fmt"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
)

// GetQuickQuoteUseCase отдает только котировку OMI без расчета
type GetQuickQuoteUseCase struct {
	quotes port.ReferencePricePort
}

func NewGetQuickQuoteUseCase(quotes port.ReferencePricePort) *GetQuickQuoteUseCase {
	return &GetQuickQuoteUseCase{quotes: quotes}
}

func (uc *GetQuickQuoteUseCase) Execute(ctx context.Context, key domain.QuoteKey) (*domain.ReferenceQuote, error) {
	key.Municipality = domain.NormalizeMunicipality(key.Municipality)
	if key.PriceBand == "" {
		key.PriceBand = domain.PriceBandCentral
	}
	if key.Category == "" {
		key.Category = domain.CategoryResidential
	}
	if key.State == "" {
		key.State = domain.MarketStateNormal
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":     "GetQuickQuote",
		"municipality": key.Municipality,
		"price_band":   string(key.PriceBand),
	})
	logger.Info("Use case started", nil)

	if key.Municipality == "" {
		return nil, &domain.InvalidInputError{Field: "comune", Reason: "must not be empty"}
	}
	if !key.PriceBand.Valid() {
		return nil, &domain.InvalidInputError{Field: "fascia", Reason: "must be one of B, C, D"}
	}
	if !key.State.Valid() {
		return nil, &domain.InvalidInputError{Field: "stato", Reason: "must be OTTIMO, NORMALE or SCADENTE"}
	}

	quote, err := uc.quotes.FindQuote(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrReferenceQuoteNotFound) {
			return nil, domain.NewReferenceNotFoundError(key)
		}
		logger.Error("Failed to get quote", err, nil)
		return nil, fmt.Errorf("failed to get quick quote: %w", err)
	}

	logger.Info("Use case finished", port.Fields{"zone": quote.ZoneCode})
	return quote, nil
}
