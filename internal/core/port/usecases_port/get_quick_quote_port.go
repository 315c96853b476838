package usecases_port

import (
	"context"

	"valuation-service/internal/core/domain"
)

type GetQuickQuotePort interface {
	Execute(ctx context.Context, key domain.QuoteKey) (*domain.ReferenceQuote, error)
}
