package port

import (
	"context"

	"valuation-service/internal/core/domain"
)

// ReferencePricePort - справочник котировок OMI.
// FindQuote возвращает ошибку, оборачивающую domain.ErrReferenceQuoteNotFound, если строки нет.
type ReferencePricePort interface {
	FindQuote(ctx context.Context, key domain.QuoteKey) (*domain.ReferenceQuote, error)
	// ListZones возвращает domain.ErrMunicipalityNotFound для неизвестной коммуны
	ListZones(ctx context.Context, municipality string) ([]domain.Zone, error)
}

// LegalRatePort отдает текущую законную ставку (tasso legale).
// Отсутствие значения - domain.ErrLegalRateUnavailable.
type LegalRatePort interface {
	GetLegalRate(ctx context.Context) (float64, error)
}
