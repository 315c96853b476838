package usecase

import (
	"context"
	"fmt"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
)

type ListZonesUseCase struct {
	quotes port.ReferencePricePort
}

func NewListZonesUseCase(quotes port.ReferencePricePort) *ListZonesUseCase {
	return &ListZonesUseCase{quotes: quotes}
}

func (uc *ListZonesUseCase) Execute(ctx context.Context, municipality string) ([]domain.Zone, error) {
	municipality = domain.NormalizeMunicipality(municipality)
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":     "ListZones",
		"municipality": municipality,
	})
	logger.Info("Use case started", nil)

	zones, err := uc.quotes.ListZones(ctx, municipality)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones for %s: %w", municipality, err)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("%s: %w", municipality, domain.ErrMunicipalityNotFound)
	}

	logger.Info("Use case finished", port.Fields{"zones": len(zones)})
	return zones, nil
}
