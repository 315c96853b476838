package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
)

// PostgresReferenceAdapter читает котировки и зоны OMI
type PostgresReferenceAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresReferenceAdapter(pool *pgxpool.Pool) (*PostgresReferenceAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresReferenceAdapter{pool: pool}, nil
}

func (a *PostgresReferenceAdapter) FindQuote(ctx context.Context, key domain.QuoteKey) (*domain.ReferenceQuote, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresReferenceAdapter",
		"method":    "FindQuote",
		"comune":    key.Municipality,
		"fascia":    string(key.PriceBand),
		"zona":      key.ZoneCode,
	})

	query, args := buildQuoteQuery(key)

	var (
		minPrice, maxPrice       float64
		zone, zoneLink, semester string
	)
	err := a.pool.QueryRow(ctx, query, args...).Scan(&minPrice, &maxPrice, &zone, &zoneLink, &semester)
	if errors.Is(err, pgx.ErrNoRows) {
		repoLogger.Debug("No OMI quotation found", nil)
		return nil, fmt.Errorf("quotation for %s: %w", key.Municipality, domain.ErrReferenceQuoteNotFound)
	}
	if err != nil {
		repoLogger.Error("Failed to query OMI quotation", err, nil)
		return nil, fmt.Errorf("failed to query OMI quotation: %w", err)
	}

	quote := domain.NewReferenceQuote(minPrice, maxPrice, zone, zoneLink, semester)
	repoLogger.Debug("OMI quotation found", port.Fields{"zona_codice": zone, "prezzo_medio": quote.MidPrice})
	return &quote, nil
}

func (a *PostgresReferenceAdapter) ListZones(ctx context.Context, municipality string) ([]domain.Zone, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresReferenceAdapter",
		"method":    "ListZones",
		"comune":    municipality,
	})

	rows, err := a.pool.Query(ctx, zonesQuery, municipality)
	if err != nil {
		repoLogger.Error("Failed to query OMI zones", err, nil)
		return nil, fmt.Errorf("failed to query OMI zones: %w", err)
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		var z domain.Zone
		var band string
		if err := rows.Scan(&z.Code, &z.Link, &band); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		z.PriceBand = domain.PriceBand(band)
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}

	if len(zones) == 0 {
		return nil, fmt.Errorf("zones for %s: %w", municipality, domain.ErrMunicipalityNotFound)
	}
	repoLogger.Debug("OMI zones found", port.Fields{"count": len(zones)})
	return zones, nil
}
