package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"valuation-service/internal/core/domain"
)

const legalRateKey = "tasso_legale_corrente"

// PostgresSettingsAdapter читает параметры из omi_settings
type PostgresSettingsAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresSettingsAdapter(pool *pgxpool.Pool) (*PostgresSettingsAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresSettingsAdapter{pool: pool}, nil
}

// GetLegalRate: нет строки или значение <= 0 - ErrLegalRateUnavailable
func (a *PostgresSettingsAdapter) GetLegalRate(ctx context.Context) (float64, error) {
	var rate float64
	err := a.pool.QueryRow(ctx, `SELECT valore FROM omi_settings WHERE chiave = $1`, legalRateKey).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrLegalRateUnavailable
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrLegalRateUnavailable, err)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%w: non-positive value %v", domain.ErrLegalRateUnavailable, rate)
	}
	return rate, nil
}
