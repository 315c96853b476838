package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
)

// Колонки COPY, порядок совпадает с zoneValues / quotationValues
var (
	zoneColumns = []string{
		"area_territoriale", "regione", "provincia", "comune_istat", "comune_catastale", "sezione",
		"comune_amministrativo", "comune_descrizione", "fascia", "zona_descrizione", "zona_codice", "link_zona",
		"cod_tipologia_prevalente", "descr_tipologia_prevalente", "stato_prevalente", "microzona",
		"semestre", "data_rilevazione",
	}
	quotationColumns = []string{
		"area_territoriale", "regione", "provincia", "comune_istat", "comune_catastale", "sezione",
		"comune_amministrativo", "comune_descrizione", "fascia", "zona_codice", "link_zona",
		"cod_tipologia", "descr_tipologia", "stato", "stato_prevalente",
		"prezzo_min", "prezzo_max", "superficie_normalizzata_compra",
		"locazione_min", "locazione_max", "superficie_normalizzata_loc",
		"semestre", "data_rilevazione",
	}
)

// PostgresOMIImportAdapter пишет пачки выгрузки OMI через COPY
type PostgresOMIImportAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresOMIImportAdapter(pool *pgxpool.Pool) (*PostgresOMIImportAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresOMIImportAdapter{pool: pool}, nil
}

func surveyDate(meta domain.OMIDatasetMeta) (time.Time, error) {
	d, err := time.Parse("2006-01-02", meta.SurveyDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid survey date %q: %w", meta.SurveyDate, err)
	}
	return d, nil
}

// nullable - пустая строка пишется как NULL
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func zoneValues(r domain.OMIZoneRow, semester string, date time.Time) []interface{} {
	return []interface{}{
		nullable(r.TerritorialArea), nullable(r.Region), nullable(r.Province),
		nullable(r.MunicipalityISTAT), nullable(r.MunicipalityCadastral), nullable(r.Section),
		nullable(r.MunicipalityAdmin), r.Municipality, nullable(r.PriceBand), nullable(r.ZoneDescription),
		nullable(r.ZoneCode), nullable(r.ZoneLink),
		nullable(r.PrevailingTypeCode), nullable(r.PrevailingTypeDescr), nullable(r.PrevailingState),
		int32(r.Microzone),
		semester, date,
	}
}

func quotationValues(r domain.OMIQuotationRow, semester string, date time.Time) []interface{} {
	return []interface{}{
		nullable(r.TerritorialArea), nullable(r.Region), nullable(r.Province),
		nullable(r.MunicipalityISTAT), nullable(r.MunicipalityCadastral), nullable(r.Section),
		nullable(r.MunicipalityAdmin), r.Municipality, nullable(r.PriceBand),
		nullable(r.ZoneCode), nullable(r.ZoneLink),
		nullable(r.TypeCode), nullable(r.TypeDescription), nullable(r.State), nullable(r.PrevailingState),
		r.PriceMin, r.PriceMax, nullable(r.PriceSurfaceKind),
		r.RentMin, r.RentMax, nullable(r.RentSurfaceKind),
		semester, date,
	}
}

func (a *PostgresOMIImportAdapter) InsertZones(ctx context.Context, meta domain.OMIDatasetMeta, rows []domain.OMIZoneRow) (int64, error) {
	date, err := surveyDate(meta)
	if err != nil {
		return 0, err
	}
	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, zoneValues(r, meta.Semester, date))
	}
	return a.copyBatch(ctx, string(domain.OMITableZones), zoneColumns, values)
}

func (a *PostgresOMIImportAdapter) InsertQuotations(ctx context.Context, meta domain.OMIDatasetMeta, rows []domain.OMIQuotationRow) (int64, error) {
	date, err := surveyDate(meta)
	if err != nil {
		return 0, err
	}
	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, quotationValues(r, meta.Semester, date))
	}
	return a.copyBatch(ctx, string(domain.OMITableQuotations), quotationColumns, values)
}

// copyBatch выполняет COPY одной пачки в своей транзакции
func (a *PostgresOMIImportAdapter) copyBatch(ctx context.Context, table string, columns []string, values [][]interface{}) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresOMIImportAdapter",
		"method":    "copyBatch",
		"table":     table,
	})

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(values))
	if err != nil {
		repoLogger.Error("Failed to COPY batch", err, port.Fields{"rows": len(values)})
		return 0, fmt.Errorf("failed to copy into %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	repoLogger.Debug("Batch copied", port.Fields{"rows": n})
	return n, nil
}
