// Package omicsv читает выгрузки Agenzia delle Entrate OMI: файлы *_ZONE.csv и *_VALORI.csv.
// Формат: разделитель ';', одна описательная строка перед заголовком,
// пустая колонка в конце строки, десятичная запятая.
package omicsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"valuation-service/internal/core/domain"
)

// Reader реализует port.OMIDatasetReaderPort
type Reader struct {
	open func(path string) (io.ReadCloser, error)
}

func NewReader() *Reader {
	return &Reader{open: func(path string) (io.ReadCloser, error) { return os.Open(path) }}
}

// header - индексы колонок по имени из строки заголовка
type header map[string]int

func (h header) get(record []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(record) {
		return ""
	}
	return cleanString(record[i])
}

func (h header) require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// cleanString убирает пробелы и одинарные кавычки по краям
func cleanString(s string) string {
	return strings.Trim(strings.TrimSpace(s), "'")
}

// parseDecimal: "1.234,5" не встречается в OMI, только "1234,5"; пустое или мусор - nil
func parseDecimal(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f := parseDecimal(s); f != nil {
		return int(*f)
	}
	return 0
}

// scan пропускает описательную строку, читает заголовок и отдает записи пачками
func (r *Reader) scan(ctx context.Context, path string, batchSize int, required []string, emit func(header, [][]string) error) (int, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	f, err := r.open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	if _, err := cr.Read(); err != nil {
		return 0, fmt.Errorf("failed to read description line: %w", err)
	}
	cols, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	h := make(header, len(cols))
	for i, c := range cols {
		name := strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		if name != "" {
			h[name] = i
		}
	}
	if err := h.require(required...); err != nil {
		return 0, err
	}

	total := 0
	batch := make([][]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := emit(h, batch)
		batch = make([][]string, 0, batchSize)
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, fmt.Errorf("line %d: %w", total+3, err)
		}
		if isBlank(record) {
			continue
		}
		batch = append(batch, record)
		total++
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var zoneRequired = []string{"Comune_descrizione", "Fascia", "Zona"}

// ReadZones читает файл зон
func (r *Reader) ReadZones(ctx context.Context, path string, batchSize int, handle func([]domain.OMIZoneRow) error) (int, error) {
	return r.scan(ctx, path, batchSize, zoneRequired, func(h header, records [][]string) error {
		rows := make([]domain.OMIZoneRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, domain.OMIZoneRow{
				TerritorialArea:       h.get(rec, "Area_territoriale"),
				Region:                h.get(rec, "Regione"),
				Province:              h.get(rec, "Prov"),
				MunicipalityISTAT:     h.get(rec, "Comune_ISTAT"),
				MunicipalityCadastral: h.get(rec, "Comune_cat"),
				Section:               h.get(rec, "Sez"),
				MunicipalityAdmin:     h.get(rec, "Comune_amm"),
				Municipality:          h.get(rec, "Comune_descrizione"),
				PriceBand:             h.get(rec, "Fascia"),
				ZoneDescription:       h.get(rec, "Zona_Descr"),
				ZoneCode:              h.get(rec, "Zona"),
				ZoneLink:              h.get(rec, "LinkZona"),
				PrevailingTypeCode:    h.get(rec, "Cod_tip_prev"),
				PrevailingTypeDescr:   h.get(rec, "Descr_tip_prev"),
				PrevailingState:       h.get(rec, "Stato_prev"),
				Microzone:             parseInt(h.get(rec, "Microzona")),
			})
		}
		return handle(rows)
	})
}

var quotationRequired = []string{"Comune_descrizione", "Fascia", "Zona", "Cod_Tip", "Stato", "Compr_min", "Compr_max"}

// ReadQuotations читает файл котировок
func (r *Reader) ReadQuotations(ctx context.Context, path string, batchSize int, handle func([]domain.OMIQuotationRow) error) (int, error) {
	return r.scan(ctx, path, batchSize, quotationRequired, func(h header, records [][]string) error {
		rows := make([]domain.OMIQuotationRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, domain.OMIQuotationRow{
				TerritorialArea:       h.get(rec, "Area_territoriale"),
				Region:                h.get(rec, "Regione"),
				Province:              h.get(rec, "Prov"),
				MunicipalityISTAT:     h.get(rec, "Comune_ISTAT"),
				MunicipalityCadastral: h.get(rec, "Comune_cat"),
				Section:               h.get(rec, "Sez"),
				MunicipalityAdmin:     h.get(rec, "Comune_amm"),
				Municipality:          h.get(rec, "Comune_descrizione"),
				PriceBand:             h.get(rec, "Fascia"),
				ZoneCode:              h.get(rec, "Zona"),
				ZoneLink:              h.get(rec, "LinkZona"),
				TypeCode:              h.get(rec, "Cod_Tip"),
				TypeDescription:       h.get(rec, "Descr_Tipologia"),
				State:                 h.get(rec, "Stato"),
				PrevailingState:       h.get(rec, "Stato_prev"),
				PriceMin:              parseDecimal(h.get(rec, "Compr_min")),
				PriceMax:              parseDecimal(h.get(rec, "Compr_max")),
				PriceSurfaceKind:      h.get(rec, "Sup_NL_compr"),
				RentMin:               parseDecimal(h.get(rec, "Loc_min")),
				RentMax:               parseDecimal(h.get(rec, "Loc_max")),
				RentSurfaceKind:       h.get(rec, "Sup_NL_loc"),
			})
		}
		return handle(rows)
	})
}
