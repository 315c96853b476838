package domain

// Метаданные выгрузки OMI, проставляются каждой строке импорта
type OMIDatasetMeta struct {
	Semester   string // "2025/1"
	SurveyDate string // "2025-01-15"
}

// OMIZoneRow - строка файла зон (*_ZONE.csv)
type OMIZoneRow struct {
	TerritorialArea       string
	Region                string
	Province              string
	MunicipalityISTAT     string
	MunicipalityCadastral string
	Section               string
	MunicipalityAdmin     string
	Municipality          string
	PriceBand             string
	ZoneDescription       string
	ZoneCode              string
	ZoneLink              string
	PrevailingTypeCode    string
	PrevailingTypeDescr   string
	PrevailingState       string
	Microzone             int
}

// OMIQuotationRow - строка файла котировок (*_VALORI.csv).
// Пустые цены в файле хранятся как nil.
type OMIQuotationRow struct {
	TerritorialArea       string
	Region                string
	Province              string
	MunicipalityISTAT     string
	MunicipalityCadastral string
	Section               string
	MunicipalityAdmin     string
	Municipality          string
	PriceBand             string
	ZoneCode              string
	ZoneLink              string
	TypeCode              string
	TypeDescription       string
	State                 string
	PrevailingState       string
	PriceMin              *float64
	PriceMax              *float64
	PriceSurfaceKind      string
	RentMin               *float64
	RentMax               *float64
	RentSurfaceKind       string
}

// OMITable - целевая таблица импорта
type OMITable string

const (
	OMITableZones      OMITable = "omi_zones"
	OMITableQuotations OMITable = "omi_quotations"
)

// ImportStats - итог импорта одной таблицы
type ImportStats struct {
	Table    OMITable
	Read     int
	Imported int
	Failed   int
}

// OMIImportRequest - пути к файлам выгрузки; пустой путь пропускается
type OMIImportRequest struct {
	ZonesPath      string
	QuotationsPath string
	Meta           OMIDatasetMeta
	BatchSize      int
}
