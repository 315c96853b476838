package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuoteKey - ключ справочника котировок OMI
type QuoteKey struct {
	Municipality string
	PriceBand    PriceBand
	ZoneCode     string // если задан, fascia игнорируется
	Category     PropertyCategory
	State        MarketState
}

// ReferenceQuote - диапазон цены за м² для ключа
type ReferenceQuote struct {
	MinPrice float64
	MaxPrice float64
	MidPrice float64
	ZoneCode string
	ZoneLink string
	Semester string
}

// NewReferenceQuote считает середину диапазона
func NewReferenceQuote(minPrice, maxPrice float64, zoneCode, zoneLink, semester string) ReferenceQuote {
	return ReferenceQuote{
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		MidPrice: (minPrice + maxPrice) / 2,
		ZoneCode: zoneCode,
		ZoneLink: zoneLink,
		Semester: semester,
	}
}

// CommercialSurfaceBreakdown - приведенная (коммерческая) площадь.
// Поля хранят уже взвешенные вклады, кроме Main.
type CommercialSurfaceBreakdown struct {
	Main    float64
	Balcony float64
	Terrace float64
	Garden  float64
	Cellar  float64
	Attic   float64
	Box     float64
	Garage  float64
	Parking float64

	GarageCount  int
	ParkingCount int

	// Исходные площади, нужны для текстовой расшифровки
	RawBalcony float64
	RawTerrace float64
	RawGarden  float64
	RawCellar  float64
	RawAttic   float64

	Total float64
	Ratio float64
}

// MeritFactor - имя фактора в разбивке коэффициентов
type MeritFactor string

const (
	FactorFloor       MeritFactor = "floor"
	FactorCondition   MeritFactor = "condition"
	FactorBrightness  MeritFactor = "brightness"
	FactorView        MeritFactor = "view"
	FactorBuildingAge MeritFactor = "building_age"
	FactorHeating     MeritFactor = "heating"
	FactorEnergyClass MeritFactor = "energy_class"
)

type MeritAdjustment struct {
	Factor MeritFactor
	Value  float64
}

// MeritCoefficientBreakdown - вклады присутствующих факторов в порядке расчета
type MeritCoefficientBreakdown struct {
	Adjustments []MeritAdjustment
	Total       float64
	Multiplier  float64
}

// Get возвращает вклад фактора и признак его наличия
func (b MeritCoefficientBreakdown) Get(f MeritFactor) (float64, bool) {
	for _, a := range b.Adjustments {
		if a.Factor == f {
			return a.Value, true
		}
	}
	return 0, false
}

// UsufructBand - строка таблицы коэффициентов по возрасту узуфруктуария
type UsufructBand struct {
	MinAge          int
	MaxAge          int
	Coefficient     int
	UsufructPercent int
	BarePercent     int
}

func (b UsufructBand) Contains(age int) bool {
	return age >= b.MinAge && age <= b.MaxAge
}

// FiscalSplit - фискальное разделение стоимости
type FiscalSplit struct {
	LegalRate       float64
	FallbackRate    bool
	Coefficient     int
	Annuity         float64
	UsufructValue   float64
	BareValue       float64
	UsufructPercent int
	BarePercent     int
	Band            UsufructBand
}

// DealTier - уровень оценки сделки
type DealTier string

const (
	TierExceptional DealTier = "AFFARE_ECCEZIONALE"
	TierGreat       DealTier = "OTTIMO_AFFARE"
	TierFair        DealTier = "IN_LINEA"
	TierNegotiable  DealTier = "MARGINE_TRATTATIVA"
	TierOvervalued  DealTier = "SOPRAVVALUTATO"
)

type DealAssessment struct {
	Tier             DealTier
	Stars            int
	Color            string
	DeviationPercent float64
	DiscountPercent  float64
	Message          string
}

// ValueRange - стоимость min/max/mid в евро
type ValueRange struct {
	Min float64
	Max float64
	Mid float64
}

// Scale умножает все три значения
func (r ValueRange) Scale(k float64) ValueRange {
	return ValueRange{Min: r.Min * k, Max: r.Max * k, Mid: r.Mid * k}
}

// ValuationResult - полный результат одной оценки
type ValuationResult struct {
	ID         uuid.UUID
	ValuatedAt time.Time

	Input         PropertyValuationInput
	Surface       CommercialSurfaceBreakdown
	Quote         ReferenceQuote
	Merit         MeritCoefficientBreakdown
	FullValue     ValueRange
	AdjustedValue ValueRange
	Fiscal        FiscalSplit
	Deal          *DealAssessment // nil, если цена не указана

	Warnings []string
}

// Zone - зона OMI коммуны
type Zone struct {
	Code      string
	Link      string
	PriceBand PriceBand
}

// UsufructTable - таблица коэффициентов вместе с действующей ставкой
type UsufructTable struct {
	Bands        []UsufructBand
	LegalRate    float64
	FallbackRate bool
}
