package domain

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Границы приема, как в форме оценки
const (
	MaxMainSurface  = 2000.0
	MinFloor        = -1
	MaxFloor        = 50
	MinBuildingYear = 1800
	MinRenovation   = 1900
	MaxUsufructAge  = 100
	MaxProvinceCode = 2
	MinMunicipality = 2
	MaxMunicipality = 100
)

// PropertyValuationInput - входные данные одной оценки.
// Значение копируется, ядро его не изменяет.
type PropertyValuationInput struct {
	// Локализация
	Municipality string
	Province     string
	PriceBand    PriceBand
	ZoneCode     string

	// Площади, м². Ноль означает "нет"
	MainSurface    float64
	BalconySurface float64
	TerraceSurface float64
	GardenSurface  float64
	CellarSurface  float64
	AtticSurface   float64

	// Принадлежности
	HasBox     bool
	NumGarages int
	NumParking int

	// Этаж
	Floor       int
	HasElevator bool
	IsAttic     bool
	IsLastFloor bool
	HasGarden   bool

	// Качественные признаки, пустая строка - не указано
	Condition  PropertyCondition
	Brightness Brightness
	View       ViewType

	// Здание
	BuildingYear      int
	RenovationYear    int
	BuildingCondition BuildingCondition

	Heating     HeatingType
	EnergyClass string

	// Узуфрукт
	UsufructuaryAge int
	UsufructKind    UsufructKind

	// Запрашиваемая цена, 0 - не указана
	AskingPrice float64
}

// InputOption - опция для конструктора входных данных
type InputOption func(*PropertyValuationInput)

// NewPropertyValuationInput создает входные данные с обязательными полями.
// По умолчанию: fascia B, здание "normale", пожизненный узуфрукт.
func NewPropertyValuationInput(municipality string, mainSurface float64, usufructuaryAge int, opts ...InputOption) PropertyValuationInput {
	in := PropertyValuationInput{
		Municipality:      NormalizeMunicipality(municipality),
		PriceBand:         PriceBandCentral,
		MainSurface:       mainSurface,
		BuildingCondition: BuildingNormal,
		UsufructuaryAge:   usufructuaryAge,
		UsufructKind:      UsufructLifetime,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

func WithProvince(code string) InputOption {
	return func(in *PropertyValuationInput) { in.Province = strings.ToUpper(strings.TrimSpace(code)) }
}

func WithPriceBand(band PriceBand) InputOption {
	return func(in *PropertyValuationInput) { in.PriceBand = PriceBand(strings.ToUpper(string(band))) }
}

func WithZoneCode(zone string) InputOption {
	return func(in *PropertyValuationInput) { in.ZoneCode = strings.TrimSpace(zone) }
}

func WithBalcony(area float64) InputOption {
	return func(in *PropertyValuationInput) { in.BalconySurface = area }
}

func WithTerrace(area float64) InputOption {
	return func(in *PropertyValuationInput) { in.TerraceSurface = area }
}

func WithGarden(area float64) InputOption {
	return func(in *PropertyValuationInput) { in.GardenSurface = area }
}

func WithCellar(area float64) InputOption {
	return func(in *PropertyValuationInput) { in.CellarSurface = area }
}

func WithAttic(area float64) InputOption {
	return func(in *PropertyValuationInput) { in.AtticSurface = area }
}

func WithBox() InputOption {
	return func(in *PropertyValuationInput) { in.HasBox = true }
}

func WithGarages(n int) InputOption {
	return func(in *PropertyValuationInput) { in.NumGarages = n }
}

func WithParking(n int) InputOption {
	return func(in *PropertyValuationInput) { in.NumParking = n }
}

// WithFloor задает этаж и наличие лифта
func WithFloor(floor int, hasElevator bool) InputOption {
	return func(in *PropertyValuationInput) {
		in.Floor = floor
		in.HasElevator = hasElevator
	}
}

func AsAttic() InputOption {
	return func(in *PropertyValuationInput) { in.IsAttic = true }
}

func AsLastFloor() InputOption {
	return func(in *PropertyValuationInput) { in.IsLastFloor = true }
}

func WithPrivateGarden() InputOption {
	return func(in *PropertyValuationInput) { in.HasGarden = true }
}

func WithCondition(c PropertyCondition) InputOption {
	return func(in *PropertyValuationInput) { in.Condition = c }
}

func WithBrightness(b Brightness) InputOption {
	return func(in *PropertyValuationInput) { in.Brightness = b }
}

func WithView(v ViewType) InputOption {
	return func(in *PropertyValuationInput) { in.View = v }
}

func WithBuildingYear(year int) InputOption {
	return func(in *PropertyValuationInput) { in.BuildingYear = year }
}

func WithRenovationYear(year int) InputOption {
	return func(in *PropertyValuationInput) { in.RenovationYear = year }
}

func WithBuildingCondition(c BuildingCondition) InputOption {
	return func(in *PropertyValuationInput) { in.BuildingCondition = c }
}

func WithHeating(h HeatingType) InputOption {
	return func(in *PropertyValuationInput) { in.Heating = h }
}

func WithEnergyClass(class string) InputOption {
	return func(in *PropertyValuationInput) { in.EnergyClass = class }
}

func WithUsufructKind(k UsufructKind) InputOption {
	return func(in *PropertyValuationInput) { in.UsufructKind = k }
}

func WithAskingPrice(price float64) InputOption {
	return func(in *PropertyValuationInput) { in.AskingPrice = price }
}

// HasAskingPrice - указана ли цена продавца
func (in PropertyValuationInput) HasAskingPrice() bool {
	return in.AskingPrice > 0
}

// QuoteKey - ключ поиска котировки для этих данных
func (in PropertyValuationInput) QuoteKey() QuoteKey {
	return QuoteKey{
		Municipality: in.Municipality,
		PriceBand:    in.PriceBand,
		ZoneCode:     in.ZoneCode,
		Category:     CategoryResidential,
		State:        MarketStateNormal,
	}
}

// Validate проверяет числовые диапазоны до запуска расчета.
// Неизвестные значения перечислений ошибкой не считаются: ядро дает им нулевой вклад.
func (in PropertyValuationInput) Validate(currentYear int) error {
	n := utf8.RuneCountInString(in.Municipality)
	if n < MinMunicipality || n > MaxMunicipality {
		return invalid("comune", "length must be between %d and %d characters", MinMunicipality, MaxMunicipality)
	}
	if utf8.RuneCountInString(in.Province) > MaxProvinceCode {
		return invalid("provincia", "must be at most %d characters", MaxProvinceCode)
	}
	if !in.PriceBand.Valid() {
		return invalid("fascia", "must be one of B, C, D, got %q", in.PriceBand)
	}
	if in.MainSurface <= 0 || in.MainSurface > MaxMainSurface {
		return invalid("superficie", "must be greater than 0 and at most %.0f", MaxMainSurface)
	}
	for field, area := range map[string]float64{
		"superficie_balconi":  in.BalconySurface,
		"superficie_terrazzi": in.TerraceSurface,
		"superficie_giardino": in.GardenSurface,
		"superficie_cantina":  in.CellarSurface,
		"superficie_soffitta": in.AtticSurface,
	} {
		if area < 0 {
			return invalid(field, "must not be negative")
		}
	}
	if in.NumGarages < 0 {
		return invalid("num_garages", "must not be negative")
	}
	if in.NumParking < 0 {
		return invalid("num_parking", "must not be negative")
	}
	if in.Floor < MinFloor || in.Floor > MaxFloor {
		return invalid("piano", "must be between %d and %d", MinFloor, MaxFloor)
	}
	if in.BuildingYear != 0 && (in.BuildingYear < MinBuildingYear || in.BuildingYear > currentYear) {
		return invalid("anno_costruzione", "must be between %d and %d", MinBuildingYear, currentYear)
	}
	if in.RenovationYear != 0 && (in.RenovationYear < MinRenovation || in.RenovationYear > currentYear) {
		return invalid("anno_ristrutturazione", "must be between %d and %d", MinRenovation, currentYear)
	}
	if in.UsufructuaryAge < 0 || in.UsufructuaryAge > MaxUsufructAge {
		return invalid("eta_usufruttuario", "must be between 0 and %d", MaxUsufructAge)
	}
	if !in.UsufructKind.Valid() {
		return invalid("tipo_usufrutto", "must be vitalizio or temporaneo, got %q", in.UsufructKind)
	}
	if in.AskingPrice < 0 {
		return invalid("prezzo_richiesto", "must be greater than 0")
	}
	return nil
}

// NormalizeMunicipality - имя коммуны в верхнем регистре без крайних пробелов
func NormalizeMunicipality(name string) string {
	return cases.Upper(language.Italian).String(strings.TrimSpace(name))
}
