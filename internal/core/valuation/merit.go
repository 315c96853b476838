package valuation

import "valuation-service/internal/core/domain"

// Ключи специальных этажей в таблице
const (
	floorKeyBasement = -1
	floorKeyTop      = 4
	floorKeyLast     = 98
	floorKeyAttic    = 99
)

// GroundFloorNoGardenPenalty - доп. снижение для первого (нулевого) этажа без сада
const GroundFloorNoGardenPenalty = 0.10

type floorCoefficient struct {
	key             int
	withElevator    float64
	withoutElevator float64
}

// floorTable упорядочена по ключу
var floorTable = []floorCoefficient{
	{key: floorKeyBasement, withElevator: -0.25, withoutElevator: -0.25},
	{key: 0, withElevator: -0.10, withoutElevator: -0.10},
	{key: 1, withElevator: -0.10, withoutElevator: -0.10},
	{key: 2, withElevator: -0.03, withoutElevator: -0.15},
	{key: 3, withElevator: 0.00, withoutElevator: -0.20},
	{key: floorKeyTop, withElevator: 0.05, withoutElevator: -0.30},
	{key: floorKeyLast, withElevator: 0.10, withoutElevator: -0.30},
	{key: floorKeyAttic, withElevator: 0.20, withoutElevator: -0.20},
}

// MeritParams - признаки, влияющие на коэффициенты качества.
// Пустые строки и нулевой год означают "не указано".
type MeritParams struct {
	Floor       int
	HasElevator bool
	IsAttic     bool
	IsLastFloor bool
	HasGarden   bool

	Condition  domain.PropertyCondition
	Brightness domain.Brightness
	View       domain.ViewType

	BuildingYear      int
	CurrentYear       int
	BuildingCondition domain.BuildingCondition

	Heating     domain.HeatingType
	EnergyClass string
}

// MeritParamsFromInput собирает параметры из входных данных и текущего года
func MeritParamsFromInput(in domain.PropertyValuationInput, currentYear int) MeritParams {
	return MeritParams{
		Floor:             in.Floor,
		HasElevator:       in.HasElevator,
		IsAttic:           in.IsAttic,
		IsLastFloor:       in.IsLastFloor,
		HasGarden:         in.HasGarden,
		Condition:         in.Condition,
		Brightness:        in.Brightness,
		View:              in.View,
		BuildingYear:      in.BuildingYear,
		CurrentYear:       currentYear,
		BuildingCondition: in.BuildingCondition,
		Heating:           in.Heating,
		EnergyClass:       in.EnergyClass,
	}
}

// ComputeCoefficients суммирует вклады факторов.
// Этаж присутствует всегда, остальные факторы только если указаны.
func ComputeCoefficients(p MeritParams) domain.MeritCoefficientBreakdown {
	adjustments := make([]domain.MeritAdjustment, 0, 7)
	add := func(f domain.MeritFactor, v float64) {
		adjustments = append(adjustments, domain.MeritAdjustment{Factor: f, Value: v})
	}

	add(domain.FactorFloor, FloorCoefficient(p.Floor, p.HasElevator, p.IsAttic, p.IsLastFloor, p.HasGarden))

	if p.Condition != "" {
		add(domain.FactorCondition, ConditionCoefficient(p.Condition))
	}
	if p.Brightness != "" {
		add(domain.FactorBrightness, BrightnessCoefficient(p.Brightness))
	}
	if p.View != "" {
		add(domain.FactorView, ViewCoefficient(p.View))
	}
	if p.BuildingYear != 0 {
		add(domain.FactorBuildingAge, BuildingAgeCoefficient(p.CurrentYear-p.BuildingYear, p.BuildingCondition))
	}
	if p.Heating != "" {
		add(domain.FactorHeating, HeatingCoefficient(p.Heating))
	}
	if p.EnergyClass != "" {
		add(domain.FactorEnergyClass, EnergyClassCoefficient(p.EnergyClass))
	}

	var total float64
	for _, a := range adjustments {
		total += a.Value
	}

	return domain.MeritCoefficientBreakdown{
		Adjustments: adjustments,
		Total:       total,
		Multiplier:  1 + total,
	}
}

// FloorKey выбирает строку таблицы этажей: мансарда, затем последний этаж,
// затем подвал (<= -1), затем 4 и выше, иначе сам номер этажа.
func FloorKey(floor int, isAttic, isLastFloor bool) int {
	switch {
	case isAttic:
		return floorKeyAttic
	case isLastFloor:
		return floorKeyLast
	case floor <= floorKeyBasement:
		return floorKeyBasement
	case floor >= floorKeyTop:
		return floorKeyTop
	default:
		return floor
	}
}

// FloorCoefficient - коэффициент этажа с учетом лифта и штрафа за нулевой этаж без сада
func FloorCoefficient(floor int, hasElevator, isAttic, isLastFloor, hasGarden bool) float64 {
	key := FloorKey(floor, isAttic, isLastFloor)

	var coeff float64
	for _, row := range floorTable {
		if row.key != key {
			continue
		}
		if hasElevator {
			coeff = row.withElevator
		} else {
			coeff = row.withoutElevator
		}
		break
	}

	if floor == 0 && !hasGarden {
		coeff -= GroundFloorNoGardenPenalty
	}
	return coeff
}

func ConditionCoefficient(c domain.PropertyCondition) float64 {
	switch c {
	case domain.ConditionToRenovate:
		return -0.10
	case domain.ConditionGood:
		return 0.00
	case domain.ConditionRenovated:
		return 0.05
	case domain.ConditionFinelyRenovated, domain.ConditionNewBuild:
		return 0.10
	default:
		return 0
	}
}

func BrightnessCoefficient(b domain.Brightness) float64 {
	switch b {
	case domain.BrightnessVeryBright:
		return 0.10
	case domain.BrightnessBright:
		return 0.05
	case domain.BrightnessMedium:
		return 0.00
	case domain.BrightnessDim:
		return -0.05
	default:
		return 0
	}
}

func ViewCoefficient(v domain.ViewType) float64 {
	switch v {
	case domain.ViewPanoramic:
		return 0.10
	case domain.ViewExternal:
		return 0.05
	case domain.ViewMixed:
		return 0.00
	case domain.ViewInternal:
		return -0.05
	case domain.ViewFullyInternal:
		return -0.10
	default:
		return 0
	}
}

// BuildingAgeCoefficient: возраст здания <= 20, <= 40 или старше,
// в паре с общим состоянием здания
func BuildingAgeCoefficient(age int, c domain.BuildingCondition) float64 {
	switch {
	case age <= 20:
		switch c {
		case domain.BuildingPoor:
			return -0.05
		default:
			return 0
		}
	case age <= 40:
		switch c {
		case domain.BuildingExcellent:
			return 0.05
		case domain.BuildingPoor:
			return -0.10
		default:
			return 0
		}
	default:
		switch c {
		case domain.BuildingExcellent:
			return 0.10
		case domain.BuildingPoor:
			return -0.15
		default:
			return 0
		}
	}
}

func HeatingCoefficient(h domain.HeatingType) float64 {
	switch h {
	case domain.HeatingIndependent:
		return 0.05
	case domain.HeatingCentralMetered:
		return 0.02
	case domain.HeatingCentral:
		return 0.00
	case domain.HeatingNone:
		return -0.05
	default:
		return 0
	}
}

// EnergyClassCoefficient не зависит от регистра, подчеркивания игнорируются
func EnergyClassCoefficient(class string) float64 {
	switch domain.NormalizeEnergyClass(class) {
	case "A4+":
		return 0.15
	case "A4":
		return 0.12
	case "A3":
		return 0.10
	case "A2":
		return 0.08
	case "A1":
		return 0.05
	case "B":
		return 0.03
	case "C":
		return 0.00
	case "D":
		return -0.03
	case "E":
		return -0.05
	case "F":
		return -0.08
	case "G":
		return -0.10
	default:
		return 0
	}
}
