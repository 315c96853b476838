// Package valuation содержит чистые алгоритмы оценки: приведенная площадь,
// коэффициенты качества, фискальное разделение, оценка сделки и отчет.
// Все таблицы неизменяемы, функции без побочных эффектов.
package valuation

import (
	"fmt"
	"strings"

	"valuation-service/internal/core/domain"
)

// Весовые коэффициенты площадей
const (
	BalconyWeight = 0.25
	TerraceWeight = 0.35
	GardenWeight  = 0.15
	CellarWeight  = 0.50
	AtticWeight   = 0.40
)

// Фиксированные добавки, м² коммерческой площади
const (
	BoxArea     = 25.0
	GarageArea  = 20.0 // posto auto coperto
	ParkingArea = 12.0 // posto auto scoperto
)

// SurfaceParams - сырые площади для нормализации
type SurfaceParams struct {
	Main    float64
	Balcony float64
	Terrace float64
	Garden  float64
	Cellar  float64
	Attic   float64
	HasBox  bool
	Garages int
	Parking int
}

// SurfaceParamsFromInput берет площади из входных данных оценки
func SurfaceParamsFromInput(in domain.PropertyValuationInput) SurfaceParams {
	return SurfaceParams{
		Main:    in.MainSurface,
		Balcony: in.BalconySurface,
		Terrace: in.TerraceSurface,
		Garden:  in.GardenSurface,
		Cellar:  in.CellarSurface,
		Attic:   in.AtticSurface,
		HasBox:  in.HasBox,
		Garages: in.NumGarages,
		Parking: in.NumParking,
	}
}

// NormalizeSurface считает коммерческую площадь.
// Отрицательные значения считаются отсутствующими.
func NormalizeSurface(p SurfaceParams) domain.CommercialSurfaceBreakdown {
	b := domain.CommercialSurfaceBreakdown{
		Main:       p.Main,
		RawBalcony: positive(p.Balcony),
		RawTerrace: positive(p.Terrace),
		RawGarden:  positive(p.Garden),
		RawCellar:  positive(p.Cellar),
		RawAttic:   positive(p.Attic),
	}

	b.Balcony = b.RawBalcony * BalconyWeight
	b.Terrace = b.RawTerrace * TerraceWeight
	b.Garden = b.RawGarden * GardenWeight
	b.Cellar = b.RawCellar * CellarWeight
	b.Attic = b.RawAttic * AtticWeight

	if p.HasBox {
		b.Box = BoxArea
	}
	if p.Garages > 0 {
		b.GarageCount = p.Garages
		b.Garage = float64(p.Garages) * GarageArea
	}
	if p.Parking > 0 {
		b.ParkingCount = p.Parking
		b.Parking = float64(p.Parking) * ParkingArea
	}

	b.Total = b.Main + b.Balcony + b.Terrace + b.Garden + b.Cellar + b.Attic + b.Box + b.Garage + b.Parking
	if b.Main > 0 {
		b.Ratio = b.Total / b.Main
	}
	return b
}

// SurfaceBreakdownText - текстовая расшифровка расчета площади
func SurfaceBreakdownText(b domain.CommercialSurfaceBreakdown) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Superficie Principale: %.0f mq\n", b.Main)

	weighted := []struct {
		label  string
		raw    float64
		weight float64
		value  float64
	}{
		{"Balconi", b.RawBalcony, BalconyWeight, b.Balcony},
		{"Terrazze", b.RawTerrace, TerraceWeight, b.Terrace},
		{"Giardino", b.RawGarden, GardenWeight, b.Garden},
		{"Cantina", b.RawCellar, CellarWeight, b.Cellar},
		{"Soffitta", b.RawAttic, AtticWeight, b.Attic},
	}
	for _, w := range weighted {
		if w.value > 0 {
			fmt.Fprintf(&sb, "%s: %.0f mq × %.0f%% = %.0f mq\n", w.label, w.raw, w.weight*100, w.value)
		}
	}

	if b.Box > 0 {
		fmt.Fprintf(&sb, "Box: %.0f mq commerciali\n", b.Box)
	}
	if b.Garage > 0 {
		fmt.Fprintf(&sb, "Posti auto coperti (%d): %.0f mq commerciali\n", b.GarageCount, b.Garage)
	}
	if b.Parking > 0 {
		fmt.Fprintf(&sb, "Posti auto scoperti (%d): %.0f mq commerciali\n", b.ParkingCount, b.Parking)
	}

	sb.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&sb, "TOTALE SUPERFICIE COMMERCIALE: %.0f mq\n", b.Total)
	fmt.Fprintf(&sb, "Rapporto: %.2fx", b.Ratio)
	return sb.String()
}

func positive(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
