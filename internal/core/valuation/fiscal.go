package valuation

import (
	"fmt"

	"valuation-service/internal/core/domain"
)

// DefaultLegalRate - ставка на случай, если справочник недоступен
const DefaultLegalRate = 0.025

// usufructTable - пожизненный узуфрукт, границы включительно, покрывает 0..99 без пропусков
var usufructTable = []domain.UsufructBand{
	{MinAge: 0, MaxAge: 20, Coefficient: 38, UsufructPercent: 95, BarePercent: 5},
	{MinAge: 21, MaxAge: 30, Coefficient: 36, UsufructPercent: 90, BarePercent: 10},
	{MinAge: 31, MaxAge: 40, Coefficient: 34, UsufructPercent: 85, BarePercent: 15},
	{MinAge: 41, MaxAge: 45, Coefficient: 32, UsufructPercent: 80, BarePercent: 20},
	{MinAge: 46, MaxAge: 50, Coefficient: 30, UsufructPercent: 75, BarePercent: 25},
	{MinAge: 51, MaxAge: 53, Coefficient: 28, UsufructPercent: 70, BarePercent: 30},
	{MinAge: 54, MaxAge: 56, Coefficient: 26, UsufructPercent: 65, BarePercent: 35},
	{MinAge: 57, MaxAge: 60, Coefficient: 24, UsufructPercent: 60, BarePercent: 40},
	{MinAge: 61, MaxAge: 63, Coefficient: 22, UsufructPercent: 55, BarePercent: 45},
	{MinAge: 64, MaxAge: 66, Coefficient: 20, UsufructPercent: 50, BarePercent: 50},
	{MinAge: 67, MaxAge: 69, Coefficient: 18, UsufructPercent: 45, BarePercent: 55},
	{MinAge: 70, MaxAge: 72, Coefficient: 16, UsufructPercent: 40, BarePercent: 60},
	{MinAge: 73, MaxAge: 75, Coefficient: 14, UsufructPercent: 35, BarePercent: 65},
	{MinAge: 76, MaxAge: 78, Coefficient: 12, UsufructPercent: 30, BarePercent: 70},
	{MinAge: 79, MaxAge: 82, Coefficient: 10, UsufructPercent: 25, BarePercent: 75},
	{MinAge: 83, MaxAge: 86, Coefficient: 8, UsufructPercent: 20, BarePercent: 80},
	{MinAge: 87, MaxAge: 92, Coefficient: 6, UsufructPercent: 15, BarePercent: 85},
	{MinAge: 93, MaxAge: 99, Coefficient: 4, UsufructPercent: 10, BarePercent: 90},
}

// fallbackBand применяется к возрасту вне таблицы
var fallbackBand = domain.UsufructBand{MinAge: 100, MaxAge: domain.MaxUsufructAge, Coefficient: 4, UsufructPercent: 10, BarePercent: 90}

// UsufructBands возвращает копию таблицы коэффициентов
func UsufructBands() []domain.UsufructBand {
	out := make([]domain.UsufructBand, len(usufructTable))
	copy(out, usufructTable)
	return out
}

// LookupUsufructBand ищет строку таблицы для возраста.
// Второе значение false, если применена резервная строка.
func LookupUsufructBand(age int) (domain.UsufructBand, bool) {
	for _, band := range usufructTable {
		if band.Contains(age) {
			return band, true
		}
	}
	return fallbackBand, false
}

// ComputeFiscalSplit делит полную стоимость на узуфрукт и голую собственность:
// annuity = full × rate, usufruct = annuity × coefficient, bare = full - usufruct.
func ComputeFiscalSplit(fullValue float64, usufructuaryAge int, legalRate float64) (domain.FiscalSplit, error) {
	if fullValue <= 0 {
		return domain.FiscalSplit{}, fmt.Errorf("full ownership value %.2f: %w", fullValue, domain.ErrInvalidInput)
	}
	if usufructuaryAge < 0 || usufructuaryAge > domain.MaxUsufructAge {
		return domain.FiscalSplit{}, fmt.Errorf("age %d: %w", usufructuaryAge, domain.ErrInvalidAge)
	}
	if legalRate < 0 {
		return domain.FiscalSplit{}, fmt.Errorf("legal rate %.4f: %w", legalRate, domain.ErrInvalidInput)
	}

	band, _ := LookupUsufructBand(usufructuaryAge)
	annuity := fullValue * legalRate
	usufruct := annuity * float64(band.Coefficient)

	return domain.FiscalSplit{
		LegalRate:       legalRate,
		Coefficient:     band.Coefficient,
		Annuity:         annuity,
		UsufructValue:   usufruct,
		BareValue:       fullValue - usufruct,
		UsufructPercent: band.UsufructPercent,
		BarePercent:     band.BarePercent,
		Band:            band,
	}, nil
}
