package valuation

import (
	"fmt"

	"valuation-service/internal/core/domain"
)

type dealThreshold struct {
	maxDeviation float64 // включительно
	tier         domain.DealTier
	stars        int
	color        string
	message      string
}

// dealTiers проверяются по порядку, последний уровень без верхней границы
var dealTiers = []dealThreshold{
	{-10, domain.TierExceptional, 5, "green", "Prezzo molto inferiore alla stima di mercato!"},
	{-5, domain.TierGreat, 4, "green", "Prezzo inferiore al valore stimato"},
	{5, domain.TierFair, 3, "yellow", "Prezzo allineato al mercato"},
	{15, domain.TierNegotiable, 2, "orange", "Prezzo leggermente alto, possibile negoziazione"},
}

var overvalued = dealThreshold{tier: domain.TierOvervalued, stars: 1, color: "red", message: "Prezzo significativamente superiore al valore"}

// ScoreDeal сравнивает запрашиваемую цену с оценкой голой собственности.
// deviation = (asking - bare) / bare × 100.
func ScoreDeal(askingPrice, bareValue float64) (domain.DealAssessment, error) {
	if bareValue <= 0 {
		return domain.DealAssessment{}, fmt.Errorf("bare value %.2f: %w", bareValue, domain.ErrNonPositiveBareValue)
	}
	if askingPrice <= 0 {
		return domain.DealAssessment{}, fmt.Errorf("asking price %.2f: %w", askingPrice, domain.ErrInvalidInput)
	}

	deviation := (askingPrice - bareValue) / bareValue * 100

	t := overvalued
	for _, candidate := range dealTiers {
		if deviation <= candidate.maxDeviation {
			t = candidate
			break
		}
	}

	return domain.DealAssessment{
		Tier:             t.tier,
		Stars:            t.stars,
		Color:            t.color,
		DeviationPercent: deviation,
		DiscountPercent:  DiscountPercent(deviation),
		Message:          t.message,
	}, nil
}

// DiscountPercent - скидка относительно оценки: положительная, когда цена ниже,
// отрицательная при переплате
func DiscountPercent(deviation float64) float64 {
	return -deviation
}
