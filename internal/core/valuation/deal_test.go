package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/core/domain"
)

func TestScoreDeal_Tiers(t *testing.T) {
	const bare = 100000.0

	tests := []struct {
		name      string
		asking    float64
		wantTier  domain.DealTier
		wantStars int
		wantColor string
	}{
		{"well below", 70000, domain.TierExceptional, 5, "green"},
		{"exactly -10", 90000, domain.TierExceptional, 5, "green"},
		{"just below -10", 89990, domain.TierExceptional, 5, "green"},
		{"just above -10", 90010, domain.TierGreat, 4, "green"},
		{"exactly -5", 95000, domain.TierGreat, 4, "green"},
		{"at estimate", 100000, domain.TierFair, 3, "yellow"},
		{"exactly +5", 105000, domain.TierFair, 3, "yellow"},
		{"exactly +15", 115000, domain.TierNegotiable, 2, "orange"},
		{"above +15", 130000, domain.TierOvervalued, 1, "red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ScoreDeal(tt.asking, bare)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, d.Tier)
			assert.Equal(t, tt.wantStars, d.Stars)
			assert.Equal(t, tt.wantColor, d.Color)
			assert.NotEmpty(t, d.Message)
		})
	}
}

func TestScoreDeal_DiscountSign(t *testing.T) {
	d, err := ScoreDeal(80000, 100000)
	require.NoError(t, err)
	assert.InDelta(t, -20, d.DeviationPercent, 1e-9)
	assert.InDelta(t, 20, d.DiscountPercent, 1e-9)

	d, err = ScoreDeal(120000, 100000)
	require.NoError(t, err)
	assert.InDelta(t, 20, d.DeviationPercent, 1e-9)
	assert.InDelta(t, -20, d.DiscountPercent, 1e-9)
}

func TestScoreDeal_RejectsNonPositiveBare(t *testing.T) {
	for _, bare := range []float64{0, -1} {
		_, err := ScoreDeal(100000, bare)
		assert.ErrorIs(t, err, domain.ErrNonPositiveBareValue)
	}

	_, err := ScoreDeal(0, 100000)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
