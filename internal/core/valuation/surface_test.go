package valuation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSurface(t *testing.T) {
	tests := []struct {
		name      string
		params    SurfaceParams
		wantTotal float64
	}{
		{"main only", SurfaceParams{Main: 80}, 80},
		{"balcony and box", SurfaceParams{Main: 100, Balcony: 15, HasBox: true}, 128.75},
		{
			"villa",
			SurfaceParams{Main: 200, Terrace: 40, Garden: 300, Cellar: 30, HasBox: true, Garages: 1, Parking: 2},
			200 + 14 + 45 + 15 + 25 + 20 + 24,
		},
		{"attic", SurfaceParams{Main: 60, Attic: 20}, 68},
		{"negative areas ignored", SurfaceParams{Main: 50, Balcony: -10, Parking: -1}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NormalizeSurface(tt.params)
			assert.InDelta(t, tt.wantTotal, b.Total, 1e-9)
			assert.GreaterOrEqual(t, b.Total, b.Main)
		})
	}
}

func TestNormalizeSurface_Components(t *testing.T) {
	b := NormalizeSurface(SurfaceParams{Main: 100, Balcony: 12, Cellar: 10, Garages: 2, Parking: 1})

	assert.InDelta(t, 3.0, b.Balcony, 1e-9)
	assert.InDelta(t, 5.0, b.Cellar, 1e-9)
	assert.Equal(t, 40.0, b.Garage)
	assert.Equal(t, 2, b.GarageCount)
	assert.Equal(t, 12.0, b.Parking)
	assert.Zero(t, b.Box)
	assert.InDelta(t, 1.6, b.Ratio, 1e-9)
}

func TestNormalizeSurface_ZeroMainHasZeroRatio(t *testing.T) {
	b := NormalizeSurface(SurfaceParams{HasBox: true})
	assert.Equal(t, 25.0, b.Total)
	assert.Zero(t, b.Ratio)
}

func TestSurfaceBreakdownText(t *testing.T) {
	text := SurfaceBreakdownText(NormalizeSurface(SurfaceParams{Main: 100, Balcony: 16, HasBox: true, Parking: 2}))

	assert.Contains(t, text, "Superficie Principale: 100 mq")
	assert.Contains(t, text, "Balconi: 16 mq × 25% = 4 mq")
	assert.Contains(t, text, "Box: 25 mq commerciali")
	assert.Contains(t, text, "Posti auto scoperti (2): 24 mq commerciali")
	assert.NotContains(t, text, "Terrazze")
	assert.NotContains(t, text, "Posti auto coperti")
	assert.Contains(t, text, strings.Repeat("=", 50))
	assert.Contains(t, text, "TOTALE SUPERFICIE COMMERCIALE: 153 mq")
	assert.True(t, strings.HasSuffix(text, "Rapporto: 1.53x"))
}
