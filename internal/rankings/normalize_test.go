package rankings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePercentileBounds(t *testing.T) {
	values := []float64{3, 1, 7, 2, 9, 4, 8, 5, 6, 0}
	out, flat := Normalize(values, DefaultConfig().Normalizer)

	assert.False(t, flat)
	assert.InDelta(t, 1.0, out[4], 1e-12)
	assert.InDelta(t, 0.0, out[9], 1e-12)
	for i, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		for j := range out {
			if values[i] < values[j] {
				assert.LessOrEqual(t, out[i], out[j])
			}
		}
	}
}

func TestNormalizeFlatInput(t *testing.T) {
	for _, mode := range []NormalizerMode{NormalizePercentile, NormalizeLogistic} {
		cfg := DefaultConfig().Normalizer
		cfg.Mode = mode

		out, flat := Normalize([]float64{2.5, 2.5, 2.5}, cfg)
		assert.True(t, flat, mode)
		assert.Equal(t, []float64{Neutral, Neutral, Neutral}, out)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	out, flat := Normalize(nil, DefaultConfig().Normalizer)
	assert.Empty(t, out)
	assert.False(t, flat)
}

func TestNormalizeReplacesNonFinite(t *testing.T) {
	out, flat := Normalize([]float64{0, math.NaN(), 10, math.Inf(1)}, DefaultConfig().Normalizer)

	assert.False(t, flat)
	for _, v := range out {
		assert.False(t, math.IsNaN(v))
	}
	// both non-finite entries take the mean of the finite ones
	assert.InDelta(t, out[1], out[3], 1e-12)
	assert.InDelta(t, 0.5, out[1], 1e-9)
}

func TestNormalizeLogistic(t *testing.T) {
	cfg := DefaultConfig().Normalizer
	cfg.Mode = NormalizeLogistic

	out, flat := Normalize([]float64{-2, 0, 2}, cfg)
	assert.False(t, flat)
	assert.InDelta(t, 0.5, out[1], 1e-12)
	assert.Less(t, out[0], out[1])
	assert.Greater(t, out[2], out[1])
	for _, v := range out {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestNormalizeClipCollapseFallsBackToRange(t *testing.T) {
	cfg := DefaultConfig().Normalizer
	cfg.ClipLow, cfg.ClipHigh = 0.2, 0.8

	// every interior percentile lands on the repeated value
	values := []float64{0, 5, 5, 5, 5, 5, 5, 5, 5, 10}
	out, flat := Normalize(values, cfg)

	assert.False(t, flat)
	assert.InDelta(t, 0.0, out[0], 1e-12)
	assert.InDelta(t, 0.5, out[1], 1e-12)
	assert.InDelta(t, 1.0, out[9], 1e-12)
}

func TestNormalizeOptional(t *testing.T) {
	values := []float64{1, 99, 3}
	present := []bool{true, false, true}

	out, flat := NormalizeOptional(values, present, DefaultConfig().Normalizer)
	assert.False(t, flat)
	assert.InDelta(t, 0.0, out[0], 1e-12)
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 1.0, out[2], 1e-12)
}
