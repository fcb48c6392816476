package rankings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecencyWeightsContract(t *testing.T) {
	cfg := DefaultConfig().Recency

	for n := 0; n <= 40; n++ {
		w := RecencyWeights(n, cfg)
		require.Len(t, w, n)
		if n == 0 {
			continue
		}

		var sum float64
		for _, v := range w {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "n=%d", n)

		// oldest-first: within the tapered tail weight must not grow with age
		for i := 0; i < n-1; i++ {
			age := n - 1 - i
			if age >= cfg.TaperStart {
				assert.LessOrEqual(t, w[i], w[i+1]+1e-15, "n=%d i=%d", n, i)
			}
		}
	}
}

func TestRecencyWeightsUniformForShortHistory(t *testing.T) {
	w := RecencyWeights(10, DefaultConfig().Recency)
	for _, v := range w {
		assert.InDelta(t, 0.1, v, 1e-12)
	}
}

func TestRecencyWeightsRecentShare(t *testing.T) {
	cfg := RecencyConfig{RecentGames: 5, RecentShare: 0.7, TaperStart: 20, TaperFloor: 0.4}
	w := RecencyWeights(15, cfg)

	var recent float64
	for _, v := range w[10:] {
		recent += v
	}
	assert.InDelta(t, 0.7, recent, 1e-9)
	assert.Greater(t, w[14], w[0])
}

func TestRecencyWeightsTaperNeverZeroes(t *testing.T) {
	cfg := RecencyConfig{RecentGames: 5, RecentShare: 0.7, TaperStart: 5, TaperFloor: 0.1}
	w := RecencyWeights(30, cfg)

	assert.Greater(t, w[0], 0.0)
	assert.Less(t, w[0], w[20])
}
