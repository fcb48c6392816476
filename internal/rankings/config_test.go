package rankings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/power-rankings/internal/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Offense: 0.5, Defense: 0.5, SOS: 0.5}
	cfg.GoalDiffCap = 0
	cfg.Normalizer.Mode = "zscore"

	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Problems, 3)
	assert.Contains(t, err.Error(), "weights must sum to 1.0")
}

func TestValidateRejectsTaperBeforeRecentBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Recency.TaperStart = cfg.Recency.RecentGames - 1

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(cfg.Validate(), &cfgErr))
}

func TestFromConfig(t *testing.T) {
	rc := &config.RankingsConfig{
		WindowDays: 180,
		MaxGames:   20,
		Recency: config.RecencyConfig{
			RecentGames: 10,
			RecentShare: 0.6,
			TaperStart:  12,
			TaperFloor:  0.5,
		},
		GoalDiffCap:  5,
		DefenseRidge: 0.5,
		Solver: config.SolverConfig{
			Epsilon:            1e-5,
			MaxIterations:      100,
			Smoothing:          0.3,
			MarginWeight:       0.4,
			SeedFloor:          0.2,
			CrossDivisionBoost: 1.1,
		},
		ShrinkageTau: 2,
		Adaptive: config.AdaptiveConfig{
			MinGames:       4,
			SampleExponent: 1,
			GapExponent:    1,
		},
		Normalizer: config.NormalizerConfig{
			Mode:     "logistic",
			ClipLow:  0.1,
			ClipHigh: 0.9,
		},
		Weights: config.WeightsConfig{
			Offense: 0.3,
			Defense: 0.3,
			SOS:     0.4,
		},
		Confidence: config.ConfidenceConfig{
			FullConfidenceGames: 10,
			Exponent:            1,
		},
		ActiveThreshold: 6,
		DefensePolicy:   "ignore",
	}

	cfg, err := FromConfig(rc)
	require.NoError(t, err)
	assert.Equal(t, 180, cfg.WindowDays)
	assert.Equal(t, NormalizeLogistic, cfg.Normalizer.Mode)
	assert.Equal(t, DefenseIgnore, cfg.DefensePolicy)
	assert.Equal(t, 1.1, cfg.Solver.CrossDivisionBoost)
	assert.Equal(t, 12, cfg.Recency.TaperStart)

	_, err = FromConfig(nil)
	assert.Error(t, err)
}
