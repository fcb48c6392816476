package rankings

import (
	"fmt"
	"math"

	"github.com/yourusername/power-rankings/internal/config"
)

// DefensePolicy controls how DefNorm participates in the ranking sort key
type DefensePolicy string

const (
	DefenseDesc   DefensePolicy = "desc"
	DefenseIgnore DefensePolicy = "ignore"
)

// NormalizerMode selects the normalization function
type NormalizerMode string

const (
	NormalizePercentile NormalizerMode = "percentile"
	NormalizeLogistic   NormalizerMode = "logistic"
)

const weightSumTolerance = 1e-6

// RecencyConfig shapes the per-game recency weights
type RecencyConfig struct {
	RecentGames int
	RecentShare float64
	TaperStart  int
	TaperFloor  float64
}

// SolverConfig parameterizes the opponent strength solver
type SolverConfig struct {
	Epsilon            float64
	MaxIterations      int
	Smoothing          float64
	MarginWeight       float64
	SeedFloor          float64
	CrossDivisionBoost float64
}

// AdaptiveConfig parameterizes the adaptive sensitivity scaler
type AdaptiveConfig struct {
	MinGames       int
	SampleExponent float64
	GapExponent    float64
}

// NormalizerConfig parameterizes the normalizer
type NormalizerConfig struct {
	Mode     NormalizerMode
	ClipLow  float64
	ClipHigh float64
}

// Weights are the composite score weights
type Weights struct {
	Offense float64
	Defense float64
	SOS     float64
}

// Sum returns the total of the three weights
func (w Weights) Sum() float64 {
	return w.Offense + w.Defense + w.SOS
}

// ConfidenceConfig shapes the confidence multiplier curve
type ConfidenceConfig struct {
	FullConfidenceGames int
	Exponent            float64
}

// Config is the immutable parameter set of one engine. It is passed by value
// into every stage; nothing reads package-level tunables.
type Config struct {
	WindowDays      int
	MaxGames        int
	Recency         RecencyConfig
	GoalDiffCap     int
	DefenseRidge    float64
	Solver          SolverConfig
	ShrinkageTau    float64
	Adaptive        AdaptiveConfig
	Normalizer      NormalizerConfig
	Weights         Weights
	Confidence      ConfidenceConfig
	ActiveThreshold int
	DefensePolicy   DefensePolicy
}

// DefaultConfig returns the published default parameters
func DefaultConfig() Config {
	return Config{
		WindowDays: 365,
		MaxGames:   30,
		Recency: RecencyConfig{
			RecentGames: 15,
			RecentShare: 0.70,
			TaperStart:  20,
			TaperFloor:  0.40,
		},
		GoalDiffCap:  6,
		DefenseRidge: 0.25,
		Solver: SolverConfig{
			Epsilon:            1e-6,
			MaxIterations:      200,
			Smoothing:          0.5,
			MarginWeight:       0.5,
			SeedFloor:          0.1,
			CrossDivisionBoost: 1.05,
		},
		ShrinkageTau: 4,
		Adaptive: AdaptiveConfig{
			MinGames:       6,
			SampleExponent: 0.5,
			GapExponent:    0.5,
		},
		Normalizer: NormalizerConfig{
			Mode:     NormalizePercentile,
			ClipLow:  0.05,
			ClipHigh: 0.95,
		},
		Weights: Weights{
			Offense: 0.25,
			Defense: 0.25,
			SOS:     0.50,
		},
		Confidence: ConfidenceConfig{
			FullConfidenceGames: 15,
			Exponent:            0.5,
		},
		ActiveThreshold: 8,
		DefensePolicy:   DefenseDesc,
	}
}

// FromConfig converts the application ranking settings into an engine config
func FromConfig(cfg *config.RankingsConfig) (Config, error) {
	if cfg == nil {
		return Config{}, &ConfigurationError{Problems: []string{"rankings config is required"}}
	}

	c := Config{
		WindowDays: cfg.WindowDays,
		MaxGames:   cfg.MaxGames,
		Recency: RecencyConfig{
			RecentGames: cfg.Recency.RecentGames,
			RecentShare: cfg.Recency.RecentShare,
			TaperStart:  cfg.Recency.TaperStart,
			TaperFloor:  cfg.Recency.TaperFloor,
		},
		GoalDiffCap:  cfg.GoalDiffCap,
		DefenseRidge: cfg.DefenseRidge,
		Solver: SolverConfig{
			Epsilon:            cfg.Solver.Epsilon,
			MaxIterations:      cfg.Solver.MaxIterations,
			Smoothing:          cfg.Solver.Smoothing,
			MarginWeight:       cfg.Solver.MarginWeight,
			SeedFloor:          cfg.Solver.SeedFloor,
			CrossDivisionBoost: cfg.Solver.CrossDivisionBoost,
		},
		ShrinkageTau: cfg.ShrinkageTau,
		Adaptive: AdaptiveConfig{
			MinGames:       cfg.Adaptive.MinGames,
			SampleExponent: cfg.Adaptive.SampleExponent,
			GapExponent:    cfg.Adaptive.GapExponent,
		},
		Normalizer: NormalizerConfig{
			Mode:     NormalizerMode(cfg.Normalizer.Mode),
			ClipLow:  cfg.Normalizer.ClipLow,
			ClipHigh: cfg.Normalizer.ClipHigh,
		},
		Weights: Weights{
			Offense: cfg.Weights.Offense,
			Defense: cfg.Weights.Defense,
			SOS:     cfg.Weights.SOS,
		},
		Confidence: ConfidenceConfig{
			FullConfidenceGames: cfg.Confidence.FullConfidenceGames,
			Exponent:            cfg.Confidence.Exponent,
		},
		ActiveThreshold: cfg.ActiveThreshold,
		DefensePolicy:   DefensePolicy(cfg.DefensePolicy),
	}

	return c, c.Validate()
}

// Validate checks every scalar. It returns a *ConfigurationError listing all
// problems found, or nil.
func (c Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.WindowDays > 0, "window_days must be positive, got %d", c.WindowDays)
	check(c.MaxGames > 0, "max_games must be positive, got %d", c.MaxGames)

	check(c.Recency.RecentGames > 0, "recency.recent_games must be positive, got %d", c.Recency.RecentGames)
	check(c.Recency.RecentShare > 0 && c.Recency.RecentShare < 1, "recency.recent_share must be in (0,1), got %v", c.Recency.RecentShare)
	check(c.Recency.TaperStart >= c.Recency.RecentGames, "recency.taper_start (%d) must be >= recency.recent_games (%d)", c.Recency.TaperStart, c.Recency.RecentGames)
	check(c.Recency.TaperFloor > 0 && c.Recency.TaperFloor <= 1, "recency.taper_floor must be in (0,1], got %v", c.Recency.TaperFloor)

	check(c.GoalDiffCap > 0, "goal_diff_cap must be positive, got %d", c.GoalDiffCap)
	check(c.DefenseRidge > 0 && !math.IsInf(c.DefenseRidge, 0), "defense_ridge must be positive, got %v", c.DefenseRidge)

	check(c.Solver.Epsilon > 0, "solver.epsilon must be positive, got %v", c.Solver.Epsilon)
	check(c.Solver.MaxIterations > 0, "solver.max_iterations must be positive, got %d", c.Solver.MaxIterations)
	check(c.Solver.Smoothing >= 0 && c.Solver.Smoothing < 1, "solver.smoothing must be in [0,1), got %v", c.Solver.Smoothing)
	check(c.Solver.MarginWeight >= 0 && c.Solver.MarginWeight <= 1, "solver.margin_weight must be in [0,1], got %v", c.Solver.MarginWeight)
	check(c.Solver.SeedFloor > 0, "solver.seed_floor must be positive, got %v", c.Solver.SeedFloor)
	check(c.Solver.CrossDivisionBoost >= 1 && !math.IsInf(c.Solver.CrossDivisionBoost, 0), "solver.cross_division_boost must be >= 1, got %v", c.Solver.CrossDivisionBoost)

	check(c.ShrinkageTau >= 0 && !math.IsInf(c.ShrinkageTau, 0), "shrinkage_tau must be >= 0, got %v", c.ShrinkageTau)

	check(c.Adaptive.MinGames > 0, "adaptive.min_games must be positive, got %d", c.Adaptive.MinGames)
	check(c.Adaptive.SampleExponent >= 0, "adaptive.sample_exponent must be >= 0, got %v", c.Adaptive.SampleExponent)
	check(c.Adaptive.GapExponent >= 0, "adaptive.gap_exponent must be >= 0, got %v", c.Adaptive.GapExponent)

	check(c.Normalizer.Mode == NormalizePercentile || c.Normalizer.Mode == NormalizeLogistic, "normalizer.mode must be percentile or logistic, got %q", c.Normalizer.Mode)
	check(c.Normalizer.ClipLow >= 0 && c.Normalizer.ClipHigh <= 1 && c.Normalizer.ClipLow < c.Normalizer.ClipHigh,
		"normalizer clip bounds must satisfy 0 <= clip_low < clip_high <= 1, got [%v, %v]", c.Normalizer.ClipLow, c.Normalizer.ClipHigh)

	check(c.Weights.Offense >= 0 && c.Weights.Defense >= 0 && c.Weights.SOS >= 0, "weights must be non-negative")
	check(math.Abs(c.Weights.Sum()-1) <= weightSumTolerance, "weights must sum to 1.0, got %v", c.Weights.Sum())

	check(c.Confidence.FullConfidenceGames > 0, "confidence.full_confidence_games must be positive, got %d", c.Confidence.FullConfidenceGames)
	check(c.Confidence.Exponent > 0, "confidence.exponent must be positive, got %v", c.Confidence.Exponent)

	check(c.ActiveThreshold > 0, "active_threshold must be positive, got %d", c.ActiveThreshold)
	check(c.DefensePolicy == DefenseDesc || c.DefensePolicy == DefenseIgnore, "defense_policy must be desc or ignore, got %q", c.DefensePolicy)

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}
