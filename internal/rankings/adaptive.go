package rankings

import "math"

// SampleFactor is the weight a team's own evidence gets against the league
// prior. It is 1 once the team has MinGames games and falls toward 0 below
// that, faster for larger SampleExponent.
func SampleFactor(gamesUsed int, cfg AdaptiveConfig) float64 {
	games := gamesUsed
	if games < 1 {
		games = 1
	}
	if cfg.MinGames <= 0 || games >= cfg.MinGames {
		return 1
	}
	return math.Pow(float64(games)/float64(cfg.MinGames), cfg.SampleExponent)
}

// GapFactor down-weights a game against an opponent far from the team's own
// strength. The result is in (0,1].
func GapFactor(gap float64, cfg AdaptiveConfig) float64 {
	if !isFinite(gap) {
		gap = 0
	}
	return math.Pow(1/(1+math.Abs(gap)), cfg.GapExponent)
}

// AdaptiveK is the combined adaptive scale of one game's contribution.
// The result is in (0,1].
func AdaptiveK(gamesUsed int, gap float64, cfg AdaptiveConfig) float64 {
	return SampleFactor(gamesUsed, cfg) * GapFactor(gap, cfg)
}

// blend pulls an estimate toward a prior by the team's sample factor
func blend(estimate, prior, sample float64) float64 {
	return sample*estimate + (1-sample)*prior
}
