package rankings

import "github.com/yourusername/power-rankings/internal/models"

// WeightedMetrics holds a team's raw per-run aggregates
type WeightedMetrics struct {
	OffRaw     float64
	DefRaw     float64
	GAWeighted float64
	WinPct     float64
	GamesUsed  int
}

// Aggregate computes weighted offense and defense from a team window. Goals
// pass through the outlier guard first. Defense is 1/(ridge + weighted goals
// against) so that higher is better for both metrics.
func Aggregate(window []models.MatchRecord, weights []float64, goalDiffCap int, defenseRidge float64) WeightedMetrics {
	n := len(window)
	if n == 0 || len(weights) != n {
		return WeightedMetrics{}
	}

	var gf, ga, points float64
	for i, r := range window {
		f, a := CapGoals(r.GoalsFor, r.GoalsAgainst, goalDiffCap)
		gf += weights[i] * float64(f)
		ga += weights[i] * float64(a)
		points += r.Outcome()
	}

	return WeightedMetrics{
		OffRaw:     gf,
		DefRaw:     1 / (defenseRidge + ga),
		GAWeighted: ga,
		WinPct:     points / float64(n),
		GamesUsed:  n,
	}
}
