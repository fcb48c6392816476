package rankings

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/power-rankings/internal/models"
)

// SolverState tracks the opponent strength solver's lifecycle
type SolverState int

const (
	StateUninitialized SolverState = iota
	StateIterating
	StateConverged
	StateMaxIterationsReached
)

func (s SolverState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterationsReached:
		return "max_iterations_reached"
	default:
		return "unknown"
	}
}

// TeamGames is one team's solver input: its capped window with recency
// weights, its seed and its division.
type TeamGames struct {
	TeamID    string
	Division  string
	Games     []models.MatchRecord
	Weights   []float64
	Seed      float64
	GamesUsed int
}

// SolveResult is the terminal output of the solver
type SolveResult struct {
	// Strength holds z-normalized estimates, keyed by team id.
	Strength map[string]float64
	// Raw holds the estimates before z-normalization.
	Raw        map[string]float64
	Iterations int
	MaxDelta   float64
	State      SolverState
}

// Converged reports whether the solver stopped below epsilon
func (r SolveResult) Converged() bool {
	return r.State == StateConverged
}

// Solver iterates team strengths toward the fixed point where each team's
// estimate equals the weighted, performance-scaled average of its opponents'.
type Solver struct {
	cfg         SolverConfig
	adaptive    AdaptiveConfig
	goalDiffCap int
	state       SolverState
}

// NewSolver creates a solver from an engine config
func NewSolver(cfg Config) *Solver {
	return &Solver{
		cfg:         cfg.Solver,
		adaptive:    cfg.Adaptive,
		goalDiffCap: cfg.GoalDiffCap,
		state:       StateUninitialized,
	}
}

// State returns the solver's current lifecycle state
func (s *Solver) State() SolverState {
	return s.state
}

type solverGame struct {
	opponent int // -1 when the opponent has no estimate
	weight   float64
	factor   float64 // 0.5 + performance, in [0.5, 1.5]
}

// Solve runs the bounded fixed-point iteration. Teams must be ordered by id
// for the result to be reproducible; the engine guarantees that. Hitting
// MaxIterations is not an error: the last estimates are returned with
// State == StateMaxIterationsReached.
func (s *Solver) Solve(ctx context.Context, teams []TeamGames) (SolveResult, error) {
	n := len(teams)
	result := SolveResult{
		Strength: make(map[string]float64, n),
		Raw:      make(map[string]float64, n),
	}
	if n == 0 {
		s.state = StateConverged
		result.State = s.state
		return result, nil
	}

	index := make(map[string]int, n)
	for i, t := range teams {
		index[t.TeamID] = i
	}

	games := make([][]solverGame, n)
	for i, t := range teams {
		games[i] = make([]solverGame, len(t.Games))
		for g, r := range t.Games {
			opp, ok := index[r.OpponentID]
			if !ok {
				opp = -1
			}
			games[i][g] = solverGame{
				opponent: opp,
				weight:   t.Weights[g],
				factor:   0.5 + s.performance(r),
			}
		}
	}

	est := make([]float64, n)
	for i, t := range teams {
		est[i] = s.cfg.SeedFloor + t.Seed
	}
	initialMean := mean(est)

	s.state = StateIterating
	next := make([]float64, n)
	var delta float64
	iterations := 0
	for iterations < s.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return SolveResult{}, err
		}
		iterations++

		leagueMean := mean(est)
		divMeans := divisionMeans(teams, est)

		for i, t := range teams {
			var num, den float64
			for _, g := range games[i] {
				v := leagueMean
				oppDiv := ""
				if g.opponent >= 0 {
					v = est[g.opponent]
					oppDiv = teams[g.opponent].Division
				}
				wk := g.weight * GapFactor(est[i]-v, s.adaptive)
				if s.crossDivision(t.Division, oppDiv) && v > divMeans[t.Division] {
					v *= s.cfg.CrossDivisionBoost
				}
				num += wk * g.factor * v
				den += wk
			}
			target := est[i]
			if den > 0 {
				// thin samples lean on the league mean
				target = blend(num/den, leagueMean, SampleFactor(t.GamesUsed, s.adaptive))
			}
			next[i] = s.cfg.Smoothing*est[i] + (1-s.cfg.Smoothing)*target
		}

		rescale(next, initialMean)

		delta = 0
		for i := range est {
			if d := math.Abs(next[i] - est[i]); d > delta {
				delta = d
			}
		}
		est, next = next, est

		if delta < s.cfg.Epsilon {
			s.state = StateConverged
			break
		}
	}
	if s.state != StateConverged {
		s.state = StateMaxIterationsReached
	}

	z := zNormalize(est)
	for i, t := range teams {
		result.Raw[t.TeamID] = est[i]
		result.Strength[t.TeamID] = z[i]
	}
	result.Iterations = iterations
	result.MaxDelta = delta
	result.State = s.state
	return result, nil
}

// performance scores one game in [0,1] from its outcome and capped margin
func (s *Solver) performance(r models.MatchRecord) float64 {
	margin := float64(ClipDifferential(r.GoalDifferential(), s.goalDiffCap)) / float64(s.goalDiffCap)
	marginScore := 0.5 + 0.5*margin
	return (1-s.cfg.MarginWeight)*r.Outcome() + s.cfg.MarginWeight*marginScore
}

func (s *Solver) crossDivision(own, opponent string) bool {
	return s.cfg.CrossDivisionBoost > 1 && own != "" && opponent != "" && own != opponent
}

func divisionMeans(teams []TeamGames, est []float64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, t := range teams {
		if t.Division == "" {
			continue
		}
		sums[t.Division] += est[i]
		counts[t.Division]++
	}
	means := make(map[string]float64, len(sums))
	for div, sum := range sums {
		means[div] = sum / float64(counts[div])
	}
	return means
}

// rescale multiplies values so their mean equals target
func rescale(values []float64, target float64) {
	m := mean(values)
	if m <= 0 || !isFinite(m) {
		return
	}
	floats.Scale(target/m, values)
}

func zNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	sd := stddev(values)
	if sd < flatTolerance {
		return out
	}
	copy(out, values)
	floats.AddConst(-mean(values), out)
	floats.Scale(1/sd, out)
	return out
}
