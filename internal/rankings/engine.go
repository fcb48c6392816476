// Package rankings implements the power-ranking engine: recency-weighted
// offense and defense, an iterative opponent strength solver, shrinkage,
// normalization, composite scoring and deterministic ranking.
package rankings

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/models"
)

// Metric names used in diagnostics
const (
	MetricOffense     = "offense"
	MetricDefense     = "defense"
	MetricSOS         = "sos"
	MetricSOSBaseline = "sos_baseline"
)

// Result is the complete output of one engine run
type Result struct {
	Run         models.RankingRun
	Teams       []models.RankedTeam
	Diagnostics Diagnostics
}

// Engine runs the ranking pipeline. An Engine holds only its immutable config
// and logger, so one instance may serve concurrent runs.
type Engine struct {
	cfg    Config
	logger *logger.RankingLogger
}

// NewEngine validates the config and creates an engine. A nil logger
// discards output.
func NewEngine(cfg Config, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &Engine{cfg: cfg, logger: logger.NewRankingLogger(log)}, nil
}

// Config returns the engine's parameters
func (e *Engine) Config() Config {
	return e.cfg
}

// Run ranks every team found in records as of the given date
func (e *Engine) Run(ctx context.Context, records []models.MatchRecord, asOf time.Time) (*Result, error) {
	return e.RunDivision(ctx, "", records, asOf)
}

// RunDivision ranks records as one table. The division label is only
// recorded on the run; RunDivisions splits a multi-division league.
func (e *Engine) RunDivision(ctx context.Context, division string, records []models.MatchRecord, asOf time.Time) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.New()
	e.logger.LogRunStarted(runID.String(), division, asOf, len(records))

	var diag Diagnostics
	teams := e.buildTeams(runID, records, asOf, func(string) *Diagnostics { return &diag })

	result := newResult(runID, division, asOf, len(records))
	if len(teams) > 0 {
		solved, err := e.solve(ctx, runID, teams)
		if err != nil {
			return nil, err
		}
		e.noteConvergence(solved, &diag)
		result.Teams = e.scoreTeams(runID, teams, teams, solved, &diag)
		result.setSolve(solved)
	}

	e.finish(result, diag, started)
	return result, nil
}

// RunDivisions ranks a multi-division league. Strengths are solved once over
// every team so cross-division opponents stay visible; each division is then
// normalized and ranked on its own. Results come back sorted by division.
func (e *Engine) RunDivisions(ctx context.Context, records []models.MatchRecord, asOf time.Time) ([]*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	solveID := uuid.New()
	e.logger.LogRunStarted(solveID.String(), "all", asOf, len(records))

	diags := make(map[string]*Diagnostics)
	diagFor := func(division string) *Diagnostics {
		d, ok := diags[division]
		if !ok {
			d = &Diagnostics{}
			diags[division] = d
		}
		return d
	}
	teams := e.buildTeams(solveID, records, asOf, diagFor)

	byDivision := make(map[string][]*teamState)
	read := make(map[string]int)
	for _, t := range teams {
		byDivision[t.division] = append(byDivision[t.division], t)
		read[t.division] += t.gamesTotal
		diagFor(t.division)
	}
	for division, diag := range diags {
		for _, excluded := range diag.Excluded {
			read[division] += excluded.GamesTotal
		}
	}

	var solved SolveResult
	if len(teams) > 0 {
		var err error
		solved, err = e.solve(ctx, solveID, teams)
		if err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(diags))
	for name := range diags {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]*Result, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runID := uuid.New()
			members := byDivision[name]
			diag := diags[name]
			e.logger.LogRunStarted(runID.String(), name, asOf, read[name])

			result := newResult(runID, name, asOf, read[name])
			if len(members) > 0 {
				e.noteConvergence(solved, diag)
				result.Teams = e.scoreTeams(runID, members, teams, solved, diag)
				result.setSolve(solved)
			}
			e.finish(result, *diag, started)
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// teamState carries one team through the pipeline
type teamState struct {
	id         string
	division   string
	window     []models.MatchRecord
	weights    []float64
	metrics    WeightedMetrics
	gamesTotal int
	lastMatch  time.Time
}

func newResult(runID uuid.UUID, division string, asOf time.Time, recordsRead int) *Result {
	return &Result{
		Run: models.RankingRun{
			RunID:       runID,
			Division:    division,
			AsOf:        day(asOf),
			RecordsRead: recordsRead,
			Converged:   true,
		},
		Teams: []models.RankedTeam{},
	}
}

func (r *Result) setSolve(solved SolveResult) {
	r.Run.Converged = solved.Converged()
	r.Run.Iterations = solved.Iterations
	r.Run.MaxDelta = solved.MaxDelta
}

func (e *Engine) finish(result *Result, diag Diagnostics, started time.Time) {
	result.Diagnostics = diag
	result.Run.TeamsRanked = len(result.Teams)
	result.Run.ExcludedTeams = diag.ExcludedTeamIDs()
	result.Run.FlatMetrics = diag.FlatMetrics()
	result.Run.ComputedAt = time.Now().UTC()
	result.Run.DurationMillis = time.Since(started).Milliseconds()

	e.logger.LogRunCompleted(result.Run.RunID.String(), result.Run.Division, len(result.Teams), len(diag.Excluded), float64(time.Since(started).Microseconds())/1000)
}

// buildTeams groups records by team, selects windows and aggregates raw
// metrics. Teams come back sorted by id. Exclusions are recorded in the
// diagnostics of the team's division.
func (e *Engine) buildTeams(runID uuid.UUID, records []models.MatchRecord, asOf time.Time, diagFor func(division string) *Diagnostics) []*teamState {
	byTeam := make(map[string][]models.MatchRecord)
	for _, r := range records {
		byTeam[r.TeamID] = append(byTeam[r.TeamID], r)
	}

	ids := make([]string, 0, len(byTeam))
	for id := range byTeam {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	teams := make([]*teamState, 0, len(ids))
	for _, id := range ids {
		all := byTeam[id]
		window := SelectWindow(all, asOf, e.cfg.WindowDays, e.cfg.MaxGames)
		if len(window) == 0 {
			diag := diagFor(majorityDivision(all))
			diag.Excluded = append(diag.Excluded, &DataInsufficientError{TeamID: id, GamesTotal: len(all)})
			e.logger.LogTeamExcluded(runID.String(), id, len(all))
			continue
		}

		weights := RecencyWeights(len(window), e.cfg.Recency)
		teams = append(teams, &teamState{
			id:         id,
			division:   majorityDivision(window),
			window:     window,
			weights:    weights,
			metrics:    Aggregate(window, weights, e.cfg.GoalDiffCap, e.cfg.DefenseRidge),
			gamesTotal: len(all),
			lastMatch:  day(window[len(window)-1].PlayedOn),
		})
	}
	return teams
}

func (e *Engine) solve(ctx context.Context, runID uuid.UUID, teams []*teamState) (SolveResult, error) {
	input := make([]TeamGames, len(teams))
	for i, t := range teams {
		input[i] = TeamGames{
			TeamID:    t.id,
			Division:  t.division,
			Games:     t.window,
			Weights:   t.weights,
			Seed:      t.metrics.WinPct,
			GamesUsed: t.metrics.GamesUsed,
		}
	}

	solved, err := NewSolver(e.cfg).Solve(ctx, input)
	if err != nil {
		return SolveResult{}, err
	}
	e.logger.LogSolverOutcome(runID.String(), solved.State.String(), solved.Iterations, solved.MaxDelta)
	return solved, nil
}

func (e *Engine) noteConvergence(solved SolveResult, diag *Diagnostics) {
	if solved.Converged() {
		return
	}
	diag.NonConvergence = &NonConvergenceWarning{
		Iterations: solved.Iterations,
		MaxDelta:   solved.MaxDelta,
		Epsilon:    e.cfg.Solver.Epsilon,
	}
}

// scoreTeams normalizes and ranks teams. league is every team the solver saw
// and supplies opponent win percentages for the baseline schedule.
func (e *Engine) scoreTeams(runID uuid.UUID, teams, league []*teamState, solved SolveResult, diag *Diagnostics) []models.RankedTeam {
	n := len(teams)

	off := make([]float64, n)
	def := make([]float64, n)
	games := make([]int, n)
	sos := make([]float64, n)
	sosPresent := make([]bool, n)
	baseline := make([]float64, n)

	winPct := make(map[string]float64, len(league))
	leagueWinPcts := make([]float64, len(league))
	for i, t := range league {
		winPct[t.id] = t.metrics.WinPct
		leagueWinPcts[i] = t.metrics.WinPct
	}
	leagueWinPct := mean(leagueWinPcts)

	for i, t := range teams {
		off[i] = t.metrics.OffRaw
		def[i] = t.metrics.DefRaw
		games[i] = t.metrics.GamesUsed
		sos[i], sosPresent[i] = e.strengthOfSchedule(t, solved.Strength)
		baseline[i] = baselineSchedule(t, winPct, leagueWinPct)
	}

	off = shrinkAll(off, games, e.cfg.ShrinkageTau)
	def = shrinkAll(def, games, e.cfg.ShrinkageTau)

	offNorm := e.normalize(runID, MetricOffense, off, diag)
	defNorm := e.normalize(runID, MetricDefense, def, diag)
	baselineNorm := e.normalize(runID, MetricSOSBaseline, baseline, diag)

	sosNorm, flat := NormalizeOptional(sos, sosPresent, e.cfg.Normalizer)
	if flat {
		e.flag(runID, MetricSOS, countTrue(sosPresent), diag)
	}

	rows := make([]models.RankedTeam, n)
	for i, t := range teams {
		fallback := !sosPresent[i]
		if fallback {
			sosNorm[i] = baselineNorm[i]
		}

		power := PowerScore(offNorm[i], defNorm[i], sosNorm[i], e.cfg.Weights)
		confidence := ConfidenceMultiplier(games[i], e.cfg.Confidence)
		rows[i] = models.RankedTeam{
			TeamID:               t.id,
			DisplayName:          t.id,
			Division:             t.division,
			PowerScore:           power,
			PowerScoreAdjusted:   power * confidence,
			OffNorm:              offNorm[i],
			DefNorm:              defNorm[i],
			SOSNorm:              sosNorm[i],
			SOSBaselineNorm:      baselineNorm[i],
			SOSFallback:          fallback,
			ConfidenceMultiplier: confidence,
			GamesUsed:            games[i],
			GamesTotal:           t.gamesTotal,
			Status:               Classify(games[i], e.cfg.ActiveThreshold),
			LastMatchDate:        t.lastMatch,
		}
	}

	return Rank(rows, e.cfg.DefensePolicy)
}

// strengthOfSchedule averages the z-normalized strength of the opponents in
// a team's window, pulled toward the league mean of zero for thin samples.
// It reports false when no opponent has an estimate.
func (e *Engine) strengthOfSchedule(t *teamState, strength map[string]float64) (float64, bool) {
	own := strength[t.id]
	var num, den float64
	for g, r := range t.window {
		s, ok := strength[r.OpponentID]
		if !ok {
			continue
		}
		wk := t.weights[g] * GapFactor(own-s, e.cfg.Adaptive)
		num += wk * s
		den += wk
	}
	if den <= 0 {
		return 0, false
	}
	return blend(num/den, 0, SampleFactor(t.metrics.GamesUsed, e.cfg.Adaptive)), true
}

// baselineSchedule averages opponents' win percentage, using the league
// average for opponents outside the run.
func baselineSchedule(t *teamState, winPct map[string]float64, leagueWinPct float64) float64 {
	var num, den float64
	for g, r := range t.window {
		v, ok := winPct[r.OpponentID]
		if !ok {
			v = leagueWinPct
		}
		num += t.weights[g] * v
		den += t.weights[g]
	}
	if den <= 0 {
		return leagueWinPct
	}
	return num / den
}

func (e *Engine) normalize(runID uuid.UUID, metric string, values []float64, diag *Diagnostics) []float64 {
	out, flat := Normalize(values, e.cfg.Normalizer)
	if flat {
		e.flag(runID, metric, len(values), diag)
	}
	return out
}

func (e *Engine) flag(runID uuid.UUID, metric string, count int, diag *Diagnostics) {
	diag.Degenerate = append(diag.Degenerate, &DegenerateDistributionCase{Metric: metric, Count: count})
	e.logger.LogFlatMetric(runID.String(), metric)
}

// majorityDivision returns the most frequent non-empty division tag, breaking
// ties lexically.
func majorityDivision(window []models.MatchRecord) string {
	counts := make(map[string]int)
	for _, r := range window {
		if r.Division != "" {
			counts[r.Division]++
		}
	}
	best, bestCount := "", 0
	for div, c := range counts {
		if c > bestCount || (c == bestCount && div < best) {
			best, bestCount = div, c
		}
	}
	return best
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
