package rankings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/power-rankings/internal/models"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, nil)
	require.NoError(t, err)
	return engine
}

// scheduleLeague builds two undefeated teams with identical scorelines, one
// against a strong group and one against a weak group.
func scheduleLeague() *league {
	l := &league{}
	strong := []string{"t1", "t2", "t3", "t4"}
	weak := []string{"w1", "w2", "w3", "w4"}

	day := 1
	for _, s := range strong {
		for _, w := range weak {
			l.play(s, w, 3, 0, day)
			day++
		}
	}
	for i := range strong {
		for j := i + 1; j < len(strong); j++ {
			l.play(strong[i], strong[j], 1, 1, day)
			l.play(weak[i], weak[j], 1, 1, day)
			day++
		}
	}
	for g := 0; g < 10; g++ {
		l.play("a", strong[g%4], 2, 0, 40+g)
		l.play("b", weak[g%4], 2, 0, 40+g)
	}
	return l
}

func TestEngineRewardsStrongerSchedule(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	result, err := engine.Run(context.Background(), scheduleLeague().records, testAsOf)
	require.NoError(t, err)

	a, ok := findTeam(result.Teams, "a")
	require.True(t, ok)
	b, ok := findTeam(result.Teams, "b")
	require.True(t, ok)

	assert.InDelta(t, a.OffNorm, b.OffNorm, 1e-9)
	assert.InDelta(t, a.DefNorm, b.DefNorm, 1e-9)
	assert.Greater(t, a.SOSNorm, b.SOSNorm)
	assert.Greater(t, a.PowerScoreAdjusted, b.PowerScoreAdjusted)
	assert.Less(t, a.Rank, b.Rank)
	assert.True(t, result.Run.Converged)
}

func TestEngineOutputContract(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	result, err := engine.Run(context.Background(), scheduleLeague().records, testAsOf)
	require.NoError(t, err)
	require.Len(t, result.Teams, 10)
	assert.Equal(t, 10, result.Run.TeamsRanked)

	seen := make(map[string]bool)
	for i, team := range result.Teams {
		assert.Equal(t, i+1, team.Rank)
		assert.False(t, seen[team.TeamID])
		seen[team.TeamID] = true

		for _, v := range []float64{team.PowerScore, team.OffNorm, team.DefNorm, team.SOSNorm, team.ConfidenceMultiplier} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		assert.LessOrEqual(t, team.PowerScoreAdjusted, team.PowerScore)
		assert.GreaterOrEqual(t, team.GamesUsed, 1)
		assert.LessOrEqual(t, team.GamesUsed, 30)

		if i > 0 {
			assert.GreaterOrEqual(t, result.Teams[i-1].PowerScoreAdjusted, team.PowerScoreAdjusted)
		}
	}
}

func TestEngineCapsBlowouts(t *testing.T) {
	build := func(score int) []models.MatchRecord {
		l := &league{}
		l.play("a", "b", score, 0, 3)
		l.play("b", "c", 2, 1, 5)
		l.play("c", "a", 1, 1, 7)
		l.play("a", "c", 2, 0, 9)
		return l.records
	}

	engine := newTestEngine(t, DefaultConfig())
	capped, err := engine.Run(context.Background(), build(6), testAsOf)
	require.NoError(t, err)
	blowout, err := engine.Run(context.Background(), build(15), testAsOf)
	require.NoError(t, err)

	require.Len(t, blowout.Teams, len(capped.Teams))
	for i := range capped.Teams {
		assert.Equal(t, capped.Teams[i].TeamID, blowout.Teams[i].TeamID)
		assert.InDelta(t, capped.Teams[i].PowerScoreAdjusted, blowout.Teams[i].PowerScoreAdjusted, 1e-12)
		assert.InDelta(t, capped.Teams[i].OffNorm, blowout.Teams[i].OffNorm, 1e-12)
	}
}

func TestEngineIdenticalTeamsTie(t *testing.T) {
	l := &league{}
	teams := []string{"d", "c", "b", "a"}
	day := 1
	for i := range teams {
		for j := i + 1; j < len(teams); j++ {
			l.play(teams[i], teams[j], 1, 1, day)
			day++
		}
	}

	result, err := newTestEngine(t, DefaultConfig()).Run(context.Background(), l.records, testAsOf)
	require.NoError(t, err)

	// every metric is flat, so the id decides
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(result.Teams))
	for _, team := range result.Teams {
		assert.InDelta(t, Neutral, team.OffNorm, 1e-12)
		assert.InDelta(t, Neutral, team.DefNorm, 1e-12)
		assert.InDelta(t, Neutral, team.SOSNorm, 1e-12)
		assert.InDelta(t, result.Teams[0].PowerScoreAdjusted, team.PowerScoreAdjusted, 1e-12)
	}
	assert.Contains(t, result.Diagnostics.FlatMetrics(), MetricOffense)
	assert.Contains(t, result.Diagnostics.FlatMetrics(), MetricSOS)
}

func TestEngineExcludesTeamsWithoutWindow(t *testing.T) {
	l := &league{}
	l.play("a", "b", 2, 1, 3)
	l.play("a", "b", 0, 0, 10)
	l.play("old", "b", 1, 0, 400)

	result, err := newTestEngine(t, DefaultConfig()).Run(context.Background(), l.records, testAsOf)
	require.NoError(t, err)

	_, found := findTeam(result.Teams, "old")
	assert.False(t, found)
	assert.Equal(t, []string{"old"}, result.Diagnostics.ExcludedTeamIDs())
	assert.Equal(t, []string{"old"}, result.Run.ExcludedTeams)

	var insufficient *DataInsufficientError
	require.True(t, errors.As(result.Diagnostics.Warnings()[0], &insufficient))
	assert.Equal(t, 1, insufficient.GamesTotal)
}

func TestEngineConfidenceAndStatus(t *testing.T) {
	l := &league{}
	for d := 1; d <= 25; d++ {
		l.play("veteran", "pool", d%3, 1, d)
	}
	l.play("rookie", "pool", 1, 0, 2)
	l.play("rookie", "veteran", 1, 1, 4)

	result, err := newTestEngine(t, DefaultConfig()).Run(context.Background(), l.records, testAsOf)
	require.NoError(t, err)

	veteran, _ := findTeam(result.Teams, "veteran")
	rookie, _ := findTeam(result.Teams, "rookie")

	assert.Equal(t, 26, veteran.GamesUsed)
	assert.Equal(t, 2, rookie.GamesUsed)
	assert.Equal(t, 1.0, veteran.ConfidenceMultiplier)
	assert.Less(t, rookie.ConfidenceMultiplier, veteran.ConfidenceMultiplier)
	assert.Equal(t, models.StatusActive, veteran.Status)
	assert.Equal(t, models.StatusProvisional, rookie.Status)
}

// rookieLeague is a six-team round robin played three times plus a rookie
// with two narrow losses to the two strongest teams.
func rookieLeague() *league {
	l := &league{}
	teams := []string{"v1", "v2", "v3", "v4", "v5", "v6"}
	day := 1
	for round := 0; round < 3; round++ {
		for i := range teams {
			for j := i + 1; j < len(teams); j++ {
				l.play(teams[i], teams[j], 2, 1, day)
				day++
			}
		}
	}
	l.play("rookie", "v1", 1, 2, 3)
	l.play("rookie", "v2", 1, 2, 5)
	return l
}

func TestEngineThinSamplePullsScheduleTowardMean(t *testing.T) {
	records := rookieLeague().records

	cfg := DefaultConfig()
	cfg.Adaptive.MinGames = 10
	cfg.Adaptive.SampleExponent = 0
	plain, err := newTestEngine(t, cfg).Run(context.Background(), records, testAsOf)
	require.NoError(t, err)

	cfg.Adaptive.SampleExponent = 4
	shrunk, err := newTestEngine(t, cfg).Run(context.Background(), records, testAsOf)
	require.NoError(t, err)

	before, ok := findTeam(plain.Teams, "rookie")
	require.True(t, ok)
	after, ok := findTeam(shrunk.Teams, "rookie")
	require.True(t, ok)

	// two games against the top teams is the hardest schedule until the
	// sample factor discounts it
	assert.InDelta(t, 1.0, before.SOSNorm, 1e-9)
	assert.Less(t, after.SOSNorm, before.SOSNorm-0.05)
	assert.Less(t, after.PowerScore, before.PowerScore)
}

func TestEngineSOSFallbackForUnknownOpponents(t *testing.T) {
	records := []models.MatchRecord{
		{TeamID: "a", OpponentID: "outside", GoalsFor: 2, GoalsAgainst: 0, PlayedOn: testAsOf.AddDate(0, 0, -1)},
		{TeamID: "b", OpponentID: "c", GoalsFor: 1, GoalsAgainst: 0, PlayedOn: testAsOf.AddDate(0, 0, -2)},
		{TeamID: "c", OpponentID: "b", GoalsFor: 0, GoalsAgainst: 1, PlayedOn: testAsOf.AddDate(0, 0, -2)},
	}

	result, err := newTestEngine(t, DefaultConfig()).Run(context.Background(), records, testAsOf)
	require.NoError(t, err)

	a, ok := findTeam(result.Teams, "a")
	require.True(t, ok)
	assert.True(t, a.SOSFallback)
	assert.Equal(t, a.SOSBaselineNorm, a.SOSNorm)

	b, _ := findTeam(result.Teams, "b")
	assert.False(t, b.SOSFallback)
}

func TestEngineRunIsDeterministic(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	records := scheduleLeague().records

	first, err := engine.Run(context.Background(), records, testAsOf)
	require.NoError(t, err)

	reversed := make([]models.MatchRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	second, err := engine.Run(context.Background(), reversed, testAsOf)
	require.NoError(t, err)

	assert.Equal(t, first.Teams, second.Teams)
	assert.NotEqual(t, first.Run.RunID, second.Run.RunID)
}

func TestEngineEmptyInput(t *testing.T) {
	result, err := newTestEngine(t, DefaultConfig()).Run(context.Background(), nil, testAsOf)
	require.NoError(t, err)
	assert.Empty(t, result.Teams)
	assert.True(t, result.Run.Converged)
	assert.True(t, result.Diagnostics.Empty())
}

func TestEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.SOS = 0.9

	engine, err := NewEngine(cfg, nil)
	assert.Nil(t, engine)

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestEngineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(t, DefaultConfig()).Run(ctx, scheduleLeague().records, testAsOf)
	assert.ErrorIs(t, err, context.Canceled)
}

// twoDivisionLeague plays a double round robin in north and south plus two
// draws between the top team of each.
func twoDivisionLeague() *league {
	l := &league{}
	robin := func(teams []string, division string, start, homeGoals, awayGoals int) {
		day := start
		for i := range teams {
			for j := i + 1; j < len(teams); j++ {
				l.playInDivision(teams[i], teams[j], homeGoals, awayGoals, day, division, division)
				day++
			}
		}
	}
	north := []string{"n1", "n2", "n3"}
	south := []string{"s1", "s2", "s3"}
	robin(north, "north", 1, 3, 1)
	robin(south, "south", 10, 2, 1)
	robin(north, "north", 20, 3, 1)
	robin(south, "south", 30, 2, 1)
	l.playInDivision("s1", "n1", 1, 1, 40, "south", "north")
	l.playInDivision("s1", "n1", 1, 1, 45, "south", "north")
	return l
}

func TestEngineRunDivisionsSolvesAcrossDivisions(t *testing.T) {
	l := twoDivisionLeague()
	l.playInDivision("gone", "s2", 0, 1, 500, "south", "south")

	cfg := DefaultConfig()
	cfg.Solver.CrossDivisionBoost = 1.0
	plain, err := newTestEngine(t, cfg).RunDivisions(context.Background(), l.records, testAsOf)
	require.NoError(t, err)

	cfg.Solver.CrossDivisionBoost = 1.5
	boosted, err := newTestEngine(t, cfg).RunDivisions(context.Background(), l.records, testAsOf)
	require.NoError(t, err)

	require.Len(t, boosted, 2)
	assert.Equal(t, "north", boosted[0].Run.Division)
	assert.Equal(t, "south", boosted[1].Run.Division)
	assert.ElementsMatch(t, []string{"n1", "n2", "n3"}, ids(boosted[0].Teams))
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, ids(boosted[1].Teams))
	assert.NotEqual(t, boosted[0].Run.RunID, boosted[1].Run.RunID)

	// the stale team is reported against its own division only
	assert.Empty(t, boosted[0].Run.ExcludedTeams)
	assert.Equal(t, []string{"gone"}, boosted[1].Run.ExcludedTeams)

	// s1 drew a stronger cross-division opponent, which only counts when
	// north is visible to the solver
	before, _ := findTeam(plain[1].Teams, "s1")
	after, _ := findTeam(boosted[1].Teams, "s1")
	assert.Greater(t, after.SOSNorm, before.SOSNorm+0.1)
	assert.Greater(t, after.PowerScore, before.PowerScore)
}

func TestEngineRunDivisionsEmptyInput(t *testing.T) {
	results, err := newTestEngine(t, DefaultConfig()).RunDivisions(context.Background(), nil, testAsOf)
	require.NoError(t, err)
	assert.Empty(t, results)
}
