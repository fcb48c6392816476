package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/power-rankings/internal/config"
	"github.com/yourusername/power-rankings/internal/models"
)

var testAsOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func played(home, away string, homeGoals, awayGoals, daysAgo int, division string) []models.MatchRecord {
	r := models.MatchRecord{
		TeamID:       home,
		OpponentID:   away,
		GoalsFor:     homeGoals,
		GoalsAgainst: awayGoals,
		PlayedOn:     testAsOf.AddDate(0, 0, -daysAgo),
		Division:     division,
	}
	return []models.MatchRecord{r, r.Mirror()}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}

type fakeSource struct {
	records  []models.MatchRecord
	err      error
	disabled bool

	mu        sync.Mutex
	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeSource) FetchMatches(_ context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	f.mu.Lock()
	f.lastStart, f.lastEnd = start, end
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeSource) Name() string   { return "fake" }
func (f *fakeSource) IsEnabled() bool { return !f.disabled }

type fakeRankingStore struct {
	mu     sync.Mutex
	tables map[string][]models.RankedTeam
	runs   map[string]models.RankingRun
	err    error
}

func newFakeRankingStore() *fakeRankingStore {
	return &fakeRankingStore{
		tables: make(map[string][]models.RankedTeam),
		runs:   make(map[string]models.RankingRun),
	}
}

func (f *fakeRankingStore) ReplaceDivision(_ context.Context, run models.RankingRun, teams []models.RankedTeam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tables[run.Division] = append([]models.RankedTeam(nil), teams...)
	f.runs[run.Division] = run
	return nil
}

func (f *fakeRankingStore) GetByDivision(_ context.Context, division string) ([]models.RankedTeam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runs[division]; !ok {
		return nil, models.ErrEmptyRankingTable
	}
	return append([]models.RankedTeam{}, f.tables[division]...), nil
}

func (f *fakeRankingStore) GetLatestRun(_ context.Context, division string) (*models.RankingRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[division]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &run, nil
}

type fakeTeamRepo struct {
	mu      sync.Mutex
	teams   map[string]*models.Team
	err     error
	byIDHit int
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: make(map[string]*models.Team)}
	for _, t := range teams {
		repo.teams[t.ID] = t
	}
	return repo
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDHit++
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.teams[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return t, nil
}

func (f *fakeTeamRepo) GetAll(_ context.Context) ([]*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTeamRepo) Upsert(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[team.ID] = team
	return nil
}
