package service

import (
	"context"
	"errors"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/metrics"
	"github.com/yourusername/power-rankings/internal/models"
	"github.com/yourusername/power-rankings/internal/repository"
)

// DefaultDirectoryTTL is how long a resolved display name is kept
const DefaultDirectoryTTL = 30 * time.Minute

// TeamDirectory resolves canonical team ids to display names through a TTL
// cache over the teams repository.
type TeamDirectory struct {
	repo      repository.TeamRepository
	cache     *cache.Cache
	ttl       time.Duration
	logger    *logrus.Entry
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewTeamDirectory creates a new team directory. A nil repository makes
// every lookup fall back to the team id.
func NewTeamDirectory(repo repository.TeamRepository, ttl time.Duration, log *logrus.Logger) *TeamDirectory {
	if ttl <= 0 {
		ttl = DefaultDirectoryTTL
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &TeamDirectory{
		repo:   repo,
		cache:  cache.New(ttl, ttl*2),
		ttl:    ttl,
		logger: log.WithField("component", "team_directory"),
	}
}

// Preload fills the cache with every known team
func (d *TeamDirectory) Preload(ctx context.Context) error {
	if d.repo == nil {
		return nil
	}
	teams, err := d.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, t := range teams {
		d.cache.Set(t.ID, nameOrID(t), d.ttl)
	}
	d.logger.WithField("teams", len(teams)).Debug("Team directory preloaded")
	return nil
}

// DisplayName returns the team's display name, or the id when the directory
// has none.
func (d *TeamDirectory) DisplayName(ctx context.Context, teamID string) string {
	if name, found := d.cache.Get(teamID); found {
		d.record(true)
		if s, ok := name.(string); ok {
			return s
		}
	}
	d.record(false)

	if d.repo == nil {
		return teamID
	}

	team, err := d.repo.GetByID(ctx, teamID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		d.cache.Set(teamID, teamID, d.ttl)
		return teamID
	case err != nil:
		d.logger.WithError(err).WithField("team_id", teamID).Warn("Team lookup failed, using id as name")
		return teamID
	}

	name := nameOrID(team)
	d.cache.Set(teamID, name, d.ttl)
	return name
}

// Attach fills in the display name of every ranked team
func (d *TeamDirectory) Attach(ctx context.Context, teams []models.RankedTeam) {
	for i := range teams {
		teams[i].DisplayName = d.DisplayName(ctx, teams[i].TeamID)
	}
}

// Clear flushes the cache
func (d *TeamDirectory) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache.Flush()
	d.hitCount = 0
	d.missCount = 0
}

// Stats returns cache statistics
func (d *TeamDirectory) Stats() (hits, misses uint64, ratio float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	hits = d.hitCount
	misses = d.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (d *TeamDirectory) record(hit bool) {
	d.mu.Lock()
	if hit {
		d.hitCount++
	} else {
		d.missCount++
	}
	d.mu.Unlock()
	metrics.RecordDirectoryLookup(hit)
}

func nameOrID(t *models.Team) string {
	if t.DisplayName == "" {
		return t.ID
	}
	return t.DisplayName
}
