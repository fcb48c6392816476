package repository

import (
	"context"
	"time"

	"github.com/yourusername/power-rankings/internal/models"
)

// MatchRepository defines the interface for match record access
type MatchRepository interface {
	GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error)
	InsertBatch(ctx context.Context, records []models.MatchRecord) error
}

// TeamRepository defines the interface for the team directory
type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*models.Team, error)
	GetAll(ctx context.Context) ([]*models.Team, error)
	Upsert(ctx context.Context, team *models.Team) error
}

// RankingRepository defines the interface for published ranking tables
type RankingRepository interface {
	// ReplaceDivision atomically swaps a division's table for the given run
	ReplaceDivision(ctx context.Context, run models.RankingRun, teams []models.RankedTeam) error
	GetByDivision(ctx context.Context, division string) ([]models.RankedTeam, error)
	GetLatestRun(ctx context.Context, division string) (*models.RankingRun, error)
}
