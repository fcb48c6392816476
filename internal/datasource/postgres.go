package datasource

import (
	"context"
	"time"

	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/models"
	"github.com/yourusername/power-rankings/internal/repository"
)

const postgresSourceName = "postgres"

// PostgresSource implements MatchSource over the matches table
type PostgresSource struct {
	repo   repository.MatchRepository
	logger *logger.SourceLogger
}

// NewPostgresSource creates a match source backed by a repository
func NewPostgresSource(repo repository.MatchRepository, log *logger.SourceLogger) *PostgresSource {
	return &PostgresSource{repo: repo, logger: log}
}

// Name returns the source name
func (s *PostgresSource) Name() string {
	return postgresSourceName
}

// IsEnabled reports whether a repository is attached
func (s *PostgresSource) IsEnabled() bool {
	return s.repo != nil
}

// FetchMatches loads the records played in [start, end]
func (s *PostgresSource) FetchMatches(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	if s.repo == nil {
		return nil, NewDataSourceError(postgresSourceName, ErrCodeDisabled, "data source is disabled", models.ErrSourceDisabled)
	}

	started := time.Now()
	records, err := s.repo.GetByDateRange(ctx, start, end)
	if err != nil {
		s.logger.LogFetchFailed(postgresSourceName, err)
		return nil, err
	}

	s.logger.LogFetch(postgresSourceName, len(records), float64(time.Since(started).Microseconds())/1000)
	return records, nil
}
