package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/power-rankings/internal/database"
	"github.com/yourusername/power-rankings/internal/models"
)

var matchColumns = []string{"team_id", "opponent_id", "goals_for", "goals_against", "played_on", "division"}

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// GetByDateRange retrieves match records played in [start, end]
func (r *PostgresMatchRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	query := `
		SELECT team_id, opponent_id, goals_for, goals_against, played_on, division
		FROM matches
		WHERE played_on >= $1 AND played_on <= $2
		ORDER BY played_on ASC, team_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches by date range: %w", err)
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var m models.MatchRecord
		if err := rows.Scan(&m.TeamID, &m.OpponentID, &m.GoalsFor, &m.GoalsAgainst, &m.PlayedOn, &m.Division); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		records = append(records, m)
	}

	return records, rows.Err()
}

// InsertBatch inserts match records using COPY
func (r *PostgresMatchRepository) InsertBatch(ctx context.Context, records []models.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"matches"}, matchColumns, pgx.CopyFromRows(matchRows(records)))
	if err != nil {
		return fmt.Errorf("failed to batch insert matches: %w", err)
	}

	if count != int64(len(records)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(records))
	}

	return nil
}

func matchRows(records []models.MatchRecord) [][]interface{} {
	rows := make([][]interface{}, len(records))
	for i, m := range records {
		rows[i] = []interface{}{m.TeamID, m.OpponentID, m.GoalsFor, m.GoalsAgainst, m.PlayedOn, m.Division}
	}
	return rows
}
