package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/power-rankings/internal/database"
	"github.com/yourusername/power-rankings/internal/models"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// GetByID retrieves a team by its canonical id
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT id, display_name, division FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(&team.ID, &team.DisplayName, &team.Division)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetAll retrieves every team ordered by id
func (r *PostgresTeamRepository) GetAll(ctx context.Context) ([]*models.Team, error) {
	rows, err := r.db.GetPool().Query(ctx, `SELECT id, display_name, division FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.DisplayName, &team.Division); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// Upsert inserts a team or updates its name and division
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, display_name, division)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, division = EXCLUDED.division
	`

	if _, err := r.db.GetPool().Exec(ctx, query, team.ID, team.DisplayName, team.Division); err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}
