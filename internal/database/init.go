package database

import (
	"context"
	"fmt"

	"github.com/yourusername/power-rankings/internal/config"
)

// Schema creates the tables the rankings service reads and writes. Every
// statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS teams (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	division     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS matches (
	team_id       TEXT NOT NULL,
	opponent_id   TEXT NOT NULL,
	goals_for     INTEGER NOT NULL CHECK (goals_for >= 0),
	goals_against INTEGER NOT NULL CHECK (goals_against >= 0),
	played_on     DATE NOT NULL,
	division      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_matches_played_on ON matches (played_on);

CREATE TABLE IF NOT EXISTS ranking_runs (
	run_id         UUID PRIMARY KEY,
	division       TEXT NOT NULL,
	as_of          DATE NOT NULL,
	computed_at    TIMESTAMPTZ NOT NULL,
	teams_ranked   INTEGER NOT NULL,
	excluded_teams TEXT[] NOT NULL DEFAULT '{}',
	converged      BOOLEAN NOT NULL,
	iterations     INTEGER NOT NULL,
	max_delta      DOUBLE PRECISION NOT NULL,
	flat_metrics   TEXT[] NOT NULL DEFAULT '{}',
	records_read   INTEGER NOT NULL,
	duration_ms    BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS team_rankings (
	run_id                UUID NOT NULL REFERENCES ranking_runs (run_id),
	division              TEXT NOT NULL,
	rank                  INTEGER NOT NULL,
	team_id               TEXT NOT NULL,
	display_name          TEXT NOT NULL,
	power_score           NUMERIC(10, 6) NOT NULL,
	power_score_adjusted  NUMERIC(10, 6) NOT NULL,
	off_norm              NUMERIC(10, 6) NOT NULL,
	def_norm              NUMERIC(10, 6) NOT NULL,
	sos_norm              NUMERIC(10, 6) NOT NULL,
	sos_baseline_norm     NUMERIC(10, 6) NOT NULL,
	sos_fallback          BOOLEAN NOT NULL,
	confidence_multiplier NUMERIC(10, 6) NOT NULL,
	games_used            INTEGER NOT NULL,
	games_total           INTEGER NOT NULL,
	status                TEXT NOT NULL,
	last_match_date       DATE NOT NULL,
	PRIMARY KEY (division, team_id)
);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema applies Schema
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
