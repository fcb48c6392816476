package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamStatus classifies how stable a team's estimate is
type TeamStatus string

const (
	StatusActive      TeamStatus = "Active"
	StatusProvisional TeamStatus = "Provisional"
)

// RankedTeam is one row of the published ranking table
type RankedTeam struct {
	Rank                 int        `db:"rank" json:"rank"`
	TeamID               string     `db:"team_id" json:"team_id"`
	DisplayName          string     `db:"display_name" json:"display_name"`
	Division             string     `db:"division" json:"division,omitempty"`
	PowerScore           float64    `db:"power_score" json:"power_score"`
	PowerScoreAdjusted   float64    `db:"power_score_adjusted" json:"power_score_adjusted"`
	OffNorm              float64    `db:"off_norm" json:"off_norm"`
	DefNorm              float64    `db:"def_norm" json:"def_norm"`
	SOSNorm              float64    `db:"sos_norm" json:"sos_norm"`
	SOSBaselineNorm      float64    `db:"sos_baseline_norm" json:"sos_baseline_norm"`
	SOSFallback          bool       `db:"sos_fallback" json:"sos_fallback"`
	ConfidenceMultiplier float64    `db:"confidence_multiplier" json:"confidence_multiplier"`
	GamesUsed            int        `db:"games_used" json:"games_used"`
	GamesTotal           int        `db:"games_total" json:"games_total"`
	Status               TeamStatus `db:"status" json:"status"`
	LastMatchDate        time.Time  `db:"last_match_date" json:"last_match_date"`
}

// IsActive reports whether the team has enough games for a stable estimate
func (rt *RankedTeam) IsActive() bool {
	return rt.Status == StatusActive
}

// RankingRun describes a single engine invocation and its diagnostics
type RankingRun struct {
	RunID          uuid.UUID `db:"run_id" json:"run_id"`
	Division       string    `db:"division" json:"division,omitempty"`
	AsOf           time.Time `db:"as_of" json:"as_of"`
	ComputedAt     time.Time `db:"computed_at" json:"computed_at"`
	TeamsRanked    int       `db:"teams_ranked" json:"teams_ranked"`
	ExcludedTeams  []string  `db:"excluded_teams" json:"excluded_teams,omitempty"`
	Converged      bool      `db:"converged" json:"converged"`
	Iterations     int       `db:"iterations" json:"iterations"`
	MaxDelta       float64   `db:"max_delta" json:"max_delta"`
	FlatMetrics    []string  `db:"flat_metrics" json:"flat_metrics,omitempty"`
	RecordsRead    int       `db:"records_read" json:"records_read"`
	DurationMillis int64     `db:"duration_ms" json:"duration_ms"`
}

// Team is a canonical team known to the directory
type Team struct {
	ID          string `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
	Division    string `db:"division" json:"division,omitempty"`
}
