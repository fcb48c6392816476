package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/yourusername/power-rankings/internal/database"
	"github.com/yourusername/power-rankings/internal/models"
)

// ScorePlaces is the number of decimal places persisted for every score
const ScorePlaces = 6

var rankingColumns = []string{
	"run_id", "division", "rank", "team_id", "display_name",
	"power_score", "power_score_adjusted", "off_norm", "def_norm", "sos_norm", "sos_baseline_norm",
	"sos_fallback", "confidence_multiplier", "games_used", "games_total", "status", "last_match_date",
}

// PostgresRankingRepository implements RankingRepository for PostgreSQL
type PostgresRankingRepository struct {
	db *database.DB
}

// NewPostgresRankingRepository creates a new ranking repository
func NewPostgresRankingRepository(db *database.DB) RankingRepository {
	return &PostgresRankingRepository{db: db}
}

// ReplaceDivision records the run, deletes the division's previous table and
// copies the new one in, all in one transaction. Readers never see a
// partially written table.
func (r *PostgresRankingRepository) ReplaceDivision(ctx context.Context, run models.RankingRun, teams []models.RankedTeam) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO ranking_runs (run_id, division, as_of, computed_at, teams_ranked, excluded_teams,
			                          converged, iterations, max_delta, flat_metrics, records_read, duration_ms)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			run.RunID, run.Division, run.AsOf, run.ComputedAt, run.TeamsRanked, nonNil(run.ExcludedTeams),
			run.Converged, run.Iterations, run.MaxDelta, nonNil(run.FlatMetrics), run.RecordsRead, run.DurationMillis,
		)
		if err != nil {
			return fmt.Errorf("failed to record ranking run: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM team_rankings WHERE division = $1`, run.Division); err != nil {
			return fmt.Errorf("failed to clear division %q: %w", run.Division, err)
		}

		if len(teams) == 0 {
			return nil
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{"team_rankings"}, rankingColumns, pgx.CopyFromRows(rankingRows(run, teams)))
		if err != nil {
			return fmt.Errorf("failed to copy ranking table: %w", err)
		}
		if count != int64(len(teams)) {
			return fmt.Errorf("inserted %d rows, expected %d", count, len(teams))
		}
		return nil
	})
}

// GetByDivision retrieves the published table of a division in rank order.
// It returns ErrEmptyRankingTable only when the division was never published.
func (r *PostgresRankingRepository) GetByDivision(ctx context.Context, division string) ([]models.RankedTeam, error) {
	query := `
		SELECT rank, team_id, display_name, division, power_score, power_score_adjusted,
		       off_norm, def_norm, sos_norm, sos_baseline_norm, sos_fallback,
		       confidence_multiplier, games_used, games_total, status, last_match_date
		FROM team_rankings
		WHERE division = $1
		ORDER BY rank ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, division)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	var teams []models.RankedTeam
	for rows.Next() {
		var t models.RankedTeam
		var power, adjusted, off, def, sos, baseline, confidence pgtype.Numeric
		err := rows.Scan(
			&t.Rank, &t.TeamID, &t.DisplayName, &t.Division, &power, &adjusted,
			&off, &def, &sos, &baseline, &t.SOSFallback,
			&confidence, &t.GamesUsed, &t.GamesTotal, &t.Status, &t.LastMatchDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		t.PowerScore = fromNumeric(power)
		t.PowerScoreAdjusted = fromNumeric(adjusted)
		t.OffNorm = fromNumeric(off)
		t.DefNorm = fromNumeric(def)
		t.SOSNorm = fromNumeric(sos)
		t.SOSBaselineNorm = fromNumeric(baseline)
		t.ConfidenceMultiplier = fromNumeric(confidence)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(teams) == 0 {
		// a division published with zero ranked teams is a valid empty table
		var published bool
		err := r.db.GetPool().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ranking_runs WHERE division = $1)`, division).Scan(&published)
		if err != nil {
			return nil, fmt.Errorf("failed to check ranking runs: %w", err)
		}
		if !published {
			return nil, models.ErrEmptyRankingTable
		}
		return []models.RankedTeam{}, nil
	}
	return teams, nil
}

// GetLatestRun retrieves the most recent run recorded for a division
func (r *PostgresRankingRepository) GetLatestRun(ctx context.Context, division string) (*models.RankingRun, error) {
	query := `
		SELECT run_id, division, as_of, computed_at, teams_ranked, excluded_teams,
		       converged, iterations, max_delta, flat_metrics, records_read, duration_ms
		FROM ranking_runs
		WHERE division = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`

	run := &models.RankingRun{}
	err := r.db.GetPool().QueryRow(ctx, query, division).Scan(
		&run.RunID, &run.Division, &run.AsOf, &run.ComputedAt, &run.TeamsRanked, &run.ExcludedTeams,
		&run.Converged, &run.Iterations, &run.MaxDelta, &run.FlatMetrics, &run.RecordsRead, &run.DurationMillis,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest ranking run: %w", err)
	}

	return run, nil
}

func rankingRows(run models.RankingRun, teams []models.RankedTeam) [][]interface{} {
	rows := make([][]interface{}, len(teams))
	for i, t := range teams {
		rows[i] = []interface{}{
			run.RunID, run.Division, t.Rank, t.TeamID, t.DisplayName,
			toNumeric(t.PowerScore), toNumeric(t.PowerScoreAdjusted),
			toNumeric(t.OffNorm), toNumeric(t.DefNorm), toNumeric(t.SOSNorm), toNumeric(t.SOSBaselineNorm),
			t.SOSFallback, toNumeric(t.ConfidenceMultiplier),
			t.GamesUsed, t.GamesTotal, string(t.Status), t.LastMatchDate,
		}
	}
	return rows
}

// RoundScore rounds a score to the persisted precision
func RoundScore(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(ScorePlaces)
}

func toNumeric(v float64) pgtype.Numeric {
	d := RoundScore(v)
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func fromNumeric(n pgtype.Numeric) float64 {
	if !n.Valid || n.Int == nil {
		return 0
	}
	return decimal.NewFromBigInt(n.Int, n.Exp).InexactFloat64()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
