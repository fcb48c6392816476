// Package report renders published ranking tables for the terminal and for
// file export.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/power-rankings/internal/models"
)

// Supported export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// scorePlaces is the number of decimals written for score columns
const scorePlaces = 6

var csvHeader = []string{
	"rank", "team_id", "display_name", "division",
	"power_score", "power_score_adjusted",
	"off_norm", "def_norm", "sos_norm", "sos_baseline_norm", "sos_fallback",
	"confidence_multiplier", "games_used", "games_total", "status", "last_match_date",
}

// Row is one exported ranking row with scores fixed to six decimals
type Row struct {
	Rank                 int             `json:"rank"`
	TeamID               string          `json:"team_id"`
	DisplayName          string          `json:"display_name"`
	Division             string          `json:"division,omitempty"`
	PowerScore           decimal.Decimal `json:"power_score"`
	PowerScoreAdjusted   decimal.Decimal `json:"power_score_adjusted"`
	OffNorm              decimal.Decimal `json:"off_norm"`
	DefNorm              decimal.Decimal `json:"def_norm"`
	SOSNorm              decimal.Decimal `json:"sos_norm"`
	SOSBaselineNorm      decimal.Decimal `json:"sos_baseline_norm"`
	SOSFallback          bool            `json:"sos_fallback"`
	ConfidenceMultiplier decimal.Decimal `json:"confidence_multiplier"`
	GamesUsed            int             `json:"games_used"`
	GamesTotal           int             `json:"games_total"`
	Status               string          `json:"status"`
	LastMatchDate        string          `json:"last_match_date"`
}

// Document is the JSON export layout
type Document struct {
	Run  models.RankingRun `json:"run"`
	Rows []Row             `json:"rows"`
}

// Rows converts ranked teams into export rows
func Rows(teams []models.RankedTeam) []Row {
	rows := make([]Row, len(teams))
	for i, t := range teams {
		rows[i] = Row{
			Rank:                 t.Rank,
			TeamID:               t.TeamID,
			DisplayName:          t.DisplayName,
			Division:             t.Division,
			PowerScore:           fixed(t.PowerScore),
			PowerScoreAdjusted:   fixed(t.PowerScoreAdjusted),
			OffNorm:              fixed(t.OffNorm),
			DefNorm:              fixed(t.DefNorm),
			SOSNorm:              fixed(t.SOSNorm),
			SOSBaselineNorm:      fixed(t.SOSBaselineNorm),
			SOSFallback:          t.SOSFallback,
			ConfidenceMultiplier: fixed(t.ConfidenceMultiplier),
			GamesUsed:            t.GamesUsed,
			GamesTotal:           t.GamesTotal,
			Status:               string(t.Status),
			LastMatchDate:        t.LastMatchDate.Format("2006-01-02"),
		}
	}
	return rows
}

func fixed(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(scorePlaces)
}

// GenerateConsoleReport formats a ranking table for terminal output
func GenerateConsoleReport(run models.RankingRun, teams []models.RankedTeam) string {
	var builder strings.Builder

	title := "Power Rankings"
	if run.Division != "" {
		title += " - " + run.Division
	}
	builder.WriteString(title + "\n")
	builder.WriteString(strings.Repeat("=", len(title)) + "\n")
	builder.WriteString(fmt.Sprintf("As of: %s  Run: %s\n", run.AsOf.Format("2006-01-02"), run.RunID))
	builder.WriteString(fmt.Sprintf("Teams ranked: %d  Excluded: %d  Solver: %d iterations (converged=%t)\n",
		run.TeamsRanked, len(run.ExcludedTeams), run.Iterations, run.Converged))
	if len(run.FlatMetrics) > 0 {
		builder.WriteString(fmt.Sprintf("Flat metrics: %s\n", strings.Join(run.FlatMetrics, ", ")))
	}
	builder.WriteString("\n")

	builder.WriteString(fmt.Sprintf("%4s  %-28s %8s %8s %6s %6s %6s %5s %5s  %s\n",
		"Rank", "Team", "Power", "Adj", "Off", "Def", "SOS", "Conf", "GP", "Status"))
	for _, r := range Rows(teams) {
		builder.WriteString(fmt.Sprintf("%4d  %-28s %8s %8s %6s %6s %6s %5s %5d  %s\n",
			r.Rank,
			truncate(r.DisplayName, 28),
			r.PowerScore.StringFixed(4),
			r.PowerScoreAdjusted.StringFixed(4),
			r.OffNorm.StringFixed(3),
			r.DefNorm.StringFixed(3),
			r.SOSNorm.StringFixed(3),
			r.ConfidenceMultiplier.StringFixed(2),
			r.GamesUsed,
			r.Status,
		))
	}
	return builder.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

// GenerateCSVExport writes a ranking table as CSV
func GenerateCSVExport(teams []models.RankedTeam, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range Rows(teams) {
		record := []string{
			strconv.Itoa(r.Rank),
			r.TeamID,
			r.DisplayName,
			r.Division,
			r.PowerScore.StringFixed(scorePlaces),
			r.PowerScoreAdjusted.StringFixed(scorePlaces),
			r.OffNorm.StringFixed(scorePlaces),
			r.DefNorm.StringFixed(scorePlaces),
			r.SOSNorm.StringFixed(scorePlaces),
			r.SOSBaselineNorm.StringFixed(scorePlaces),
			strconv.FormatBool(r.SOSFallback),
			r.ConfidenceMultiplier.StringFixed(scorePlaces),
			strconv.Itoa(r.GamesUsed),
			strconv.Itoa(r.GamesTotal),
			r.Status,
			r.LastMatchDate,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return f.Close()
}

// GenerateJSONExport writes the run and its table as indented JSON
func GenerateJSONExport(run models.RankingRun, teams []models.RankedTeam, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(Document{Run: run, Rows: Rows(teams)}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rankings: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// FileName returns the export file name for a run
func FileName(run models.RankingRun, format string) string {
	division := run.Division
	if division == "" {
		division = "all"
	}
	division = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, division)
	return fmt.Sprintf("rankings_%s_%s.%s", division, run.AsOf.Format("20060102"), format)
}

// Export writes a table into outputDir in the given format and returns the
// file path.
func Export(format, outputDir string, run models.RankingRun, teams []models.RankedTeam) (string, error) {
	path := filepath.Join(outputDir, FileName(run, format))
	switch format {
	case FormatCSV:
		return path, GenerateCSVExport(teams, path)
	case FormatJSON:
		return path, GenerateJSONExport(run, teams, path)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}
