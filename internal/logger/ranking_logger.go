// Package logger provides ranking-engine logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RankingLogger provides dedicated logging for ranking engine runs.
type RankingLogger struct {
	*logrus.Entry
}

// NewRankingLogger creates a new ranking logger.
func NewRankingLogger(baseLogger *logrus.Logger) *RankingLogger {
	return &RankingLogger{
		Entry: baseLogger.WithField("component", "rankings"),
	}
}

// LogRunStarted logs the start of an engine run.
func (rl *RankingLogger) LogRunStarted(runID, division string, asOf time.Time, records int) {
	rl.WithFields(logrus.Fields{
		"run_id":   runID,
		"division": division,
		"as_of":    asOf.Format("2006-01-02"),
		"records":  records,
	}).Info("Ranking run started")
}

// LogRunCompleted logs the outcome of an engine run.
func (rl *RankingLogger) LogRunCompleted(runID, division string, teamsRanked, teamsExcluded int, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"run_id":         runID,
		"division":       division,
		"teams_ranked":   teamsRanked,
		"teams_excluded": teamsExcluded,
		"duration_ms":    durationMs,
	}).Info("Ranking run completed")
}

// LogSolverOutcome logs how the opponent strength solver terminated.
func (rl *RankingLogger) LogSolverOutcome(runID, state string, iterations int, maxDelta float64) {
	entry := rl.WithFields(logrus.Fields{
		"run_id":     runID,
		"state":      state,
		"iterations": iterations,
		"max_delta":  maxDelta,
	})
	if state != "converged" {
		entry.Warn("Strength solver hit iteration ceiling, using last estimates")
		return
	}
	entry.Debug("Strength solver converged")
}

// LogTeamExcluded logs a team dropped for lack of eligible games.
func (rl *RankingLogger) LogTeamExcluded(runID, teamID string, gamesTotal int) {
	rl.WithFields(logrus.Fields{
		"run_id":      runID,
		"team_id":     teamID,
		"games_total": gamesTotal,
	}).Debug("Team excluded: no eligible games in window")
}

// LogFlatMetric logs a metric whose distribution had no spread.
func (rl *RankingLogger) LogFlatMetric(runID, metric string) {
	rl.WithFields(logrus.Fields{
		"run_id": runID,
		"metric": metric,
	}).Info("Metric distribution is flat, normalized to 0.5")
}
