// Package logger provides match-source logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SourceLogger provides dedicated logging for match sources.
type SourceLogger struct {
	*logrus.Entry
}

// NewSourceLogger creates a new source logger.
func NewSourceLogger(baseLogger *logrus.Logger) *SourceLogger {
	return &SourceLogger{
		Entry: baseLogger.WithField("component", "source"),
	}
}

// LogFetch logs a completed fetch from a match source.
func (sl *SourceLogger) LogFetch(source string, records int, latencyMs float64) {
	sl.WithFields(logrus.Fields{
		"source":     source,
		"records":    records,
		"latency_ms": latencyMs,
	}).Info("Match records fetched")
}

// LogFetchFailed logs a failed fetch.
func (sl *SourceLogger) LogFetchFailed(source string, err error) {
	sl.WithFields(logrus.Fields{
		"source": source,
		"error":  err.Error(),
	}).Error("Match fetch failed")
}
