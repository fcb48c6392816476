// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogTablePublished logs the full replacement of a published ranking table.
func (al *AuditLogger) LogTablePublished(runID, division string, rows int, asOf time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":    runID,
		"division":  division,
		"rows":      rows,
		"as_of":     asOf.Format("2006-01-02"),
		"timestamp": time.Now().Unix(),
	}).Info("Ranking table replaced")
}

// LogRecordsRejected logs match records dropped by validation.
func (al *AuditLogger) LogRecordsRejected(source string, rejected int, reasons map[string]int) {
	al.WithFields(logrus.Fields{
		"source":   source,
		"rejected": rejected,
		"reasons":  reasons,
	}).Warn("Match records rejected")
}

// LogConfigurationLoaded logs the effective ranking parameters of a run.
func (al *AuditLogger) LogConfigurationLoaded(environment string, parameters map[string]interface{}) {
	al.WithFields(logrus.Fields{
		"environment": environment,
		"parameters":  parameters,
	}).Info("Ranking configuration loaded")
}
