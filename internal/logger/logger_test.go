package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerForEnvironment(t *testing.T) {
	prod := NewLoggerForEnvironment("debug", "production")
	assert.Equal(t, logrus.DebugLevel, prod.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)

	dev := NewLoggerForEnvironment("bogus", "development")
	assert.Equal(t, logrus.InfoLevel, dev.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)
}

func TestRankingLoggerRunCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	rankingLogger := NewRankingLogger(log)

	rankingLogger.LogRunCompleted("run_1", "U12", 42, 3, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "rankings", logEntry["component"])
	assert.Equal(t, "U12", logEntry["division"])
	assert.Equal(t, float64(42), logEntry["teams_ranked"])
}

func TestRankingLoggerSolverOutcome(t *testing.T) {
	log, buf := setupTestLogger()
	rankingLogger := NewRankingLogger(log)

	rankingLogger.LogSolverOutcome("run_1", "max_iterations_reached", 200, 0.01)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, float64(200), logEntry["iterations"])
}

func TestAuditLoggerTablePublished(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogTablePublished("run_1", "U14", 30, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "2026-03-01", logEntry["as_of"])
	assert.Equal(t, float64(30), logEntry["rows"])
}

func TestAuditLoggerRecordsRejected(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogRecordsRejected("csv", 2, map[string]int{"goals_for": 2})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "csv", logEntry["source"])
}

func TestSourceLoggerFetchFailed(t *testing.T) {
	log, buf := setupTestLogger()
	sourceLogger := NewSourceLogger(log)

	sourceLogger.LogFetchFailed("feed", errors.New("boom"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "boom", logEntry["error"])
	assert.Equal(t, "source", logEntry["component"])
}

func BenchmarkRankingLoggerRunCompleted(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	rankingLogger := NewRankingLogger(log)

	for i := 0; i < b.N; i++ {
		rankingLogger.LogRunCompleted("run_1", "U12", 42, 3, 12.5)
	}
}
