package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/power-rankings/internal/models"
)

// MatchSource supplies played matches to the ranking service
type MatchSource interface {
	// FetchMatches retrieves match records played in [start, end]. Both
	// sides of every match are returned. A zero start reads all history.
	FetchMatches(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error)

	// Name returns the name of the source
	Name() string

	// IsEnabled returns whether this source is currently enabled
	IsEnabled() bool
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
)

var (
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// dateLayout is the calendar date format used by feeds and files
const dateLayout = "2006-01-02"

// matchSides expands one played match into the record of each team
func matchSides(home, away string, homeGoals, awayGoals int, playedOn time.Time, division string) []models.MatchRecord {
	r := models.MatchRecord{
		TeamID:       home,
		OpponentID:   away,
		GoalsFor:     homeGoals,
		GoalsAgainst: awayGoals,
		PlayedOn:     playedOn,
		Division:     division,
	}
	return []models.MatchRecord{r, r.Mirror()}
}
