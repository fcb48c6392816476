package rankings

import (
	"fmt"
	"strings"
)

// ConfigurationError is the only fatal engine error. It is returned before any
// computation starts.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "invalid ranking configuration: " + strings.Join(e.Problems, "; ")
}

// DataInsufficientError marks a team with no eligible games in the window.
// The team is excluded from the output.
type DataInsufficientError struct {
	TeamID     string
	GamesTotal int
}

func (e *DataInsufficientError) Error() string {
	return fmt.Sprintf("team %s has no eligible games in window (%d total)", e.TeamID, e.GamesTotal)
}

// NonConvergenceWarning marks a solver run that reached its iteration ceiling.
// The last estimates are still used.
type NonConvergenceWarning struct {
	Iterations int
	MaxDelta   float64
	Epsilon    float64
}

func (e *NonConvergenceWarning) Error() string {
	return fmt.Sprintf("strength solver stopped after %d iterations with max delta %g (epsilon %g)", e.Iterations, e.MaxDelta, e.Epsilon)
}

// DegenerateDistributionCase marks a metric whose values were all equal.
// Every team receives 0.5 for it.
type DegenerateDistributionCase struct {
	Metric string
	Count  int
}

func (e *DegenerateDistributionCase) Error() string {
	return fmt.Sprintf("metric %s is flat across %d teams", e.Metric, e.Count)
}
