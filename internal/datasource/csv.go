package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/models"
)

const csvSourceName = "csv"

// csvColumns is the required header, in any order. division is optional.
var csvColumns = []string{"home_team_id", "away_team_id", "home_goals", "away_goals", "played_on"}

// CSVSource implements MatchSource over a file with one match per row
type CSVSource struct {
	path   string
	logger *logger.SourceLogger
}

// NewCSVSource creates a CSV match source
func NewCSVSource(path string, log *logger.SourceLogger) *CSVSource {
	return &CSVSource{path: path, logger: log}
}

// Name returns the source name
func (s *CSVSource) Name() string {
	return csvSourceName
}

// IsEnabled reports true; a file source is configured or absent
func (s *CSVSource) IsEnabled() bool {
	return true
}

// FetchMatches reads the file and returns the records played in [start, end]
func (s *CSVSource) FetchMatches(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	started := time.Now()

	f, err := os.Open(s.path)
	if err != nil {
		s.logger.LogFetchFailed(csvSourceName, err)
		return nil, fmt.Errorf("failed to open match file: %w", err)
	}
	defer f.Close()

	records, err := ReadMatchesCSV(ctx, f, start, end)
	if err != nil {
		s.logger.LogFetchFailed(csvSourceName, err)
		return nil, err
	}

	s.logger.LogFetch(csvSourceName, len(records), float64(time.Since(started).Microseconds())/1000)
	return records, nil
}

// ReadMatchesCSV parses matches from r, keeping those played in [start, end]
func ReadMatchesCSV(ctx context.Context, r io.Reader, start, end time.Time) ([]models.MatchRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "failed to read header", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("missing column %q", col), nil)
		}
	}
	divisionCol, hasDivision := index["division"]

	from := start.UTC().Truncate(24 * time.Hour)
	to := end.UTC()

	var records []models.MatchRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("line %d", line), err)
		}

		homeGoals, err := strconv.Atoi(row[index["home_goals"]])
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("line %d: home_goals", line), err)
		}
		awayGoals, err := strconv.Atoi(row[index["away_goals"]])
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("line %d: away_goals", line), err)
		}
		playedOn, err := time.Parse(dateLayout, row[index["played_on"]])
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("line %d: played_on", line), err)
		}
		if playedOn.Before(from) || playedOn.After(to) {
			continue
		}

		division := ""
		if hasDivision {
			division = row[divisionCol]
		}
		records = append(records, matchSides(row[index["home_team_id"]], row[index["away_team_id"]], homeGoals, awayGoals, playedOn, division)...)
	}

	return records, nil
}
