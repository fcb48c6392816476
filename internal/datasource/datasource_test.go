package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/power-rankings/internal/config"
	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/models"
)

var (
	rangeStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
)

func testSourceLogger() *logger.SourceLogger {
	return logger.NewSourceLogger(logger.NewDiscardLogger())
}

func fastHTTPConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 1000
	return cfg
}

func TestFeedClientFetchMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches", r.URL.Path)
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-06-01", r.URL.Query().Get("to"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"home_team_id":"a","away_team_id":"b","home_goals":3,"away_goals":1,"played_on":"2026-05-02","division":"u12"}
		]`))
	}))
	defer server.Close()

	client := NewFeedClient(NewRateLimitedHTTPClient(fastHTTPConfig(), nil), server.URL, "key", true, testSourceLogger())
	records, err := client.FetchMatches(context.Background(), rangeStart, rangeEnd)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.MatchRecord{
		TeamID: "a", OpponentID: "b", GoalsFor: 3, GoalsAgainst: 1,
		PlayedOn: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), Division: "u12",
	}, records[0])
	assert.Equal(t, "b", records[1].TeamID)
	assert.Equal(t, 1, records[1].GoalsFor)
}

func TestFeedClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewFeedClient(NewRateLimitedHTTPClient(fastHTTPConfig(), nil), server.URL, "", true, testSourceLogger())
	records, err := client.FetchMatches(context.Background(), rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFeedClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, "", ErrCodeAuthenticationFailed},
		{"bad json", http.StatusOK, "{", ErrCodeInvalidData},
		{"bad date", http.StatusOK, `[{"home_team_id":"a","away_team_id":"b","played_on":"May 2"}]`, ErrCodeInvalidData},
		{"not found", http.StatusNotFound, "missing", ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewFeedClient(NewRateLimitedHTTPClient(fastHTTPConfig(), nil), server.URL, "", true, testSourceLogger())
			_, err := client.FetchMatches(context.Background(), rangeStart, rangeEnd)

			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tt.code, dsErr.Code)
		})
	}
}

func TestFeedClientDisabled(t *testing.T) {
	client := NewFeedClient(nil, "http://unused", "", false, testSourceLogger())
	_, err := client.FetchMatches(context.Background(), rangeStart, rangeEnd)
	assert.ErrorIs(t, err, models.ErrSourceDisabled)
}

func TestCircuitBreakerOpens(t *testing.T) {
	cfg := fastHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, nil)

	// nothing listens on this address
	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), "http://127.0.0.1:1/matches")
		require.Error(t, err)
	}

	_, err := client.Get(context.Background(), "http://127.0.0.1:1/matches")
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestReadMatchesCSV(t *testing.T) {
	data := strings.Join([]string{
		"played_on,home_team_id,away_team_id,home_goals,away_goals,division",
		"2026-05-01,a,b,2,2,u12",
		"2025-12-31,a,c,1,0,u12",
		"2026-05-03,b,c,0,4,",
	}, "\n")

	records, err := ReadMatchesCSV(context.Background(), strings.NewReader(data), rangeStart, rangeEnd)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "a", records[0].TeamID)
	assert.Equal(t, "u12", records[0].Division)
	assert.Equal(t, "c", records[2].OpponentID)
	assert.Equal(t, 4, records[3].GoalsFor)
	assert.Equal(t, "", records[3].Division)
}

func TestReadMatchesCSVRejectsBadInput(t *testing.T) {
	_, err := ReadMatchesCSV(context.Background(), strings.NewReader("home_team_id,away_team_id\n"), rangeStart, rangeEnd)
	assert.Error(t, err)

	bad := "home_team_id,away_team_id,home_goals,away_goals,played_on\na,b,x,1,2026-05-01\n"
	_, err = ReadMatchesCSV(context.Background(), strings.NewReader(bad), rangeStart, rangeEnd)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Contains(t, dsErr.Message, "line 2")
}

func TestCSVSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.csv")
	require.NoError(t, os.WriteFile(path, []byte("home_team_id,away_team_id,home_goals,away_goals,played_on\na,b,1,0,2026-02-01\n"), 0o600))

	source := NewCSVSource(path, testSourceLogger())
	records, err := source.FetchMatches(context.Background(), rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"), testSourceLogger()).FetchMatches(context.Background(), rangeStart, rangeEnd)
	assert.Error(t, err)
}

type stubMatchRepository struct {
	records []models.MatchRecord
}

func (s *stubMatchRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	return s.records, nil
}

func (s *stubMatchRepository) InsertBatch(ctx context.Context, records []models.MatchRecord) error {
	s.records = append(s.records, records...)
	return nil
}

func TestFactory(t *testing.T) {
	repo := &stubMatchRepository{}

	source, err := NewFactory(config.SourceConfig{Type: "postgres"}, nil).NewMatchSource(repo)
	require.NoError(t, err)
	assert.Equal(t, "postgres", source.Name())

	source, err = NewFactory(config.SourceConfig{Type: "http", URL: "http://feed"}, nil).NewMatchSource(nil)
	require.NoError(t, err)
	assert.Equal(t, "http_feed", source.Name())

	source, err = NewFactory(config.SourceConfig{Type: "csv", Path: "m.csv"}, nil).NewMatchSource(nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", source.Name())

	_, err = NewFactory(config.SourceConfig{Type: "postgres"}, nil).NewMatchSource(nil)
	assert.Error(t, err)

	_, err = NewFactory(config.SourceConfig{Type: "ftp"}, nil).NewMatchSource(nil)
	assert.Error(t, err)
}
