package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/models"
)

const feedSourceName = "http_feed"

// FeedClient implements MatchSource for a JSON match feed
type FeedClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logger.SourceLogger
}

// FeedMatch is one played match as published by the feed
type FeedMatch struct {
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	HomeGoals  int    `json:"home_goals"`
	AwayGoals  int    `json:"away_goals"`
	PlayedOn   string `json:"played_on"`
	Division   string `json:"division"`
}

// NewFeedClient creates a new feed client
func NewFeedClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, log *logger.SourceLogger) *FeedClient {
	return &FeedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     log,
	}
}

// Name returns the source name
func (c *FeedClient) Name() string {
	return feedSourceName
}

// IsEnabled returns whether the feed is enabled
func (c *FeedClient) IsEnabled() bool {
	return c.enabled
}

// FetchMatches retrieves matches played in [start, end] from the feed
func (c *FeedClient) FetchMatches(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	if !c.enabled {
		return nil, NewDataSourceError(feedSourceName, ErrCodeDisabled, "data source is disabled", models.ErrSourceDisabled)
	}

	started := time.Now()
	records, err := c.fetch(ctx, start, end)
	if err != nil {
		c.logger.LogFetchFailed(feedSourceName, err)
		return nil, err
	}

	c.logger.LogFetch(feedSourceName, len(records), float64(time.Since(started).Microseconds())/1000)
	return records, nil
}

func (c *FeedClient) fetch(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	query := url.Values{}
	query.Set("from", start.UTC().Format(dateLayout))
	query.Set("to", end.UTC().Format(dateLayout))
	endpoint := fmt.Sprintf("%s/matches?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(feedSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(feedSourceName, ErrCodeNetworkError, "failed to fetch matches", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewDataSourceError(feedSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(feedSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(feedSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var matches []FeedMatch
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, NewDataSourceError(feedSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	records := make([]models.MatchRecord, 0, 2*len(matches))
	for _, m := range matches {
		playedOn, err := time.Parse(dateLayout, m.PlayedOn)
		if err != nil {
			return nil, NewDataSourceError(feedSourceName, ErrCodeInvalidData, fmt.Sprintf("bad played_on %q", m.PlayedOn), err)
		}
		records = append(records, matchSides(m.HomeTeamID, m.AwayTeamID, m.HomeGoals, m.AwayGoals, playedOn, m.Division)...)
	}

	return records, nil
}
