package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/power-rankings/internal/config"
	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/repository"
)

// SourceType represents the type of match source
type SourceType string

const (
	PostgresSourceType SourceType = "postgres"
	HTTPSourceType     SourceType = "http"
	CSVSourceType      SourceType = "csv"
)

// Factory creates MatchSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config config.SourceConfig
}

// NewFactory creates a new source factory
func NewFactory(cfg config.SourceConfig, log *logrus.Logger) *Factory {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &Factory{logger: log, config: cfg}
}

// NewMatchSource builds the configured source. The match repository is only
// required for the postgres source.
func (f *Factory) NewMatchSource(matches repository.MatchRepository) (MatchSource, error) {
	sourceLogger := logger.NewSourceLogger(f.logger)

	switch SourceType(f.config.Type) {
	case PostgresSourceType:
		if matches == nil {
			return nil, fmt.Errorf("postgres source requires a match repository")
		}
		return NewPostgresSource(matches, sourceLogger), nil

	case HTTPSourceType:
		if f.config.URL == "" {
			return nil, fmt.Errorf("http source requires a url")
		}
		return NewFeedClient(NewRateLimitedHTTPClient(f.httpConfig(), f.logger), f.config.URL, f.config.APIKey, true, sourceLogger), nil

	case CSVSourceType:
		if f.config.Path == "" {
			return nil, fmt.Errorf("csv source requires a path")
		}
		return NewCSVSource(f.config.Path, sourceLogger), nil

	default:
		return nil, fmt.Errorf("unknown match source type: %s", f.config.Type)
	}
}

func (f *Factory) httpConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	if f.config.RequestsPerSecond > 0 {
		cfg.RateLimit = float64(f.config.RequestsPerSecond)
	}
	if f.config.RetryAttempts >= 0 {
		cfg.MaxRetries = f.config.RetryAttempts
	}
	if f.config.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(f.config.TimeoutSeconds) * time.Second
	}
	return cfg
}
