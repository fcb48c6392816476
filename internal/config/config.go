// Package config provides configuration management for the power rankings service.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Rankings RankingsConfig `mapstructure:"rankings" validate:"required"`
	Source   SourceConfig   `mapstructure:"source" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Export   ExportConfig   `mapstructure:"export"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Health   HealthConfig   `mapstructure:"health"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RankingsConfig holds every tunable of the ranking engine
type RankingsConfig struct {
	WindowDays      int              `mapstructure:"window_days" validate:"required,gt=0"`
	MaxGames        int              `mapstructure:"max_games" validate:"required,gt=0"`
	Recency         RecencyConfig    `mapstructure:"recency" validate:"required"`
	GoalDiffCap     int              `mapstructure:"goal_diff_cap" validate:"required,gt=0"`
	DefenseRidge    float64          `mapstructure:"defense_ridge" validate:"required,gt=0"`
	Solver          SolverConfig     `mapstructure:"solver" validate:"required"`
	ShrinkageTau    float64          `mapstructure:"shrinkage_tau" validate:"gte=0"`
	Adaptive        AdaptiveConfig   `mapstructure:"adaptive" validate:"required"`
	Normalizer      NormalizerConfig `mapstructure:"normalizer" validate:"required"`
	Weights         WeightsConfig    `mapstructure:"weights" validate:"required"`
	Confidence      ConfidenceConfig `mapstructure:"confidence" validate:"required"`
	ActiveThreshold int              `mapstructure:"active_threshold" validate:"required,gt=0"`
	DefensePolicy   string           `mapstructure:"defense_policy" validate:"required,defensepolicy"`
	PerDivision     bool             `mapstructure:"per_division"`
}

// RecencyConfig shapes the per-game recency weights
type RecencyConfig struct {
	RecentGames int     `mapstructure:"recent_games" validate:"required,gt=0"`
	RecentShare float64 `mapstructure:"recent_share" validate:"required,gt=0,lt=1"`
	TaperStart  int     `mapstructure:"taper_start" validate:"required,gt=0"`
	TaperFloor  float64 `mapstructure:"taper_floor" validate:"required,gt=0,lte=1"`
}

// SolverConfig parameterizes the opponent strength solver
type SolverConfig struct {
	Epsilon            float64 `mapstructure:"epsilon" validate:"required,gt=0"`
	MaxIterations      int     `mapstructure:"max_iterations" validate:"required,gt=0"`
	Smoothing          float64 `mapstructure:"smoothing" validate:"gte=0,lt=1"`
	MarginWeight       float64 `mapstructure:"margin_weight" validate:"gte=0,lte=1"`
	SeedFloor          float64 `mapstructure:"seed_floor" validate:"required,gt=0"`
	CrossDivisionBoost float64 `mapstructure:"cross_division_boost" validate:"required,gte=1"`
}

// AdaptiveConfig parameterizes the adaptive sensitivity scaler
type AdaptiveConfig struct {
	MinGames       int     `mapstructure:"min_games" validate:"required,gt=0"`
	SampleExponent float64 `mapstructure:"sample_exponent" validate:"gte=0"`
	GapExponent    float64 `mapstructure:"gap_exponent" validate:"gte=0"`
}

// NormalizerConfig selects and bounds the normalization function
type NormalizerConfig struct {
	Mode     string  `mapstructure:"mode" validate:"required,normmode"`
	ClipLow  float64 `mapstructure:"clip_low" validate:"gte=0,lt=1"`
	ClipHigh float64 `mapstructure:"clip_high" validate:"gt=0,lte=1"`
}

// WeightsConfig holds the composite score weights
type WeightsConfig struct {
	Offense float64 `mapstructure:"offense" validate:"gte=0,lte=1"`
	Defense float64 `mapstructure:"defense" validate:"gte=0,lte=1"`
	SOS     float64 `mapstructure:"sos" validate:"gte=0,lte=1"`
}

// ConfidenceConfig shapes the confidence multiplier curve
type ConfidenceConfig struct {
	FullConfidenceGames int     `mapstructure:"full_confidence_games" validate:"required,gt=0"`
	Exponent            float64 `mapstructure:"exponent" validate:"required,gt=0"`
}

// SourceConfig selects where match records are read from
type SourceConfig struct {
	Type              string `mapstructure:"type" validate:"required,oneof=postgres http csv"`
	URL               string `mapstructure:"url" validate:"omitempty,url"`
	Path              string `mapstructure:"path" validate:"required_if=Type csv"`
	APIKey            string `mapstructure:"api_key"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" validate:"omitempty,gt=0"`
	RetryAttempts     int    `mapstructure:"retry_attempts" validate:"gte=0"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// ScheduleConfig drives periodic recomputation
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron" validate:"omitempty,cron"`
}

// ExportConfig controls optional file output of each published table
type ExportConfig struct {
	Format    string `mapstructure:"format" validate:"omitempty,oneof=csv json"`
	OutputDir string `mapstructure:"output_dir" validate:"required_with=Format"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig configures the health endpoint server
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// SecretsConfig points at an optional AWS Secrets Manager secret
type SecretsConfig struct {
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name" validate:"required_with=Region"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
