package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "POWER_RANKINGS"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration, tolerating a missing file. Every
// ranking tunable then comes from the defaults or the environment.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers the published engine defaults so a partial rankings
// section is still complete after unmarshalling.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "power-rankings")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("rankings.window_days", 365)
	v.SetDefault("rankings.max_games", 30)
	v.SetDefault("rankings.recency.recent_games", 15)
	v.SetDefault("rankings.recency.recent_share", 0.70)
	v.SetDefault("rankings.recency.taper_start", 20)
	v.SetDefault("rankings.recency.taper_floor", 0.40)
	v.SetDefault("rankings.goal_diff_cap", 6)
	v.SetDefault("rankings.defense_ridge", 0.25)
	v.SetDefault("rankings.solver.epsilon", 1e-6)
	v.SetDefault("rankings.solver.max_iterations", 200)
	v.SetDefault("rankings.solver.smoothing", 0.5)
	v.SetDefault("rankings.solver.margin_weight", 0.5)
	v.SetDefault("rankings.solver.seed_floor", 0.1)
	v.SetDefault("rankings.solver.cross_division_boost", 1.05)
	v.SetDefault("rankings.shrinkage_tau", 4.0)
	v.SetDefault("rankings.adaptive.min_games", 6)
	v.SetDefault("rankings.adaptive.sample_exponent", 0.5)
	v.SetDefault("rankings.adaptive.gap_exponent", 0.5)
	v.SetDefault("rankings.normalizer.mode", "percentile")
	v.SetDefault("rankings.normalizer.clip_low", 0.05)
	v.SetDefault("rankings.normalizer.clip_high", 0.95)
	v.SetDefault("rankings.weights.offense", 0.25)
	v.SetDefault("rankings.weights.defense", 0.25)
	v.SetDefault("rankings.weights.sos", 0.50)
	v.SetDefault("rankings.confidence.full_confidence_games", 15)
	v.SetDefault("rankings.confidence.exponent", 0.5)
	v.SetDefault("rankings.active_threshold", 8)
	v.SetDefault("rankings.defense_policy", "desc")
	v.SetDefault("rankings.per_division", false)

	v.SetDefault("source.type", "postgres")
	v.SetDefault("source.requests_per_second", 5)
	v.SetDefault("source.retry_attempts", 3)
	v.SetDefault("source.timeout_seconds", 30)

	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.cron", "0 6 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("health.port", 8080)
}

// ReloadFromEnv reloads the configuration from the file named by
// POWER_RANKINGS_CONFIG_PATH, if set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}
