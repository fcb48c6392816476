package config

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

const weightSumTolerance = 1e-6

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails for empty tags or nil functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("normmode", validateNormalizerMode)
	_ = v.RegisterValidation("defensepolicy", validateDefensePolicy)
	_ = v.RegisterValidation("cron", validateCronExpression)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateNormalizerMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "percentile", "logistic":
		return true
	default:
		return false
	}
}

func validateDefensePolicy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "desc", "ignore":
		return true
	default:
		return false
	}
}

// validateCronExpression accepts standard five-field cron specs and descriptors
func validateCronExpression(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	r := cfg.Rankings

	sum := r.Weights.Offense + r.Weights.Defense + r.Weights.SOS
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("rankings weights must sum to 1.0, got %v", sum)
	}

	if r.Normalizer.ClipLow >= r.Normalizer.ClipHigh {
		return fmt.Errorf("rankings normalizer clip_low (%v) must be below clip_high (%v)", r.Normalizer.ClipLow, r.Normalizer.ClipHigh)
	}

	if r.Recency.TaperStart < r.Recency.RecentGames {
		return fmt.Errorf("rankings recency taper_start (%d) cannot precede recent_games (%d)", r.Recency.TaperStart, r.Recency.RecentGames)
	}

	if r.Recency.TaperStart >= r.MaxGames {
		return fmt.Errorf("rankings recency taper_start (%d) must be below max_games (%d)", r.Recency.TaperStart, r.MaxGames)
	}

	switch cfg.Source.Type {
	case "http":
		if cfg.Source.URL == "" {
			return fmt.Errorf("source url is required for the http source")
		}
	case "csv":
		if cfg.Source.Path == "" {
			return fmt.Errorf("source path is required for the csv source")
		}
	}

	if cfg.Schedule.Enabled && cfg.Schedule.Cron == "" {
		return fmt.Errorf("schedule cron is required when scheduling is enabled")
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "normmode":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: percentile, logistic\n", field)
		case "defensepolicy":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: desc, ignore\n", field)
		case "cron":
			errMsg += fmt.Sprintf("- Field '%s' is not a valid cron expression: '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
