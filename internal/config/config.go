package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gocer/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Data       DataConfig
	Evaluation EvaluationConfig
	Logging    LoggingConfig
}

// DataConfig selects the dataset. An empty File means the embedded Iris table.
type DataConfig struct {
	File string `validate:"omitempty,file"`
}

// EvaluationConfig holds classifier and scheduling settings
type EvaluationConfig struct {
	Workers       int     `validate:"min=1,max=256"`
	Regularizer   float64 `validate:"gte=0"`
	MaxIterations int     `validate:"min=1"`
	IntervalLevel float64 `validate:"gte=0,lt=1"` // 0 disables confidence intervals
}

// LoggingConfig holds diagnostic log settings
type LoggingConfig struct {
	Level string `validate:"oneof=debug info warn warning error"`
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Evaluation: EvaluationConfig{
			Workers:       1,
			MaxIterations: 1000,
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	config.Data.File = getEnvOrDefault("GOCER_DATA_FILE", "")

	evalConfig, err := loadEvaluationConfig(config.Evaluation)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load evaluation configuration")
	}
	config.Evaluation = *evalConfig

	config.Logging.Level = strings.ToLower(getEnvOrDefault("GOCER_LOG_LEVEL", config.Logging.Level))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadEvaluationConfig(defaults EvaluationConfig) (*EvaluationConfig, error) {
	workers, err := getEnvIntOrDefault("GOCER_WORKERS", defaults.Workers)
	if err != nil {
		return nil, err
	}
	regularizer, err := getEnvFloatOrDefault("GOCER_REGULARIZER", defaults.Regularizer)
	if err != nil {
		return nil, err
	}
	maxIter, err := getEnvIntOrDefault("GOCER_MAX_ITERATIONS", defaults.MaxIterations)
	if err != nil {
		return nil, err
	}
	level, err := getEnvFloatOrDefault("GOCER_INTERVAL", defaults.IntervalLevel)
	if err != nil {
		return nil, err
	}

	return &EvaluationConfig{
		Workers:       workers,
		Regularizer:   regularizer,
		MaxIterations: maxIter,
		IntervalLevel: level,
	}, nil
}

var validate = validator.New()

// Validate checks struct constraints. Call it again after applying flag overrides.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "configuration validation failed")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fieldRule(fe), fe.Value()))
	}
	return errors.ConfigInvalid("configuration validation failed: " + strings.Join(msgs, "; "))
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}
