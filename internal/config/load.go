package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.stuck_task_age_minutes", 30)
	v.SetDefault("solver.default_epsilon", 0.001)
	v.SetDefault("solver.default_guess", -20)

	// Optionally read a config.yaml from the working directory
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything can come from env vars.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Configure environment variables with the ROOTCALC_ prefix
	v.SetEnvPrefix("ROOTCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind critical environment variables
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"database.url", "ROOTCALC_DATABASE_URL"},
		{"server.port", "ROOTCALC_SERVER_PORT"},
		{"server.log_level", "ROOTCALC_SERVER_LOG_LEVEL"},
		{"task.queue_size", "ROOTCALC_TASK_QUEUE_SIZE"},
		{"task.worker_count", "ROOTCALC_TASK_WORKER_COUNT"},
		{"task.stuck_task_age_minutes", "ROOTCALC_TASK_STUCK_TASK_AGE_MINUTES"},
		{"solver.default_epsilon", "ROOTCALC_SOLVER_DEFAULT_EPSILON"},
		{"solver.default_guess", "ROOTCALC_SOLVER_DEFAULT_GUESS"},
	}

	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
