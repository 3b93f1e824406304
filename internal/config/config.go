package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Solver   SolverConfig   `mapstructure:"solver"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	QueueSize           int `mapstructure:"queue_size"             validate:"required,gt=0"`
	WorkerCount         int `mapstructure:"worker_count"           validate:"required,gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

// SolverConfig contains settings for the root-finding form defaults.
// The per-request epsilon and guess come from the submission itself; these
// values only pre-populate the form.
type SolverConfig struct {
	DefaultEpsilon float64 `mapstructure:"default_epsilon" validate:"required,gt=0"`
	DefaultGuess   float64 `mapstructure:"default_guess"`
}
