// Package logger configures the application's structured logging (slog with
// a JSON handler) and provides helpers for carrying request-scoped loggers
// through contexts.
package logger
