package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"

	"github.com/rootcalc/rootcalc-api/internal/config"
)

// migrationsDir is the repository-relative location of the goose SQL
// migrations.
const migrationsDir = "internal/platform/postgres/migrations"

// runMigrations executes the given goose command ("up", "down", "status")
// against the configured database.
func runMigrations(cfg *config.Config, logger *slog.Logger, command string) error {
	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database for migrations: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
		}
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Executing migrations", "command", command, "dir", dir)

	switch command {
	case "up":
		err = goose.Up(db, dir)
	case "down":
		err = goose.Down(db, dir)
	case "status":
		err = goose.Status(db, dir)
	default:
		return fmt.Errorf("unknown migration command %q (expected up, down, or status)", command)
	}

	if err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	logger.Info("Migrations completed", "command", command)
	return nil
}

// findMigrationsDir locates the migrations directory relative to the
// current working directory, walking upward so the binary also works when
// started from a subdirectory of the repository.
func findMigrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, migrationsDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	return "", fmt.Errorf("migrations directory %s not found from %s", migrationsDir, cwd)
}
