// Package cli provides common bootstrap utilities shared by cmd/sunduq and
// cmd/sunduq-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"sunduq/internal/config"
	"sunduq/internal/log"
	"sunduq/internal/storage"
)

// SetupLogger initializes structured logging with default settings and sets
// the result as the default logger.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are ignored
// silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the ledger store selected by the configuration, exiting
// the process when the backend cannot be opened.
func OpenStore(logger *log.Logger, cfg *config.Config) storage.Store {
	if cfg.DataBackend == "memory" {
		logger.Warn("Using in-memory store; data will not survive a restart")
		return storage.NewMemoryStore()
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	return repo
}
