package main

import (
	"log/slog"
	"os"

	"github.com/nebari-dev/registrar/internal/config"
	"github.com/nebari-dev/registrar/internal/logger"
	"github.com/nebari-dev/registrar/internal/server"
	"gorm.io/gorm"
)

// openDatabase loads the server configuration and opens the migrated database
// for the offline commands. Logs go to stderr so command output stays clean.
func openDatabase() (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if level == "info" {
		level = "warn"
	}
	slog.SetDefault(logger.New(os.Stderr, cfg.Log.Format, level))
	if cfg.Database.LogLevel == "info" {
		cfg.Database.LogLevel = "warn"
	}

	database, err := server.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return database, cfg, nil
}
