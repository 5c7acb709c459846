package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tripx/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadSetupConfig returns the config at path, creating it from the embedded template when missing.
func (r *Runner) loadSetupConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
		r.logger.Info("config file created", "path", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	if err := config.ApplyEnv(); err != nil {
		r.logger.Warn("ignoring environment overrides", "error", err)
	}
	return config
}

// Setup writes config.toml if needed, then creates the session database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadSetupConfig(configPath)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.writePlainHeader("tripx setup")
	r.writePlain("Config:   %s\n", configPath)
	r.writePlain("Backend:  %s\n", config.Server.Origin)
	r.writePlain("Database: %s\n", config.Database.Path)
	r.writePlain("✓ Setup complete. Next: tripx auth login <username>\n")
	return nil
}

// SetupRollback reverts the most recent migration of the session database.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config := r.loadSetupConfig(cmd.String("config"))

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	r.logger.Info("rolling back last migration", "path", config.Database.Path)
	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back the most recent migration\n")
}
