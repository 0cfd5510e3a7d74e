package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/worldbuilder/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the default configuration template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if cmd.Bool("force") {
		if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", configPath)
	return r.writePlain("✓ Configuration written to %s\n", configPath)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadSetupConfig(cmd.String("config"))

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenStore(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ World record store ready at %s\n", config.Database.Path)
}

// SetupRollback reverts the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config := r.loadSetupConfig(cmd.String("config"))

	db, err := shared.OpenStore(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	r.logger.Info("rolled back migration", "path", config.Database.Path)
	return nil
}

// loadSetupConfig reads configPath, creating it from the template when missing, and falls back to
// the runner's config on any failure.
func (r *Runner) loadSetupConfig(configPath string) *shared.Config {
	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using current config", "error", err)
			return r.config
		}
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using current config", "error", err)
		return r.config
	}
	return config
}
