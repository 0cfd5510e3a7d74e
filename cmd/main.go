package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/worldbuilder/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "wbx",
		Usage:    "Run bulk world edits on a cooperative scheduler",
		Version:  "0.1.0",
		Commands: runner.register(),

		DisableSliceFlagSeparator: true,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
