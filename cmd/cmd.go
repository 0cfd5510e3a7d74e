// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles configuration and database initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the world record store",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write config.toml from the default template",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Create the world record store and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// runCommand schedules edits and drives them to completion
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Schedule edits and drive them at the configured iteration rate",
		// Coordinates contain commas.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "world",
				Aliases: []string{"w"},
				Usage:   "World name",
				Value:   "overworld",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "Fill a selection: x,y,z:x,y,z=id[:meta]",
			},
			&cli.StringSliceFlag{
				Name:  "replace",
				Usage: "Replace blocks in a selection: x,y,z:x,y,z=id[:meta]>id[:meta]",
			},
			&cli.StringSliceFlag{
				Name:  "regen",
				Usage: "Regenerate the chunks under a selection: x,y,z:x,y,z",
			},
			&cli.StringFlag{
				Name:  "copy-paste",
				Usage: "Copy a selection and paste it at an origin: x,y,z:x,y,z@x,y,z",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Write the copied blocks to a .csv, .md, .txt or .json file",
			},
			&cli.BoolFlag{
				Name:  "memory",
				Usage: "Edit an in-memory world instead of the record store",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print scheduler metric totals when the run ends",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show the interactive progress view",
			},
		},
		Action: r.Run,
	}
}

// recordsCommand inspects the world record store
func recordsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "records",
		Usage: "Inspect persisted chunk records",
		Commands: []*cli.Command{
			{
				Name:  "count",
				Usage: "Count persisted chunk records",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RecordsCount,
			},
			{
				Name:  "keys",
				Usage: "List persisted chunk keys",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RecordsKeys,
			},
		},
	}
}
