package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/MolecularSadism/enumgen/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "enumgen",
		Usage:   "Expand sum-type event declarations into per-variant record types wired to a host framework.",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("ENUMGEN_LOG_LEVEL"),
				Value:   "panic",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to enumgen.json (defaults to searching parent directories)",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)
			ctrl.Flags.LogLevel = c.String("log-level")
			ctrl.Flags.Config = c.String("config")
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create a new declaration project",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
			{
				Name:  "generate",
				Usage: "Expand declarations through every configured backend",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Generate(ctx)
				},
			},
			{
				Name:  "validate",
				Usage: "Check declarations and report every violation",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Validate(ctx)
				},
			},
			{
				Name:  "dev",
				Usage: "Watch declaration files and regenerate on change",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Dev(ctx)
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run enumgen")
	}
}
