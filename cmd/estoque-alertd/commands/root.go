// Package commands provides the CLI command definitions for the alerting
// daemon.
package commands

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// New creates the root CLI command with all subcommands.
func New(version, commit, date string) *cli.Command {
	return &cli.Command{
		Name:    "estoque-alertd",
		Usage:   "Metric alerting and notification daemon for Estoque Mestre",
		Version: version,
		Description: `estoque-alertd watches business metrics reported by the Estoque Mestre
   backend, evaluates threshold alert rules on a fixed interval and fans
   out notifications over in-app, email and webhook channels.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("ESTOQUE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(version, commit, date),
			rulesCommand(),
			alertsCommand(),
		},
		DefaultCommand: "serve",
	}
}
