package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/client"
)

// rulesCommand groups alert rule operations against a running daemon.
func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Manage alert rules on a running daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "daemon base URL",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("ESTOQUE_SERVER_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all alert rules",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					api, err := client.New(client.Options{BaseURL: cmd.String("server")})
					if err != nil {
						return err
					}
					rules, err := api.ListRules(ctx)
					if err != nil {
						return err
					}

					rows := make([][]string, 0, len(rules))
					for _, r := range rules {
						enabled := "yes"
						if !r.Enabled {
							enabled = "no"
						}
						rows = append(rows, []string{
							r.ID,
							r.Name,
							r.Metric,
							fmt.Sprintf("%s %g", r.Condition, r.Threshold),
							styleSeverity(string(r.Severity)),
							enabled,
							strconv.Itoa(r.CooldownMinutes) + "m",
						})
					}
					renderTable([]string{"ID", "NAME", "METRIC", "CONDITION", "SEVERITY", "ENABLED", "COOLDOWN"}, rows)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an alert rule",
				ArgsUsage: "<rule-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one rule id")
					}
					api, err := client.New(client.Options{BaseURL: cmd.String("server")})
					if err != nil {
						return err
					}
					if err := api.DeleteRule(ctx, cmd.Args().First()); err != nil {
						return err
					}
					fmt.Println("Rule deleted.")
					return nil
				},
			},
		},
	}
}
