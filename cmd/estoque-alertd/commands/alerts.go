package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/client"
)

// alertsCommand groups alert lifecycle operations against a running daemon.
func alertsCommand() *cli.Command {
	serverFlag := &cli.StringFlag{
		Name:    "server",
		Usage:   "daemon base URL",
		Value:   "http://localhost:8080",
		Sources: cli.EnvVars("ESTOQUE_SERVER_URL"),
	}
	return &cli.Command{
		Name:  "alerts",
		Usage: "Inspect and manage triggered alerts",
		Flags: []cli.Flag{serverFlag},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List triggered alerts in trigger order",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					api, err := client.New(client.Options{BaseURL: cmd.String("server")})
					if err != nil {
						return err
					}
					alerts, err := api.ListAlerts(ctx)
					if err != nil {
						return err
					}

					rows := make([][]string, 0, len(alerts))
					for _, a := range alerts {
						state := "open"
						if a.Resolved() {
							state = "resolved"
						} else if a.Acknowledged() {
							state = "acknowledged"
						}
						rows = append(rows, []string{
							a.ID,
							styleSeverity(string(a.Severity)),
							a.CompanyID,
							a.Message,
							state,
							a.TriggeredAt.Format("2006-01-02 15:04:05"),
						})
					}
					renderTable([]string{"ID", "SEVERITY", "COMPANY", "MESSAGE", "STATE", "TRIGGERED"}, rows)
					return nil
				},
			},
			{
				Name:      "ack",
				Usage:     "Acknowledge an alert",
				ArgsUsage: "<alert-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Usage:    "acknowledging user id",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one alert id")
					}
					api, err := client.New(client.Options{BaseURL: cmd.String("server")})
					if err != nil {
						return err
					}
					if err := api.AcknowledgeAlert(ctx, cmd.Args().First(), cmd.String("user")); err != nil {
						return err
					}
					fmt.Println("Alert acknowledged.")
					return nil
				},
			},
			{
				Name:      "resolve",
				Usage:     "Resolve an alert",
				ArgsUsage: "<alert-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one alert id")
					}
					api, err := client.New(client.Options{BaseURL: cmd.String("server")})
					if err != nil {
						return err
					}
					if err := api.ResolveAlert(ctx, cmd.Args().First()); err != nil {
						return err
					}
					fmt.Println("Alert resolved.")
					return nil
				},
			},
		},
	}
}
