package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/app"
)

// serveCommand runs the alerting daemon until interrupted.
func serveCommand(version, commit, date string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the alerting daemon",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			instance, err := app.New(app.Options{
				ConfigPath: cmd.String("config"),
				BuildInfo:  fmt.Sprintf("%s (%s)", commit, date),
				Version:    version,
			})
			if err != nil {
				return err
			}

			if err := instance.Initialize(ctx); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- instance.Start()
			}()

			select {
			case <-ctx.Done():
				log.Info("shutdown signal received")
			case err := <-errCh:
				if err != nil {
					log.Error("server stopped unexpectedly", "error", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return instance.Shutdown(shutdownCtx)
		},
	}
}
