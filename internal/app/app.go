// Package app assembles the alerting service: configuration, rule
// persistence, the metric registry, the evaluation loop, notification
// channels and the HTTP API.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/alerts"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/config"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/metrics"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/notify"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/rules"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/server"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/sqlite"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/logger"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// App holds the application's dependencies and configuration.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	SQLite    *sqlite.DB
	Rules     *rules.Store
	Registry  *metrics.Registry
	Engine    *alerts.Engine
	Evaluator *alerts.Evaluator

	server    *server.Server
	redisSink *notify.RedisSink
	BuildInfo string
	Version   string
}

// Options contains configuration needed when creating a new App instance.
type Options struct {
	ConfigPath string
	BuildInfo  string
	Version    string
}

// New loads configuration and creates an App instance.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &App{
		Config:    cfg,
		Logger:    logger.New(cfg.Logging.Level == "debug"),
		BuildInfo: opts.BuildInfo,
		Version:   opts.Version,
	}, nil
}

// Initialize sets up all application components and starts the evaluation
// loop.
func (a *App) Initialize(ctx context.Context) error {
	var err error

	a.SQLite, err = sqlite.New(sqlite.Options{
		Config: a.Config.SQLite,
		Logger: a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sqlite: %w", err)
	}

	a.Rules = rules.NewStore()
	if err := a.loadRules(ctx); err != nil {
		return err
	}

	a.Registry = metrics.NewRegistry()
	a.Engine = alerts.NewEngine()

	// In-app channel: Redis cache when configured, logging sink otherwise.
	var sink alerts.NotificationSink
	if a.Config.Redis.Addr != "" {
		redisSink, err := notify.NewRedisSink(a.Config.Redis, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis notification sink: %w", err)
		}
		a.redisSink = redisSink
		sink = redisSink
	} else {
		a.Logger.Warn("redis not configured; in-app notifications will only be logged")
		sink = notify.NewLogSink(a.Logger)
	}
	directory := notify.NewStaticDirectory(a.Config.Directory.Companies)

	fanout := alerts.NewFanout(alerts.FanoutOptions{
		Logger:  a.Logger,
		Timeout: a.Config.Alerts.RequestTimeout,
		Source:  a.Config.Alerts.Source,
		InApp:   alerts.NewInAppSender(directory, sink, a.Logger),
		Email:   alerts.NewEmailSender(a.Config.Alerts.SMTP, a.Logger),
		Webhook: alerts.NewWebhookSender(alerts.WebhookSenderOptions{
			URLs:          a.Config.Alerts.WebhookURLs,
			Timeout:       a.Config.Alerts.RequestTimeout,
			SkipTLSVerify: a.Config.Alerts.SMTP.SkipTLSVerify,
			Logger:        a.Logger,
		}),
	})

	a.Evaluator = alerts.NewEvaluator(alerts.EvaluatorOptions{
		Config:  a.Config.Alerts,
		Rules:   a.Rules,
		Metrics: registrySource{a.Registry},
		Engine:  a.Engine,
		Fanout:  fanout,
		Logger:  a.Logger,
	})

	a.server = server.New(server.Options{
		Config:   a.Config,
		Logger:   a.Logger,
		Rules:    a.Rules,
		DB:       a.SQLite,
		Engine:   a.Engine,
		Registry: a.Registry,
	})

	a.Evaluator.Start(ctx)
	return nil
}

// Start begins the HTTP server. It blocks until the server stops.
func (a *App) Start() error {
	if a.server == nil {
		return fmt.Errorf("server not initialized")
	}
	a.Logger.Info("starting server", "version", a.Version)
	return a.server.Start()
}

// Shutdown gracefully stops all application components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	if a.Evaluator != nil {
		a.Logger.Info("stopping alert evaluator")
		a.Evaluator.Stop()
	}

	if a.server != nil {
		serverCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := a.server.Shutdown(serverCtx); err != nil {
			a.Logger.Error("error shutting down server", "error", err)
		}
		cancel()
	}

	if a.redisSink != nil {
		if err := a.redisSink.Close(); err != nil {
			a.Logger.Error("error closing redis sink", "error", err)
		}
	}

	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			a.Logger.Error("error closing sqlite", "error", err)
		}
	}

	a.Logger.Info("application shutdown complete")
	return nil
}

// loadRules hydrates the in-memory rule store from SQLite, seeding defaults
// from the config file on first boot.
func (a *App) loadRules(ctx context.Context) error {
	persisted, err := a.SQLite.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	if len(persisted) == 0 && len(a.Config.Alerts.SeedRules) > 0 {
		a.Logger.Info("seeding alert rules from config", "count", len(a.Config.Alerts.SeedRules))
		for _, seed := range a.Config.Alerts.SeedRules {
			rule := seed.Rule()
			if err := a.SQLite.InsertRule(ctx, &rule); err != nil {
				a.Logger.Warn("failed to seed rule", "rule_id", rule.ID, "error", err)
				continue
			}
			persisted = append(persisted, rule)
		}
	}

	a.Rules.Replace(persisted)
	a.Logger.Info("alert rules loaded", "count", len(persisted))
	return nil
}

// registrySource adapts the metric registry to the evaluator's snapshot
// contract.
type registrySource struct {
	registry *metrics.Registry
}

func (r registrySource) Snapshot(context.Context) ([]models.MetricPoint, error) {
	return r.registry.Snapshot(), nil
}
