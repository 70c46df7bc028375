// Package server exposes the HTTP API: rule CRUD, alert lifecycle
// operations and metric ingestion. It is a thin layer over the alerting
// core; the surrounding product mounts equivalent routes behind its own
// auth middleware.
package server

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/alerts"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/config"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/metrics"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/rules"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/sqlite"
)

// Options contains the dependencies required by the HTTP server.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Rules    *rules.Store
	DB       *sqlite.DB
	Engine   *alerts.Engine
	Registry *metrics.Registry
}

// Server wraps the fiber application and its dependencies.
type Server struct {
	app      *fiber.App
	config   *config.Config
	log      *slog.Logger
	rules    *rules.Store
	db       *sqlite.DB
	engine   *alerts.Engine
	registry *metrics.Registry
	validate *validator.Validate
}

// New creates the HTTP server and registers all routes.
func New(opts Options) *Server {
	s := &Server{
		config:   opts.Config,
		log:      opts.Logger.With("component", "server"),
		rules:    opts.Rules,
		db:       opts.DB,
		engine:   opts.Engine,
		registry: opts.Registry,
		validate: validator.New(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "estoque-alertd",
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/v1")

	api.Get("/health", s.handleHealth)
	api.Get("/metrics", s.handleSelfMetrics)

	api.Get("/rules", s.handleListRules)
	api.Post("/rules", s.handleCreateRule)
	api.Get("/rules/:ruleID", s.handleGetRule)
	api.Put("/rules/:ruleID", s.handleUpdateRule)
	api.Delete("/rules/:ruleID", s.handleDeleteRule)

	api.Get("/alerts", s.handleListAlerts)
	api.Post("/alerts/:alertID/acknowledge", s.handleAcknowledgeAlert)
	api.Post("/alerts/:alertID/resolve", s.handleResolveAlert)

	api.Post("/metrics/record", s.handleRecordMetric)
	api.Get("/metrics/snapshot", s.handleMetricSnapshot)
}

// Start begins listening for HTTP requests. It blocks until the server
// stops.
func (s *Server) Start() error {
	s.log.Info("http server listening", "addr", s.config.Server.ListenAddr)
	return s.app.Listen(s.config.Server.ListenAddr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"status": "ok"})
}
