package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/ingest"
	"github.com/minuteshq/minutes/pkg/intent"
	"github.com/minuteshq/minutes/pkg/query"
	"github.com/minuteshq/minutes/pkg/registry"
	"github.com/minuteshq/minutes/pkg/storage"
	"github.com/minuteshq/minutes/pkg/vector"
)

// Server is the API server for the minutes system.
type Server struct {
	config   Config
	pipeline *ingest.Pipeline
	queries  *query.Service
	projects *registry.Registry
	storer   storage.Driver
	vectors  vector.Driver
	sessions *intent.SessionStore
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates a new API server. Dependencies are injected so they
// can be shared with the CLI entrypoints.
func NewServer(config Config, pipeline *ingest.Pipeline, queries *query.Service, projects *registry.Registry, storer storage.Driver, vectors vector.Driver, sessions *intent.SessionStore, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		pipeline: pipeline,
		queries:  queries,
		projects: projects,
		storer:   storer,
		vectors:  vectors,
		sessions: sessions,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/meetings", s.handleIngestMeeting)
	app.Get("/v1/meetings/:id", s.handleGetMeeting)
	app.Post("/v1/query", s.handleQuery)
	app.Get("/v1/projects", s.handleListProjects)
	app.Get("/v1/settings/indexing", s.handleGetIndexing)
	app.Put("/v1/settings/indexing", s.handleSetIndexing)
	app.Delete("/v1/users/:id", s.handlePurgeUser)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
