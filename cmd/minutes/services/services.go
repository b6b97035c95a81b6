// Package services constructs the service graph shared by the minutes
// subcommands: storage, vector store, generators, pipeline, and query
// service, all built once from config and injected downward.
package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/config"
	"github.com/minuteshq/minutes/pkg/embeddings"
	embeddingutils "github.com/minuteshq/minutes/pkg/embeddings/utils"
	"github.com/minuteshq/minutes/pkg/eventstream"
	eventstreamutils "github.com/minuteshq/minutes/pkg/eventstream/utils"
	"github.com/minuteshq/minutes/pkg/ingest"
	"github.com/minuteshq/minutes/pkg/intent"
	"github.com/minuteshq/minutes/pkg/query"
	"github.com/minuteshq/minutes/pkg/registry"
	"github.com/minuteshq/minutes/pkg/storage"
	"github.com/minuteshq/minutes/pkg/storage/sqlite"
	"github.com/minuteshq/minutes/pkg/textgen"
	textgenutils "github.com/minuteshq/minutes/pkg/textgen/utils"
	"github.com/minuteshq/minutes/pkg/transcript"
	"github.com/minuteshq/minutes/pkg/vector"
	vectorutils "github.com/minuteshq/minutes/pkg/vector/utils"
)

// Services holds the constructed service graph.
type Services struct {
	Store     storage.Driver
	Embedder  embeddings.Embedder
	Vectors   vector.Driver
	Generator textgen.Generator
	Publisher eventstream.Publisher

	Projects *registry.Registry
	Planner  *transcript.Planner
	Pipeline *ingest.Pipeline
	Sessions *intent.SessionStore
	Parser   *intent.Parser
	Executor *query.Executor
	Queries  *query.Service
}

// Build constructs all services from the config.
func Build(cfg *config.Config, logger *zap.Logger) (*Services, error) {
	store, err := sqlite.NewDriver(cfg.Storage.SQLitePath, cfg.Ingest.DefaultEnabled)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	vectors, err := vectorutils.NewDriver(&vectorutils.NewDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		Dimensions:   cfg.Embedding.Dimensions,
		Embedder:     embedder,
		Logger:       logger,
	})
	if err != nil {
		embedder.Close()
		store.Close()
		return nil, fmt.Errorf("creating vector driver: %w", err)
	}

	generator, err := textgenutils.NewGenerator(&textgenutils.NewGeneratorOpts{
		ProviderType: cfg.TextGen.Provider,
		TargetURL:    cfg.TextGen.Target,
		Model:        cfg.TextGen.Model,
		APIKey:       cfg.TextGen.APIKey,
	})
	if err != nil {
		vectors.Close()
		embedder.Close()
		store.Close()
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		Logger:       logger,
	})
	if err != nil {
		generator.Close()
		vectors.Close()
		embedder.Close()
		store.Close()
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	sessions, err := intent.NewSessionStore(time.Duration(cfg.Query.SessionTTLMinutes) * time.Minute)
	if err != nil {
		publisher.Close()
		generator.Close()
		vectors.Close()
		embedder.Close()
		store.Close()
		return nil, fmt.Errorf("creating session store: %w", err)
	}

	projects := registry.NewRegistry(store, logger)
	planner := transcript.NewPlanner(generator, store, logger)
	pipeline := ingest.NewPipeline(planner, store, projects, vectors, publisher, ingest.Config{
		ChunkMaxWords:     cfg.Ingest.ChunkMaxWords,
		ChunkOverlapWords: cfg.Ingest.ChunkOverlapWords,
	}, logger)

	parser := intent.NewParser(generator, logger)
	executor := query.NewExecutor(vectors, generator, query.ExecutorConfig{
		BaseResults:         cfg.Query.BaseResults,
		MaxResults:          cfg.Query.MaxResults,
		SimilarityThreshold: cfg.Query.SimilarityThreshold,
	}, logger)
	queries := query.NewService(parser, sessions, executor, publisher, logger)

	return &Services{
		Store:     store,
		Embedder:  embedder,
		Vectors:   vectors,
		Generator: generator,
		Publisher: publisher,
		Projects:  projects,
		Planner:   planner,
		Pipeline:  pipeline,
		Sessions:  sessions,
		Parser:    parser,
		Executor:  executor,
		Queries:   queries,
	}, nil
}

// Close releases everything Build opened, in reverse order.
func (s *Services) Close() {
	s.Sessions.Close()
	s.Publisher.Close()
	s.Generator.Close()
	s.Vectors.Close()
	s.Embedder.Close()
	s.Store.Close()
}
