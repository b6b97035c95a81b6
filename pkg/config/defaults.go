package config

const (
	// CurrentV is the currently supported config version.
	CurrentV = 0

	// DefaultListen is the default API listen address.
	DefaultListen = ":8422"
)

// NewDefaultConfig returns a fully-populated Config with sane defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			SQLitePath: "minutes.db",
		},
		API: APIConfig{
			Listen: DefaultListen,
		},
		VectorStore: VectorStoreConfig{
			Provider: "chroma",
			Target:   "http://localhost:8000",
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Target:     "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		TextGen: TextGenConfig{
			Provider:  "ollama",
			Target:    "http://localhost:11434",
			Model:     "llama3.1",
			MaxTokens: 2048,
		},
		Ingest: IngestConfig{
			DefaultEnabled:    true,
			ChunkMaxWords:     220,
			ChunkOverlapWords: 40,
		},
		Query: QueryConfig{
			BaseResults:         6,
			MaxResults:          20,
			SimilarityThreshold: 0.75,
			SessionTTLMinutes:   30,
		},
		Events: EventsConfig{
			Provider: "nop",
			Brokers:  "localhost:9092",
			Topic:    "minutes.usage",
		},
	}
}
