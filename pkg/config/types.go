package config

// Config represents the persistent minutes configuration stored as
// config.toml. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	TextGen     TextGenConfig     `toml:"textgen"`
	Ingest      IngestConfig      `toml:"ingest"`
	Query       QueryConfig       `toml:"query"`
	Events      EventsConfig      `toml:"events"`
}

// StorageConfig holds the embedded relational store settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// TextGenConfig holds text generation provider settings.
type TextGenConfig struct {
	Provider  string `toml:"provider,omitempty"`
	Target    string `toml:"target,omitempty"`
	Model     string `toml:"model,omitempty"`
	APIKey    string `toml:"api_key,omitempty"`
	MaxTokens int    `toml:"max_tokens,omitempty"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	// DefaultEnabled is the indexing default applied when a user has no
	// stored setting.
	DefaultEnabled bool `toml:"default_enabled"`

	ChunkMaxWords     int `toml:"chunk_max_words,omitempty"`
	ChunkOverlapWords int `toml:"chunk_overlap_words,omitempty"`
}

// QueryConfig holds retrieval and synthesis settings.
type QueryConfig struct {
	BaseResults int `toml:"base_results,omitempty"`
	MaxResults  int `toml:"max_results,omitempty"`

	// SimilarityThreshold is the maximum distance for a retrieved chunk
	// to participate in answer synthesis. Distances follow the
	// vector.Driver convention: lower is more similar.
	SimilarityThreshold float64 `toml:"similarity_threshold,omitempty"`

	SessionTTLMinutes int `toml:"session_ttl_minutes,omitempty"`
}

// EventsConfig holds usage event stream settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}
