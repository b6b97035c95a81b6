package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads config.toml from the
// given directory (if any), and binds environment variables with the
// MINUTES_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound by the command tree)
//  2. Environment variables (MINUTES_API_LISTEN, MINUTES_TEXTGEN_MODEL, ...)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("MINUTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from a viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			SQLitePath: v.GetString("storage.sqlite_path"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		VectorStore: VectorStoreConfig{
			Provider: v.GetString("vector_store.provider"),
			Target:   v.GetString("vector_store.target"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
		TextGen: TextGenConfig{
			Provider:  v.GetString("textgen.provider"),
			Target:    v.GetString("textgen.target"),
			Model:     v.GetString("textgen.model"),
			APIKey:    v.GetString("textgen.api_key"),
			MaxTokens: v.GetInt("textgen.max_tokens"),
		},
		Ingest: IngestConfig{
			DefaultEnabled:    v.GetBool("ingest.default_enabled"),
			ChunkMaxWords:     v.GetInt("ingest.chunk_max_words"),
			ChunkOverlapWords: v.GetInt("ingest.chunk_overlap_words"),
		},
		Query: QueryConfig{
			BaseResults:         v.GetInt("query.base_results"),
			MaxResults:          v.GetInt("query.max_results"),
			SimilarityThreshold: v.GetFloat64("query.similarity_threshold"),
			SessionTTLMinutes:   v.GetInt("query.session_ttl_minutes"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	v.SetDefault("api.listen", d.API.Listen)

	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	v.SetDefault("textgen.provider", d.TextGen.Provider)
	v.SetDefault("textgen.target", d.TextGen.Target)
	v.SetDefault("textgen.model", d.TextGen.Model)
	v.SetDefault("textgen.api_key", d.TextGen.APIKey)
	v.SetDefault("textgen.max_tokens", d.TextGen.MaxTokens)

	v.SetDefault("ingest.default_enabled", d.Ingest.DefaultEnabled)
	v.SetDefault("ingest.chunk_max_words", d.Ingest.ChunkMaxWords)
	v.SetDefault("ingest.chunk_overlap_words", d.Ingest.ChunkOverlapWords)

	v.SetDefault("query.base_results", d.Query.BaseResults)
	v.SetDefault("query.max_results", d.Query.MaxResults)
	v.SetDefault("query.similarity_threshold", d.Query.SimilarityThreshold)
	v.SetDefault("query.session_ttl_minutes", d.Query.SessionTTLMinutes)

	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}
