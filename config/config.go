// Package config loads application settings from a YAML file. Secrets
// (GEMINI_API_KEY, DATABASE_URL, AWS credentials) come from the environment,
// never from the file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config mirrors the structure of config.yaml.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Index     IndexConfig     `mapstructure:"index"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects where the PDF corpus lives.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // "local" or "s3"
	LocalPath string `mapstructure:"local_path"`
	S3Bucket  string `mapstructure:"s3_bucket"`
	S3Region  string `mapstructure:"s3_region"`
	S3Prefix  string `mapstructure:"s3_prefix"`
}

// IndexConfig holds offline-indexing settings.
type IndexConfig struct {
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
	MetadataPath string `mapstructure:"metadata_path"`
	Backend      string `mapstructure:"backend"` // "chromem" or "postgres"
	VectorPath   string `mapstructure:"vector_path"`
	Collection   string `mapstructure:"collection"`
	Dimensions   int    `mapstructure:"dimensions"`
}

// RetrievalConfig holds online answering settings.
type RetrievalConfig struct {
	TopK               int `mapstructure:"top_k"`
	SearchTimeoutSecs  int `mapstructure:"search_timeout_secs"`
	AnswerTimeoutSecs  int `mapstructure:"answer_timeout_secs"`
	FollowupMaxContext int `mapstructure:"followup_max_context"`
}

// GeminiConfig holds model settings. The API key is read from the
// GEMINI_API_KEY environment variable.
type GeminiConfig struct {
	EmbeddingModel  string  `mapstructure:"embedding_model"`
	GenerationModel string  `mapstructure:"generation_model"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
}

// Load reads and parses the config file at path, applying defaults for
// unset fields.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./pdfs")
	v.SetDefault("index.chunk_size", 500)
	v.SetDefault("index.chunk_overlap", 50)
	v.SetDefault("index.metadata_path", "metadata.json")
	v.SetDefault("index.backend", "chromem")
	v.SetDefault("index.vector_path", "index_store")
	v.SetDefault("index.collection", "decision_letters")
	v.SetDefault("index.dimensions", 768)
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.search_timeout_secs", 30)
	v.SetDefault("retrieval.answer_timeout_secs", 120)
	v.SetDefault("retrieval.followup_max_context", 12000)
	v.SetDefault("gemini.embedding_model", "gemini-embedding-001")
	v.SetDefault("gemini.generation_model", "gemini-1.5-flash")
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.max_tokens", 1024)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Index.ChunkOverlap >= cfg.Index.ChunkSize {
		return nil, fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			cfg.Index.ChunkOverlap, cfg.Index.ChunkSize)
	}

	return &cfg, nil
}
