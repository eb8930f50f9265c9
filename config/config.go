package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ragpipe/internal/domain"
)

// Config holds all configuration for the pipeline.
type Config struct {
	Data        DataConfig        `yaml:"data"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Metadata    MetadataConfig    `yaml:"metadata"`
	Database    DatabaseConfig    `yaml:"database"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Generation  GenerationConfig  `yaml:"generation"`
	Query       QueryConfig       `yaml:"query"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// DataConfig locates raw inputs and chunk outputs.
type DataConfig struct {
	RawDirectory       string   `yaml:"raw_directory"`
	ProcessedDirectory string   `yaml:"processed_directory"`
	Includes           []string `yaml:"includes"` // patterns on entry names
	Excludes           []string `yaml:"excludes"`
}

type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// VectorStoreConfig selects the vector backend.
type VectorStoreConfig struct {
	Backend   string `yaml:"backend"` // "memory", "bolt", "postgres"
	VectorDim int    `yaml:"vector_dim"`
	Path      string `yaml:"path"` // bolt file
}

// MetadataConfig selects where per-file provenance records go.
type MetadataConfig struct {
	Backend string `yaml:"backend"` // "bolt", "sqlite", "postgres"
	Path    string `yaml:"path"`    // sqlite file
}

type DatabaseConfig struct {
	URL    string `yaml:"url"`
	URLEnv string `yaml:"url_env"` // consulted when URL is empty
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider          string  `yaml:"provider"` // "openai", "deepseek", "jina", "ollama", "mock"
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	BaseURL           string  `yaml:"base_url"`
	Dimension         int     `yaml:"dimension"` // 0 uses the model default
	BatchSize         int     `yaml:"batch_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	CacheSize         int     `yaml:"cache_size"` // entries; 0 disables
}

// GenerationConfig holds answer generation configuration.
type GenerationConfig struct {
	Provider       string `yaml:"provider"` // "ollama", "openai", "gemini", "echo"
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	SystemPrompt   string `yaml:"system_prompt"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CircuitBreaker bool   `yaml:"circuit_breaker"`
}

type QueryConfig struct {
	Text string `yaml:"text"`
	TopK int    `yaml:"top_k"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			RawDirectory:       "data/raw",
			ProcessedDirectory: "data/processed",
		},
		Chunker: ChunkerConfig{
			ChunkSize: 512,
			Overlap:   128,
		},
		VectorStore: VectorStoreConfig{
			Backend:   "bolt",
			VectorDim: 384,
			Path:      "data/index.db",
		},
		Metadata: MetadataConfig{
			Backend: "bolt",
			Path:    "data/metadata.db",
		},
		Database: DatabaseConfig{
			URLEnv: "DATABASE_URL",
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "all-minilm",
			BaseURL:   "http://localhost:11434/v1",
			BatchSize: 64,
		},
		Generation: GenerationConfig{
			Provider:       "ollama",
			Model:          "mistral",
			BaseURL:        "http://localhost:11434",
			TimeoutSeconds: 120,
		},
		Query: QueryConfig{
			TopK: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
	}

	return cfg, nil
}

// LoadFromDir looks for rag.yaml, then .rag/config.yaml, and resolves
// relative paths against dir.
func LoadFromDir(dir string) (*Config, error) {
	cfg := DefaultConfig()
	for _, path := range []string{
		filepath.Join(dir, "rag.yaml"),
		filepath.Join(dir, ".rag", "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			loaded, err := Load(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
			break
		}
	}

	cfg.ResolvePaths(dir)
	return cfg, nil
}

// ResolvePaths makes relative file paths absolute with respect to base.
func (c *Config) ResolvePaths(base string) {
	for _, p := range []*string{
		&c.Data.RawDirectory,
		&c.Data.ProcessedDirectory,
		&c.VectorStore.Path,
		&c.Metadata.Path,
		&c.Metrics.Textfile,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DatabaseURL returns the explicit URL or the value of URLEnv.
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	if c.Database.URLEnv != "" {
		return os.Getenv(c.Database.URLEnv)
	}
	return ""
}

// UsesPostgres reports whether any backend needs a database connection.
func (c *Config) UsesPostgres() bool {
	return c.VectorStore.Backend == "postgres" || c.Metadata.Backend == "postgres"
}

// Validate checks every option that can be checked without I/O.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Chunker.ChunkSize <= 0 {
		bad("chunker.chunk_size must be positive, got %d", c.Chunker.ChunkSize)
	}
	if c.Chunker.Overlap < 0 {
		bad("chunker.overlap must not be negative, got %d", c.Chunker.Overlap)
	}
	if c.Chunker.ChunkSize > 0 && c.Chunker.Overlap >= c.Chunker.ChunkSize {
		bad("chunker.overlap (%d) must be smaller than chunker.chunk_size (%d)", c.Chunker.Overlap, c.Chunker.ChunkSize)
	}

	if c.Data.RawDirectory == "" {
		bad("data.raw_directory is required")
	}
	if c.Data.ProcessedDirectory == "" {
		bad("data.processed_directory is required")
	}

	if c.VectorStore.VectorDim <= 0 {
		bad("vector_store.vector_dim must be positive, got %d", c.VectorStore.VectorDim)
	}
	switch c.VectorStore.Backend {
	case "memory", "postgres":
	case "bolt":
		if c.VectorStore.Path == "" {
			bad("vector_store.path is required for the bolt backend")
		}
	default:
		bad("unknown vector_store.backend %q", c.VectorStore.Backend)
	}

	switch c.Metadata.Backend {
	case "postgres":
	case "bolt":
		if c.VectorStore.Backend != "bolt" {
			bad("metadata.backend bolt shares the bolt file and needs vector_store.backend bolt")
		}
	case "sqlite":
		if c.Metadata.Path == "" {
			bad("metadata.path is required for the sqlite backend")
		}
	default:
		bad("unknown metadata.backend %q", c.Metadata.Backend)
	}

	if c.UsesPostgres() && c.DatabaseURL() == "" {
		bad("postgres backend needs database.url or $%s", c.Database.URLEnv)
	}

	switch c.Embedding.Provider {
	case "openai", "deepseek", "jina", "ollama", "mock":
	default:
		bad("unknown embedding.provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimension < 0 {
		bad("embedding.dimension must not be negative")
	}
	if c.Embedding.BatchSize < 0 {
		bad("embedding.batch_size must not be negative")
	}
	if c.Embedding.CacheSize < 0 {
		bad("embedding.cache_size must not be negative")
	}

	switch c.Generation.Provider {
	case "ollama", "openai", "gemini", "echo":
	default:
		bad("unknown generation.provider %q", c.Generation.Provider)
	}

	if c.Query.TopK <= 0 {
		bad("query.top_k must be positive, got %d", c.Query.TopK)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
