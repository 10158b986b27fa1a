package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the nutrition service.
// Environment variables are automatically parsed from the NUTRIGENIE_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override drivers
	DBDriver      string `envconfig:"DB_DRIVER" default:"auto"`
	SemanticStore string `envconfig:"SEMANTIC_STORE" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration (local target)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"nutrigenie.db"`

	// Embedding / Search Configuration
	EmbedProvider string  `envconfig:"EMBED_PROVIDER" default:"ollama"`
	EmbedModel    string  `envconfig:"EMBED_MODEL" default:"mxbai-embed-large"`
	OllamaURL     string  `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	SearchAlpha   float32 `envconfig:"SEARCH_ALPHA" default:"0.6"`

	// Weaviate (cloud-dev target)
	WeaviateURL string `envconfig:"WEAVIATE_URL" default:"weaviate:8080"`

	// Planner Configuration
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-20250514"`
	PlannerMaxRetry int    `envconfig:"PLANNER_MAX_RETRY" default:"2"`

	// Startup health gate
	StartupTimeoutSeconds int `envconfig:"STARTUP_TIMEOUT_SECONDS" default:"30"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and
// SemanticStore when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB, defaultSemantic string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
		defaultSemantic = "chromem"
	case "cloud-dev":
		defaultDB = "postgres"
		defaultSemantic = "weaviate"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}
	if c.SemanticStore == "" || c.SemanticStore == "auto" {
		c.SemanticStore = defaultSemantic
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	allowedSemantic := map[string]bool{"weaviate": true, "chromem": true}
	if !allowedSemantic[c.SemanticStore] {
		return fmt.Errorf("unsupported SEMANTIC_STORE: %s", c.SemanticStore)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with NUTRIGENIE_
// Example: NUTRIGENIE_HTTP_PORT, NUTRIGENIE_BUILD_TARGET
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("NUTRIGENIE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("semantic_store", cfg.SemanticStore).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Float32("search_alpha", cfg.SearchAlpha).
		Str("anthropic_model", cfg.AnthropicModel).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
	}

	cfg.HTTPPort = 8080
	cfg.BuildTarget = "local"
	cfg.DBDriver = "auto"
	cfg.SemanticStore = "auto"
	cfg.SQLitePath = ":memory:"

	cfg.EmbedProvider = "ollama"
	cfg.EmbedModel = "mxbai-embed-large"
	cfg.OllamaURL = "http://localhost:11434"
	cfg.SearchAlpha = 0.6

	cfg.AnthropicModel = "claude-sonnet-4-20250514"
	cfg.PlannerMaxRetry = 2
	cfg.StartupTimeoutSeconds = 5

	if err := cfg.ResolveDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
