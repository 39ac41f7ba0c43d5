package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/pokedex-genai/server/internal/agent/model"
	"github.com/pokedex-genai/server/internal/core"
	pkgpostgres "github.com/pokedex-genai/server/pkg/postgres"
	pkgredis "github.com/pokedex-genai/server/pkg/redis"
)

// Entity extractor modes.
const (
	ExtractorLLM        = "llm"
	ExtractorDictionary = "dictionary"
	ExtractorHybrid     = "hybrid"
)

// AppConfig defines all configurable parameters of the service, sourced
// from environment variables (loaded from .env for local runs). Nested
// groups read their documented names, e.g. POKEAPI_BASE_URL.
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// One chat model per language role
	Intent  model.ChatModelConfig `envconfig:"INTENT"`
	Entity  model.ChatModelConfig `envconfig:"ENTITY"`
	QA      model.ChatModelConfig `envconfig:"QA"`
	Generic model.ChatModelConfig `envconfig:"GENERIC"`

	// Extractor selects llm, dictionary or hybrid (dictionary first, LLM fallback).
	Extractor string `envconfig:"ENTITY_EXTRACTOR" default:"hybrid"`

	Embedding    model.EmbeddingConfig
	Retrieval    model.RetrievalConfig
	PokeAPI      model.PokeAPIConfig
	Conversation model.ConversationConfig
	Server       model.ServerConfig
}

// LoadConfig reads envFile when it exists, then binds the environment.
func LoadConfig(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.Extractor = strings.ToLower(strings.TrimSpace(c.Extractor)); c.Extractor {
	case ExtractorLLM, ExtractorDictionary, ExtractorHybrid:
	default:
		return fmt.Errorf("ENTITY_EXTRACTOR must be %s, %s or %s, got %q", ExtractorLLM, ExtractorDictionary, ExtractorHybrid, c.Extractor)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive")
	}
	if c.PokeAPI.Concurrency <= 0 {
		return fmt.Errorf("POKEAPI_CONCURRENCY must be positive")
	}
	return nil
}
