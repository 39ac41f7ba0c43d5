package model

import "time"

// ================ Config ================

// ChatModelConfig configures one chat model role. It is embedded under a
// role prefix (INTENT_, ENTITY_, QA_, GENERIC_).
type ChatModelConfig struct {
	Model       string  `envconfig:"MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"TEMPERATURE" default:"0.1"`

	// ThinkingBudget is the Gemini thinking token budget; 0 disables thinking.
	ThinkingBudget int32 `envconfig:"THINKING_BUDGET" default:"0"`
}

type EmbeddingConfig struct {
	Model      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	Dimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
}

type RetrievalConfig struct {
	TopK int `envconfig:"RETRIEVAL_TOP_K" default:"4"`
}

type PokeAPIConfig struct {
	BaseURL     string        `envconfig:"POKEAPI_BASE_URL" default:"https://pokeapi.co/api/v2"`
	Timeout     time.Duration `envconfig:"POKEAPI_TIMEOUT" default:"10s"`
	Concurrency int           `envconfig:"POKEAPI_CONCURRENCY" default:"4"`
	CacheTTL    time.Duration `envconfig:"RECORD_CACHE_TTL" default:"24h"`
}

type ConversationConfig struct {
	TTL      time.Duration `envconfig:"CONVERSATION_TTL" default:"24h"`
	MaxTurns int           `envconfig:"CONVERSATION_MAX_TURNS" default:"20"`
}

type ServerConfig struct {
	Addr        string        `envconfig:"SERVER_ADDR" default:":8000"`
	TurnTimeout time.Duration `envconfig:"SERVER_TURN_TIMEOUT" default:"60s"`
}
