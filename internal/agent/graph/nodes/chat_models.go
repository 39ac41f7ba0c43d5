package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey  string
	BaseURL string
	Intent  model.ChatModelConfig
	Entity  model.ChatModelConfig
	QA      model.ChatModelConfig
	Generic model.ChatModelConfig
}

// ChatModels holds one chat model per language role plus the shared client,
// which the embedder reuses.
type ChatModels struct {
	Client  *genai.Client
	Intent  *gemini.ChatModel
	Entity  *gemini.ChatModel
	QA      *gemini.ChatModel
	Generic *gemini.ChatModel
}

// NewGenaiClient creates the Gemini API client shared by every model.
func NewGenaiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewChatModels creates the four role models over one client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	client, err := NewGenaiClient(ctx, config.APIKey, config.BaseURL)
	if err != nil {
		return nil, err
	}

	cms := &ChatModels{Client: client}
	roles := []struct {
		name string
		cfg  model.ChatModelConfig
		dst  **gemini.ChatModel
	}{
		{"intent", config.Intent, &cms.Intent},
		{"entity", config.Entity, &cms.Entity},
		{"qa", config.QA, &cms.QA},
		{"generic", config.Generic, &cms.Generic},
	}
	for _, role := range roles {
		cm, err := newChatModel(ctx, client, role.cfg)
		if err != nil {
			logx.Error().Err(err).Str("role", role.name).Msg("Error creating chat model")
			return nil, fmt.Errorf("error creating %s model: %w", role.name, err)
		}
		*role.dst = cm
	}
	return cms, nil
}

func newChatModel(ctx context.Context, client *genai.Client, cfg model.ChatModelConfig) (*gemini.ChatModel, error) {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	return gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: cfg.ThinkingBudget > 0,
			ThinkingBudget:  genai.Ptr(cfg.ThinkingBudget),
		},
	})
}
