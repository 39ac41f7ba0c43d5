package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"

	"github.com/pokedex-genai/server/internal/agent/graph"
	"github.com/pokedex-genai/server/internal/agent/graph/conversations"
	"github.com/pokedex-genai/server/internal/agent/graph/nodes"
	"github.com/pokedex-genai/server/internal/agent/graph/prompts"
	"github.com/pokedex-genai/server/internal/agent/graph/tools"
	"github.com/pokedex-genai/server/internal/agent/model"
	"github.com/pokedex-genai/server/internal/agent/nlu"
	"github.com/pokedex-genai/server/internal/agent/rag"
	"github.com/pokedex-genai/server/internal/agent/refiner"
	"github.com/pokedex-genai/server/internal/agent/repo"
	"github.com/pokedex-genai/server/internal/agent/response"
	"github.com/pokedex-genai/server/internal/agent/router"
	"github.com/pokedex-genai/server/internal/observe"
	"github.com/pokedex-genai/server/internal/pokeapi"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// app is the wired service. Built once at startup and passed by reference.
type app struct {
	cfg     *AppConfig
	rdb     *redis.Client
	pool    *pgxpool.Pool
	metrics *observe.Metrics

	runner  graph.Runner
	history *conversations.Manager
	records model.RecordSource
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

// newApp connects the stores and builds the turn graph.
func newApp(ctx context.Context, cfg *AppConfig) (_ *app, err error) {
	a := &app{cfg: cfg, metrics: observe.DefaultMetrics()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.rdb, err = cfg.Redis.New(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if a.pool, err = cfg.Postgres.New(ctx); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	logx.Info().Msg("Connected to Redis and Postgres")

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Intent:  cfg.Intent,
		Entity:  cfg.Entity,
		QA:      cfg.QA,
		Generic: cfg.Generic,
	})
	if err != nil {
		return nil, err
	}

	store, err := newStore(a.pool, cms.Client, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	qa := rag.NewQA(store, cms.QA, cfg.Retrieval.TopK)

	client := pokeapi.NewClient(cfg.PokeAPI)
	cached := pokeapi.NewCachedSource(client, repo.NewRedisRecordCache(a.rdb), cfg.PokeAPI.CacheTTL)
	source, err := tools.NewToolSource(ctx, tools.NewLookupTool(cached))
	if err != nil {
		return nil, err
	}
	a.records = source

	extractor, err := newExtractor(ctx, cfg.Extractor, cms, client)
	if err != nil {
		return nil, err
	}

	msgs := prompts.DefaultMessages()
	caps := model.Capabilities{
		Classifier: nlu.NewIntentClassifier(cms.Intent),
		Extractor:  extractor,
		Records:    source,
		QA:         qa,
		Generic:    nlu.NewGenericAnswerer(cms.Generic),
	}
	ref := refiner.New(qa, refiner.Templates{Base: msgs.DefenseQuery, Instructions: msgs.DefenseInstructions}, a.metrics)
	rt, err := router.New(caps, ref, msgs, cfg.PokeAPI.Concurrency)
	if err != nil {
		return nil, err
	}
	asm, err := response.NewAssembler(msgs)
	if err != nil {
		return nil, err
	}

	a.history = conversations.NewManager(
		repo.NewRedisConversationRepository(a.rdb, cfg.Conversation.TTL, cfg.Conversation.MaxTurns),
		cfg.Conversation,
	)
	a.runner, err = graph.NewRunner(ctx, &graph.GraphConfig{
		Router:    rt,
		Assembler: asm,
		History:   a.history,
		Metrics:   a.metrics,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func newStore(pool *pgxpool.Pool, client *genai.Client, cfg *AppConfig) (*rag.Store, error) {
	docs, err := rag.NewEmbedder(client, cfg.Embedding, rag.TaskRetrievalDocument)
	if err != nil {
		return nil, err
	}
	return rag.NewStore(pool, docs, docs.WithTask(rag.TaskRetrievalQuery), rag.StoreConfig{
		Dimensions: cfg.Embedding.Dimensions,
		TopK:       cfg.Retrieval.TopK,
	})
}

func newExtractor(ctx context.Context, mode string, cms *nodes.ChatModels, names nlu.NameLister) (model.EntityExtractor, error) {
	llm := nlu.NewLLMExtractor(cms.Entity)
	if mode == ExtractorLLM {
		return llm, nil
	}

	dict, err := nlu.LoadDictionaryExtractor(ctx, names)
	if err != nil {
		if mode == ExtractorDictionary {
			return nil, fmt.Errorf("load species dictionary: %w", err)
		}
		logx.Warn().Err(err).Msg("species dictionary unavailable, using LLM extractor only")
		return llm, nil
	}
	if mode == ExtractorDictionary {
		return dict, nil
	}
	return nlu.FallbackExtractor{Primary: dict, Fallback: llm}, nil
}
