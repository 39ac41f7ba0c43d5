package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pokedex-genai/server/internal/agent/graph/nodes"
	"github.com/pokedex-genai/server/internal/agent/rag"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <dir>",
		Short: "Chunk, embed and store every .txt and .md file under dir",
		Args:  cobra.ExactArgs(1),
		RunE:  runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	pool, err := cfg.Postgres.New(ctx)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	client, err := nodes.NewGenaiClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return err
	}
	store, err := newStore(pool, client, cfg)
	if err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	n, err := rag.NewIndexer(store, rag.NewSplitter()).IndexDir(ctx, args[0])
	if err != nil {
		return err
	}
	logx.Info().Str("dir", args[0]).Int("chunks", n).Msg("Indexed knowledge base")
	cmd.Printf("indexed %d chunks from %s\n", n, args[0])
	return nil
}
