package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pokedex-genai/server/internal/observe"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// setup loads the configuration, initialises logging and registers the
// metrics provider. The returned shutdown flushes the provider.
func setup(ctx context.Context, cmd *cobra.Command) (*AppConfig, func(), error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := LoadConfig(envFile)
	if err != nil {
		return nil, nil, err
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})

	shutdown, err := observe.InitProvider(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("init metrics provider: %w", err)
	}
	return cfg, func() {
		if err := shutdown(context.Background()); err != nil {
			logx.Warn().Err(err).Msg("metrics provider shutdown")
		}
	}, nil
}
