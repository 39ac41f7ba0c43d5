package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/tool"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/pokedex-genai/server/internal/observe"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

func newToolHandler(metrics *observe.Metrics) *callbackHelper.ToolCallbackHandler {
	count := func(ctx context.Context, name, status string) {
		if metrics != nil {
			metrics.RecordToolCall(ctx, name, status)
		}
	}
	return &callbackHelper.ToolCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *tool.CallbackInput) context.Context {
			if input != nil {
				logx.Debug().Str("tool", info.Name).Str("arguments", input.ArgumentsInJSON).Msg("Tool start")
			}
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *tool.CallbackOutput) context.Context {
			size := 0
			if output != nil {
				size = len(output.Response)
			}
			logx.Debug().Str("tool", info.Name).Int("response_bytes", size).Msg("Tool end")
			count(ctx, info.Name, "ok")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("tool", info.Name).Msg("Tool execution failed")
			count(ctx, info.Name, "error")
			return ctx
		},
	}
}
