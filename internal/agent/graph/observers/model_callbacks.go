package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

const maxLoggedContent = 500

// newModelHandler logs model calls and their token cost.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *einomodel.CallbackInput) context.Context {
			ev := logx.Debug().Str("component", info.Type).Str("name", info.Name)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages)).Str("user", clip(lastUserContent(input.Messages)))
			}
			ev.Msg("Model start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *einomodel.CallbackOutput) context.Context {
			if output == nil || output.Message == nil {
				return ctx
			}
			ev := logx.Debug().
				Str("component", info.Type).
				Str("name", info.Name).
				Str("assistant", clip(strings.TrimSpace(output.Message.Content)))

			if meta := output.Message.ResponseMeta; meta != nil && meta.Usage != nil {
				name := info.Name
				if output.Config != nil && output.Config.Model != "" {
					name = output.Config.Model
				}
				ev = ev.Str("model", name).
					Int("prompt_tokens", meta.Usage.PromptTokens).
					Int("completion_tokens", meta.Usage.CompletionTokens).
					Int("total_tokens", meta.Usage.TotalTokens)
				if pricing, ok := model.ResolvePricing(name); ok {
					inC, outC, totalC := model.ComputeCost(meta.Usage, pricing)
					ev = ev.Float64("input_cost_usd", inC).
						Float64("output_cost_usd", outC).
						Float64("total_cost_usd", totalC)
				}
			}
			ev.Msg("Model end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("component", info.Type).Str("name", info.Name).Msg("Model error")
			return ctx
		},
	}
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}

func clip(s string) string {
	if len(s) <= maxLoggedContent {
		return s
	}
	return s[:maxLoggedContent] + "..."
}
