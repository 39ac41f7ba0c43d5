package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/pokedex-genai/server/internal/observe"
)

// NewAllCallbacks aggregates the prompt, model and tool observers into one
// callbacks.Handler. Tool calls are counted on metrics when it is non-nil.
func NewAllCallbacks(metrics *observe.Metrics) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		Tool(newToolHandler(metrics)).
		ChatModel(newModelHandler()).
		Prompt(newPromptHandler()).
		Handler()
}
