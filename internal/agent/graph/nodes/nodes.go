package nodes

import (
	"context"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/pokedex-genai/server/internal/agent/graph/conversations"
	"github.com/pokedex-genai/server/internal/agent/model"
	"github.com/pokedex-genai/server/internal/agent/response"
	"github.com/pokedex-genai/server/internal/agent/router"
	"github.com/pokedex-genai/server/internal/observe"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// NewClassifierPreHandler opens the turn trace.
func NewClassifierPreHandler() func(context.Context, model.QueryInput, *model.TurnTrace) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.TurnTrace) (model.QueryInput, error) {
		s.ConversationID = in.ConversationID
		s.StartedAt = time.Now()
		return in, nil
	}
}

// NewClassifierNode tags the query and creates the orchestration state.
func NewClassifierNode(r *router.Router) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (*model.OrchestrationState, error) {
		s := r.Classify(ctx, in.Query)
		logx.Debug().
			Str("conversation_id", in.ConversationID).
			Str("intent_type", string(s.Intent.Type)).
			Str("intent_structure", string(s.Intent.Structure)).
			Bool("no_intent", s.NoIntent).
			Msg("Intent classified")
		return s, nil
	})
}

// NewClassifierPostHandler keeps the state on the trace for the final report.
func NewClassifierPostHandler() func(context.Context, *model.OrchestrationState, *model.TurnTrace) (*model.OrchestrationState, error) {
	return func(ctx context.Context, s *model.OrchestrationState, t *model.TurnTrace) (*model.OrchestrationState, error) {
		t.State = s
		t.Route = router.Route(s)
		return s, nil
	}
}

// NewRouteCondition picks the branch node for a classified state.
func NewRouteCondition() func(context.Context, *model.OrchestrationState) (string, error) {
	return func(ctx context.Context, s *model.OrchestrationState) (string, error) {
		route := router.Route(s)
		logx.Debug().Str("route", string(route)).Msg("Routing turn")
		return NodeFor(route), nil
	}
}

// NewBranchNode runs one arm. Its failures become state flags; the node
// itself never fails the graph.
func NewBranchNode(route model.Route, arm router.Arm) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, s *model.OrchestrationState) (*model.OrchestrationState, error) {
		router.Fold(s, route, router.Guard(ctx, s, arm))
		return s, nil
	})
}

// NewAssemblerNode renders the state into the public document.
func NewAssemblerNode(a *response.Assembler) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, s *model.OrchestrationState) (*model.ResponseDocument, error) {
		return a.Assemble(s), nil
	})
}

// NewAssemblerPostHandler records metrics and history for the finished turn.
// History failures are logged and do not affect the response.
func NewAssemblerPostHandler(mm *conversations.Manager, metrics *observe.Metrics) func(context.Context, *model.ResponseDocument, *model.TurnTrace) (*model.ResponseDocument, error) {
	return func(ctx context.Context, doc *model.ResponseDocument, t *model.TurnTrace) (*model.ResponseDocument, error) {
		s := t.State
		if s == nil {
			return doc, nil
		}
		elapsed := time.Since(t.StartedAt)
		if metrics != nil {
			metrics.RecordTurn(ctx, string(t.Route), s.Outcome(), s.Failure, elapsed.Seconds())
		}

		logx.Info().
			Str("conversation_id", t.ConversationID).
			Str("route", string(t.Route)).
			Str("outcome", s.Outcome()).
			Str("failure", s.Failure).
			Dur("elapsed", elapsed).
			Msg("Turn finished")

		if mm != nil {
			if err := mm.Record(ctx, t.ConversationID, s.Query, doc, s.Outcome()); err != nil {
				logx.Error().
					Str("conversation_id", t.ConversationID).
					Err(err).
					Msg("Error saving turn history")
			}
		}
		return doc, nil
	}
}
