// Package router holds the branch procedures of a turn. Each arm composes
// the capabilities in a fixed dependency order and reports precondition
// failures as error values; Fold turns them into state flags.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/pokedex-genai/server/internal/agent/graph/prompts"
	"github.com/pokedex-genai/server/internal/agent/model"
	"github.com/pokedex-genai/server/internal/agent/refiner"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

var (
	// ErrEmptyExtraction means a branch needed at least one entity and got none.
	ErrEmptyExtraction = errors.New("no pokemon entity found")
	// ErrNoAnswer means a branch needed a QA answer and got the sentinel.
	ErrNoAnswer = errors.New("no answer found")
	// ErrGenericAnswer means the open-domain answer could not be produced.
	ErrGenericAnswer = errors.New("generic answer failed")
)

// Failure labels stored on the state.
const (
	FailureEmptyExtraction = "empty_extraction"
	FailureNoAnswer        = "no_answer"
	FailureGenericAnswer   = "generic_answer"
	FailureInternal        = "internal"
)

const defaultConcurrency = 4

type Router struct {
	caps        model.Capabilities
	refiner     *refiner.Refiner
	msgs        *prompts.Messages
	concurrency int
}

func New(caps model.Capabilities, ref *refiner.Refiner, msgs *prompts.Messages, concurrency int) (*Router, error) {
	switch {
	case caps.Classifier == nil:
		return nil, fmt.Errorf("intent classifier is nil")
	case caps.Extractor == nil:
		return nil, fmt.Errorf("entity extractor is nil")
	case caps.Records == nil:
		return nil, fmt.Errorf("record source is nil")
	case caps.QA == nil:
		return nil, fmt.Errorf("semantic qa is nil")
	case caps.Generic == nil:
		return nil, fmt.Errorf("generic answerer is nil")
	case ref == nil:
		return nil, fmt.Errorf("refiner is nil")
	case msgs == nil:
		return nil, fmt.Errorf("messages are nil")
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Router{caps: caps, refiner: ref, msgs: msgs, concurrency: concurrency}, nil
}

// Classify tags the text and opens the turn state. A classifier failure or
// an empty intent type routes the turn to the no-intent branch.
func (r *Router) Classify(ctx context.Context, text string) *model.OrchestrationState {
	tag, err := r.caps.Classifier.Classify(ctx, text)
	if err != nil {
		logx.Warn().Err(err).Msg("intent classification failed, routing to no-intent")
		tag = model.IntentTag{}
	}
	if tag.Empty() {
		s := model.NewOrchestrationState(text, model.IntentTag{Type: model.IntentNone, Structure: model.StructureNone})
		s.NoIntent = true
		return s
	}
	if tag.Type != model.IntentInformationRequest {
		tag.Structure = model.StructureNone
	}
	return model.NewOrchestrationState(text, tag)
}

// Arm is one branch procedure.
type Arm func(ctx context.Context, s *model.OrchestrationState) error

// Arms maps every route to its procedure.
func (r *Router) Arms() map[model.Route]Arm {
	return map[model.Route]Arm{
		model.RouteEntityNames: r.EntityNames,
		model.RouteQuestion:    r.Question,
		model.RouteDescription: r.Description,
		model.RouteDefense:     r.Defense,
		model.RouteSquad:       r.Squad,
		model.RouteNoIntent:    r.NoIntent,
	}
}

// Route returns the arm a state dispatches to.
func Route(s *model.OrchestrationState) model.Route {
	if s.NoIntent {
		return model.RouteNoIntent
	}
	return s.Intent.Route()
}

// Run classifies and dispatches one turn without the graph runtime.
func (r *Router) Run(ctx context.Context, text string) *model.OrchestrationState {
	s := r.Classify(ctx, text)
	route := Route(s)
	Fold(s, route, Guard(ctx, s, r.Arms()[route]))
	return s
}

// Guard runs an arm and converts a panic into an error.
func Guard(ctx context.Context, s *model.OrchestrationState, arm Arm) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("branch panic: %v", rec)
		}
	}()
	return arm(ctx, s)
}

// Fold records an arm's result on the state. It never lets err escape.
func Fold(s *model.OrchestrationState, route model.Route, err error) {
	if err == nil {
		return
	}
	reason := FailureInternal
	switch {
	case errors.Is(err, ErrEmptyExtraction):
		reason = FailureEmptyExtraction
	case errors.Is(err, ErrNoAnswer):
		reason = FailureNoAnswer
	case errors.Is(err, ErrGenericAnswer):
		reason = FailureGenericAnswer
	}
	logx.Error().
		Err(err).
		Str("route", string(route)).
		Str("failure", reason).
		Msg("branch failed")
	s.Fail(reason)
}
