package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/pokedex-genai/server/internal/agent/graph/conversations"
	"github.com/pokedex-genai/server/internal/agent/graph/nodes"
	"github.com/pokedex-genai/server/internal/agent/graph/observers"
	"github.com/pokedex-genai/server/internal/agent/model"
	"github.com/pokedex-genai/server/internal/agent/response"
	"github.com/pokedex-genai/server/internal/agent/router"
	errx "github.com/pokedex-genai/server/internal/core/error"
	"github.com/pokedex-genai/server/internal/observe"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// Runner executes one turn: classify, route, run the branch and assemble.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.ResponseDocument, error)
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	Router    *router.Router
	Assembler *response.Assembler
	// History is optional; without it turns are not recorded.
	History *conversations.Manager
	Metrics *observe.Metrics
}

// GraphBuilder handles the construction of the turn graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.ResponseDocument]
}

type graphRunner struct {
	runnable  compose.Runnable[model.QueryInput, *model.ResponseDocument]
	assembler *response.Assembler
	metrics   *observe.Metrics
}

// Invoke rejects an empty query with a 400 error. Every other outcome,
// including a graph runtime failure, yields a document.
func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (doc *model.ResponseDocument, err error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, errx.BadRequest(errors.New("user_query is required"))
	}

	defer func() {
		if rec := recover(); rec != nil {
			logx.Error().Interface("panic", rec).Str("conversation_id", in.ConversationID).Msg("Turn panicked")
			doc, err = r.failed(query), nil
		}
	}()

	out, err := r.runnable.Invoke(ctx, model.QueryInput{
		ConversationID: in.ConversationID,
		Query:          query,
	}, compose.WithCallbacks(observers.NewAllCallbacks(r.metrics)))
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", in.ConversationID).Msg("Turn graph failed")
		return r.failed(query), nil
	}
	if out == nil {
		return r.failed(query), nil
	}
	return out, nil
}

func (r *graphRunner) failed(query string) *model.ResponseDocument {
	s := model.NewOrchestrationState(query, model.IntentTag{})
	s.Fail(router.FailureInternal)
	return r.assembler.Assemble(s)
}

// NewRunner builds the graph and returns a Runner over it.
func NewRunner(ctx context.Context, config *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	logx.Debug().Msg("Turn graph built successfully")
	return &graphRunner{runnable: runnable, assembler: config.Assembler, metrics: config.Metrics}, nil
}

// BuildGraph constructs and returns the compiled turn graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.ResponseDocument], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Router == nil {
		return nil, fmt.Errorf("router is nil")
	}
	if config.Assembler == nil {
		return nil, fmt.Errorf("assembler is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.ResponseDocument](
			compose.WithGenLocalState(func(ctx context.Context) *model.TurnTrace {
				return &model.TurnTrace{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}
	return builder.compile(ctx)
}

// addNodes adds the classifier, one node per branch arm and the assembler
func (b *GraphBuilder) addNodes() error {
	if err := b.graph.AddLambdaNode(nodes.NodeClassifier,
		nodes.NewClassifierNode(b.config.Router),
		compose.WithStatePreHandler(nodes.NewClassifierPreHandler()),
		compose.WithStatePostHandler(nodes.NewClassifierPostHandler()),
	); err != nil {
		return fmt.Errorf("add classifier node: %w", err)
	}

	for route, arm := range b.config.Router.Arms() {
		key := nodes.NodeFor(route)
		if err := b.graph.AddLambdaNode(key, nodes.NewBranchNode(route, arm)); err != nil {
			return fmt.Errorf("add %s node: %w", key, err)
		}
	}

	if err := b.graph.AddLambdaNode(nodes.NodeAssembler,
		nodes.NewAssemblerNode(b.config.Assembler),
		compose.WithStatePostHandler(nodes.NewAssemblerPostHandler(b.config.History, b.config.Metrics)),
	); err != nil {
		return fmt.Errorf("add assembler node: %w", err)
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeClassifier},
		{nodes.NodeAssembler, compose.END},
	}
	for key := range nodes.BranchNodes() {
		edges = append(edges, [2]string{key, nodes.NodeAssembler})
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates the route branch after classification
func (b *GraphBuilder) addBranches() error {
	routeBranch := compose.NewGraphBranch(nodes.NewRouteCondition(), nodes.BranchNodes())
	if err := b.graph.AddBranch(nodes.NodeClassifier, routeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding route branch")
		return fmt.Errorf("error adding route branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.ResponseDocument], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("PokedexTurn"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
		compose.WithMaxRunSteps(10),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
