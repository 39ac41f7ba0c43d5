package nodes

import (
	"github.com/pokedex-genai/server/internal/agent/model"
)

// Node keys of the turn graph.
const (
	NodeClassifier  = "IntentClassifier"
	NodeEntityNames = "EntityNamesBranch"
	NodeQuestion    = "QuestionBranch"
	NodeDescription = "DescriptionBranch"
	NodeDefense     = "DefenseBranch"
	NodeSquad       = "SquadBranch"
	NodeNoIntent    = "NoIntentBranch"
	NodeAssembler   = "ResponseAssembler"
)

var routeNodes = map[model.Route]string{
	model.RouteEntityNames: NodeEntityNames,
	model.RouteQuestion:    NodeQuestion,
	model.RouteDescription: NodeDescription,
	model.RouteDefense:     NodeDefense,
	model.RouteSquad:       NodeSquad,
	model.RouteNoIntent:    NodeNoIntent,
}

// NodeFor returns the branch node key of a route. Unknown routes fall back
// to the no-intent branch.
func NodeFor(route model.Route) string {
	if key, ok := routeNodes[route]; ok {
		return key
	}
	return NodeNoIntent
}

// BranchNodes is the end-node set of the route branch.
func BranchNodes() map[string]bool {
	out := make(map[string]bool, len(routeNodes))
	for _, key := range routeNodes {
		out[key] = true
	}
	return out
}
