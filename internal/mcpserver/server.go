// Package mcpserver exposes the orchestrator as MCP tools over stdio.
package mcpserver

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pokedex-genai/server/internal/agent/graph"
	"github.com/pokedex-genai/server/internal/agent/model"
)

type Server struct {
	runner  graph.Runner
	records model.RecordSource
	mcp     *sdk.Server
}

func NewServer(runner graph.Runner, records model.RecordSource, version string) *Server {
	s := &Server{
		runner:  runner,
		records: records,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "pokedex",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
