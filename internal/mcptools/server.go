// Package mcptools exposes name clearance as MCP tools over stdio.
package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ccdaniele/name-finder/internal/core/engine"
)

// Deps are the clearance components the tools call into. Nil checkers are
// reported as skipped.
type Deps struct {
	Validator engine.Validator
	Web       engine.WebCheck
	Trademark engine.TrademarkCheck
	Scorer    engine.Scorer
}

// New builds an MCP server with the validate_name and score_name tools.
func New(name, version string, deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	validate := NewValidateTool(deps.Validator)
	s.AddTool(validate.Definition(), validate.Handle)

	score := NewScoreTool(deps.Web, deps.Trademark, deps.Scorer)
	s.AddTool(score.Definition(), score.Handle)

	return s
}

// Serve runs the server on stdin and stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = `Use validate_name to run a brand name through web presence, domain and
trademark clearance. Use score_name to get a trademarkability score and
report without rejecting the name.`
