package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/engine"
	"github.com/ccdaniele/name-finder/internal/core/scoring"
)

// ScoreTool handles the score_name MCP tool. It runs the web and trademark
// checks for their signals and never rejects the name.
type ScoreTool struct {
	web       engine.WebCheck
	trademark engine.TrademarkCheck
	scorer    engine.Scorer
}

// NewScoreTool creates a ScoreTool. A nil scorer falls back to the
// algorithmic score only.
func NewScoreTool(web engine.WebCheck, trademark engine.TrademarkCheck, scorer engine.Scorer) *ScoreTool {
	if scorer == nil {
		scorer = &scoring.Scorer{}
	}
	return &ScoreTool{web: web, trademark: trademark, scorer: scorer}
}

// Definition returns the MCP tool definition for score_name.
func (t *ScoreTool) Definition() mcp.Tool {
	return mcp.NewTool("score_name",
		mcp.WithDescription("Compute the trademarkability score, grade and report for a brand name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Candidate brand name"),
		),
		mcp.WithString("category",
			mcp.Description("Distinctiveness category (default: suggestive)"),
			mcp.Enum(categoryValues...),
		),
		mcp.WithString("industry",
			mcp.Description("Industry used to judge web conflicts"),
		),
		mcp.WithString("classes",
			mcp.Description("Comma-separated Nice class numbers, e.g. '9,42'"),
		),
		mcp.WithBoolean("domain_available",
			mcp.Description("Whether the primary domain is available (default: false)"),
		),
	)
}

// Handle processes the score_name tool call.
func (t *ScoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	category, err := categoryArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile := profileArgs(req)

	web := core.WebSearchResult{Passed: true, Score: 100, Skipped: true, SimilarCompanies: []string{}}
	if t.web != nil {
		web = t.web.CheckWeb(ctx, name, profile.Industry)
	}
	tm := core.TrademarkResult{Passed: true, Score: 100, RiskLevel: core.RiskLow, Skipped: true, Conflicts: []core.TrademarkConflict{}}
	if t.trademark != nil {
		tm = t.trademark.CheckTrademark(ctx, name, profile.ClassNumbers())
	}

	score := t.scorer.Score(ctx, scoring.Input{
		Name:            name,
		Category:        category,
		WebSearch:       web,
		Trademark:       tm,
		DomainAvailable: boolArg(req, "domain_available", false),
	})

	return jsonResult(fmt.Sprintf("%s scored %d (%s).", name, score.Overall, score.Grade), score)
}
