package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/engine"
)

// ValidateTool handles the validate_name MCP tool.
type ValidateTool struct {
	validator engine.Validator
}

// NewValidateTool creates a ValidateTool backed by the clearance pipeline.
func NewValidateTool(validator engine.Validator) *ValidateTool {
	return &ValidateTool{validator: validator}
}

// Definition returns the MCP tool definition for validate_name.
func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("validate_name",
		mcp.WithDescription("Run a brand name through web presence, domain availability and trademark clearance. "+
			"Returns pass or fail with the stage that rejected the name, plus the score of a passing name."),
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
	)
}

// Handle processes the validate_name tool call.
func (t *ValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.validator == nil {
		return mcp.NewToolResultError("validation is not configured"), nil
	}
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	category, err := categoryArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, err := t.validator.Validate(ctx, core.GeneratedName{
		Name:                    name,
		DistinctivenessCategory: category,
	}, profileArgs(req), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation interrupted: %v", err)), nil
	}

	if outcome.Validated != nil {
		v := outcome.Validated.Validation
		summary := fmt.Sprintf("%s passed.", name)
		if v.Score != nil {
			summary = fmt.Sprintf("%s passed with score %d (%s).", name, v.Score.Overall, v.Score.Grade)
		}
		if v.Unverified() {
			summary += " Some checks are unverified."
		}
		return jsonResult(summary, v)
	}
	f := outcome.Failed
	return jsonResult(fmt.Sprintf("%s failed at %s: %s", name, f.FailureStep, f.FailureReason), f.Validation)
}
