package mcptools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/checker"
)

var categoryValues = func() []string {
	out := make([]string, 0, len(core.DistinctivenessCategories))
	for _, c := range core.DistinctivenessCategories {
		out = append(out, string(c))
	}
	return out
}()

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func categoryArg(req mcp.CallToolRequest) (core.DistinctivenessCategory, error) {
	category, err := core.ParseDistinctivenessCategory(req.GetString("category", ""))
	if err != nil {
		return "", fmt.Errorf("'category' must be one of %s", strings.Join(categoryValues, ", "))
	}
	return category, nil
}

// profileArgs builds the slice of a preference profile the checks read.
func profileArgs(req mcp.CallToolRequest) core.PreferenceSummary {
	profile := core.PreferenceSummary{Industry: strings.TrimSpace(req.GetString("industry", ""))}
	for _, n := range checker.ParseClassCodes(req.GetString("classes", "")) {
		profile.USPTOClasses = append(profile.USPTOClasses, core.USPTOClass{ClassNumber: n})
	}
	return profile
}

func jsonResult(summary string, value any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(summary + "\n\n" + string(payload)), nil
}
