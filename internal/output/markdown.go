package output

import (
	"fmt"
	"strings"

	"github.com/ccdaniele/name-finder/internal/core"
)

// MarkdownFormatter renders a ranked report as Markdown.
type MarkdownFormatter struct{}

// FormatRun renders a ranking table and one detail section per passed name.
func (f *MarkdownFormatter) FormatRun(result *core.RunResult) (string, error) {
	if result == nil {
		return "", nil
	}

	ranked := Ranked(result.Passed)

	var sb strings.Builder
	sb.WriteString("# Name Report\n\n")
	sb.WriteString(fmt.Sprintf("%d validated names\n\n", len(ranked)))
	sb.WriteString("| # | Name | Score | Grade | Type | Domain | Summary |\n")
	sb.WriteString("|---|------|-------|-------|------|--------|---------|\n")

	for i, n := range ranked {
		score, grade := scoreLabel(n.Validation)
		summary := ""
		if n.Validation.Score != nil {
			summary = truncate(n.Validation.Score.Report, 80)
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
			i+1,
			escapeMarkdownCell(n.Generated.Name),
			score,
			grade,
			escapeMarkdownCell(string(n.Generated.DistinctivenessCategory)),
			escapeMarkdownCell(domainLabel(n.Validation)),
			escapeMarkdownCell(summary),
		))
	}

	for _, n := range ranked {
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", escapeMarkdownCell(n.Generated.Name)))
		if n.Validation.Unverified() {
			sb.WriteString("> **Unverified**: a clearance provider was unavailable for this name.\n\n")
		}
		if rationale := strings.TrimSpace(n.Generated.Rationale); rationale != "" {
			sb.WriteString(fmt.Sprintf("**Rationale**: %s\n\n", rationale))
		}
		sb.WriteString(fmt.Sprintf("- Trademark: %s\n", trademarkLabel(n.Validation)))
		sb.WriteString(fmt.Sprintf("- Web: %s\n", webLabel(n.Validation)))
		sb.WriteString(fmt.Sprintf("- Domain: %s\n", domainLabel(n.Validation)))
		if n.Validation.Score != nil {
			sb.WriteString(fmt.Sprintf("\n%s\n", n.Validation.Score.Report))
		}
	}

	sb.WriteString(renderAnalysisSections(analysisSections(result), true))
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ReplaceAll(value, "|", "\\|")
}
