package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ccdaniele/name-finder/internal/core"
)

type analysisSection struct {
	Title string
	Lines []string
}

func analysisSections(result *core.RunResult) []analysisSection {
	if result == nil {
		return nil
	}

	sections := make([]analysisSection, 0, 2)
	sections = append(sections, summarySection(result))
	if section, ok := failureSection(result); ok {
		sections = append(sections, section)
	}
	return sections
}

func summarySection(result *core.RunResult) analysisSection {
	lines := []string{
		fmt.Sprintf("Passed: %d of %d requested", len(result.Passed), result.Requested),
		fmt.Sprintf("Failed: %d", len(result.Failed)),
		fmt.Sprintf("Replacement rounds: %d", result.Rounds),
	}
	unverified := 0
	for _, n := range result.Passed {
		if n.Validation.Unverified() {
			unverified++
		}
	}
	if unverified > 0 {
		lines = append(lines, fmt.Sprintf("Unverified: %d (a provider was unavailable; re-check before filing)", unverified))
	}
	if result.Cancelled {
		lines = append(lines, "Run was cancelled before completion")
	}
	return analysisSection{Title: "Summary", Lines: lines}
}

func failureSection(result *core.RunResult) (analysisSection, bool) {
	if len(result.Failed) == 0 {
		return analysisSection{}, false
	}

	byStep := map[core.ValidationStep]int{}
	for _, f := range result.Failed {
		byStep[f.FailureStep]++
	}
	steps := make([]string, 0, len(byStep))
	for step := range byStep {
		steps = append(steps, string(step))
	}
	sort.Strings(steps)

	counts := make([]string, 0, len(steps))
	for _, step := range steps {
		counts = append(counts, fmt.Sprintf("%s=%d", step, byStep[core.ValidationStep(step)]))
	}

	lines := []string{"By step: " + strings.Join(counts, ", ")}
	for _, f := range result.Failed {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Generated.Name, f.FailureReason))
	}
	return analysisSection{Title: "Rejected Names", Lines: lines}, true
}

func renderAnalysisSections(sections []analysisSection, markdown bool) string {
	if len(sections) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, section := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		if markdown {
			sb.WriteString(fmt.Sprintf("\n\n### %s\n", section.Title))
			for _, line := range section.Lines {
				sb.WriteString(fmt.Sprintf("- %s\n", escapeMarkdownCell(line)))
			}
		} else {
			sb.WriteString(fmt.Sprintf("\n\n%s:\n", section.Title))
			for _, line := range section.Lines {
				sb.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}
	return sb.String()
}
