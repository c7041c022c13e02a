package output

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ccdaniele/name-finder/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatRun renders passed names ranked by score, followed by a run summary.
func (f *TableFormatter) FormatRun(result *core.RunResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Name", "Score", "Grade", "Type", "Domain", "Trademark", "Web", "Status"})

	for i, n := range Ranked(result.Passed) {
		score, grade := scoreLabel(n.Validation)
		t.AppendRow(table.Row{
			i + 1,
			n.Generated.Name,
			score,
			grade,
			string(n.Generated.DistinctivenessCategory),
			domainLabel(n.Validation),
			trademarkLabel(n.Validation),
			truncate(webLabel(n.Validation), 40),
			statusLabel(n.Validation),
		})
	}

	rendered := t.Render()
	rendered += renderAnalysisSections(analysisSections(result), false)
	return rendered, nil
}
