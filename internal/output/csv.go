package output

import (
	"strconv"
	"strings"

	"github.com/ccdaniele/name-finder/internal/core"
)

var csvHeaders = []string{
	"Name",
	"Score",
	"Grade",
	"Distinctiveness",
	"Domain Available",
	"Domain Price",
	"Rationale",
	"Trademark Conflicts",
	"Risk Level",
	"Report",
}

// CSVFormatter renders passed names as CSV in run order.
type CSVFormatter struct{}

// FormatRun implements Formatter.
func (f *CSVFormatter) FormatRun(result *core.RunResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return ExportCSV(result.Passed), nil
}

// ExportCSV renders one row per validated name. Lines are joined with "\n"
// and a field is quoted only when it contains a comma, quote or newline.
// Risk levels of fail-open trademark results carry an unverified marker.
func ExportCSV(names []core.ValidatedName) string {
	lines := make([]string, 0, len(names)+1)
	lines = append(lines, strings.Join(csvHeaders, ","))

	for _, n := range names {
		v := n.Validation

		score, grade := "0", ""
		report := ""
		if v.Score != nil {
			score = strconv.Itoa(v.Score.Overall)
			grade = string(v.Score.Grade)
			report = v.Score.Report
		}

		available, price := "No", "N/A"
		if v.Domain != nil && v.Domain.Available {
			available = "Yes"
		}
		if v.Domain != nil && v.Domain.Price != "" {
			price = v.Domain.Price
		}

		conflicts, risk := "0", ""
		if v.Trademark != nil {
			conflicts = strconv.Itoa(len(v.Trademark.Conflicts))
			risk = string(v.Trademark.RiskLevel)
			if v.Trademark.Unverified {
				risk += " (" + unverifiedMarker + ")"
			}
		}

		row := []string{
			n.Generated.Name,
			score,
			grade,
			string(n.Generated.DistinctivenessCategory),
			available,
			price,
			n.Generated.Rationale,
			conflicts,
			risk,
			report,
		}
		for i, field := range row {
			row[i] = EscapeCSVField(field)
		}
		lines = append(lines, strings.Join(row, ","))
	}

	return strings.Join(lines, "\n")
}

// EscapeCSVField wraps field in quotes, doubling inner quotes, when it
// contains a comma, quote or newline.
func EscapeCSVField(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
