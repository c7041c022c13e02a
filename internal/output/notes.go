package output

import (
	"fmt"
	"strings"

	"github.com/ccdaniele/name-finder/internal/core"
)

const unverifiedMarker = "unverified"

func scoreLabel(v core.ValidationResult) (string, string) {
	if v.Score == nil {
		return "-", "-"
	}
	return fmt.Sprintf("%d", v.Score.Overall), string(v.Score.Grade)
}

func domainLabel(v core.ValidationResult) string {
	d := v.Domain
	switch {
	case d == nil || d.Skipped:
		return "skipped"
	case d.Available && d.Price != "":
		return fmt.Sprintf("Available (%s)", d.Price)
	case d.Available:
		return "Available"
	case d.Source == core.DomainSourceUnknown:
		return "Unknown"
	default:
		return "Taken"
	}
}

func trademarkLabel(v core.ValidationResult) string {
	tm := v.Trademark
	if tm == nil || tm.Skipped {
		return "skipped"
	}
	label := fmt.Sprintf("%s risk", tm.RiskLevel)
	if n := len(tm.Conflicts); n > 0 {
		label += fmt.Sprintf(", %d conflicts", n)
	}
	if tm.Unverified {
		label += " (" + unverifiedMarker + ")"
	}
	return label
}

func webLabel(v core.ValidationResult) string {
	web := v.WebSearch
	switch {
	case web == nil || web.Skipped:
		return "skipped"
	case web.Unverified:
		return unverifiedMarker
	case len(web.SimilarCompanies) > 0:
		return "similar: " + strings.Join(web.SimilarCompanies, ", ")
	case web.Passed:
		return "clear"
	default:
		return "conflict"
	}
}

func statusLabel(v core.ValidationResult) string {
	switch {
	case !v.OverallPass:
		return "failed"
	case v.Unverified():
		return "passed (" + unverifiedMarker + ")"
	case v.HasWarnings:
		return "passed (warnings)"
	default:
		return "passed"
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
