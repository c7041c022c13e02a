package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/ccdaniele/name-finder/internal/ailink"
	"github.com/ccdaniele/name-finder/internal/core"
)

// ErrEmptyDescription is returned when there is nothing to analyze.
var ErrEmptyDescription = errors.New("description is required")

// Analyzer turns a free-form business description into a PreferenceSummary.
type Analyzer struct {
	LLM ailink.Completer
}

// Analyze runs the preference-analysis prompt. document is optional
// supporting text appended to the description.
func (a *Analyzer) Analyze(ctx context.Context, description, document string) (core.PreferenceSummary, error) {
	if a == nil || a.LLM == nil {
		return core.PreferenceSummary{}, ailink.ErrNotConfigured
	}
	description = strings.TrimSpace(description)
	document = strings.TrimSpace(document)
	if description == "" && document == "" {
		return core.PreferenceSummary{}, ErrEmptyDescription
	}
	if description == "" {
		description = "See the attached document."
	}

	var summary core.PreferenceSummary
	err := a.LLM.Complete(ctx, ailink.SlugPreferenceAnalysis, map[string]string{
		"user_text":        description,
		"document_content": document,
	}, &summary)
	if err != nil {
		return core.PreferenceSummary{}, err
	}
	return summary, nil
}
