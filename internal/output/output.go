package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ccdaniele/name-finder/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Formatter renders run results.
type Formatter interface {
	FormatRun(result *core.RunResult) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	case string(FormatCSV):
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TableFormatter{}
	}
}

// Ranked returns the passed names sorted by overall score, highest first.
// Ties keep their run order.
func Ranked(names []core.ValidatedName) []core.ValidatedName {
	sorted := make([]core.ValidatedName, len(names))
	copy(sorted, names)
	sort.SliceStable(sorted, func(i, j int) bool {
		return overall(sorted[i].Validation) > overall(sorted[j].Validation)
	})
	return sorted
}

func overall(v core.ValidationResult) int {
	if v.Score == nil {
		return 0
	}
	return v.Score.Overall
}
