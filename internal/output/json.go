package output

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ccdaniele/name-finder/internal/core"
)

// JSONFormatter renders the full run, failures included. Rationales and
// reports keep characters such as & and < unescaped.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) FormatRun(result *core.RunResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
