// Package generator produces brand name candidates and naming profiles with
// an LLM.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/ailink"
	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/observability"
)

// RawCompleter returns the JSON reply of a prompt without schema enforcement.
// *ailink.Service implements it.
type RawCompleter interface {
	CompleteRaw(ctx context.Context, slug string, vars map[string]string) (json.RawMessage, error)
}

// ErrMalformedOutput is returned when a reply has no recognizable name list.
var ErrMalformedOutput = errors.New("generator returned no name list")

// Generator implements engine.Generator over the name-generation and
// name-replacement prompts.
type Generator struct {
	LLM RawCompleter
}

// Generate returns at most req.Count candidates. Entries that fail to decode
// are dropped individually; names are deduplicated case-insensitively and
// excluded names are never returned.
func (g *Generator) Generate(ctx context.Context, req core.GenerateRequest) ([]core.GeneratedName, error) {
	if g == nil || g.LLM == nil {
		return nil, ailink.ErrNotConfigured
	}
	if req.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", req.Count)
	}

	vars, err := promptVars(req)
	if err != nil {
		return nil, err
	}
	slug := ailink.SlugNameGeneration
	if req.IsReplacement {
		slug = ailink.SlugNameReplacement
	}

	raw, err := g.LLM.CompleteRaw(ctx, slug, vars)
	if err != nil {
		return nil, err
	}

	entries, err := nameEntries(raw)
	if err != nil {
		return nil, err
	}
	names, dropped := admit(entries, req.ExcludedNames, req.Count)
	if dropped > 0 {
		if logger := observability.Logger(); logger != nil {
			logger.Debug("Dropped generated entries",
				zap.String("prompt", slug),
				zap.Int("dropped", dropped),
				zap.Int("kept", len(names)))
		}
	}
	return names, nil
}

func promptVars(req core.GenerateRequest) (map[string]string, error) {
	profile, err := json.MarshalIndent(req.Profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	vars := map[string]string{
		"count":        strconv.Itoa(req.Count),
		"profile_json": string(profile),
		"insights":     strings.TrimSpace(req.Insights),
	}
	excluded := strings.Join(req.ExcludedNames, ", ")
	if !req.IsReplacement {
		vars["excluded_names"] = excluded
		return vars, nil
	}

	vars["existing_names"] = excluded
	lines := make([]string, 0, len(req.FailedFeedback))
	for _, f := range req.FailedFeedback {
		lines = append(lines, fmt.Sprintf("- \"%s\": %s", f.Name, f.Reason))
	}
	vars["failed_names"] = strings.Join(lines, "\n")
	if len(lines) == 0 {
		vars["failed_names"] = "- none"
	}
	return vars, nil
}

// nameEntries accepts {"names": [...]} or a bare array. Either the list or
// the whole reply may arrive as a JSON-encoded string; it is decoded once
// more and read again.
func nameEntries(raw json.RawMessage) ([]json.RawMessage, error) {
	return readNameEntries(raw, 1)
}

func readNameEntries(raw json.RawMessage, unwrap int) ([]json.RawMessage, error) {
	var bare []json.RawMessage
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Names json.RawMessage `json:"names"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Names) > 0 && string(wrapped.Names) != "null" {
		raw = wrapped.Names
		if err := json.Unmarshal(raw, &bare); err == nil {
			return bare, nil
		}
	}

	var encoded string
	if unwrap > 0 && json.Unmarshal(raw, &encoded) == nil {
		return readNameEntries(json.RawMessage(strings.TrimSpace(encoded)), unwrap-1)
	}
	return nil, ErrMalformedOutput
}

func admit(entries []json.RawMessage, excluded []string, limit int) ([]core.GeneratedName, int) {
	skip := make(map[string]struct{}, len(excluded)+len(entries))
	for _, name := range excluded {
		skip[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	out := make([]core.GeneratedName, 0, min(len(entries), limit))
	dropped := 0
	for _, entry := range entries {
		if len(out) == limit {
			break
		}
		name, ok := decodeEntry(entry)
		if !ok {
			dropped++
			continue
		}
		key := strings.ToLower(name.Name)
		if _, seen := skip[key]; seen {
			dropped++
			continue
		}
		skip[key] = struct{}{}
		out = append(out, name)
	}
	return out, dropped
}

func decodeEntry(entry json.RawMessage) (core.GeneratedName, bool) {
	var name core.GeneratedName
	if err := json.Unmarshal(entry, &name); err != nil {
		return core.GeneratedName{}, false
	}
	name.Name = cleanName(name.Name)
	if name.Name == "" {
		return core.GeneratedName{}, false
	}
	if strings.TrimSpace(string(name.DistinctivenessCategory)) == "" {
		return core.GeneratedName{}, false
	}
	category, err := core.ParseDistinctivenessCategory(string(name.DistinctivenessCategory))
	if err != nil {
		return core.GeneratedName{}, false
	}
	name.DistinctivenessCategory = category
	return name, true
}

func cleanName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.Trim(name, `"'.,;:!?`)
	return strings.TrimSpace(name)
}
