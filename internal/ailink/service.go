// Package ailink runs structured LLM completions. Prompts are embedded
// markdown definitions with YAML frontmatter; providers are resolved per
// prompt through a routing registry.
package ailink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/schema"
	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/ailink/driver"
	"github.com/ccdaniele/name-finder/internal/ailink/prompt"
	"github.com/ccdaniele/name-finder/internal/core/retry"
	"github.com/ccdaniele/name-finder/internal/metrics"
	"github.com/ccdaniele/name-finder/internal/observability"
)

const (
	defaultTimeout = 60 * time.Second
	maxTimeout     = 5 * time.Minute
)

// ErrNotConfigured is returned when no provider or prompt registry is set.
var ErrNotConfigured = errors.New("ailink not configured")

// Service renders prompts, calls the routed provider and decodes validated JSON.
type Service struct {
	Providers *Registry
	Prompts   prompt.Registry
	Retry     retry.Config
	Timeout   time.Duration
}

// NewService builds a service from cfg, loading prompt overrides from
// cfg.PromptsDir when set.
func NewService(cfg Config, retryCfg retry.Config) (*Service, error) {
	prompts, err := prompt.RegistryWithOverrides(strings.TrimSpace(cfg.PromptsDir))
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if err := prompt.Require(prompts, SlugPreferenceAnalysis, SlugNameGeneration, SlugNameReplacement, SlugWebAssessment, SlugScoreAdjustment); err != nil {
		return nil, err
	}
	return &Service{
		Providers: NewRegistry(cfg),
		Prompts:   prompts,
		Retry:     retryCfg,
		Timeout:   cfg.DefaultTimeout,
	}, nil
}

// Complete runs the prompt identified by slug with vars and decodes the
// reply into out. Replies are validated against the prompt's response schema
// before decoding.
func (s *Service) Complete(ctx context.Context, slug string, vars map[string]string, out any) error {
	return s.complete(ctx, slug, vars, func(def *prompt.Prompt, raw string) error {
		return decode(def, raw, out)
	})
}

// CompleteRaw runs the prompt and returns the reply's JSON without schema
// validation, for callers that recover partially valid output themselves.
func (s *Service) CompleteRaw(ctx context.Context, slug string, vars map[string]string) (json.RawMessage, error) {
	var payload json.RawMessage
	err := s.complete(ctx, slug, vars, func(_ *prompt.Prompt, raw string) error {
		extracted := []byte(extractJSON(raw))
		if !json.Valid(extracted) {
			return &ResponseError{Err: errors.New("reply is not valid JSON"), Raw: raw}
		}
		payload = json.RawMessage(extracted)
		return nil
	})
	return payload, err
}

func (s *Service) complete(ctx context.Context, slug string, vars map[string]string, handle func(def *prompt.Prompt, raw string) error) error {
	if s == nil || s.Providers == nil || s.Prompts == nil {
		return ErrNotConfigured
	}

	def, err := s.Prompts.Get(slug)
	if err != nil {
		return err
	}
	for _, required := range def.Config.Input.RequiredVariables {
		if val, ok := vars[required]; !ok || strings.TrimSpace(val) == "" {
			return fmt.Errorf("required variable %q not provided", required)
		}
	}

	system, user, err := render(def, vars)
	if err != nil {
		return err
	}

	resolved, err := s.Providers.Resolve(def.Config.Slug, def, "")
	if err != nil {
		return err
	}

	req := &driver.Request{
		Model:          resolved.Model,
		System:         system,
		Messages:       []driver.Message{{Role: "user", Content: user}},
		ResponseFormat: responseFormat(def),
		PromptSlug:     def.Config.Slug,
	}

	started := time.Now()
	raw, err := s.send(ctx, resolved.Driver, req)
	if err == nil {
		err = handle(def, raw)
	}

	code := "ok"
	if err != nil {
		code = ClassifyError(err).Code
		if logger := observability.Logger(); logger != nil {
			logger.Warn("LLM completion failed",
				zap.String("prompt", def.Config.Slug),
				zap.String("provider", resolved.ProviderID),
				zap.String("code", code),
				zap.Error(err))
		}
	}
	metrics.RecordCompletion(def.Config.Slug, resolved.ProviderID, code, time.Since(started))
	return err
}

func (s *Service) send(ctx context.Context, drv driver.Driver, req *driver.Request) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	timeout = min(timeout, maxTimeout)

	return retry.DoValue(ctx, s.Retry, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := drv.Complete(callCtx, req)
		if err != nil && req.ResponseFormat != nil && req.ResponseFormat.Type == "json_schema" && rejectsSchema(err) {
			// Some OpenAI-compatible endpoints lack structured output.
			req.ResponseFormat = &driver.ResponseFormat{Type: "json_object"}
			resp, err = drv.Complete(callCtx, req)
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(resp.Text) == "" {
			return "", errors.New("empty response content")
		}
		return resp.Text, nil
	})
}

func responseFormat(def *prompt.Prompt) *driver.ResponseFormat {
	if len(def.Config.ResponseSchema) == 0 {
		return &driver.ResponseFormat{Type: "json_object"}
	}
	name := strings.NewReplacer("-", "_", ".", "_").Replace(def.Config.Slug)
	return &driver.ResponseFormat{
		Type:       "json_schema",
		JSONSchema: &driver.JSONSchema{Name: name, Schema: def.Config.ResponseSchema},
	}
}

func rejectsSchema(err error) bool {
	var perr *driver.ProviderError
	if !errors.As(err, &perr) || perr.Status != 400 {
		return false
	}
	msg := strings.ToLower(perr.Message)
	return strings.Contains(msg, "json_schema") || strings.Contains(msg, "response_format")
}

func decode(def *prompt.Prompt, raw string, out any) error {
	payload := []byte(extractJSON(raw))
	if !json.Valid(payload) {
		return &ResponseError{Err: errors.New("reply is not valid JSON"), Raw: raw}
	}
	if err := validateResponse(def, payload); err != nil {
		return &ResponseError{Err: err, Raw: raw}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &ResponseError{Err: err, Raw: raw}
	}
	return nil
}

func validateResponse(def *prompt.Prompt, payload []byte) error {
	if len(def.Config.ResponseSchema) == 0 {
		return nil
	}
	schemaBytes, err := json.Marshal(def.Config.ResponseSchema)
	if err != nil {
		return fmt.Errorf("encode response schema: %w", err)
	}
	validator, err := schema.NewValidator(schemaBytes)
	if err != nil {
		return fmt.Errorf("compile response schema: %w", err)
	}
	diagnostics, err := validator.ValidateJSON(payload)
	if err != nil {
		return err
	}
	if len(diagnostics) > 0 {
		return fmt.Errorf("response schema validation failed: %s", diagnostics[0].Message)
	}
	return nil
}
