package ailink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/ailink/prompt"
)

func TestApplyConditionals(t *testing.T) {
	tpl := "A{{#if x}}[{{x}}]{{else}}none{{/if}}B"
	require.Equal(t, "A[{{x}}]B", applyConditionals(tpl, map[string]string{"x": "1"}))
	require.Equal(t, "AnoneB", applyConditionals(tpl, map[string]string{"x": "  "}))
	require.Equal(t, "AnoneB", applyConditionals(tpl, nil))
}

func TestApplyConditionalsNested(t *testing.T) {
	tpl := "{{#if a}}a{{#if b}}b{{/if}}{{else}}z{{/if}}"
	require.Equal(t, "ab", applyConditionals(tpl, map[string]string{"a": "1", "b": "1"}))
	require.Equal(t, "a", applyConditionals(tpl, map[string]string{"a": "1"}))
	require.Equal(t, "z", applyConditionals(tpl, map[string]string{"b": "1"}))
}

func TestRenderSubstitutesVars(t *testing.T) {
	def := &prompt.Prompt{Config: prompt.Config{
		Slug:           "t",
		SystemTemplate: "You review {{kind}}.",
		UserTemplate:   "Name: {{name}}\n{{#if industry}}Industry: {{industry}}{{/if}}",
	}}
	system, user, err := render(def, map[string]string{"kind": "names", "name": "Zenvox"})
	require.NoError(t, err)
	require.Equal(t, "You review names.", system)
	require.Equal(t, "Name: Zenvox", user)
}

func TestExtractJSON(t *testing.T) {
	require.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, extractJSON(`Here you go: {"a":1} thanks`))
	require.Equal(t, `[1,2]`, extractJSON(" [1,2] "))
	require.Equal(t, "no json", extractJSON("no json"))
	require.Equal(t, `"[{\"name\":\"Zenvox\"}]"`, extractJSON(` "[{\"name\":\"Zenvox\"}]" `))
}
