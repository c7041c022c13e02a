package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	prompts, err := LoadDefaults()
	require.NoError(t, err)
	require.Len(t, prompts, 5)

	reg, err := NewRegistry(prompts)
	require.NoError(t, err)

	for _, slug := range []string{"preference-analysis", "name-generation", "name-replacement", "web-assessment", "score-adjustment"} {
		p, err := reg.Get(slug)
		require.NoError(t, err, slug)
		require.NotEmpty(t, p.Config.SystemTemplate, slug)
		require.NotEmpty(t, p.Config.UserTemplate, slug)
		require.NotEmpty(t, p.Config.ResponseSchema, slug)
	}
}

func TestLoadUsesBodyAsSystemTemplate(t *testing.T) {
	p, err := Load("inline.md", []byte("---\nslug: inline\nuser_template: hi {{name}}\n---\nYou are helpful.\n"))
	require.NoError(t, err)
	require.Equal(t, "inline", p.Config.Slug)
	require.Equal(t, "You are helpful.", p.Config.SystemTemplate)
}

func TestLoadRejectsMissingSlug(t *testing.T) {
	_, err := Load("bad.md", []byte("---\nname: nothing\n---\nbody\n"))
	require.Error(t, err)
}

func TestLoadRejectsEmptyTemplate(t *testing.T) {
	_, err := Load("bad.md", []byte("---\nslug: empty\n---\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "system_template")
}

func TestRegistryWithOverrides(t *testing.T) {
	dir := t.TempDir()
	override := "---\nslug: web-assessment\nuser_template: \"{{name}}\"\n---\nCustom reviewer.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web-assessment.md"), []byte(override), 0o600))

	reg, err := RegistryWithOverrides(dir)
	require.NoError(t, err)

	p, err := reg.Get("web-assessment")
	require.NoError(t, err)
	require.Equal(t, "Custom reviewer.", p.Config.SystemTemplate)

	_, err = reg.Get("name-generation")
	require.NoError(t, err)
	require.Len(t, reg.Slugs(), 5)
}

func TestRegistryGetUnknownSlug(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	_, err = reg.Get("brand-story")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRequireNamesMissingSlugs(t *testing.T) {
	reg, err := NewRegistry([]*Prompt{{Config: Config{Slug: "name-generation", SystemTemplate: "x"}}})
	require.NoError(t, err)

	require.NoError(t, Require(reg, "name-generation"))
	err = Require(reg, "name-generation", "web-assessment", "score-adjustment")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "web-assessment, score-adjustment")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	p := &Prompt{Config: Config{Slug: "dup", SystemTemplate: "x"}}
	_, err := NewRegistry([]*Prompt{p, p})
	require.Error(t, err)
}
