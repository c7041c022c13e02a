package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned for a slug with no loaded prompt.
var ErrNotFound = errors.New("prompt not found")

// Registry resolves prompts by slug.
type Registry interface {
	Get(slug string) (*Prompt, error)
	Slugs() []string
}

type slugRegistry map[string]*Prompt

// NewRegistry indexes prompts by slug. Slugs must be unique.
func NewRegistry(prompts []*Prompt) (Registry, error) {
	reg := make(slugRegistry, len(prompts))
	for _, p := range prompts {
		if p == nil {
			continue
		}
		slug := strings.TrimSpace(p.Config.Slug)
		if slug == "" {
			return nil, errors.New("prompt missing slug")
		}
		if _, dup := reg[slug]; dup {
			return nil, fmt.Errorf("duplicate prompt slug: %s", slug)
		}
		reg[slug] = p
	}
	return reg, nil
}

func (r slugRegistry) Get(slug string) (*Prompt, error) {
	p, ok := r[strings.TrimSpace(slug)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	return p, nil
}

func (r slugRegistry) Slugs() []string {
	slugs := make([]string, 0, len(r))
	for slug := range r {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Require fails when any of slugs is missing from reg, naming all of them.
func Require(reg Registry, slugs ...string) error {
	var missing []string
	for _, slug := range slugs {
		if _, err := reg.Get(slug); err != nil {
			missing = append(missing, slug)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, strings.Join(missing, ", "))
	}
	return nil
}
