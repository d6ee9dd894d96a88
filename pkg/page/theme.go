package page

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-composer/pkg/components"
)

// Theme is the resolved look for one pass: template overrides keyed by
// partial name and design tokens.
type Theme struct {
	Name     string
	Variant  string
	Partials map[string]string
	Tokens   map[string]string
}

// CSSVars derives custom properties from the tokens: "brand" becomes
// "--brand".
func (t Theme) CSSVars() map[string]string {
	if len(t.Tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(t.Tokens))
	for key, value := range t.Tokens {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !strings.HasPrefix(key, "--") {
			key = "--" + key
		}
		out[key] = value
	}
	return out
}

// Style renders CSSVars as an inline style declaration, sorted by name.
func (t Theme) Style() string {
	vars := t.CSSVars()
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}

// UnknownPartials lists override keys no built-in widget reads, sorted.
func (t Theme) UnknownPartials() []string {
	known := components.PartialKeys()
	var out []string
	for key := range t.Partials {
		if _, ok := known[key]; !ok {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}

// ThemeFromSelection merges the manifest with the selected variant. Variant
// tokens and templates win over the base manifest.
func ThemeFromSelection(selection *theme.Selection) Theme {
	if selection == nil {
		return Theme{}
	}
	out := Theme{
		Name:    selection.Theme,
		Variant: selection.Variant,
	}
	manifest := selection.Manifest
	if manifest == nil {
		return out
	}
	out.Partials = mergeStrings(out.Partials, manifest.Templates)
	out.Tokens = mergeStrings(out.Tokens, manifest.Tokens)
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		out.Partials = mergeStrings(out.Partials, variant.Templates)
		out.Tokens = mergeStrings(out.Tokens, variant.Tokens)
	}
	return out
}

// StaticSelector serves manifests registered in process. It satisfies
// theme.ThemeSelector for hosts that configure themes from files.
type StaticSelector struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector creates a selector with fallbacks used when Select is
// called with empty names.
func NewStaticSelector(defaultTheme, defaultVariant string) *StaticSelector {
	return &StaticSelector{
		manifests:      make(map[string]*theme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
}

// Register adds or replaces a manifest keyed by its name.
func (s *StaticSelector) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return fmt.Errorf("page: theme manifest name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[strings.TrimSpace(manifest.Name)] = manifest
	return nil
}

// Select resolves name and variant, applying the defaults. An unknown
// variant is an error; an empty variant selects the base manifest.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}

	s.mu.RLock()
	manifest, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("page: theme %q not registered", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("page: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

func mergeStrings(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
