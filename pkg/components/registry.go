package components

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-composer/pkg/markup"
	rendertemplate "github.com/goliatone/go-composer/pkg/render/template"
	"github.com/goliatone/go-composer/pkg/schema"
)

// ErrFrozen is returned when registering on a registry after Freeze.
var ErrFrozen = errors.New("components: registry is frozen")

// Factory builds the element for one node. children holds the already
// rendered children in schema order; factories decide where they go.
type Factory func(props schema.Properties, children []*markup.Element, data Data) (*markup.Element, error)

// Data carries the collaborators a factory may use.
type Data struct {
	Template rendertemplate.TemplateRenderer
	// Partials maps partial keys (for example "page.heading") to template
	// names that replace the built-in template.
	Partials map[string]string
	// Tokens are the active theme's design tokens.
	Tokens map[string]string
}

// Entry is a registered component.
type Entry struct {
	Name    string
	Factory Factory
	// Container marks types that accept appended children in the editor.
	// Non-container nodes that already have children still render them.
	Container bool
}

// Registry tracks component entries keyed by type name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	frozen  bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Clone returns an unfrozen copy so callers can extend a shared registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, entry := range r.entries {
		cloned.entries[name] = cloneEntry(entry)
	}
	return cloned
}

// Register associates entry with name. Existing entries are replaced until
// the registry is frozen.
func (r *Registry) Register(name string, entry Entry) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if entry.Factory == nil {
		return fmt.Errorf("components: factory for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrFrozen, name)
	}
	entry.Name = name
	r.entries[name] = cloneEntry(entry)
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(name string, entry Entry) {
	if err := r.Register(name, entry); err != nil {
		panic(err)
	}
}

// Freeze makes the registry read-only and returns it.
func (r *Registry) Freeze() *Registry {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
	return r
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Resolve fetches the entry for name. A missing entry is not an error; the
// caller decides how to degrade.
func (r *Registry) Resolve(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[normalize(name)]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(entry), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Resolve(name)
	return ok
}

// IsContainer reports whether name is registered as container capable.
func (r *Registry) IsContainer(name string) bool {
	entry, ok := r.Resolve(name)
	return ok && entry.Container
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func cloneEntry(src Entry) Entry {
	return Entry{
		Name:      src.Name,
		Factory:   src.Factory,
		Container: src.Container,
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
