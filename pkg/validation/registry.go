package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrRegistryClosed is returned by Report after Close.
var ErrRegistryClosed = errors.New("validation: registry is closed")

// Entry is the registry's view of one field.
type Entry struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func (e Entry) clone() Entry {
	return Entry{Valid: e.Valid, Errors: slices.Clone(e.Errors)}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithScope overrides the generated scope id.
func WithScope(scope string) RegistryOption {
	return func(r *Registry) {
		if s := strings.TrimSpace(scope); s != "" {
			r.scope = s
		}
	}
}

// Registry maps field ids to their latest validation result.
type Registry struct {
	mu      sync.RWMutex
	scope   string
	entries map[string]Entry
	order   []string
	closed  bool
	logger  *slog.Logger
}

// NewRegistry creates an empty registry with a fresh scope id.
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{
		scope:   uuid.NewString(),
		entries: make(map[string]Entry),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Scope identifies the form instance that owns the registry.
func (r *Registry) Scope() string {
	return r.scope
}

// Report records the result for id. Messages are trimmed and deduplicated.
func (r *Registry) Report(id string, valid bool, messages []string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("validation: field id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%w: scope %s", ErrRegistryClosed, r.scope)
	}
	if _, exists := r.entries[id]; !exists {
		r.order = append(r.order, id)
	}
	r.entries[id] = Entry{Valid: valid, Errors: normalizeMessages(messages)}
	return nil
}

// Reporter writes only the entry for one field.
type Reporter func(valid bool, messages []string) error

// Reporter returns a Reporter bound to id.
func (r *Registry) Reporter(id string) Reporter {
	return func(valid bool, messages []string) error {
		return r.Report(id, valid, messages)
	}
}

// Entry returns the result recorded for id. Untouched fields are absent.
func (r *Registry) Entry(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[strings.TrimSpace(id)]
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

// Entries returns a copy of every recorded result.
func (r *Registry) Entries() map[string]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Entry, len(r.entries))
	for id, entry := range r.entries {
		out[id] = entry.clone()
	}
	return out
}

// IDs returns recorded ids in first-report order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Remove forgets id, for example when its field leaves the form.
func (r *Registry) Remove(id string) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
}

// ValidateAll reports whether every recorded entry is valid. Fields that
// never reported are not consulted, so an empty registry is valid. A closed
// registry is never valid.
func (r *Registry) ValidateAll() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	for _, entry := range r.entries {
		if !entry.Valid {
			return false
		}
	}
	return true
}

// Invalid returns the ids of invalid entries in first-report order.
func (r *Registry) Invalid() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, id := range r.order {
		if !r.entries[id].Valid {
			out = append(out, id)
		}
	}
	return out
}

// Close drops every entry and rejects further reports.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.entries = make(map[string]Entry)
	r.order = nil
	r.logger.Debug("validation registry closed", "scope", r.scope)
}

// Closed reports whether Close was called.
func (r *Registry) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// MergeMessages concatenates message lists, trimming whitespace and removing
// duplicates while preserving order.
func MergeMessages(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
