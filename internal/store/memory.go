package store

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-composer/pkg/schema"
)

// Memory keeps documents in process. Values are cloned on the way in and
// out so callers never share trees with the store.
type Memory struct {
	mu    sync.RWMutex
	pages map[string]schema.Page
	forms map[string]schema.Form
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		pages: make(map[string]schema.Page),
		forms: make(map[string]schema.Form),
	}
}

func (m *Memory) Page(_ context.Context, id string) (schema.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return schema.Page{}, ErrNotFound
	}
	return page.Clone(), nil
}

func (m *Memory) SavePage(_ context.Context, page schema.Page) error {
	if err := requireID("page", page.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.ID] = page.Clone()
	return nil
}

func (m *Memory) DeletePage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pages, id)
	return nil
}

func (m *Memory) Pages(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return keys(m.pages), nil
}

func (m *Memory) Form(_ context.Context, id string) (schema.Form, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	form, ok := m.forms[id]
	if !ok {
		return schema.Form{}, ErrNotFound
	}
	return form.Clone(), nil
}

func (m *Memory) SaveForm(_ context.Context, form schema.Form) error {
	if err := requireID("form", form.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms[form.ID] = form.Clone()
	return nil
}

func (m *Memory) Forms(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return keys(m.forms), nil
}

func (m *Memory) Close() error { return nil }

func keys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
