package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-composer/pkg/schema"
)

// ErrNotFound is returned when no document exists under an id.
var ErrNotFound = errors.New("store: not found")

// Store persists the page and form documents the host serves.
type Store interface {
	Page(ctx context.Context, id string) (schema.Page, error)
	SavePage(ctx context.Context, page schema.Page) error
	DeletePage(ctx context.Context, id string) error
	Pages(ctx context.Context) ([]string, error)

	Form(ctx context.Context, id string) (schema.Form, error)
	SaveForm(ctx context.Context, form schema.Form) error
	Forms(ctx context.Context) ([]string, error)

	Close() error
}

// Seed saves every document in bundle.
func Seed(ctx context.Context, s Store, bundle schema.Bundle) error {
	for _, id := range bundle.PageIDs() {
		if err := s.SavePage(ctx, bundle.Pages[id]); err != nil {
			return fmt.Errorf("store: seed page %s: %w", id, err)
		}
	}
	for _, id := range bundle.FormIDs() {
		if err := s.SaveForm(ctx, bundle.Forms[id]); err != nil {
			return fmt.Errorf("store: seed form %s: %w", id, err)
		}
	}
	return nil
}

func requireID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("store: %s id is required", kind)
	}
	return nil
}
