// Package editor owns the authoritative page tree while it is being edited.
//
// A Document hands out callbacks bound to the generation of the pass that
// rendered them. Applying an action bumps the generation whenever the tree
// changes, so a second action captured from the same pass is rejected rather
// than applied to a shifted sibling.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-composer/pkg/page"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/tree"
)

// ErrStaleGeneration is returned when an action was derived from a render
// pass older than the current tree.
var ErrStaleGeneration = errors.New("editor: action belongs to a stale render pass")

// Action is a structural edit requested through a toolbar affordance.
type Action struct {
	Kind       page.ActionKind
	Path       tree.Path
	Generation uint64
	// Node is inserted by add-child; Properties replace the target's by edit.
	Node       *schema.Node
	Properties schema.Properties
}

// Result describes what Apply did.
type Result struct {
	Changed    bool
	Generation uint64
	Removed    int
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the document logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDefaultChild sets the node appended by add-child when the action does
// not carry one.
func WithDefaultChild(node schema.Node) Option {
	return func(d *Document) {
		d.defaultChild = node.Clone()
	}
}

// Document is the document owner for one page.
type Document struct {
	mu sync.Mutex

	id           string
	page         schema.Page
	generation   uint64
	selected     tree.Path
	defaultChild schema.Node
	logger       *slog.Logger
	onChange     []func(schema.Page)
}

// New validates p and takes a private copy of it. Pages without an id get a
// random one.
func New(p schema.Page, options ...Option) (*Document, error) {
	if err := schema.ValidatePage(p); err != nil {
		return nil, err
	}
	doc := &Document{
		page:         p.Clone(),
		generation:   1,
		defaultChild: schema.Node{Type: "text", Properties: schema.Properties{"text": "New text"}},
		logger:       slog.New(slog.DiscardHandler),
	}
	if strings.TrimSpace(doc.page.ID) == "" {
		doc.page.ID = uuid.NewString()
	}
	doc.id = doc.page.ID
	for _, opt := range options {
		if opt != nil {
			opt(doc)
		}
	}
	return doc, nil
}

// ID returns the page id.
func (d *Document) ID() string {
	return d.id
}

// Page returns a copy of the current tree.
func (d *Document) Page() schema.Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page.Clone()
}

// Generation returns the current render generation.
func (d *Document) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// Selected returns the path last chosen through edit or add-child. It is
// cleared whenever the tree changes.
func (d *Document) Selected() tree.Path {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected
}

// OnChange registers fn to receive the new tree after every change.
func (d *Document) OnChange(fn func(schema.Page)) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	d.onChange = append(d.onChange, fn)
	d.mu.Unlock()
}

// Replace swaps the whole tree, for example after the schema was edited as
// text. The generation is bumped so outstanding actions become stale.
func (d *Document) Replace(p schema.Page) error {
	if err := schema.ValidatePage(p); err != nil {
		return err
	}
	d.mu.Lock()
	p = p.Clone()
	p.ID = d.id
	d.page = p
	d.generation++
	d.selected = ""
	listeners := append([]func(schema.Page){}, d.onChange...)
	snapshot := d.page.Clone()
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
	return nil
}

// RenderOptions returns page options for the current generation with
// callbacks wired back into Apply. Errors from those callbacks are logged
// since the renderer's hooks cannot return them; use Apply directly to see
// them.
func (d *Document) RenderOptions(edit bool, hovered tree.Path) page.Options {
	d.mu.Lock()
	generation := d.generation
	selected := d.selected
	d.mu.Unlock()

	return page.Options{
		Edit:       edit,
		Selected:   selected,
		Hovered:    hovered,
		Generation: generation,
		Callbacks:  d.Callbacks(generation),
	}
}

// Callbacks returns page callbacks bound to generation.
func (d *Document) Callbacks(generation uint64) page.Callbacks {
	apply := func(action Action) {
		action.Generation = generation
		if _, err := d.Apply(action); err != nil {
			d.logger.Warn("editor action rejected", "kind", string(action.Kind), "path", action.Path.String(), "err", err)
		}
	}
	return page.Callbacks{
		OnEdit: func(_ schema.Node, path tree.Path) {
			apply(Action{Kind: page.ActionEdit, Path: path})
		},
		OnSelect: func(_ schema.Node, path tree.Path) {
			apply(Action{Kind: page.ActionAddChild, Path: path})
		},
		OnDelete: func(path tree.Path) {
			apply(Action{Kind: page.ActionDelete, Path: path})
		},
		OnMoveUp: func(path tree.Path) {
			apply(Action{Kind: page.ActionMoveUp, Path: path})
		},
		OnMoveDown: func(path tree.Path) {
			apply(Action{Kind: page.ActionMoveDown, Path: path})
		},
	}
}

// Apply performs action against the current tree. Out-of-range moves succeed
// without changing anything. Edit without properties only selects the node.
func (d *Document) Apply(action Action) (Result, error) {
	d.mu.Lock()

	if action.Generation != d.generation {
		current := d.generation
		d.mu.Unlock()
		return Result{Generation: current}, fmt.Errorf("%w: got %d, current %d", ErrStaleGeneration, action.Generation, current)
	}

	nodes := d.page.Components
	var (
		next    []schema.Node
		changed bool
		removed int
		err     error
	)

	switch action.Kind {
	case page.ActionDelete:
		removed, err = tree.SubtreeSize(nodes, action.Path)
		if err == nil {
			next, err = tree.Delete(nodes, action.Path)
			changed = err == nil
		}
	case page.ActionMoveUp:
		next, changed, err = tree.MoveUp(nodes, action.Path)
	case page.ActionMoveDown:
		next, changed, err = tree.MoveDown(nodes, action.Path)
	case page.ActionAddChild:
		child := d.defaultChild
		if action.Node != nil {
			child = *action.Node
		}
		if err = schema.ValidateNodes([]schema.Node{child}); err == nil {
			next, err = tree.AppendChild(nodes, action.Path, child.Clone())
			changed = err == nil
		}
	case page.ActionEdit:
		if _, err = tree.Get(nodes, action.Path); err == nil {
			d.selected = action.Path
			if action.Properties != nil {
				next, err = tree.SetProperties(nodes, action.Path, action.Properties)
				changed = err == nil
			}
		}
	default:
		err = fmt.Errorf("editor: unsupported action %q", action.Kind)
	}

	if err != nil {
		current := d.generation
		d.mu.Unlock()
		return Result{Generation: current}, err
	}
	if !changed {
		current := d.generation
		d.mu.Unlock()
		d.logger.Debug("editor action left tree unchanged", "kind", string(action.Kind), "path", action.Path.String())
		return Result{Generation: current}, nil
	}

	d.page.Components = next
	d.generation++
	if action.Kind != page.ActionEdit {
		d.selected = ""
	}
	if action.Kind == page.ActionAddChild {
		d.selected = action.Path
	}
	result := Result{Changed: true, Generation: d.generation, Removed: removed}
	listeners := append([]func(schema.Page){}, d.onChange...)
	snapshot := d.page.Clone()
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
	return result, nil
}
