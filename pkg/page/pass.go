package page

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/tree"
)

// ErrUnboundAction is returned by Dispatch when the pass holds no callback
// for the requested action and path.
var ErrUnboundAction = errors.New("page: action not bound in this pass")

// ActionKind names a toolbar affordance.
type ActionKind string

const (
	ActionMoveUp   ActionKind = "move-up"
	ActionMoveDown ActionKind = "move-down"
	ActionEdit     ActionKind = "edit"
	ActionDelete   ActionKind = "delete"
	ActionAddChild ActionKind = "add-child"
)

// ParseAction maps a data-action attribute value to an ActionKind.
func ParseAction(value string) (ActionKind, error) {
	switch kind := ActionKind(value); kind {
	case ActionMoveUp, ActionMoveDown, ActionEdit, ActionDelete, ActionAddChild:
		return kind, nil
	default:
		return "", fmt.Errorf("page: unknown action %q", value)
	}
}

// Callbacks are the structural edit hooks exposed to the document owner.
// Each receives the path computed during the pass that rendered the
// affordance.
type Callbacks struct {
	OnEdit     func(node schema.Node, path tree.Path)
	OnSelect   func(node schema.Node, path tree.Path)
	OnDelete   func(path tree.Path)
	OnMoveUp   func(path tree.Path)
	OnMoveDown func(path tree.Path)
}

// ActionEvent is published on the EventBus for every dispatched action.
type ActionEvent struct {
	Generation uint64
	Kind       ActionKind
	Path       tree.Path
}

type binding struct {
	kind ActionKind
	path tree.Path
}

// Pass is the result of one Render call.
type Pass struct {
	Generation uint64
	Elements   []*markup.Element

	bindings map[binding]func()
	bus      EventBus
}

// Dispatch invokes the callback bound to kind at path during this pass.
func (p *Pass) Dispatch(kind ActionKind, path tree.Path) error {
	if p == nil {
		return ErrUnboundAction
	}
	fn, ok := p.bindings[binding{kind: kind, path: path}]
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrUnboundAction, kind, path)
	}
	fn()
	if p.bus != nil {
		p.bus.Publish(TopicAction, ActionEvent{Generation: p.Generation, Kind: kind, Path: path})
	}
	return nil
}

// Bound reports whether kind at path can be dispatched.
func (p *Pass) Bound(kind ActionKind, path tree.Path) bool {
	if p == nil {
		return false
	}
	_, ok := p.bindings[binding{kind: kind, path: path}]
	return ok
}

// HTML serialises the pass elements.
func (p *Pass) HTML() string {
	if p == nil {
		return ""
	}
	return markup.String(p.Elements...)
}

func (p *Pass) bind(kind ActionKind, path tree.Path, fn func()) {
	if fn == nil {
		return
	}
	if p.bindings == nil {
		p.bindings = make(map[binding]func())
	}
	p.bindings[binding{kind: kind, path: path}] = fn
}
