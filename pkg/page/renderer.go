package page

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/markup"
	rendertemplate "github.com/goliatone/go-composer/pkg/render/template"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/tree"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for soft failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTemplateRenderer replaces the embedded widget template engine.
func WithTemplateRenderer(tpl rendertemplate.TemplateRenderer) Option {
	return func(r *Renderer) {
		r.template = tpl
	}
}

// WithThemeSelector resolves partial overrides and tokens for every pass.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(r *Renderer) {
		r.selector = selector
		r.themeName = name
		r.themeVariant = variant
	}
}

// WithClassToggler injects the document-wide class capability.
func WithClassToggler(toggler ClassToggler) Option {
	return func(r *Renderer) {
		if toggler != nil {
			r.toggler = toggler
		}
	}
}

// WithEventBus injects the notification capability.
func WithEventBus(bus EventBus) Option {
	return func(r *Renderer) {
		if bus != nil {
			r.bus = bus
		}
	}
}

// Options control a single pass.
type Options struct {
	// Edit turns on the structural edit affordances. When false the output
	// carries no edit markup at all.
	Edit bool
	// Selected marks the wrapper whose path matches.
	Selected tree.Path
	// Hovered marks the wrapper showing the hover indicator, usually
	// HoverTracker.Active.
	Hovered tree.Path
	// Generation identifies the pass; the document owner uses it to reject
	// actions from an older render.
	Generation uint64
	Callbacks  Callbacks
}

// Renderer turns node trees into markup using a component registry.
type Renderer struct {
	registry *components.Registry
	template rendertemplate.TemplateRenderer
	logger   *slog.Logger

	selector     theme.ThemeSelector
	themeName    string
	themeVariant string

	toggler ClassToggler
	bus     EventBus
}

// New builds a Renderer. Without WithTemplateRenderer the embedded widget
// templates are used.
func New(registry *components.Registry, options ...Option) (*Renderer, error) {
	if registry == nil {
		return nil, errors.New("page: component registry is required")
	}
	r := &Renderer{
		registry: registry,
		logger:   slog.New(slog.DiscardHandler),
		toggler:  nopToggler{},
		bus:      nopBus{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.template == nil {
		engine, err := components.NewTemplateEngine()
		if err != nil {
			return nil, fmt.Errorf("page: %w", err)
		}
		r.template = engine
	}
	return r, nil
}

// Registry returns the component registry the renderer resolves against.
func (r *Renderer) Registry() *components.Registry {
	return r.registry
}

// Theme resolves the configured theme. It returns the zero Theme when no
// selector is configured.
func (r *Renderer) Theme() (Theme, error) {
	if r.selector == nil {
		return Theme{}, nil
	}
	selection, err := r.selector.Select(r.themeName, r.themeVariant)
	if err != nil {
		return Theme{}, fmt.Errorf("page: select theme: %w", err)
	}
	return ThemeFromSelection(selection), nil
}

// Render runs one pass over nodes. Unknown types and failing factories
// degrade to placeholders; only theme resolution can fail the pass.
func (r *Renderer) Render(nodes []schema.Node, opts Options) (*Pass, error) {
	th, err := r.Theme()
	if err != nil {
		return nil, err
	}
	if unknown := th.UnknownPartials(); len(unknown) > 0 {
		r.logger.Warn("theme overrides unknown partials", "theme", th.Name, "keys", unknown)
	}

	pass := &Pass{Generation: opts.Generation, bus: r.bus}
	state := &renderState{
		opts: opts,
		pass: pass,
		data: components.Data{
			Template: r.template,
			Partials: th.Partials,
			Tokens:   th.Tokens,
		},
	}
	pass.Elements = r.renderNodes(state, nodes, tree.Root)

	r.toggler.Toggle(EditingClass, opts.Edit)
	r.bus.Publish(TopicRendered, RenderedEvent{
		Generation: opts.Generation,
		Edit:       opts.Edit,
		Nodes:      schema.CountNodes(nodes),
	})
	return pass, nil
}

// RenderedEvent is published after every pass.
type RenderedEvent struct {
	Generation uint64
	Edit       bool
	Nodes      int
}

type renderState struct {
	opts Options
	pass *Pass
	data components.Data
}

func (r *Renderer) renderNodes(state *renderState, nodes []schema.Node, parent tree.Path) []*markup.Element {
	out := make([]*markup.Element, 0, len(nodes))
	for idx, node := range nodes {
		path := tree.Child(parent, idx)
		out = append(out, r.renderNode(state, node, path))
	}
	return out
}

func (r *Renderer) renderNode(state *renderState, node schema.Node, path tree.Path) *markup.Element {
	children := r.renderNodes(state, node.Children, path)

	entry, ok := r.registry.Resolve(node.Type)
	var el *markup.Element
	if !ok {
		r.logger.Warn("unknown component type", "type", node.Type, "path", path.String())
		el = placeholder(node.Type, path, "", children)
	} else {
		built, err := entry.Factory(node.Properties.Clone(), children, state.data)
		switch {
		case err != nil:
			r.logger.Error("component factory failed", "type", node.Type, "path", path.String(), "err", err)
			el = placeholder(node.Type, path, err.Error(), children)
		case built == nil:
			el = markup.Text("")
		default:
			el = built
		}
	}
	el.Component = node.Type

	if !state.opts.Edit {
		return el
	}
	return r.wrap(state, node, path, entry.Container, el)
}

// placeholder stands in for a node that could not be built. Children still
// render so a typo in one type does not hide the subtree.
func placeholder(typeName string, path tree.Path, reason string, children []*markup.Element) *markup.Element {
	message := "Unknown component: " + typeName
	if reason != "" {
		message = "Component " + typeName + " failed to render"
	}
	el := markup.El("div", markup.A(
		"class", "composer-placeholder",
		"role", "note",
		"data-component", typeName,
		"data-placeholder-path", path.String(),
	), markup.El("p", markup.A("class", "composer-placeholder__message"), markup.Text(message)))
	if reason != "" {
		el.SetAttr("data-error", reason)
	}
	return el.Append(children...)
}

func (r *Renderer) wrap(state *renderState, node schema.Node, path tree.Path, container bool, content *markup.Element) *markup.Element {
	opts := state.opts
	selected := opts.Selected != "" && path == opts.Selected
	hovered := opts.Hovered != "" && path == opts.Hovered

	wrapper := markup.El("div", markup.A(
		"data-path", path.String(),
		"data-component", node.Type,
		"data-generation", strconv.FormatUint(opts.Generation, 10),
		"data-selected", strconv.FormatBool(selected),
		"data-hovered", strconv.FormatBool(hovered),
		"tabindex", "0",
	))
	wrapper.AddClass("composer-node")
	if container {
		wrapper.AddClass("composer-node--container")
	}
	if selected {
		wrapper.AddClass("composer-node--selected")
		wrapper.SetAttr("aria-current", "true")
	}
	if hovered {
		wrapper.AddClass("composer-node--hovered")
	}

	toolbar := markup.El("div", markup.A("class", "composer-node__toolbar", "role", "toolbar", "aria-label", node.Type+" actions"))
	cb := opts.Callbacks
	snapshot := node.Clone()

	toolbar.Append(r.action(state, ActionMoveUp, path, "Move up", bindPath(cb.OnMoveUp, path)))
	toolbar.Append(r.action(state, ActionMoveDown, path, "Move down", bindPath(cb.OnMoveDown, path)))
	toolbar.Append(r.action(state, ActionEdit, path, "Edit", bindNode(cb.OnEdit, snapshot, path)))
	toolbar.Append(r.action(state, ActionDelete, path, "Delete", bindPath(cb.OnDelete, path)))
	if container {
		toolbar.Append(r.action(state, ActionAddChild, path, "Add child", bindNode(cb.OnSelect, snapshot, path)))
	}

	return wrapper.Append(toolbar, content)
}

func (r *Renderer) action(state *renderState, kind ActionKind, path tree.Path, label string, fn func()) *markup.Element {
	state.pass.bind(kind, path, fn)
	return markup.El("button", markup.A(
		"type", "button",
		"class", "composer-node__action composer-node__action--"+string(kind),
		"data-action", string(kind),
		"data-path", path.String(),
		"data-generation", strconv.FormatUint(state.opts.Generation, 10),
		"aria-label", label,
	), markup.Text(label))
}

func bindPath(fn func(tree.Path), path tree.Path) func() {
	if fn == nil {
		return nil
	}
	return func() { fn(path) }
}

func bindNode(fn func(schema.Node, tree.Path), node schema.Node, path tree.Path) func() {
	if fn == nil {
		return nil
	}
	return func() { fn(node.Clone(), path) }
}
