package page

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/tree"
)

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(components.NewPageRegistry().Freeze(), opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func samplePage() []schema.Node {
	return []schema.Node{
		{Type: "section", Properties: schema.Properties{"title": "Welcome"}, Children: []schema.Node{
			{Type: "heading", Properties: schema.Properties{"text": "Hello", "level": 1}},
			{Type: "row", Children: []schema.Node{
				{Type: "text", Properties: schema.Properties{"text": "left"}},
				{Type: "button", Properties: schema.Properties{"label": "Go"}},
			}},
		}},
		{Type: "divider"},
	}
}

func actions(elements []*markup.Element) []*markup.Element {
	return markup.FindAll(elements, func(el *markup.Element) bool { return el.HasAttr("data-action") })
}

func TestRenderViewModeHasNoEditMarkup(t *testing.T) {
	r := newRenderer(t)
	nodes := samplePage()

	pass, err := r.Render(nodes, Options{Selected: "root[0]", Hovered: "root[0]"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got, want := len(markup.Components(pass.Elements)), schema.CountNodes(nodes); got != want {
		t.Fatalf("expected %d rendered components, got %d", want, got)
	}
	if got := len(actions(pass.Elements)); got != 0 {
		t.Fatalf("expected no edit affordances, got %d", got)
	}
	html := pass.HTML()
	for _, marker := range []string{"data-path", "composer-node", "data-selected", "data-hovered", "toolbar"} {
		if strings.Contains(html, marker) {
			t.Fatalf("view mode leaked %q: %s", marker, html)
		}
	}
	if pass.Bound(ActionDelete, "root[0]") {
		t.Fatalf("view mode must not bind actions")
	}
}

func TestRenderEditModeAffordances(t *testing.T) {
	r := newRenderer(t)
	nodes := samplePage()

	pass, err := r.Render(nodes, Options{Edit: true, Generation: 4, Selected: "root[0].children[1]"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	reg := r.Registry()
	tree.Walk(nodes, func(node schema.Node, path tree.Path) bool {
		wrappers := markup.FindAll(pass.Elements, func(el *markup.Element) bool {
			v, ok := el.Attr("data-path")
			return ok && v == path.String() && el.Tag == "div"
		})
		if len(wrappers) != 1 {
			t.Fatalf("expected one wrapper for %s, got %d", path, len(wrappers))
		}
		wrapper := wrappers[0]

		toolbar := wrapper.Children[0]
		var kinds []string
		for _, button := range toolbar.Children {
			v, _ := button.Attr("data-action")
			kinds = append(kinds, v)
		}
		want := []string{"move-up", "move-down", "edit", "delete"}
		if reg.IsContainer(node.Type) {
			want = append(want, "add-child")
		}
		if diff := cmp.Diff(want, kinds); diff != "" {
			t.Fatalf("affordances for %s (%s) mismatch (-want +got):\n%s", path, node.Type, diff)
		}

		selected, _ := wrapper.Attr("data-selected")
		if wantSel := path == "root[0].children[1]"; selected != map[bool]string{true: "true", false: "false"}[wantSel] {
			t.Fatalf("unexpected selection flag %q for %s", selected, path)
		}
		if gen, _ := wrapper.Attr("data-generation"); gen != "4" {
			t.Fatalf("expected generation 4, got %q", gen)
		}
		return true
	})

	if got, want := len(markup.Components(pass.Elements)), schema.CountNodes(nodes); got != want {
		t.Fatalf("expected %d components in edit mode, got %d", want, got)
	}
}

func TestRenderEditModeContainerPropertyOverRandomTrees(t *testing.T) {
	r := newRenderer(t)
	names := append(r.Registry().Names(), "Foo")
	rng := rand.New(rand.NewSource(7))

	var gen func(depth int) []schema.Node
	gen = func(depth int) []schema.Node {
		n := rng.Intn(4)
		nodes := make([]schema.Node, 0, n)
		for i := 0; i < n; i++ {
			node := schema.Node{Type: names[rng.Intn(len(names))], Properties: schema.Properties{"text": "x", "href": "/x", "label": "x"}}
			if depth < 3 {
				node.Children = gen(depth + 1)
			}
			nodes = append(nodes, node)
		}
		return nodes
	}

	for round := 0; round < 25; round++ {
		nodes := gen(0)

		view, err := r.Render(nodes, Options{})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if got, want := len(markup.Components(view.Elements)), schema.CountNodes(nodes); got != want {
			t.Fatalf("round %d: expected %d components, got %d", round, want, got)
		}
		if len(actions(view.Elements)) != 0 {
			t.Fatalf("round %d: view mode rendered affordances", round)
		}

		edit, err := r.Render(nodes, Options{Edit: true})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		addChild := markup.FindAll(edit.Elements, markup.WithAttr("data-action", string(ActionAddChild)))
		containers := 0
		tree.Walk(nodes, func(node schema.Node, _ tree.Path) bool {
			if r.Registry().IsContainer(node.Type) {
				containers++
			}
			return true
		})
		if len(addChild) != containers {
			t.Fatalf("round %d: expected %d add-child actions, got %d", round, containers, len(addChild))
		}
	}
}

func TestUnknownTypeRendersPlaceholderAndSiblings(t *testing.T) {
	r := newRenderer(t)
	nodes := []schema.Node{
		{Type: "text", Properties: schema.Properties{"text": "before"}},
		{Type: "Foo", Children: []schema.Node{{Type: "text", Properties: schema.Properties{"text": "inside"}}}},
		{Type: "text", Properties: schema.Properties{"text": "after"}},
	}

	pass, err := r.Render(nodes, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := pass.HTML()
	for _, fragment := range []string{"before", "Unknown component: Foo", `data-component="Foo"`, "inside", "after"} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected %q in %s", fragment, html)
		}
	}
}

func TestDispatchUsesCallbacksOfThisPass(t *testing.T) {
	r := newRenderer(t)
	nodes := samplePage()

	var got []string
	cb := Callbacks{
		OnEdit:     func(node schema.Node, path tree.Path) { got = append(got, "edit "+node.Type+" "+path.String()) },
		OnSelect:   func(node schema.Node, path tree.Path) { got = append(got, "select "+node.Type+" "+path.String()) },
		OnDelete:   func(path tree.Path) { got = append(got, "delete "+path.String()) },
		OnMoveUp:   func(path tree.Path) { got = append(got, "up "+path.String()) },
		OnMoveDown: func(path tree.Path) { got = append(got, "down "+path.String()) },
	}
	pass, err := r.Render(nodes, Options{Edit: true, Callbacks: cb})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	steps := []struct {
		kind ActionKind
		path tree.Path
	}{
		{ActionEdit, "root[0].children[0]"},
		{ActionAddChild, "root[0].children[1]"},
		{ActionDelete, "root[1]"},
		{ActionMoveUp, "root[0]"},
		{ActionMoveDown, "root[1]"},
	}
	for _, step := range steps {
		if err := pass.Dispatch(step.kind, step.path); err != nil {
			t.Fatalf("dispatch %s %s: %v", step.kind, step.path, err)
		}
	}
	want := []string{
		"edit heading root[0].children[0]",
		"select row root[0].children[1]",
		"delete root[1]",
		"up root[0]",
		"down root[1]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("callbacks mismatch (-want +got):\n%s", diff)
	}

	if err := pass.Dispatch(ActionAddChild, "root[1]"); !errors.Is(err, ErrUnboundAction) {
		t.Fatalf("expected leaf add-child to be unbound, got %v", err)
	}
	if err := pass.Dispatch(ActionDelete, "root[9]"); !errors.Is(err, ErrUnboundAction) {
		t.Fatalf("expected unknown path to be unbound, got %v", err)
	}
}

func TestCapabilitiesAreNotified(t *testing.T) {
	var toggles []bool
	var topics []string
	r := newRenderer(t,
		WithClassToggler(ClassTogglerFunc(func(class string, on bool) {
			if class == EditingClass {
				toggles = append(toggles, on)
			}
		})),
		WithEventBus(EventBusFunc(func(topic string, payload any) {
			topics = append(topics, topic)
		})),
	)

	pass, err := r.Render(samplePage(), Options{Edit: true, Callbacks: Callbacks{OnDelete: func(tree.Path) {}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := pass.Dispatch(ActionDelete, "root[0]"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := r.Render(samplePage(), Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	if diff := cmp.Diff([]bool{true, false}, toggles); diff != "" {
		t.Fatalf("toggles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{TopicRendered, TopicAction, TopicRendered}, topics); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestHoverTrackerInnermostWins(t *testing.T) {
	var h HoverTracker
	if _, ok := h.Active(); ok {
		t.Fatalf("expected no hover initially")
	}

	h.Enter("root[0]")
	h.Enter("root[0].children[1]")
	if got, _ := h.Active(); got != "root[0].children[1]" {
		t.Fatalf("expected nested wrapper to win, got %s", got)
	}

	h.Leave("root[0].children[1]")
	if got, _ := h.Active(); got != "root[0]" {
		t.Fatalf("expected ancestor after leaving child, got %s", got)
	}

	r := newRenderer(t)
	h.Enter("root[0].children[1]")
	active, _ := h.Active()
	pass, err := r.Render(samplePage(), Options{Edit: true, Hovered: active})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	hovered := markup.FindAll(pass.Elements, markup.WithAttr("data-hovered", "true"))
	if len(hovered) != 1 {
		t.Fatalf("expected exactly one hovered wrapper, got %d", len(hovered))
	}
	if v, _ := hovered[0].Attr("data-path"); v != "root[0].children[1]" {
		t.Fatalf("expected innermost wrapper hovered, got %s", v)
	}

	h.Reset()
	if _, ok := h.Active(); ok {
		t.Fatalf("expected reset to clear hover")
	}
}

func TestRenderDocumentAppliesTheme(t *testing.T) {
	selector := NewStaticSelector("acme", "")
	err := selector.Register(&theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens:    map[string]string{"brand": "#654321"},
				Templates: map[string]string{"page.heading": "page/link"},
			},
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	r := newRenderer(t, WithThemeSelector(selector, "acme", "dark"))
	root, _, err := r.RenderDocument(schema.Page{ID: "home", Title: "Home", Components: samplePage()}, Options{})
	if err != nil {
		t.Fatalf("render document: %v", err)
	}
	html := markup.String(root)
	for _, fragment := range []string{`data-page="home"`, `data-theme="acme"`, `data-theme-variant="dark"`, `style="--brand: #654321"`, `<h1 class="composer-page__title">Home</h1>`, `<a class="composer-link"`} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected %q in %s", fragment, html)
		}
	}

	bad := newRenderer(t, WithThemeSelector(selector, "acme", "missing"))
	if _, err := bad.Render(samplePage(), Options{}); err == nil {
		t.Fatalf("expected unknown variant to fail the pass")
	}
}

func TestThemeUnknownPartials(t *testing.T) {
	th := ThemeFromSelection(&theme.Selection{
		Theme: "acme",
		Manifest: &theme.Manifest{
			Name:      "acme",
			Templates: map[string]string{"page.heading": "page/link", "page.hero": "hero", "forms.input": "forms/input", "aside": "x"},
		},
	})
	if diff := cmp.Diff([]string{"aside", "page.hero"}, th.UnknownPartials()); diff != "" {
		t.Fatalf("unknown partials mismatch (-want +got):\n%s", diff)
	}
	if got := (Theme{}).UnknownPartials(); len(got) != 0 {
		t.Fatalf("expected no unknown partials, got %v", got)
	}
}
