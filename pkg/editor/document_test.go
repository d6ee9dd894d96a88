package editor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/page"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/tree"
)

func samplePage() schema.Page {
	return schema.Page{
		ID: "home",
		Components: []schema.Node{
			{Type: "section", Children: []schema.Node{
				{Type: "text", Properties: schema.Properties{"text": "a"}},
				{Type: "row", Children: []schema.Node{
					{Type: "text", Properties: schema.Properties{"text": "b"}},
					{Type: "text", Properties: schema.Properties{"text": "c"}},
				}},
			}},
			{Type: "text", Properties: schema.Properties{"text": "d"}},
			{Type: "divider"},
		},
	}
}

func newDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := New(samplePage())
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestMoveBoundariesAreNoOps(t *testing.T) {
	doc := newDoc(t)
	before := doc.Page()
	gen := doc.Generation()

	for _, action := range []Action{
		{Kind: page.ActionMoveUp, Path: "root[0]", Generation: gen},
		{Kind: page.ActionMoveDown, Path: "root[2]", Generation: gen},
		{Kind: page.ActionMoveUp, Path: "root[0].children[0]", Generation: gen},
		{Kind: page.ActionMoveDown, Path: "root[0].children[1].children[1]", Generation: gen},
	} {
		res, err := doc.Apply(action)
		if err != nil {
			t.Fatalf("%s %s: unexpected error %v", action.Kind, action.Path, err)
		}
		if res.Changed || res.Generation != gen {
			t.Fatalf("%s %s: expected no-op, got %+v", action.Kind, action.Path, res)
		}
	}
	if diff := cmp.Diff(before, doc.Page()); diff != "" {
		t.Fatalf("tree changed (-want +got):\n%s", diff)
	}
}

func TestDeleteReducesCountBySubtreeSize(t *testing.T) {
	doc := newDoc(t)
	renderer, err := page.New(components.NewPageRegistry())
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	first, err := renderer.Render(doc.Page().Components, doc.RenderOptions(true, ""))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	before := len(markup.Components(first.Elements))

	if err := first.Dispatch(page.ActionDelete, "root[0].children[1]"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	second, err := renderer.Render(doc.Page().Components, doc.RenderOptions(true, ""))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	after := len(markup.Components(second.Elements))
	if before-after != 3 {
		t.Fatalf("expected 3 fewer components, got %d -> %d", before, after)
	}
	if second.Generation != first.Generation+1 {
		t.Fatalf("expected generation bump, got %d -> %d", first.Generation, second.Generation)
	}
}

func TestSecondActionFromSamePassIsStale(t *testing.T) {
	doc := newDoc(t)
	gen := doc.Generation()

	res, err := doc.Apply(Action{Kind: page.ActionDelete, Path: "root[0]", Generation: gen})
	if err != nil || !res.Changed || res.Removed != 5 {
		t.Fatalf("unexpected delete result %+v err %v", res, err)
	}

	_, err = doc.Apply(Action{Kind: page.ActionDelete, Path: "root[0]", Generation: gen})
	if !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("expected stale generation, got %v", err)
	}
	if got := schema.CountNodes(doc.Page().Components); got != 2 {
		t.Fatalf("expected stale delete to be ignored, %d nodes remain", got)
	}
}

func TestStaleCallbacksAreRejected(t *testing.T) {
	doc := newDoc(t)
	cb := doc.Callbacks(doc.Generation())

	cb.OnMoveDown("root[0]")
	cb.OnDelete("root[0]")

	p := doc.Page()
	if p.Components[0].Type != "text" || p.Components[1].Type != "section" {
		t.Fatalf("expected only the move to apply, got %s, %s", p.Components[0].Type, p.Components[1].Type)
	}
	if len(p.Components) != 3 {
		t.Fatalf("expected no delete, got %d top-level nodes", len(p.Components))
	}
}

func TestAddChildAndEdit(t *testing.T) {
	var changes []schema.Page
	doc, err := New(samplePage(), WithDefaultChild(schema.Node{Type: "heading", Properties: schema.Properties{"text": "New"}}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	doc.OnChange(func(p schema.Page) { changes = append(changes, p) })

	res, err := doc.Apply(Action{Kind: page.ActionAddChild, Path: "root[0].children[1]", Generation: doc.Generation()})
	if err != nil || !res.Changed {
		t.Fatalf("add child: %+v %v", res, err)
	}
	added, err := tree.Get(doc.Page().Components, "root[0].children[1].children[2]")
	if err != nil || added.Type != "heading" {
		t.Fatalf("expected appended heading, got %+v %v", added, err)
	}
	if doc.Selected() != "root[0].children[1]" {
		t.Fatalf("expected container selected, got %q", doc.Selected())
	}

	res, err = doc.Apply(Action{Kind: page.ActionEdit, Path: "root[1]", Generation: doc.Generation()})
	if err != nil || res.Changed {
		t.Fatalf("edit without properties should only select: %+v %v", res, err)
	}
	if doc.Selected() != "root[1]" {
		t.Fatalf("expected selection, got %q", doc.Selected())
	}

	res, err = doc.Apply(Action{Kind: page.ActionEdit, Path: "root[1]", Generation: doc.Generation(), Properties: schema.Properties{"text": "edited"}})
	if err != nil || !res.Changed {
		t.Fatalf("edit: %+v %v", res, err)
	}
	node, _ := tree.Get(doc.Page().Components, "root[1]")
	if node.Properties.String("text") != "edited" {
		t.Fatalf("expected edited text, got %v", node.Properties)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 change notifications, got %d", len(changes))
	}
}

func TestApplyErrors(t *testing.T) {
	doc := newDoc(t)
	gen := doc.Generation()

	if _, err := doc.Apply(Action{Kind: page.ActionDelete, Path: "root[7]", Generation: gen}); !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := doc.Apply(Action{Kind: page.ActionDelete, Path: "nope", Generation: gen}); !errors.Is(err, tree.ErrInvalidPath) {
		t.Fatalf("expected invalid path, got %v", err)
	}
	if _, err := doc.Apply(Action{Kind: "explode", Path: "root[0]", Generation: gen}); err == nil {
		t.Fatalf("expected unsupported action error")
	}
	if doc.Generation() != gen {
		t.Fatalf("failed actions must not bump the generation")
	}
}

func TestNewAssignsIDAndReplaceBumpsGeneration(t *testing.T) {
	doc, err := New(schema.Page{Components: []schema.Node{{Type: "text"}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if doc.ID() == "" {
		t.Fatalf("expected generated id")
	}
	gen := doc.Generation()
	if err := doc.Replace(samplePage()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if doc.Generation() != gen+1 || doc.Page().ID != doc.ID() {
		t.Fatalf("unexpected state after replace: gen %d id %s", doc.Generation(), doc.Page().ID)
	}
	if err := doc.Replace(schema.Page{Components: []schema.Node{{}}}); !errors.Is(err, schema.ErrMissingType) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
