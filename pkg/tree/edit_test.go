package tree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-composer/pkg/schema"
)

func sampleTree() []schema.Node {
	return []schema.Node{
		{Type: "section", Properties: schema.Properties{"title": "A"}, Children: []schema.Node{
			{Type: "heading", Properties: schema.Properties{"text": "A1"}},
			{Type: "row", Children: []schema.Node{
				{Type: "text", Properties: schema.Properties{"text": "A2a"}},
				{Type: "text", Properties: schema.Properties{"text": "A2b"}},
			}},
			{Type: "image", Properties: schema.Properties{"src": "/a3.png"}},
		}},
		{Type: "text", Properties: schema.Properties{"text": "B"}},
		{Type: "divider"},
	}
}

func TestParseAndFormatRoundTrip(t *testing.T) {
	cases := []struct {
		path    Path
		indices []int
	}{
		{path: Root, indices: nil},
		{path: "root[0]", indices: []int{0}},
		{path: "root[0].children[2]", indices: []int{0, 2}},
		{path: "root[3].children[2].children[1]", indices: []int{3, 2, 1}},
		{path: "root[10].children[0]", indices: []int{10, 0}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.path)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.path, err)
		}
		if diff := cmp.Diff(tc.indices, got); diff != "" {
			t.Fatalf("indices mismatch for %q (-want +got):\n%s", tc.path, diff)
		}
		if formatted := Format(tc.indices); formatted != tc.path {
			t.Fatalf("expected format %q, got %q", tc.path, formatted)
		}
	}
}

func TestParseRejectsMalformedPaths(t *testing.T) {
	for _, raw := range []Path{"", "node[0]", "root[", "root[-1]", "root[a]", "root[0]children[1]", "root[0].kids[1]", "root[0]x", "root[+1]", "root[01]", "root[0].children[00]", "root[ 1]", "root[]", "root[99999999999999999999]"} {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("expected ErrInvalidPath for %q, got %v", raw, err)
		}
	}
}

func TestPathParentAndIndex(t *testing.T) {
	path := Path("root[0].children[1].children[0]")
	parent, err := path.Parent()
	if err != nil {
		t.Fatalf("parent: %v", err)
	}
	if parent != "root[0].children[1]" {
		t.Fatalf("unexpected parent %q", parent)
	}
	index, err := path.Index()
	if err != nil || index != 0 {
		t.Fatalf("expected index 0, got %d (%v)", index, err)
	}
	top, _ := Path("root[2]").Parent()
	if top != Root {
		t.Fatalf("expected top-level parent to be root, got %q", top)
	}
}

func TestMoveBoundariesAreNoOps(t *testing.T) {
	nodes := sampleTree()

	out, moved, err := MoveUp(nodes, "root[0]")
	if err != nil {
		t.Fatalf("move up: %v", err)
	}
	if moved {
		t.Fatalf("expected move up at index 0 to be a no-op")
	}
	if diff := cmp.Diff(nodes, out); diff != "" {
		t.Fatalf("tree changed on no-op move (-want +got):\n%s", diff)
	}

	out, moved, err = MoveDown(nodes, "root[0].children[2]")
	if err != nil {
		t.Fatalf("move down: %v", err)
	}
	if moved {
		t.Fatalf("expected move down at last index to be a no-op")
	}
	if diff := cmp.Diff(nodes, out); diff != "" {
		t.Fatalf("tree changed on no-op move (-want +got):\n%s", diff)
	}
}

func TestMoveSwapsSiblingsWithoutMutatingInput(t *testing.T) {
	nodes := sampleTree()
	before := schema.CloneNodes(nodes)

	out, moved, err := MoveDown(nodes, "root[0].children[1].children[0]")
	if err != nil || !moved {
		t.Fatalf("expected move, got moved=%v err=%v", moved, err)
	}
	row := out[0].Children[1]
	if row.Children[0].Properties.String("text") != "A2b" || row.Children[1].Properties.String("text") != "A2a" {
		t.Fatalf("expected swapped children, got %+v", row.Children)
	}
	if diff := cmp.Diff(before, nodes); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}

	out, moved, err = MoveUp(nodes, "root[1]")
	if err != nil || !moved {
		t.Fatalf("expected top-level move, got moved=%v err=%v", moved, err)
	}
	if out[0].Type != "text" || out[1].Type != "section" {
		t.Fatalf("expected top-level swap, got %q,%q", out[0].Type, out[1].Type)
	}
}

func TestDeleteRemovesWholeSubtree(t *testing.T) {
	nodes := sampleTree()
	size, err := SubtreeSize(nodes, "root[0].children[1]")
	if err != nil {
		t.Fatalf("subtree size: %v", err)
	}
	if size != 3 {
		t.Fatalf("expected subtree size 3, got %d", size)
	}

	out, err := Delete(nodes, "root[0].children[1]")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, want := schema.CountNodes(out), schema.CountNodes(nodes)-size; got != want {
		t.Fatalf("expected %d nodes after delete, got %d", want, got)
	}
	if schema.CountNodes(nodes) != 8 {
		t.Fatalf("expected input untouched")
	}
}

func TestStalePathAddressesShiftedNode(t *testing.T) {
	nodes := sampleTree()
	stale := Path("root[2]")

	out, err := Delete(nodes, "root[0]")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := Get(out, stale); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected stale path to miss after delete, got %v", err)
	}
}

func TestAppendInsertAndSetProperties(t *testing.T) {
	nodes := sampleTree()

	out, err := AppendChild(nodes, "root[0].children[1]", schema.Node{Type: "text", Properties: schema.Properties{"text": "new"}})
	if err != nil {
		t.Fatalf("append child: %v", err)
	}
	if got := len(out[0].Children[1].Children); got != 3 {
		t.Fatalf("expected 3 children after append, got %d", got)
	}
	if len(nodes[0].Children[1].Children) != 2 {
		t.Fatalf("append mutated input")
	}

	out, err = AppendChild(nodes, Root, schema.Node{Type: "spacer"})
	if err != nil || len(out) != 4 || out[3].Type != "spacer" {
		t.Fatalf("expected top-level append, got len=%d err=%v", len(out), err)
	}

	out, err = Insert(nodes, "root[0].children[0]", schema.Node{Type: "divider"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if out[0].Children[0].Type != "divider" || out[0].Children[1].Type != "heading" {
		t.Fatalf("expected insert to shift siblings, got %q,%q", out[0].Children[0].Type, out[0].Children[1].Type)
	}

	out, err = SetProperties(nodes, "root[1]", schema.Properties{"text": "B2"})
	if err != nil {
		t.Fatalf("set properties: %v", err)
	}
	if out[1].Properties.String("text") != "B2" || nodes[1].Properties.String("text") != "B" {
		t.Fatalf("expected new tree updated and input untouched")
	}
}

func TestWalkMatchesRendererPaths(t *testing.T) {
	var got []Path
	Walk(sampleTree(), func(_ schema.Node, path Path) bool {
		got = append(got, path)
		return true
	})
	want := []Path{
		"root[0]",
		"root[0].children[0]",
		"root[0].children[1]",
		"root[0].children[1].children[0]",
		"root[0].children[1].children[1]",
		"root[0].children[2]",
		"root[1]",
		"root[2]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestEditErrors(t *testing.T) {
	nodes := sampleTree()
	if _, err := Delete(nodes, "root[9]"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := MoveUp(nodes, "root[0].children[7]"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing move target, got %v", err)
	}
	if _, err := Delete(nodes, Root); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for root delete, got %v", err)
	}
}
