package tree

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-composer/pkg/schema"
)

// ErrNotFound reports a path that parses but does not address a node in the
// supplied tree.
var ErrNotFound = errors.New("tree: node not found")

// Every edit below returns a new forest. The input slice, its nodes and their
// properties are never modified, so a caller holding the previous tree can
// still render it.

// Get returns the node at path.
func Get(nodes []schema.Node, path Path) (schema.Node, error) {
	indices, err := Parse(path)
	if err != nil {
		return schema.Node{}, err
	}
	if len(indices) == 0 {
		return schema.Node{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	level := nodes
	var node schema.Node
	for _, index := range indices {
		if index >= len(level) {
			return schema.Node{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		node = level[index]
		level = node.Children
	}
	return node.Clone(), nil
}

// Delete removes the node at path along with its subtree.
func Delete(nodes []schema.Node, path Path) ([]schema.Node, error) {
	return editSiblings(nodes, path, func(siblings []schema.Node, index int) ([]schema.Node, error) {
		out := make([]schema.Node, 0, len(siblings)-1)
		out = append(out, siblings[:index]...)
		out = append(out, siblings[index+1:]...)
		return out, nil
	})
}

// MoveUp swaps the node with its previous sibling. Index 0 is a no-op: the
// returned forest equals the input and moved is false.
func MoveUp(nodes []schema.Node, path Path) (out []schema.Node, moved bool, err error) {
	return move(nodes, path, -1)
}

// MoveDown swaps the node with its next sibling. The last index is a no-op.
func MoveDown(nodes []schema.Node, path Path) (out []schema.Node, moved bool, err error) {
	return move(nodes, path, 1)
}

func move(nodes []schema.Node, path Path, delta int) ([]schema.Node, bool, error) {
	moved := false
	out, err := editSiblings(nodes, path, func(siblings []schema.Node, index int) ([]schema.Node, error) {
		target := index + delta
		if target < 0 || target >= len(siblings) {
			return siblings, nil
		}
		swapped := append([]schema.Node(nil), siblings...)
		swapped[index], swapped[target] = swapped[target], swapped[index]
		moved = true
		return swapped, nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, moved, nil
}

// AppendChild adds child as the last child of the node at parent. Passing
// Root appends a top-level node.
func AppendChild(nodes []schema.Node, parent Path, child schema.Node) ([]schema.Node, error) {
	count := len(nodes)
	if parent != Root {
		node, err := Get(nodes, parent)
		if err != nil {
			return nil, err
		}
		count = len(node.Children)
	}
	return Insert(nodes, Child(parent, count), child)
}

// Insert places node at path, shifting the current occupant and its later
// siblings down. The index may equal the sibling count to append.
func Insert(nodes []schema.Node, path Path, node schema.Node) ([]schema.Node, error) {
	indices, err := Parse(path)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: cannot insert at root", ErrInvalidPath)
	}
	index := indices[len(indices)-1]
	insert := func(siblings []schema.Node) ([]schema.Node, error) {
		if index > len(siblings) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		out := make([]schema.Node, 0, len(siblings)+1)
		out = append(out, siblings[:index]...)
		out = append(out, node.Clone())
		out = append(out, siblings[index:]...)
		return out, nil
	}
	if len(indices) == 1 {
		return insert(schema.CloneNodes(nodes))
	}
	return editNode(nodes, Format(indices[:len(indices)-1]), func(parent *schema.Node) error {
		children, err := insert(parent.Children)
		if err != nil {
			return err
		}
		parent.Children = children
		return nil
	})
}

// SetProperties replaces the properties of the node at path.
func SetProperties(nodes []schema.Node, path Path, props schema.Properties) ([]schema.Node, error) {
	return editNode(nodes, path, func(node *schema.Node) error {
		node.Properties = props.Clone()
		return nil
	})
}

// SubtreeSize returns the number of nodes rooted at path, itself included.
func SubtreeSize(nodes []schema.Node, path Path) (int, error) {
	node, err := Get(nodes, path)
	if err != nil {
		return 0, err
	}
	return 1 + schema.CountNodes(node.Children), nil
}

// WalkFunc receives each node with its path. Returning false skips the
// node's children.
type WalkFunc func(node schema.Node, path Path) bool

// Walk visits the forest depth-first, computing paths the same way the page
// renderer does.
func Walk(nodes []schema.Node, fn WalkFunc) {
	walk(nodes, Root, fn)
}

func walk(nodes []schema.Node, parent Path, fn WalkFunc) {
	for idx, node := range nodes {
		current := Child(parent, idx)
		if !fn(node, current) {
			continue
		}
		walk(node.Children, current, fn)
	}
}

func editSiblings(nodes []schema.Node, path Path, fn func(siblings []schema.Node, index int) ([]schema.Node, error)) ([]schema.Node, error) {
	indices, err := Parse(path)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: root is not a node", ErrInvalidPath)
	}
	index := indices[len(indices)-1]
	if len(indices) == 1 {
		out := schema.CloneNodes(nodes)
		if index >= len(out) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fn(out, index)
	}
	return editNode(nodes, Format(indices[:len(indices)-1]), func(parent *schema.Node) error {
		if index >= len(parent.Children) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		children, err := fn(parent.Children, index)
		if err != nil {
			return err
		}
		parent.Children = children
		return nil
	})
}

func editNode(nodes []schema.Node, path Path, fn func(node *schema.Node) error) ([]schema.Node, error) {
	indices, err := Parse(path)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: root is not a node", ErrInvalidPath)
	}
	out := schema.CloneNodes(nodes)
	level := out
	var target *schema.Node
	for _, index := range indices {
		if index >= len(level) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		target = &level[index]
		level = target.Children
	}
	if err := fn(target); err != nil {
		return nil, err
	}
	return out, nil
}
