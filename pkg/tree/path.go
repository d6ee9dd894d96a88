package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node by depth-first position, for example
// root[0].children[2].children[1]. A path is only meaningful for the tree it
// was computed from: any insert or delete shifts sibling indices.
type Path string

// Root is the prefix every top-level path starts with.
const Root Path = "root"

const childrenSegment = ".children"

// ErrInvalidPath reports a path that does not follow the root[i].children[j]
// grammar.
var ErrInvalidPath = errors.New("tree: invalid path")

// Child returns the path of the i-th node under parent. Passing Root yields a
// top-level path; any other parent is treated as a node path whose children
// are addressed.
func Child(parent Path, index int) Path {
	if parent == Root || parent == "" {
		return Path(fmt.Sprintf("%s[%d]", Root, index))
	}
	return Path(fmt.Sprintf("%s%s[%d]", parent, childrenSegment, index))
}

// Format builds a path from a list of indices. An empty list yields Root.
func Format(indices []int) Path {
	path := Root
	for depth, index := range indices {
		if depth == 0 {
			path = Child(Root, index)
			continue
		}
		path = Child(path, index)
	}
	return path
}

// Parse decodes a path into its index list. Root itself parses to an empty
// list.
func Parse(path Path) ([]int, error) {
	raw := strings.TrimSpace(string(path))
	if raw == string(Root) {
		return nil, nil
	}
	if !strings.HasPrefix(raw, string(Root)+"[") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}

	rest := raw[len(Root):]
	var indices []int
	for len(rest) > 0 {
		if len(indices) > 0 {
			if !strings.HasPrefix(rest, childrenSegment+"[") {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
			}
			rest = rest[len(childrenSegment):]
		}
		if !strings.HasPrefix(rest, "[") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
		}
		index, ok := parseIndex(rest[1:end])
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
		}
		indices = append(indices, index)
		rest = rest[end+1:]
	}
	return indices, nil
}

// parseIndex accepts only the canonical form Format writes: ASCII digits
// without a sign or leading zeros.
func parseIndex(digits string) (int, bool) {
	if digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	index, err := strconv.Atoi(digits)
	return index, err == nil
}

// Parent returns the path of the node holding path, or Root for top-level
// nodes.
func (p Path) Parent() (Path, error) {
	indices, err := Parse(p)
	if err != nil {
		return "", err
	}
	if len(indices) <= 1 {
		return Root, nil
	}
	return Format(indices[:len(indices)-1]), nil
}

// Index returns the node's position among its siblings.
func (p Path) Index() (int, error) {
	indices, err := Parse(p)
	if err != nil {
		return 0, err
	}
	if len(indices) == 0 {
		return 0, fmt.Errorf("%w: root has no index", ErrInvalidPath)
	}
	return indices[len(indices)-1], nil
}

// Depth returns the number of segments in the path (1 for top-level nodes).
func (p Path) Depth() int {
	indices, err := Parse(p)
	if err != nil {
		return 0
	}
	return len(indices)
}

func (p Path) String() string {
	return string(p)
}
