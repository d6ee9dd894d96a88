package schema

import (
	"errors"
	"fmt"
	"strings"
)

// MaxDepth bounds page nesting. Trees decoded from documents are always
// finite, but a hand-built or hostile input can still be absurdly deep.
const MaxDepth = 64

var (
	ErrMissingType      = errors.New("component type is required")
	ErrMissingFieldID   = errors.New("field id is required")
	ErrDuplicateFieldID = errors.New("duplicate field id")
	ErrTooDeep          = errors.New("page nesting exceeds maximum depth")
)

// ValidatePage checks structural requirements on a page tree.
func ValidatePage(page Page) error {
	return validateNodes(page.Components, "root", 1)
}

// ValidateNodes checks a node forest as ValidatePage does.
func ValidateNodes(nodes []Node) error {
	return validateNodes(nodes, "root", 1)
}

func validateNodes(nodes []Node, prefix string, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("%w (%d) at %s", ErrTooDeep, MaxDepth, prefix)
	}
	for idx, node := range nodes {
		at := fmt.Sprintf("%s[%d]", prefix, idx)
		if strings.TrimSpace(node.Type) == "" {
			return fmt.Errorf("%w at %s", ErrMissingType, at)
		}
		if len(node.Children) > 0 {
			if err := validateNodes(node.Children, at+".children", depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateForm checks that every field has a type and a unique id.
func ValidateForm(form Form) error {
	return ValidateFields(form.Fields)
}

// ValidateFields checks a descriptor list as ValidateForm does.
func ValidateFields(fields []FieldDescriptor) error {
	seen := make(map[string]int, len(fields))
	for idx, field := range fields {
		if strings.TrimSpace(field.Type) == "" {
			return fmt.Errorf("%w at fields[%d]", ErrMissingType, idx)
		}
		id := field.ID()
		if id == "" {
			return fmt.Errorf("%w at fields[%d] (%s)", ErrMissingFieldID, idx, field.Type)
		}
		if first, exists := seen[id]; exists {
			return fmt.Errorf("%w %q at fields[%d] (first declared at fields[%d])", ErrDuplicateFieldID, id, idx, first)
		}
		seen[id] = idx
	}
	return nil
}
