package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/tree"
)

// Issue is one problem found while linting a document.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// LintResult collects the issues found in one document.
type LintResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

func (r *LintResult) add(issue Issue) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}

// KnownType reports whether a component type is registered.
type KnownType func(name string) bool

// LintPage checks structure and, when known is set, that every type is
// registered. Unknown types render as placeholders, so they are reported
// here rather than failing a render.
func LintPage(p schema.Page, known KnownType) LintResult {
	result := LintResult{Valid: true}
	if err := schema.ValidatePage(p); err != nil {
		result.add(Issue{Message: err.Error()})
		return result
	}
	if known == nil {
		return result
	}
	tree.Walk(p.Components, func(node schema.Node, path tree.Path) bool {
		if !known(node.Type) {
			result.add(Issue{Path: path.String(), Message: fmt.Sprintf("unknown component type %q", node.Type)})
		}
		return true
	})
	return result
}

// LintForm checks ids, types and that every field's rules compile.
func LintForm(form schema.Form, known KnownType, rules *RuleSet) LintResult {
	result := LintResult{Valid: true}
	if err := schema.ValidateForm(form); err != nil {
		result.add(Issue{Message: err.Error()})
		return result
	}
	for idx, field := range form.Fields {
		path := fmt.Sprintf("fields[%d]", idx)
		if known != nil && !known(field.Type) {
			result.add(Issue{Path: path, Field: field.ID(), Message: fmt.Sprintf("unknown field type %q", field.Type)})
		}
		if rules == nil {
			continue
		}
		if _, err := rules.Compile(field.Properties); err != nil {
			message := err.Error()
			if errors.Is(err, ErrUnknownRule) {
				message = strings.TrimPrefix(message, "validation: ")
			}
			result.add(Issue{Path: path, Field: field.ID(), Message: message})
		}
	}
	return result
}
