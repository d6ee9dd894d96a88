package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Properties carries the free-form configuration attached to a node or field.
// Values keep whatever shape the loader produced (string, float64, bool,
// []any, map[string]any) until a component decodes them.
type Properties map[string]any

// Clone returns a deep copy so callers can mutate the result without touching
// the source tree.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for key, value := range p {
		out[key] = cloneValue(value)
	}
	return out
}

// Has reports whether key is present, regardless of its value.
func (p Properties) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p[key]
	return ok
}

// String returns the textual form of key. Non-string scalars are formatted
// with fmt so numeric ids survive a YAML round trip.
func (p Properties) String(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Bool interprets key as a boolean flag. Strings such as "true" or "1" are
// accepted because HTML attribute style schemas frequently encode them that way.
func (p Properties) Bool(key string) bool {
	if p == nil {
		return false
	}
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

// Float returns key as a float64 when it holds a number or a numeric string.
func (p Properties) Float(key string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Int returns key truncated to an int.
func (p Properties) Int(key string) (int, bool) {
	value, ok := p.Float(key)
	if !ok {
		return 0, false
	}
	return int(value), true
}

// Node is one element of a page tree. Its address is derived from its
// position during a render pass and is never stored on the node itself.
type Node struct {
	Type       string     `json:"component" yaml:"component"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children   []Node     `json:"children,omitempty" yaml:"children,omitempty"`
}

// Clone deep copies the node and its subtree.
func (n Node) Clone() Node {
	return Node{
		Type:       n.Type,
		Properties: n.Properties.Clone(),
		Children:   CloneNodes(n.Children),
	}
}

// Page is the document a page renderer consumes.
type Page struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	Components []Node `json:"components" yaml:"components"`
}

// Clone deep copies the page.
func (p Page) Clone() Page {
	return Page{
		ID:         p.ID,
		Title:      p.Title,
		Components: CloneNodes(p.Components),
	}
}

// FieldDescriptor describes one form field. Properties must include a stable
// "id" unique within the form and may name a "validate" rule.
type FieldDescriptor struct {
	Type       string     `json:"component" yaml:"component"`
	Properties Properties `json:"properties" yaml:"properties"`
}

// ID returns the descriptor's registry key.
func (f FieldDescriptor) ID() string {
	return f.Properties.String(PropID)
}

// Name returns the submitted name, falling back to the id.
func (f FieldDescriptor) Name() string {
	if name := f.Properties.String(PropName); name != "" {
		return name
	}
	return f.ID()
}

// Clone deep copies the descriptor.
func (f FieldDescriptor) Clone() FieldDescriptor {
	return FieldDescriptor{Type: f.Type, Properties: f.Properties.Clone()}
}

// Form is the document a form compiler consumes.
type Form struct {
	ID     string            `json:"id,omitempty" yaml:"id,omitempty"`
	Title  string            `json:"title,omitempty" yaml:"title,omitempty"`
	Action string            `json:"action,omitempty" yaml:"action,omitempty"`
	Method string            `json:"method,omitempty" yaml:"method,omitempty"`
	Fields []FieldDescriptor `json:"fields" yaml:"fields"`
}

// Clone deep copies the form.
func (f Form) Clone() Form {
	fields := make([]FieldDescriptor, len(f.Fields))
	for idx, field := range f.Fields {
		fields[idx] = field.Clone()
	}
	return Form{
		ID:     f.ID,
		Title:  f.Title,
		Action: f.Action,
		Method: f.Method,
		Fields: fields,
	}
}

// Well-known property names shared by the compiler, validators and widgets.
const (
	PropID        = "id"
	PropName      = "name"
	PropValidate  = "validate"
	PropRequired  = "required"
	PropLabel     = "label"
	PropOptions   = "options"
	PropValue     = "value"
	PropMinLength = "minLength"
	PropMaxLength = "maxLength"
	PropPattern   = "pattern"
	PropRows      = "rows"
	PropCols      = "cols"
	PropSize      = "size"
	PropStep      = "step"
)

// CloneNodes deep copies a node slice. A nil input yields nil.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for idx, node := range nodes {
		out[idx] = node.Clone()
	}
	return out
}

// CountNodes returns the depth-first number of nodes in the forest.
func CountNodes(nodes []Node) int {
	total := 0
	for _, node := range nodes {
		total += 1 + CountNodes(node.Children)
	}
	return total
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case Properties:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}
