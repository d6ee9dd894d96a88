package submit

import (
	"net/url"
	"slices"
	"sort"

	"github.com/goliatone/go-composer/pkg/components"
)

// Event is the terminal submit action.
type Event struct {
	Method string
	Action string
	Values url.Values

	prevented bool
}

// PreventDefault stops the host's default transport.
func (e *Event) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

// EncodeValues flattens live form values into form-encoded values. Slices
// become repeated keys; nil values are sent empty.
func EncodeValues(values map[string]any) url.Values {
	out := make(url.Values, len(values))
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch v := values[name].(type) {
		case []string:
			out[name] = slices.Clone(v)
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, components.FormatValue(item))
			}
			out[name] = items
		default:
			out.Set(name, components.FormatValue(v))
		}
	}
	return out
}
