package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/goliatone/go-composer/pkg/schema"
)

// Decode copies props into the struct pointed to by out using mapstructure
// tags. Input is weakly typed so "3" decodes into an int and 3 into a string.
func Decode(props schema.Properties, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("components: build decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(props)); err != nil {
		return fmt.Errorf("components: decode properties: %w", err)
	}
	return nil
}

// viewContext flattens a typed view into the map handed to templates. Ints
// stay ints so pongo2 prints them without a decimal part.
func viewContext(view any) (map[string]any, error) {
	out := make(map[string]any)
	if err := mapstructure.Decode(view, &out); err != nil {
		return nil, fmt.Errorf("components: build template context: %w", err)
	}
	return out, nil
}

// HeadingProps configures the heading widget.
type HeadingProps struct {
	Text  string `mapstructure:"text"`
	Level int    `mapstructure:"level"`
	Class string `mapstructure:"class"`
}

// ImageProps configures the image widget.
type ImageProps struct {
	Src    string `mapstructure:"src"`
	Alt    string `mapstructure:"alt"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Class  string `mapstructure:"class"`
}

// ButtonProps configures the button widget. A non-empty Href renders an
// anchor styled as a button.
type ButtonProps struct {
	Label   string `mapstructure:"label"`
	Href    string `mapstructure:"href"`
	Type    string `mapstructure:"type"`
	Variant string `mapstructure:"variant"`
	Class   string `mapstructure:"class"`
}

// LinkProps configures the link widget.
type LinkProps struct {
	Href   string `mapstructure:"href"`
	Label  string `mapstructure:"label"`
	Target string `mapstructure:"target"`
	Class  string `mapstructure:"class"`
}

// BlockProps covers the layout containers and simple text blocks.
type BlockProps struct {
	Title   string   `mapstructure:"title"`
	Text    string   `mapstructure:"text"`
	HTML    string   `mapstructure:"html"`
	Class   string   `mapstructure:"class"`
	Span    int      `mapstructure:"span"`
	Size    int      `mapstructure:"size"`
	Ordered bool     `mapstructure:"ordered"`
	Items   []string `mapstructure:"items"`
}

// FieldProps is the decoded shape of a form field descriptor's properties
// after the compiler has injected the live value and display errors.
type FieldProps struct {
	ID          string   `mapstructure:"id"`
	Name        string   `mapstructure:"name"`
	Label       string   `mapstructure:"label"`
	Placeholder string   `mapstructure:"placeholder"`
	Help        string   `mapstructure:"help"`
	Required    bool     `mapstructure:"required"`
	Disabled    bool     `mapstructure:"disabled"`
	Checked     bool     `mapstructure:"checked"`
	Group       string   `mapstructure:"group"`
	MinLength   int      `mapstructure:"minLength"`
	MaxLength   int      `mapstructure:"maxLength"`
	Rows        int      `mapstructure:"rows"`
	Cols        int      `mapstructure:"cols"`
	Size        int      `mapstructure:"size"`
	Step        string   `mapstructure:"step"`
	Pattern     string   `mapstructure:"pattern"`
	Value       any      `mapstructure:"value"`
	Errors      []string `mapstructure:"errors"`
	Class       string   `mapstructure:"class"`
}

// InputName returns Name, falling back to ID.
func (p FieldProps) InputName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Choice is one entry of an options property.
type Choice struct {
	Value string
	Label string
}

// Choices reads the "options" property. Entries may be plain strings or
// objects with value and label keys; a missing label falls back to the value.
func Choices(props schema.Properties) []Choice {
	raw, ok := props[schema.PropOptions]
	if !ok {
		return nil
	}
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []map[string]any:
		for _, m := range v {
			items = append(items, m)
		}
	default:
		return nil
	}

	out := make([]Choice, 0, len(items))
	for _, item := range items {
		var choice Choice
		switch v := item.(type) {
		case string:
			choice = Choice{Value: v, Label: v}
		case map[string]any:
			entry := schema.Properties(v)
			choice = Choice{Value: entry.String("value"), Label: entry.String("label")}
		case schema.Properties:
			choice = Choice{Value: v.String("value"), Label: v.String("label")}
		default:
			choice = Choice{Value: FormatValue(v)}
		}
		if choice.Value == "" {
			continue
		}
		if choice.Label == "" {
			choice.Label = choice.Value
		}
		out = append(out, choice)
	}
	return out
}

// FormatValue renders a field value as the string an input element carries.
// Slices are joined with commas; nil is empty.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
