package markup

import (
	"html"
	"io"
	"strings"
)

// Attr is a single HTML attribute. Attributes keep insertion order so output
// stays deterministic for golden tests.
type Attr struct {
	Key   string
	Value string
}

// Element is the renderable produced by component factories. Exactly one of
// Tag, Text or Raw is expected to be set: Tag builds an element with
// attributes and children, Text is escaped character data, Raw is trusted
// markup emitted verbatim.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []*Element
	Text     string
	Raw      string

	// Component records the schema type that produced this element. It is
	// bookkeeping for callers and is never written to the output.
	Component string
}

// El builds a tag element.
func El(tag string, attrs []Attr, children ...*Element) *Element {
	return &Element{Tag: tag, Attrs: attrs, Children: compact(children)}
}

// Text builds an escaped text node.
func Text(value string) *Element {
	return &Element{Text: value}
}

// Raw builds a trusted markup node. Callers are responsible for sanitising
// the value (see Sanitize).
func Raw(value string) *Element {
	return &Element{Raw: value}
}

// A is shorthand for building attribute lists from key/value pairs. A
// trailing key without a value is ignored.
func A(pairs ...string) []Attr {
	attrs := make([]Attr, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		attrs = append(attrs, Attr{Key: pairs[i], Value: pairs[i+1]})
	}
	return attrs
}

// Attr returns the value of key.
func (e *Element) Attr(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, attr := range e.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether key is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := e.Attr(key)
	return ok
}

// SetAttr replaces key when present, otherwise appends it.
func (e *Element) SetAttr(key, value string) *Element {
	if e == nil {
		return nil
	}
	for idx := range e.Attrs {
		if e.Attrs[idx].Key == key {
			e.Attrs[idx].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
	return e
}

// AddClass appends class names to the class attribute.
func (e *Element) AddClass(classes ...string) *Element {
	if e == nil {
		return nil
	}
	current, _ := e.Attr("class")
	parts := strings.Fields(current)
	for _, class := range classes {
		for _, name := range strings.Fields(class) {
			if !containsString(parts, name) {
				parts = append(parts, name)
			}
		}
	}
	if len(parts) == 0 {
		return e
	}
	return e.SetAttr("class", strings.Join(parts, " "))
}

// Append adds children, skipping nils.
func (e *Element) Append(children ...*Element) *Element {
	if e == nil {
		return nil
	}
	e.Children = append(e.Children, compact(children)...)
	return e
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// Render writes the elements as HTML.
func Render(w io.Writer, elements ...*Element) error {
	for _, el := range elements {
		if err := render(w, el); err != nil {
			return err
		}
	}
	return nil
}

// String renders the elements into a string, ignoring write errors which a
// strings.Builder never returns.
func String(elements ...*Element) string {
	var builder strings.Builder
	_ = Render(&builder, elements...)
	return builder.String()
}

func render(w io.Writer, el *Element) error {
	if el == nil {
		return nil
	}
	switch {
	case el.Raw != "":
		_, err := io.WriteString(w, el.Raw)
		return err
	case el.Tag == "":
		if el.Text != "" {
			if _, err := io.WriteString(w, html.EscapeString(el.Text)); err != nil {
				return err
			}
		}
		for _, child := range el.Children {
			if err := render(w, child); err != nil {
				return err
			}
		}
		return nil
	}

	var open strings.Builder
	open.WriteByte('<')
	open.WriteString(el.Tag)
	for _, attr := range el.Attrs {
		if attr.Key == "" {
			continue
		}
		open.WriteByte(' ')
		open.WriteString(attr.Key)
		open.WriteString(`="`)
		open.WriteString(html.EscapeString(attr.Value))
		open.WriteByte('"')
	}
	open.WriteByte('>')
	if _, err := io.WriteString(w, open.String()); err != nil {
		return err
	}
	if _, void := voidElements[el.Tag]; void {
		return nil
	}
	if el.Text != "" {
		if _, err := io.WriteString(w, html.EscapeString(el.Text)); err != nil {
			return err
		}
	}
	for _, child := range el.Children {
		if err := render(w, child); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+el.Tag+">")
	return err
}

func compact(elements []*Element) []*Element {
	if len(elements) == 0 {
		return nil
	}
	out := make([]*Element, 0, len(elements))
	for _, el := range elements {
		if el != nil {
			out = append(out, el)
		}
	}
	return out
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
