package components

import (
	"strconv"

	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/schema"
)

// NewPageRegistry returns a registry with the built-in page widgets. The
// layout types are containers; everything else is a leaf.
func NewPageRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameContainer, Entry{Factory: blockFactory("div", NameContainer), Container: true})
	registry.MustRegister(NameSection, Entry{Factory: sectionFactory, Container: true})
	registry.MustRegister(NameRow, Entry{Factory: blockFactory("div", NameRow), Container: true})
	registry.MustRegister(NameColumn, Entry{Factory: columnFactory, Container: true})
	registry.MustRegister(NameList, Entry{Factory: listFactory, Container: true})

	registry.MustRegister(NameHeading, Entry{Factory: headingFactory})
	registry.MustRegister(NameText, Entry{Factory: textFactory})
	registry.MustRegister(NameRichText, Entry{Factory: richTextFactory})
	registry.MustRegister(NameImage, Entry{Factory: imageFactory})
	registry.MustRegister(NameButton, Entry{Factory: buttonFactory})
	registry.MustRegister(NameLink, Entry{Factory: linkFactory})
	registry.MustRegister(NameDivider, Entry{Factory: dividerFactory})
	registry.MustRegister(NameSpacer, Entry{Factory: spacerFactory})

	return registry
}

func blockFactory(tag, name string) Factory {
	return func(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
		var p BlockProps
		if err := Decode(props, &p); err != nil {
			return nil, err
		}
		el := markup.El(tag, nil, children...)
		el.AddClass("composer-"+name, p.Class)
		return el, nil
	}
}

func sectionFactory(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
	var p BlockProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el := markup.El("section", nil)
	el.AddClass("composer-section", p.Class)
	if p.Title != "" {
		el.Append(markup.El("h2", markup.A("class", "composer-section__title"), markup.Text(p.Title)))
	}
	return el.Append(children...), nil
}

func columnFactory(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
	var p BlockProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el := markup.El("div", nil, children...)
	el.AddClass("composer-column", p.Class)
	if p.Span > 0 {
		el.SetAttr("data-span", strconv.Itoa(p.Span))
	}
	return el, nil
}

// listFactory renders static items first, then each child inside its own
// list item.
func listFactory(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
	var p BlockProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	tag := "ul"
	if p.Ordered {
		tag = "ol"
	}
	el := markup.El(tag, nil)
	el.AddClass("composer-list", p.Class)
	for _, item := range p.Items {
		el.Append(markup.El("li", nil, markup.Text(item)))
	}
	for _, child := range children {
		el.Append(markup.El("li", nil, child))
	}
	return el, nil
}

func headingFactory(props schema.Properties, children []*markup.Element, data Data) (*markup.Element, error) {
	var p HeadingProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	if p.Level < 1 || p.Level > 6 {
		p.Level = 2
	}
	el, err := renderPartial(data, "page.heading", p)
	if err != nil {
		return nil, err
	}
	return withChildren(el, children), nil
}

func textFactory(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
	var p BlockProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el := markup.El("p", nil, markup.Text(p.Text))
	el.AddClass("composer-text", p.Class)
	return el.Append(children...), nil
}

func richTextFactory(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
	var p BlockProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el := markup.El("div", nil, markup.SanitizedRaw(p.HTML))
	el.AddClass("composer-rich-text", p.Class)
	return el.Append(children...), nil
}

func imageFactory(props schema.Properties, children []*markup.Element, data Data) (*markup.Element, error) {
	var p ImageProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el, err := renderPartial(data, "page.image", p)
	if err != nil {
		return nil, err
	}
	return withChildren(el, children), nil
}

func buttonFactory(props schema.Properties, children []*markup.Element, data Data) (*markup.Element, error) {
	var p ButtonProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	if p.Type == "" {
		p.Type = "button"
	}
	if p.Variant == "" {
		p.Variant = "primary"
	}
	el, err := renderPartial(data, "page.button", p)
	if err != nil {
		return nil, err
	}
	return withChildren(el, children), nil
}

func linkFactory(props schema.Properties, children []*markup.Element, data Data) (*markup.Element, error) {
	var p LinkProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	if p.Label == "" {
		p.Label = p.Href
	}
	el, err := renderPartial(data, "page.link", p)
	if err != nil {
		return nil, err
	}
	return withChildren(el, children), nil
}

func dividerFactory(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
	var p BlockProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	return withChildren(markup.El("hr", nil).AddClass("composer-divider", p.Class), children), nil
}

func spacerFactory(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
	var p BlockProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	size := p.Size
	if size <= 0 {
		size = 16
	}
	el := markup.El("div", markup.A("aria-hidden", "true", "style", "height: "+strconv.Itoa(size)+"px"))
	return withChildren(el.AddClass("composer-spacer", p.Class), children), nil
}

// withChildren keeps children a leaf type was given anyway. Leaves render
// through templates or void tags, so they move into a wrapper after el.
func withChildren(el *markup.Element, children []*markup.Element) *markup.Element {
	if len(children) == 0 {
		return el
	}
	return markup.El("div", markup.A("class", "composer-leaf"), el).Append(children...)
}
