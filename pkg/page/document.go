package page

import (
	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/schema"
)

// RenderDocument renders a whole page inside a root element carrying the
// theme's CSS variables.
func (r *Renderer) RenderDocument(doc schema.Page, opts Options) (*markup.Element, *Pass, error) {
	pass, err := r.Render(doc.Components, opts)
	if err != nil {
		return nil, nil, err
	}
	th, err := r.Theme()
	if err != nil {
		return nil, nil, err
	}

	root := markup.El("main", markup.A("class", "composer-page"))
	if doc.ID != "" {
		root.SetAttr("data-page", doc.ID)
	}
	if th.Name != "" {
		root.SetAttr("data-theme", th.Name)
	}
	if th.Variant != "" {
		root.SetAttr("data-theme-variant", th.Variant)
	}
	if style := th.Style(); style != "" {
		root.SetAttr("style", style)
	}
	if opts.Edit {
		root.AddClass(EditingClass)
	}
	if doc.Title != "" {
		root.Append(markup.El("h1", markup.A("class", "composer-page__title"), markup.Text(doc.Title)))
	}
	root.Append(pass.Elements...)
	return root, pass, nil
}
