package components

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/render/template/gotemplate"
)

//go:embed templates/page/*.tpl templates/forms/*.tpl
var embeddedTemplates embed.FS

// Partial keys a theme can override, mapped to the built-in template names.
var defaultPartials = map[string]string{
	"page.heading":   "page/heading",
	"page.image":     "page/image",
	"page.button":    "page/button",
	"page.link":      "page/link",
	"forms.input":    "forms/input",
	"forms.textarea": "forms/textarea",
	"forms.select":   "forms/select",
}

// TemplatesFS exposes the embedded widget templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// PartialKeys lists the keys accepted in Data.Partials.
func PartialKeys() map[string]string {
	out := make(map[string]string, len(defaultPartials))
	for key, name := range defaultPartials {
		out[key] = name
	}
	return out
}

// NewTemplateEngine builds a pongo2 engine over the embedded templates.
// Options such as gotemplate.WithBaseDir layer on-disk overrides on top.
func NewTemplateEngine(options ...gotemplate.Option) (*gotemplate.Engine, error) {
	opts := append([]gotemplate.Option{gotemplate.WithFS(TemplatesFS())}, options...)
	engine, err := gotemplate.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("components: template engine: %w", err)
	}
	return engine, nil
}

func renderPartial(data Data, key string, view any) (*markup.Element, error) {
	if data.Template == nil {
		return nil, fmt.Errorf("components: template renderer not configured for %q", key)
	}

	name := defaultPartials[key]
	if data.Partials != nil {
		if candidate := strings.TrimSpace(data.Partials[key]); candidate != "" {
			name = candidate
		}
	}

	ctx, err := viewContext(view)
	if err != nil {
		return nil, err
	}
	if len(data.Tokens) > 0 {
		tokens := make(map[string]any, len(data.Tokens))
		for k, v := range data.Tokens {
			tokens[k] = v
		}
		ctx["tokens"] = tokens
	}

	rendered, err := data.Template.RenderTemplate(name, ctx)
	if err != nil {
		return nil, fmt.Errorf("components: render template %q: %w", name, err)
	}
	return markup.Raw(strings.TrimSpace(rendered)), nil
}
