// Package composer wires the built-in component catalogues into one-call
// helpers for rendering page schemas, compiling form schemas and importing
// forms from OpenAPI documents.
package composer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/forms"
	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/openapi"
	"github.com/goliatone/go-composer/pkg/page"
	rendertemplate "github.com/goliatone/go-composer/pkg/render/template"
	"github.com/goliatone/go-composer/pkg/render/template/gotemplate"
	"github.com/goliatone/go-composer/pkg/schema"
)

type (
	// PageOptions mirrors page.Options.
	PageOptions = page.Options
	// FormRenderOptions mirrors forms.RenderOptions.
	FormRenderOptions = forms.RenderOptions
)

// Option configures the helpers in this package.
type Option func(*settings)

type settings struct {
	logger       *slog.Logger
	honeypot     string
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	baseURL      string
	fetchTimeout time.Duration
	templatesDir string
}

func newSettings(options []Option) settings {
	cfg := settings{
		logger:       slog.New(slog.DiscardHandler),
		honeypot:     components.HoneypotName,
		fetchTimeout: 30 * time.Second,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLogger sets the logger handed to renderers and compilers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHoneypotName overrides the trap field name used by compiled and
// imported forms.
func WithHoneypotName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.honeypot = name
		}
	}
}

// WithTheme selects the theme applied to rendered pages.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(s *settings) {
		s.selector = selector
		s.themeName = name
		s.themeVariant = variant
	}
}

// WithBaseURL prefixes the action of imported forms.
func WithBaseURL(base string) Option {
	return func(s *settings) {
		s.baseURL = base
	}
}

// WithFetchTimeout caps remote OpenAPI fetches.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.fetchTimeout = timeout
	}
}

// WithTemplatesDir layers widget templates from dir over the embedded ones.
// A file named like a built-in template (for example page/heading.tpl)
// replaces it.
func WithTemplatesDir(dir string) Option {
	return func(s *settings) {
		s.templatesDir = dir
	}
}

func (s settings) templateRenderer() (rendertemplate.TemplateRenderer, error) {
	if s.templatesDir == "" {
		return nil, nil
	}
	engine, err := components.NewTemplateEngine(gotemplate.WithBaseDir(s.templatesDir))
	if err != nil {
		return nil, fmt.Errorf("composer: templates dir: %w", err)
	}
	return engine, nil
}

// EmbeddedTemplates exposes the built-in widget templates so hosts can copy
// or override them.
func EmbeddedTemplates() fs.FS {
	return components.TemplatesFS()
}

// NewPageRenderer returns a renderer over a frozen copy of the page catalogue.
func NewPageRenderer(options ...Option) (*page.Renderer, error) {
	cfg := newSettings(options)
	tpl, err := cfg.templateRenderer()
	if err != nil {
		return nil, err
	}
	opts := []page.Option{page.WithLogger(cfg.logger), page.WithTemplateRenderer(tpl)}
	if cfg.selector != nil {
		opts = append(opts, page.WithThemeSelector(cfg.selector, cfg.themeName, cfg.themeVariant))
	}
	return page.New(components.NewPageRegistry().Freeze(), opts...)
}

// RenderPage renders doc to an HTML string.
func RenderPage(doc schema.Page, opts PageOptions, options ...Option) (string, error) {
	renderer, err := NewPageRenderer(options...)
	if err != nil {
		return "", err
	}
	if opts.Generation == 0 {
		opts.Generation = 1
	}
	root, _, err := renderer.RenderDocument(doc, opts)
	if err != nil {
		return "", fmt.Errorf("composer: render page %q: %w", doc.ID, err)
	}
	return markup.String(root), nil
}

// NewCompiler returns a form compiler over the field catalogue.
func NewCompiler(options ...Option) (*forms.Compiler, error) {
	cfg := newSettings(options)
	tpl, err := cfg.templateRenderer()
	if err != nil {
		return nil, err
	}
	return forms.NewCompiler(nil,
		forms.WithLogger(cfg.logger),
		forms.WithHoneypotName(cfg.honeypot),
		forms.WithTemplateRenderer(tpl),
	)
}

// CompileForm compiles doc against the field catalogue. The caller owns the
// returned form and should Close it.
func CompileForm(doc schema.Form, options ...Option) (*forms.Form, error) {
	compiler, err := NewCompiler(options...)
	if err != nil {
		return nil, err
	}
	return compiler.CompileForm(doc)
}

// RenderForm compiles doc and renders it to an HTML string.
func RenderForm(doc schema.Form, opts FormRenderOptions, options ...Option) (string, error) {
	form, err := CompileForm(doc, options...)
	if err != nil {
		return "", err
	}
	defer form.Close()

	el, err := form.Render(opts)
	if err != nil {
		return "", fmt.Errorf("composer: render form %q: %w", doc.ID, err)
	}
	return markup.String(el), nil
}

// ImportForm loads the OpenAPI document at location (a path or an http(s)
// URL) and derives a form from operationID.
func ImportForm(ctx context.Context, location, operationID string, options ...Option) (schema.Form, error) {
	cfg := newSettings(options)
	loader := openapi.NewLoader(openapi.WithHTTPFallback(cfg.fetchTimeout))
	data, err := loader.Load(ctx, location)
	if err != nil {
		return schema.Form{}, err
	}
	importer := openapi.NewImporter(
		openapi.WithBaseURL(cfg.baseURL),
		openapi.WithHoneypot(cfg.honeypot),
	)
	return importer.FormFromOperation(ctx, data, operationID)
}
