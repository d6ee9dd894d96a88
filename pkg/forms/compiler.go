package forms

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-composer/pkg/components"
	rendertemplate "github.com/goliatone/go-composer/pkg/render/template"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/validation"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used by the compiler and the forms it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRuleSet replaces the built-in validation rules.
func WithRuleSet(rules *validation.RuleSet) Option {
	return func(c *Compiler) {
		if rules != nil {
			c.rules = rules
		}
	}
}

// WithTemplateRenderer replaces the embedded widget template engine.
func WithTemplateRenderer(tpl rendertemplate.TemplateRenderer) Option {
	return func(c *Compiler) {
		c.template = tpl
	}
}

// WithPartials overrides widget templates by partial key.
func WithPartials(partials map[string]string) Option {
	return func(c *Compiler) {
		c.partials = partials
	}
}

// WithTokens exposes design tokens to widget templates.
func WithTokens(tokens map[string]string) Option {
	return func(c *Compiler) {
		c.tokens = tokens
	}
}

// WithHoneypotName changes the submitted name treated as the automation
// trap. Fields of type honeypot are always traps regardless of name.
func WithHoneypotName(name string) Option {
	return func(c *Compiler) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			c.honeypot = trimmed
		}
	}
}

// Compiler turns field descriptors into Forms. It is safe for concurrent use;
// each Compile call yields an independent Form with its own registry.
type Compiler struct {
	registry *components.Registry
	rules    *validation.RuleSet
	template rendertemplate.TemplateRenderer
	partials map[string]string
	tokens   map[string]string
	honeypot string
	logger   *slog.Logger
}

// NewCompiler builds a Compiler over a field registry. A nil registry uses
// the built-in field widgets.
func NewCompiler(registry *components.Registry, options ...Option) (*Compiler, error) {
	if registry == nil {
		registry = components.NewFieldRegistry().Freeze()
	}
	c := &Compiler{
		registry: registry,
		rules:    validation.NewRuleSet(),
		honeypot: components.HoneypotName,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.template == nil {
		engine, err := components.NewTemplateEngine()
		if err != nil {
			return nil, fmt.Errorf("forms: %w", err)
		}
		c.template = engine
	}
	return c, nil
}

// MustNewCompiler mirrors NewCompiler but panics on error.
func MustNewCompiler(registry *components.Registry, options ...Option) *Compiler {
	c, err := NewCompiler(registry, options...)
	if err != nil {
		panic(err)
	}
	return c
}

// Registry returns the field registry.
func (c *Compiler) Registry() *components.Registry {
	return c.registry
}

// Rules returns the rule set fields are compiled against.
func (c *Compiler) Rules() *validation.RuleSet {
	return c.rules
}

// HoneypotName returns the submitted name treated as the trap.
func (c *Compiler) HoneypotName() string {
	return c.honeypot
}

// Compile validates the descriptors and binds every field to a fresh form
// instance. Missing or duplicate ids, unknown rule names and invalid
// patterns fail here rather than at render or submit time. Unknown field
// types are compiled and render as placeholders.
func (c *Compiler) Compile(fields []schema.FieldDescriptor, options ...FormOption) (*Form, error) {
	if err := schema.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("forms: %w", err)
	}

	form := newForm(c, options...)
	for idx, descriptor := range fields {
		field, err := c.compileField(form, descriptor)
		if err != nil {
			return nil, fmt.Errorf("forms: fields[%d] (%s): %w", idx, descriptor.ID(), err)
		}
		form.fields = append(form.fields, field)
		form.byID[field.id] = field
	}

	c.logger.Debug("form compiled", "form", form.id, "scope", form.registry.Scope(), "fields", len(form.fields))
	return form, nil
}

// CompileForm compiles a form document, carrying its id, action and method.
// Options passed here win over the document.
func (c *Compiler) CompileForm(doc schema.Form, options ...FormOption) (*Form, error) {
	base := []FormOption{
		WithFormID(doc.ID),
		WithTitle(doc.Title),
		WithAction(doc.Action),
		WithMethod(doc.Method),
	}
	return c.Compile(doc.Fields, append(base, options...)...)
}

func (c *Compiler) compileField(form *Form, descriptor schema.FieldDescriptor) (*Field, error) {
	props := Coerce(descriptor.Properties)
	typ := strings.ToLower(strings.TrimSpace(descriptor.Type))

	check, err := c.rules.Compile(props)
	if err != nil {
		return nil, err
	}
	if typ == components.FieldHoneypot && props.Has(schema.PropValidate) {
		return nil, errors.New("honeypot fields cannot carry validation rules")
	}

	if _, ok := c.registry.Resolve(typ); !ok {
		c.logger.Warn("unknown field type", "type", descriptor.Type, "field", descriptor.ID())
	}

	field := &Field{
		form:  form,
		id:    descriptor.ID(),
		name:  descriptor.Name(),
		typ:   typ,
		props: props,
		check: check,
		value: initialValue(typ, props),
	}
	field.report = form.registry.Reporter(field.id)
	field.options = buildOptions(field)
	return field, nil
}

func initialValue(typ string, props schema.Properties) any {
	value, ok := props[schema.PropValue]
	if typ == components.FieldCheckbox {
		return stringSlice(value)
	}
	if typ == components.FieldHoneypot {
		return ""
	}
	if !ok {
		return nil
	}
	return value
}
