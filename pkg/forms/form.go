package forms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/validation"
)

// ChangeFunc observes every value change. It runs synchronously inside
// Field.Change, before any validation, so a controlled value held by the
// caller stays in step with input.
type ChangeFunc func(field *Field, value any)

// FormOption configures one compiled Form.
type FormOption func(*Form)

// WithFormID sets the form id. A uuid is generated when empty.
func WithFormID(id string) FormOption {
	return func(f *Form) {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			f.id = trimmed
		}
	}
}

// WithTitle sets the heading rendered above the fields.
func WithTitle(title string) FormOption {
	return func(f *Form) {
		f.title = strings.TrimSpace(title)
	}
}

// WithAction sets the submission target.
func WithAction(action string) FormOption {
	return func(f *Form) {
		if trimmed := strings.TrimSpace(action); trimmed != "" {
			f.action = trimmed
		}
	}
}

// WithMethod sets the declared method. Empty keeps the current value.
func WithMethod(method string) FormOption {
	return func(f *Form) {
		if trimmed := strings.TrimSpace(method); trimmed != "" {
			f.method = strings.ToUpper(trimmed)
		}
	}
}

// WithHiddenFields adds hidden inputs such as CSRF tokens.
func WithHiddenFields(fields ...HiddenField) FormOption {
	return func(f *Form) {
		f.hidden = MergeHiddenFields(f.hidden, fields...)
	}
}

// WithOnChange registers a synchronous change observer.
func WithOnChange(fn ChangeFunc) FormOption {
	return func(f *Form) {
		if fn != nil {
			f.onChange = append(f.onChange, fn)
		}
	}
}

// Form is one mounted form instance. It exclusively owns its validation
// registry; Close tears it down and any result still in flight is dropped.
type Form struct {
	id       string
	title    string
	action   string
	method   string
	hidden   map[string]string
	compiler *Compiler
	logger   *slog.Logger

	fields   []*Field
	byID     map[string]*Field
	registry *validation.Registry
	guard    validation.Guard
	onChange []ChangeFunc
}

func newForm(c *Compiler, options ...FormOption) *Form {
	f := &Form{
		compiler: c,
		logger:   c.logger,
		byID:     make(map[string]*Field),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}
	f.registry = validation.NewRegistry(validation.WithRegistryLogger(c.logger))
	return f
}

// ID returns the form id.
func (f *Form) ID() string { return f.id }

// Title returns the form title.
func (f *Form) Title() string { return f.title }

// Action returns the submission target.
func (f *Form) Action() string { return f.action }

// Method returns the declared method, which may be empty.
func (f *Form) Method() string { return f.method }

// Registry exposes the form's validation registry.
func (f *Form) Registry() *validation.Registry { return f.registry }

// Fields returns the compiled fields in declaration order.
func (f *Form) Fields() []*Field {
	out := make([]*Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Field returns the field with id.
func (f *Form) Field(id string) (*Field, bool) {
	field, ok := f.byID[strings.TrimSpace(id)]
	return field, ok
}

// Values returns the live values keyed by submitted name.
func (f *Form) Values() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, field := range f.fields {
		out[field.name] = field.Value()
	}
	return out
}

// HoneypotName returns the submitted name of the automation trap.
func (f *Form) HoneypotName() string {
	return f.compiler.honeypot
}

// Trapped reports whether any trap field holds a value.
func (f *Form) Trapped() bool {
	for _, field := range f.fields {
		if field.Trap() && components.FormatValue(field.Value()) != "" {
			return true
		}
	}
	return false
}

// ValidateAllFields reports whether every registered entry is valid. Fields
// that were never blurred are not consulted.
func (f *Form) ValidateAllFields() bool {
	return f.registry.ValidateAll()
}

// ValidateFields runs every field's rules, touching untouched fields, then
// reports the aggregate. Trap fields are skipped.
func (f *Form) ValidateFields(ctx context.Context) (bool, error) {
	for _, field := range f.fields {
		if field.Trap() {
			continue
		}
		if _, err := field.Blur(ctx); err != nil {
			return false, err
		}
	}
	return f.ValidateAllFields(), nil
}

// Close unmounts the form. Subsequent and in-flight validation results are
// discarded.
func (f *Form) Close() {
	f.registry.Close()
}

// Closed reports whether Close was called.
func (f *Form) Closed() bool {
	return f.registry.Closed()
}

// ApplyServerErrors maps a server error payload onto the fields, updating both
// the registry and each field's displayed errors. Form-level messages are
// returned.
func (f *Form) ApplyServerErrors(payload map[string][]string) ([]string, error) {
	keys := make(map[string]string, len(f.fields)*2)
	for _, field := range f.fields {
		keys[field.id] = field.id
		keys[field.name] = field.id
	}
	mapping := validation.MapServerErrors(keys, payload)
	if err := mapping.Apply(f.registry); err != nil {
		return nil, fmt.Errorf("forms: apply server errors: %w", err)
	}
	for id, messages := range mapping.Fields {
		if field, ok := f.byID[id]; ok {
			field.setDisplay(messages)
		}
	}
	return mapping.Form, nil
}

func (f *Form) notifyChange(field *Field, value any) {
	for _, fn := range f.onChange {
		fn(field, value)
	}
}

// RenderOptions carry per-request rendering data.
type RenderOptions struct {
	// Method overrides the declared method.
	Method string
	// Hidden adds hidden inputs for this render only.
	Hidden []HiddenField
	// FormErrors are shown above the fields.
	FormErrors []string
	// SubmitLabel labels the submit button. Empty renders "Submit".
	SubmitLabel string
	Locale      string
	Translator  Translator
	OnMissing   MissingTranslationHandler
}

// Render emits the form element. Browsers only send GET and POST, so other
// verbs are sent as POST with a _method override.
func (f *Form) Render(opts RenderOptions) (*markup.Element, error) {
	method := f.method
	if strings.TrimSpace(opts.Method) != "" {
		method = opts.Method
	}
	transport, override := TransportMethod(method)

	el := markup.El("form", markup.A(
		"id", f.id,
		"class", "composer-form",
		"method", strings.ToLower(transport),
		"novalidate", "novalidate",
		"data-scope", f.registry.Scope(),
	))
	if f.action != "" {
		el.SetAttr("action", f.action)
	}
	if f.title != "" {
		el.Append(markup.El("h2", markup.A("class", "composer-form__title"), markup.Text(f.title)))
	}

	hidden := MergeHiddenFields(f.hidden, opts.Hidden...)
	if override != "" {
		hidden = MergeHiddenFields(hidden, Hidden(MethodOverrideField, override))
	}
	for _, field := range SortedHiddenFields(hidden) {
		el.Append(markup.El("input", markup.A("type", "hidden", "name", field.Name, "value", field.Value)))
	}

	if len(opts.FormErrors) > 0 {
		list := markup.El("ul", markup.A("class", "composer-form__errors", "role", "alert"))
		for _, message := range opts.FormErrors {
			list.Append(markup.El("li", nil, markup.Text(message)))
		}
		el.Append(list)
	}

	for _, field := range f.fields {
		rendered, err := field.render(opts)
		if err != nil {
			return nil, err
		}
		el.Append(rendered)
	}

	label := opts.SubmitLabel
	if label == "" {
		label = "Submit"
	}
	el.Append(markup.El("button", markup.A("type", "submit", "class", "composer-form__submit"), markup.Text(label)))
	return el, nil
}
