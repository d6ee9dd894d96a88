package forms

import (
	"context"
	"slices"
	"sync"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/validation"
)

// State is a field's position in the validation lifecycle.
type State int

const (
	// Untouched fields have never been validated.
	Untouched State = iota
	// Valid fields passed their last applied validation.
	Valid
	// Invalid fields failed their last applied validation.
	Invalid
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "untouched"
	}
}

// BlurResult describes one validation run.
type BlurResult struct {
	Valid  bool
	Errors []string
	// Applied is false when the result was discarded because the value
	// changed again or the form was closed while the rules ran.
	Applied bool
}

// Field is a compiled descriptor bound to its form.
type Field struct {
	form    *Form
	id      string
	name    string
	typ     string
	props   schema.Properties
	check   validation.Check
	report  validation.Reporter
	options []*Choice

	mu      sync.RWMutex
	value   any
	display []string
	state   State
}

// ID returns the registry key.
func (f *Field) ID() string { return f.id }

// Name returns the submitted name.
func (f *Field) Name() string { return f.name }

// Type returns the widget type.
func (f *Field) Type() string { return f.typ }

// Properties returns a copy of the coerced properties.
func (f *Field) Properties() schema.Properties { return f.props.Clone() }

// Options returns the choices of a radio, checkbox or select field.
func (f *Field) Options() []*Choice {
	return slices.Clone(f.options)
}

// Required reports whether the field demands a value, either through the
// required property or a required rule in validate.
func (f *Field) Required() bool {
	if f.props.Bool(schema.PropRequired) {
		return true
	}
	return slices.Contains(validation.RuleNames(f.props.String(schema.PropValidate)), validation.RuleRequired)
}

// Trap reports whether the field is the automation trap.
func (f *Field) Trap() bool {
	return f.typ == components.FieldHoneypot || f.name == f.form.compiler.honeypot
}

// Value returns the live value.
func (f *Field) Value() any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneValue(f.value)
}

// Display returns the locally displayed errors. The registry remains the
// source of truth for validity.
func (f *Field) Display() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.display)
}

// State returns the field's validation state.
func (f *Field) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Change stores value and notifies change observers synchronously. Any
// validation still running for the previous value becomes stale.
func (f *Field) Change(value any) {
	if f.typ == components.FieldCheckbox {
		value = stringSlice(value)
	}
	f.mu.Lock()
	f.value = value
	f.mu.Unlock()

	f.form.guard.Bump(f.id)
	f.form.notifyChange(f, cloneValue(value))
}

// Blur validates the current value and reports the result under the field's
// own id. The displayed errors keep their prior state until the rules
// finish. A result is dropped when the value changed in the meantime, a
// later Blur started, or the form was closed.
func (f *Field) Blur(ctx context.Context) (BlurResult, error) {
	ticket := f.form.guard.Begin(f.id)
	value := f.Value()

	messages, err := f.check(ctx, value)
	if err != nil {
		return BlurResult{}, err
	}
	result := BlurResult{Valid: len(messages) == 0, Errors: messages}

	if !f.form.guard.Current(ticket) {
		f.form.logger.Debug("stale validation discarded", "form", f.form.id, "field", f.id, "seq", ticket.Seq)
		return result, nil
	}
	if f.form.Closed() {
		f.form.logger.Debug("validation after close discarded", "form", f.form.id, "field", f.id)
		return result, nil
	}
	if err := f.report(result.Valid, messages); err != nil {
		f.form.logger.Debug("validation report rejected", "form", f.form.id, "field", f.id, "err", err)
		return result, nil
	}

	f.mu.Lock()
	f.display = slices.Clone(messages)
	if result.Valid {
		f.state = Valid
	} else {
		f.state = Invalid
	}
	f.mu.Unlock()

	result.Applied = true
	return result, nil
}

func (f *Field) setDisplay(messages []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.display = slices.Clone(messages)
	f.state = Invalid
}

// Render emits the field with its live value and displayed errors.
func (f *Field) Render() (*markup.Element, error) {
	return f.render(RenderOptions{})
}

func (f *Field) render(opts RenderOptions) (*markup.Element, error) {
	props := f.props.Clone()
	if props == nil {
		props = schema.Properties{}
	}
	if opts.Translator != nil || opts.OnMissing != nil {
		localize(props, opts.Locale, opts.Translator, opts.OnMissing)
	}
	props[schema.PropID] = f.id
	props[schema.PropName] = f.name
	props[components.PropErrors] = f.Display()
	if !f.Trap() {
		props[schema.PropValue] = f.Value()
	}

	entry, ok := f.form.compiler.registry.Resolve(f.typ)
	if !ok {
		return markup.El("div", markup.A(
			"class", "composer-placeholder",
			"role", "note",
			"data-component", f.typ,
			"data-field", f.id,
		), markup.Text("Unknown field: "+f.typ)), nil
	}

	var children []*markup.Element
	if entry.Container {
		optionEntry, ok := f.form.compiler.registry.Resolve(components.FieldOption)
		if ok {
			labels := make(map[string]string, len(f.options))
			for _, choice := range components.Choices(props) {
				labels[choice.Value] = choice.Label
			}
			for _, option := range f.options {
				el, err := optionEntry.Factory(option.props(props, labels[option.value]), nil, f.data())
				if err != nil {
					return nil, err
				}
				children = append(children, el)
			}
		}
	}

	el, err := entry.Factory(props, children, f.data())
	if err != nil {
		return nil, err
	}
	if el != nil {
		el.Component = f.typ
	}
	return el, nil
}

func (f *Field) data() components.Data {
	c := f.form.compiler
	return components.Data{Template: c.template, Partials: c.partials, Tokens: c.tokens}
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		return slices.Clone(v)
	default:
		return v
	}
}

func stringSlice(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := components.FormatValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	default:
		return []string{components.FormatValue(v)}
	}
}
