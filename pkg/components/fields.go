package components

import (
	"slices"

	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/schema"
)

// HoneypotName is the conventional name of the automation trap field.
const HoneypotName = "honeypot"

// NewFieldRegistry returns a registry with the built-in form widgets. Radio
// and checkbox groups are containers: the compiler renders their options as
// children bound to the owning field.
func NewFieldRegistry() *Registry {
	registry := New()

	for _, inputType := range []string{FieldText, FieldEmail, FieldPassword, FieldNumber, FieldTel, FieldURL, FieldDate} {
		registry.MustRegister(inputType, Entry{Factory: inputFactory(inputType)})
	}
	registry.MustRegister(FieldTextarea, Entry{Factory: textareaFactory})
	registry.MustRegister(FieldSelect, Entry{Factory: selectFactory})
	registry.MustRegister(FieldRadio, Entry{Factory: groupFactory(FieldRadio), Container: true})
	registry.MustRegister(FieldCheckbox, Entry{Factory: groupFactory(FieldCheckbox), Container: true})
	registry.MustRegister(FieldBoolean, Entry{Factory: booleanFactory})
	registry.MustRegister(FieldOption, Entry{Factory: optionFactory})
	registry.MustRegister(FieldHidden, Entry{Factory: hiddenFactory})
	registry.MustRegister(FieldHoneypot, Entry{Factory: honeypotFactory})

	return registry
}

type fieldView struct {
	ID          string       `mapstructure:"id"`
	Name        string       `mapstructure:"name"`
	Type        string       `mapstructure:"type"`
	Label       string       `mapstructure:"label"`
	Placeholder string       `mapstructure:"placeholder"`
	Help        string       `mapstructure:"help"`
	Required    bool         `mapstructure:"required"`
	Disabled    bool         `mapstructure:"disabled"`
	MinLength   int          `mapstructure:"minLength"`
	MaxLength   int          `mapstructure:"maxLength"`
	Rows        int          `mapstructure:"rows"`
	Cols        int          `mapstructure:"cols"`
	Size        int          `mapstructure:"size"`
	Step        string       `mapstructure:"step"`
	Pattern     string       `mapstructure:"pattern"`
	Value       string       `mapstructure:"value"`
	Errors      []string     `mapstructure:"errors"`
	Invalid     bool         `mapstructure:"invalid"`
	Class       string       `mapstructure:"class"`
	Choices     []choiceView `mapstructure:"choices"`
}

type choiceView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

func newFieldView(inputType string, p FieldProps) fieldView {
	return fieldView{
		ID:          p.ID,
		Name:        p.InputName(),
		Type:        inputType,
		Label:       p.Label,
		Placeholder: p.Placeholder,
		Help:        p.Help,
		Required:    p.Required,
		Disabled:    p.Disabled,
		MinLength:   p.MinLength,
		MaxLength:   p.MaxLength,
		Rows:        p.Rows,
		Cols:        p.Cols,
		Size:        p.Size,
		Step:        p.Step,
		Pattern:     p.Pattern,
		Value:       FormatValue(p.Value),
		Errors:      p.Errors,
		Invalid:     len(p.Errors) > 0,
		Class:       p.Class,
	}
}

func inputFactory(inputType string) Factory {
	return func(props schema.Properties, _ []*markup.Element, data Data) (*markup.Element, error) {
		var p FieldProps
		if err := Decode(props, &p); err != nil {
			return nil, err
		}
		view := newFieldView(inputType, p)
		if inputType == FieldPassword {
			view.Value = ""
		}
		return renderPartial(data, "forms.input", view)
	}
}

func textareaFactory(props schema.Properties, _ []*markup.Element, data Data) (*markup.Element, error) {
	var p FieldProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	return renderPartial(data, "forms.textarea", newFieldView(FieldTextarea, p))
}

func selectFactory(props schema.Properties, _ []*markup.Element, data Data) (*markup.Element, error) {
	var p FieldProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	view := newFieldView(FieldSelect, p)
	for _, choice := range Choices(props) {
		view.Choices = append(view.Choices, choiceView{
			Value:    choice.Value,
			Label:    choice.Label,
			Selected: choice.Value == view.Value,
		})
	}
	return renderPartial(data, "forms.select", view)
}

// groupFactory wraps option children in a fieldset. The options carry their
// own checked state, read from the owning field at render time.
func groupFactory(kind string) Factory {
	return func(props schema.Properties, children []*markup.Element, _ Data) (*markup.Element, error) {
		var p FieldProps
		if err := Decode(props, &p); err != nil {
			return nil, err
		}
		role := "group"
		if kind == FieldRadio {
			role = "radiogroup"
		}
		el := markup.El("fieldset", markup.A("id", p.ID, "role", role))
		el.AddClass("composer-field", "composer-field--"+kind, p.Class)
		if len(p.Errors) > 0 {
			el.AddClass("composer-field--invalid")
			el.SetAttr("aria-invalid", "true")
		}
		if p.Label != "" {
			el.Append(markup.El("legend", nil, markup.Text(p.Label)))
		}
		el.Append(children...)
		return el.Append(errorList(p.ID, p.Errors)), nil
	}
}

func optionFactory(props schema.Properties, _ []*markup.Element, _ Data) (*markup.Element, error) {
	var p FieldProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	inputType := "radio"
	if p.Group == FieldCheckbox {
		inputType = "checkbox"
	}
	input := markup.El("input", markup.A(
		"type", inputType,
		"id", p.ID,
		"name", p.InputName(),
		"value", FormatValue(p.Value),
	))
	if p.Checked {
		input.SetAttr("checked", "checked")
	}
	if p.Disabled {
		input.SetAttr("disabled", "disabled")
	}
	label := p.Label
	if label == "" {
		label = FormatValue(p.Value)
	}
	return markup.El("label", markup.A("class", "composer-option", "for", p.ID), input, markup.Text(" "+label)), nil
}

func booleanFactory(props schema.Properties, _ []*markup.Element, _ Data) (*markup.Element, error) {
	var p FieldProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	input := markup.El("input", markup.A("type", "checkbox", "id", p.ID, "name", p.InputName(), "value", "true"))
	if truthy(p.Value) {
		input.SetAttr("checked", "checked")
	}
	if p.Required {
		input.SetAttr("required", "required")
	}
	el := markup.El("div", nil,
		markup.El("label", markup.A("for", p.ID), input, markup.Text(" "+p.Label)),
		errorList(p.ID, p.Errors),
	)
	el.AddClass("composer-field", "composer-field--boolean", p.Class)
	return el, nil
}

func hiddenFactory(props schema.Properties, _ []*markup.Element, _ Data) (*markup.Element, error) {
	var p FieldProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	return markup.El("input", markup.A("type", "hidden", "id", p.ID, "name", p.InputName(), "value", FormatValue(p.Value))), nil
}

// honeypotFactory renders the trap field off-screen and out of the tab order.
// The value is never echoed back.
func honeypotFactory(props schema.Properties, _ []*markup.Element, _ Data) (*markup.Element, error) {
	var p FieldProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	name := p.InputName()
	if name == "" {
		name = HoneypotName
	}
	id := p.ID
	if id == "" {
		id = name
	}
	return markup.El("div", markup.A(
		"class", "composer-hp",
		"aria-hidden", "true",
		"style", "position:absolute;left:-10000px;width:1px;height:1px;overflow:hidden",
	),
		markup.El("label", markup.A("for", id), markup.Text("Leave this field empty")),
		markup.El("input", markup.A("type", "text", "id", id, "name", name, "value", "", "tabindex", "-1", "autocomplete", "off")),
	), nil
}

func errorList(id string, errors []string) *markup.Element {
	if len(errors) == 0 {
		return nil
	}
	list := markup.El("ul", markup.A("class", "composer-field__errors", "id", id+"-errors", "role", "alert"))
	for _, message := range errors {
		list.Append(markup.El("li", nil, markup.Text(message)))
	}
	return list
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return slices.Contains([]string{"1", "true", "on", "yes"}, v)
	default:
		return false
	}
}
