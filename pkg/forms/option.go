package forms

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/schema"
)

// Choice is one option of a radio, checkbox or select field. It holds no
// selection state: Checked reads the owning field's live value and Select or
// Toggle write through the owner's Change.
type Choice struct {
	owner *Field
	index int
	value string
	label string
}

func buildOptions(field *Field) []*Choice {
	switch field.typ {
	case components.FieldRadio, components.FieldCheckbox, components.FieldSelect:
	default:
		return nil
	}
	choices := components.Choices(field.props)
	out := make([]*Choice, 0, len(choices))
	for idx, choice := range choices {
		out = append(out, &Choice{owner: field, index: idx, value: choice.Value, label: choice.Label})
	}
	return out
}

// Value returns the submitted value.
func (o *Choice) Value() string { return o.value }

// Label returns the display label.
func (o *Choice) Label() string { return o.label }

// Checked reports whether the owning field currently selects this option.
func (o *Choice) Checked() bool {
	value := o.owner.Value()
	if o.owner.typ == components.FieldCheckbox {
		return slices.Contains(stringSlice(value), o.value)
	}
	return components.FormatValue(value) == o.value
}

// Select makes this option the owner's value, deselecting its siblings. On a
// checkbox group it checks the option.
func (o *Choice) Select() {
	if o.owner.typ == components.FieldCheckbox {
		if !o.Checked() {
			o.Toggle()
		}
		return
	}
	o.owner.Change(o.value)
}

// Toggle adds or removes this option from a checkbox group's value. On other
// groups it behaves like Select.
func (o *Choice) Toggle() {
	if o.owner.typ != components.FieldCheckbox {
		o.owner.Change(o.value)
		return
	}
	current := stringSlice(o.owner.Value())
	if idx := slices.Index(current, o.value); idx >= 0 {
		o.owner.Change(slices.Delete(current, idx, idx+1))
		return
	}
	o.owner.Change(append(current, o.value))
}

func (o *Choice) props(owner schema.Properties, label string) schema.Properties {
	if label == "" {
		label = o.label
	}
	return schema.Properties{
		schema.PropID:        fmt.Sprintf("%s-%d", o.owner.id, o.index),
		schema.PropName:      o.owner.name,
		schema.PropValue:     o.value,
		schema.PropLabel:     label,
		components.PropGroup: o.owner.typ,
		"checked":            o.Checked(),
		"disabled":           owner.Bool("disabled"),
	}
}
