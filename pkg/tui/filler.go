package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/forms"
	"github.com/goliatone/go-composer/pkg/schema"
)

// Option configures a Filler.
type Option func(*Filler)

// WithMaxAttempts bounds how often an invalid field is prompted.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// Filler walks a compiled form on the terminal. Each answer goes through the
// field's Change and Blur exactly as browser input would, so the form's
// validation registry ends up in the same state.
type Filler struct {
	driver      PromptDriver
	maxAttempts int
}

// NewFiller builds a Filler. A nil driver prompts with survey.
func NewFiller(driver PromptDriver, options ...Option) *Filler {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	f := &Filler{driver: driver, maxAttempts: 3}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fill prompts for every visible field. Trap and hidden fields are never
// shown.
func (f *Filler) Fill(ctx context.Context, form *forms.Form) error {
	if title := form.Title(); title != "" {
		if err := f.driver.Info(ctx, title); err != nil {
			return err
		}
	}
	for _, field := range form.Fields() {
		if field.Trap() || field.Type() == components.FieldHidden {
			continue
		}
		if err := f.fillField(ctx, field); err != nil {
			return fmt.Errorf("tui: field %s: %w", field.ID(), err)
		}
	}
	return nil
}

func (f *Filler) fillField(ctx context.Context, field *forms.Field) error {
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if err := f.ask(ctx, field); err != nil {
			return err
		}
		result, err := field.Blur(ctx)
		if err != nil {
			return err
		}
		if result.Valid {
			return nil
		}
		if err := f.driver.Info(ctx, "  "+strings.Join(result.Errors, "; ")); err != nil {
			return err
		}
	}
	return ErrTooManyAttempts
}

func (f *Filler) ask(ctx context.Context, field *forms.Field) error {
	props := field.Properties()
	message := props.String(schema.PropLabel)
	if message == "" {
		message = field.Name()
	}
	if field.Required() {
		message += " *"
	}
	help := props.String("help")
	current := components.FormatValue(field.Value())

	switch field.Type() {
	case components.FieldPassword:
		value, err := f.driver.Password(ctx, InputConfig{Message: message, Help: help})
		if err != nil {
			return err
		}
		field.Change(value)
	case components.FieldTextarea:
		value, err := f.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: help, Default: current})
		if err != nil {
			return err
		}
		field.Change(value)
	case components.FieldBoolean:
		value, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Help: help, Default: current == "true"})
		if err != nil {
			return err
		}
		field.Change(value)
	case components.FieldSelect, components.FieldRadio:
		options := field.Options()
		cfg := SelectConfig{Message: message, Help: help, Options: labels(options), DefaultIndex: -1}
		for idx, option := range options {
			if option.Checked() {
				cfg.DefaultIndex = idx
			}
		}
		idx, err := f.driver.Select(ctx, cfg)
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(options) {
			options[idx].Select()
		}
	case components.FieldCheckbox:
		options := field.Options()
		cfg := SelectConfig{Message: message, Help: help, Options: labels(options)}
		for idx, option := range options {
			if option.Checked() {
				cfg.Defaults = append(cfg.Defaults, idx)
			}
		}
		indices, err := f.driver.MultiSelect(ctx, cfg)
		if err != nil {
			return err
		}
		selected := []string{}
		for idx, option := range options {
			if slices.Contains(indices, idx) {
				selected = append(selected, option.Value())
			}
		}
		field.Change(selected)
	default:
		value, err := f.driver.Input(ctx, InputConfig{Message: message, Help: help, Default: current})
		if err != nil {
			return err
		}
		field.Change(strings.TrimSpace(value))
	}
	return nil
}

func labels(options []*forms.Choice) []string {
	out := make([]string, len(options))
	for idx, option := range options {
		out[idx] = option.Label()
	}
	return out
}
