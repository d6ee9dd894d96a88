package forms

import (
	"errors"
	"strings"

	"github.com/goliatone/go-composer/pkg/schema"
)

// ErrMissingTranslator is passed to the missing handler when a key needs
// translating but no Translator was configured.
var ErrMissingTranslator = errors.New("forms: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return f(locale, key, args...)
}

// MissingTranslationHandler decides what to render when a key cannot be
// translated.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Property keys whose value names a message key for a sibling property.
var localizedProperties = map[string]string{
	"labelKey":       "label",
	"placeholderKey": "placeholder",
	"helpKey":        "help",
}

// localize resolves every *Key property into its target property. Options
// with a labelKey are translated too.
func localize(props schema.Properties, locale string, t Translator, onMissing MissingTranslationHandler) {
	for keyProp, target := range localizedProperties {
		key := props.String(keyProp)
		if key == "" {
			continue
		}
		props[target] = translate(locale, key, props.String(target), t, onMissing)
	}

	items, ok := props[schema.PropOptions].([]any)
	if !ok {
		return
	}
	for idx, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		option := schema.Properties(entry)
		key := option.String("labelKey")
		if key == "" {
			continue
		}
		option["label"] = translate(locale, key, option.String("label"), t, onMissing)
		items[idx] = map[string]any(option)
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}
