package openapi

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/schema"
)

// ErrOperationNotFound is returned when no operation matches the id.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// Extension keys read from property schemas.
const (
	// WidgetExtension forces a field type, for example "textarea" or "radio".
	WidgetExtension = "x-composer-widget"
	// OrderExtension sorts fields; lower values come first.
	OrderExtension = "x-composer-order"
)

// Operation is one path operation in a parsed document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	Request *openapi3.Schema
}

// Option configures an Importer.
type Option func(*Importer)

// WithBaseURL prefixes operation paths when building the form action.
// Without it the first server URL in the document is used.
func WithBaseURL(base string) Option {
	return func(i *Importer) {
		i.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithHoneypot appends an automation trap field with the given name.
func WithHoneypot(name string) Option {
	return func(i *Importer) {
		i.honeypot = strings.TrimSpace(name)
	}
}

// WithValidation validates the document before extracting operations.
func WithValidation(enabled bool) Option {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// Importer extracts forms from OpenAPI documents.
type Importer struct {
	baseURL  string
	honeypot string
	validate bool
}

// NewImporter constructs an Importer.
func NewImporter(options ...Option) *Importer {
	i := &Importer{}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// FormFromOperation builds a form from the operation with operationID using
// a default Importer.
func FormFromOperation(ctx context.Context, data []byte, operationID string) (schema.Form, error) {
	return NewImporter().FormFromOperation(ctx, data, operationID)
}

// Operations parses data and returns its operations keyed by operationId.
// Operations without an id are keyed "<method>:<path>".
func (i *Importer) Operations(ctx context.Context, data []byte) (map[string]Operation, error) {
	doc, err := i.load(ctx, data)
	if err != nil {
		return nil, err
	}
	return collectOperations(doc), nil
}

// FormFromOperation parses data and derives a form from the request body of
// operationID.
func (i *Importer) FormFromOperation(ctx context.Context, data []byte, operationID string) (schema.Form, error) {
	doc, err := i.load(ctx, data)
	if err != nil {
		return schema.Form{}, err
	}
	op, ok := collectOperations(doc)[strings.TrimSpace(operationID)]
	if !ok {
		return schema.Form{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	base := i.baseURL
	if base == "" && len(doc.Servers) > 0 && doc.Servers[0] != nil {
		base = strings.TrimRight(doc.Servers[0].URL, "/")
	}

	form := schema.Form{
		ID:     op.ID,
		Title:  op.Summary,
		Action: base + op.Path,
		Method: op.Method,
	}
	if op.Request != nil {
		form.Fields = fieldsFromSchema(op.Request, "")
	}
	if i.honeypot != "" {
		form.Fields = append(form.Fields, schema.FieldDescriptor{
			Type:       components.FieldHoneypot,
			Properties: schema.Properties{schema.PropID: i.honeypot, schema.PropName: i.honeypot},
		})
	}
	if err := schema.ValidateForm(form); err != nil {
		return schema.Form{}, fmt.Errorf("openapi: operation %s: %w", op.ID, err)
	}
	return form, nil
}

func (i *Importer) load(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return doc, nil
}

func collectOperations(doc *openapi3.T) map[string]Operation {
	out := make(map[string]Operation)
	if doc.Paths == nil {
		return out
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			if operation == nil {
				continue
			}
			id := operation.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out[id] = Operation{
				ID:      id,
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: operation.Summary,
				Request: requestSchema(operation.RequestBody),
			}
		}
	}
	return out
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "application/json", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// fieldsFromSchema flattens object properties into descriptors. Nested
// objects contribute dotted names so server errors map back onto them.
func fieldsFromSchema(s *openapi3.Schema, prefix string) []schema.FieldDescriptor {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.SliceStable(names, func(a, b int) bool {
		oa, ob := order(s.Properties[names[a]]), order(s.Properties[names[b]])
		if oa != ob {
			return oa < ob
		}
		return names[a] < names[b]
	})

	var out []schema.FieldDescriptor
	for _, name := range names {
		ref := s.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		prop := ref.Value
		fullName := name
		if prefix != "" {
			fullName = prefix + "." + name
		}
		if prop.Type.Is(openapi3.TypeObject) && len(prop.Properties) > 0 {
			out = append(out, fieldsFromSchema(prop, fullName)...)
			continue
		}
		out = append(out, fieldFromProperty(fullName, prop, slices.Contains(s.Required, name)))
	}
	return out
}

func fieldFromProperty(name string, prop *openapi3.Schema, required bool) schema.FieldDescriptor {
	props := schema.Properties{
		schema.PropID:    strings.ReplaceAll(name, ".", "-"),
		schema.PropName:  name,
		schema.PropLabel: label(name, prop.Title),
	}
	if prop.Description != "" {
		props["help"] = prop.Description
	}
	if required {
		props[schema.PropRequired] = true
	}
	if prop.MinLength > 0 {
		props[schema.PropMinLength] = float64(prop.MinLength)
	}
	if prop.MaxLength != nil {
		props[schema.PropMaxLength] = float64(*prop.MaxLength)
	}
	if prop.Pattern != "" {
		props[schema.PropPattern] = prop.Pattern
	}
	if prop.Default != nil {
		props[schema.PropValue] = prop.Default
	}
	if example, ok := prop.Example.(string); ok && example != "" {
		props["placeholder"] = example
	}

	typ := widgetFor(prop)
	if rule := ruleFor(prop); rule != "" {
		props[schema.PropValidate] = rule
	}

	enum := prop.Enum
	if typ == components.FieldCheckbox && prop.Items != nil && prop.Items.Value != nil {
		enum = prop.Items.Value.Enum
	}
	if len(enum) > 0 {
		options := make([]any, 0, len(enum))
		for _, value := range enum {
			options = append(options, components.FormatValue(value))
		}
		props[schema.PropOptions] = options
	}
	if typ == components.FieldNumber {
		if prop.Type.Is(openapi3.TypeInteger) {
			props[schema.PropStep] = "1"
		} else {
			props[schema.PropStep] = "any"
		}
	}

	return schema.FieldDescriptor{Type: typ, Properties: props}
}

func widgetFor(prop *openapi3.Schema) string {
	if widget, ok := prop.Extensions[WidgetExtension].(string); ok && strings.TrimSpace(widget) != "" {
		return strings.ToLower(strings.TrimSpace(widget))
	}
	switch {
	case prop.Type.Is(openapi3.TypeBoolean):
		return components.FieldBoolean
	case prop.Type.Is(openapi3.TypeInteger), prop.Type.Is(openapi3.TypeNumber):
		return components.FieldNumber
	case prop.Type.Is(openapi3.TypeArray):
		return components.FieldCheckbox
	case len(prop.Enum) > 0:
		return components.FieldSelect
	}
	switch strings.ToLower(prop.Format) {
	case "email":
		return components.FieldEmail
	case "uri", "url":
		return components.FieldURL
	case "date":
		return components.FieldDate
	case "password":
		return components.FieldPassword
	case "phone", "tel":
		return components.FieldTel
	}
	if prop.MaxLength != nil && *prop.MaxLength > 255 {
		return components.FieldTextarea
	}
	return components.FieldText
}

func ruleFor(prop *openapi3.Schema) string {
	switch strings.ToLower(prop.Format) {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "date":
		return "date"
	case "phone", "tel":
		return "phone"
	}
	return ""
}

func order(ref *openapi3.SchemaRef) float64 {
	if ref == nil || ref.Value == nil {
		return 0
	}
	switch v := ref.Value.Extensions[OrderExtension].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// label prefers the schema title and otherwise humanises the last name
// segment: "owner.full_name" becomes "Full name".
func label(name, title string) string {
	if strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	if len(words) == 0 {
		return name
	}
	text := strings.ToLower(strings.Join(words, " "))
	return strings.ToUpper(text[:1]) + text[1:]
}
