package components

import (
	"strings"
	"testing"

	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/schema"
)

func testData(t *testing.T) Data {
	t.Helper()
	engine, err := NewTemplateEngine()
	if err != nil {
		t.Fatalf("template engine: %v", err)
	}
	return Data{Template: engine}
}

func build(t *testing.T, reg *Registry, name string, props schema.Properties, data Data, children ...*markup.Element) string {
	t.Helper()
	entry, ok := reg.Resolve(name)
	if !ok {
		t.Fatalf("component %q not registered", name)
	}
	el, err := entry.Factory(props, children, data)
	if err != nil {
		t.Fatalf("factory %q: %v", name, err)
	}
	return markup.String(el)
}

func TestPageWidgets(t *testing.T) {
	reg := NewPageRegistry()
	data := testData(t)

	tests := []struct {
		name  string
		props schema.Properties
		want  []string
	}{
		{name: NameHeading, props: schema.Properties{"text": "Hello & welcome", "level": "3"}, want: []string{`<h3 class="composer-heading">Hello &amp; welcome</h3>`}},
		{name: NameHeading, props: schema.Properties{"text": "Default"}, want: []string{`<h2 `}},
		{name: NameHeading, props: schema.Properties{"text": "Padded", "class": "  big  "}, want: []string{`<h2 class="composer-heading big">`}},
		{name: NameImage, props: schema.Properties{"src": "/a.png", "alt": "A", "width": 40}, want: []string{`src="/a.png"`, `width="40"`}},
		{name: NameButton, props: schema.Properties{"label": "Go"}, want: []string{`<button class="composer-button composer-button--primary" type="button">Go</button>`}},
		{name: NameButton, props: schema.Properties{"label": "Go", "href": "/next"}, want: []string{`href="/next"`, `role="button"`}},
		{name: NameLink, props: schema.Properties{"href": "https://example.com", "target": "_blank"}, want: []string{`rel="noopener noreferrer"`, `>https://example.com</a>`}},
		{name: NameText, props: schema.Properties{"text": "<b>x</b>"}, want: []string{`<p class="composer-text">&lt;b&gt;x&lt;/b&gt;</p>`}},
		{name: NameRichText, props: schema.Properties{"html": "<p>ok<script>x</script></p>"}, want: []string{`<p>ok</p>`}},
		{name: NameDivider, props: nil, want: []string{`<hr class="composer-divider">`}},
		{name: NameSpacer, props: schema.Properties{"size": 32}, want: []string{`height: 32px`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, reg, tt.name, tt.props, data)
			for _, fragment := range tt.want {
				if !strings.Contains(got, fragment) {
					t.Fatalf("expected %q in %s", fragment, got)
				}
			}
			if strings.Contains(got, "<script") {
				t.Fatalf("unexpected script in %s", got)
			}
		})
	}
}

func TestContainersPlaceChildren(t *testing.T) {
	reg := NewPageRegistry()
	child := markup.El("span", nil, markup.Text("child"))

	got := build(t, reg, NameSection, schema.Properties{"title": "Intro"}, Data{}, child)
	want := `<section class="composer-section"><h2 class="composer-section__title">Intro</h2><span>child</span></section>`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	got = build(t, reg, NameList, schema.Properties{"ordered": true, "items": []any{"one"}}, Data{}, child)
	want = `<ol class="composer-list"><li>one</li><li><span>child</span></li></ol>`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLeafWidgetsKeepChildren(t *testing.T) {
	reg := NewPageRegistry()
	data := testData(t)
	props := schema.Properties{"text": "h", "label": "l", "href": "/x", "src": "/a.png"}

	for _, name := range []string{NameHeading, NameImage, NameButton, NameLink, NameDivider, NameSpacer} {
		t.Run(name, func(t *testing.T) {
			child := markup.El("span", nil, markup.Text("kept"))
			got := build(t, reg, name, props, data, child)
			if !strings.HasPrefix(got, `<div class="composer-leaf">`) || !strings.HasSuffix(got, `<span>kept</span></div>`) {
				t.Fatalf("expected child after the widget, got %s", got)
			}
		})
	}

	if got := build(t, reg, NameDivider, nil, data); got != `<hr class="composer-divider">` {
		t.Fatalf("expected bare divider without children, got %s", got)
	}
}

func TestTemplateWidgetsRequireEngine(t *testing.T) {
	entry, _ := NewPageRegistry().Resolve(NameHeading)
	if _, err := entry.Factory(schema.Properties{"text": "x"}, nil, Data{}); err == nil {
		t.Fatalf("expected error without template renderer")
	}
}

func TestPartialOverride(t *testing.T) {
	data := testData(t)
	data.Partials = map[string]string{"page.heading": "page/link"}

	got := build(t, NewPageRegistry(), NameHeading, schema.Properties{"text": "x"}, data)
	if !strings.HasPrefix(got, `<a class="composer-link"`) {
		t.Fatalf("expected override template to be used, got %s", got)
	}
}

func TestFieldWidgets(t *testing.T) {
	reg := NewFieldRegistry()
	data := testData(t)

	got := build(t, reg, FieldEmail, schema.Properties{
		"id": "email", "label": "Email", "required": true, "maxLength": 64, "value": "a@b.co",
		"errors": []string{"Enter a valid email"},
	}, data)
	for _, fragment := range []string{
		`type="email"`, `id="email"`, `name="email"`, `value="a@b.co"`, `maxlength="64"`,
		`aria-invalid="true"`, `<li>Enter a valid email</li>`, "composer-field--invalid",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %q in %s", fragment, got)
		}
	}

	got = build(t, reg, FieldPassword, schema.Properties{"id": "pw", "value": "secret"}, data)
	if strings.Contains(got, "secret") {
		t.Fatalf("password value must not be echoed: %s", got)
	}

	got = build(t, reg, FieldTextarea, schema.Properties{"id": "bio", "rows": 4, "value": "hi"}, data)
	if !strings.Contains(got, `rows="4"`) || !strings.Contains(got, ">hi</textarea>") {
		t.Fatalf("unexpected textarea: %s", got)
	}

	got = build(t, reg, FieldSelect, schema.Properties{"id": "color", "value": "g", "options": []any{"r", "g"}}, data)
	if !strings.Contains(got, `<option value="g" selected>g</option>`) || strings.Contains(got, `value="r" selected`) {
		t.Fatalf("unexpected select: %s", got)
	}
}

func TestOptionGroupAndHoneypot(t *testing.T) {
	reg := NewFieldRegistry()

	option := build(t, reg, FieldOption, schema.Properties{"id": "size-m", "name": "size", "value": "m", "label": "Medium", "checked": true, "group": FieldCheckbox}, Data{})
	if !strings.Contains(option, `type="checkbox"`) || !strings.Contains(option, `checked="checked"`) {
		t.Fatalf("unexpected option: %s", option)
	}

	group := build(t, reg, FieldRadio, schema.Properties{"id": "size", "label": "Size"}, Data{}, markup.Raw(option))
	if !strings.HasPrefix(group, `<fieldset id="size" role="radiogroup"`) || !strings.Contains(group, "<legend>Size</legend>") {
		t.Fatalf("unexpected group: %s", group)
	}

	trap := build(t, reg, FieldHoneypot, schema.Properties{"id": "hp", "value": "bot"}, Data{})
	if strings.Contains(trap, "bot") || !strings.Contains(trap, `tabindex="-1"`) || !strings.Contains(trap, `name="hp"`) {
		t.Fatalf("unexpected honeypot: %s", trap)
	}
}
