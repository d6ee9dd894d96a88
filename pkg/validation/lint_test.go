package validation

import (
	"strings"
	"testing"

	"github.com/goliatone/go-composer/pkg/schema"
)

func TestLintPageReportsUnknownTypes(t *testing.T) {
	known := func(name string) bool { return name == "section" || name == "text" }
	p := schema.Page{Components: []schema.Node{
		{Type: "section", Children: []schema.Node{{Type: "Foo"}}},
		{Type: "text"},
	}}

	result := LintPage(p, known)
	if result.Valid || len(result.Issues) != 1 {
		t.Fatalf("expected one issue, got %+v", result)
	}
	if result.Issues[0].Path != "root[0].children[0]" || !strings.Contains(result.Issues[0].Message, "Foo") {
		t.Fatalf("unexpected issue %+v", result.Issues[0])
	}
}

func TestLintForm(t *testing.T) {
	rules := NewRuleSet()
	known := func(name string) bool { return name == "text" }

	ok := schema.Form{Fields: []schema.FieldDescriptor{{Type: "text", Properties: schema.Properties{"id": "a", "validate": "email"}}}}
	if result := LintForm(ok, known, rules); !result.Valid {
		t.Fatalf("expected valid form, got %+v", result)
	}

	bad := schema.Form{Fields: []schema.FieldDescriptor{
		{Type: "text", Properties: schema.Properties{"id": "a", "validate": "shoeSize"}},
		{Type: "widget", Properties: schema.Properties{"id": "b"}},
	}}
	result := LintForm(bad, known, rules)
	if result.Valid || len(result.Issues) != 2 {
		t.Fatalf("expected two issues, got %+v", result)
	}
	if result.Issues[0].Field != "a" || !strings.Contains(result.Issues[0].Message, "shoeSize") {
		t.Fatalf("unexpected rule issue %+v", result.Issues[0])
	}

	dup := schema.Form{Fields: []schema.FieldDescriptor{
		{Type: "text", Properties: schema.Properties{"id": "a"}},
		{Type: "text", Properties: schema.Properties{"id": "a"}},
	}}
	if result := LintForm(dup, known, rules); result.Valid {
		t.Fatalf("expected duplicate ids to fail lint")
	}
}
