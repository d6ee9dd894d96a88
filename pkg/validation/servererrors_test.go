package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMapServerErrors(t *testing.T) {
	keys := map[string]string{
		"full_name":     "name",
		"name":          "name",
		"owner.email":   "owner-email",
		"owner-email":   "owner-email",
		"tags":          "tags",
		"contact.phone": "phone",
	}

	payload := map[string][]string{
		"/body/full_name":            {"Name is required"},
		"body.owner.email":           {"Email invalid"},
		"$.body.tags[0]":             {"Tags must be unique"},
		"contact/phone/~1number":     {"Phone malformed"},
		"non_field_errors":           {"Form level error"},
		"request/body/unknown-field": {"Should fall back to form errors"},
		"":                           {"Unscoped form error"},
		"name":                       {" Name is required "},
	}

	mapped := MapServerErrors(keys, payload)

	wantFields := map[string][]string{
		"name":        {"Name is required"},
		"owner-email": {"Email invalid"},
		"tags":        {"Tags must be unique"},
		"phone":       {"Phone malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}

	r := NewRegistry()
	if err := mapped.Apply(r); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if r.ValidateAll() {
		t.Fatalf("expected server errors to invalidate the registry")
	}
	if entry, _ := r.Entry("phone"); entry.Valid || entry.Errors[0] != "Phone malformed" {
		t.Fatalf("unexpected phone entry %+v", entry)
	}
}

func TestMergeMessages(t *testing.T) {
	merged := MergeMessages([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged messages mismatch (-want +got):\n%s", diff)
	}
}
