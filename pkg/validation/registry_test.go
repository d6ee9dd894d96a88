package validation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateAllIffNoInvalidEntry(t *testing.T) {
	r := NewRegistry()
	if !r.ValidateAll() {
		t.Fatalf("expected empty registry to be valid")
	}

	cases := []struct {
		name    string
		reports map[string]bool
		want    bool
	}{
		{name: "all valid", reports: map[string]bool{"a": true, "b": true}, want: true},
		{name: "one invalid", reports: map[string]bool{"a": true, "b": false}, want: false},
		{name: "all invalid", reports: map[string]bool{"a": false, "b": false}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()
			anyInvalid := false
			for id, valid := range tc.reports {
				if err := r.Report(id, valid, nil); err != nil {
					t.Fatalf("report: %v", err)
				}
				anyInvalid = anyInvalid || !valid
			}
			if got := r.ValidateAll(); got != tc.want || got == anyInvalid {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestReporterWritesOnlyItsOwnEntry(t *testing.T) {
	r := NewRegistry()
	email := r.Reporter("email")
	name := r.Reporter("name")

	if err := email(false, []string{" Enter a valid email ", "Enter a valid email", ""}); err != nil {
		t.Fatalf("report: %v", err)
	}
	if err := name(true, nil); err != nil {
		t.Fatalf("report: %v", err)
	}

	want := map[string]Entry{
		"email": {Valid: false, Errors: []string{"Enter a valid email"}},
		"name":  {Valid: true},
	}
	if diff := cmp.Diff(want, r.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"email"}, r.Invalid()); diff != "" {
		t.Fatalf("invalid mismatch (-want +got):\n%s", diff)
	}

	r.Remove("email")
	if _, ok := r.Entry("email"); ok {
		t.Fatalf("expected entry removed")
	}
	if !r.ValidateAll() {
		t.Fatalf("expected valid after removing the invalid entry")
	}
}

func TestEntryReturnsCopy(t *testing.T) {
	r := NewRegistry()
	_ = r.Report("a", false, []string{"bad"})
	entry, _ := r.Entry("a")
	entry.Errors[0] = "mutated"
	again, _ := r.Entry("a")
	if again.Errors[0] != "bad" {
		t.Fatalf("registry entry mutated through copy")
	}
}

func TestClosedRegistryRejectsReports(t *testing.T) {
	r := NewRegistry(WithScope("form-1"))
	_ = r.Report("a", true, nil)
	r.Close()
	r.Close()

	if !r.Closed() || r.Scope() != "form-1" {
		t.Fatalf("unexpected state closed=%v scope=%s", r.Closed(), r.Scope())
	}
	if err := r.Report("a", true, nil); !errors.Is(err, ErrRegistryClosed) {
		t.Fatalf("expected ErrRegistryClosed, got %v", err)
	}
	if len(r.Entries()) != 0 {
		t.Fatalf("expected entries dropped on close")
	}
	if r.ValidateAll() {
		t.Fatalf("closed registry must not validate")
	}
}

func TestRegistriesAreIsolated(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	if a.Scope() == b.Scope() {
		t.Fatalf("expected distinct scopes")
	}
	_ = a.Report("email", false, []string{"bad"})
	if _, ok := b.Entry("email"); ok {
		t.Fatalf("entry leaked across registries")
	}
}

func TestGuardTickets(t *testing.T) {
	var g Guard
	first := g.Begin("email")
	second := g.Begin("email")
	other := g.Begin("name")

	if g.Current(first) {
		t.Fatalf("older ticket must be stale")
	}
	if !g.Current(second) || !g.Current(other) {
		t.Fatalf("latest tickets must be current")
	}

	g.Bump("email")
	if g.Current(second) {
		t.Fatalf("bump must invalidate outstanding tickets")
	}
	if !g.Current(other) {
		t.Fatalf("bump must not affect other fields")
	}
}
