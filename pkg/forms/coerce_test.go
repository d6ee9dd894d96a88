package forms

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-composer/pkg/schema"
)

func TestCoerceNumericProperties(t *testing.T) {
	input := schema.Properties{
		"id":        "bio",
		"maxLength": "140",
		"minLength": " 3 ",
		"rows":      4.0,
		"cols":      "wide",
		"size":      "",
		"step":      "0.5",
		"label":     "42",
	}

	got := Coerce(input)
	want := schema.Properties{
		"id":        "bio",
		"maxLength": 140.0,
		"minLength": 3.0,
		"rows":      4.0,
		"cols":      "wide",
		"size":      "",
		"step":      0.5,
		"label":     "42",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("coerced properties mismatch (-want +got):\n%s", diff)
	}
	if input["maxLength"] != "140" {
		t.Fatalf("expected input left untouched, got %v", input["maxLength"])
	}
}

func TestCoerceLeavesNonFiniteValues(t *testing.T) {
	input := schema.Properties{"maxLength": "NaN", "rows": "Inf", "cols": "-infinity", "step": "1e400"}
	got := Coerce(input)
	if diff := cmp.Diff(input, got); diff != "" {
		t.Fatalf("expected non-finite values left as text (-want +got):\n%s", diff)
	}
}

func TestCoerceIsIdempotent(t *testing.T) {
	cases := []schema.Properties{
		nil,
		{},
		{"maxLength": "10", "rows": "x"},
		{"step": "1e2", "size": 7},
		{"cols": "  12  ", "minLength": true},
		{"maxLength": "NaN", "rows": "Inf", "cols": "-infinity", "size": "+Inf"},
	}
	for _, props := range cases {
		once := Coerce(props)
		twice := Coerce(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("coercion not idempotent for %v (-once +twice):\n%s", props, diff)
		}
	}
}
