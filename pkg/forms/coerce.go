package forms

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-composer/pkg/schema"
)

// NumericProperties lists the sizing properties Coerce converts.
var NumericProperties = []string{
	schema.PropMaxLength,
	schema.PropMinLength,
	schema.PropRows,
	schema.PropCols,
	schema.PropSize,
	schema.PropStep,
}

// Coerce returns a copy of props with textual sizing values converted to
// float64. Values that do not parse cleanly are left as they are, and values
// that are already numeric are untouched, so Coerce(Coerce(p)) equals
// Coerce(p).
func Coerce(props schema.Properties) schema.Properties {
	out := props.Clone()
	for _, key := range NumericProperties {
		raw, ok := out[key].(string)
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		number, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
			continue
		}
		out[key] = number
	}
	return out
}
