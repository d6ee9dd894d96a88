package validation

import (
	"strconv"
	"strings"
)

// ErrorMapping splits a server error payload into per-field messages keyed by
// field id and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapServerErrors normalises a server error payload onto field ids. keys maps
// every name a server might use for a field (its submitted name and its id,
// possibly dotted) to the field id. Payload paths may be dotted, bracketed or
// JSON pointers, optionally wrapped in body/request/payload/data segments.
// Unknown paths become form-level messages so nothing is lost.
func MapServerErrors(keys map[string]string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]struct{}, len(keys))
	for key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			known[trimmed] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		matched, formLevel := mapErrorPath(rawPath, known)
		if formLevel || matched == "" {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		id := keys[matched]
		mapping.Fields[id] = MergeMessages(mapping.Fields[id], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// Apply records every mapped field error as an invalid entry.
func (m ErrorMapping) Apply(r *Registry) error {
	for id, messages := range m.Fields {
		if err := r.Report(id, false, messages); err != nil {
			return err
		}
	}
	return nil
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	best := ""
	for _, variant := range segmentVariants(segments) {
		if path := longestMatchingPath(variant, known); path != "" {
			if strings.Count(path, ".") > strings.Count(best, ".") || best == "" {
				best = path
			}
		}
	}
	if best != "" {
		return best, false
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for _, prefix := range []string{"#/", "$/", "$."} {
		clean = strings.TrimPrefix(clean, prefix)
	}
	clean = strings.TrimLeft(clean, "#/.$")

	clean = strings.NewReplacer("[", ".", "]", "", "//", "/").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func segmentVariants(segments []string) [][]string {
	var variants [][]string
	seen := make(map[string]struct{}, 4)
	add := func(candidate []string) {
		if len(candidate) == 0 {
			return
		}
		key := strings.Join(candidate, ".")
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, append([]string(nil), candidate...))
	}

	add(segments)
	unwrapped := dropWrapperSegments(segments)
	add(unwrapped)
	add(stripNumericSegments(segments))
	add(stripNumericSegments(unwrapped))
	return variants
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"fields":     {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestMatchingPath(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
