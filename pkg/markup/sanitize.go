package markup

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicyOnce sync.Once
	richTextPolicy     *bluemonday.Policy
)

// Sanitize strips scripts, event handlers and unknown elements from
// author-supplied rich text, keeping the usual formatting tags.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(sanitizer().Sanitize(trimmed))
}

// SanitizedRaw sanitises value and wraps it as a Raw element. Empty output
// yields nil so callers can Append unconditionally.
func SanitizedRaw(value string) *Element {
	cleaned := Sanitize(value)
	if cleaned == "" {
		return nil
	}
	return Raw(cleaned)
}

func sanitizer() *bluemonday.Policy {
	richTextPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").OnElements("p", "span", "div", "ul", "ol", "li", "blockquote", "code", "pre")
		policy.RequireNoFollowOnLinks(true)
		richTextPolicy = policy
	})
	return richTextPolicy
}
