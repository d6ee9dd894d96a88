package markup

// Walk visits elements depth-first. Returning false from fn skips the
// element's children.
func Walk(elements []*Element, fn func(el *Element) bool) {
	for _, el := range elements {
		if el == nil {
			continue
		}
		if !fn(el) {
			continue
		}
		Walk(el.Children, fn)
	}
}

// FindAll collects every element matching pred.
func FindAll(elements []*Element, pred func(el *Element) bool) []*Element {
	var out []*Element
	Walk(elements, func(el *Element) bool {
		if pred(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// WithAttr matches elements carrying key, and value when value is non-empty.
func WithAttr(key, value string) func(el *Element) bool {
	return func(el *Element) bool {
		got, ok := el.Attr(key)
		if !ok {
			return false
		}
		return value == "" || got == value
	}
}

// Components returns every element produced by a component factory, in
// depth-first order.
func Components(elements []*Element) []*Element {
	return FindAll(elements, func(el *Element) bool {
		return el.Component != ""
	})
}
