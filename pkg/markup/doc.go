// Package markup holds the element tree component factories return and the
// HTML writer that serialises it.
package markup
