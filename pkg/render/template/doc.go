// Package template defines the renderer-agnostic template contract component
// factories depend on, keeping the pongo2 engine behind an interface.
package template
