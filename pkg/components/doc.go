// Package components maps schema type names to the factories that turn a
// node's properties into markup.
//
// Two registries share the same contract: NewPageRegistry holds layout and
// content widgets for page trees, NewFieldRegistry holds form inputs. A
// registry is configuration: build it at start-up, call Freeze, and share it.
// Leaf widgets render through pongo2 templates (see TemplatesFS) so themes can
// swap markup per widget without touching Go code.
package components
