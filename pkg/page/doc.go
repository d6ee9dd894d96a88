// Package page renders page trees into markup.
//
// A Render call is one pass: every node gets a positional path such as
// root[0].children[2], and in edit mode each node is wrapped with a toolbar
// whose actions are bound to that pass only. Paths shift after any
// structural edit, so callers dispatch actions against the Pass that produced
// them and re-render from the updated tree before the next action.
package page
