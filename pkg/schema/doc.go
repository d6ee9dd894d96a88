// Package schema defines the page and form documents the composition engine
// consumes: page trees of typed nodes and flat lists of field descriptors,
// plus loaders that accept either JSON or YAML.
package schema
