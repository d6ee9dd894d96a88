// Package openapi turns the request body of an OpenAPI operation into a form
// document the forms compiler accepts. Documents are parsed with
// kin-openapi; local references are resolved before fields are derived.
package openapi
