// Package validation tracks field validity for one form instance and holds
// the named rules fields are checked against.
//
// A Registry is created when a form mounts and closed when it unmounts.
// Fields report through a Reporter bound to their own id, so one field can
// never overwrite another's entry. A Guard issues per-field tickets so a slow
// rule finishing after the value changed again is dropped instead of applied.
package validation
