// Package forms compiles flat field descriptors into bound fields.
//
// A compiled Form owns one validation registry for its lifetime. Each Field
// keeps its live value, reports changes synchronously and runs its rules on
// Blur; results that arrive after a newer change, or after the form was
// closed, are dropped. Radio and checkbox options read and write the owning
// field's value instead of holding their own selection state.
package forms
