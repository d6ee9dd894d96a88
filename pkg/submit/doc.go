// Package submit gates the terminal submit action of a compiled form.
//
// The Gate always prevents the default transport, forces a method when none
// was given, checks the form's validity and only then forwards the event to
// the caller's handler. A filled honeypot short-circuits before validation:
// nothing is transmitted, yet the caller observes the same completion signal
// and a similar delay as a genuine success.
package submit
