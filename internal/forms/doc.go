// Package forms models the admin panel's editing flows as plain values with
// pure transition functions of the form (state, event) -> state.
//
// Nothing here performs I/O. Identifiers and clock readings are carried in on
// the events so a transition can be replayed with identical results.
package forms
