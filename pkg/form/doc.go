// Package form models the host side of a form field binding: a read pipeline
// that formats stored values for display, a write pipeline that parses
// display text back into stored values, per-field validation state, and a
// synchronous change-propagation cycle (Form.Apply) that commits text staged
// by widgets.
package form
