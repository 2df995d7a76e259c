// Package datepicker binds a date adapter to a form field and a calendar
// picker widget.
//
// Binding registers the adapter's ToDisplay as the field's read-side
// transform and FromDisplay as its write-side transform, then subscribes to
// the picker. Each selection sets the field's raw text and runs the form's
// propagation cycle synchronously, so the stored value is updated exactly
// once before the picker callback returns. Close releases the subscription.
//
// Two pickers ship with the package: Emitter for programmatic use and
// TerminalPicker, which prompts on the terminal through survey.
package datepicker
