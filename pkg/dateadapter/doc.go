// Package dateadapter converts dates between the stored epoch-milliseconds
// form used on the wire and the DD/MM/YYYY string shown in form fields.
//
// Conversions are computed in a single configured time zone (UTC unless
// overridden) so that FromDisplay(ToDisplay(t)) yields the start of t's
// calendar day. Malformed input fails with ErrInvalidStoredDate or
// ErrInvalidDisplayDate.
package dateadapter
