// Package timezones ships the canonical IANA zone names used to derive
// calendar days for stored dates, plus ranked search and "did you mean"
// suggestions for misspelled zone settings.
//
// The backing list is embedded from data/zones.txt.
package timezones
