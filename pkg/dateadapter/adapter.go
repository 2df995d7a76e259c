package dateadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidStoredDate is returned when a stored value is not an integer
	// epoch-milliseconds value inside the supported range.
	ErrInvalidStoredDate = errors.New("dateadapter: invalid stored date")
	// ErrInvalidDisplayDate is returned when a display string does not match
	// the configured layout or names an impossible calendar day.
	ErrInvalidDisplayDate = errors.New("dateadapter: invalid display date")
)

// DefaultLayout renders dates as DD/MM/YYYY.
const DefaultLayout = "02/01/2006"

// ValidationKey is the key adapter failures are reported under in a form
// field's validation state.
const ValidationKey = "date"

const (
	minYear = 1
	maxYear = 9999
)

// Option configures an Adapter.
type Option func(*Adapter) error

// WithLayout overrides the display layout (Go reference time syntax).
func WithLayout(layout string) Option {
	return func(a *Adapter) error {
		layout = strings.TrimSpace(layout)
		if layout == "" {
			return errors.New("dateadapter: layout is empty")
		}
		a.layout = layout
		return nil
	}
}

// WithLocation sets the time zone used to derive calendar days.
func WithLocation(loc *time.Location) Option {
	return func(a *Adapter) error {
		if loc == nil {
			return errors.New("dateadapter: location is nil")
		}
		a.location = loc
		return nil
	}
}

// WithTimeZone loads an IANA zone name such as "Europe/Warsaw". An empty name
// keeps UTC.
func WithTimeZone(name string) Option {
	return func(a *Adapter) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			return fmt.Errorf("dateadapter: load time zone %q: %w", name, err)
		}
		a.location = loc
		return nil
	}
}

// Adapter converts between stored epoch milliseconds and a display date
// string. It is immutable once constructed.
type Adapter struct {
	layout   string
	location *time.Location
}

// New builds an Adapter using DefaultLayout and UTC unless overridden.
func New(options ...Option) (*Adapter, error) {
	adapter := &Adapter{
		layout:   DefaultLayout,
		location: time.UTC,
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(adapter); err != nil {
			return nil, err
		}
	}
	return adapter, nil
}

// MustNew panics when options fail.
func MustNew(options ...Option) *Adapter {
	adapter, err := New(options...)
	if err != nil {
		panic(err)
	}
	return adapter
}

// Layout returns the display layout.
func (a *Adapter) Layout() string { return a.layout }

// Location returns the time zone calendar days are computed in.
func (a *Adapter) Location() *time.Location { return a.location }

// ToDisplay renders a stored epoch-milliseconds value. Unset values (nil or
// an empty string) produce an empty display value.
func (a *Adapter) ToDisplay(stored any) (string, error) {
	millis, set, err := epochMillis(stored)
	if err != nil {
		return "", err
	}
	if !set {
		return "", nil
	}
	instant := time.UnixMilli(millis).In(a.location)
	if year := instant.Year(); year < minYear || year > maxYear {
		return "", fmt.Errorf("%w: %d is outside the supported range", ErrInvalidStoredDate, millis)
	}
	return instant.Format(a.layout), nil
}

// FromDisplay parses a display string and returns the epoch milliseconds of
// the start of that day in the adapter's time zone.
func (a *Adapter) FromDisplay(display string) (int64, error) {
	trimmed := strings.TrimSpace(display)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidDisplayDate)
	}
	parsed, err := time.ParseInLocation(a.layout, trimmed, a.location)
	if err != nil {
		return 0, fmt.Errorf("%w: %q does not match %s", ErrInvalidDisplayDate, trimmed, a.layout)
	}
	if year := parsed.Year(); year < minYear || year > maxYear {
		return 0, fmt.Errorf("%w: %q is outside the supported range", ErrInvalidDisplayDate, trimmed)
	}
	day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, a.location)
	return day.UnixMilli(), nil
}

// FormatValue is the read-side transform for form fields: it renders a stored
// value for display.
func (a *Adapter) FormatValue(value any) (any, error) {
	return a.ToDisplay(value)
}

// ParseValue is the write-side transform for form fields. Blank input clears
// the stored value instead of failing.
func (a *Adapter) ParseValue(value any) (any, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil, nil
		}
		return a.FromDisplay(typed)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidDisplayDate, value)
	}
}

// StartOfDay truncates an epoch-milliseconds value to the first instant of its
// calendar day in the adapter's time zone.
func (a *Adapter) StartOfDay(millis int64) int64 {
	instant := time.UnixMilli(millis).In(a.location)
	return time.Date(instant.Year(), instant.Month(), instant.Day(), 0, 0, 0, 0, a.location).UnixMilli()
}

func epochMillis(stored any) (int64, bool, error) {
	switch typed := stored.(type) {
	case nil:
		return 0, false, nil
	case string:
		return parseMillis(typed)
	case *string:
		if typed == nil {
			return 0, false, nil
		}
		return parseMillis(*typed)
	case json.Number:
		return parseMillis(typed.String())
	case int:
		return int64(typed), true, nil
	case int8:
		return int64(typed), true, nil
	case int16:
		return int64(typed), true, nil
	case int32:
		return int64(typed), true, nil
	case int64:
		return typed, true, nil
	case *int64:
		if typed == nil {
			return 0, false, nil
		}
		return *typed, true, nil
	case uint:
		return unsignedMillis(uint64(typed))
	case uint8:
		return int64(typed), true, nil
	case uint16:
		return int64(typed), true, nil
	case uint32:
		return int64(typed), true, nil
	case uint64:
		return unsignedMillis(typed)
	case float64:
		return floatMillis(typed)
	case float32:
		return floatMillis(float64(typed))
	case time.Time:
		if typed.IsZero() {
			return 0, false, nil
		}
		return typed.UnixMilli(), true, nil
	default:
		return 0, false, fmt.Errorf("%w: unsupported type %T", ErrInvalidStoredDate, stored)
	}
}

func parseMillis(raw string) (int64, bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false, nil
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q is not an integer", ErrInvalidStoredDate, raw)
	}
	return value, true, nil
}

func unsignedMillis(value uint64) (int64, bool, error) {
	if value > math.MaxInt64 {
		return 0, false, fmt.Errorf("%w: %d overflows", ErrInvalidStoredDate, value)
	}
	return int64(value), true, nil
}

func floatMillis(value float64) (int64, bool, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, false, fmt.Errorf("%w: %v is not an integer", ErrInvalidStoredDate, value)
	}
	if value > math.MaxInt64 || value < math.MinInt64 {
		return 0, false, fmt.Errorf("%w: %v overflows", ErrInvalidStoredDate, value)
	}
	return int64(value), true, nil
}
