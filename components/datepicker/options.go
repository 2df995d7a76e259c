package datepicker

import (
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-mdsclient/pkg/dateadapter"
)

// DefaultPickerFormat is the widget-side date format matching DD/MM/YYYY.
const DefaultPickerFormat = "dd/mm/yy"

type Options struct {
	PickerFormat  string
	ValidationKey string
	Policy        *bluemonday.Policy
	Logger        logrus.FieldLogger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		PickerFormat:  DefaultPickerFormat,
		ValidationKey: dateadapter.ValidationKey,
		Policy:        bluemonday.StrictPolicy(),
		Logger:        discardLogger(),
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.PickerFormat == "" {
		opts.PickerFormat = DefaultPickerFormat
	}
	if opts.ValidationKey == "" {
		opts.ValidationKey = dateadapter.ValidationKey
	}
	if opts.Policy == nil {
		opts.Policy = bluemonday.StrictPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return opts
}

func WithPickerFormat(format string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PickerFormat = format
	}
}

func WithValidationKey(key string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ValidationKey = key
	}
}

// WithPolicy replaces the sanitiser applied to text reported by the picker.
func WithPolicy(policy *bluemonday.Policy) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Policy = policy
	}
}

func WithLogger(logger logrus.FieldLogger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
