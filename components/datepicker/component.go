package datepicker

import (
	"errors"

	"github.com/goliatone/go-mdsclient/pkg/dateadapter"
	"github.com/goliatone/go-mdsclient/pkg/form"
)

// Component bundles an adapter with binding options so many fields can be
// bound the same way.
type Component struct {
	adapter *dateadapter.Adapter
	opts    Options
}

// New constructs a component around adapter with default options plus any
// overrides.
func New(adapter *dateadapter.Adapter, fns ...OptionFn) (*Component, error) {
	if adapter == nil {
		return nil, errors.New("datepicker: adapter is required")
	}
	return &Component{adapter: adapter, opts: NewOptions(fns...)}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Adapter returns the date adapter used by bindings.
func (c *Component) Adapter() *dateadapter.Adapter {
	return c.adapter
}

// Bind attaches the component to field and picker.
func (c *Component) Bind(field *form.Field, picker Picker) (*Binding, error) {
	if c == nil {
		return nil, errors.New("datepicker: component is nil")
	}
	return bindWithOptions(field, picker, c.adapter, c.opts)
}
