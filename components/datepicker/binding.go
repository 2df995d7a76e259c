package datepicker

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/goliatone/go-mdsclient/pkg/dateadapter"
	"github.com/goliatone/go-mdsclient/pkg/form"
)

// Binding ties a form field to a date adapter and a picker subscription. It
// owns the subscription until Close.
type Binding struct {
	field   *form.Field
	adapter *dateadapter.Adapter
	opts    Options

	mu         sync.Mutex
	sub        Subscription
	closed     bool
	selections int
}

// Bind registers the adapter's transforms on field and subscribes once to
// picker. Selections set the field's raw text and run the owning form's
// propagation cycle before the picker callback returns.
func Bind(field *form.Field, picker Picker, adapter *dateadapter.Adapter, fns ...OptionFn) (*Binding, error) {
	return bindWithOptions(field, picker, adapter, NewOptions(fns...))
}

func bindWithOptions(field *form.Field, picker Picker, adapter *dateadapter.Adapter, opts Options) (*Binding, error) {
	if field == nil {
		return nil, errors.New("datepicker: field is required")
	}
	if field.Form() == nil {
		return nil, errors.New("datepicker: field is not attached to a form")
	}
	if picker == nil {
		return nil, errors.New("datepicker: picker is required")
	}
	if adapter == nil {
		return nil, errors.New("datepicker: adapter is required")
	}

	if layout, err := LayoutFromPickerFormat(opts.PickerFormat); err == nil && layout != adapter.Layout() {
		opts.Logger.WithFields(map[string]any{
			"picker_layout":  layout,
			"adapter_layout": adapter.Layout(),
		}).Warn("picker format does not match the adapter layout")
	}

	binding := &Binding{
		field:   field,
		adapter: adapter,
		opts:    opts,
	}

	field.AddFormatter(opts.ValidationKey, adapter.FormatValue)
	field.AddParser(opts.ValidationKey, adapter.ParseValue)

	sub, err := picker.Subscribe(PickerOptions{DateFormat: opts.PickerFormat}, binding.onSelect)
	if err != nil {
		field.RemoveTransforms(opts.ValidationKey)
		return nil, fmt.Errorf("datepicker: subscribe: %w", err)
	}
	binding.sub = sub

	opts.Logger.WithField("field", field.Name()).Debug("date field bound")
	return binding, nil
}

func (b *Binding) onSelect(text string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.selections++
	b.mu.Unlock()

	clean := b.sanitize(text)
	log := b.opts.Logger.WithField("field", b.field.Name())

	err := b.field.Form().Apply(func() {
		b.field.SetRawText(clean)
	})
	if errors.Is(err, form.ErrApplyInProgress) {
		// Selection raised from inside a running cycle; commit directly so
		// the value is still parsed exactly once.
		b.field.SetViewValue(clean)
	} else if err != nil {
		log.WithError(err).Warn("date selection not propagated")
		return
	}

	if !b.field.Valid() {
		log.WithField("text", clean).Debug("date selection rejected")
	}
}

func (b *Binding) sanitize(text string) string {
	clean := b.opts.Policy.Sanitize(text)
	return strings.TrimSpace(html.UnescapeString(clean))
}

// Field returns the bound field.
func (b *Binding) Field() *form.Field { return b.field }

// Selections returns how many picker selections were handled.
func (b *Binding) Selections() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selections
}

// Close releases the picker subscription and removes the adapter transforms
// from the field. It is safe to call more than once.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	sub := b.sub
	b.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	b.field.RemoveTransforms(b.opts.ValidationKey)
}
