package form

import (
	"fmt"
	"strings"
	"sync"
)

// TransformFunc converts a value on its way between the model and the view.
type TransformFunc func(value any) (any, error)

// ChangeFunc is notified with the new model value after a view change has
// been parsed.
type ChangeFunc func(model any)

type transform struct {
	key string
	fn  TransformFunc
}

// Field is a single form input with a read pipeline (formatters, model to
// view) and a write pipeline (parsers, view to model). Transform failures are
// recorded in the field's validation state under the transform key.
// Transforms run under the field lock and must not call back into the field.
type Field struct {
	mu         sync.Mutex
	name       string
	form       *Form
	formatters []transform
	parsers    []transform
	listeners  map[int]ChangeFunc
	nextID     int
	model      any
	view       string
	raw        string
	pending    bool
	errors     map[string]error
}

func newField(name string, form *Form) *Field {
	return &Field{
		name:      name,
		form:      form,
		listeners: make(map[int]ChangeFunc),
		errors:    make(map[string]error),
	}
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Form returns the owning form.
func (f *Field) Form() *Form { return f.form }

// AddFormatter appends a read-side transform. Formatters run in reverse
// registration order, so the last one added sees the model value first.
func (f *Field) AddFormatter(key string, fn TransformFunc) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formatters = append(f.formatters, transform{key: validationKey(key, "format"), fn: fn})
}

// AddParser appends a write-side transform. Parsers run in registration
// order.
func (f *Field) AddParser(key string, fn TransformFunc) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parsers = append(f.parsers, transform{key: validationKey(key, "parse"), fn: fn})
}

// RemoveTransforms drops every formatter and parser registered under key.
func (f *Field) RemoveTransforms(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formatters = without(f.formatters, key)
	f.parsers = without(f.parsers, key)
	delete(f.errors, key)
}

// OnChange registers fn and returns a function that removes it.
func (f *Field) OnChange(fn ChangeFunc) func() {
	if fn == nil {
		return func() {}
	}
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// SetModelValue stores a model value and renders it through the formatters.
// A formatter failure blanks the view and is recorded in Errors.
func (f *Field) SetModelValue(value any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.model = value
	for _, formatter := range f.formatters {
		delete(f.errors, formatter.key)
	}

	current := value
	for idx := len(f.formatters) - 1; idx >= 0; idx-- {
		formatter := f.formatters[idx]
		next, err := formatter.fn(current)
		if err != nil {
			f.errors[formatter.key] = err
			f.view = ""
			return
		}
		current = next
	}
	f.view = viewString(current)
}

// SetRawText stages text typed into, or written by a widget into, the input.
// It is committed by the next propagation cycle of the owning form.
func (f *Field) SetRawText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = text
	f.pending = true
}

// RawText returns the staged text, or the current view when nothing is
// staged.
func (f *Field) RawText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending {
		return f.raw
	}
	return f.view
}

// SetViewValue parses text through the parsers immediately and notifies
// change listeners. A parser failure clears the model value.
func (f *Field) SetViewValue(text string) {
	f.mu.Lock()
	f.pending = false
	f.raw = ""
	model := f.parseLocked(text)
	listeners := make([]ChangeFunc, 0, len(f.listeners))
	for id := 0; id < f.nextID; id++ {
		if fn, ok := f.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(model)
	}
}

func (f *Field) parseLocked(text string) any {
	f.view = text
	for _, parser := range f.parsers {
		delete(f.errors, parser.key)
	}

	var current any = text
	for _, parser := range f.parsers {
		next, err := parser.fn(current)
		if err != nil {
			f.errors[parser.key] = err
			f.model = nil
			return nil
		}
		current = next
	}
	f.model = current
	return current
}

func (f *Field) commit() {
	f.mu.Lock()
	if !f.pending {
		f.mu.Unlock()
		return
	}
	text := f.raw
	f.mu.Unlock()
	f.SetViewValue(text)
}

// ModelValue returns the stored value.
func (f *Field) ModelValue() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.model
}

// ViewValue returns the display value.
func (f *Field) ViewValue() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

// Errors returns a copy of the validation state.
func (f *Field) Errors() map[string]error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]error, len(f.errors))
	for key, err := range f.errors {
		out[key] = err
	}
	return out
}

// Valid reports whether the field has no validation failures.
func (f *Field) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) == 0
}

func validationKey(key, fallback string) string {
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		return trimmed
	}
	return fallback
}

func without(list []transform, key string) []transform {
	out := list[:0:0]
	for _, entry := range list {
		if entry.key != key {
			out = append(out, entry)
		}
	}
	return out
}

func viewString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
