package form

import (
	"errors"
	"strings"
	"sync"
)

// ErrApplyInProgress is returned when Apply is re-entered from inside a
// propagation cycle.
var ErrApplyInProgress = errors.New("form: apply already in progress")

// Form owns a set of fields and runs the change-propagation cycle that
// commits staged view text into model values.
type Form struct {
	mu       sync.Mutex
	fields   map[string]*Field
	order    []string
	cycles   int
	applying bool
}

// New constructs an empty form.
func New() *Form {
	return &Form{fields: make(map[string]*Field)}
}

// Field returns the named field, creating it on first use.
func (f *Form) Field(name string) *Field {
	name = strings.TrimSpace(name)
	f.mu.Lock()
	defer f.mu.Unlock()

	if field, ok := f.fields[name]; ok {
		return field
	}
	field := newField(name, f)
	f.fields[name] = field
	f.order = append(f.order, name)
	return field
}

// Lookup returns an existing field.
func (f *Form) Lookup(name string) (*Field, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, ok := f.fields[strings.TrimSpace(name)]
	return field, ok
}

// Apply runs fn and then a single propagation cycle: every field with staged
// raw text is parsed into its model value, in field creation order. Apply
// runs synchronously and returns once every listener has been notified.
func (f *Form) Apply(fn func()) error {
	f.mu.Lock()
	if f.applying {
		f.mu.Unlock()
		return ErrApplyInProgress
	}
	f.applying = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.applying = false
		f.mu.Unlock()
	}()

	if fn != nil {
		fn()
	}

	f.mu.Lock()
	f.cycles++
	fields := make([]*Field, 0, len(f.order))
	for _, name := range f.order {
		fields = append(fields, f.fields[name])
	}
	f.mu.Unlock()

	for _, field := range fields {
		field.commit()
	}
	return nil
}

// Cycles returns how many propagation cycles have run.
func (f *Form) Cycles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cycles
}

// Values returns the model value of every field keyed by name.
func (f *Form) Values() map[string]any {
	f.mu.Lock()
	fields := make(map[string]*Field, len(f.fields))
	for name, field := range f.fields {
		fields[name] = field
	}
	f.mu.Unlock()

	out := make(map[string]any, len(fields))
	for name, field := range fields {
		out[name] = field.ModelValue()
	}
	return out
}

// Errors returns validation failures keyed by "field.key".
func (f *Form) Errors() map[string]error {
	f.mu.Lock()
	fields := make([]*Field, 0, len(f.order))
	for _, name := range f.order {
		fields = append(fields, f.fields[name])
	}
	f.mu.Unlock()

	out := make(map[string]error)
	for _, field := range fields {
		for key, err := range field.Errors() {
			out[field.Name()+"."+key] = err
		}
	}
	return out
}

// Valid reports whether no field carries a validation failure.
func (f *Form) Valid() bool {
	return len(f.Errors()) == 0
}

// Names returns the field names in creation order.
func (f *Form) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}
