package datepicker

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// PickerOptions is handed to a picker when a binding subscribes.
type PickerOptions struct {
	// DateFormat uses the widget's own token syntax (dd, mm, yy, ...).
	DateFormat string
}

// SelectFunc receives the text the picker reports for a selection.
type SelectFunc func(text string)

// Subscription is released when the bound field is torn down.
type Subscription interface {
	Unsubscribe()
}

// Picker is the calendar widget a field is bound to. Implementations call
// every subscribed SelectFunc synchronously when the user picks a date.
type Picker interface {
	Subscribe(opts PickerOptions, onSelect SelectFunc) (Subscription, error)
}

type subscriberSet struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
}

type subscriber struct {
	opts     PickerOptions
	onSelect SelectFunc
}

func (s *subscriberSet) add(opts PickerOptions, fn SelectFunc) (Subscription, error) {
	if fn == nil {
		return nil, errors.New("datepicker: select callback is required")
	}
	if _, err := LayoutFromPickerFormat(opts.DateFormat); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]subscriber)
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = subscriber{opts: opts, onSelect: fn}
	return &subscription{release: func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}}, nil
}

func (s *subscriberSet) snapshot() []subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]subscriber, 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if sub, ok := s.subs[id]; ok {
			out = append(out, sub)
		}
	}
	return out
}

func (s *subscriberSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

type subscription struct {
	once    sync.Once
	release func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.release)
}

// Emitter is an in-memory Picker. Select delivers a selection to every
// current subscriber before returning.
type Emitter struct {
	subs subscriberSet
}

// NewEmitter constructs an Emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe implements Picker.
func (e *Emitter) Subscribe(opts PickerOptions, onSelect SelectFunc) (Subscription, error) {
	return e.subs.add(opts, onSelect)
}

// Select reports text as the picked date.
func (e *Emitter) Select(text string) {
	for _, sub := range e.subs.snapshot() {
		sub.onSelect(text)
	}
}

// Subscribers returns the number of active subscriptions.
func (e *Emitter) Subscribers() int {
	return e.subs.len()
}

var pickerTokens = []struct {
	token  string
	layout string
}{
	{"DD", "Monday"},
	{"dd", "02"},
	{"d", "2"},
	{"MM", "January"},
	{"mm", "01"},
	{"M", "Jan"},
	{"m", "1"},
	{"D", "Mon"},
	{"yy", "2006"},
	{"y", "06"},
}

// LayoutFromPickerFormat translates a calendar widget format such as
// "dd/mm/yy" into a Go time layout ("02/01/2006"). Quoted text ('...') is
// copied literally.
func LayoutFromPickerFormat(format string) (string, error) {
	if strings.TrimSpace(format) == "" {
		return "", errors.New("datepicker: picker format is empty")
	}
	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '\'' {
			end := strings.IndexByte(format[i+1:], '\'')
			if end < 0 {
				return "", fmt.Errorf("datepicker: unterminated literal in %q", format)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		matched := false
		for _, tok := range pickerTokens {
			if strings.HasPrefix(format[i:], tok.token) {
				b.WriteString(tok.layout)
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String(), nil
}
