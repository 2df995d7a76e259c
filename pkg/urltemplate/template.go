package urltemplate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// ErrMalformedTemplate is returned when a template cannot be parsed or when a
// placeholder in the middle of a path is left without a value.
var ErrMalformedTemplate = errors.New("urltemplate: malformed template")

// MalformedTemplateError names the offending template and placeholder.
type MalformedTemplateError struct {
	Template    string
	Placeholder string
	Reason      string
}

func (e *MalformedTemplateError) Error() string {
	if e.Placeholder == "" {
		return fmt.Sprintf("urltemplate: malformed template %q: %s", e.Template, e.Reason)
	}
	return fmt.Sprintf("urltemplate: malformed template %q: placeholder %q %s", e.Template, e.Placeholder, e.Reason)
}

func (e *MalformedTemplateError) Unwrap() error { return ErrMalformedTemplate }

var placeholderName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Segment is one path element of a template. Exactly one of Literal or
// Placeholder is set.
type Segment struct {
	Literal     string
	Placeholder string
}

// IsPlaceholder reports whether the segment is substituted at resolve time.
func (s Segment) IsPlaceholder() bool {
	return s.Placeholder != ""
}

// Template is a parsed `:name` path template. It is immutable after Parse and
// safe for concurrent use.
type Template struct {
	raw      string
	leading  bool
	segments []Segment
	index    map[string]int
}

// Parse splits raw on "/" and classifies every non-empty segment. Empty
// segments (including a trailing slash) are dropped; a leading slash is kept.
func Parse(raw string) (Template, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Template{}, &MalformedTemplateError{Template: raw, Reason: "is empty"}
	}

	tpl := Template{
		raw:     trimmed,
		leading: strings.HasPrefix(trimmed, "/"),
		index:   make(map[string]int),
	}

	for _, part := range strings.Split(trimmed, "/") {
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ":") {
			tpl.segments = append(tpl.segments, Segment{Literal: part})
			continue
		}
		name := strings.TrimPrefix(part, ":")
		if !placeholderName.MatchString(name) {
			return Template{}, &MalformedTemplateError{Template: trimmed, Placeholder: name, Reason: "is not a valid name"}
		}
		if _, exists := tpl.index[name]; exists {
			return Template{}, &MalformedTemplateError{Template: trimmed, Placeholder: name, Reason: "is declared twice"}
		}
		tpl.index[name] = len(tpl.segments)
		tpl.segments = append(tpl.segments, Segment{Placeholder: name})
	}

	if len(tpl.segments) == 0 {
		return Template{}, &MalformedTemplateError{Template: trimmed, Reason: "has no segments"}
	}
	return tpl, nil
}

// MustParse panics when raw is not a valid template. Useful for init-time
// wiring of static catalogs.
func MustParse(raw string) Template {
	tpl, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return tpl
}

// String returns the template source as passed to Parse (trimmed).
func (t Template) String() string {
	return t.raw
}

// Segments returns a copy of the parsed segments.
func (t Template) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// Placeholders lists placeholder names in path order.
func (t Template) Placeholders() []string {
	names := make([]string, 0, len(t.index))
	for _, segment := range t.segments {
		if segment.IsPlaceholder() {
			names = append(names, segment.Placeholder)
		}
	}
	return names
}

// Has reports whether the template declares the named placeholder.
func (t Template) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Resolve substitutes bound values into the template. A trailing run of
// placeholders without a value is dropped from the path; an unbound
// placeholder followed by a bound segment or a literal fails with
// ErrMalformedTemplate, as does a value of "." or "..". Empty values count as
// unbound.
func (t Template) Resolve(bound map[string]string) (string, error) {
	if len(t.segments) == 0 {
		return "", &MalformedTemplateError{Template: t.raw, Reason: "has no segments"}
	}

	end := len(t.segments)
	for end > 0 {
		segment := t.segments[end-1]
		if !segment.IsPlaceholder() || bound[segment.Placeholder] != "" {
			break
		}
		end--
	}

	parts := make([]string, 0, end)
	for _, segment := range t.segments[:end] {
		if !segment.IsPlaceholder() {
			parts = append(parts, segment.Literal)
			continue
		}
		value := bound[segment.Placeholder]
		if value == "" {
			return "", &MalformedTemplateError{Template: t.raw, Placeholder: segment.Placeholder, Reason: "is unresolved before the end of the path"}
		}
		if value == "." || value == ".." {
			return "", &MalformedTemplateError{Template: t.raw, Placeholder: segment.Placeholder, Reason: "resolves to a dot segment"}
		}
		parts = append(parts, url.PathEscape(value))
	}

	path := strings.Join(parts, "/")
	if t.leading {
		path = "/" + path
	}
	return path, nil
}

// Query encodes the values whose names are not template placeholders, sorted
// by key. Empty values are skipped.
func (t Template) Query(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for key, value := range values {
		if value == "" || t.Has(key) {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	query := url.Values{}
	for _, key := range keys {
		query.Set(key, values[key])
	}
	return query.Encode()
}
