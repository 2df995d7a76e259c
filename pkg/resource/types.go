package resource

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Arity declares whether an action yields one record or an ordered list of
// records. It is fixed per action and never inferred from a response.
type Arity int

const (
	// AritySingle yields a single record or a not-found outcome.
	AritySingle Arity = iota
	// ArityList yields an ordered, possibly empty, list of records.
	ArityList
)

func (a Arity) String() string {
	switch a {
	case AritySingle:
		return "single"
	case ArityList:
		return "list"
	default:
		return "unknown"
	}
}

// ParseArity accepts "single"/"list" (case-insensitive). An empty string maps
// to AritySingle.
func ParseArity(raw string) (Arity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "single", "one", "object":
		return AritySingle, nil
	case "list", "many", "array":
		return ArityList, nil
	default:
		return AritySingle, errors.New("resource: unknown arity " + raw)
	}
}

// Descriptor describes one resource family: a base URL template, default
// parameter bindings and the actions callable on it.
//
// A default value starting with "@" binds the placeholder to a field of the
// object being acted upon (identity binding), e.g. {"id": "@id"}.
type Descriptor struct {
	Name     string
	Aliases  []string
	Template string
	Defaults map[string]string
	Actions  []Action
}

// Action binds a verb, fixed placeholder values and a result arity to a name.
// Fixed params always override caller supplied values.
type Action struct {
	Name   string
	Method string
	Params map[string]string
	Arity  Arity
}

// IsList reports whether the action declares list arity.
func (a Action) IsList() bool {
	return a.Arity == ArityList
}

// Params is the per-call placeholder/query parameter bag.
type Params map[string]any

// Request is a fully resolved call ready for a Transport.
type Request struct {
	Family string
	Action string
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
	Arity  Arity
}

// Target returns the path and query joined as a relative request target.
func (r Request) Target() string {
	if r.Query == "" {
		return r.Path
	}
	return r.Path + "?" + r.Query
}

// Response is what a Transport hands back for a completed call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Result is the arity-shaped outcome of an invocation.
type Result struct {
	Arity      Arity
	StatusCode int
	// Record holds the object returned by a single-arity action.
	Record map[string]any
	// Records is never nil for list-arity actions.
	Records []map[string]any
	// Value holds a non-object payload returned by a single-arity action.
	Value any
	// NotFound is set when a single-arity action completed without a record.
	NotFound bool
	Raw      json.RawMessage
}

// Len returns the number of records carried by the result.
func (r Result) Len() int {
	if r.Arity == ArityList {
		return len(r.Records)
	}
	if r.Record != nil || r.Value != nil {
		return 1
	}
	return 0
}

// Decode unmarshals the raw payload into v.
func (r Result) Decode(v any) error {
	if len(r.Raw) == 0 {
		return ErrEmptyPayload
	}
	return json.Unmarshal(r.Raw, v)
}
