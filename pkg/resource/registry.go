package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-mdsclient/pkg/urltemplate"
)

// identityPrefix marks a descriptor default as bound to a field of the object
// being acted upon.
const identityPrefix = "@"

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

type family struct {
	desc     Descriptor
	template urltemplate.Template
	actions  map[string]Action
}

// Registry is a read-only catalog of resource families and their actions. It
// is validated once at construction and safe for concurrent use afterwards.
type Registry struct {
	families map[string]*family
	aliases  map[string]string
}

// NewRegistry validates the descriptors and builds a registry. Template
// problems wrap urltemplate.ErrMalformedTemplate; everything else wraps
// ErrInvalidCatalog.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	reg := &Registry{
		families: make(map[string]*family, len(descriptors)),
		aliases:  make(map[string]string),
	}
	for _, desc := range descriptors {
		if err := reg.add(desc); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// MustRegistry panics when the descriptors do not validate. Useful for
// init-time wiring of static catalogs.
func MustRegistry(descriptors ...Descriptor) *Registry {
	reg, err := NewRegistry(descriptors...)
	if err != nil {
		panic(err)
	}
	return reg
}

func (r *Registry) add(desc Descriptor) error {
	name := strings.TrimSpace(desc.Name)
	if name == "" {
		return invalidCatalog("descriptor missing name")
	}
	if r.taken(name) {
		return invalidCatalog("duplicate resource %q", name)
	}

	tpl, err := urltemplate.Parse(desc.Template)
	if err != nil {
		return fmt.Errorf("resource %q: %w", name, err)
	}

	for key, value := range desc.Defaults {
		if strings.TrimSpace(key) == "" {
			return invalidCatalog("resource %q has a default without a name", name)
		}
		if value == identityPrefix {
			return invalidCatalog("resource %q binds %q to an empty identity field", name, key)
		}
	}

	entry := &family{
		desc:     cloneDescriptor(desc),
		template: tpl,
		actions:  make(map[string]Action, len(desc.Actions)),
	}
	entry.desc.Name = name

	for _, action := range desc.Actions {
		normalised, err := normaliseAction(name, action)
		if err != nil {
			return err
		}
		if _, exists := entry.actions[normalised.Name]; exists {
			return invalidCatalog("resource %q declares action %q twice", name, normalised.Name)
		}
		entry.actions[normalised.Name] = normalised
	}

	for _, alias := range desc.Aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" || alias == name {
			continue
		}
		if r.taken(alias) {
			return invalidCatalog("alias %q of %q is already in use", alias, name)
		}
		r.aliases[alias] = name
	}

	r.families[name] = entry
	return nil
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.families[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

func normaliseAction(familyName string, action Action) (Action, error) {
	name := strings.TrimSpace(action.Name)
	if name == "" {
		return Action{}, invalidCatalog("resource %q has an action without a name", familyName)
	}
	method := strings.ToUpper(strings.TrimSpace(action.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !allowedMethods[method] {
		return Action{}, invalidCatalog("action %q on %q uses unsupported method %q", name, familyName, action.Method)
	}
	if action.Arity != AritySingle && action.Arity != ArityList {
		return Action{}, invalidCatalog("action %q on %q declares unknown arity %d", name, familyName, action.Arity)
	}
	for key, value := range action.Params {
		if strings.TrimSpace(key) == "" || value == "" {
			return Action{}, invalidCatalog("action %q on %q has an empty fixed param", name, familyName)
		}
	}
	return Action{
		Name:   name,
		Method: method,
		Params: lo.Assign(map[string]string{}, action.Params),
		Arity:  action.Arity,
	}, nil
}

func cloneDescriptor(desc Descriptor) Descriptor {
	out := desc
	out.Aliases = append([]string(nil), desc.Aliases...)
	out.Defaults = lo.Assign(map[string]string{}, desc.Defaults)
	out.Actions = make([]Action, 0, len(desc.Actions))
	for _, action := range desc.Actions {
		copied := action
		copied.Params = lo.Assign(map[string]string{}, action.Params)
		out.Actions = append(out.Actions, copied)
	}
	return out
}

func (r *Registry) family(name string) (*family, error) {
	if r == nil {
		return nil, unknownResource(name)
	}
	key := strings.TrimSpace(name)
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	entry, ok := r.families[key]
	if !ok {
		return nil, unknownResource(name)
	}
	return entry, nil
}

// Lookup returns the descriptor and action definition for family/action.
func (r *Registry) Lookup(familyName, actionName string) (Descriptor, Action, error) {
	entry, err := r.family(familyName)
	if err != nil {
		return Descriptor{}, Action{}, err
	}
	action, ok := entry.actions[strings.TrimSpace(actionName)]
	if !ok {
		return Descriptor{}, Action{}, unknownAction(entry.desc.Name, actionName)
	}
	return cloneDescriptor(entry.desc), action, nil
}

// Families returns the canonical family names, sorted.
func (r *Registry) Families() []string {
	if r == nil {
		return nil
	}
	names := lo.Keys(r.families)
	sort.Strings(names)
	return names
}

// Actions returns the action names declared on a family, sorted.
func (r *Registry) Actions(familyName string) ([]string, error) {
	entry, err := r.family(familyName)
	if err != nil {
		return nil, err
	}
	names := lo.Keys(entry.actions)
	sort.Strings(names)
	return names, nil
}

// Descriptors returns copies of every registered descriptor sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	names := r.Families()
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, cloneDescriptor(r.families[name].desc))
	}
	return out
}

// Template returns the parsed URL template of a family.
func (r *Registry) Template(familyName string) (urltemplate.Template, error) {
	entry, err := r.family(familyName)
	if err != nil {
		return urltemplate.Template{}, err
	}
	return entry.template, nil
}

// Build resolves an action call into a Request without issuing it.
//
// Values are merged in order: literal descriptor defaults, caller params,
// identity-bound fields read off target, then the action's fixed params.
// Identity-bound fields win over caller params when target carries them; the
// caller param is kept as a fallback otherwise. Params that do not name a
// template placeholder are encoded as the query string.
func (r *Registry) Build(familyName, actionName string, params Params, target any) (Request, error) {
	entry, err := r.family(familyName)
	if err != nil {
		return Request{}, err
	}
	action, ok := entry.actions[strings.TrimSpace(actionName)]
	if !ok {
		return Request{}, unknownAction(entry.desc.Name, actionName)
	}

	literal := make(map[string]string)
	identity := make(map[string]string)
	for key, value := range entry.desc.Defaults {
		if field, ok := strings.CutPrefix(value, identityPrefix); ok {
			if !entry.template.Has(key) {
				continue
			}
			if resolved, found := identityValue(target, field); found {
				identity[key] = resolved
			}
			continue
		}
		literal[key] = value
	}

	bound := lo.Assign(literal, urltemplate.StringifyAll(params), identity, action.Params)

	path, err := entry.template.Resolve(bound)
	if err != nil {
		return Request{}, fmt.Errorf("resource %q action %q: %w", entry.desc.Name, action.Name, err)
	}

	req := Request{
		Family: entry.desc.Name,
		Action: action.Name,
		Method: action.Method,
		Path:   path,
		Query:  entry.template.Query(bound),
		Header: make(http.Header),
		Arity:  action.Arity,
	}
	req.Header.Set("Accept", "application/json")

	if hasBody(action.Method) && target != nil {
		body, err := encodeBody(target)
		if err != nil {
			return Request{}, fmt.Errorf("resource %q action %q: encode body: %w", entry.desc.Name, action.Name, err)
		}
		req.Body = body
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

func encodeBody(target any) ([]byte, error) {
	switch typed := target.(type) {
	case []byte:
		return typed, nil
	case json.RawMessage:
		return typed, nil
	}
	return json.Marshal(target)
}

// identityValue reads a field off the object being acted upon. Maps are read
// directly; other values are read through their JSON representation so struct
// tags are honoured.
func identityValue(target any, field string) (string, bool) {
	if target == nil || field == "" {
		return "", false
	}
	switch typed := target.(type) {
	case map[string]any:
		return urltemplate.Stringify(typed[field])
	case Params:
		return urltemplate.Stringify(typed[field])
	case map[string]string:
		return urltemplate.Stringify(typed[field])
	}

	data, err := encodeBody(target)
	if err != nil {
		return "", false
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return "", false
	}
	return urltemplate.Stringify(fields[field])
}
