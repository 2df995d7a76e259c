package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-mdsclient/pkg/resource"
	"github.com/goliatone/go-mdsclient/pkg/urltemplate"
)

// ArityExtension carries the declared result arity on exported operations.
const ArityExtension = "x-mds-arity"

// Info describes the exported document.
type Info struct {
	Title       string
	Version     string
	Description string
	ServerURL   string
}

func (i Info) withDefaults() Info {
	if strings.TrimSpace(i.Title) == "" {
		i.Title = "MDS API"
	}
	if strings.TrimSpace(i.Version) == "" {
		i.Version = "1.0.0"
	}
	return i
}

type pathSegment struct {
	literal string
	param   string
	def     string
	bound   bool
}

// ToOpenAPI describes every catalog action as an OpenAPI 3 operation and
// validates the result.
//
// Fixed action params become literal path segments. Trailing placeholders are
// optional at call time, so each action is exported at its shortest path; when
// two actions share that path and method (getField and getFields) the later one
// is exported with the next trailing placeholder.
func ToOpenAPI(ctx context.Context, descs []resource.Descriptor, info Info) (*openapi3.T, error) {
	info = info.withDefaults()
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(),
	}
	if info.ServerURL != "" {
		doc.Servers = openapi3.Servers{&openapi3.Server{URL: info.ServerURL}}
	}

	claimed := make(map[string]string)
	for _, desc := range descs {
		tpl, err := urltemplate.Parse(desc.Template)
		if err != nil {
			return nil, fmt.Errorf("catalog: family %q: %w", desc.Name, err)
		}
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: desc.Name})

		for _, action := range desc.Actions {
			segments := bindSegments(tpl, desc.Defaults, action.Params)
			method := strings.ToUpper(strings.TrimSpace(action.Method))
			if method == "" {
				method = http.MethodGet
			}

			path, params, ok := claimPath(segments, method, claimed)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s has no free path for %s", resource.ErrInvalidCatalog, desc.Name, action.Name, method)
			}
			claimed[method+" "+path] = desc.Name + "." + action.Name

			item := doc.Paths.Value(path)
			if item == nil {
				item = &openapi3.PathItem{}
				doc.Paths.Set(path, item)
			}
			item.SetOperation(method, newOperation(desc, action, method, params))
		}
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("catalog: openapi validation: %w", err)
	}
	return doc, nil
}

func bindSegments(tpl urltemplate.Template, defaults, fixed map[string]string) []pathSegment {
	raw := tpl.Segments()
	out := make([]pathSegment, 0, len(raw))
	for _, segment := range raw {
		if !segment.IsPlaceholder() {
			out = append(out, pathSegment{literal: segment.Literal})
			continue
		}
		name := segment.Placeholder
		if value, ok := fixed[name]; ok {
			out = append(out, pathSegment{literal: value})
			continue
		}
		entry := pathSegment{param: name}
		if value, ok := defaults[name]; ok && !strings.HasPrefix(value, "@") {
			entry.def = value
			entry.bound = true
		}
		out = append(out, entry)
	}
	return out
}

func claimPath(segments []pathSegment, method string, claimed map[string]string) (string, []pathSegment, bool) {
	minimal := 0
	for idx, segment := range segments {
		if segment.param == "" || segment.bound {
			minimal = idx + 1
		}
	}
	if minimal == 0 {
		minimal = 1
	}
	for end := minimal; end <= len(segments); end++ {
		parts := make([]string, 0, end)
		var params []pathSegment
		for _, segment := range segments[:end] {
			if segment.param == "" {
				parts = append(parts, segment.literal)
				continue
			}
			parts = append(parts, "{"+segment.param+"}")
			params = append(params, segment)
		}
		path := "/" + strings.Join(parts, "/")
		if _, taken := claimed[method+" "+path]; !taken {
			return path, params, true
		}
	}
	return "", nil, false
}

func newOperation(desc resource.Descriptor, action resource.Action, method string, params []pathSegment) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: desc.Name + "." + action.Name,
		Tags:        []string{desc.Name},
		Summary:     fmt.Sprintf("%s %s", desc.Name, action.Name),
		Extensions:  map[string]any{ArityExtension: action.Arity.String()},
	}

	for _, segment := range params {
		schema := openapi3.NewStringSchema()
		if segment.def != "" {
			schema.Default = segment.def
		}
		param := openapi3.NewPathParameter(segment.param).WithSchema(schema)
		if binding, ok := desc.Defaults[segment.param]; ok && strings.HasPrefix(binding, "@") {
			param.Description = fmt.Sprintf("Defaults to the %q field of the object acted upon.", strings.TrimPrefix(binding, "@"))
		}
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: param})
	}

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		body := openapi3.NewRequestBody().
			WithDescription("Object acted upon.").
			WithJSONSchema(openapi3.NewObjectSchema())
		op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}

	record := openapi3.NewObjectSchema()
	var success *openapi3.Response
	if action.IsList() {
		success = openapi3.NewResponse().
			WithDescription("Ordered list of records.").
			WithJSONSchema(openapi3.NewArraySchema().WithItems(record))
	} else {
		success = openapi3.NewResponse().
			WithDescription("A single record; an empty body means not found.").
			WithJSONSchema(record)
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: success}),
	)
	return op
}
