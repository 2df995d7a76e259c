package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mdsclient/pkg/resource"
)

type documentFile struct {
	Families []familyFile `json:"families" yaml:"families"`
}

type familyFile struct {
	Name     string            `json:"name" yaml:"name"`
	Aliases  []string          `json:"aliases" yaml:"aliases"`
	Template string            `json:"template" yaml:"template"`
	Defaults map[string]string `json:"defaults" yaml:"defaults"`
	Actions  []actionFile      `json:"actions" yaml:"actions"`
}

type actionFile struct {
	Name   string            `json:"name" yaml:"name"`
	Method string            `json:"method" yaml:"method"`
	Params map[string]string `json:"params" yaml:"params"`
	Arity  string            `json:"arity" yaml:"arity"`
}

// Parse decodes a JSON or YAML catalog document into descriptors. Structural
// checks (templates, methods, duplicates) happen when the descriptors are
// handed to resource.NewRegistry.
func Parse(data []byte, source string) ([]resource.Descriptor, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	if len(doc.Families) == 0 {
		return nil, fmt.Errorf("catalog: file %s declares no families", source)
	}

	out := make([]resource.Descriptor, 0, len(doc.Families))
	for idx, raw := range doc.Families {
		desc, err := normaliseFamily(raw, source)
		if err != nil {
			return nil, fmt.Errorf("catalog: file %s family #%d: %w", source, idx, err)
		}
		out = append(out, desc)
	}
	return out, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
}

func normaliseFamily(raw familyFile, source string) (resource.Descriptor, error) {
	desc := resource.Descriptor{
		Name:     strings.TrimSpace(raw.Name),
		Aliases:  append([]string(nil), raw.Aliases...),
		Template: strings.TrimSpace(raw.Template),
		Defaults: make(map[string]string, len(raw.Defaults)),
		Actions:  make([]resource.Action, 0, len(raw.Actions)),
	}
	if desc.Name == "" {
		return resource.Descriptor{}, fmt.Errorf("%w: missing name", resource.ErrInvalidCatalog)
	}
	for key, value := range raw.Defaults {
		desc.Defaults[strings.TrimSpace(key)] = value
	}
	for _, action := range raw.Actions {
		arity, err := resource.ParseArity(action.Arity)
		if err != nil {
			return resource.Descriptor{}, fmt.Errorf("%w: %s action %q: %v", resource.ErrInvalidCatalog, desc.Name, action.Name, err)
		}
		params := make(map[string]string, len(action.Params))
		for key, value := range action.Params {
			params[strings.TrimSpace(key)] = value
		}
		desc.Actions = append(desc.Actions, resource.Action{
			Name:   strings.TrimSpace(action.Name),
			Method: action.Method,
			Params: params,
			Arity:  arity,
		})
	}
	if len(desc.Actions) == 0 {
		return resource.Descriptor{}, fmt.Errorf("%w: %s declares no actions", resource.ErrInvalidCatalog, desc.Name)
	}
	return desc, nil
}

// LoadFS walks fsys and parses every JSON/YAML catalog file in lexical order.
// A family declared by more than one file is rejected.
func LoadFS(fsys fs.FS) ([]resource.Descriptor, error) {
	if fsys == nil {
		return nil, fmt.Errorf("catalog: filesystem is required")
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []resource.Descriptor
	seen := make(map[string]string)
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		descs, err := Parse(data, path)
		if err != nil {
			return nil, err
		}
		for _, desc := range descs {
			if prev, exists := seen[desc.Name]; exists {
				return nil, fmt.Errorf("%w: family %q declared in %s and %s", resource.ErrInvalidCatalog, desc.Name, prev, path)
			}
			seen[desc.Name] = path
			out = append(out, desc)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("catalog: no catalog files found")
	}
	return out, nil
}

// Load reads a catalog from a single file or from every catalog file under a
// directory.
func Load(path string) ([]resource.Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if info.IsDir() {
		return LoadFS(os.DirFS(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Registry builds a validated registry from descriptors.
func Registry(descs []resource.Descriptor) (*resource.Registry, error) {
	return resource.NewRegistry(descs...)
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
