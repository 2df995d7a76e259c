package catalog

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/goliatone/go-mdsclient/pkg/resource"
)

//go:embed data/*.yaml
var embeddedCatalog embed.FS

// EmbeddedFS returns the bundled MDS catalog files.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedCatalog, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

var (
	defaultOnce  sync.Once
	defaultDescs []resource.Descriptor
	defaultErr   error
)

func loadDefault() ([]resource.Descriptor, error) {
	defaultOnce.Do(func() {
		defaultDescs, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultDescs, defaultErr
}

// DefaultDescriptors returns a copy of the bundled MDS catalog. It panics if
// the embedded file is invalid, which only a broken build can cause.
func DefaultDescriptors() []resource.Descriptor {
	descs, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return cloneDescriptors(descs)
}

// Default builds a registry over the bundled MDS catalog.
func Default() (*resource.Registry, error) {
	descs, err := loadDefault()
	if err != nil {
		return nil, err
	}
	return resource.NewRegistry(cloneDescriptors(descs)...)
}

func cloneDescriptors(descs []resource.Descriptor) []resource.Descriptor {
	out := make([]resource.Descriptor, 0, len(descs))
	for _, desc := range descs {
		copied := desc
		copied.Aliases = append([]string(nil), desc.Aliases...)
		copied.Defaults = cloneMap(desc.Defaults)
		copied.Actions = make([]resource.Action, 0, len(desc.Actions))
		for _, action := range desc.Actions {
			action.Params = cloneMap(action.Params)
			copied.Actions = append(copied.Actions, action)
		}
		out = append(out, copied)
	}
	return out
}

func cloneMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
