package timezones

import (
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

//go:embed data/zones.txt
var zoneData string

var embeddedZones = sync.OnceValues(func() ([]string, error) {
	return LoadZones(strings.NewReader(zoneData))
})

// DefaultZones returns a sorted copy of the embedded zone list.
func DefaultZones() ([]string, error) {
	zones, err := embeddedZones()
	if err != nil {
		return nil, err
	}
	return slices.Clone(zones), nil
}

// LoadZones reads one zone name per line. Blank lines, "#" comments and
// repeated names are skipped; the result is sorted.
func LoadZones(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("timezones: missing reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("timezones: read zones: %w", err)
	}

	names := lo.FilterMap(strings.Split(string(data), "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		return line, line != "" && !strings.HasPrefix(line, "#")
	})
	zones := lo.Uniq(names)
	slices.Sort(zones)
	return zones, nil
}

// Suggest returns zones resembling a misspelled name. The city segment is
// tried first, then the region.
func Suggest(name string, limit int, opts Options) []string {
	zones, err := opts.zones()
	if err != nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	segments := strings.Split(strings.ReplaceAll(name, " ", "_"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		if found := Search(zones, segments[i], limit, opts); len(found) > 0 {
			return found
		}
	}
	return nil
}

// Resolve loads the named location. Unknown names produce an error listing
// close matches from the embedded list.
func Resolve(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if hints := Suggest(name, 3, NewOptions()); len(hints) > 0 {
		return nil, fmt.Errorf("timezones: unknown zone %q (did you mean %s?)", name, strings.Join(hints, ", "))
	}
	return nil, fmt.Errorf("timezones: unknown zone %q", name)
}
