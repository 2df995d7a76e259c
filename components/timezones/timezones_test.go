package timezones

import (
	"strings"
	"testing"
)

func TestLoadZones_DedupesSortsAndIgnoresComments(t *testing.T) {
	input := strings.NewReader(`
# Comment
Europe/Warsaw
Europe/Paris
Europe/Warsaw

UTC
`)

	zones, err := LoadZones(input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []string{"Europe/Paris", "Europe/Warsaw", "UTC"}
	if strings.Join(zones, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected zones: %#v", zones)
	}
}

func TestLoadZones_TrimsWindowsLineEndings(t *testing.T) {
	zones, err := LoadZones(strings.NewReader("  UTC\r\n# note\r\nEurope/Warsaw\r\n\r\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Join(zones, ",") != "Europe/Warsaw,UTC" {
		t.Fatalf("unexpected zones: %#v", zones)
	}
}

func TestLoadZones_NilReader(t *testing.T) {
	if _, err := LoadZones(nil); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}

func TestDefaultZones_ContainsCommonEntries(t *testing.T) {
	zones, err := DefaultZones()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(zones) < 300 {
		t.Fatalf("expected a reasonably sized list, got %d", len(zones))
	}
	for _, expected := range []string{"America/New_York", "Europe/Warsaw", "UTC"} {
		if !containsString(zones, expected) {
			t.Fatalf("expected zone %q to be present", expected)
		}
	}

	zones[0] = "mutated"
	again, _ := DefaultZones()
	if again[0] == "mutated" {
		t.Fatalf("DefaultZones must return a copy")
	}
}

func TestSearch_PrefixBeforeContains(t *testing.T) {
	zones := []string{"x/a/b", "a/b", "a/b/c", "c/d"}

	results := Search(zones, "A/B", 10, NewOptions())
	want := []string{"a/b", "a/b/c", "x/a/b"}
	if strings.Join(results, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected ordering: %#v", results)
	}
}

func TestSearch_EmptyQueryAndLimits(t *testing.T) {
	zones := []string{"a", "b", "c", "d"}

	if got := Search(zones, "  ", 0, NewOptions()); got != nil {
		t.Fatalf("expected no results for empty query, got %#v", got)
	}

	opts := NewOptions(WithDefaultLimit(2), WithMaxLimit(3), WithEmptySearchMode(EmptySearchTop))
	if got := Search(zones, "", 0, opts); len(got) != 2 {
		t.Fatalf("expected default limit 2, got %#v", got)
	}
	if got := Search(zones, "", 10, opts); len(got) != 3 {
		t.Fatalf("expected max limit 3, got %#v", got)
	}
}

func TestSuggest_FallsBackToRegion(t *testing.T) {
	opts := NewOptions(WithZones([]string{"Europe/Paris", "Europe/Warsaw", "America/New_York"}))

	if got := Suggest("Europe/Warsa", 5, opts); len(got) != 1 || got[0] != "Europe/Warsaw" {
		t.Fatalf("unexpected city suggestions: %#v", got)
	}
	if got := Suggest("Europe/Nowhere", 5, opts); len(got) != 2 || got[0] != "Europe/Paris" {
		t.Fatalf("unexpected region suggestions: %#v", got)
	}
	if got := Suggest("new york", 5, opts); len(got) != 1 || got[0] != "America/New_York" {
		t.Fatalf("expected spaces to match underscores, got %#v", got)
	}
	if got := Suggest("Mars/Olympus", 5, opts); got != nil {
		t.Fatalf("expected no suggestions, got %#v", got)
	}
}

func TestResolve(t *testing.T) {
	loc, err := Resolve("Europe/Warsaw")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if loc.String() != "Europe/Warsaw" {
		t.Fatalf("unexpected location %q", loc)
	}

	_, err = Resolve("Europe/Warsa")
	if err == nil || !strings.Contains(err.Error(), "did you mean Europe/Warsaw") {
		t.Fatalf("expected suggestion in error, got %v", err)
	}
}

func containsString(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}
