package postgres

import (
	"sort"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorIsMonotonic(t *testing.T) {
	g := NewULIDGenerator()
	fixed := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	ids := make([]string, 0, 100)
	seen := make(map[string]struct{}, 100)

	for range 100 {
		id := g.Generate()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if !sort.StringsAreSorted(ids) {
		t.Fatalf("expected ids in generation order")
	}

	parsed, err := ulid.Parse(ids[0])
	if err != nil {
		t.Fatalf("expected a valid ULID: %v", err)
	}

	if got := ulid.Time(parsed.Time()); !got.Equal(fixed) {
		t.Fatalf("expected timestamp %s, got %s", fixed, got)
	}
}
