package sync

import (
	"reflect"
	"testing"

	"github.com/cweiss/showsync/internal/domain"
)

func refsFor(ids ...string) []domain.SeriesRef {
	refs := make([]domain.SeriesRef, len(ids))
	for i, id := range ids {
		refs[i] = domain.SeriesRef{TVDBID: id, Language: "en"}
	}
	return refs
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		cacheDirs []string
		library   []domain.SeriesRef
		changed   []string
		want      []string
	}{
		{
			name:      "changed and cached plus uncached library",
			cacheDirs: []string{"A", "B"},
			library:   refsFor("A", "B", "C"),
			changed:   []string{"B"},
			want:      []string{"B", "C"},
		},
		{
			name:      "first run covers whole library",
			cacheDirs: nil,
			library:   refsFor("A", "B"),
			changed:   nil,
			want:      []string{"A", "B"},
		},
		{
			name:      "first run ignores cache state",
			cacheDirs: []string{"A", "orphan"},
			library:   refsFor("A", "B"),
			changed:   nil,
			want:      []string{"A", "B"},
		},
		{
			name:      "empty change feed backfills uncached only",
			cacheDirs: []string{"A"},
			library:   refsFor("A", "B"),
			changed:   []string{},
			want:      []string{"B"},
		},
		{
			name:      "changed but uncached id is excluded",
			cacheDirs: []string{"A"},
			library:   refsFor("A"),
			changed:   []string{"X"},
			want:      nil,
		},
		{
			name:      "changed cached id outside library is refreshed",
			cacheDirs: []string{"orphan"},
			library:   nil,
			changed:   []string{"orphan"},
			want:      []string{"orphan"},
		},
		{
			name:      "ids match case-insensitively and collapse",
			cacheDirs: []string{"Buffy"},
			library:   refsFor("buffy", "ANGEL", "angel"),
			changed:   []string{"BUFFY", "buffy"},
			want:      []string{"Buffy", "ANGEL"},
		},
		{
			name:      "existing cache directory spelling wins",
			cacheDirs: []string{"LOST"},
			library:   refsFor("lost"),
			changed:   nil,
			want:      []string{"LOST"},
		},
		{
			name:      "blank ids are dropped",
			cacheDirs: []string{"A"},
			library:   []domain.SeriesRef{{TVDBID: "  "}, {TVDBID: "B"}},
			changed:   []string{"", "A"},
			want:      []string{"A", "B"},
		},
		{
			name:      "nothing to do",
			cacheDirs: []string{"A"},
			library:   refsFor("A"),
			changed:   []string{},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.cacheDirs, tt.library, tt.changed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLanguages(t *testing.T) {
	library := []domain.SeriesRef{
		{TVDBID: "73739", Language: "en"},
		{TVDBID: "73739", Language: "de"},
		{TVDBID: "73739", Language: "EN"},
		{TVDBID: "80348", Language: "fr"},
		{TVDBID: "79349", Language: ""},
	}

	tests := []struct {
		name string
		id   string
		want []string
	}{
		{name: "distinct languages in library order", id: "73739", want: []string{"en", "de"}},
		{name: "single language", id: "80348", want: []string{"fr"}},
		{name: "empty preference falls back", id: "79349", want: []string{"en"}},
		{name: "unknown id falls back", id: "99999", want: []string{"en"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Languages(library, tt.id, "en")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Languages(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
