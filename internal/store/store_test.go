package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cweiss/showsync/internal/domain"
)

func newTestStore(t *testing.T) *SeriesStore {
	t.Helper()
	s, err := NewSeriesStore(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("NewSeriesStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	ref := domain.SeriesRef{TVDBID: "73739", Language: "en", Title: "Lost", AddedAt: 1700000000}
	if err := s.Put(ref); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := s.Get("73739")
	if !ok {
		t.Fatal("Get returned not found")
	}
	if got != ref {
		t.Errorf("Get = %+v, want %+v", got, ref)
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put(domain.SeriesRef{TVDBID: "Buffy", Language: "en"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	for _, id := range []string{"buffy", "BUFFY", "  Buffy  "} {
		if _, ok := s.Get(id); !ok {
			t.Errorf("Get(%q) not found, want found", id)
		}
	}
}

func TestPutReplacesSameLanguage(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put(domain.SeriesRef{TVDBID: "73739", Language: "en", Title: "lost"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(domain.SeriesRef{TVDBID: "73739", Language: "EN", Title: "Lost"}); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	refs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(refs))
	}
	if refs[0].Title != "Lost" {
		t.Errorf("Title = %q, want %q", refs[0].Title, "Lost")
	}
}

func TestPutKeepsLanguagesDistinct(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put(domain.SeriesRef{TVDBID: "73739", Language: "en"}); err != nil {
		t.Fatalf("Put en: %v", err)
	}
	if err := s.Put(domain.SeriesRef{TVDBID: "73739", Language: "fr"}); err != nil {
		t.Fatalf("Put fr: %v", err)
	}

	refs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(refs))
	}
	if refs[0].Language != "en" || refs[1].Language != "fr" {
		t.Errorf("languages = [%s %s], want [en fr]", refs[0].Language, refs[1].Language)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put(domain.SeriesRef{TVDBID: "73739"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete("73739"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get("73739"); ok {
		t.Error("Get found entry after Delete")
	}

	if err := s.Delete("73739"); !errors.Is(err, domain.ErrSeriesNotFound) {
		t.Errorf("Delete missing = %v, want ErrSeriesNotFound", err)
	}
}

func TestDeleteRemovesAllLanguages(t *testing.T) {
	s := newTestStore(t)

	for _, lang := range []string{"en", "fr"} {
		if err := s.Put(domain.SeriesRef{TVDBID: "73739", Language: lang}); err != nil {
			t.Fatalf("Put %s: %v", lang, err)
		}
	}
	if err := s.Delete("73739"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	refs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("List returned %d entries after Delete, want 0", len(refs))
	}
}

func TestListOrdersByCanonicalID(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"Zulu", "alpha", "Mike"} {
		if err := s.Put(domain.SeriesRef{TVDBID: id}); err != nil {
			t.Fatalf("Put(%q): %v", id, err)
		}
	}

	refs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "Mike", "Zulu"}
	if len(refs) != len(want) {
		t.Fatalf("List returned %d entries, want %d", len(refs), len(want))
	}
	for i, ref := range refs {
		if ref.TVDBID != want[i] {
			t.Errorf("List[%d].TVDBID = %q, want %q", i, ref.TVDBID, want[i])
		}
	}
}

func TestListEmptyStore(t *testing.T) {
	s := newTestStore(t)

	refs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("List returned %d entries, want 0", len(refs))
	}
}
