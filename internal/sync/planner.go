package sync

import (
	"strings"

	"github.com/cweiss/showsync/internal/domain"
)

// Plan computes the ordered, duplicate-free list of series ids to fetch in
// one pass.
//
// A nil changed slice means first-run mode: every library series is planned,
// whatever the cache already holds. Otherwise the plan is the ids that
// changed remotely and already have a cache directory, followed by the
// library series that have no cache directory yet. A newly followed series
// may predate the watermark and never appear in the change feed, so the
// second term backfills it regardless.
//
// Ids compare case-insensitively. Each planned id keeps a representative
// spelling, preferring the existing cache directory name so fetches land in
// the directory that is already there.
func Plan(cacheDirs []string, library []domain.SeriesRef, changed []string) []string {
	cached := make(map[string]string, len(cacheDirs))
	for _, dir := range cacheDirs {
		cached[domain.CanonicalID(dir)] = dir
	}

	var plan []string
	seen := make(map[string]bool)
	add := func(id string) {
		key := domain.CanonicalID(id)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		if dir, ok := cached[key]; ok {
			plan = append(plan, dir)
		} else {
			plan = append(plan, strings.TrimSpace(id))
		}
	}

	if changed == nil {
		for _, ref := range library {
			add(ref.TVDBID)
		}
		return plan
	}

	for _, id := range changed {
		if _, ok := cached[domain.CanonicalID(id)]; ok {
			add(id)
		}
	}
	for _, ref := range library {
		if _, ok := cached[domain.CanonicalID(ref.TVDBID)]; !ok {
			add(ref.TVDBID)
		}
	}
	return plan
}

// Languages returns the distinct preferred languages of every library entry
// sharing the given id, in library order. A series followed in several
// places may carry different language preferences; all of them are fetched.
// Entries without a preference, and ids absent from the library entirely,
// fall back to fallback.
func Languages(library []domain.SeriesRef, id, fallback string) []string {
	canon := domain.CanonicalID(id)

	var langs []string
	seen := make(map[string]bool)
	for _, ref := range library {
		if domain.CanonicalID(ref.TVDBID) != canon {
			continue
		}
		lang := ref.Language
		if lang == "" {
			lang = fallback
		}
		key := strings.ToLower(lang)
		if seen[key] {
			continue
		}
		seen[key] = true
		langs = append(langs, lang)
	}

	if len(langs) == 0 {
		return []string{fallback}
	}
	return langs
}
