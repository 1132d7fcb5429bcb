package library

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cweiss/showsync/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Service manages the followed-series catalogue.
type Service struct {
	catalog domain.SeriesCatalog
	logger  *slog.Logger

	defaultLanguage string
}

// NewService creates a new library service
func NewService(catalog domain.SeriesCatalog, defaultLanguage string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &Service{
		catalog:         catalog,
		logger:          logger,
		defaultLanguage: defaultLanguage,
	}
}

// Add registers a series to keep synchronized. An existing entry with the
// same id and language is replaced; a new language for a known id becomes
// an additional variant and the sync fetches both.
func (s *Service) Add(id, language, title string) (domain.SeriesRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.SeriesRef{}, errors.New("series id is required")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = s.defaultLanguage
	}

	ref := domain.SeriesRef{
		TVDBID:   id,
		Language: language,
		Title:    title,
		AddedAt:  time.Now().Unix(),
	}
	if err := s.catalog.Put(ref); err != nil {
		return domain.SeriesRef{}, err
	}

	s.logger.Info("series added", "id", ref.TVDBID, "language", ref.Language)
	return ref, nil
}

// Remove drops a series from the catalogue, every language variant at once.
// Cached metadata on disk is left in place.
func (s *Service) Remove(id string) error {
	if err := s.catalog.Delete(id); err != nil {
		return err
	}
	s.logger.Info("series removed", "id", id)
	return nil
}

// Get looks up a single series by id.
func (s *Service) Get(id string) (domain.SeriesRef, bool) {
	return s.catalog.Get(id)
}

// ListRefs returns every followed series. Implements domain.SeriesIndex.
func (s *Service) ListRefs() ([]domain.SeriesRef, error) {
	return s.catalog.List()
}

// Search fuzzy-matches query against series titles and ids. An empty query
// returns the whole catalogue.
func (s *Service) Search(query string) ([]domain.SeriesRef, error) {
	refs, err := s.catalog.List()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return refs, nil
	}

	targets := make([]string, len(refs))
	for i, ref := range refs {
		targets[i] = searchKey(ref)
	}

	matches := fuzzy.RankFindFold(query, targets)

	// Sort by score (lower is better)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	results := make([]domain.SeriesRef, 0, len(matches))
	for _, match := range matches {
		results = append(results, refs[match.OriginalIndex])
	}

	s.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// searchKey is what a series is matched against: its title when known,
// falling back to the id.
func searchKey(ref domain.SeriesRef) string {
	if ref.Title != "" {
		return ref.Title + " " + ref.TVDBID
	}
	return ref.TVDBID
}
