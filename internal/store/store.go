// Package store persists the festival/artist knowledge base as a single JSON
// document with atomic-replace write semantics.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sydlexius/headliner/internal/classify"
	"github.com/sydlexius/headliner/internal/filesystem"
	"github.com/sydlexius/headliner/internal/name"
)

// FestivalInfo identifies the lineup source being merged.
type FestivalInfo struct {
	Name string
	URL  string
}

// Store owns the knowledge base file. No state is cached between operations:
// every mutation cycle is load, merge in memory, save. Concurrent units of
// work each reload before merging and write back atomically; the last atomic
// write wins, which is acceptable for append-mostly data.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store backed by the given file path.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "store")),
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source (for testing).
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Load reads the knowledge base, returning an empty skeleton if the backing
// file does not exist yet.
func (s *Store) Load() (*KnowledgeBase, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewKnowledgeBase(), nil
		}
		return nil, fmt.Errorf("reading knowledge base: %w", err)
	}

	kb := NewKnowledgeBase()
	if err := json.Unmarshal(data, kb); err != nil {
		return nil, fmt.Errorf("parsing knowledge base: %w", err)
	}
	if kb.Artists == nil {
		kb.Artists = make(map[string]*Artist)
	}
	return kb, nil
}

// Save stamps the last-modified timestamp and writes the knowledge base via
// atomic replace, so a crash mid-write never corrupts the store.
func (s *Store) Save(kb *KnowledgeBase) error {
	now := s.now().UTC()
	kb.Metadata.Version = SchemaVersion
	kb.Metadata.LastModified = &now

	data, err := json.MarshalIndent(kb, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding knowledge base: %w", err)
	}
	if err := filesystem.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing knowledge base: %w", err)
	}

	s.logger.Debug("knowledge base saved",
		slog.Int("artists", len(kb.Artists)),
		slog.Int("festivals", len(kb.Festivals)))
	return nil
}

// MergeArtists folds one scrape's results into the knowledge base. The merge
// is idempotent on repeated festival URLs and repeated artist names: the
// festival record is appended only when its URL is new, per-artist festival
// references are deduplicated by URL, and stored genres are overwritten only
// when the incoming classification carries a non-empty genre list, so a known
// artist never regresses to weaker data.
func (s *Store) MergeArtists(kb *KnowledgeBase, names []string, classifications map[string]classify.Classification, festival FestivalInfo) *KnowledgeBase {
	now := s.now().UTC()
	ref := FestivalRef{
		Name:        festival.Name,
		URL:         festival.URL,
		DateScraped: now,
	}

	urlKnown := false
	for _, f := range kb.Festivals {
		if f.URL == festival.URL {
			urlKnown = true
			break
		}
	}
	if !urlKnown {
		kb.Festivals = append(kb.Festivals, Festival{
			Name:        festival.Name,
			URL:         festival.URL,
			DateScraped: now,
			ArtistCount: len(names),
		})
	}

	for _, n := range names {
		key := name.Key(n)
		classification, ok := classifications[n]
		if !ok {
			classification = classify.Classification{}
		}

		if artist, exists := kb.Artists[key]; exists {
			refKnown := false
			for _, f := range artist.Festivals {
				if f.URL == festival.URL {
					refKnown = true
					break
				}
			}
			if !refKnown {
				artist.Festivals = append(artist.Festivals, ref)
			}
			// A non-empty incoming classification replaces the stored one,
			// except that the unknown sentinel never displaces real genres.
			incoming := classification.Genres
			if len(incoming) > 0 && (!classify.IsUnknown(incoming) || classify.IsUnknown(artist.Genres)) {
				artist.Genres = classification.Genres
				artist.Timbre = classification.Timbre
			}
			artist.LastUpdated = now
		} else {
			kb.Artists[key] = &Artist{
				Name:        n,
				Genres:      classification.Genres,
				Timbre:      classification.Timbre,
				Festivals:   []FestivalRef{ref},
				FirstSeen:   now,
				LastUpdated: now,
			}
		}
	}

	return kb
}
