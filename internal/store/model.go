package store

import "time"

// SchemaVersion is the current knowledge base schema version.
const SchemaVersion = 1

// FestivalRef links an artist to a festival appearance.
type FestivalRef struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	DateScraped time.Time `json:"date_scraped"`
}

// Artist is one performer in the knowledge base, keyed by the lowercased
// trimmed name.
type Artist struct {
	Name        string        `json:"name"`
	Genres      []string      `json:"genres"`
	Timbre      []string      `json:"timbre"`
	Festivals   []FestivalRef `json:"festivals"`
	FirstSeen   time.Time     `json:"first_seen"`
	LastUpdated time.Time     `json:"last_updated"`
}

// Festival records one scraped lineup source, identified by its URL.
type Festival struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	DateScraped time.Time `json:"date_scraped"`
	ArtistCount int       `json:"artist_count"`
}

// Metadata describes the knowledge base document itself.
type Metadata struct {
	Version      int        `json:"version"`
	LastModified *time.Time `json:"last_modified"`
}

// KnowledgeBase is the persisted aggregate of all artists and festivals.
type KnowledgeBase struct {
	Artists   map[string]*Artist `json:"artists"`
	Festivals []Festival         `json:"festivals"`
	Metadata  Metadata           `json:"metadata"`
}

// NewKnowledgeBase returns an empty skeleton.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		Artists:   make(map[string]*Artist),
		Festivals: []Festival{},
		Metadata:  Metadata{Version: SchemaVersion},
	}
}

// ArtistGenres reports the stored genres for an artist key, satisfying the
// classifier's lookup interface.
func (kb *KnowledgeBase) ArtistGenres(key string) ([]string, bool) {
	a, ok := kb.Artists[key]
	if !ok {
		return nil, false
	}
	return a.Genres, true
}
