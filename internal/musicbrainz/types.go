package musicbrainz

// MusicBrainz API response types.

// SearchResponse is the top-level response from the artist search endpoint.
type SearchResponse struct {
	Created string     `json:"created"`
	Count   int        `json:"count"`
	Offset  int        `json:"offset"`
	Artists []MBArtist `json:"artists"`
}

// MBArtist represents a MusicBrainz artist entity.
type MBArtist struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	SortName       string  `json:"sort-name"`
	Type           string  `json:"type"`
	Disambiguation string  `json:"disambiguation"`
	Country        string  `json:"country"`
	Score          int     `json:"score"`
	Tags           []MBTag `json:"tags"`
}

// MBTag represents a weighted genre tag.
type MBTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Artist is a ranked search result.
type Artist struct {
	ID    string
	Name  string
	Score int
}

// Tag is a weighted tag, lowercased, with a positive vote count.
type Tag struct {
	Name  string
	Count int
}
