// Package classify enriches artist names with genre and timbre descriptors
// derived from MusicBrainz tags.
package classify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sydlexius/headliner/internal/musicbrainz"
	"github.com/sydlexius/headliner/internal/name"
)

// UnknownLabel is the sentinel used when no classification data exists.
const UnknownLabel = "unknown"

const (
	maxGenres = 3
	maxTimbre = 4
)

// Classification holds the descriptor sets for one artist.
type Classification struct {
	Genres []string `json:"genres"`
	Timbre []string `json:"timbre"`
}

// Unknown returns the sentinel classification pair.
func Unknown() Classification {
	return Classification{
		Genres: []string{UnknownLabel},
		Timbre: []string{UnknownLabel},
	}
}

// IsUnknown reports whether genres carry no real data.
func IsUnknown(genres []string) bool {
	return len(genres) == 0 || (len(genres) == 1 && genres[0] == UnknownLabel)
}

// MetadataClient is the slice of the MusicBrainz client the classifier uses.
type MetadataClient interface {
	SearchArtists(ctx context.Context, name string, limit int) ([]musicbrainz.Artist, error)
	ArtistTags(ctx context.Context, id string) ([]musicbrainz.Tag, error)
}

// GenreLookup answers whether an artist key already has stored genres.
type GenreLookup interface {
	ArtistGenres(key string) ([]string, bool)
}

// ProgressFunc is invoked after each name in a batch, classified or skipped.
type ProgressFunc func(artistName string, done, total int)

// Classifier maps artists to genre and timbre descriptor sets.
type Classifier struct {
	client MetadataClient
	logger *slog.Logger
}

// New creates a Classifier backed by the given metadata client.
func New(client MetadataClient, logger *slog.Logger) *Classifier {
	return &Classifier{
		client: client,
		logger: logger.With(slog.String("component", "classifier")),
	}
}

// Classify looks the artist up and derives its descriptors. An artist the
// service does not know yields the unknown sentinel pair, not an error.
func (c *Classifier) Classify(ctx context.Context, artistName string) (Classification, error) {
	results, err := c.client.SearchArtists(ctx, artistName, 1)
	if err != nil {
		return Classification{}, err
	}
	if len(results) == 0 || results[0].ID == "" {
		return Unknown(), nil
	}

	tags, err := c.client.ArtistTags(ctx, results[0].ID)
	if err != nil {
		return Classification{}, err
	}

	return Classification{
		Genres: tagsToGenres(tags),
		Timbre: tagsToTimbre(tags),
	}, nil
}

// ClassifyBatch classifies each name, skipping any whose key already has
// non-unknown genres in existing. A per-name failure downgrades that name to
// the unknown pair rather than aborting the batch. onProgress fires after
// every name. Pacing against the service's rate limit is enforced by the
// client's shared limiter.
func (c *Classifier) ClassifyBatch(ctx context.Context, names []string, existing GenreLookup, onProgress ProgressFunc) map[string]Classification {
	classifications := make(map[string]Classification)
	total := len(names)

	for i, n := range names {
		if existing != nil {
			if genres, ok := existing.ArtistGenres(name.Key(n)); ok && !IsUnknown(genres) {
				if onProgress != nil {
					onProgress(n, i+1, total)
				}
				continue
			}
		}

		result, err := c.Classify(ctx, n)
		if err != nil {
			c.logger.Warn("classification failed, recording as unknown",
				slog.String("artist", n), slog.String("error", err.Error()))
			result = Unknown()
		}
		classifications[n] = result

		if onProgress != nil {
			onProgress(n, i+1, total)
		}
	}

	return classifications
}

// nonGenrePattern matches tags that describe the artist rather than the
// music: years, decades, nationalities, and chart/scrobble meta tags.
var nonGenrePattern = regexp.MustCompile(`^(` +
	`\d{4}s?|` +
	`american|british|english|irish|scottish|welsh|australian|canadian|` +
	`french|german|italian|spanish|dutch|swedish|norwegian|danish|finnish|` +
	`japanese|korean|chinese|brazilian|mexican|colombian|argentine|` +
	`african|nigerian|south african|jamaican|cuban|puerto rican|` +
	`indian|russian|polish|belgian|austrian|swiss|portuguese|icelandic|` +
	`new zealand|` +
	`male vocalists?|female vocalists?|` +
	`seen live|favorites?|favourites?|` +
	`under \d+|spotify|` +
	`\d+s` +
	`)$`)

// tagsToGenres picks the top genre tags, filtering out non-genre tags. If
// filtering removes everything, the top unfiltered tags are better than
// nothing.
func tagsToGenres(tags []musicbrainz.Tag) []string {
	if len(tags) == 0 {
		return []string{UnknownLabel}
	}
	var filtered []string
	for _, t := range tags {
		if !nonGenrePattern.MatchString(t.Name) {
			filtered = append(filtered, t.Name)
		}
	}
	if len(filtered) == 0 {
		for _, t := range tags {
			filtered = append(filtered, t.Name)
		}
	}
	if len(filtered) > maxGenres {
		filtered = filtered[:maxGenres]
	}
	return filtered
}

// timbreEntry maps one descriptor to the genre keywords that imply it. The
// table is walked in order and at most maxTimbre descriptors are emitted.
type timbreEntry struct {
	descriptor string
	keywords   []string
}

var timbreTable = []timbreEntry{
	{"energetic", []string{"punk", "hardcore", "metal", "thrash", "power metal", "hard rock", "drum and bass", "gabber"}},
	{"chill", []string{"ambient", "chillout", "lo-fi", "downtempo", "trip-hop", "lounge", "new age", "easy listening"}},
	{"dark", []string{"gothic", "darkwave", "doom", "black metal", "death metal", "industrial", "dark ambient", "witch house"}},
	{"dreamy", []string{"shoegaze", "dream pop", "ethereal", "ambient pop", "slowcore", "chamber pop"}},
	{"groovy", []string{"funk", "disco", "house", "soul", "groove", "dancehall", "afrobeat", "boogie"}},
	{"melodic", []string{"pop", "singer-songwriter", "folk", "baroque pop", "power pop", "indie pop", "soft rock"}},
	{"heavy", []string{"metal", "sludge", "stoner rock", "grunge", "noise rock", "post-metal", "djent"}},
	{"atmospheric", []string{"post-rock", "ambient", "shoegaze", "space rock", "drone", "ethereal wave"}},
	{"raw", []string{"garage rock", "punk", "lo-fi", "noise", "grindcore", "crust punk", "post-punk"}},
	{"experimental", []string{"avant-garde", "experimental", "noise", "art rock", "free jazz", "musique concrète"}},
	{"smooth", []string{"r&b", "soul", "jazz", "smooth jazz", "neo soul", "quiet storm", "bossa nova"}},
	{"uplifting", []string{"trance", "euphoric", "gospel", "reggae", "ska", "happy hardcore"}},
	{"electronic", []string{"electronic", "techno", "house", "edm", "synth", "electro", "idm", "dubstep"}},
	{"acoustic", []string{"acoustic", "folk", "unplugged", "bluegrass", "country", "americana"}},
}

// tagsToTimbre walks the descriptor table in order; a descriptor is emitted
// when any keyword equals or is contained in a tag.
func tagsToTimbre(tags []musicbrainz.Tag) []string {
	if len(tags) == 0 {
		return []string{UnknownLabel}
	}

	var descriptors []string
	for _, entry := range timbreTable {
		if matchesAny(entry.keywords, tags) {
			descriptors = append(descriptors, entry.descriptor)
			if len(descriptors) >= maxTimbre {
				break
			}
		}
	}

	if len(descriptors) == 0 {
		descriptors = []string{"dynamic"}
	}
	return descriptors
}

func matchesAny(keywords []string, tags []musicbrainz.Tag) bool {
	for _, kw := range keywords {
		for _, t := range tags {
			if t.Name == kw || strings.Contains(t.Name, kw) {
				return true
			}
		}
	}
	return false
}
