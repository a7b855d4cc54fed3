// Package validate reconciles OCR-derived name candidates against the
// MusicBrainz artist registry.
package validate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sydlexius/headliner/internal/musicbrainz"
)

// Searcher is the slice of the metadata client the validator needs.
type Searcher interface {
	SearchArtists(ctx context.Context, name string, limit int) ([]musicbrainz.Artist, error)
}

// Validator confirms that a candidate string corresponds to a known artist.
type Validator struct {
	search Searcher
	logger *slog.Logger
}

// New creates a Validator backed by the given searcher.
func New(search Searcher, logger *slog.Logger) *Validator {
	return &Validator{
		search: search,
		logger: logger.With(slog.String("component", "validator")),
	}
}

// Validate queries the registry for up to 3 candidate matches and returns the
// service's canonical spelling when one is accepted. The canonical name is
// returned in preference to the input: the service corrects OCR casing and
// spelling mistakes. Transport failures are swallowed and reported as
// no-match; the client already retries 503s with bounded backoff.
func (v *Validator) Validate(ctx context.Context, candidate string) (string, bool) {
	results, err := v.search.SearchArtists(ctx, candidate, 3)
	if err != nil {
		v.logger.Debug("validation lookup failed",
			slog.String("candidate", candidate), slog.String("error", err.Error()))
		return "", false
	}

	want := strings.ToLower(strings.TrimSpace(candidate))
	for _, a := range results {
		if a.ID == "" {
			continue
		}
		got := strings.ToLower(strings.TrimSpace(a.Name))
		if a.Score >= 90 && got == want {
			return a.Name, true
		}
		if a.Score >= 80 && (got == want || fuzzyMatch(want, got)) {
			return a.Name, true
		}
	}
	return "", false
}

// fuzzyMatch tolerates 1-2 character differences, the typical damage OCR does
// to a name. It counts position-wise mismatches plus the length delta; this
// deliberately approximates edit distance rather than computing it, keeping
// the historical accept/reject boundary. Comparison is per rune so accented
// names are not penalized per byte.
func fuzzyMatch(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra)-len(rb) > 2 || len(rb)-len(ra) > 2 {
		return false
	}
	shorter, longer := ra, rb
	if len(ra) > len(rb) {
		shorter, longer = rb, ra
	}
	diffs := len(longer) - len(shorter)
	for i := 0; i < len(shorter); i++ {
		if shorter[i] != longer[i] {
			diffs++
		}
	}
	return diffs <= 2
}
