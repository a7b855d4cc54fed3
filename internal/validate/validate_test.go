package validate

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/sydlexius/headliner/internal/musicbrainz"
)

type fakeSearcher struct {
	results []musicbrainz.Artist
	err     error
	queries []string
}

func (f *fakeSearcher) SearchArtists(_ context.Context, name string, _ int) ([]musicbrainz.Artist, error) {
	f.queries = append(f.queries, name)
	return f.results, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestValidateExactHighScore(t *testing.T) {
	v := New(&fakeSearcher{results: []musicbrainz.Artist{
		{ID: "1", Name: "Daft Punk", Score: 100},
	}}, testLogger())

	got, ok := v.Validate(context.Background(), "daft punk")
	if !ok || got != "Daft Punk" {
		t.Errorf("Validate = %q, %v; want Daft Punk, true", got, ok)
	}
}

func TestValidateReturnsCanonicalSpelling(t *testing.T) {
	// OCR read "Bjork"; the registry corrects it.
	v := New(&fakeSearcher{results: []musicbrainz.Artist{
		{ID: "1", Name: "Björk", Score: 85},
	}}, testLogger())

	got, ok := v.Validate(context.Background(), "Bjork")
	if !ok || got != "Björk" {
		t.Errorf("Validate = %q, %v; want Björk, true", got, ok)
	}
}

func TestValidateRejectsLowScore(t *testing.T) {
	v := New(&fakeSearcher{results: []musicbrainz.Artist{
		{ID: "1", Name: "Daft Punk", Score: 60},
	}}, testLogger())

	if _, ok := v.Validate(context.Background(), "daft punk"); ok {
		t.Error("accepted a sub-threshold score")
	}
}

func TestValidateRejectsMissingID(t *testing.T) {
	v := New(&fakeSearcher{results: []musicbrainz.Artist{
		{Name: "Daft Punk", Score: 100},
	}}, testLogger())

	if _, ok := v.Validate(context.Background(), "daft punk"); ok {
		t.Error("accepted a result with no id")
	}
}

func TestValidateRejectsDissimilarName(t *testing.T) {
	v := New(&fakeSearcher{results: []musicbrainz.Artist{
		{ID: "1", Name: "Completely Different", Score: 95},
	}}, testLogger())

	if _, ok := v.Validate(context.Background(), "daft punk"); ok {
		t.Error("accepted a name that matches nothing")
	}
}

func TestValidateSwallowsTransportFailure(t *testing.T) {
	v := New(&fakeSearcher{err: errors.New("boom")}, testLogger())

	if _, ok := v.Validate(context.Background(), "daft punk"); ok {
		t.Error("accepted despite transport failure")
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"daft punk", "daft punk", true},
		{"daft pvnk", "daft punk", true},  // one substitution
		{"daft punk", "daft punkk", true}, // one insertion at end
		{"dat punk", "daft punk", false},  // shift misaligns every position after
		{"daft", "daft punk", false},      // length delta too large
		{"xyz", "abc", false},
		// Multibyte names count differences per character, not per byte.
		{"sigur ros", "sigur rós", true},
		{"motorhead", "motörhead", true},
		{"bjork", "björk", true},
	}
	for _, tt := range tests {
		if got := fuzzyMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("fuzzyMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
