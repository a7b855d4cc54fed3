package imageextract

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/sydlexius/headliner/internal/ocr"
)

type fakeRecognizer struct {
	words  []ocr.Word
	err    error
	passes int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte) ([]ocr.Word, error) {
	f.passes++
	return f.words, f.err
}

type fakeValidator struct {
	known map[string]string
	calls []string
}

func (f *fakeValidator) Validate(_ context.Context, candidate string) (string, bool) {
	f.calls = append(f.calls, candidate)
	canonical, ok := f.known[strings.ToLower(candidate)]
	return canonical, ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testPoster(t *testing.T) Source {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 8), B: 90, A: 255})
		}
	}
	data, err := encodePNG(img)
	if err != nil {
		t.Fatalf("encoding test poster: %v", err)
	}
	return Source{Data: data}
}

func TestExtractRunsThreeVariantPasses(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "Daft Punk", Confidence: 0.9},
	}}
	e := New(rec, &fakeValidator{}, testLogger())

	got, err := e.Extract(context.Background(), testPoster(t), false, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.passes != 3 {
		t.Errorf("recognition passes = %d, want 3", rec.passes)
	}
	if !reflect.DeepEqual(got, []string{"Daft Punk"}) {
		t.Errorf("got %v", got)
	}
}

func TestExtractFiltersNoiseAndLowConfidence(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "Bicep", Confidence: 0.8},
		{Text: "June 14", Confidence: 0.9},
		{Text: "VIP", Confidence: 0.95},
		{Text: "Ghost Reading", Confidence: 0.1},
		{Text: "• Four Tet •", Confidence: 0.7},
	}}
	e := New(rec, &fakeValidator{}, testLogger())

	got, err := e.Extract(context.Background(), testPoster(t), false, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"Bicep", "Four Tet"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractSplitsDelimitedFragments(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "Caribou | Overmono", Confidence: 0.8},
	}}
	e := New(rec, &fakeValidator{}, testLogger())

	got, err := e.Extract(context.Background(), testPoster(t), false, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"Caribou", "Overmono"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractDropsNoisyDelimitedLineWhole(t *testing.T) {
	// A fragment that is noise as a whole is not salvaged by splitting it.
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "Buy Tickets Now! | Bicep", Confidence: 0.8},
		{Text: "Caribou | Overmono", Confidence: 0.8},
	}}
	e := New(rec, &fakeValidator{}, testLogger())

	got, err := e.Extract(context.Background(), testPoster(t), false, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"Caribou", "Overmono"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractValidatesAgainstRegistry(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "Bjork", Confidence: 0.8},
		{Text: "Notarealband", Confidence: 0.8},
	}}
	val := &fakeValidator{known: map[string]string{"bjork": "Björk"}}
	e := New(rec, val, testLogger())

	got, err := e.Extract(context.Background(), testPoster(t), true, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Björk"}) {
		t.Errorf("got %v, want canonical spelling only", got)
	}
	if len(val.calls) != 2 {
		t.Errorf("validator called %d times, want 2", len(val.calls))
	}
}

func TestExtractSurvivesOneFailedPass(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("engine crashed")}
	e := New(rec, &fakeValidator{}, testLogger())

	got, err := e.Extract(context.Background(), testPoster(t), false, nil)
	if err != nil {
		t.Fatalf("Extract should tolerate failed passes: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestExtractReportsProgress(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{{Text: "Bicep", Confidence: 0.8}}}
	val := &fakeValidator{known: map[string]string{"bicep": "Bicep"}}
	e := New(rec, val, testLogger())

	var labels []string
	_, err := e.Extract(context.Background(), testPoster(t), true,
		func(label string, done, total int) { labels = append(labels, label) })
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// 3 pass labels + completion + 1 per validated name.
	if len(labels) != 5 {
		t.Errorf("progress fired %d times: %v", len(labels), labels)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	e := New(&fakeRecognizer{}, &fakeValidator{}, testLogger())

	_, err := e.Extract(context.Background(), Source{Data: []byte("not an image")}, false, nil)
	var le *ImageLoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected ImageLoadError, got %v", err)
	}
}

func TestLoadRejectsEmptySource(t *testing.T) {
	e := New(&fakeRecognizer{}, &fakeValidator{}, testLogger())

	_, err := e.Extract(context.Background(), Source{}, false, nil)
	var le *ImageLoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected ImageLoadError, got %v", err)
	}
}

func TestLoadDataURI(t *testing.T) {
	src := testPoster(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(src.Data)

	rec := &fakeRecognizer{}
	e := New(rec, &fakeValidator{}, testLogger())
	if _, err := e.Extract(context.Background(), Source{URL: uri}, false, nil); err != nil {
		t.Fatalf("Extract from data URI: %v", err)
	}
	if rec.passes != 3 {
		t.Errorf("passes = %d, want 3", rec.passes)
	}
}

func TestUpscaleSmallImages(t *testing.T) {
	small := image.NewNRGBA(image.Rect(0, 0, 300, 200))
	scaled := upscale(small)
	b := scaled.Bounds()
	if b.Dx() != minRecognitionSize {
		t.Errorf("width = %d, want %d", b.Dx(), minRecognitionSize)
	}
	if b.Dy() != 1000 {
		t.Errorf("height = %d, want 1000 (aspect preserved)", b.Dy())
	}

	big := image.NewNRGBA(image.Rect(0, 0, 2000, 1500))
	if got := upscale(big); got != image.Image(big) {
		t.Error("large image should not be rescaled")
	}
}

func TestDedupeMinLength(t *testing.T) {
	got := dedupe([]string{"Bicep", "bicep", "x", "Overmono"})
	want := []string{"Bicep", "Overmono"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupe = %v, want %v", got, want)
	}
}
