// Package pipeline orchestrates units of work: scrape a lineup page or scan a
// poster, validate and classify the resulting names, and merge them into the
// knowledge base. The pipeline holds no global state; progress is observable
// only through the caller's injected sink and the event bus.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sydlexius/headliner/internal/classify"
	"github.com/sydlexius/headliner/internal/event"
	"github.com/sydlexius/headliner/internal/imageextract"
	"github.com/sydlexius/headliner/internal/name"
	"github.com/sydlexius/headliner/internal/store"
)

// ErrNoCandidates is returned when extraction yields zero plausible names.
// It is a terminal, user-facing condition distinct from a transport failure.
var ErrNoCandidates = errors.New("no artist names found")

// ErrNoneRecognized is returned when a poster scan produced candidates but
// none survived validation against the metadata service.
var ErrNoneRecognized = errors.New("no recognized artists found")

// ProgressFunc receives progress at well-defined points: once per OCR variant
// pass and once per validated or classified name. Purely observational.
type ProgressFunc func(label string, done, total int)

// WebExtractor pulls candidate artist names out of a lineup page.
type WebExtractor interface {
	Extract(ctx context.Context, pageURL string) (festival string, artists []string, err error)
}

// ImageExtractor pulls candidate artist names out of a poster image.
type ImageExtractor interface {
	Extract(ctx context.Context, src imageextract.Source, validateNames bool, onProgress imageextract.ProgressFunc) ([]string, error)
}

// NameValidator confirms a candidate against the metadata service and
// returns its canonical spelling.
type NameValidator interface {
	Validate(ctx context.Context, candidate string) (string, bool)
}

// Classifier resolves genre and timbre descriptors for artist names.
type Classifier interface {
	Classify(ctx context.Context, artistName string) (classify.Classification, error)
	ClassifyBatch(ctx context.Context, names []string, existing classify.GenreLookup, onProgress classify.ProgressFunc) map[string]classify.Classification
}

// Result summarizes a completed unit of work.
type Result struct {
	RunID    string
	Festival string
	Artists  []string
}

// Pipeline wires extractors, the validator, the classifier, and the store
// into runnable units of work.
type Pipeline struct {
	web        WebExtractor
	image      ImageExtractor
	validator  NameValidator
	classifier Classifier
	store      *store.Store
	bus        *event.Bus
	logger     *slog.Logger
}

// New creates a Pipeline. The bus may be nil when no observer is attached.
func New(web WebExtractor, image ImageExtractor, validator NameValidator, classifier Classifier, st *store.Store, bus *event.Bus, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		web:        web,
		image:      image,
		validator:  validator,
		classifier: classifier,
		store:      st,
		bus:        bus,
		logger:     logger.With(slog.String("component", "pipeline")),
	}
}

// RunWeb scrapes one lineup page, classifies every normalized name, and
// merges the results. The whole unit runs synchronously; a fetch failure or
// an empty extraction aborts it before anything is written.
func (p *Pipeline) RunWeb(ctx context.Context, pageURL string, onProgress ProgressFunc) (*Result, error) {
	runID := newRunID()
	logger := p.logger.With(slog.String("run_id", runID), slog.String("url", pageURL))
	p.publish(event.ScrapeStarted, runID, map[string]any{"url": pageURL})

	festival, raw, err := p.web.Extract(ctx, pageURL)
	if err != nil {
		p.publish(event.ScrapeFailed, runID, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("extracting lineup from %s: %w", pageURL, err)
	}

	names := name.Normalize(raw)
	if len(names) == 0 {
		p.publish(event.ScrapeFailed, runID, map[string]any{"error": ErrNoCandidates.Error()})
		return nil, ErrNoCandidates
	}
	logger.Info("lineup extracted", slog.String("festival", festival), slog.Int("names", len(names)))

	kb, err := p.store.Load()
	if err != nil {
		return nil, err
	}
	classifications := p.classifier.ClassifyBatch(ctx, names, kb, classify.ProgressFunc(safeProgress(onProgress)))

	if err := p.merge(names, classifications, store.FestivalInfo{Name: festival, URL: pageURL}); err != nil {
		p.publish(event.ScrapeFailed, runID, map[string]any{"error": err.Error()})
		return nil, err
	}

	p.publish(event.ScrapeCompleted, runID, map[string]any{
		"festival": festival,
		"artists":  len(names),
	})
	return &Result{RunID: runID, Festival: festival, Artists: names}, nil
}

// RunImage scans one poster in two phases. The scan phase runs OCR without
// per-name validation; the classify phase walks the candidates in order,
// reusing the stored display name for artists that already carry real
// genres, validating the rest against the metadata service, and silently
// dropping candidates that fail validation.
func (p *Pipeline) RunImage(ctx context.Context, src imageextract.Source, festival store.FestivalInfo, onProgress ProgressFunc) (*Result, error) {
	runID := newRunID()
	logger := p.logger.With(slog.String("run_id", runID), slog.String("festival", festival.Name))
	p.publish(event.ScanStarted, runID, map[string]any{"festival": festival.Name})

	progress := safeProgress(onProgress)
	raw, err := p.image.Extract(ctx, src, false, imageextract.ProgressFunc(progress))
	if err != nil {
		p.publish(event.ScanFailed, runID, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("scanning poster: %w", err)
	}

	candidates := name.Normalize(raw)
	if len(candidates) == 0 {
		p.publish(event.ScanFailed, runID, map[string]any{"error": ErrNoCandidates.Error()})
		return nil, ErrNoCandidates
	}
	logger.Info("poster scanned", slog.Int("candidates", len(candidates)))

	kb, err := p.store.Load()
	if err != nil {
		return nil, err
	}

	var validated []string
	classifications := make(map[string]classify.Classification)
	for i, candidate := range candidates {
		key := name.Key(candidate)

		// Already stored with real genres: skip the metadata service and
		// re-add under the stored display name.
		if artist, ok := kb.Artists[key]; ok && len(artist.Genres) > 0 && !classify.IsUnknown(artist.Genres) {
			validated = append(validated, artist.Name)
			progress(artist.Name, i+1, len(candidates))
			continue
		}

		canonical, ok := p.validator.Validate(ctx, candidate)
		if !ok {
			progress(candidate, i+1, len(candidates))
			continue
		}

		validated = append(validated, canonical)
		classification, err := p.classifier.Classify(ctx, canonical)
		if err != nil {
			logger.Warn("classification failed", slog.String("artist", canonical), slog.Any("error", err))
			classification = classify.Unknown()
		}
		classifications[canonical] = classification
		p.publish(event.ArtistClassified, runID, map[string]any{"artist": canonical})
		progress(canonical, i+1, len(candidates))
	}

	validated = name.Dedupe(validated)
	if len(validated) == 0 {
		p.publish(event.ScanFailed, runID, map[string]any{"error": ErrNoneRecognized.Error()})
		return nil, ErrNoneRecognized
	}

	if err := p.merge(validated, classifications, festival); err != nil {
		p.publish(event.ScanFailed, runID, map[string]any{"error": err.Error()})
		return nil, err
	}

	p.publish(event.ScanCompleted, runID, map[string]any{
		"festival": festival.Name,
		"artists":  len(validated),
	})
	return &Result{RunID: runID, Festival: festival.Name, Artists: validated}, nil
}

// merge reloads the store immediately before folding in results, so a long
// classify phase does not clobber merges from units that finished meanwhile.
func (p *Pipeline) merge(names []string, classifications map[string]classify.Classification, festival store.FestivalInfo) error {
	kb, err := p.store.Load()
	if err != nil {
		return err
	}
	kb = p.store.MergeArtists(kb, names, classifications, festival)
	return p.store.Save(kb)
}

func (p *Pipeline) publish(t event.Type, runID string, data map[string]any) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(event.Event{Type: t, RunID: runID, Data: data})
}

func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func safeProgress(f ProgressFunc) func(string, int, int) {
	if f == nil {
		return func(string, int, int) {}
	}
	return func(label string, done, total int) { f(label, done, total) }
}
