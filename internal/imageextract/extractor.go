// Package imageextract pulls performer-name candidates out of photographed
// or scanned lineup posters.
package imageextract

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/sydlexius/headliner/internal/noise"
	"github.com/sydlexius/headliner/internal/ocr"
)

// confidenceThreshold discards low-certainty recognition fragments.
const confidenceThreshold = 0.25

// ImageLoadError indicates the poster source could not be fetched or
// decoded. It aborts the unit of work.
type ImageLoadError struct {
	Source string
	Cause  error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("loading image %s: %v", e.Source, e.Cause)
}

func (e *ImageLoadError) Unwrap() error { return e.Cause }

// Source identifies a poster image: raw bytes from an upload, a remote URL,
// or a data URI.
type Source struct {
	Data []byte
	URL  string
}

func (s Source) describe() string {
	if len(s.Data) > 0 {
		return fmt.Sprintf("<%d bytes>", len(s.Data))
	}
	if strings.HasPrefix(s.URL, "data:") {
		return "<data uri>"
	}
	return s.URL
}

// NameValidator confirms a candidate against the artist registry, returning
// its canonical spelling.
type NameValidator interface {
	Validate(ctx context.Context, candidate string) (string, bool)
}

// ProgressFunc reports per-pass and per-name progress.
type ProgressFunc func(label string, done, total int)

// Extractor runs multi-variant recognition over poster images.
type Extractor struct {
	recognizer ocr.Recognizer
	validator  NameValidator
	client     *http.Client
	profile    *noise.Profile
	logger     *slog.Logger
}

// New creates a poster extractor.
func New(recognizer ocr.Recognizer, validator NameValidator, logger *slog.Logger) *Extractor {
	return &Extractor{
		recognizer: recognizer,
		validator:  validator,
		client:     &http.Client{Timeout: 30 * time.Second},
		profile:    noise.OCR(),
		logger:     logger.With(slog.String("component", "imageextract")),
	}
}

// Extract decodes the poster, runs recognition over each preprocessing
// variant, and returns the surviving candidates deduplicated
// case-insensitively. With validate set, only names the registry confirms
// are returned, under their canonical spelling; pacing against the
// registry's rate limit is enforced by the metadata client.
func (e *Extractor) Extract(ctx context.Context, src Source, validateNames bool, onProgress ProgressFunc) ([]string, error) {
	progress := func(label string, done, total int) {
		if onProgress != nil {
			onProgress(label, done, total)
		}
	}

	img, err := e.load(ctx, src)
	if err != nil {
		return nil, err
	}

	passes := variants(img)
	var candidates []string
	for i, v := range passes {
		progress(fmt.Sprintf("recognition pass %d/%d", i+1, len(passes)), i, len(passes))

		encoded, err := encodePNG(v)
		if err != nil {
			return nil, err
		}
		words, err := e.recognizer.Recognize(ctx, encoded)
		if err != nil {
			// One variant failing is survivable; the others may still read.
			e.logger.Warn("recognition pass failed",
				slog.Int("pass", i+1), slog.String("error", err.Error()))
			continue
		}
		candidates = append(candidates, e.filterWords(words)...)
	}
	progress("recognition complete", len(passes), len(passes))

	unique := dedupe(candidates)
	if !validateNames {
		return unique, nil
	}

	var confirmed []string
	for i, candidate := range unique {
		progress(candidate, i+1, len(unique))
		if canonical, ok := e.validator.Validate(ctx, candidate); ok {
			confirmed = append(confirmed, canonical)
		}
	}
	return dedupe(confirmed), nil
}

func (e *Extractor) load(ctx context.Context, src Source) (image.Image, error) {
	data := src.Data
	switch {
	case len(data) > 0:
	case strings.HasPrefix(src.URL, "data:"):
		_, encoded, found := strings.Cut(src.URL, ",")
		if !found {
			return nil, &ImageLoadError{Source: src.describe(), Cause: fmt.Errorf("malformed data URI")}
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, &ImageLoadError{Source: src.describe(), Cause: err}
		}
		data = decoded
	case src.URL != "":
		fetched, err := e.fetchRemote(ctx, src.URL)
		if err != nil {
			return nil, &ImageLoadError{Source: src.URL, Cause: err}
		}
		data = fetched
	default:
		return nil, &ImageLoadError{Source: "<empty>", Cause: fmt.Errorf("no image source given")}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageLoadError{Source: src.describe(), Cause: err}
	}
	return img, nil
}

func (e *Extractor) fetchRemote(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 20<<20))
}

var (
	leadingSymbols    = regexp.MustCompile(`^[•·\-*|>#@\s]+`)
	trailingSymbols   = regexp.MustCompile(`[•·\-*|<#@\s]+$`)
	posterDelimiters  = regexp.MustCompile(`\s*[|/]\s*`)
	hasPipeOrSlashSep = func(s string) bool {
		return strings.Contains(s, " | ") || strings.Contains(s, " / ")
	}
)

// filterWords turns raw recognition output into name candidates: confidence
// cut, decorative-symbol strip, noise profile, and splitting of fragments the
// poster delimited with pipes or slashes.
func (e *Extractor) filterWords(words []ocr.Word) []string {
	var candidates []string
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" || w.Confidence < confidenceThreshold {
			continue
		}

		text = leadingSymbols.ReplaceAllString(text, "")
		text = trailingSymbols.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)

		// The whole fragment must pass before any splitting: a noisy line
		// is dropped outright, not salvaged piecewise.
		if e.profile.IsNoise(text) {
			continue
		}

		if hasPipeOrSlashSep(text) {
			for _, part := range posterDelimiters.Split(text, -1) {
				part = strings.TrimSpace(part)
				if part != "" && !e.profile.IsNoise(part) {
					candidates = append(candidates, part)
				}
			}
			continue
		}

		candidates = append(candidates, text)
	}
	return candidates
}

// dedupe removes case-insensitive duplicates (min length 2), preserving
// first-seen order and casing.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if len(key) < 2 {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
