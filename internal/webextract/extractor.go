// Package webextract pulls festival names and performer-name candidates out
// of arbitrary lineup web pages.
package webextract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html"

	"github.com/sydlexius/headliner/internal/name"
	"github.com/sydlexius/headliner/internal/noise"
)

const (
	// Accept header pages expect from a browser; some lineup sites refuse
	// non-browser user agents outright.
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxBodyBytes = 4 << 20

	// A readable-article rendition shorter than this is not worth mining.
	minReadableChars = 100
)

// FetchError indicates the page could not be retrieved or parsed. It aborts
// the unit of work.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Extractor extracts festival lineups from web pages.
type Extractor struct {
	client  *http.Client
	profile *noise.Profile
	logger  *slog.Logger
}

// New creates a web extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{
		client:  &http.Client{Timeout: 30 * time.Second},
		profile: noise.Web(),
		logger:  logger.With(slog.String("component", "webextract")),
	}
}

// Extract fetches the page and returns the festival name plus a deduplicated
// list of performer-name candidates. Candidates come from structural markup,
// plain text lines, and a supplementary readable-article rendition of the
// page.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (festival string, artists []string, err error) {
	doc, err := e.fetch(ctx, pageURL)
	if err != nil {
		return "", nil, err
	}

	festival = festivalName(doc, pageURL)

	// Readability scoring needs the intact tree; run it before stripping.
	readable := readableRoot(doc)

	detachAll(doc, func(n *html.Node) bool {
		return isElement(n, "script", "style", "nav", "footer", "header", "noscript")
	})

	scope := scopeToMain(doc)
	candidates := e.fromStructure(scope)
	candidates = append(candidates, e.fromTextLines(nodeTextLines(scope))...)

	// A readable-article pass supplements the primary extraction; it is
	// tuned for articles, not lineup lists, so it never replaces it.
	if readable != nil {
		candidates = append(candidates, e.fromStructure(readable)...)
		candidates = append(candidates, e.fromTextLines(nodeTextLines(readable))...)
	}

	e.logger.Debug("extraction complete",
		slog.String("url", pageURL),
		slog.String("festival", festival),
		slog.Int("candidates", len(candidates)))

	return festival, name.Dedupe(candidates), nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: pageURL, Cause: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: fmt.Errorf("parsing HTML: %w", err)}
	}
	return doc, nil
}

// scopeToMain narrows extraction to the page's main-content region, falling
// back through common wrapper conventions, else the whole page.
func scopeToMain(doc *html.Node) *html.Node {
	if n := findFirst(doc, func(n *html.Node) bool { return isElement(n, "main") }); n != nil {
		return n
	}
	fallbacks := []func(*html.Node) bool{
		func(n *html.Node) bool { return n.Type == html.ElementNode && attr(n, "role") == "main" },
		func(n *html.Node) bool { return n.Type == html.ElementNode && attr(n, "id") == "main-content" },
		func(n *html.Node) bool { return n.Type == html.ElementNode && attr(n, "id") == "content" },
		func(n *html.Node) bool { return classContains(n, "main-content") },
		func(n *html.Node) bool { return classContains(n, "content") },
	}
	for _, pred := range fallbacks {
		if n := findFirst(doc, pred); n != nil {
			return n
		}
	}
	return doc
}

// fromStructure extracts candidates from list and heading elements.
// Lineup-specific markup takes precedence: when a page labels its lineup,
// generic list elements elsewhere (navigation, footers) are ignored.
func (e *Extractor) fromStructure(root *html.Node) []string {
	var candidates []string
	add := func(n *html.Node) {
		if t := nodeText(n); e.plausible(t) {
			candidates = append(candidates, t)
		}
	}

	for _, container := range findAll(root, func(n *html.Node) bool { return classContains(n, "lineup") }) {
		for _, el := range findAll(container, func(n *html.Node) bool {
			return isElement(n, "li", "a", "h2", "h3", "h4")
		}) {
			add(el)
		}
	}
	for _, el := range findAll(root, func(n *html.Node) bool {
		return classContains(n, "artist", "performer")
	}) {
		add(el)
	}

	if len(candidates) == 0 {
		for _, el := range findAll(root, func(n *html.Node) bool {
			return isElement(n, "li", "h2", "h3", "h4")
		}) {
			add(el)
		}
	}

	return candidates
}

var bulletSeparators = regexp.MustCompile(`\s*[•·]\s*`)

// fromTextLines extracts candidates from plain text: comma lists, bullet
// lists, and whole lines.
func (e *Extractor) fromTextLines(text string) []string {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.Count(line, ",") >= 2 {
			parts := strings.Split(line, ",")
			if ok, cleaned := e.allPlausible(parts); ok {
				candidates = append(candidates, cleaned...)
				continue
			}
		}
		if strings.Contains(line, " • ") || strings.Contains(line, " · ") {
			parts := bulletSeparators.Split(line, -1)
			if ok, cleaned := e.allPlausible(parts); ok {
				candidates = append(candidates, cleaned...)
				continue
			}
		}
		if e.plausible(line) {
			candidates = append(candidates, line)
		}
	}
	return candidates
}

// allPlausible reports whether every non-empty part looks like an artist
// name, returning the trimmed parts when so.
func (e *Extractor) allPlausible(parts []string) (bool, []string) {
	var cleaned []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !e.plausible(p) {
			return false, nil
		}
		cleaned = append(cleaned, p)
	}
	return len(cleaned) > 0, cleaned
}

var urlish = regexp.MustCompile(`https?://|www\.|@.*\.`)

// plausible reports whether text could be an artist name: sane length and
// word count, not URL/email-shaped, mostly alphabetic, and clear of the
// noise vocabulary.
func (e *Extractor) plausible(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 2 || len(text) > 80 {
		return false
	}
	words := len(strings.Fields(text))
	if words < 1 || words > 6 {
		return false
	}
	if urlish.MatchString(text) {
		return false
	}
	alpha := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	if alpha*5 < len(text)*2 { // under 40% letters
		return false
	}
	// Very long single tokens are codes or mangled URLs, not names.
	if words == 1 && len(text) > 30 {
		return false
	}
	return !e.profile.IsNoise(text)
}
