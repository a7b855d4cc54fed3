// Package musicbrainz is a rate-limited client for the MusicBrainz artist
// search and tag endpoints.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/sydlexius/headliner/internal/version"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// ErrUnavailable indicates the service answered 503 on every retry attempt.
type ErrUnavailable struct {
	Cause error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("musicbrainz unavailable: %v", e.Cause)
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }

// ErrStatus indicates a non-200, non-503 response. Callers treat it as
// absence of data rather than a transport failure.
type ErrStatus struct {
	Status int
}

func (e *ErrStatus) Error() string {
	return fmt.Sprintf("musicbrainz returned HTTP %d", e.Status)
}

// Client talks to the MusicBrainz web service. All requests pass through a
// shared rate limiter; MusicBrainz allows roughly one request per second.
type Client struct {
	client  *http.Client
	limiter *rate.Limiter
	backoff func() retry.Backoff
	logger  *slog.Logger
	baseURL string
}

// New creates a client with the default base URL.
func New(logger *slog.Logger) *Client {
	return NewWithBaseURL(logger, defaultBaseURL)
}

// NewWithBaseURL creates a client against a custom base URL (for testing).
func NewWithBaseURL(logger *slog.Logger, baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(1, 1),
		backoff: func() retry.Backoff {
			// 3 attempts total, fixed 2s pause on 503.
			return retry.WithMaxRetries(2, retry.NewConstant(2*time.Second))
		},
		logger:  logger.With(slog.String("component", "musicbrainz")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetLimiter replaces the rate limiter (for testing).
func (c *Client) SetLimiter(l *rate.Limiter) { c.limiter = l }

// SetBackoff replaces the 503 retry policy (for testing).
func (c *Client) SetBackoff(b func() retry.Backoff) { c.backoff = b }

// SearchArtists searches for artists matching the given name, returning up to
// limit ranked results.
func (c *Client) SearchArtists(ctx context.Context, artistName string, limit int) ([]Artist, error) {
	params := url.Values{
		"query": {fmt.Sprintf("artist:%q", artistName)},
		"fmt":   {"json"},
		"limit": {fmt.Sprintf("%d", limit)},
	}
	reqURL := c.baseURL + "/artist?" + params.Encode()

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	results := make([]Artist, 0, len(resp.Artists))
	for _, a := range resp.Artists {
		results = append(results, Artist{
			ID:    a.ID,
			Name:  a.Name,
			Score: a.Score,
		})
	}
	return results, nil
}

// ArtistTags fetches the weighted tags for an artist, sorted by vote count
// descending. Zero-count tags are dropped and names are lowercased.
func (c *Client) ArtistTags(ctx context.Context, id string) ([]Tag, error) {
	params := url.Values{
		"inc": {"tags"},
		"fmt": {"json"},
	}
	reqURL := c.baseURL + "/artist/" + url.PathEscape(id) + "?" + params.Encode()

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var artist MBArtist
	if err := json.Unmarshal(body, &artist); err != nil {
		return nil, fmt.Errorf("parsing artist response: %w", err)
	}

	tags := make([]Tag, 0, len(artist.Tags))
	for _, t := range artist.Tags {
		if t.Count > 0 && t.Name != "" {
			tags = append(tags, Tag{Name: strings.ToLower(t.Name), Count: t.Count})
		}
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })
	return tags, nil
}

// doRequest executes an HTTP GET with rate limiting, standard headers, and
// bounded retry on 503.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent())
		req.Header.Set("Accept", "application/json")

		c.logger.Debug("requesting", slog.String("url", reqURL))

		resp, err := c.client.Do(req)
		if err != nil {
			return &ErrUnavailable{Cause: err}
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode == http.StatusServiceUnavailable {
			_, _ = io.Copy(io.Discard, resp.Body)
			return retry.RetryableError(&ErrUnavailable{
				Cause: fmt.Errorf("HTTP %d", resp.StatusCode),
			})
		}

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			return &ErrStatus{Status: resp.StatusCode}
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, 512*1024))
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func userAgent() string {
	return fmt.Sprintf("Headliner/%s (https://github.com/sydlexius/headliner)", version.Version)
}
