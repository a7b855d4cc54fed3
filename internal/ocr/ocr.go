// Package ocr defines the text recognition capability and an HTTP client for
// a recognition sidecar service.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Word is a single recognized text fragment with its confidence in [0, 1].
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognizer turns image bytes into recognized text fragments. The engine
// itself (model loading, GPU use, languages) is outside this module.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) ([]Word, error)
}

// Client is a Recognizer backed by an HTTP recognition service: PNG bytes in,
// JSON word list out.
type Client struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewClient creates a recognition client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		logger:   logger.With(slog.String("component", "ocr")),
	}
}

// Recognize posts the image to the recognition service and decodes its
// response.
func (c *Client) Recognize(ctx context.Context, png []byte) ([]Word, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling recognition service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("recognition service returned HTTP %d", resp.StatusCode)
	}

	var words []Word
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&words); err != nil {
		return nil, fmt.Errorf("decoding recognition response: %w", err)
	}

	c.logger.Debug("recognition pass complete",
		slog.Int("words", len(words)),
		slog.Duration("elapsed", time.Since(start)))
	return words, nil
}
