package ocr

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecognizePostsImageAndDecodesWords(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"text":"BICEP","confidence":0.91},{"text":"noise","confidence":0.12}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10*time.Second, testLogger())
	words, err := c.Recognize(context.Background(), []byte("png bytes"))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}

	if gotContentType != "image/png" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if string(gotBody) != "png bytes" {
		t.Errorf("body = %q", gotBody)
	}
	if len(words) != 2 {
		t.Fatalf("words = %d, want 2", len(words))
	}
	if words[0].Text != "BICEP" || words[0].Confidence != 0.91 {
		t.Errorf("words[0] = %+v", words[0])
	}
}

func TestRecognizeNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10*time.Second, testLogger())
	if _, err := c.Recognize(context.Background(), []byte("x")); err == nil {
		t.Error("expected error for HTTP 503")
	}
}

func TestRecognizeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json")) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10*time.Second, testLogger())
	if _, err := c.Recognize(context.Background(), []byte("x")); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestRecognizeUnreachableService(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/recognize", time.Second, testLogger())
	if _, err := c.Recognize(context.Background(), []byte("x")); err == nil {
		t.Error("expected error for unreachable service")
	}
}
