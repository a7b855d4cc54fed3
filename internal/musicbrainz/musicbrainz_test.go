package musicbrainz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewWithBaseURL(testLogger(), srv.URL)
	c.SetLimiter(rate.NewLimiter(rate.Inf, 1))
	c.SetBackoff(func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
	})
	return c, srv
}

func TestSearchArtists(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Error("missing User-Agent header")
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if q := r.URL.Query().Get("query"); q != `artist:"Daft Punk"` {
			t.Errorf("query = %q", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":1,"artists":[{"id":"056e4f3e","name":"Daft Punk","score":100}]}`))
	}))

	results, err := c.SearchArtists(context.Background(), "Daft Punk", 3)
	if err != nil {
		t.Fatalf("SearchArtists: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Name != "Daft Punk" || results[0].Score != 100 || results[0].ID != "056e4f3e" {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestArtistTagsSortedAndFiltered(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","name":"X","tags":[
			{"name":"House","count":3},
			{"name":"electronic","count":9},
			{"name":"seen live","count":0},
			{"name":"french house","count":5}
		]}`))
	}))

	tags, err := c.ArtistTags(context.Background(), "x")
	if err != nil {
		t.Fatalf("ArtistTags: %v", err)
	}
	want := []Tag{{"electronic", 9}, {"french house", 5}, {"house", 3}}
	if len(tags) != len(want) {
		t.Fatalf("got %d tags, want %d", len(tags), len(want))
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %+v, want %+v", i, tags[i], want[i])
		}
	}
}

func TestRetryOn503(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"artists":[]}`))
	}))

	if _, err := c.SearchArtists(context.Background(), "anyone", 1); err != nil {
		t.Fatalf("SearchArtists after 503s: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestRetryExhaustedReturnsUnavailable(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.SearchArtists(context.Background(), "anyone", 1)
	var unavail *ErrUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestNon200IsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.SearchArtists(context.Background(), "anyone", 1)
	var status *ErrStatus
	if !errors.As(err, &status) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	if status.Status != http.StatusBadRequest {
		t.Errorf("Status = %d", status.Status)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}
