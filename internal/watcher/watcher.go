// Package watcher monitors a poster inbox directory and submits newly
// dropped image files as scan units of work.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sydlexius/headliner/internal/event"
)

// SubmitFunc receives the path of a settled poster file.
type SubmitFunc func(ctx context.Context, path string) error

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Service watches one inbox directory. A dropped file is debounced until
// writes stop arriving, then submitted exactly once. Non-image files are
// ignored.
type Service struct {
	inbox    string
	submit   SubmitFunc
	eventBus *event.Bus
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	seen    map[string]bool
}

// NewService creates a watcher for the given inbox directory.
func NewService(inbox string, submit SubmitFunc, eventBus *event.Bus, logger *slog.Logger) *Service {
	return &Service{
		inbox:    inbox,
		submit:   submit,
		eventBus: eventBus,
		logger:   logger.With(slog.String("component", "inbox-watcher")),
		debounce: 2 * time.Second,
		pending:  make(map[string]*time.Timer),
		seen:     make(map[string]bool),
	}
}

// SetDebounce overrides the default settle interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Start blocks until ctx is canceled, dispatching settled files to the
// submit function.
func (s *Service) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	if err := w.Add(s.inbox); err != nil {
		return err
	}
	s.logger.Info("watching poster inbox", slog.String("path", s.inbox))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("inbox watcher stopping")
			s.cancelPending()
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			s.handleFSEvent(ctx, ev)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (s *Service) handleFSEvent(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(ev.Name))] {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[ev.Name] {
		return
	}
	// Reset the per-file timer so a file still being copied in settles
	// before submission.
	if t, ok := s.pending[ev.Name]; ok {
		t.Stop()
	}
	path := ev.Name
	s.pending[path] = time.AfterFunc(s.debounce, func() {
		s.settle(ctx, path)
	})
}

func (s *Service) settle(ctx context.Context, path string) {
	s.mu.Lock()
	delete(s.pending, path)
	if s.seen[path] {
		s.mu.Unlock()
		return
	}
	s.seen[path] = true
	s.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	s.logger.Info("poster detected", slog.String("path", path))
	if s.eventBus != nil {
		s.eventBus.Publish(event.Event{
			Type: event.PosterDetected,
			Data: map[string]any{"path": path},
		})
	}

	if err := s.submit(ctx, path); err != nil {
		s.logger.Error("poster scan failed", slog.String("path", path), slog.Any("error", err))
	}
}

func (s *Service) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.pending {
		t.Stop()
	}
	s.pending = make(map[string]*time.Timer)
}

// FestivalNameFromFile derives a readable festival name from a poster file
// name: extension stripped, separators turned into spaces, words title-cased.
func FestivalNameFromFile(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
