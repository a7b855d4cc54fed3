package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/sydlexius/headliner/internal/classify"
	"github.com/sydlexius/headliner/internal/config"
	"github.com/sydlexius/headliner/internal/event"
	"github.com/sydlexius/headliner/internal/imageextract"
	"github.com/sydlexius/headliner/internal/logging"
	"github.com/sydlexius/headliner/internal/musicbrainz"
	"github.com/sydlexius/headliner/internal/ocr"
	"github.com/sydlexius/headliner/internal/pipeline"
	"github.com/sydlexius/headliner/internal/similar"
	"github.com/sydlexius/headliner/internal/store"
	"github.com/sydlexius/headliner/internal/validate"
	"github.com/sydlexius/headliner/internal/version"
	"github.com/sydlexius/headliner/internal/watcher"
	"github.com/sydlexius/headliner/internal/webextract"
)

const usage = `headliner %s

Usage:
  headliner scrape <url>                          scrape a lineup page and classify its artists
  headliner scan [-festival NAME] [-url URL] <source>
                                                  scan a poster (file path, URL, or data URI)
  headliner watch                                 watch the poster inbox for dropped images
  headliner festivals                             list known festivals
  headliner artists [-festival NAME]              list known artists
  headliner show <artist>                         show one artist with similar acts
  headliner similar [-n K] <artist>               list artists with overlapping genres
  headliner version                               print the version
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, usage, version.Version)
		return fmt.Errorf("no command given")
	}
	if args[0] == "version" {
		fmt.Println(version.Version)
		return nil
	}

	configPath := os.Getenv("HL_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closer := logging.New(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	})
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}
	slog.SetDefault(logger)

	app := newApp(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "scrape":
		return app.scrape(ctx, args[1:])
	case "scan":
		return app.scan(ctx, args[1:])
	case "watch":
		return app.watch(ctx)
	case "festivals":
		return app.festivals()
	case "artists":
		return app.artists(args[1:])
	case "show":
		return app.show(args[1:])
	case "similar":
		return app.similar(args[1:])
	default:
		fmt.Fprintf(os.Stderr, usage, version.Version)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	pipeline *pipeline.Pipeline
	bus      *event.Bus
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	mb := musicbrainz.NewWithBaseURL(logger, cfg.MusicBrainz.BaseURL)
	validator := validate.New(mb, logger)
	classifier := classify.New(mb, logger)
	web := webextract.New(logger)
	recognizer := ocr.NewClient(cfg.OCR.Endpoint, cfg.OCR.Timeout, logger)
	image := imageextract.New(recognizer, validator, logger)
	st := store.New(cfg.Store.Path, logger)
	bus := event.NewBus(logger, 64)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		pipeline: pipeline.New(web, image, validator, classifier, st, bus, logger),
		bus:      bus,
	}
}

func printProgress(label string, done, total int) {
	if total > 0 {
		fmt.Printf("\r\033[K  [%d/%d] %s", done, total, label)
	} else {
		fmt.Printf("\r\033[K  %s", label)
	}
}

func (a *app) scrape(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: headliner scrape <url>")
	}

	res, err := a.pipeline.RunWeb(ctx, fs.Arg(0), printProgress)
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Printf("merged %d artists from %q\n", len(res.Artists), res.Festival)
	return nil
}

func (a *app) scan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	festivalName := fs.String("festival", "", "festival name for the merged lineup")
	festivalURL := fs.String("url", "", "festival source url")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: headliner scan [-festival NAME] [-url URL] <source>")
	}

	src, err := posterSource(fs.Arg(0))
	if err != nil {
		return err
	}
	name := *festivalName
	if name == "" {
		if strings.HasPrefix(fs.Arg(0), "data:") {
			name = webextract.UnknownFestival
		} else {
			name = watcher.FestivalNameFromFile(fs.Arg(0))
		}
	}

	res, err := a.pipeline.RunImage(ctx, src, store.FestivalInfo{Name: name, URL: *festivalURL}, printProgress)
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Printf("merged %d artists into %q\n", len(res.Artists), res.Festival)
	return nil
}

// posterSource resolves a scan argument: a remote URL and a data URI pass
// through, anything else is read as a local file.
func posterSource(arg string) (imageextract.Source, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "data:") {
		return imageextract.Source{URL: arg}, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return imageextract.Source{}, fmt.Errorf("reading poster file: %w", err)
	}
	return imageextract.Source{Data: data}, nil
}

func (a *app) watch(ctx context.Context) error {
	if a.cfg.Inbox.Path == "" {
		return fmt.Errorf("inbox path not configured (set inbox.path or HL_INBOX_PATH)")
	}

	go a.bus.Start()
	defer a.bus.Stop()
	a.bus.SubscribeAll(func(e event.Event) {
		a.logger.Info("event", slog.String("type", string(e.Type)), slog.String("run_id", e.RunID))
	})

	submit := func(ctx context.Context, path string) error {
		src, err := posterSource(path)
		if err != nil {
			return err
		}
		info := store.FestivalInfo{Name: watcher.FestivalNameFromFile(path), URL: path}
		res, err := a.pipeline.RunImage(ctx, src, info, nil)
		if err != nil {
			return err
		}
		a.logger.Info("poster merged",
			slog.String("festival", res.Festival),
			slog.Int("artists", len(res.Artists)))
		return nil
	}

	svc := watcher.NewService(a.cfg.Inbox.Path, submit, a.bus, a.logger)
	if a.cfg.Inbox.Debounce > 0 {
		svc.SetDebounce(a.cfg.Inbox.Debounce)
	}
	return svc.Start(ctx)
}

func (a *app) festivals() error {
	kb, err := a.store.Load()
	if err != nil {
		return err
	}
	if len(kb.Festivals) == 0 {
		fmt.Println("no festivals yet")
		return nil
	}
	for _, f := range kb.Festivals {
		fmt.Printf("%-30s  %3d artists  %s\n", f.Name, f.ArtistCount, f.DateScraped.Format("2006-01-02"))
	}
	return nil
}

func (a *app) artists(args []string) error {
	fs := flag.NewFlagSet("artists", flag.ContinueOnError)
	festival := fs.String("festival", "", "only artists seen at this festival")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kb, err := a.store.Load()
	if err != nil {
		return err
	}

	var list []*store.Artist
	for _, artist := range kb.Artists {
		if *festival != "" && !appearedAt(artist, *festival) {
			continue
		}
		list = append(list, artist)
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})

	for _, artist := range list {
		fmt.Printf("%-30s  %s\n", artist.Name, strings.Join(artist.Genres, ", "))
	}
	return nil
}

func appearedAt(artist *store.Artist, festival string) bool {
	for _, ref := range artist.Festivals {
		if strings.EqualFold(ref.Name, festival) {
			return true
		}
	}
	return false
}

func (a *app) show(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: headliner show <artist>")
	}

	kb, err := a.store.Load()
	if err != nil {
		return err
	}
	artist, ok := kb.Artists[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		return fmt.Errorf("artist %q not in knowledge base", args[0])
	}

	fmt.Printf("%s\n", artist.Name)
	fmt.Printf("  genres: %s\n", strings.Join(artist.Genres, ", "))
	fmt.Printf("  timbre: %s\n", strings.Join(artist.Timbre, ", "))
	for _, ref := range artist.Festivals {
		fmt.Printf("  seen at: %s (%s)\n", ref.Name, ref.DateScraped.Format("2006-01-02"))
	}

	matches, err := similar.New(kb).Recommend(artist.Name, 5)
	if err == nil && len(matches) > 0 {
		fmt.Println("  similar:")
		for _, m := range matches {
			fmt.Printf("    %-26s  %.2f\n", m.Name, m.Similarity)
		}
	}
	return nil
}

func (a *app) similar(args []string) error {
	fs := flag.NewFlagSet("similar", flag.ContinueOnError)
	limit := fs.Int("n", 10, "maximum number of matches")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: headliner similar [-n K] <artist>")
	}

	kb, err := a.store.Load()
	if err != nil {
		return err
	}
	matches, err := similar.New(kb).Recommend(fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("no similar artists found")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%-30s  %.2f  %s\n", m.Name, m.Similarity, strings.Join(m.Genres, ", "))
	}
	return nil
}
