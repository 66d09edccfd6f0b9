package main

import (
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/csheth/studyreader/internal/collection"
	"github.com/csheth/studyreader/internal/config"
	"github.com/csheth/studyreader/internal/document"
	"github.com/csheth/studyreader/internal/gateway"
	"github.com/csheth/studyreader/internal/llm"
	"github.com/csheth/studyreader/internal/remote"
	"github.com/csheth/studyreader/internal/render"
	"github.com/csheth/studyreader/internal/session"
	"github.com/csheth/studyreader/internal/storage"
	"github.com/csheth/studyreader/internal/tui"
	"github.com/csheth/studyreader/pkg/logger"
)

const formatAnki = "anki"

// loadConfig reads the config file named by --config and applies the global
// flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("storage") {
		cfg.UseBackend(c.String("storage"), os.Getenv("STUDYREADER_STORAGE_PATH") == "")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *logger.Logger {
	l := logger.New(logger.WithOutput(out), logger.WithPrefix("studyreader "))
	l.SetVerbose(cfg.Verbose)
	return l
}

func openStore(cfg *config.Config, lg *logger.Logger) (storage.Store, error) {
	if dir := filepath.Dir(cfg.Storage.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, storage.WithLogger(lg))
	if err != nil {
		return nil, fmt.Errorf("open %s store %s: %w", cfg.Storage.Backend, cfg.Storage.Path, err)
	}
	return store, nil
}

func parseKind(name string) (collection.Kind, error) {
	switch collection.Kind(strings.ToLower(strings.TrimSpace(name))) {
	case collection.KindFlashcard:
		return collection.KindFlashcard, nil
	case collection.KindLanguage:
		return collection.KindLanguage, nil
	default:
		return "", fmt.Errorf("unknown collection kind %q (want flashcard or language)", name)
	}
}

func readAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// The terminal belongs to the reader, so logs go to a file or nowhere.
	out := io.Discard
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "studyreader ")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	} else {
		log.SetOutput(io.Discard)
	}
	lg := newLogger(cfg, out)

	store, err := openStore(cfg, lg)
	if err != nil {
		return err
	}
	defer store.Close()

	sess := session.New(cfg, store, llm.NewClient(cfg, nil), lg)
	defer sess.Close()
	sess.SetRaster(c.Bool("raster"))
	if c.IsSet("model") {
		if err := sess.SetModel(c.String("model")); err != nil {
			return err
		}
	}

	cache, err := remote.NewCache(cfg.CacheDir, nil)
	if err != nil {
		lg.Warn("Remote documents disabled: %v", err)
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !c.Bool("no-alt-screen") {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Session:   sess,
			Cache:     cache,
			Anki:      collection.NewAnki(cfg.Anki.Endpoint, nil, lg),
			AnkiDeck:  cfg.Anki.Deck,
			ExportDir: c.String("export-dir"),
			Open:      c.Args().First(),
		}),
		opts...,
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Gateway.Addr = c.String("addr")
	}
	if c.IsSet("upload-dir") {
		cfg.Gateway.UploadDir = c.String("upload-dir")
	}
	lg := newLogger(cfg, os.Stderr)

	// The gateway always calls providers directly; a gateway URL in the
	// config would point it at itself.
	srv, err := gateway.New(cfg, llm.NewRegistry(cfg, nil), lg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

func exportAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	kind, err := parseKind(c.String("kind"))
	if err != nil {
		return err
	}
	store, err := openStore(cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer store.Close()
	ledger := collection.Open(store, kind)
	if ledger.Count() == 0 {
		return fmt.Errorf("the %s collection is empty", kind)
	}

	if strings.EqualFold(c.String("format"), formatAnki) {
		deck := cfg.Anki.Deck
		if c.IsSet("deck") {
			deck = c.String("deck")
		}
		anki := collection.NewAnki(cfg.Anki.Endpoint, nil, newLogger(cfg, os.Stderr))
		added, err := anki.Push(c.Context, deck, ledger.Entries())
		if err != nil {
			return err
		}
		fmt.Printf("Added %d of %d card(s) to Anki deck %q\n", added, ledger.Count(), deck)
		return nil
	}

	format, err := collection.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" && format == collection.FormatCSV {
		return ledger.Export(os.Stdout, format)
	}
	if out == "" {
		out = collection.FileName(kind, format)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := ledger.Export(f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Exported %d card(s) to %s\n", ledger.Count(), out)
	return nil
}

func pagesAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: studyreader pages <document>", 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cache, err := remote.NewCache(cfg.CacheDir, nil)
	if err != nil {
		return err
	}
	name, local, err := remote.Locate(c.Context, c.Args().First(), cache)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(local)
	if err != nil {
		return err
	}
	doc, err := document.Open(name, data)
	if err != nil {
		return err
	}
	defer doc.Close()
	if doc.Kind() != document.KindPDF {
		return fmt.Errorf("%s pages have no graphics surface; only PDF pages can be exported", doc.Kind())
	}

	scale := cfg.Render.DefaultScale
	if c.IsSet("scale") {
		scale = c.Float64("scale")
	}
	scale = render.ClampScale(scale, cfg.Render.MinScale, cfg.Render.MaxScale)
	first, last := c.Int("first"), c.Int("last")
	if last == 0 || last > doc.NumPages() {
		last = doc.NumPages()
	}
	if first < 1 || first > last {
		return fmt.Errorf("page range %d..%d is outside 1..%d", first, last, doc.NumPages())
	}

	dir := c.String("out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	renderer := render.Renderer{
		Grid:             render.Grid{CellWidth: cfg.Render.CellWidth, CellHeight: cfg.Render.CellHeight},
		DevicePixelRatio: cfg.Render.DevicePixelRatio,
		Raster:           true,
	}
	for n := first; n <= last; n++ {
		page, err := renderer.Render(doc, n, scale)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", n))
		if err := writePNG(path, page); err != nil {
			return err
		}
		fmt.Printf("%s  %dx%d\n", path, page.Viewport.PixelWidth, page.Viewport.PixelHeight)
	}
	return nil
}

func writePNG(path string, page *render.Page) error {
	if page.Raster == nil {
		return fmt.Errorf("page %d has no raster", page.Number)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, page.Raster); err != nil {
		f.Close()
		return fmt.Errorf("encode page %d: %w", page.Number, err)
	}
	return f.Close()
}

func collectionAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	kind, err := parseKind(c.String("kind"))
	if err != nil {
		return err
	}
	store, err := openStore(cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer store.Close()

	entries := collection.Open(store, kind).Entries()
	if len(entries) == 0 {
		fmt.Printf("No %s cards collected\n", kind)
		return nil
	}
	for i, e := range entries {
		answer := strings.ReplaceAll(e.TranslationAnswer, "\n", " / ")
		fmt.Printf("%3d  %s\n     %s\n", i+1, e.Phrase, answer)
	}
	fmt.Printf("\nTotal: %d card(s)\n", len(entries))
	return nil
}

func recentAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer store.Close()

	files := storage.RecentFiles(store)
	if len(files) == 0 {
		fmt.Println("No recent documents")
		return nil
	}
	for _, name := range files {
		page := storage.GetInt(store, storage.LastPageKey(name), 0)
		if page > 0 {
			fmt.Printf("%-60s page %d\n", name, page)
			continue
		}
		fmt.Println(name)
	}
	return nil
}
