package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/studyreader/internal/collection"
	"github.com/csheth/studyreader/internal/document"
	"github.com/csheth/studyreader/internal/llm"
	"github.com/csheth/studyreader/internal/remote"
	"github.com/csheth/studyreader/internal/render"
)

type documentOpenedMsg struct {
	name string
	doc  document.Document
	err  error
}

type pageRenderedMsg struct {
	result render.Result
}

type cardsGeneratedMsg struct {
	req  llm.Request
	resp llm.Response
	err  error
}

type exportFinishedMsg struct {
	path  string
	count int
	err   error
}

type ankiPushedMsg struct {
	deck  string
	added int
	total int
	err   error
}

// openDocumentJob reads and decodes input. URLs and arXiv identifiers go
// through the download cache; anything else is a local path.
func openDocumentJob(input string, cache *remote.Cache) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, openTimeout)
		defer cancel()
		name, path, err := remote.Locate(ctx, input, cache)
		if err != nil {
			return documentOpenedMsg{name: input, err: err}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return documentOpenedMsg{name: name, err: err}, err
		}
		doc, err := document.Open(name, data)
		if err != nil {
			return documentOpenedMsg{name: name, err: err}, err
		}
		return documentOpenedMsg{name: name, doc: doc}, nil
	}
}

func renderPageJob(work func() render.Result) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		res := work()
		return pageRenderedMsg{result: res}, res.Err
	}
}

func generateCardsJob(req llm.Request, call func(context.Context) (llm.Response, error)) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, generateTimeout)
		defer cancel()
		resp, err := call(ctx)
		return cardsGeneratedMsg{req: req, resp: resp, err: err}, err
	}
}

// exportLedgerJob writes a snapshot of entries, so later collection changes
// do not race the file write.
func exportLedgerJob(path string, kind collection.Kind, entries []collection.Entry) jobRunner {
	toWrite := append([]collection.Entry(nil), entries...)
	return func(context.Context) (tea.Msg, error) {
		err := writeExport(path, kind, toWrite)
		return exportFinishedMsg{path: path, count: len(toWrite), err: err}, err
	}
}

func writeExport(path string, kind collection.Kind, entries []collection.Entry) (err error) {
	format, err := collection.ParseFormat(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return collection.Write(f, kind, format, entries)
}

func pushAnkiJob(anki *collection.Anki, deck string, entries []collection.Entry) jobRunner {
	toPush := append([]collection.Entry(nil), entries...)
	return func(parent context.Context) (tea.Msg, error) {
		if anki == nil {
			err := errors.New("anki is not configured")
			return ankiPushedMsg{deck: deck, err: err}, err
		}
		ctx, cancel := context.WithTimeout(parent, ankiTimeout)
		defer cancel()
		added, err := anki.Push(ctx, deck, toPush)
		return ankiPushedMsg{deck: deck, added: added, total: len(toPush), err: err}, err
	}
}

// describeError turns job failures into a single status line.
func describeError(err error) string {
	var apiErr *llm.APIError
	var decodeErr *document.DecodeError
	var renderErr *render.RenderError
	switch {
	case errors.As(err, &apiErr) && apiErr.Kind == llm.KindCredential:
		return "No working API key. Press K to set one."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Request failed: %v", apiErr)
	case errors.Is(err, document.ErrInvalidFileType):
		return "Invalid file type. Open a PDF, EPUB, or plain-text file."
	case errors.As(err, &decodeErr):
		return fmt.Sprintf("Could not read %s: %v", filepath.Base(decodeErr.Name), decodeErr.Err)
	case errors.As(err, &renderErr):
		return fmt.Sprintf("Page %d failed to render: %v", renderErr.Page, renderErr.Err)
	default:
		return err.Error()
	}
}
