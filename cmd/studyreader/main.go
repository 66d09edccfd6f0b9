package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/csheth/studyreader/internal/collection"
	"github.com/csheth/studyreader/internal/config"
)

func main() {
	app := &cli.App{
		Name:  "studyreader",
		Usage: "read documents in the terminal and turn passages into flashcards",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath(),
				Usage:   "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "storage backend override (json or sqlite)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write logs to this file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "include debug output in the log",
			},
		},
		DefaultCommand: "read",
		Commands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "open the reader, optionally on a file, URL or arXiv id",
				ArgsUsage: "[document]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-alt-screen", Usage: "disable the alternate screen buffer"},
					&cli.StringFlag{Name: "model", Usage: "select a model (remembered for later sessions)"},
					&cli.BoolFlag{Name: "raster", Usage: "paint page images for backends that support it"},
					&cli.StringFlag{Name: "export-dir", Value: ".", Usage: "default directory for collection exports"},
				},
				Action: readAction,
			},
			{
				Name:  "serve",
				Usage: "run the completion and upload gateway",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address (default from config)"},
					&cli.StringFlag{Name: "upload-dir", Usage: "directory for uploaded documents"},
				},
				Action: serveAction,
			},
			{
				Name:  "export",
				Usage: "write a card collection as CSV or XLSX, or push it to Anki",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Value: string(collection.KindFlashcard), Usage: "flashcard or language"},
					&cli.StringFlag{Name: "format", Value: "csv", Usage: "csv, xlsx or anki"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: stdout for csv, a named file for xlsx)"},
					&cli.StringFlag{Name: "deck", Usage: "Anki deck (default from config)"},
				},
				Action: exportAction,
			},
			{
				Name:      "pages",
				Usage:     "write page images of a PDF as PNG files",
				ArgsUsage: "<document>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "pages", Usage: "output directory"},
					&cli.Float64Flag{Name: "scale", Usage: "page scale (default from config)"},
					&cli.IntFlag{Name: "first", Value: 1, Usage: "first page"},
					&cli.IntFlag{Name: "last", Usage: "last page (default: the final page)"},
				},
				Action: pagesAction,
			},
			{
				Name:  "collection",
				Usage: "list collected cards",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Value: string(collection.KindFlashcard), Usage: "flashcard or language"},
				},
				Action: collectionAction,
			},
			{
				Name:   "recent",
				Usage:  "list recently opened documents",
				Action: recentAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "studyreader:", err)
		os.Exit(1)
	}
}
