// Command render writes one page of a deck as a standalone HTML document.
//
//	render [-page n] [-reveal] [-stylesheet file.css] deck.md > page.html
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/fragdeck/internal/htmlout"
	"github.com/dgallion1/fragdeck/internal/render"
	"github.com/dgallion1/fragdeck/internal/source"
)

func main() {
	page := flag.Int("page", 1, "page to render (1-based)")
	reveal := flag.Bool("reveal", false, "show every fragment")
	stylesheet := flag.String("stylesheet", "", "CSS file to embed instead of the built-in stylesheet")
	pdftotext := flag.Bool("pdftotext", true, "fall back to pdftotext for unreadable PDFs")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *page, *reveal, *stylesheet, *pdftotext); err != nil {
		log.Error("render failed", "file", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(path string, page int, reveal bool, stylesheet string, pdftotext bool) error {
	parser, err := source.ForFile(path, source.Options{PDFFallbackPdftotext: pdftotext})
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	deck, err := parser.Parse(f, path)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	pages, err := render.NewEvaluator(nil).Deck(deck)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if page < 1 || page > len(pages) {
		return fmt.Errorf("page %d out of range (deck has %d)", page, len(pages))
	}

	var css string
	if stylesheet != "" {
		b, err := os.ReadFile(stylesheet)
		if err != nil {
			return err
		}
		css = string(b)
	}

	w := bufio.NewWriter(os.Stdout)
	if err := htmlout.RenderDocument(w, pages[page-1], htmlout.Options{
		Title:      deck.Title,
		Stylesheet: css,
		RevealAll:  reveal,
	}); err != nil {
		return err
	}
	return w.Flush()
}
