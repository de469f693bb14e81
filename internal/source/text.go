package source

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/fragdeck/internal/markup"
)

// TextParser handles plain text files. Paragraphs separated by blank lines
// become pages; the first line of a paragraph is its title. Lines starting
// with "- " are list items, indented by two spaces per level.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*markup.Deck, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	deck := &markup.Deck{Title: baseTitle(filename)}
	for _, para := range paragraphs {
		page := newPage(strings.TrimSpace(para[0]))
		var list *markup.Node
		for _, line := range para[1:] {
			trimmed := strings.TrimLeft(line, " ")
			if !strings.HasPrefix(trimmed, "- ") {
				list = nil
				page.Children = append(page.Children, textLine(strings.TrimSpace(line)))
				continue
			}
			level := (len(line) - len(trimmed)) / 2
			item := textLine(strings.TrimPrefix(trimmed, "- "))
			if list == nil || list.Level != level {
				list = markup.NewList(level)
				page.Children = append(page.Children, list)
			}
			list.AddChildren(item)
		}
		deck.Pages = append(deck.Pages, page)
	}

	return deck, nil
}
