package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/fragdeck/internal/markup"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading 1 and 2 paragraphs start pages,
// deeper headings become h3..h6 tags and other paragraphs become lines.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*markup.Deck, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "fragdeck-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var paras []docxPara
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		paras = append(paras, docxPara{level: docxHeadingLevel(para), text: docxParagraphText(para)})
	}

	return docxDeck(baseTitle(filename), paras), nil
}

// docxPara is the part of a paragraph the deck builder needs.
type docxPara struct {
	level int
	text  string
}

func docxDeck(title string, paras []docxPara) *markup.Deck {
	deck := &markup.Deck{Title: title}
	var current *markup.Page

	flush := func() {
		if current != nil {
			deck.Pages = append(deck.Pages, current)
			current = nil
		}
	}

	for _, para := range paras {
		if para.text == "" {
			continue
		}
		switch {
		case para.level == 1 || para.level == 2:
			flush()
			current = newPage(para.text)
		case para.level > 2:
			if current == nil {
				current = newPage("")
			}
			heading := markup.NewTag(fmt.Sprintf("h%d", para.level), true).AddChildren(markup.NewText(para.text))
			current.Children = append(current.Children, heading)
		default:
			if current == nil {
				current = newPage("")
			}
			current.Children = append(current.Children, textLine(para.text))
		}
	}
	flush()

	return deck
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if len(style) == len("heading1") && strings.HasPrefix(style, "heading") {
		if d := style[len(style)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
