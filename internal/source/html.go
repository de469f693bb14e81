package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/fragdeck/internal/markup"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
//
// Each <section>, <h1> or <h2> starts a page. Elements are mapped to tags named
// by their first class, so <span class="f"> is a fragment and <div class="3">
// is numbered fragment 3.
type HTMLParser struct{}

var htmlBlockElements = map[string]bool{
	"div": true, "section": true, "article": true, "blockquote": true,
	"pre": true, "table": true, "tr": true, "figure": true, "aside": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true, "footer": true,
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*markup.Deck, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	deck := &markup.Deck{Title: baseTitle(filename)}
	if title := findTitle(doc); title != "" {
		deck.Title = title
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}
	if class := attr(body, "class"); class != "" {
		deck.Properties = append(deck.Properties, markup.Property{Key: markup.DirectiveClass, Values: strings.Fields(class)})
	}
	if hasAttr(body, "data-autofragment") {
		deck.Properties = append(deck.Properties, markup.Property{Key: markup.DirectiveAutofragment})
	}

	b := &htmlBuilder{deck: deck}
	b.walkBlocks(body)
	b.flush()

	return deck, nil
}

type htmlBuilder struct {
	deck    *markup.Deck
	current *markup.Page
}

func (b *htmlBuilder) page() *markup.Page {
	if b.current == nil {
		b.current = &markup.Page{}
	}
	return b.current
}

func (b *htmlBuilder) flush() {
	if b.current == nil {
		return
	}
	if b.current.Title == nil && len(b.current.Children) == 0 {
		b.current = nil
		return
	}
	if b.current.Title == nil {
		b.current.Title = markup.NewText("")
	}
	b.deck.Pages = append(b.deck.Pages, b.current)
	b.current = nil
}

func (b *htmlBuilder) hasContent() bool {
	return b.current != nil && (b.current.Title != nil || len(b.current.Children) > 0)
}

// walkBlocks visits the children of n as page-level content.
func (b *htmlBuilder) walkBlocks(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if t := strings.TrimSpace(collapseSpace(c.Data)); t != "" {
				b.page().Children = append(b.page().Children, textLine(t))
			}
			continue
		case html.ElementNode:
		default:
			continue
		}

		switch c.Data {
		case "script", "style", "nav", "head":
			continue
		case "section":
			b.flush()
			b.page().Properties = append(b.page().Properties, sectionProperties(c)...)
			b.walkBlocks(c)
			b.flush()
			continue
		case "h1", "h2":
			if b.hasContent() {
				b.flush()
			}
			b.page().Title = group(convertInlines(c))
			continue
		}

		if converted := convertElement(c, 0); converted != nil {
			b.page().Children = append(b.page().Children, converted)
		}
	}
}

// sectionProperties maps class and data-autofragment onto page properties.
func sectionProperties(n *html.Node) []markup.Property {
	var props []markup.Property
	if class := attr(n, "class"); class != "" {
		props = append(props, markup.Property{Key: markup.DirectiveClass, Values: strings.Fields(class)})
	}
	if hasAttr(n, "data-autofragment") {
		props = append(props, markup.Property{Key: markup.DirectiveAutofragment})
	}
	return props
}

func convertElement(n *html.Node, level int) *markup.Node {
	switch n.Data {
	case "p":
		return markup.NewLine().AddChildren(convertInlines(n)...)
	case "br", "hr", "img", "script", "style":
		return nil
	case "ul", "ol":
		list := markup.NewList(level)
		for li := n.FirstChild; li != nil; li = li.NextSibling {
			if li.Type != html.ElementNode || li.Data != "li" {
				continue
			}
			list.AddChildren(convertListItem(li, level+1)...)
		}
		return list
	}

	name := n.Data
	class := strings.Fields(attr(n, "class"))
	if len(class) > 0 {
		name = class[0]
	} else if n.Data == "div" {
		// A bare div only groups its children.
		line := markup.NewLine()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if converted := convertChild(c, level); converted != nil {
				line.AddChildren(converted)
			}
		}
		return line
	}
	tag := markup.NewTag(name, htmlBlockElements[n.Data])
	if tag.Multiline {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if converted := convertChild(c, level); converted != nil {
				tag.AddChildren(converted)
			}
		}
		return tag
	}
	return tag.AddChildren(convertInlines(n)...)
}

// convertListItem splits an <li> into its inline text and any nested lists.
func convertListItem(li *html.Node, level int) []*markup.Node {
	var out []*markup.Node
	line := markup.NewLine()
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			if len(line.Children) > 0 {
				out = append(out, line)
				line = markup.NewLine()
			}
			out = append(out, convertElement(c, level))
			continue
		}
		line.AddChildren(convertInline(c)...)
	}
	if len(line.Children) > 0 {
		out = append(out, line)
	}
	return out
}

func convertChild(n *html.Node, level int) *markup.Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return markup.NewText(collapseSpace(n.Data))
	case html.ElementNode:
		return convertElement(n, level)
	}
	return nil
}

func convertInlines(n *html.Node) []*markup.Node {
	var out []*markup.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, convertInline(c)...)
	}
	return out
}

func convertInline(n *html.Node) []*markup.Node {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return []*markup.Node{markup.NewText(collapseSpace(n.Data))}
	case html.ElementNode:
		switch n.Data {
		case "br":
			return []*markup.Node{markup.NewText(" ")}
		case "script", "style":
			return nil
		}
		name := n.Data
		if class := strings.Fields(attr(n, "class")); len(class) > 0 {
			name = class[0]
		}
		return []*markup.Node{markup.NewTag(name, false).AddChildren(convertInlines(n)...)}
	}
	return nil
}

// collapseSpace folds runs of whitespace into single spaces.
func collapseSpace(s string) string {
	var buf strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if !space {
				buf.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		buf.WriteRune(r)
	}
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
