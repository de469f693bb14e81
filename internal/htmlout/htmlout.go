package htmlout

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/fragdeck/internal/render"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extra classes marking fragment reveal state, kept apart from tag-name classes.
const (
	ClassHidden  = "fragdeck-hidden"
	ClassVisible = "fragdeck-visible"
)

// DefaultStylesheet hides fragments until they are revealed.
const DefaultStylesheet = `body { font-family: sans-serif; margin: 0; }
#slideshow { padding: 2em 4em; }
.fragdeck-hidden { visibility: hidden; }
.fragdeck-visible { visibility: visible; }
h1 { margin-top: 0; }
`

// Options controls document output.
type Options struct {
	Title      string
	Stylesheet string
	// RevealAll renders every fragment as visible regardless of the page cursor.
	RevealAll bool
}

// Node converts a renderable page into an HTML element tree.
func Node(p *render.Page, revealAll bool) *html.Node {
	return convert(p, p.Root, revealAll)
}

func convert(p *render.Page, n *render.Node, revealAll bool) *html.Node {
	el := element(n)

	classes := strings.Fields(n.Class)
	if _, ok := p.Position(n); ok {
		if revealAll || p.Revealed(n) {
			classes = append(classes, ClassVisible)
		} else {
			classes = append(classes, ClassHidden)
		}
	}
	if len(classes) > 0 {
		el.Attr = append(el.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
	}

	switch n.Kind {
	case render.KindText:
		el.AppendChild(&html.Node{Type: html.TextNode, Data: n.Text})
		return el
	case render.KindList:
		el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: fmt.Sprintf("margin: 0px %dpx", n.Margin)})
	}
	if n.Role == render.RoleNumberedFragment {
		el.Attr = append(el.Attr, html.Attribute{Key: "data-number", Val: n.Number})
	}

	for _, c := range n.Children {
		el.AppendChild(convert(p, c, revealAll))
	}
	return el
}

func element(n *render.Node) *html.Node {
	a := atom.Span
	switch n.Kind {
	case render.KindBlock, render.KindPage:
		a = atom.Div
	case render.KindList:
		a = atom.Ul
	case render.KindListItem:
		a = atom.Li
	case render.KindTitle:
		a = atom.H1
	}
	return newElement(a)
}

// RenderPage writes the page element alone.
func RenderPage(w io.Writer, p *render.Page, revealAll bool) error {
	return html.Render(w, Node(p, revealAll))
}

// RenderDocument writes a standalone HTML document showing one page.
func RenderDocument(w io.Writer, p *render.Page, opts Options) error {
	if opts.Stylesheet == "" {
		opts.Stylesheet = DefaultStylesheet
	}
	title := opts.Title
	if title == "" {
		title = p.Title()
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := newElement(atom.Html)
	doc.AppendChild(root)

	head := newElement(atom.Head)
	root.AppendChild(head)
	meta := newElement(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	titleEl := newElement(atom.Title)
	titleEl.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	head.AppendChild(titleEl)
	style := newElement(atom.Style)
	style.AppendChild(&html.Node{Type: html.TextNode, Data: opts.Stylesheet})
	head.AppendChild(style)

	body := newElement(atom.Body)
	root.AppendChild(body)
	show := newElement(atom.Div)
	show.Attr = []html.Attribute{
		{Key: "id", Val: "slideshow"},
		{Key: "data-fragments", Val: strconv.Itoa(len(p.Fragments))},
		{Key: "data-index", Val: strconv.Itoa(p.Index)},
	}
	body.AppendChild(show)
	show.AppendChild(Node(p, opts.RevealAll))

	return html.Render(w, doc)
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
