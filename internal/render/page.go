package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/fragdeck/internal/markup"
)

// Page is an assembled slide with its fragment reveal order.
type Page struct {
	Root *Node
	// Fragments lists nodes of Root in reveal order. The page does not own them.
	Fragments []*Node
	// Index is the position in Fragments of the next fragment to reveal.
	Index int

	positions map[*Node]int
}

// Title returns the plain text of the page heading.
func (p *Page) Title() string {
	for _, c := range p.Root.Children {
		if c.Kind == KindTitle {
			return strings.TrimSpace(c.TextContent())
		}
	}
	return ""
}

// Position returns the reveal position of a fragment node on this page.
func (p *Page) Position(n *Node) (int, bool) {
	i, ok := p.positions[n]
	return i, ok
}

// Revealed reports whether n is a fragment that has already been shown.
func (p *Page) Revealed(n *Node) bool {
	i, ok := p.positions[n]
	return ok && i < p.Index
}

// Remaining returns how many fragments are still hidden.
func (p *Page) Remaining() int {
	return len(p.Fragments) - p.Index
}

// Page applies the page's directives and assembles it into a renderable page.
func (e *Evaluator) Page(src *markup.Page) (*Page, error) {
	page := markup.ApplyDirectives(src)

	root := &Node{Kind: KindPage, Class: page.Classes}

	title := &Node{Kind: KindTitle}
	if page.Title != nil {
		t, err := e.Evaluate(page.Title)
		if err != nil {
			return nil, fmt.Errorf("evaluate title: %w", err)
		}
		title.Children = append(title.Children, t)
	}
	root.Children = append(root.Children, title)

	for i, child := range page.Children {
		r, err := e.Evaluate(child)
		if err != nil {
			return nil, fmt.Errorf("evaluate child %d: %w", i, err)
		}
		root.Children = append(root.Children, r)
	}

	return newPage(root), nil
}

// Deck assembles every page of d. Deck-wide properties precede each page's own.
func (e *Evaluator) Deck(d *markup.Deck) ([]*Page, error) {
	pages := make([]*Page, 0, len(d.Pages))
	for i, src := range d.Pages {
		withProps := *src
		withProps.Properties = d.PageProperties(src)
		p, err := e.Page(&withProps)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// newPage orders the fragments of root: plain fragments in document order,
// then numbered fragments by ascending number, ties in document order.
func newPage(root *Node) *Page {
	var plain, numbered []*Node
	root.Walk(func(n *Node) {
		switch n.Role {
		case RoleFragment:
			plain = append(plain, n)
		case RoleNumberedFragment:
			numbered = append(numbered, n)
		}
	})
	slices.SortStableFunc(numbered, func(a, b *Node) int {
		return compareNumbers(a.Number, b.Number)
	})

	p := &Page{
		Root:      root,
		Fragments: append(plain, numbered...),
		positions: make(map[*Node]int),
	}
	for i, f := range p.Fragments {
		p.positions[f] = i
	}
	return p
}

// compareNumbers compares decimal digit strings by value without converting
// them, so arbitrarily long numbers never overflow. Strings that are not all
// digits sort after numeric ones.
func compareNumbers(a, b string) int {
	da, db := isDigits(a), isDigits(b)
	switch {
	case da && !db:
		return -1
	case !da && db:
		return 1
	case !da && !db:
		return strings.Compare(a, b)
	}

	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
