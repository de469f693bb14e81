package source

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/dgallion1/fragdeck/internal/markup"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
//
// Thematic breaks and level 1-2 headings start pages. Blockquotes become
// fragments, fenced code blocks become multiline tags named by their info
// string, and links to "#name" become inline tags named name. A comment such
// as <!-- class: dark --> declares a property on the page it appears in.
type MarkdownParser struct{}

type mdFrontMatter struct {
	Title        string            `yaml:"title" toml:"title" json:"title"`
	Class        stringList        `yaml:"class" toml:"class" json:"class"`
	Autofragment bool              `yaml:"autofragment" toml:"autofragment" json:"autofragment"`
	Properties   []markup.Property `yaml:"properties" toml:"properties" json:"properties"`
}

// stringList accepts either a list of strings or one space separated string.
type stringList []string

func (s *stringList) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*s = list
		return nil
	}
	var one string
	if err := unmarshal(&one); err != nil {
		return err
	}
	*s = strings.Fields(one)
	return nil
}

func (s *stringList) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		*s = strings.Fields(val)
	case []any:
		for _, item := range val {
			*s = append(*s, fmt.Sprint(item))
		}
	default:
		return fmt.Errorf("class: unsupported value %T", v)
	}
	return nil
}

// directiveComment matches <!-- key: v1 v2 --> and a bare <!-- key -->.
var directiveComment = regexp.MustCompile(`(?s)^<!--\s*([A-Za-z][\w-]*)\s*(?::(.*?))?-->\s*$`)

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*markup.Deck, error) {
	var meta mdFrontMatter
	src, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	deck := &markup.Deck{Title: meta.Title}
	if deck.Title == "" {
		deck.Title = baseTitle(filename)
	}
	deck.Properties = append(deck.Properties, meta.Properties...)
	if len(meta.Class) > 0 {
		deck.Properties = append(deck.Properties, markup.Property{Key: markup.DirectiveClass, Values: meta.Class})
	}
	if meta.Autofragment {
		deck.Properties = append(deck.Properties, markup.Property{Key: markup.DirectiveAutofragment})
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	b := &mdBuilder{src: src, deck: deck}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n)
	}
	b.flush()

	return deck, nil
}

// mdBuilder accumulates pages while walking top-level blocks.
type mdBuilder struct {
	src     []byte
	deck    *markup.Deck
	current *markup.Page
}

func (b *mdBuilder) page() *markup.Page {
	if b.current == nil {
		b.current = &markup.Page{}
	}
	return b.current
}

func (b *mdBuilder) flush() {
	if b.current == nil {
		return
	}
	if b.current.Title == nil && len(b.current.Children) == 0 {
		// Properties alone do not make a slide.
		b.current = nil
		return
	}
	if b.current.Title == nil {
		b.current.Title = markup.NewText("")
	}
	b.deck.Pages = append(b.deck.Pages, b.current)
	b.current = nil
}

func (b *mdBuilder) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.ThematicBreak:
		b.flush()
	case *ast.Heading:
		if node.Level <= 2 {
			if cur := b.current; cur != nil && (cur.Title != nil || len(cur.Children) > 0) {
				b.flush()
			}
			b.page().Title = group(b.inlines(node))
			return
		}
		heading := markup.NewTag(fmt.Sprintf("h%d", node.Level), true).AddChildren(b.inlines(node)...)
		b.page().Children = append(b.page().Children, heading)
	case *ast.HTMLBlock:
		if prop, ok := b.directive(node); ok {
			page := b.page()
			page.Properties = append(page.Properties, prop)
		}
	default:
		if converted := b.convert(n, 0); converted != nil {
			b.page().Children = append(b.page().Children, converted)
		}
	}
}

// convert maps a block node to a parsed node. Lists nest one level deeper
// than the list containing them.
func (b *mdBuilder) convert(n ast.Node, level int) *markup.Node {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return markup.NewLine().AddChildren(b.inlines(node)...)
	case *ast.Heading:
		return markup.NewTag(fmt.Sprintf("h%d", node.Level), true).AddChildren(b.inlines(node)...)
	case *ast.List:
		list := markup.NewList(level)
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if converted := b.convert(c, level+1); converted != nil {
					list.AddChildren(converted)
				}
			}
		}
		return list
	case *ast.Blockquote:
		frag := markup.NewTag("f", true)
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if converted := b.convert(c, level); converted != nil {
				frag.AddChildren(converted)
			}
		}
		return frag
	case *ast.FencedCodeBlock:
		name := strings.TrimSpace(string(node.Language(b.src)))
		if name == "" {
			name = "code"
		}
		return b.codeLines(markup.NewTag(name, true), node.Lines())
	case *ast.CodeBlock:
		return b.codeLines(markup.NewTag("code", true), node.Lines())
	}
	return nil
}

func (b *mdBuilder) codeLines(tag *markup.Node, lines *text.Segments) *markup.Node {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(b.src)), "\r\n")
		tag.AddChildren(textLine(line))
	}
	return tag
}

func (b *mdBuilder) directive(n *ast.HTMLBlock) (markup.Property, bool) {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(b.src))
	}
	if n.HasClosure() {
		buf.Write(n.ClosureLine.Value(b.src))
	}

	m := directiveComment.FindSubmatch(bytes.TrimSpace(buf.Bytes()))
	if m == nil {
		return markup.Property{}, false
	}
	return markup.Property{
		Key:    string(m[1]),
		Values: strings.Fields(string(m[2])),
	}, true
}

// inlines converts the inline children of n.
func (b *mdBuilder) inlines(n ast.Node) []*markup.Node {
	var out []*markup.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, b.inline(c)...)
	}
	return out
}

func (b *mdBuilder) inline(n ast.Node) []*markup.Node {
	switch node := n.(type) {
	case *ast.Text:
		s := string(node.Value(b.src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			s += " "
		}
		return []*markup.Node{markup.NewText(s)}
	case *ast.String:
		return []*markup.Node{markup.NewText(string(node.Value))}
	case *ast.Emphasis:
		name := "em"
		if node.Level >= 2 {
			name = "strong"
		}
		return []*markup.Node{markup.NewTag(name, false).AddChildren(b.inlines(node)...)}
	case *ast.CodeSpan:
		return []*markup.Node{markup.NewTag("code", false).AddChildren(b.inlines(node)...)}
	case *ast.Link:
		name := "a"
		if dest := string(node.Destination); len(dest) > 1 && dest[0] == '#' {
			name = dest[1:]
		}
		return []*markup.Node{markup.NewTag(name, false).AddChildren(b.inlines(node)...)}
	case *ast.AutoLink:
		return []*markup.Node{markup.NewTag("a", false).AddChildren(markup.NewText(string(node.URL(b.src))))}
	case *ast.Image:
		return []*markup.Node{markup.NewTag("img", false).AddChildren(b.inlines(node)...)}
	case *ast.RawHTML:
		return nil
	}
	return b.inlines(n)
}

// group returns the only node of nodes, or a line holding all of them.
func group(nodes []*markup.Node) *markup.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return markup.NewLine().AddChildren(nodes...)
}
