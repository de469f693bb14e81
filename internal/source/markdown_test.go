package source

import (
	"strings"
	"testing"

	"github.com/dgallion1/fragdeck/internal/markup"
)

// flatten concatenates the text below n.
func flatten(n *markup.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == markup.KindText {
		return n.Text
	}
	var buf strings.Builder
	for _, c := range n.Children {
		buf.WriteString(flatten(c))
	}
	return buf.String()
}

const sampleMarkdown = "---\n" +
	"title: Demo\n" +
	"class: [dark, wide]\n" +
	"---\n" +
	"# Intro\n" +
	"\n" +
	"Hello *world*\n" +
	"\n" +
	"- one\n" +
	"- two\n" +
	"  - nested\n" +
	"\n" +
	"> quoted\n" +
	"\n" +
	"---\n" +
	"\n" +
	"## Second\n" +
	"<!-- class: extra -->\n" +
	"\n" +
	"```2\n" +
	"late\n" +
	"```\n" +
	"\n" +
	"See [this](#f) and [site](https://example.com).\n"

func TestMarkdownParser_Pages(t *testing.T) {
	p := &MarkdownParser{}
	deck, err := p.Parse(strings.NewReader(sampleMarkdown), "talk.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deck.Title != "Demo" {
		t.Errorf("expected deck title %q, got %q", "Demo", deck.Title)
	}
	if len(deck.Properties) != 1 || deck.Properties[0].Key != "class" {
		t.Fatalf("expected one class property, got %+v", deck.Properties)
	}
	if strings.Join(deck.Properties[0].Values, " ") != "dark wide" {
		t.Errorf("expected class values dark wide, got %v", deck.Properties[0].Values)
	}
	if len(deck.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(deck.Pages))
	}

	first := deck.Pages[0]
	if flatten(first.Title) != "Intro" {
		t.Errorf("expected title %q, got %q", "Intro", flatten(first.Title))
	}
	if len(first.Children) != 3 {
		t.Fatalf("expected 3 children on first page, got %d", len(first.Children))
	}

	para := first.Children[0]
	if para.Kind != markup.KindLine || flatten(para) != "Hello world" {
		t.Errorf("expected line %q, got %v %q", "Hello world", para.Kind, flatten(para))
	}
	var em *markup.Node
	for _, c := range para.Children {
		if c.Kind == markup.KindTag {
			em = c
		}
	}
	if em == nil || em.Tag != "em" {
		t.Errorf("expected emphasis tag em in paragraph")
	}

	list := first.Children[1]
	if list.Kind != markup.KindList || list.Level != 0 {
		t.Fatalf("expected top-level list, got %v level %d", list.Kind, list.Level)
	}
	if len(list.Children) != 3 {
		t.Fatalf("expected 3 list children, got %d", len(list.Children))
	}
	nested := list.Children[2]
	if nested.Kind != markup.KindList || nested.Level != 1 || flatten(nested) != "nested" {
		t.Errorf("expected nested list at level 1, got %v level %d %q", nested.Kind, nested.Level, flatten(nested))
	}

	quote := first.Children[2]
	if quote.Kind != markup.KindTag || quote.Tag != "f" || !quote.Multiline {
		t.Errorf("expected blockquote as multiline fragment, got %v %q", quote.Kind, quote.Tag)
	}

	second := deck.Pages[1]
	if flatten(second.Title) != "Second" {
		t.Errorf("expected title %q, got %q", "Second", flatten(second.Title))
	}
	if len(second.Properties) != 1 || second.Properties[0].Key != "class" || second.Properties[0].Values[0] != "extra" {
		t.Errorf("expected page class property extra, got %+v", second.Properties)
	}
	if len(second.Children) != 2 {
		t.Fatalf("expected 2 children on second page, got %d", len(second.Children))
	}
	code := second.Children[0]
	if code.Tag != "2" || !code.Multiline || flatten(code) != "late" {
		t.Errorf("expected numbered code block tag, got %q %q", code.Tag, flatten(code))
	}

	var tags []string
	for _, c := range second.Children[1].Children {
		if c.Kind == markup.KindTag {
			tags = append(tags, c.Tag)
		}
	}
	if strings.Join(tags, ",") != "f,a" {
		t.Errorf("expected link tags f,a, got %v", tags)
	}
}

func TestMarkdownParser_NoFrontMatter(t *testing.T) {
	p := &MarkdownParser{}
	deck, err := p.Parse(strings.NewReader("Just text.\n"), "notes.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deck.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", deck.Title)
	}
	if len(deck.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(deck.Pages))
	}
	if deck.Pages[0].Title == nil || flatten(deck.Pages[0].Title) != "" {
		t.Errorf("expected empty title node for untitled page")
	}
}

func TestMarkdownParser_FrontMatterDirectives(t *testing.T) {
	input := "---\n" +
		"class: plain\n" +
		"autofragment: true\n" +
		"properties:\n" +
		"  - key: class\n" +
		"    values: [first]\n" +
		"---\n" +
		"# Only\n"
	p := &MarkdownParser{}
	deck, err := p.Parse(strings.NewReader(input), "d.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var keys []string
	for _, prop := range deck.Properties {
		keys = append(keys, prop.Key+"="+strings.Join(prop.Values, " "))
	}
	want := "class=first,class=plain,autofragment="
	if strings.Join(keys, ",") != want {
		t.Errorf("expected %q, got %q", want, strings.Join(keys, ","))
	}
}

func TestMarkdownParser_HeadingsSplitPages(t *testing.T) {
	input := "# A\n\ntext\n\n# B\n\n### Sub\n\nmore\n"
	p := &MarkdownParser{}
	deck, err := p.Parse(strings.NewReader(input), "h.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deck.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(deck.Pages))
	}
	sub := deck.Pages[1].Children[0]
	if sub.Tag != "h3" || flatten(sub) != "Sub" {
		t.Errorf("expected h3 tag, got %q %q", sub.Tag, flatten(sub))
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	deck, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deck.Pages) != 0 {
		t.Errorf("expected 0 pages for empty input, got %d", len(deck.Pages))
	}
}

func TestMarkdownParser_CommentDirectives(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"key with values", "# T\n\n<!-- class: dark wide -->\n", "class=dark wide"},
		{"bare key", "# T\n\n<!-- autofragment -->\n", "autofragment="},
		{"plain comment", "# T\n\n<!-- class notes to self -->\n", ""},
		{"prose comment", "# T\n\n<!-- remember to trim this slide -->\n", ""},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		deck, err := p.Parse(strings.NewReader(tt.input), "c.md")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if len(deck.Pages) != 1 {
			t.Fatalf("%s: expected 1 page, got %d", tt.name, len(deck.Pages))
		}
		var props []string
		for _, prop := range deck.Pages[0].Properties {
			props = append(props, prop.Key+"="+strings.Join(prop.Values, " "))
		}
		if got := strings.Join(props, ","); got != tt.want {
			t.Errorf("%s: expected properties %q, got %q", tt.name, tt.want, got)
		}
	}
}
