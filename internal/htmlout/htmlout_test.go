package htmlout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/fragdeck/internal/markup"
	"github.com/dgallion1/fragdeck/internal/render"
)

func buildPage(t *testing.T, src *markup.Page) *render.Page {
	t.Helper()
	p, err := render.NewEvaluator(nil).Page(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestRenderPage_Markup(t *testing.T) {
	p := buildPage(t, &markup.Page{
		Title:    markup.NewText("T"),
		Children: []*markup.Node{markup.NewTag("f", false).AddChildren(markup.NewText("a"))},
	})

	var buf bytes.Buffer
	if err := RenderPage(&buf, p, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div><h1><span>T</span></h1><span class="fragment fragdeck-hidden"><span>a</span></span></div>`
	if buf.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, buf.String())
	}
}

func TestRenderPage_RevealState(t *testing.T) {
	p := buildPage(t, &markup.Page{
		Title: markup.NewText("T"),
		Children: []*markup.Node{
			markup.NewTag("2", true).AddChildren(markup.NewText("late")),
			markup.NewTag("f", false).AddChildren(markup.NewText("early")),
		},
	})
	p.Index = 1

	var buf bytes.Buffer
	if err := RenderPage(&buf, p, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `<span class="fragment fragdeck-visible"><span>early</span></span>`) {
		t.Errorf("expected plain fragment visible, got %s", out)
	}
	if !strings.Contains(out, `<div class="numberedFragment fragdeck-hidden" data-number="2"><span>late</span></div>`) {
		t.Errorf("expected numbered fragment hidden, got %s", out)
	}

	buf.Reset()
	if err := RenderPage(&buf, p, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), ClassHidden) {
		t.Errorf("expected no hidden fragments with revealAll, got %s", buf.String())
	}
}

func TestRenderPage_ListAndClasses(t *testing.T) {
	src := &markup.Page{
		Title:    markup.NewText("T"),
		Children: []*markup.Node{markup.NewList(2).AddChildren(markup.NewText("x"), markup.NewText("y"))},
	}
	src.AddProperty("class", "dark", "wide")
	p := buildPage(t, src)

	var buf bytes.Buffer
	if err := RenderPage(&buf, p, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, `<div class="dark wide">`) {
		t.Errorf("expected page classes, got %s", out)
	}
	if !strings.Contains(out, `<ul style="margin: 0px 20px"><li><span>x</span></li><li><span>y</span></li></ul>`) {
		t.Errorf("expected indented list with wrapped items, got %s", out)
	}
}

func TestRenderPage_EscapesText(t *testing.T) {
	p := buildPage(t, &markup.Page{
		Title:    markup.NewText("<b>&</b>"),
		Children: nil,
	})
	var buf bytes.Buffer
	if err := RenderPage(&buf, p, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "&lt;b&gt;&amp;&lt;/b&gt;") {
		t.Errorf("expected escaped text, got %s", buf.String())
	}
}

func TestRenderDocument(t *testing.T) {
	p := buildPage(t, &markup.Page{
		Title:    markup.NewText("Welcome"),
		Children: []*markup.Node{markup.NewTag("f", false).AddChildren(markup.NewText("a"))},
	})

	var buf bytes.Buffer
	if err := RenderDocument(&buf, p, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Welcome</title>",
		".fragdeck-hidden { visibility: hidden; }",
		`<div id="slideshow" data-fragments="1" data-index="0">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %s", want, out)
		}
	}
}

func TestRenderPage_RevealClassesIgnoreTagNames(t *testing.T) {
	p := buildPage(t, &markup.Page{
		Title: markup.NewText("T"),
		Children: []*markup.Node{
			markup.NewTag("hidden", true).AddChildren(markup.NewText("secret")),
			markup.NewTag("f", false).AddChildren(markup.NewText("a")),
		},
	})

	var buf bytes.Buffer
	if err := RenderPage(&buf, p, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `<div class="hidden"><span>secret</span></div>`) {
		t.Errorf("expected tag name kept as a plain class, got %s", out)
	}
	if strings.Contains(out, ClassHidden) {
		t.Errorf("expected no fragment marked hidden with revealAll, got %s", out)
	}
	if !strings.Contains(DefaultStylesheet, "."+ClassHidden+" ") || strings.Contains(DefaultStylesheet, "\n.hidden") {
		t.Errorf("expected stylesheet to target only the prefixed reveal class")
	}
}
