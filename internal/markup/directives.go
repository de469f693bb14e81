package markup

import "strings"

// Directive keys recognized on pages. Other keys are ignored.
const (
	DirectiveClass        = "class"
	DirectiveAutofragment = "autofragment"
)

// ApplyDirectives realizes the page's properties and returns the derived page.
// The input is left untouched. Classes are recomputed from scratch each time,
// and the autofragment wrap happens at most once per page lineage, so applying
// the result again yields the same page.
func ApplyDirectives(p *Page) *Page {
	out := &Page{
		Title:        p.Title,
		Children:     append([]*Node(nil), p.Children...),
		Properties:   append([]Property(nil), p.Properties...),
		Autofragment: p.Autofragment,
	}

	var classes strings.Builder
	for _, prop := range out.Properties {
		switch prop.Key {
		case DirectiveClass:
			classes.WriteString(strings.Join(prop.Values, " "))
			classes.WriteByte(' ')
		case DirectiveAutofragment:
			if out.Autofragment {
				continue
			}
			out.Autofragment = true
			for i, child := range out.Children {
				out.Children[i] = NewTag("f", true).AddChildren(child)
			}
		}
	}
	out.Classes = classes.String()

	return out
}
