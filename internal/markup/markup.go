package markup

import "fmt"

// Kind identifies the shape of a parsed node.
type Kind int

const (
	KindTag  Kind = iota + 1 // named tag with children
	KindText                 // literal text, no children
	KindLine                 // block grouping of children
	KindList                 // bulleted list with an indentation level
)

var kindNames = map[Kind]string{
	KindTag:  "tag",
	KindText: "text",
	KindLine: "line",
	KindList: "ul",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind using the parser's wire names.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText decodes one of "tag", "text", "line" or "ul".
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", string(b))
}

// Node is one node of a parsed markup document.
// Tag, line and list nodes carry children; text nodes only carry Text.
type Node struct {
	Kind      Kind    `json:"type"`
	Tag       string  `json:"tag,omitempty"`
	Text      string  `json:"text,omitempty"`
	Multiline bool    `json:"multiline,omitempty"`
	Level     int     `json:"level,omitempty"`
	Children  []*Node `json:"children,omitempty"`
}

// NewTag creates a tag node. Multiline tags render as blocks.
func NewTag(tag string, multiline bool) *Node {
	return &Node{Kind: KindTag, Tag: tag, Multiline: multiline}
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewLine creates a line node.
func NewLine() *Node {
	return &Node{Kind: KindLine}
}

// MaxListLevel is the deepest list nesting a node may carry.
const MaxListLevel = 64

// NewList creates a bulleted list node at the given indentation level,
// clamped to [0, MaxListLevel].
func NewList(level int) *Node {
	return &Node{Kind: KindList, Level: min(max(level, 0), MaxListLevel)}
}

// AddChildren appends children and returns the node, builder-style.
func (n *Node) AddChildren(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Property is a page-level key with an ordered list of values.
type Property struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Page is a single parsed slide.
// Classes and Autofragment are derived by ApplyDirectives.
type Page struct {
	Title      *Node      `json:"title"`
	Children   []*Node    `json:"children"`
	Properties []Property `json:"properties,omitempty"`

	Classes      string `json:"-"`
	Autofragment bool   `json:"-"`
}

// AddProperty appends a property and returns the page, builder-style.
func (p *Page) AddProperty(key string, values ...string) *Page {
	p.Properties = append(p.Properties, Property{Key: key, Values: values})
	return p
}

// Deck is one loaded document: an ordered list of pages plus
// properties that apply to every page ahead of the page's own.
type Deck struct {
	Title      string     `json:"title"`
	Properties []Property `json:"properties,omitempty"`
	Pages      []*Page    `json:"pages"`
}

// PageProperties returns the deck-wide properties followed by the page's own.
func (d *Deck) PageProperties(p *Page) []Property {
	if len(d.Properties) == 0 {
		return p.Properties
	}
	props := make([]Property, 0, len(d.Properties)+len(p.Properties))
	props = append(props, d.Properties...)
	return append(props, p.Properties...)
}
