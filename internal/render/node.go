package render

import "strings"

// Kind selects how a node is displayed.
type Kind int

const (
	KindText     Kind = iota // leaf carrying Text
	KindInline               // inline container
	KindBlock                // block container
	KindList                 // bulleted list; children are list items
	KindListItem             // wraps one evaluated list child
	KindTitle                // page heading container
	KindPage                 // page root
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInline:
		return "inline"
	case KindBlock:
		return "block"
	case KindList:
		return "list"
	case KindListItem:
		return "listitem"
	case KindTitle:
		return "title"
	case KindPage:
		return "page"
	}
	return "unknown"
}

// Role marks nodes that take part in progressive reveal.
// It is kept apart from Class so fragment collection never depends on labels.
type Role int

const (
	RoleNone Role = iota
	RoleFragment
	RoleNumberedFragment
)

// Class labels written onto fragment nodes.
const (
	ClassFragment         = "fragment"
	ClassNumberedFragment = "numberedFragment"
)

// Node is a renderable node. Each node is owned by exactly one parent.
type Node struct {
	Kind  Kind
	Class string
	Role  Role
	// Number is the numeric tag name of a numbered fragment.
	Number string
	// Text is set on text leaves only.
	Text string
	// Margin is the horizontal indentation of a list.
	Margin   int
	Children []*Node
}

func newContainer(kind Kind, class string, children []*Node) *Node {
	n := &Node{Kind: kind, Class: class}
	n.Children = append(n.Children, children...)
	return n
}

// Walk visits n and its descendants in document order, parents first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// TextContent concatenates the text of every leaf below n.
func (n *Node) TextContent() string {
	var buf strings.Builder
	n.Walk(func(c *Node) {
		if c.Kind == KindText {
			buf.WriteString(c.Text)
		}
	})
	return buf.String()
}
