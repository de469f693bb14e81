package render

import (
	"errors"
	"fmt"

	"github.com/dgallion1/fragdeck/internal/markup"
)

// ErrUnknownKind is returned for parsed nodes outside the known kinds.
var ErrUnknownKind = errors.New("unknown node kind")

// ListIndent is the margin added per list level.
const ListIndent = 10

// Evaluator turns parsed markup nodes into renderable nodes.
type Evaluator struct {
	tags *TagResolver
}

// NewEvaluator creates an evaluator. A nil resolver uses the default rules.
func NewEvaluator(tags *TagResolver) *Evaluator {
	if tags == nil {
		tags = NewDefaultTagResolver()
	}
	return &Evaluator{tags: tags}
}

// Evaluate converts n and its subtree. Children are evaluated before the
// tag behavior of their parent runs.
func (e *Evaluator) Evaluate(n *markup.Node) (*Node, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrUnknownKind)
	}

	switch n.Kind {
	case markup.KindTag:
		children, err := e.evaluateAll(n.Children)
		if err != nil {
			return nil, err
		}
		return e.applyTag(n, children), nil

	case markup.KindText:
		return &Node{Kind: KindText, Text: n.Text}, nil

	case markup.KindLine:
		children, err := e.evaluateAll(n.Children)
		if err != nil {
			return nil, err
		}
		return newContainer(KindBlock, "", children), nil

	case markup.KindList:
		children, err := e.evaluateAll(n.Children)
		if err != nil {
			return nil, err
		}
		level := min(max(n.Level, 0), markup.MaxListLevel)
		list := &Node{Kind: KindList, Margin: level * ListIndent}
		for _, c := range children {
			list.Children = append(list.Children, &Node{Kind: KindListItem, Children: []*Node{c}})
		}
		return list, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, n.Kind)
}

func (e *Evaluator) evaluateAll(nodes []*markup.Node) ([]*Node, error) {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		r, err := e.Evaluate(n)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (e *Evaluator) applyTag(n *markup.Node, children []*Node) *Node {
	switch e.tags.Resolve(n.Tag) {
	case BehaviorNumberedFragment:
		return numberedFragmentTag(n, children)
	case BehaviorFragment:
		return fragmentTag(n, children)
	}
	return defaultTag(n, children)
}

// defaultTag wraps children in a block or inline container labelled with the tag name.
func defaultTag(n *markup.Node, children []*Node) *Node {
	kind := KindInline
	if n.Multiline {
		kind = KindBlock
	}
	return newContainer(kind, n.Tag, children)
}

func fragmentTag(n *markup.Node, children []*Node) *Node {
	r := defaultTag(n, children)
	r.Class = ClassFragment
	r.Role = RoleFragment
	return r
}

func numberedFragmentTag(n *markup.Node, children []*Node) *Node {
	r := defaultTag(n, children)
	r.Class = ClassNumberedFragment
	r.Role = RoleNumberedFragment
	r.Number = n.Tag
	return r
}
