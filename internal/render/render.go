package render

import "strings"

// #region node
// Node is a minimal output fragment: a tag, optional text, and children.
// The zero Node is the empty output (nothing to display).
type Node struct {
	Tag      string `json:"tag,omitempty"`
	Text     string `json:"text,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// IsZero reports whether the node is the empty output.
func (n Node) IsZero() bool {
	return n.Tag == "" && n.Text == "" && len(n.Children) == 0
}

// String renders the node as flat markup, mainly for logs and tests.
func (n Node) String() string {
	if n.IsZero() {
		return ""
	}
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	if n.Tag == "" {
		b.WriteString(n.Text)
		return
	}
	b.WriteString("<" + n.Tag + ">")
	b.WriteString(n.Text)
	for _, c := range n.Children {
		writeNode(b, c)
	}
	b.WriteString("</" + n.Tag + ">")
}

// #endregion node

// #region renderable
// renderableKind tags the Renderable union.
type renderableKind int

const (
	kindNode renderableKind = iota
	kindFactory
	kindMarkup
)

// Renderable is a placeholder value normalized once at configuration
// time: a prebuilt node, a zero-argument factory, or a literal markup
// string. All three display the same way; bare markup is wrapped in a
// minimal container.
type Renderable struct {
	kind    renderableKind
	node    Node
	factory func() Node
	markup  string
}

// FromNode wraps a prebuilt node.
func FromNode(n Node) Renderable {
	return Renderable{kind: kindNode, node: n}
}

// FromFactory wraps a zero-argument node factory, invoked at render time.
func FromFactory(f func() Node) Renderable {
	return Renderable{kind: kindFactory, factory: f}
}

// FromMarkup wraps a literal markup fragment or string.
func FromMarkup(s string) Renderable {
	return Renderable{kind: kindMarkup, markup: s}
}

// Render produces the displayed fragment for any variant.
func (r Renderable) Render() Node {
	switch r.kind {
	case kindFactory:
		if r.factory == nil {
			return Node{}
		}
		return r.factory()
	case kindMarkup:
		return Node{Tag: "div", Text: r.markup}
	default:
		return r.node
	}
}

// #endregion renderable
