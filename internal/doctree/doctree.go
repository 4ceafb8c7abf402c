// Package doctree defines the document tree model consumed by the
// Markdown serializer: element nodes with a tag kind, attributes and
// ordered children, and text nodes carrying raw character data.
package doctree

// NodeType distinguishes the two node variants.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Kind identifies what an element node represents. Unknown HTML tags map
// to KindContainer, which renders as a transparent wrapper.
type Kind int

const (
	KindContainer Kind = iota
	KindHeading1
	KindHeading2
	KindHeading3
	KindHeading4
	KindHeading5
	KindHeading6
	KindParagraph
	KindUnorderedList
	KindOrderedList
	KindListItem
	KindTable
	KindTableRow
	KindTableCell
	KindTableHeaderCell
	KindBlockQuote
	KindCodeBlock
	KindCodeSpan
	KindLink
	KindImage
	KindStrong
	KindEmphasis
	KindStrikethrough
	KindLineBreak
	KindHorizontalRule
	KindFigure
	KindFigureCaption
)

var kindNames = [...]string{
	KindContainer:       "container",
	KindHeading1:        "h1",
	KindHeading2:        "h2",
	KindHeading3:        "h3",
	KindHeading4:        "h4",
	KindHeading5:        "h5",
	KindHeading6:        "h6",
	KindParagraph:       "p",
	KindUnorderedList:   "ul",
	KindOrderedList:     "ol",
	KindListItem:        "li",
	KindTable:           "table",
	KindTableRow:        "tr",
	KindTableCell:       "td",
	KindTableHeaderCell: "th",
	KindBlockQuote:      "blockquote",
	KindCodeBlock:       "pre",
	KindCodeSpan:        "code",
	KindLink:            "a",
	KindImage:           "img",
	KindStrong:          "strong",
	KindEmphasis:        "em",
	KindStrikethrough:   "del",
	KindLineBreak:       "br",
	KindHorizontalRule:  "hr",
	KindFigure:          "figure",
	KindFigureCaption:   "figcaption",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// HeadingLevel returns 1-6 for heading kinds, 0 otherwise.
func (k Kind) HeadingLevel() int {
	if k >= KindHeading1 && k <= KindHeading6 {
		return int(k-KindHeading1) + 1
	}
	return 0
}

// HeadingKind returns the heading kind for a 1-6 level.
// Levels outside that range clamp to the nearest heading.
func HeadingKind(level int) Kind {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return KindHeading1 + Kind(level-1)
}

// Node is one unit of the input tree. The serializer treats nodes as
// read-only; mutations happen only on clones it owns itself.
type Node struct {
	Type     NodeType          `json:"type"`
	Kind     Kind              `json:"kind,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attr     map[string]string `json:"attr,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// NewElement builds an element node.
func NewElement(kind Kind, children ...*Node) *Node {
	return &Node{Type: ElementNode, Kind: kind, Children: children}
}

// NewText builds a text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Text: text}
}

// WithAttr sets an attribute and returns the node for chaining.
func (n *Node) WithAttr(key, value string) *Node {
	if n.Attr == nil {
		n.Attr = make(map[string]string)
	}
	n.Attr[key] = value
	return n
}

// Attribute returns an attribute value, or "" when absent.
func (n *Node) Attribute(key string) string {
	if n.Attr == nil {
		return ""
	}
	return n.Attr[key]
}

// AppendChild adds a child in document order.
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// PlainText concatenates all text content beneath n, in source order.
func (n *Node) PlainText() string {
	var buf []byte
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Type == TextNode {
			buf = append(buf, n.Text...)
			return
		}
		for _, c := range n.Children {
			if c != nil {
				walk(c)
			}
		}
	}
	walk(n)
	return string(buf)
}

// Count returns the number of distinct nodes in the subtree rooted at n,
// including n itself. Safe on malformed trees: revisited nodes count once.
func Count(n *Node) int {
	if n == nil {
		return 0
	}
	seen := make(map[*Node]bool)
	var walk func(*Node)
	walk = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, c := range n.Children {
			if c != nil {
				walk(c)
			}
		}
	}
	walk(n)
	return len(seen)
}

// Clone deep-copies the subtree rooted at n. The clone shares nothing
// with the original.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{Type: n.Type, Kind: n.Kind, Text: n.Text}
	if n.Attr != nil {
		out.Attr = make(map[string]string, len(n.Attr))
		for k, v := range n.Attr {
			out.Attr[k] = v
		}
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, 0, len(n.Children))
		for _, c := range n.Children {
			out.Children = append(out.Children, Clone(c))
		}
	}
	return out
}

// HasCycle reports whether any node in the tree is its own descendant.
// Shared subtrees (the same node reachable through two parents) are not
// cycles and do not trip this check.
func HasCycle(root *Node) bool {
	if root == nil {
		return false
	}
	onPath := make(map[*Node]bool)
	var visit func(*Node) bool
	visit = func(n *Node) bool {
		if onPath[n] {
			return true
		}
		onPath[n] = true
		for _, c := range n.Children {
			if c != nil && visit(c) {
				return true
			}
		}
		delete(onPath, n)
		return false
	}
	return visit(root)
}
