package markdown

// listFrame tracks one level of list nesting.
type listFrame struct {
	ordered bool
	counter int // running item number, ordered lists only
}

// renderState is the mutable nesting context threaded through one
// render pass. Every push is paired with a deferred pop, so the state
// is back to its entry values on every exit path.
type renderState struct {
	lists      []listFrame
	quoteDepth int
	pre        bool
	linkText   bool
	refs       *RefTable
}

func (s *renderState) pushList(ordered bool) {
	s.lists = append(s.lists, listFrame{ordered: ordered})
}

func (s *renderState) popList() {
	s.lists = s.lists[:len(s.lists)-1]
}

// listDepth is the zero-based depth of the innermost list.
func (s *renderState) listDepth() int {
	return len(s.lists) - 1
}

// neutral reports whether no nesting context is active, meaning a
// fragment rendered now depends only on the subtree and the options.
func (s *renderState) neutral() bool {
	return len(s.lists) == 0 && s.quoteDepth == 0 && !s.pre && !s.linkText
}

// textContext picks the escaping context for a text node.
func (s *renderState) textContext() EscapeContext {
	switch {
	case s.pre:
		return EscapeNone
	case s.linkText:
		return EscapeLinkText
	default:
		return EscapeNormal
	}
}
