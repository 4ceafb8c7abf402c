// Package markdown serializes a doctree into Markdown text: a recursive
// descent over the tree, a nesting-state machine for block context, and
// context-sensitive escaping. The traversal is strictly source-ordered;
// sibling subtrees are never rendered concurrently because list counters
// and reference ids are shared mutable state threaded through the call.
package markdown

import (
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/levindixon/WebMD/internal/doctree"
)

// Memo is a best-effort fragment cache consulted before rendering block
// subtrees that carry no nesting context. A miss must produce output
// identical to a hit; correctness never depends on the cache.
type Memo interface {
	Lookup(n *doctree.Node) (string, bool)
	Store(n *doctree.Node, fragment string)
}

// Renderer serializes doctree nodes to Markdown. One Renderer serves one
// conversion: its reference table accumulates across every RenderBlocks
// call so chunked rendering still emits a single definitions block.
type Renderer struct {
	opts    Options
	refs    *RefTable
	memo    Memo
	log     *slog.Logger
	baseURL *url.URL
}

// NewRenderer builds a renderer for validated options. The logger may be
// nil; it only receives recoverable-anomaly notices.
func NewRenderer(opts Options, log *slog.Logger) *Renderer {
	r := &Renderer{opts: opts, refs: NewRefTable(), log: log}
	if opts.BaseURL != "" {
		if u, err := url.Parse(opts.BaseURL); err == nil {
			r.baseURL = u
		} else {
			r.anomaly("unparseable base url", "base_url", opts.BaseURL, "error", err)
		}
	}
	return r
}

// UseMemo installs a fragment cache for this conversion.
func (r *Renderer) UseMemo(m Memo) { r.memo = m }

// Definitions returns the accumulated reference-link definitions block,
// empty when reference links are off or none were registered.
func (r *Renderer) Definitions() string { return r.refs.Definitions() }

// Render serializes a single subtree with a fresh nesting state.
func (r *Renderer) Render(root *doctree.Node) string {
	return r.RenderBlocks([]*doctree.Node{root})
}

// RenderBlocks serializes nodes as top-level blocks. The nesting state
// begins and ends at depth zero, so callers may split block-aligned
// groups across RenderBlocks calls without leaking state between them.
func (r *Renderer) RenderBlocks(nodes []*doctree.Node) string {
	st := &renderState{refs: r.refs}
	return strings.TrimSpace(r.renderChildren(nodes, st))
}

// Render converts a tree in one pass and appends any reference-link
// definitions. This is the single-document entry point; the convert
// package wraps it with chunking, caching and streaming.
func Render(root *doctree.Node, opts Options) (string, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if doctree.HasCycle(root) {
		return "", &StructuralError{Reason: "tree contains a cycle"}
	}
	r := NewRenderer(opts, nil)
	out := r.Render(root)
	if defs := r.Definitions(); defs != "" {
		if out != "" {
			out += "\n\n"
		}
		out += defs
	}
	return out, nil
}

func (r *Renderer) render(n *doctree.Node, st *renderState) string {
	if n == nil {
		return ""
	}
	if n.Type == doctree.TextNode {
		return r.renderText(n.Text, st)
	}
	// The memo is only safe when the fragment depends on nothing but the
	// subtree itself: no list/quote/pre context and no reference-id
	// allocation.
	if r.memo != nil && st.neutral() && r.opts.LinkStyle == LinksInline && isBlockKind(n.Kind) {
		if frag, ok := r.memo.Lookup(n); ok {
			return frag
		}
		frag := r.renderElement(n, st)
		r.memo.Store(n, frag)
		return frag
	}
	return r.renderElement(n, st)
}

func (r *Renderer) renderText(text string, st *renderState) string {
	ctx := st.textContext()
	if ctx == EscapeNone {
		return text
	}
	if !r.opts.PreserveWhitespace {
		text = CollapseWhitespace(text)
	}
	return Escape(text, ctx)
}

func (r *Renderer) renderElement(n *doctree.Node, st *renderState) string {
	switch n.Kind {
	case doctree.KindHeading1, doctree.KindHeading2, doctree.KindHeading3,
		doctree.KindHeading4, doctree.KindHeading5, doctree.KindHeading6:
		return r.renderHeading(n, st)
	case doctree.KindParagraph:
		return strings.TrimSpace(r.renderChildren(n.Children, st))
	case doctree.KindUnorderedList:
		return r.renderList(n, st, false)
	case doctree.KindOrderedList:
		return r.renderList(n, st, true)
	case doctree.KindListItem:
		// A list item outside any list degrades to its content.
		if len(st.lists) == 0 {
			r.anomaly("list item outside a list")
			return strings.TrimSpace(r.renderChildren(n.Children, st))
		}
		return r.renderListItem(n, st)
	case doctree.KindTable:
		return r.renderTable(n, st)
	case doctree.KindTableRow, doctree.KindTableCell, doctree.KindTableHeaderCell:
		// Table fragments outside a table degrade to their content.
		r.anomaly("table fragment outside a table", "kind", n.Kind.String())
		return r.renderChildren(n.Children, st)
	case doctree.KindBlockQuote:
		return r.renderBlockQuote(n, st)
	case doctree.KindCodeBlock:
		return r.renderCodeBlock(n, st)
	case doctree.KindCodeSpan:
		return r.renderCodeSpan(n, st)
	case doctree.KindLink:
		return r.renderLink(n, st)
	case doctree.KindImage:
		return r.renderImage(n, st)
	case doctree.KindStrong:
		return r.renderDelimited(n, st, r.opts.StrongDelimiter)
	case doctree.KindEmphasis:
		return r.renderDelimited(n, st, r.opts.EmphasisDelimiter)
	case doctree.KindStrikethrough:
		return r.renderDelimited(n, st, "~~")
	case doctree.KindLineBreak:
		if st.pre {
			return "\n"
		}
		return "  \n"
	case doctree.KindHorizontalRule:
		return "---"
	case doctree.KindFigure:
		return r.renderFigure(n, st)
	case doctree.KindFigureCaption:
		content := strings.TrimSpace(r.renderChildren(n.Children, st))
		if content == "" {
			return ""
		}
		return "*" + content + "*"
	case doctree.KindContainer:
		return r.renderChildren(n.Children, st)
	default:
		// Unknown kinds never drop content.
		r.anomaly("unrecognized element kind", "kind", int(n.Kind))
		return r.renderChildren(n.Children, st)
	}
}

// renderChildren renders children in source order, separating block
// fragments from their neighbors with a single blank line.
func (r *Renderer) renderChildren(children []*doctree.Node, st *renderState) string {
	type fragment struct {
		text  string
		block bool
	}
	var frags []fragment
	for _, c := range children {
		text := r.render(c, st)
		if text == "" {
			continue
		}
		frags = append(frags, fragment{text: text, block: isBlockNode(c)})
	}

	// Inline whitespace bordering a block boundary is presentational.
	for i := range frags {
		if !frags[i].block {
			continue
		}
		if i > 0 && !frags[i-1].block {
			frags[i-1].text = strings.TrimRight(frags[i-1].text, " ")
		}
		if i+1 < len(frags) && !frags[i+1].block {
			frags[i+1].text = strings.TrimLeft(frags[i+1].text, " ")
		}
	}

	var b strings.Builder
	wrote := false
	lastBlock := false
	for _, f := range frags {
		if f.text == "" {
			continue
		}
		if wrote && (f.block || lastBlock) {
			b.WriteString("\n\n")
		}
		b.WriteString(f.text)
		wrote = true
		lastBlock = f.block
	}
	return b.String()
}

func (r *Renderer) renderHeading(n *doctree.Node, st *renderState) string {
	level := n.Kind.HeadingLevel()
	content := strings.TrimSpace(r.renderChildren(n.Children, st))
	if content == "" {
		return ""
	}
	// Setext covers levels 1-2 only; deeper headings fall back to ATX.
	if r.opts.HeadingStyle == HeadingSetext && level <= 2 {
		underline := "="
		if level == 2 {
			underline = "-"
		}
		width := runewidth.StringWidth(content)
		if width < 1 {
			width = 1
		}
		return content + "\n" + strings.Repeat(underline, width)
	}
	return strings.Repeat("#", level) + " " + content
}

func (r *Renderer) renderBlockQuote(n *doctree.Node, st *renderState) string {
	st.quoteDepth++
	defer func() { st.quoteDepth-- }()

	content := strings.TrimSpace(r.renderChildren(n.Children, st))
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

var langClass = regexp.MustCompile(`language-([\w#+.-]+)`)

func (r *Renderer) renderCodeBlock(n *doctree.Node, st *renderState) string {
	wasPre := st.pre
	st.pre = true
	defer func() { st.pre = wasPre }()

	content := strings.Trim(r.renderChildren(n.Children, st), "\n")

	if r.opts.CodeBlockStyle == CodeIndented {
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			lines[i] = "    " + line
		}
		return strings.Join(lines, "\n")
	}

	fence := "```"
	for strings.Contains(content, fence) {
		fence += "`"
	}
	return fence + codeLanguage(n) + "\n" + content + "\n" + fence
}

// codeLanguage pulls the hint out of a language-<token> class on the
// block or its immediate code child.
func codeLanguage(n *doctree.Node) string {
	if m := langClass.FindStringSubmatch(n.Attribute("class")); m != nil {
		return m[1]
	}
	for _, c := range n.Children {
		if c.Type == doctree.ElementNode && c.Kind == doctree.KindCodeSpan {
			if m := langClass.FindStringSubmatch(c.Attribute("class")); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

func (r *Renderer) renderList(n *doctree.Node, st *renderState, ordered bool) string {
	st.pushList(ordered)
	defer st.popList()

	var items []string
	for _, c := range n.Children {
		if c.Type == doctree.ElementNode && c.Kind == doctree.KindListItem {
			if item := r.renderListItem(c, st); item != "" {
				items = append(items, item)
			}
			continue
		}
		// Stray non-item content inside a list is kept, not dropped.
		if frag := strings.TrimSpace(r.render(c, st)); frag != "" {
			r.anomaly("non-item child inside a list", "kind", c.Kind.String())
			items = append(items, frag)
		}
	}
	return strings.Join(items, "\n")
}

func (r *Renderer) renderListItem(n *doctree.Node, st *renderState) string {
	depth := st.listDepth()
	frame := &st.lists[depth]

	var marker string
	if frame.ordered {
		frame.counter++
		marker = strconv.Itoa(frame.counter) + "."
	} else {
		marker = string(r.opts.BulletMarker)
	}
	indent := strings.Repeat("  ", depth)
	contIndent := strings.Repeat("  ", depth+1)

	// Nested lists render with their own absolute indentation; every
	// other continuation line needs this item's continuation indent.
	type segment struct {
		text   string
		nested bool
	}
	var segs []segment
	var run []*doctree.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		if t := strings.TrimSpace(r.renderChildren(run, st)); t != "" {
			segs = append(segs, segment{text: t})
		}
		run = nil
	}
	for _, c := range n.Children {
		if c.Type == doctree.ElementNode &&
			(c.Kind == doctree.KindUnorderedList || c.Kind == doctree.KindOrderedList) {
			flush()
			if t := r.render(c, st); t != "" {
				segs = append(segs, segment{text: t, nested: true})
			}
			continue
		}
		run = append(run, c)
	}
	flush()

	if len(segs) == 0 {
		return indent + marker
	}

	var b strings.Builder
	first := true
	for _, seg := range segs {
		for _, line := range strings.Split(seg.text, "\n") {
			switch {
			case first && seg.nested:
				// Item starting with a nested list keeps its marker on
				// its own line.
				b.WriteString(indent + marker + "\n" + line)
			case first:
				b.WriteString(indent + marker + " " + line)
			case seg.nested:
				b.WriteString("\n" + line)
			case line == "":
				b.WriteString("\n")
			default:
				b.WriteString("\n" + contIndent + line)
			}
			first = false
		}
	}
	return b.String()
}

func (r *Renderer) renderFigure(n *doctree.Node, st *renderState) string {
	var parts []string
	for _, c := range n.Children {
		if t := strings.TrimSpace(r.render(c, st)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (r *Renderer) anomaly(msg string, args ...any) {
	if r.log != nil {
		r.log.Warn(msg, args...)
	}
}

func isBlockKind(k doctree.Kind) bool {
	switch k {
	case doctree.KindHeading1, doctree.KindHeading2, doctree.KindHeading3,
		doctree.KindHeading4, doctree.KindHeading5, doctree.KindHeading6,
		doctree.KindParagraph, doctree.KindUnorderedList, doctree.KindOrderedList,
		doctree.KindTable, doctree.KindBlockQuote, doctree.KindCodeBlock,
		doctree.KindHorizontalRule, doctree.KindFigure:
		return true
	}
	return false
}

// IsBlock reports whether a node participates in block separation. The
// scheduler uses it to keep chunk groups block-aligned.
func IsBlock(n *doctree.Node) bool {
	return isBlockNode(n)
}

// isBlockNode decides whether a node participates in block separation.
// Containers are transparent: they count as blocks only when block
// content sits somewhere beneath them.
func isBlockNode(n *doctree.Node) bool {
	if n.Type == doctree.TextNode {
		return false
	}
	if isBlockKind(n.Kind) {
		return true
	}
	if n.Kind == doctree.KindContainer {
		return hasBlockDescendant(n)
	}
	return false
}

func hasBlockDescendant(n *doctree.Node) bool {
	for _, c := range n.Children {
		if c.Type != doctree.ElementNode {
			continue
		}
		if isBlockKind(c.Kind) {
			return true
		}
		if c.Kind == doctree.KindContainer && hasBlockDescendant(c) {
			return true
		}
	}
	return false
}
