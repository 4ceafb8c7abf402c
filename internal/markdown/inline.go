package markdown

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/levindixon/WebMD/internal/doctree"
)

func (r *Renderer) renderDelimited(n *doctree.Node, st *renderState, delim string) string {
	content := strings.TrimSpace(r.renderChildren(n.Children, st))
	if content == "" {
		// Empty emphasis must not leave a stray delimiter pair.
		return ""
	}
	return delim + content + delim
}

func (r *Renderer) renderLink(n *doctree.Node, st *renderState) string {
	wasLink := st.linkText
	st.linkText = true
	text := strings.TrimSpace(r.renderChildren(n.Children, st))
	st.linkText = wasLink

	href := n.Attribute("href")
	if href == "" {
		r.anomaly("link without href")
		return text
	}
	target := r.resolveURL(href)
	if text == "" {
		text = target
	}
	if r.opts.LinkStyle == LinksReference {
		id := st.refs.Add(target)
		return "[" + text + "][" + strconv.Itoa(id) + "]"
	}
	return "[" + text + "](" + target + ")"
}

func (r *Renderer) renderImage(n *doctree.Node, st *renderState) string {
	alt := Escape(n.Attribute("alt"), EscapeLinkText)
	src := n.Attribute("src")
	if src == "" {
		r.anomaly("image without src")
		return alt
	}
	target := r.resolveURL(src)
	if title := n.Attribute("title"); title != "" {
		title = strings.ReplaceAll(title, `"`, `\"`)
		return "![" + alt + "](" + target + " \"" + title + "\")"
	}
	return "![" + alt + "](" + target + ")"
}

func (r *Renderer) renderCodeSpan(n *doctree.Node, st *renderState) string {
	if st.pre {
		// Inside a code block the span is just a carrier for the text.
		return r.renderChildren(n.Children, st)
	}
	content := n.PlainText()
	if !r.opts.PreserveWhitespace {
		content = strings.TrimSpace(CollapseWhitespace(content))
	}
	if content == "" {
		return ""
	}
	// The shortest backtick run not appearing inside the content.
	delim := "`"
	if strings.Contains(content, "`") {
		delim = "``"
	}
	pad := ""
	if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") {
		pad = " "
	}
	return delim + pad + content + pad + delim
}

// resolveURL makes a raw href/src absolute against the configured base
// URL. Unresolvable values pass through untouched rather than dropping
// the link.
func (r *Renderer) resolveURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if r.baseURL == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		r.anomaly("unparseable link target", "target", raw, "error", err)
		return raw
	}
	return r.baseURL.ResolveReference(ref).String()
}
