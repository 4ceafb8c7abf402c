package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/levindixon/WebMD/internal/doctree"
)

// HTMLParser handles HTML files. The whole body maps onto the doctree
// model; unknown tags become transparent containers so no content is
// dropped.
type HTMLParser struct{}

// BaseAttr carries a page's <base href> on the returned root node, so
// callers can feed it into the renderer's BaseURL option.
const BaseAttr = "base"

var tagKinds = map[string]doctree.Kind{
	"h1":         doctree.KindHeading1,
	"h2":         doctree.KindHeading2,
	"h3":         doctree.KindHeading3,
	"h4":         doctree.KindHeading4,
	"h5":         doctree.KindHeading5,
	"h6":         doctree.KindHeading6,
	"p":          doctree.KindParagraph,
	"ul":         doctree.KindUnorderedList,
	"ol":         doctree.KindOrderedList,
	"li":         doctree.KindListItem,
	"table":      doctree.KindTable,
	"tr":         doctree.KindTableRow,
	"td":         doctree.KindTableCell,
	"th":         doctree.KindTableHeaderCell,
	"blockquote": doctree.KindBlockQuote,
	"pre":        doctree.KindCodeBlock,
	"code":       doctree.KindCodeSpan,
	"a":          doctree.KindLink,
	"img":        doctree.KindImage,
	"strong":     doctree.KindStrong,
	"b":          doctree.KindStrong,
	"em":         doctree.KindEmphasis,
	"i":          doctree.KindEmphasis,
	"del":        doctree.KindStrikethrough,
	"s":          doctree.KindStrikethrough,
	"strike":     doctree.KindStrikethrough,
	"br":         doctree.KindLineBreak,
	"hr":         doctree.KindHorizontalRule,
	"figure":     doctree.KindFigure,
	"figcaption": doctree.KindFigureCaption,
	"caption":    doctree.KindFigureCaption,
}

// Non-content elements, never part of the output.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"object":   true,
	"head":     true,
}

// Attributes the serializer understands.
var keptAttrs = map[string]bool{
	"href":    true,
	"src":     true,
	"alt":     true,
	"title":   true,
	"class":   true,
	"colspan": true,
	"rowspan": true,
	"align":   true,
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := doctree.NewElement(doctree.KindContainer)
	if base := findBase(doc); base != "" {
		root.WithAttr(BaseAttr, base)
	}

	scope := doc
	if body := findBody(doc); body != nil {
		scope = body
	}
	for c := scope.FirstChild; c != nil; c = c.NextSibling {
		appendHTML(root, c)
	}
	return root, nil
}

func appendHTML(dst *doctree.Node, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			dst.AppendChild(doctree.NewText(n.Data))
		}
		return
	case html.ElementNode:
	default:
		return
	}

	tag := strings.ToLower(n.Data)
	if skippedTags[tag] || isHidden(n) {
		return
	}

	// Table section wrappers are transparent; a thead marks its rows as
	// header context.
	switch tag {
	case "thead":
		section := doctree.NewElement(doctree.KindContainer).WithAttr("header", "1")
		dst.AppendChild(section)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendHTML(section, c)
		}
		return
	case "tbody", "tfoot":
		section := doctree.NewElement(doctree.KindContainer)
		dst.AppendChild(section)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendHTML(section, c)
		}
		return
	}

	kind, known := tagKinds[tag]
	if !known {
		kind = doctree.KindContainer
	}
	node := doctree.NewElement(kind)
	for _, a := range n.Attr {
		if keptAttrs[strings.ToLower(a.Key)] {
			node.WithAttr(strings.ToLower(a.Key), a.Val)
		}
	}
	dst.AppendChild(node)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendHTML(node, c)
	}
}

// isHidden reports elements removed from rendering: hidden attribute or
// an inline display:none.
func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func findBase(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "base" {
		for _, a := range n.Attr {
			if strings.ToLower(a.Key) == "href" {
				return a.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBase(c); b != "" {
			return b
		}
	}
	return ""
}
