package parser

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	xast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/levindixon/WebMD/internal/doctree"
)

// MarkdownParser handles Markdown files using goldmark, so Markdown
// input round-trips through the serializer. GFM tables and
// strikethrough are enabled.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	root := doctree.NewElement(doctree.KindContainer)
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		appendMD(root, c, src)
	}
	return root, nil
}

func appendMD(dst *doctree.Node, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Heading:
		el := doctree.NewElement(doctree.HeadingKind(node.Level))
		appendMDChildren(el, n, src)
		dst.AppendChild(el)

	case *ast.Paragraph, *ast.TextBlock:
		el := doctree.NewElement(doctree.KindParagraph)
		appendMDChildren(el, n, src)
		dst.AppendChild(el)

	case *ast.Blockquote:
		el := doctree.NewElement(doctree.KindBlockQuote)
		appendMDChildren(el, n, src)
		dst.AppendChild(el)

	case *ast.List:
		kind := doctree.KindUnorderedList
		if node.IsOrdered() {
			kind = doctree.KindOrderedList
		}
		el := doctree.NewElement(kind)
		appendMDChildren(el, n, src)
		dst.AppendChild(el)

	case *ast.ListItem:
		el := doctree.NewElement(doctree.KindListItem)
		appendMDChildren(el, n, src)
		dst.AppendChild(el)

	case *ast.FencedCodeBlock:
		el := doctree.NewElement(doctree.KindCodeBlock)
		if lang := node.Language(src); len(lang) > 0 {
			el.WithAttr("class", "language-"+string(lang))
		}
		el.AppendChild(doctree.NewText(blockLines(n, src)))
		dst.AppendChild(el)

	case *ast.CodeBlock:
		el := doctree.NewElement(doctree.KindCodeBlock)
		el.AppendChild(doctree.NewText(blockLines(n, src)))
		dst.AppendChild(el)

	case *ast.ThematicBreak:
		dst.AppendChild(doctree.NewElement(doctree.KindHorizontalRule))

	case *xast.Table:
		tbl := doctree.NewElement(doctree.KindTable)
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c.(type) {
			case *xast.TableHeader:
				tr := doctree.NewElement(doctree.KindTableRow).WithAttr("header", "1")
				appendMDCells(tr, c, src, true)
				tbl.AppendChild(tr)
			case *xast.TableRow:
				tr := doctree.NewElement(doctree.KindTableRow)
				appendMDCells(tr, c, src, false)
				tbl.AppendChild(tr)
			}
		}
		dst.AppendChild(tbl)

	case *ast.Text:
		dst.AppendChild(doctree.NewText(string(node.Value(src))))
		if node.HardLineBreak() {
			dst.AppendChild(doctree.NewElement(doctree.KindLineBreak))
		} else if node.SoftLineBreak() {
			dst.AppendChild(doctree.NewText("\n"))
		}

	case *ast.String:
		dst.AppendChild(doctree.NewText(string(node.Value)))

	case *ast.CodeSpan:
		el := doctree.NewElement(doctree.KindCodeSpan)
		el.AppendChild(doctree.NewText(inlineText(n, src)))
		dst.AppendChild(el)

	case *ast.Emphasis:
		kind := doctree.KindEmphasis
		if node.Level >= 2 {
			kind = doctree.KindStrong
		}
		el := doctree.NewElement(kind)
		appendMDChildren(el, n, src)
		dst.AppendChild(el)

	case *xast.Strikethrough:
		el := doctree.NewElement(doctree.KindStrikethrough)
		appendMDChildren(el, n, src)
		dst.AppendChild(el)

	case *ast.Link:
		el := doctree.NewElement(doctree.KindLink).WithAttr("href", string(node.Destination))
		if len(node.Title) > 0 {
			el.WithAttr("title", string(node.Title))
		}
		appendMDChildren(el, n, src)
		dst.AppendChild(el)

	case *ast.AutoLink:
		target := string(node.URL(src))
		el := doctree.NewElement(doctree.KindLink).WithAttr("href", target)
		el.AppendChild(doctree.NewText(string(node.Label(src))))
		dst.AppendChild(el)

	case *ast.Image:
		el := doctree.NewElement(doctree.KindImage).WithAttr("src", string(node.Destination))
		if alt := inlineText(n, src); alt != "" {
			el.WithAttr("alt", alt)
		}
		if len(node.Title) > 0 {
			el.WithAttr("title", string(node.Title))
		}
		dst.AppendChild(el)

	case *ast.HTMLBlock, *ast.RawHTML:
		// Raw HTML embedded in Markdown has no doctree representation.

	default:
		appendMDChildren(dst, n, src)
	}
}

func appendMDChildren(dst *doctree.Node, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		appendMD(dst, c, src)
	}
}

func appendMDCells(tr *doctree.Node, row ast.Node, src []byte, header bool) {
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cell, ok := c.(*xast.TableCell)
		if !ok {
			continue
		}
		kind := doctree.KindTableCell
		if header {
			kind = doctree.KindTableHeaderCell
		}
		el := doctree.NewElement(kind)
		switch cell.Alignment {
		case xast.AlignLeft:
			el.WithAttr("align", "left")
		case xast.AlignRight:
			el.WithAttr("align", "right")
		case xast.AlignCenter:
			el.WithAttr("align", "center")
		}
		appendMDChildren(el, c, src)
		tr.AppendChild(el)
	}
}

// blockLines joins the source segments of a block node.
func blockLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// inlineText flattens the text beneath an inline node.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Value(src))
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(inlineText(c, src))
		}
	}
	return b.String()
}
