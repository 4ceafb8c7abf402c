package parser

import (
	"strings"
	"testing"

	"github.com/levindixon/WebMD/internal/doctree"
	"github.com/levindixon/WebMD/internal/markdown"
)

func parseHTML(t *testing.T, src string) *doctree.Node {
	t.Helper()
	tree, err := (&HTMLParser{}).Parse(strings.NewReader(src), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tree
}

func renderHTML(t *testing.T, src string, opts markdown.Options) string {
	t.Helper()
	out, err := markdown.Render(parseHTML(t, src), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func TestHTMLParser_HeadingAndParagraph(t *testing.T) {
	got := renderHTML(t, "<h1>Title</h1><p>Hello <strong>world</strong></p>", markdown.Options{})
	want := "# Title\n\nHello **world**"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_CodeBlock(t *testing.T) {
	src := `<pre><code class="language-javascript">console.log(1);</code></pre>`
	got := renderHTML(t, src, markdown.Options{})
	want := "```javascript\nconsole.log(1);\n```"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_TableWithHead(t *testing.T) {
	src := `<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>`
	got := renderHTML(t, src, markdown.Options{})
	want := "|A  |B  |\n|---|---|\n|1  |2  |"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_TableCaption(t *testing.T) {
	src := `<table><caption>Totals</caption><tr><td>a</td></tr></table>`
	got := renderHTML(t, src, markdown.Options{})
	want := "|a  |\n\n*Totals*"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_SkipsNonContent(t *testing.T) {
	src := `<body><script>alert(1)</script><style>p{}</style><p>kept</p><template><p>tpl</p></template></body>`
	tree := parseHTML(t, src)
	if got := strings.TrimSpace(tree.PlainText()); got != "kept" {
		t.Errorf("expected only %q, got %q", "kept", got)
	}
}

func TestHTMLParser_SkipsHiddenElements(t *testing.T) {
	src := `<p hidden>a</p><p style="display: none">b</p><p style="visibility:hidden">c</p><p>visible</p>`
	tree := parseHTML(t, src)
	if got := strings.TrimSpace(tree.PlainText()); got != "visible" {
		t.Errorf("expected only %q, got %q", "visible", got)
	}
}

func TestHTMLParser_BaseHref(t *testing.T) {
	src := `<html><head><base href="https://site.org/docs/"></head><body><a href="page">rel</a></body></html>`
	tree := parseHTML(t, src)
	if got := tree.Attribute(BaseAttr); got != "https://site.org/docs/" {
		t.Fatalf("expected base attr, got %q", got)
	}

	out, err := markdown.Render(tree, markdown.Options{BaseURL: tree.Attribute(BaseAttr)})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[rel](https://site.org/docs/page)" {
		t.Errorf("expected resolved link, got %q", out)
	}
}

func TestHTMLParser_UnknownTagsAreTransparent(t *testing.T) {
	src := `<article><section><p>inside</p></section></article>`
	got := renderHTML(t, src, markdown.Options{})
	if got != "inside" {
		t.Errorf("expected %q, got %q", "inside", got)
	}
}

func TestHTMLParser_SynonymTags(t *testing.T) {
	src := `<p><b>bold</b> <i>slant</i> <s>gone</s></p>`
	got := renderHTML(t, src, markdown.Options{})
	want := "**bold** *slant* ~~gone~~"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_NestedList(t *testing.T) {
	src := `<ul><li>a</li><li>b<ul><li>c</li></ul></li></ul>`
	got := renderHTML(t, src, markdown.Options{})
	want := "- a\n- b\n  - c"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_DropsUnknownAttributes(t *testing.T) {
	src := `<p onclick="evil()" data-x="1" title="ok">text</p>`
	tree := parseHTML(t, src)
	var p *doctree.Node
	for _, c := range tree.Children {
		if c.Kind == doctree.KindParagraph {
			p = c
		}
	}
	if p == nil {
		t.Fatal("paragraph not found")
	}
	if p.Attribute("onclick") != "" || p.Attribute("data-x") != "" {
		t.Error("unexpected attributes kept")
	}
	if p.Attribute("title") != "ok" {
		t.Errorf("expected title kept, got %q", p.Attribute("title"))
	}
}
