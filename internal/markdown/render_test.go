package markdown

import (
	"strings"
	"testing"

	"github.com/levindixon/WebMD/internal/doctree"
)

func render(t *testing.T, root *doctree.Node, opts Options) string {
	t.Helper()
	out, err := Render(root, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestRender_HeadingAndParagraph(t *testing.T) {
	root := doctree.NewElement(doctree.KindContainer,
		doctree.NewElement(doctree.KindHeading1, doctree.NewText("Title")),
		doctree.NewElement(doctree.KindParagraph,
			doctree.NewText("Hello "),
			doctree.NewElement(doctree.KindStrong, doctree.NewText("world")),
		),
	)
	want := "# Title\n\nHello **world**"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_ATXLevels(t *testing.T) {
	for level := 1; level <= 6; level++ {
		root := doctree.NewElement(doctree.HeadingKind(level), doctree.NewText("x"))
		want := strings.Repeat("#", level) + " x"
		if got := render(t, root, Options{}); got != want {
			t.Errorf("level %d: expected %q, got %q", level, want, got)
		}
	}
}

func TestRender_SetextHeadings(t *testing.T) {
	opts := Options{HeadingStyle: HeadingSetext}

	root := doctree.NewElement(doctree.KindHeading1, doctree.NewText("Title"))
	if got, want := render(t, root, opts), "Title\n====="; got != want {
		t.Errorf("h1: expected %q, got %q", want, got)
	}

	root = doctree.NewElement(doctree.KindHeading2, doctree.NewText("Sub"))
	if got, want := render(t, root, opts), "Sub\n---"; got != want {
		t.Errorf("h2: expected %q, got %q", want, got)
	}

	// Setext only reaches level 2; deeper headings stay ATX.
	root = doctree.NewElement(doctree.KindHeading3, doctree.NewText("Deep"))
	if got, want := render(t, root, opts), "### Deep"; got != want {
		t.Errorf("h3: expected %q, got %q", want, got)
	}
}

func TestRender_EmptyHeadingSuppressed(t *testing.T) {
	root := doctree.NewElement(doctree.KindContainer,
		doctree.NewElement(doctree.KindHeading2),
		doctree.NewElement(doctree.KindParagraph, doctree.NewText("x")),
	)
	if got := render(t, root, Options{}); got != "x" {
		t.Errorf("expected %q, got %q", "x", got)
	}
}

func TestRender_BlockQuoteNesting(t *testing.T) {
	root := doctree.NewElement(doctree.KindBlockQuote,
		doctree.NewElement(doctree.KindParagraph, doctree.NewText("a")),
		doctree.NewElement(doctree.KindBlockQuote,
			doctree.NewElement(doctree.KindParagraph, doctree.NewText("b")),
		),
	)
	want := "> a\n>\n> > b"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_NestedLists(t *testing.T) {
	root := doctree.NewElement(doctree.KindUnorderedList,
		doctree.NewElement(doctree.KindListItem, doctree.NewText("a")),
		doctree.NewElement(doctree.KindListItem,
			doctree.NewText("b"),
			doctree.NewElement(doctree.KindUnorderedList,
				doctree.NewElement(doctree.KindListItem, doctree.NewText("c")),
			),
		),
	)
	want := "- a\n- b\n  - c"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_OrderedListCounters(t *testing.T) {
	root := doctree.NewElement(doctree.KindOrderedList,
		doctree.NewElement(doctree.KindListItem, doctree.NewText("x")),
		doctree.NewElement(doctree.KindListItem, doctree.NewText("y")),
		doctree.NewElement(doctree.KindListItem, doctree.NewText("z")),
	)
	want := "1. x\n2. y\n3. z"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_ListItemContinuationIndent(t *testing.T) {
	root := doctree.NewElement(doctree.KindUnorderedList,
		doctree.NewElement(doctree.KindListItem,
			doctree.NewElement(doctree.KindParagraph, doctree.NewText("one")),
			doctree.NewElement(doctree.KindParagraph, doctree.NewText("two")),
		),
	)
	want := "- one\n\n  two"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_BulletMarkerOption(t *testing.T) {
	root := doctree.NewElement(doctree.KindUnorderedList,
		doctree.NewElement(doctree.KindListItem, doctree.NewText("a")),
	)
	if got := render(t, root, Options{BulletMarker: '*'}); got != "* a" {
		t.Errorf("expected %q, got %q", "* a", got)
	}
}

func TestRender_FencedCodeBlockWithLanguage(t *testing.T) {
	root := doctree.NewElement(doctree.KindCodeBlock,
		doctree.NewElement(doctree.KindCodeSpan,
			doctree.NewText("console.log(1);\n"),
		).WithAttr("class", "language-javascript"),
	)
	want := "```javascript\nconsole.log(1);\n```"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_FenceExtendsPastBackticksInContent(t *testing.T) {
	root := doctree.NewElement(doctree.KindCodeBlock,
		doctree.NewText("a\n```\nb"),
	)
	want := "````\na\n```\nb\n````"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_IndentedCodeBlock(t *testing.T) {
	root := doctree.NewElement(doctree.KindCodeBlock,
		doctree.NewText("one\ntwo"),
	)
	want := "    one\n    two"
	if got := render(t, root, Options{CodeBlockStyle: CodeIndented}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_NoEscapingInsideCodeBlocks(t *testing.T) {
	root := doctree.NewElement(doctree.KindCodeBlock,
		doctree.NewText("*not emphasis* [not a link]"),
	)
	got := render(t, root, Options{})
	if strings.Contains(got, `\*`) || strings.Contains(got, `\[`) {
		t.Errorf("code content must stay raw, got %q", got)
	}
}

func TestRender_EscapingOutsideCode(t *testing.T) {
	root := doctree.NewElement(doctree.KindParagraph,
		doctree.NewText("2 * 3 = 6 [sic]"),
	)
	want := `2 \* 3 = 6 \[sic\]`
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_HorizontalRuleAndLineBreak(t *testing.T) {
	root := doctree.NewElement(doctree.KindContainer,
		doctree.NewElement(doctree.KindParagraph,
			doctree.NewText("a"),
			doctree.NewElement(doctree.KindLineBreak),
			doctree.NewText("b"),
		),
		doctree.NewElement(doctree.KindHorizontalRule),
	)
	want := "a  \nb\n\n---"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_ContainerIsTransparent(t *testing.T) {
	root := doctree.NewElement(doctree.KindContainer,
		doctree.NewElement(doctree.KindContainer,
			doctree.NewElement(doctree.KindParagraph, doctree.NewText("a")),
		),
		doctree.NewElement(doctree.KindParagraph, doctree.NewText("b")),
	)
	want := "a\n\nb"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_FigureWithCaption(t *testing.T) {
	root := doctree.NewElement(doctree.KindFigure,
		doctree.NewElement(doctree.KindImage).
			WithAttr("src", "https://e.com/i.png").
			WithAttr("alt", "chart"),
		doctree.NewElement(doctree.KindFigureCaption, doctree.NewText("Results")),
	)
	want := "![chart](https://e.com/i.png)\n\n*Results*"
	if got := render(t, root, Options{}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_ListItemOutsideListDegrades(t *testing.T) {
	root := doctree.NewElement(doctree.KindListItem, doctree.NewText("stray"))
	if got := render(t, root, Options{}); got != "stray" {
		t.Errorf("expected %q, got %q", "stray", got)
	}
}

func TestRender_CycleFails(t *testing.T) {
	root := doctree.NewElement(doctree.KindContainer)
	root.AppendChild(root)
	_, err := Render(root, Options{})
	if err == nil {
		t.Fatal("expected error for cyclic tree")
	}
	if _, ok := err.(*StructuralError); !ok {
		t.Errorf("expected StructuralError, got %T", err)
	}
}

func TestRender_InvalidOptions(t *testing.T) {
	root := doctree.NewElement(doctree.KindParagraph, doctree.NewText("x"))
	_, err := Render(root, Options{ChunkSize: -1})
	if err == nil {
		t.Fatal("expected error for negative chunk size")
	}
	if _, ok := err.(*ResourceError); !ok {
		t.Errorf("expected ResourceError, got %T", err)
	}
}

func TestRenderBlocks_StateResetsBetweenCalls(t *testing.T) {
	r := NewRenderer(Options{}.WithDefaults(), nil)
	list := doctree.NewElement(doctree.KindOrderedList,
		doctree.NewElement(doctree.KindListItem, doctree.NewText("x")),
	)
	first := r.RenderBlocks([]*doctree.Node{list})
	second := r.RenderBlocks([]*doctree.Node{list})
	if first != second {
		t.Errorf("state leaked between calls: %q vs %q", first, second)
	}
	if first != "1. x" {
		t.Errorf("expected %q, got %q", "1. x", first)
	}
}
