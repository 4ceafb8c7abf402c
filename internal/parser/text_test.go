package parser

import (
	"strings"
	"testing"

	"github.com/levindixon/WebMD/internal/doctree"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tree.Children) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(tree.Children))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		child := tree.Children[i]
		if child.Kind != doctree.KindParagraph {
			t.Errorf("child[%d]: expected paragraph, got %v", i, child.Kind)
		}
		if got := child.PlainText(); got != w {
			t.Errorf("child[%d]: expected %q, got %q", i, w, got)
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(tree.Children))
	}
}

func TestTextParser_WhitespaceOnlyLinesSplit(t *testing.T) {
	input := "a\n   \nb"
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "w.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(tree.Children))
	}
}
