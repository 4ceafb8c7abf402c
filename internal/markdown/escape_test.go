package markdown

import (
	"strings"
	"testing"
)

func TestEscape_Metacharacters(t *testing.T) {
	got := Escape("*emphasis* and [brackets]", EscapeNormal)
	want := `\*emphasis\* and \[brackets\]`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEscape_StrippingBackslashesRestoresInput(t *testing.T) {
	inputs := []string{
		"plain text",
		"1. not a list",
		"a * b # c | d",
		"under_score and `tick`",
		"{braces} (parens) +plus -minus !bang",
	}
	for _, in := range inputs {
		escaped := Escape(in, EscapeNormal)
		if got := strings.ReplaceAll(escaped, `\`, ""); got != in {
			t.Errorf("input %q: stripping backslashes gave %q", in, got)
		}
	}
}

func TestEscape_BlockquoteMarkerOnlyAtLineStart(t *testing.T) {
	got := Escape("> quoted\na > b", EscapeNormal)
	want := "\\> quoted\na > b"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEscape_ProtectedSpansSurvive(t *testing.T) {
	cases := []struct{ in, want string }{
		{"see https://example.com/a_b for details", "see https://example.com/a_b for details"},
		{"done: [link](https://e.com/x) here", "done: [link](https://e.com/x) here"},
		{"img ![alt](https://e.com/i.png) end", "img ![alt](https://e.com/i.png) end"},
	}
	for _, c := range cases {
		if got := Escape(c.in, EscapeNormal); got != c.want {
			t.Errorf("input %q: expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestEscape_LinkTextContext(t *testing.T) {
	got := Escape("a*b[c]`d", EscapeLinkText)
	want := "a*b[c]\\`d"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEscape_NoneContext(t *testing.T) {
	in := "raw *code* [here]"
	if got := Escape(in, EscapeNone); got != in {
		t.Errorf("expected unchanged %q, got %q", in, got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a  b", "a b"},
		{"a\n\nb", "a b"},
		{"a\t b\r\nc", "a b c"},
		{"  a", " a"},
		{"a  ", "a "},
		{"", ""},
		{"   ", " "},
	}
	for _, c := range cases {
		if got := CollapseWhitespace(c.in); got != c.want {
			t.Errorf("input %q: expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestRefTable(t *testing.T) {
	rt := NewRefTable()
	if id := rt.Add("https://a.com"); id != 1 {
		t.Errorf("first id: expected 1, got %d", id)
	}
	if id := rt.Add("https://b.com"); id != 2 {
		t.Errorf("second id: expected 2, got %d", id)
	}
	if id := rt.Add("https://a.com"); id != 1 {
		t.Errorf("repeated url: expected 1, got %d", id)
	}
	if rt.Len() != 2 {
		t.Errorf("expected 2 definitions, got %d", rt.Len())
	}
	want := "[1]: https://a.com\n[2]: https://b.com"
	if got := rt.Definitions(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRefTable_Empty(t *testing.T) {
	if got := NewRefTable().Definitions(); got != "" {
		t.Errorf("expected empty definitions, got %q", got)
	}
}
