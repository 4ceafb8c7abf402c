package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// EscapeContext selects which character class gets escaped.
type EscapeContext int

const (
	EscapeNormal   EscapeContext = iota // full metacharacter set
	EscapeLinkText                      // backslash and backtick only
	EscapeNone                          // preformatted: nothing
)

// Metacharacters escaped in normal text wherever they appear.
const metachars = "\\`*_{}[]()#+-.!|"

// Spans that are already valid Markdown must survive escaping verbatim:
// rendered links/images and raw URLs.
var protectedSpans = regexp.MustCompile(`!?\[[^\[\]]*\]\([^()]*\)|https?://[^\s<>]+`)

// Escape renders s safe for literal inclusion in Markdown output. The
// context decides the character class; see EscapeContext.
func Escape(s string, ctx EscapeContext) string {
	switch ctx {
	case EscapeNone:
		return s
	case EscapeLinkText:
		s = strings.ReplaceAll(s, `\`, `\\`)
		return strings.ReplaceAll(s, "`", "\\`")
	}

	// Swap already-rendered spans for placeholders, escape the rest,
	// then restore the originals verbatim.
	var saved []string
	s = protectedSpans.ReplaceAllStringFunc(s, func(m string) string {
		saved = append(saved, m)
		return "\x00" + strconv.Itoa(len(saved)-1) + "\x00"
	})

	s = escapeNormal(s)

	for i, m := range saved {
		s = strings.Replace(s, "\x00"+strconv.Itoa(i)+"\x00", m, 1)
	}
	return s
}

func escapeNormal(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	atLineStart := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\x00':
			// Placeholder delimiter, pass through.
			b.WriteByte(c)
		case strings.IndexByte(metachars, c) >= 0:
			b.WriteByte('\\')
			b.WriteByte(c)
		case atLineStart && c == '>':
			// Blockquote marker only means something at line start.
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
		atLineStart = c == '\n'
	}
	return b.String()
}

// CollapseWhitespace folds every run of whitespace (newlines included)
// into a single space, preserving a leading/trailing space when the
// input had leading/trailing whitespace.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
			inSpace = true
		default:
			if inSpace {
				b.WriteByte(' ')
				inSpace = false
			}
			b.WriteByte(s[i])
		}
	}
	if inSpace {
		b.WriteByte(' ')
	}
	return b.String()
}
