package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/levindixon/WebMD/internal/doctree"
)

// TextParser handles plain text files. Blank-line separated paragraphs
// become paragraph nodes.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	root := doctree.NewElement(doctree.KindContainer)
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		root.AppendChild(doctree.NewElement(doctree.KindParagraph,
			doctree.NewText(current.String())))
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return root, nil
}
