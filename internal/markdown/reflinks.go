package markdown

import (
	"fmt"
	"strings"
)

// RefTable accumulates reference-style link definitions for one
// conversion. Ids are assigned at first reference, monotonically
// increasing from 1; repeated targets reuse their id. Never shared
// between independent conversions.
type RefTable struct {
	ids  map[string]int
	urls []string
}

func NewRefTable() *RefTable {
	return &RefTable{ids: make(map[string]int)}
}

// Add registers a URL and returns its id.
func (t *RefTable) Add(url string) int {
	if id, ok := t.ids[url]; ok {
		return id
	}
	t.urls = append(t.urls, url)
	id := len(t.urls)
	t.ids[url] = id
	return id
}

// Len returns the number of registered definitions.
func (t *RefTable) Len() int {
	return len(t.urls)
}

// Definitions serializes the accumulated definitions in ascending id
// order, one per line. Empty when nothing was registered.
func (t *RefTable) Definitions() string {
	if len(t.urls) == 0 {
		return ""
	}
	var b strings.Builder
	for i, url := range t.urls {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d]: %s", i+1, url)
	}
	return b.String()
}
