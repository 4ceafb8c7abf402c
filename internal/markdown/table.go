package markdown

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/levindixon/WebMD/internal/doctree"
)

// Column widths never drop below the three dashes of a separator cell.
const minColumnWidth = 3

// tableCell is one cell after inline rendering, before span
// normalization.
type tableCell struct {
	text    string
	align   string // "", "left", "center", "right"
	colspan int
	rowspan int
}

func (r *Renderer) renderTable(n *doctree.Node, st *renderState) string {
	rows, header, extras := r.collectRows(n, st)
	parts := make([]string, 0, len(extras)+1)
	if len(rows) > 0 {
		parts = append(parts, formatTable(rows, header, r.opts.SpanFill))
	}
	parts = append(parts, extras...)
	return strings.Join(parts, "\n\n")
}

// collectRows gathers rows from the table and its section wrappers
// (thead/tbody map to containers). Header presence is true when any row
// comes from a header context or uses header cells. Non-row content
// such as a caption is returned in extras, rendered as block fragments
// emitted beside the grid.
func (r *Renderer) collectRows(n *doctree.Node, st *renderState) ([][]tableCell, bool, []string) {
	var rows [][]tableCell
	var extras []string
	header := false
	var walk func(n *doctree.Node, inHeader bool)
	walk = func(n *doctree.Node, inHeader bool) {
		for _, c := range n.Children {
			if c.Type != doctree.ElementNode {
				continue
			}
			switch c.Kind {
			case doctree.KindTableRow:
				row, hasHeaderCell := r.collectCells(c, st)
				if inHeader || hasHeaderCell || c.Attribute("header") != "" {
					header = true
				}
				if len(row) > 0 {
					rows = append(rows, row)
				}
			case doctree.KindContainer:
				rowsBefore, extrasBefore := len(rows), len(extras)
				walk(c, inHeader || c.Attribute("header") != "")
				// A wrapper that yields no rows is foreign content;
				// render it whole instead of piecemeal.
				if len(rows) == rowsBefore {
					extras = extras[:extrasBefore]
					if text := strings.TrimSpace(r.render(c, st)); text != "" {
						extras = append(extras, text)
					}
				}
			default:
				if text := strings.TrimSpace(r.render(c, st)); text != "" {
					extras = append(extras, text)
				}
			}
		}
	}
	walk(n, false)
	return rows, header, extras
}

func (r *Renderer) collectCells(row *doctree.Node, st *renderState) ([]tableCell, bool) {
	var cells []tableCell
	hasHeaderCell := false
	for _, c := range row.Children {
		if c.Type != doctree.ElementNode {
			continue
		}
		if c.Kind != doctree.KindTableCell && c.Kind != doctree.KindTableHeaderCell {
			continue
		}
		if c.Kind == doctree.KindTableHeaderCell {
			hasHeaderCell = true
		}
		text := strings.TrimSpace(r.renderChildren(c.Children, st))
		// Cells are single-line in Markdown tables.
		text = strings.ReplaceAll(text, "\n", " ")
		cells = append(cells, tableCell{
			text:    text,
			align:   strings.ToLower(c.Attribute("align")),
			colspan: r.spanValue(c.Attribute("colspan")),
			rowspan: r.spanValue(c.Attribute("rowspan")),
		})
	}
	return cells, hasHeaderCell
}

func (r *Renderer) spanValue(raw string) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		r.anomaly("malformed span attribute", "value", raw)
		return 1
	}
	return n
}

// formatTable normalizes spans, pads every row to the table's column
// count and emits a pipe-delimited table, with a dash separator after
// the first row when a header is present.
func formatTable(rows [][]tableCell, header bool, spanFill string) string {
	// Span normalization over an occupancy grid: a colspan-N cell
	// expands into N adjacent cells (content first, then empties); a
	// rowspan-N cell plants a fill cell at the same column of each of
	// the following N-1 rows.
	future := make(map[int]map[int]tableCell)
	norm := make([][]tableCell, 0, len(rows))
	for i, row := range rows {
		cur := make(map[int]tableCell)
		for col, cell := range future[i] {
			cur[col] = cell
		}
		delete(future, i)

		col := 0
		for _, c := range row {
			for {
				if _, taken := cur[col]; !taken {
					break
				}
				col++
			}
			cur[col] = tableCell{text: c.text, align: c.align}
			for k := 1; k < c.colspan; k++ {
				cur[col+k] = tableCell{}
			}
			for dr := 1; dr < c.rowspan; dr++ {
				fr := future[i+dr]
				if fr == nil {
					fr = make(map[int]tableCell)
					future[i+dr] = fr
				}
				fr[col] = tableCell{text: spanFill}
				for k := 1; k < c.colspan; k++ {
					fr[col+k] = tableCell{}
				}
			}
			col += c.colspan
		}

		maxCol := -1
		for ci := range cur {
			if ci > maxCol {
				maxCol = ci
			}
		}
		dense := make([]tableCell, maxCol+1)
		for ci, cell := range cur {
			dense[ci] = cell
		}
		norm = append(norm, dense)
	}

	columns := 0
	for _, row := range norm {
		if len(row) > columns {
			columns = len(row)
		}
	}
	if columns == 0 {
		return ""
	}
	for i, row := range norm {
		for len(row) < columns {
			row = append(row, tableCell{})
		}
		norm[i] = row
	}

	widths := make([]int, columns)
	aligns := make([]string, columns)
	for _, row := range norm {
		for ci, cell := range row {
			if w := runewidth.StringWidth(cell.text); w > widths[ci] {
				widths[ci] = w
			}
			if aligns[ci] == "" && cell.align != "" {
				aligns[ci] = cell.align
			}
		}
	}
	for ci := range widths {
		if widths[ci] < minColumnWidth {
			widths[ci] = minColumnWidth
		}
	}

	var b strings.Builder
	for i, row := range norm {
		b.WriteByte('|')
		for ci, cell := range row {
			b.WriteString(runewidth.FillRight(cell.text, widths[ci]))
			b.WriteByte('|')
		}
		if i == 0 && header {
			b.WriteString("\n|")
			for ci := range row {
				b.WriteString(separatorCell(widths[ci], aligns[ci]))
				b.WriteByte('|')
			}
		}
		if i < len(norm)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func separatorCell(width int, align string) string {
	dashes := strings.Repeat("-", width)
	switch align {
	case "left":
		return ":" + dashes[1:]
	case "right":
		return dashes[:width-1] + ":"
	case "center":
		return ":" + dashes[1:width-1] + ":"
	default:
		return dashes
	}
}
