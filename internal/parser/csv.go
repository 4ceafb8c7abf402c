package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/levindixon/WebMD/internal/doctree"
)

// CSVParser handles CSV files. The first record becomes a header row of
// the resulting table node.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	root := doctree.NewElement(doctree.KindContainer)
	if len(records) == 0 {
		return root, nil
	}

	table := doctree.NewElement(doctree.KindTable)
	for i, record := range records {
		cellKind := doctree.KindTableCell
		row := doctree.NewElement(doctree.KindTableRow)
		if i == 0 {
			cellKind = doctree.KindTableHeaderCell
			row.WithAttr("header", "1")
		}
		for _, field := range record {
			row.AppendChild(doctree.NewElement(cellKind, doctree.NewText(field)))
		}
		table.AppendChild(row)
	}
	root.AppendChild(table)
	return root, nil
}
