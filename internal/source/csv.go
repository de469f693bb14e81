package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/fragdeck/internal/markup"
)

// csvRowsPerPage is how many data rows share one page.
const csvRowsPerPage = 10

// CSVParser handles CSV files. The header row heads every page and each
// data row becomes a fragment, so rows are revealed one at a time.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*markup.Deck, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	deck := &markup.Deck{Title: baseTitle(filename)}
	if len(records) == 0 {
		return deck, nil
	}

	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvRowsPerPage {
		end := min(i+csvRowsPerPage, len(dataRows))

		// 1-indexed, skip header
		page := newPage(fmt.Sprintf("Rows %d-%d", i+2, end+1))
		page.Children = append(page.Children, markup.NewTag("header", true).AddChildren(textLine(strings.Join(headers, ", "))))

		for _, row := range dataRows[i:end] {
			cells := make([]string, 0, len(row))
			for j, cell := range row {
				if j < len(headers) && headers[j] != "" {
					cells = append(cells, headers[j]+": "+cell)
				} else {
					cells = append(cells, cell)
				}
			}
			page.Children = append(page.Children, markup.NewTag("f", true).AddChildren(textLine(strings.Join(cells, ", "))))
		}
		deck.Pages = append(deck.Pages, page)
	}

	return deck, nil
}
