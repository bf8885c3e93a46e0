package scraper

import (
	"iter"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// ExtractRows yields one Row per element matching rowSelector. Rows with
// fewer cells than the schema reads are skipped. Cell values are the raw
// inner HTML; nothing is trimmed or unescaped here.
func ExtractRows(doc *goquery.Document, rowSelector, cellSelector string, schema Schema) (iter.Seq[Row], error) {
	rowMatcher, err := cascadia.Compile(rowSelector)
	if err != nil {
		return nil, &ParseError{Selector: rowSelector, Err: err}
	}
	cellMatcher, err := cascadia.Compile(cellSelector)
	if err != nil {
		return nil, &ParseError{Selector: cellSelector, Err: err}
	}

	width := schema.Width()

	return func(yield func(Row) bool) {
		rows := doc.FindMatcher(rowMatcher)
		for i := range rows.Length() {
			cells := rows.Eq(i).FindMatcher(cellMatcher)
			if cells.Length() < width {
				continue
			}
			row := Row{
				IP:      cellHTML(cells, schema.IP),
				Port:    cellHTML(cells, schema.Port),
				Country: cellHTML(cells, schema.Country),
				HTTPS:   cellHTML(cells, schema.HTTPS),
			}
			if !yield(row) {
				return
			}
		}
	}, nil
}

func cellHTML(cells *goquery.Selection, idx int) string {
	html, err := cells.Eq(idx).Html()
	if err != nil {
		return ""
	}
	return html
}
