package extract

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/finsight-labs/finrag/internal/domain"
)

// HTML extracts readable text from HTML reports, dropping scripts and
// styles and rendering tables row by row.
type HTML struct{}

func (e *HTML) Extract(_ context.Context, r io.Reader, _ Options) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to parse HTML", err)
	}

	doc.Find("script, style, noscript").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			blocks = append(blocks, collapseWhitespace(text))
		}
	})

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var rows []string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, collapseWhitespace(strings.TrimSpace(cell.Text())))
			})
			if len(cells) > 0 {
				rows = append(rows, formatRow(cells))
			}
		})
		if len(rows) > 0 {
			blocks = append(blocks, strings.Join(rows, "\n"))
		}
	})

	if len(blocks) == 0 {
		// Markup without recognized block elements: fall back to the
		// document body text.
		body := collapseWhitespace(strings.TrimSpace(doc.Text()))
		if body == "" {
			return &Document{}, nil
		}
		blocks = []string{body}
	}

	text := joinNonEmpty(blocks)
	return &Document{
		FullText: text,
		Pages:    []Page{{Number: 1, Text: text}},
	}, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
