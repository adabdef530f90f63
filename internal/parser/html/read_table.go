// Package html extracts the first <table> of an HTML document as a dataset.
package html

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nullinject/internal/config"
	"nullinject/internal/dataset"
)

// ReadTable parses HTML from r and converts its first <table> into a dataset.
//
// Options:
//   - table_selector (string, default "table"): CSS selector for the table
//     to extract; the first match wins.
//   - trim_space (bool, default true): trim cell text.
//
// Header resolution: a <thead> row if present, otherwise the first row that
// contains <th> cells, otherwise the first row. Remaining rows become data
// rows; empty cell text becomes the null marker. Rows wider than the header
// are truncated, narrower rows are padded with nulls — HTML tables are often
// ragged and the engine needs a rectangular dataset.
func ReadTable(ctx context.Context, r io.Reader, opt config.Options) (*dataset.Dataset, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	sel := opt.String("table_selector", "table")
	trim := opt.Bool("trim_space", true)

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("html: parse: %w", err)
	}

	table := doc.Find(sel).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("html: no table matches selector %q", sel)
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("html: table has no rows")
	}

	headerIx := 0
	rows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if tr.Find("th").Length() > 0 {
			headerIx = i
			return false
		}
		return true
	})

	var cols []string
	rows.Eq(headerIx).Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cols = append(cols, cellText(cell, trim))
	})
	if len(cols) == 0 {
		return nil, fmt.Errorf("html: header row has no cells")
	}

	ds := dataset.New(cols)
	rows.Each(func(i int, tr *goquery.Selection) {
		if i == headerIx {
			return
		}
		row := make([]any, len(cols))
		tr.Find("td, th").Each(func(j int, cell *goquery.Selection) {
			if j >= len(cols) {
				return
			}
			if v := cellText(cell, trim); v != "" {
				row[j] = v
			}
		})
		ds.Rows = append(ds.Rows, row)
	})

	return ds, nil
}

func cellText(s *goquery.Selection, trim bool) string {
	t := s.Text()
	if trim {
		t = strings.TrimSpace(t)
	}
	return t
}
