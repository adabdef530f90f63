// Package csv writes datasets as CSV.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"nullinject/internal/config"
	"nullinject/internal/dataset"
)

// WriteRows serializes ds to w: one header record, then one record per row.
//
// The null marker serializes as an empty cell, CSV's conventional
// absent-value token. Every other value is rendered with the same canonical
// text form used by pattern matching, so string cells that were read from
// CSV and left untouched round-trip byte-identical.
//
// Options:
//   - comma (string, default ","): field delimiter, first rune used.
//   - use_crlf (bool, default false): terminate lines with \r\n.
func WriteRows(w io.Writer, ds *dataset.Dataset, opt config.Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = opt.Rune("comma", ',')
	cw.UseCRLF = opt.Bool("use_crlf", false)

	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("csv write: header: %w", err)
	}

	rec := make([]string, len(ds.Columns))
	for i, row := range ds.Rows {
		for j := range rec {
			if j < len(row) && row[j] != nil {
				rec[j] = dataset.CanonicalText(row[j])
			} else {
				rec[j] = ""
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv write: row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
