// Package csv reads CSV files into datasets.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"nullinject/internal/config"
	"nullinject/internal/dataset"
)

// ReadRows reads a full CSV document into a dataset.
//
// Options:
//   - has_header (bool, default true): first record is the schema. When
//     false, columns are named column_1..column_n from the first record's
//     width.
//   - comma (string, default ","): field delimiter, first rune used.
//   - trim_space (bool, default true): trim leading/trailing space on cells
//     and header names.
//   - lazy_quotes (bool, default false): passed through to encoding/csv.
//   - charset (string, default ""): decode input from a legacy encoding
//     ("windows-1250", "latin1", "iso-8859-1", "iso-8859-2") before parsing.
//
// Cell semantics:
//   - An empty cell becomes nil, the null marker. Everything else stays a
//     string exactly as read (after optional trimming), so untouched cells
//     round-trip byte-identical.
//
// Errors:
//   - Ragged records (width differing from the header) fail with the
//     offending line number; the engine requires a rectangular dataset.
func ReadRows(ctx context.Context, src io.Reader, opt config.Options) (*dataset.Dataset, error) {
	hasHeader := opt.Bool("has_header", true)
	comma := opt.Rune("comma", ',')
	trim := opt.Bool("trim_space", true)
	lazy := opt.Bool("lazy_quotes", false)

	r, err := wrapCharset(src, opt.String("charset", ""))
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = lazy
	// Width enforcement: the first record fixes FieldsPerRecord, so ragged
	// rows surface as *csv.ParseError instead of silently skewing cells.
	cr.FieldsPerRecord = 0

	var line int
	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	var ds *dataset.Dataset

	if hasHeader {
		hdr, err := readRec()
		if err == io.EOF {
			return nil, fmt.Errorf("csv: empty input, no header")
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read header: %w", err)
		}
		cols := make([]string, len(hdr))
		for i, h := range hdr {
			if i == 0 {
				h = strings.TrimPrefix(h, "\uFEFF")
			}
			if trim && hasEdgeSpace(h) {
				h = strings.TrimSpace(h)
			}
			cols[i] = h
		}
		ds = dataset.New(cols)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := readRec()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}

		if ds == nil {
			cols := make([]string, len(rec))
			for i := range cols {
				cols[i] = fmt.Sprintf("column_%d", i+1)
			}
			ds = dataset.New(cols)
		}

		row := make([]any, len(ds.Columns))
		for i := range ds.Columns {
			if i >= len(rec) {
				continue
			}
			v := rec[i]
			if trim && hasEdgeSpace(v) {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				continue
			}
			row[i] = v
		}
		ds.Rows = append(ds.Rows, row)
	}

	if ds == nil {
		return nil, fmt.Errorf("csv: empty input")
	}
	return ds, nil
}

// wrapCharset decodes legacy encodings to UTF-8 before CSV parsing.
func wrapCharset(r io.Reader, name string) (io.Reader, error) {
	var enc *encoding.Decoder
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1250", "cp1250":
		enc = charmap.Windows1250.NewDecoder()
	case "latin1", "iso-8859-1":
		enc = charmap.ISO8859_1.NewDecoder()
	case "iso-8859-2", "latin2":
		enc = charmap.ISO8859_2.NewDecoder()
	default:
		return nil, fmt.Errorf("csv: unsupported charset %q", name)
	}
	return transform.NewReader(r, enc), nil
}

func hasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == ' ' || s[len(s)-1] == ' ' || s[0] == '\t' || s[len(s)-1] == '\t'
}
