// Package json writes datasets as a JSON array of objects.
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"nullinject/internal/config"
	"nullinject/internal/dataset"
)

// WriteRows serializes ds to w as an array of objects, one per row, with
// keys in schema order. The null marker serializes as a JSON null, keeping
// the column present on every object.
//
// Options:
//   - indent (string, default ""): indentation for pretty output.
//
// json.Number values pass through the encoder verbatim, so numeric cells
// that were read from JSON and left untouched round-trip unchanged.
func WriteRows(w io.Writer, ds *dataset.Dataset, opt config.Options) error {
	enc := json.NewEncoder(w)
	if indent := opt.String("indent", ""); indent != "" {
		enc.SetIndent("", indent)
	}

	// Build ordered objects by hand: encoding/json sorts map keys, which
	// would scramble the schema order.
	out := make([]orderedRow, len(ds.Rows))
	for i, row := range ds.Rows {
		out[i] = orderedRow{cols: ds.Columns, cells: row}
	}

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	return nil
}

// orderedRow marshals one row as an object with keys in schema order.
type orderedRow struct {
	cols  []string
	cells []any
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, c := range r.cols {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')

		var cell any
		if i < len(r.cells) {
			cell = r.cells[i]
		}
		v, err := json.Marshal(cell)
		if err != nil {
			return nil, err
		}
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}
