// Package dataset defines the in-memory tabular representation shared by
// parsers, the injection engine, writers and storage backends.
//
// Rows are positional and aligned to Columns. A nil cell is the null marker:
// it is a real value at a real position, never a missing key. This keeps
// "already null" distinguishable from "column absent" without per-row maps.
package dataset

import "fmt"

// Dataset is an ordered set of rows sharing one column schema.
type Dataset struct {
	// Columns is the schema, in serialization order.
	Columns []string

	// Rows holds one []any per row, len(Rows[i]) == len(Columns).
	// nil elements are the null marker.
	Rows [][]any
}

// New returns an empty dataset with the given schema.
func New(columns []string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of name in the schema, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the dataset.
//
// Cell values themselves are not copied: they are scalars (string, bool,
// numbers, time.Time) or treated as immutable by every consumer, so sharing
// them is safe. Row slices and the column slice are fresh.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([][]any, len(d.Rows)),
	}
	for i, r := range d.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}

// CheckShape validates the dataset invariants before any processing:
// a non-empty schema and every row exactly as wide as the schema.
//
// Errors:
//   - Returns an error naming the first malformed row, or the empty schema.
func (d *Dataset) CheckShape() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset: schema has no columns")
	}
	for i, r := range d.Rows {
		if len(r) != len(d.Columns) {
			return fmt.Errorf("dataset: row %d has %d cells, schema has %d columns", i, len(r), len(d.Columns))
		}
	}
	return nil
}
