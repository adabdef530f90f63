// Package json reads JSON documents into datasets.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"nullinject/internal/config"
	"nullinject/internal/dataset"
)

// ReadRows parses JSON from r into a dataset.
//
// Accepted shapes:
//   - A root array of objects: one row per element.
//   - A root object containing an array-of-objects field: that field's
//     elements become the rows (envelope pattern).
//   - A root object with no array-of-objects field: a single row.
//   - JSON Lines: trailing objects after the main value, one per line.
//
// Schema: the union of object keys in document order of first appearance.
// Objects are walked token-by-token instead of decoded into maps, so the
// schema (and therefore the output) is deterministic for a given input.
// Rows missing a key get the null marker at that position; an explicit JSON
// null also becomes the null marker.
//
// Numbers are decoded as json.Number so their textual form survives a
// read-inject-write round trip unchanged.
func ReadRows(ctx context.Context, r io.Reader, opt config.Options) (*dataset.Dataset, error) {
	_ = opt // no knobs yet; reserved for envelope field selection

	dec := json.NewDecoder(r)
	dec.UseNumber()

	c := &collector{colIx: map[string]int{}}

	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("json: empty input")
		}
		return nil, fmt.Errorf("json: read first token: %w", err)
	}

	d, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("json: root must be an object or array, got %v", tok)
	}

	switch d {
	case '[':
		if err := readArrayOfObjects(ctx, dec, c); err != nil {
			return nil, err
		}

	case '{':
		rec, envelope, err := readRootObject(ctx, dec, c)
		if err != nil {
			return nil, err
		}
		if !envelope {
			c.add(rec)
		}

	default:
		return nil, fmt.Errorf("json: unexpected delimiter %v", d)
	}

	// Optional trailing JSONL objects after the main value.
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("json: trailing value: %w", err)
		}
		if tok != json.Delim('{') {
			return nil, fmt.Errorf("json: trailing value must be an object, got %v", tok)
		}
		rec, err := readObjectBody(dec)
		if err != nil {
			return nil, err
		}
		c.add(rec)
	}

	if len(c.cols) == 0 {
		return nil, fmt.Errorf("json: no object keys found")
	}
	return c.dataset(), nil
}

// record is one decoded object with its keys in document order.
type record struct {
	keys   []string
	values map[string]any
}

// collector accumulates records and grows the schema as new keys appear.
type collector struct {
	cols    []string
	colIx   map[string]int
	records []record
}

func (c *collector) add(rec record) {
	for _, k := range rec.keys {
		if _, ok := c.colIx[k]; !ok {
			c.colIx[k] = len(c.cols)
			c.cols = append(c.cols, k)
		}
	}
	c.records = append(c.records, rec)
}

func (c *collector) dataset() *dataset.Dataset {
	ds := dataset.New(c.cols)
	ds.Rows = make([][]any, 0, len(c.records))
	for _, rec := range c.records {
		row := make([]any, len(c.cols))
		for _, k := range rec.keys {
			row[c.colIx[k]] = rec.values[k]
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

// readArrayOfObjects consumes array elements (the '[' is already read) up to
// and including the closing ']'.
func readArrayOfObjects(ctx context.Context, dec *json.Decoder, c *collector) error {
	n := 0
	for dec.More() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("json: array element %d: %w", n, err)
		}
		if tok != json.Delim('{') {
			return fmt.Errorf("json: array element %d is not an object", n)
		}
		rec, err := readObjectBody(dec)
		if err != nil {
			return fmt.Errorf("json: array element %d: %w", n, err)
		}
		c.add(rec)
		n++
	}
	if end, err := dec.Token(); err != nil {
		return fmt.Errorf("json: read array end: %w", err)
	} else if end != json.Delim(']') {
		return fmt.Errorf("json: expected array end ']', got %v", end)
	}
	return nil
}

// readRootObject walks the root object's fields. When it hits a field whose
// value is an array of objects, it streams that array's elements into c (the
// envelope pattern) and reports envelope=true; scalar fields seen before the
// envelope are dropped, matching "the rows live in the array" semantics.
// With no envelope field, the object's own fields form a single record.
func readRootObject(ctx context.Context, dec *json.Decoder, c *collector) (record, bool, error) {
	rec := record{values: map[string]any{}}
	envelope := false

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return rec, false, fmt.Errorf("json: object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return rec, false, fmt.Errorf("json: object key is %v, not a string", keyTok)
		}

		tok, err := dec.Token()
		if err != nil {
			return rec, false, fmt.Errorf("json: value for %q: %w", key, err)
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '[':
				recs, arr, err := readArrayFlexible(ctx, dec)
				if err != nil {
					return rec, false, fmt.Errorf("json: array for %q: %w", key, err)
				}
				if recs != nil && !envelope {
					// First array-of-objects field: the envelope. Its
					// elements are the rows.
					for _, r := range recs {
						c.add(r)
					}
					envelope = true
					continue
				}
				if recs != nil {
					for _, r := range recs {
						arr = append(arr, r.values)
					}
				}
				rec.keys = append(rec.keys, key)
				rec.values[key] = arr
			case '{':
				sub, err := readObjectBody(dec)
				if err != nil {
					return rec, false, err
				}
				rec.keys = append(rec.keys, key)
				rec.values[key] = sub.values
			}
		default:
			rec.keys = append(rec.keys, key)
			rec.values[key] = tokenValue(t)
		}
	}

	if end, err := dec.Token(); err != nil {
		return rec, false, fmt.Errorf("json: object end: %w", err)
	} else if end != json.Delim('}') {
		return rec, false, fmt.Errorf("json: expected object end '}', got %v", end)
	}
	return rec, envelope, nil
}

// readArrayFlexible reads an already-opened array. A non-empty array whose
// elements are all objects returns (records, nil); anything else returns
// (nil, values) with the elements as opaque cell values. Mixed arrays
// (objects and scalars) are rejected.
func readArrayFlexible(ctx context.Context, dec *json.Decoder) ([]record, []any, error) {
	var recs []record
	var vals []any
	n := 0

	for dec.More() {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("element %d: %w", n, err)
		}

		isObject := tok == json.Delim('{')
		if n > 0 && isObject != (recs != nil) {
			return nil, nil, fmt.Errorf("element %d: mixed objects and scalars", n)
		}

		if isObject {
			rec, err := readObjectBody(dec)
			if err != nil {
				return nil, nil, fmt.Errorf("element %d: %w", n, err)
			}
			recs = append(recs, rec)
		} else {
			switch tok {
			case json.Delim('['):
				arr, err := readArrayValue(dec)
				if err != nil {
					return nil, nil, fmt.Errorf("element %d: %w", n, err)
				}
				vals = append(vals, arr)
			default:
				vals = append(vals, tokenValue(tok))
			}
		}
		n++
	}
	if end, err := dec.Token(); err != nil {
		return nil, nil, err
	} else if end != json.Delim(']') {
		return nil, nil, fmt.Errorf("expected array end ']', got %v", end)
	}
	return recs, vals, nil
}

// readObjectBody reads the fields of an object whose '{' is already
// consumed, preserving key order. Nested objects and arrays are kept as
// opaque values.
func readObjectBody(dec *json.Decoder) (record, error) {
	rec := record{values: map[string]any{}}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return rec, fmt.Errorf("json: object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return rec, fmt.Errorf("json: object key is %v, not a string", keyTok)
		}

		tok, err := dec.Token()
		if err != nil {
			return rec, fmt.Errorf("json: value for %q: %w", key, err)
		}

		var v any
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				sub, err := readObjectBody(dec)
				if err != nil {
					return rec, err
				}
				v = sub.values
			case '[':
				arr, err := readArrayValue(dec)
				if err != nil {
					return rec, err
				}
				v = arr
			}
		default:
			v = tokenValue(t)
		}

		rec.keys = append(rec.keys, key)
		rec.values[key] = v
	}

	if end, err := dec.Token(); err != nil {
		return rec, fmt.Errorf("json: object end: %w", err)
	} else if end != json.Delim('}') {
		return rec, fmt.Errorf("json: expected object end '}', got %v", end)
	}
	return rec, nil
}

// readArrayValue reads an already-opened array into a []any.
func readArrayValue(dec *json.Decoder) ([]any, error) {
	var out []any
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				sub, err := readObjectBody(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, sub.values)
			case '[':
				arr, err := readArrayValue(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, arr)
			}
		default:
			out = append(out, tokenValue(t))
		}
	}
	if end, err := dec.Token(); err != nil {
		return nil, err
	} else if end != json.Delim(']') {
		return nil, fmt.Errorf("json: expected array end ']', got %v", end)
	}
	return out, nil
}

// tokenValue maps a non-delimiter token to a cell value. JSON null becomes
// the nil null marker.
func tokenValue(tok json.Token) any {
	if tok == nil {
		return nil
	}
	return tok
}
