package json

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"nullinject/internal/config"
	"nullinject/internal/dataset"
	jsonparser "nullinject/internal/parser/json"
)

func TestWriteRows_SchemaOrderAndNulls(t *testing.T) {
	t.Parallel()

	ds := &dataset.Dataset{
		Columns: []string{"z", "a"},
		Rows: [][]any{
			{"1", nil},
		},
	}

	var buf bytes.Buffer
	if err := WriteRows(&buf, ds, nil); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}

	// Keys must follow schema order, not be alphabetized, and the null
	// marker must serialize as JSON null with the key present.
	want := `[{"z":"1","a":null}]` + "\n"
	if buf.String() != want {
		t.Fatalf("output=%q, want %q", buf.String(), want)
	}
}

func TestWriteRows_Indent(t *testing.T) {
	t.Parallel()

	ds := &dataset.Dataset{Columns: []string{"a"}, Rows: [][]any{{"1"}}}

	var buf bytes.Buffer
	if err := WriteRows(&buf, ds, config.Options{"indent": "  "}); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatalf("indent not applied: %q", buf.String())
	}
}

// TestWriteRows_NumberRoundTrip: a json.Number read from input serializes
// back with its original textual form.
func TestWriteRows_NumberRoundTrip(t *testing.T) {
	t.Parallel()

	in := `[{"amount": 10.50, "count": 3}]`
	ds, err := jsonparser.ReadRows(context.Background(), strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteRows(&buf, ds, nil); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "10.50") {
		t.Fatalf("number text form lost: %q", out)
	}

	// And the output is valid JSON.
	var check []map[string]any
	if err := json.Unmarshal([]byte(out), &check); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}
