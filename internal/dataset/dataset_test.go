package dataset

import (
	"testing"
	"time"
)

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	in := &Dataset{
		Columns: []string{"a", "b"},
		Rows: [][]any{
			{"x", nil},
			{"y", "z"},
		},
	}

	out := in.Clone()
	out.Rows[0][0] = nil
	out.Columns[1] = "mutated"

	if in.Rows[0][0] != "x" {
		t.Errorf("clone mutation leaked into source row: %v", in.Rows[0][0])
	}
	if in.Columns[1] != "b" {
		t.Errorf("clone mutation leaked into source schema: %v", in.Columns)
	}
}

func TestCheckShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ds      *Dataset
		wantErr bool
	}{
		{"ok", &Dataset{Columns: []string{"a"}, Rows: [][]any{{1}, {nil}}}, false},
		{"ok empty rows", &Dataset{Columns: []string{"a"}}, false},
		{"no columns", &Dataset{}, true},
		{"ragged row", &Dataset{Columns: []string{"a", "b"}, Rows: [][]any{{1}}}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.ds.CheckShape()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckShape() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestColumnIndex(t *testing.T) {
	t.Parallel()

	ds := New([]string{"a", "b"})
	if got := ds.ColumnIndex("b"); got != 1 {
		t.Errorf("ColumnIndex(b) = %d", got)
	}
	if got := ds.ColumnIndex("z"); got != -1 {
		t.Errorf("ColumnIndex(z) = %d, want -1", got)
	}
}

// TestCanonicalText locks in the canonical rendering contract that both
// pattern matching and serialization rely on: stable, locale-independent,
// and identical for equal values however they are typed.
func TestCanonicalText(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"plain", "plain"},
		{[]byte("bytes"), "bytes"},
		{true, "true"},
		{false, "false"},
		{int(42), "42"},
		{int64(-7), "-7"},
		{uint8(255), "255"},
		{float64(1.5), "1.5"},
		{float64(1e21), "1e+21"},
		{float32(0.25), "0.25"},
		{ts, "2024-05-01T09:30:00Z"},
	}
	for _, tt := range tests {
		if got := CanonicalText(tt.in); got != tt.want {
			t.Errorf("CanonicalText(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
