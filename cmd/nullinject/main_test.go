package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nullinject/internal/inject"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantOK   bool
		wantCode int
		check    func(t *testing.T, opts cliOptions)
	}{
		{
			name:   "defaults",
			args:   []string{"in.csv", "out.csv"},
			wantOK: true,
			check: func(t *testing.T, opts cliOptions) {
				if opts.cfg.Probability != 0.1 {
					t.Errorf("probability=%v, want default 0.1", opts.cfg.Probability)
				}
				if opts.cfg.ColumnsSet {
					t.Error("ColumnsSet must be false when -columns is absent")
				}
				if opts.input != "in.csv" || opts.output != "out.csv" {
					t.Errorf("positionals=%q/%q", opts.input, opts.output)
				}
			},
		},
		{
			name:   "columns_flag_present",
			args:   []string{"-columns", "email,ssn", "in.csv", "out.csv"},
			wantOK: true,
			check: func(t *testing.T, opts cliOptions) {
				if !opts.cfg.ColumnsSet {
					t.Error("ColumnsSet must be true when -columns is passed")
				}
				if len(opts.cfg.Columns) != 2 {
					t.Errorf("columns=%v", opts.cfg.Columns)
				}
			},
		},
		{
			name:   "columns_flag_empty_value",
			args:   []string{"-columns", "", "in.csv", "out.csv"},
			wantOK: true,
			check: func(t *testing.T, opts cliOptions) {
				if !opts.cfg.ColumnsSet {
					t.Error("ColumnsSet must be true even for -columns=\"\"")
				}
				if len(opts.cfg.Columns) != 0 {
					t.Errorf("columns=%v, want empty", opts.cfg.Columns)
				}
			},
		},
		{
			name:     "missing_positionals",
			args:     []string{"-probability", "0.5"},
			wantOK:   false,
			wantCode: 2,
		},
		{
			name:     "too_many_positionals",
			args:     []string{"a", "b", "c"},
			wantOK:   false,
			wantCode: 2,
		},
		{
			name:     "unknown_flag",
			args:     []string{"-frobnicate", "in.csv", "out.csv"},
			wantOK:   false,
			wantCode: 2,
		},
		{
			name:     "db_storage_requires_dsn",
			args:     []string{"-storage", "sqlite", "people", "people_masked"},
			wantOK:   false,
			wantCode: 2,
		},
		{
			name:     "help_is_not_an_error",
			args:     []string{"-h"},
			wantOK:   false,
			wantCode: 0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			opts, code, ok := parseArgs(tc.args, &stderr)
			if ok != tc.wantOK {
				t.Fatalf("ok=%v, want %v (stderr=%q)", ok, tc.wantOK, stderr.String())
			}
			if !ok && code != tc.wantCode {
				t.Fatalf("code=%d, want %d (stderr=%q)", code, tc.wantCode, stderr.String())
			}
			if tc.check != nil {
				tc.check(t, opts)
			}
		})
	}
}

// TestRunMain_ValidationReportsAllIssues: an invalid config must report every
// violation in one pass, not stop at the first.
func TestRunMain_ValidationReportsAllIssues(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := runMain([]string{
		"-probability", "2.5",
		"-pattern", "(unclosed",
		"-columns", " , ",
		"in.csv", "out.csv",
	}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("code=%d, want 1 (stderr=%q)", code, stderr.String())
	}
	out := stderr.String()
	for _, path := range []string{"probability", "pattern", "columns"} {
		if !strings.Contains(out, path) {
			t.Errorf("stderr missing issue for %q:\n%s", path, out)
		}
	}
}

func TestRunMain_CSVEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	writeFile(t, in, "name,email\nalice,a@example.com\nbob,b@example.com\n")

	var stdout, stderr bytes.Buffer
	code := runMain([]string{
		"-probability", "1",
		"-columns", "email",
		in, out,
	}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("code=%d, stderr=%q", code, stderr.String())
	}

	got := readFile(t, out)
	want := "name,email\nalice,\nbob,\n"
	if got != want {
		t.Fatalf("output=%q, want %q", got, want)
	}

	if !strings.Contains(stdout.String(), "rows=2 cells_examined=4 cells_replaced=2") {
		t.Errorf("summary=%q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "column email: 2 replaced") {
		t.Errorf("per-column summary missing: %q", stdout.String())
	}
}

// TestRunMain_ZeroProbabilityIsIdentity: p=0 must leave the file unchanged
// apart from canonical CSV formatting.
func TestRunMain_ZeroProbabilityIsIdentity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	content := "a,b\n1,2\n3,4\n"
	writeFile(t, in, content)

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"-probability", "0", in, out}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("code=%d, stderr=%q", code, stderr.String())
	}
	if got := readFile(t, out); got != content {
		t.Fatalf("output=%q, want unchanged %q", got, content)
	}
}

// TestRunMain_Deterministic: identical inputs and seed produce identical
// outputs across runs and worker counts.
func TestRunMain_Deterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	var b strings.Builder
	b.WriteString("id,secret\n")
	for i := 0; i < 200; i++ {
		b.WriteString("row,value\n")
	}
	writeFile(t, in, b.String())

	outputs := make([]string, 0, 3)
	for _, workers := range []string{"1", "4", "16"} {
		out := filepath.Join(dir, "out_"+workers+".csv")
		var stdout, stderr bytes.Buffer
		code := runMain([]string{
			"-probability", "0.5",
			"-seed", "42",
			"-workers", workers,
			in, out,
		}, &stdout, &stderr)
		if code != 0 {
			t.Fatalf("workers=%s: code=%d, stderr=%q", workers, code, stderr.String())
		}
		outputs = append(outputs, readFile(t, out))
	}

	if outputs[0] != outputs[1] || outputs[1] != outputs[2] {
		t.Fatal("output differs across worker counts")
	}
}

func TestRunMain_UnknownColumnFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	writeFile(t, in, "a,b\n1,2\n")

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"-columns", "nope,b,missing", in, out}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("code=%d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "unknown columns: missing, nope") {
		t.Errorf("stderr=%q", stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("failed run must not produce an output file")
	}
}

func TestRunMain_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.parquet")
	writeFile(t, in, "not really parquet")

	var stdout, stderr bytes.Buffer
	code := runMain([]string{in, filepath.Join(dir, "out.csv")}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("code=%d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "unsupported input format") {
		t.Errorf("stderr=%q", stderr.String())
	}
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printSummary(&buf, inject.Summary{
		Rows:          3,
		CellsExamined: 6,
		CellsReplaced: 2,
		PerColumn:     map[string]int64{"b": 2, "a": 0},
	})

	want := "rows=3 cells_examined=6 cells_replaced=2\n" +
		"  column a: 0 replaced\n" +
		"  column b: 2 replaced\n"
	if buf.String() != want {
		t.Fatalf("summary=%q, want %q", buf.String(), want)
	}
}

func TestExtOf(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"data.csv", "csv"},
		{"data.JSON", "json"},
		{"dir.v2/data.html", "html"},
		{"noext", ""},
	}
	for _, tc := range tests {
		if got := extOf(tc.in); got != tc.want {
			t.Errorf("extOf(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
