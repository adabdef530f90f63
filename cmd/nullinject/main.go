// Command nullinject masks sensitive values in a tabular dataset by
// replacing selected cells with a null marker, preserving the dataset's
// shape and, minus the masked fraction, its per-column value distribution.
//
// Usage:
//
//	nullinject [flags] <input> <output>
//
// With the default file storage, <input> and <output> are paths and the
// format is sniffed from the extension (.csv, .json, .html for input). With
// -storage sqlite|postgres|mssql, they are table names and -dsn selects the
// database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"nullinject/internal/config"
	"nullinject/internal/inject"
	"nullinject/internal/metrics"
	"nullinject/internal/metrics/datadog"

	// register all storage backends with the factory.
	// flags specify which to use but we build in support for all of them.
	_ "nullinject/internal/storage/all"
)

func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// cliOptions is the parsed flag set for one invocation.
type cliOptions struct {
	cfg config.Config

	input      string
	output     string
	format     string
	outFormat  string
	storage    string
	dsn        string
	comma      string
	charset    string
	noHeader   bool
	metricsBkd string
	verbose    bool
}

// runMain is the testable body of main: it parses args, validates, runs the
// injection and reports. Exit codes: 0 success, 1 validation/run failure,
// 2 usage error.
func runMain(args []string, stdout, stderr io.Writer) int {
	opts, code, ok := parseArgs(args, stderr)
	if !ok {
		return code
	}

	logger := log.New(stderr, "", log.LstdFlags)

	// Validate config; report every violation, not just the first.
	issues := config.Validate(opts.cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s\n", iss)
	}
	if config.HasErrors(issues) {
		return 1
	}

	closeMetrics := initMetrics(opts, logger)
	defer closeMetrics()

	ctx := context.Background()
	start := time.Now()

	summary, err := run(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	metrics.IncCounter(metrics.MetricRowsTotal, float64(summary.Rows), nil)
	metrics.IncCounter(metrics.MetricCellsExaminedTotal, float64(summary.CellsExamined), nil)
	for col, n := range summary.PerColumn {
		metrics.IncCounter(metrics.MetricCellsReplacedTotal, float64(n), metrics.Labels{"column": col})
	}
	metrics.ObserveHistogram(metrics.MetricRunDurationSeconds, time.Since(start).Seconds(), nil)

	printSummary(stdout, summary)

	if opts.verbose {
		logger.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (cliOptions, int, bool) {
	var opts cliOptions
	var columnsFlg string
	var seedFlg int64

	fs := flag.NewFlagSet("nullinject", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: nullinject [flags] <input> <output>\n\n")
		fs.PrintDefaults()
	}

	fs.Float64Var(&opts.cfg.Probability, "probability", 0.1, "probability (0.0 to 1.0) of replacing a candidate value with null")
	fs.StringVar(&opts.cfg.Pattern, "pattern", "", "regular expression; only values whose text contains a match are candidates")
	fs.StringVar(&columnsFlg, "columns", "", "comma-separated column names to consider (default: all columns)")
	fs.Int64Var(&seedFlg, "seed", 0, "seed for the deterministic per-cell draw")
	fs.IntVar(&opts.cfg.Workers, "workers", 0, "injection parallelism (0 = number of CPUs)")
	fs.StringVar(&opts.format, "format", "", "input format: csv, json or html (default: by file extension)")
	fs.StringVar(&opts.outFormat, "out-format", "", "output format: csv or json (default: by file extension)")
	fs.StringVar(&opts.storage, "storage", "file", "storage kind: file, sqlite, postgres or mssql")
	fs.StringVar(&opts.dsn, "dsn", "", "database DSN when -storage is not file (environment variables are expanded)")
	fs.StringVar(&opts.comma, "comma", ",", "CSV field delimiter")
	fs.StringVar(&opts.charset, "charset", "", "input charset for CSV (e.g. windows-1250, latin1)")
	fs.BoolVar(&opts.noHeader, "no-header", false, "CSV input has no header row; columns are named column_1..n")
	fs.StringVar(&opts.metricsBkd, "metrics-backend", "", "metrics backend to use (datadog, none)")
	fs.BoolVar(&opts.verbose, "v", false, "enable verbose logs")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return opts, 0, false
		}
		return opts, 2, false
	}

	if fs.NArg() != 2 {
		fmt.Fprintf(stderr, "nullinject: expected <input> and <output>, got %d arguments\n", fs.NArg())
		fs.Usage()
		return opts, 2, false
	}
	opts.input = fs.Arg(0)
	opts.output = fs.Arg(1)

	// Flag presence distinguishes "all columns" from an explicit empty list.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "columns":
			opts.cfg.ColumnsSet = true
		case "seed":
			// recorded for symmetry; the zero default is a valid seed
		}
	})
	opts.cfg.Columns = config.ParseColumns(columnsFlg)
	opts.cfg.Seed = seedFlg

	if opts.storage != "file" && opts.dsn == "" {
		fmt.Fprintf(stderr, "nullinject: -dsn is required when -storage=%s\n", opts.storage)
		return opts, 2, false
	}

	return opts, 0, true
}

// initMetrics wires the configured metrics backend and returns its shutdown
// function. Backend selection: flag, then METRICS_BACKEND env, then none.
func initMetrics(opts cliOptions, logger *log.Logger) func() {
	backendName := opts.metricsBkd
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "datadog":
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "nullinject",
			Tags:    datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
		})
		if err != nil {
			logger.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return func() {}
		}
		if opts.verbose {
			logger.Printf("metrics: backend=%s", backendName)
		}
		metrics.SetBackend(b)
		return func() {
			// Close() stops the periodic flush loop, then flushes once more.
			if err := b.Close(); err != nil {
				logger.Printf("metrics: datadog close/flush error: %v", err)
			}
		}

	case "", "none":
		return func() {}

	default:
		logger.Printf("metrics: unknown backend %q; metrics disabled", backendName)
		return func() {}
	}
}

func printSummary(w io.Writer, s inject.Summary) {
	fmt.Fprintf(w, "rows=%d cells_examined=%d cells_replaced=%d\n", s.Rows, s.CellsExamined, s.CellsReplaced)

	cols := make([]string, 0, len(s.PerColumn))
	for c := range s.PerColumn {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		fmt.Fprintf(w, "  column %s: %d replaced\n", c, s.PerColumn[c])
	}
}

func extOf(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i+1:])
}
