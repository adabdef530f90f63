package main

import (
	"context"
	"fmt"
	"os"

	"nullinject/internal/config"
	"nullinject/internal/dataset"
	"nullinject/internal/inject"
	"nullinject/internal/parser/csv"
	"nullinject/internal/parser/html"
	"nullinject/internal/parser/json"
	"nullinject/internal/storage"
	csvwriter "nullinject/internal/writer/csv"
	jsonwriter "nullinject/internal/writer/json"
)

// run loads the input dataset, applies the injection and writes the result.
//
// The dataset never leaves memory between the read and the write, so a run
// is all-or-nothing: a failed read or a validation error produces no output
// at all.
func run(ctx context.Context, opts cliOptions) (inject.Summary, error) {
	ds, err := readInput(ctx, opts)
	if err != nil {
		return inject.Summary{}, err
	}

	inj, err := inject.New(opts.cfg, ds.Columns)
	if err != nil {
		return inject.Summary{}, err
	}

	masked, summary, err := inj.Run(ctx, ds)
	if err != nil {
		return inject.Summary{}, err
	}

	if err := writeOutput(ctx, opts, masked); err != nil {
		return inject.Summary{}, err
	}
	return summary, nil
}

func readInput(ctx context.Context, opts cliOptions) (*dataset.Dataset, error) {
	if opts.storage != "file" {
		repo, err := storage.New(ctx, storage.Config{
			Kind: opts.storage,
			DSN:  os.ExpandEnv(opts.dsn),
		})
		if err != nil {
			return nil, err
		}
		defer repo.Close()
		return repo.ReadTable(ctx, opts.input)
	}

	format := opts.format
	if format == "" {
		format = extOf(opts.input)
	}

	f, err := os.Open(opts.input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	parserOpts := config.Options{
		"comma":      opts.comma,
		"charset":    opts.charset,
		"has_header": !opts.noHeader,
	}

	switch format {
	case "csv":
		return csv.ReadRows(ctx, f, parserOpts)
	case "json":
		return json.ReadRows(ctx, f, parserOpts)
	case "html", "htm":
		return html.ReadTable(ctx, f, parserOpts)
	default:
		return nil, fmt.Errorf("unsupported input format %q (use -format)", format)
	}
}

func writeOutput(ctx context.Context, opts cliOptions, ds *dataset.Dataset) error {
	if opts.storage != "file" {
		repo, err := storage.New(ctx, storage.Config{
			Kind: opts.storage,
			DSN:  os.ExpandEnv(opts.dsn),
		})
		if err != nil {
			return err
		}
		defer repo.Close()
		return repo.WriteTable(ctx, opts.output, ds)
	}

	format := opts.outFormat
	if format == "" {
		format = extOf(opts.output)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	switch format {
	case "csv":
		if err := csvwriter.WriteRows(f, ds, config.Options{"comma": opts.comma}); err != nil {
			return err
		}
	case "json":
		if err := jsonwriter.WriteRows(f, ds, nil); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format %q (use -out-format)", format)
	}
	return f.Close()
}
