// Package inject implements the null-injection decision engine: given a
// dataset, a probability, an optional value pattern and an optional column
// allow-list, it decides deterministically which cells become null and
// performs the substitution without altering the dataset's shape.
package inject

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"nullinject/internal/config"
	"nullinject/internal/dataset"
)

// Summary describes one injection run.
type Summary struct {
	Rows          int64
	CellsExamined int64
	CellsReplaced int64

	// PerColumn counts replacements by column name. Columns with zero
	// replacements are present with a 0 entry when they were eligible.
	PerColumn map[string]int64
}

// add merges a worker-local partial summary into s. Plain associative
// addition: worker completion order does not matter.
func (s *Summary) add(p Summary) {
	s.Rows += p.Rows
	s.CellsExamined += p.CellsExamined
	s.CellsReplaced += p.CellsReplaced
	for c, n := range p.PerColumn {
		s.PerColumn[c] += n
	}
}

// Injector holds the immutable per-run state derived from a Config: the
// eligible column set, the compiled matcher and the seeded sampler.
type Injector struct {
	cfg      config.Config
	eligible map[int]struct{}
	matcher  *Matcher
	sampler  *Sampler
}

// New derives an Injector from a validated config and the dataset schema.
//
// Errors:
//   - *UnknownColumnsError when the allow-list names columns missing from
//     the schema (every offender listed).
//   - A wrapped regexp error when the pattern does not compile. Callers
//     that ran config.Validate first never see this.
func New(cfg config.Config, schema []string) (*Injector, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("inject: schema has no columns")
	}

	var configured []string
	if cfg.ColumnsSet {
		configured = cfg.Columns
	}
	eligible, err := ResolveColumns(schema, configured)
	if err != nil {
		return nil, err
	}

	m, err := NewMatcher(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	return &Injector{
		cfg:      cfg,
		eligible: eligible,
		matcher:  m,
		sampler:  NewSampler(cfg.Seed, cfg.Probability),
	}, nil
}

// Run produces a masked copy of ds plus a replacement summary.
//
// The per-cell decision is a pure function of (seed, rowIndex, columnName,
// value), so rows are processed in parallel across workers and the output is
// identical for any worker count. Cancellation is checked between rows; a
// single cell decision never blocks.
//
// The input dataset is never mutated.
func (in *Injector) Run(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, Summary, error) {
	if err := ds.CheckShape(); err != nil {
		return nil, Summary{}, err
	}

	out := ds.Clone()

	workers := in.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(out.Rows) {
		workers = len(out.Rows)
	}
	if workers < 1 {
		workers = 1
	}

	total := Summary{PerColumn: make(map[string]int64, len(in.eligible))}
	for ix := range in.eligible {
		total.PerColumn[out.Columns[ix]] = 0
	}

	partials := make([]Summary, workers)
	chunk := (len(out.Rows) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(out.Rows) {
			hi = len(out.Rows)
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			partials[w] = in.maskRange(ctx, out, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	for _, p := range partials {
		total.add(p)
	}
	return out, total, nil
}

// maskRange applies the per-cell decision to rows [lo, hi) in place on the
// output dataset and returns the worker-local summary.
//
// Decision order per cell, cheapest and most selective check first:
// column eligibility, already-null, pattern match, probability draw.
func (in *Injector) maskRange(ctx context.Context, out *dataset.Dataset, lo, hi int) Summary {
	p := Summary{PerColumn: make(map[string]int64, len(in.eligible))}

	for i := lo; i < hi; i++ {
		select {
		case <-ctx.Done():
			return p
		default:
		}

		row := out.Rows[i]
		p.Rows++

		for ix := range row {
			p.CellsExamined++

			if _, ok := in.eligible[ix]; !ok {
				continue
			}
			if row[ix] == nil {
				continue
			}
			if !in.matcher.Matches(row[ix]) {
				continue
			}
			if !in.sampler.Draw(i, out.Columns[ix]) {
				continue
			}

			row[ix] = nil
			p.CellsReplaced++
			p.PerColumn[out.Columns[ix]]++
		}
	}
	return p
}
