// Package storage defines the backend-agnostic table repository used when
// the tool masks database tables instead of files, plus the factory
// registry that backends attach to from init().
package storage

import (
	"context"
	"fmt"
	"sync"

	"nullinject/internal/dataset"
)

// Config is the minimal configuration needed to create a repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is a backend-agnostic interface for reading a table into a
// dataset and writing a dataset back out as a table.
//
// IMPORTANT: This interface is intentionally minimal and focused on the
// operations the masking run needs. Each backend implements these semantics
// in its own idiomatic way (quoting, placeholders, batch mechanics).
type Repository interface {
	// Close releases any backend resources (connections, prepared
	// statements, etc). Callers should treat Close as "call once".
	Close()

	// ReadTable loads the full table, preserving the backend's column
	// order as the dataset schema. SQL NULL becomes the null marker.
	ReadTable(ctx context.Context, table string) (*dataset.Dataset, error)

	// WriteTable creates the table if needed (all columns with text
	// affinity) and inserts every row. The null marker is written as SQL
	// NULL.
	WriteTable(ctx context.Context, table string, ds *dataset.Dataset) error
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//   - The `kind` string becomes the lookup key used by New.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. This is intentional to fail fast and
//     avoid ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Concurrency:
//   - Safe for concurrent use with Register. New takes a read lock while
//     selecting the factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
