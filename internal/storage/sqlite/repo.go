package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"nullinject/internal/dataset"
	"nullinject/internal/storage"
)

// Repo implements storage.Repository for SQLite.
//
// Column typing: masked output columns are created with TEXT affinity.
// SQLite stores whatever it is handed anyway, and text keeps the masked
// table faithful to the canonical text form the engine matched against.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

// ReadTable loads the entire table in the column order SQLite reports.
func (r *Repo) ReadTable(ctx context.Context, table string) (*dataset.Dataset, error) {
	q := fmt.Sprintf(`SELECT * FROM %s`, sqlIdent(table))
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	ds := dataset.New(cols)
	for rows.Next() {
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		for i, v := range row {
			// database/sql hands back []byte for TEXT; convert so the
			// value is immutable and comparable downstream.
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

// WriteTable creates the table if needed and inserts all rows in batches.
func (r *Repo) WriteTable(ctx context.Context, table string, ds *dataset.Dataset) error {
	if _, err := r.db.ExecContext(ctx, buildCreateSQL(table, ds.Columns)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	// SQLite's default variable limit is 999; stay well under it.
	batch := 500 / len(ds.Columns)
	if batch < 1 {
		batch = 1
	}

	for lo := 0; lo < len(ds.Rows); lo += batch {
		hi := lo + batch
		if hi > len(ds.Rows) {
			hi = len(ds.Rows)
		}
		if err := r.insertBatch(ctx, table, ds, lo, hi); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) insertBatch(ctx context.Context, table string, ds *dataset.Dataset, lo, hi int) error {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range ds.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, (hi-lo)*len(ds.Columns))
	for i := lo; i < hi; i++ {
		if i > lo {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range ds.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, cellArg(ds.Rows[i][j]))
		}
		b.WriteString(")")
	}

	if _, err := r.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func buildCreateSQL(table string, cols []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")
	return b.String()
}

// cellArg maps a cell to a driver-friendly argument: nil stays SQL NULL,
// everything else goes in as canonical text.
func cellArg(v any) any {
	if v == nil {
		return nil
	}
	return dataset.CanonicalText(v)
}

func sqlIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
