package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nullinject/internal/dataset"
	"nullinject/internal/storage"
)

// Repo implements storage.Repository for Postgres via pgx.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

// ReadTable loads the entire table in the server-reported column order.
func (r *Repo) ReadTable(ctx context.Context, table string) (*dataset.Dataset, error) {
	q := fmt.Sprintf(`SELECT * FROM %s`, sqlIdent(table))
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}

	ds := dataset.New(cols)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make([]any, len(cols))
		copy(row, vals)
		for i, v := range row {
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

// WriteTable creates the table if needed and bulk-loads rows with COPY,
// which is dramatically faster than multi-row INSERT for large datasets.
func (r *Repo) WriteTable(ctx context.Context, table string, ds *dataset.Dataset) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range ds.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")

	if _, err := r.pool.Exec(ctx, b.String()); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	src := make([][]any, len(ds.Rows))
	for i, row := range ds.Rows {
		out := make([]any, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			out[j] = dataset.CanonicalText(v)
		}
		src[i] = out
	}

	ident := pgx.Identifier{}
	for _, part := range strings.Split(table, ".") {
		ident = append(ident, part)
	}

	n, err := r.pool.CopyFrom(ctx, ident, ds.Columns, pgx.CopyFromRows(src))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	if n != int64(len(ds.Rows)) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", table, n, len(ds.Rows))
	}
	return nil
}

func sqlIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
