package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"nullinject/internal/dataset"
	"nullinject/internal/storage"
)

// Repo implements storage.Repository for SQL Server.
//
// Differences from the other backends live entirely in quoting ([ident]),
// placeholders (@pN) and the CREATE TABLE existence guard (no
// IF NOT EXISTS on older server versions, so we probe OBJECT_ID).
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

func (r *Repo) WriteTable(ctx context.Context, table string, ds *dataset.Dataset) error {
	create := fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
		strings.ReplaceAll(table, "'", "''"),
		sqlIdent(table),
		columnDefs(ds.Columns),
	)
	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	// SQL Server caps parameters at 2100 per statement.
	batch := 2000 / len(ds.Columns)
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
	p := 0
	for i := lo; i < hi; i++ {
		if i > lo {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range ds.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			p++
			fmt.Fprintf(&b, "@p%d", p)
			v := ds.Rows[i][j]
			if v == nil {
				args = append(args, nil)
			} else {
				args = append(args, dataset.CanonicalText(v))
			}
		}
		b.WriteString(")")
	}

	if _, err := r.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func columnDefs(cols []string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = sqlIdent(c) + " NVARCHAR(MAX)"
	}
	return strings.Join(defs, ", ")
}

func sqlIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
	}
	return strings.Join(parts, ".")
}
