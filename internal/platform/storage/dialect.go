package storage

import (
	"context"
	"fmt"
	"strings"
)

// Dialect absorbs the differences between the SQLite and PostgreSQL
// backends: placeholder syntax, the deterministic row-ordinal surrogate,
// and catalog introspection. Reconciliation queries are written with '?'
// placeholders and rebound before execution.
type Dialect interface {
	Name() string

	// Rebind converts '?' placeholders to the engine's native form.
	Rebind(query string) string

	// RowOrdinal is the column used as a deterministic physical-order
	// surrogate when a relation has no explicit tie-break field.
	RowOrdinal() string

	// Columns lists the columns of a table, in ordinal position.
	Columns(ctx context.Context, q Queryer, table string) ([]Column, error)

	// TableExists reports whether a table is present in the catalog.
	TableExists(ctx context.Context, q Queryer, table string) (bool, error)
}

// Column describes one table column as reported by the engine's catalog.
type Column struct {
	Name string
	Type string
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string               { return "sqlite" }
func (sqliteDialect) Rebind(query string) string { return query }
func (sqliteDialect) RowOrdinal() string         { return "rowid" }

func (sqliteDialect) Columns(ctx context.Context, q Queryer, table string) ([]Column, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return nil, fmt.Errorf("scan table_info row: %w", err)
		}
		cols = append(cols, Column{Name: name, Type: typ})
	}
	return cols, rows.Err()
}

func (sqliteDialect) TableExists(ctx context.Context, q Queryer, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return n > 0, nil
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// PostgreSQL has no queryable rowid; relations reconciled against this
// backend are expected to carry an integer primary key named id.
func (postgresDialect) RowOrdinal() string { return "id" }

func (postgresDialect) Columns(ctx context.Context, q Queryer, table string) ([]Column, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT column_name, data_type FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1
		 ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (postgresDialect) TableExists(ctx context.Context, q Queryer, table string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return exists, nil
}
