// Package inspect answers the ad-hoc verification questions operators ask
// after migrations: which columns does a table have, what do sample rows
// look like, how many rows carry a real value in a given column.
package inspect

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"datajanitor/internal/platform/storage"
	"datajanitor/pkg/platform/sentinel"
)

// Options tunes one inspection.
type Options struct {
	// SampleLimit caps the sample rows returned; 0 disables sampling.
	SampleLimit int
	// StatsColumn, when set, also counts rows with a non-null, non-empty
	// value in that column.
	StatsColumn string
	// RequireColumns lists columns whose absence should be reported.
	RequireColumns []string
}

// TableReport is the result of inspecting one table.
type TableReport struct {
	Table          string
	Columns        []storage.Column
	Samples        []map[string]any
	Total          int64
	NonBlank       int64
	MissingColumns []string
}

// Inspector runs table inspections against one database.
type Inspector struct {
	db  *storage.DB
	log zerolog.Logger
}

// New constructs an Inspector.
func New(db *storage.DB, log zerolog.Logger) *Inspector {
	return &Inspector{db: db, log: log}
}

// Table inspects a single table.
func (i *Inspector) Table(ctx context.Context, table string, opts Options) (*TableReport, error) {
	exists, err := i.db.Dialect().TableExists(ctx, i.db, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("table %s: %w", table, sentinel.ErrNotFound)
	}

	i.log.Debug().Str("table", table).Msg("inspecting table")
	report := &TableReport{Table: table}

	if report.Columns, err = i.db.Dialect().Columns(ctx, i.db, table); err != nil {
		return nil, err
	}
	for _, required := range opts.RequireColumns {
		found := slices.ContainsFunc(report.Columns, func(c storage.Column) bool {
			return c.Name == required
		})
		if !found {
			report.MissingColumns = append(report.MissingColumns, required)
		}
	}

	if err := i.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&report.Total); err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}

	if opts.StatsColumn != "" {
		q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND %s <> ''",
			table, opts.StatsColumn, opts.StatsColumn)
		if err := i.db.QueryRowContext(ctx, q).Scan(&report.NonBlank); err != nil {
			return nil, fmt.Errorf("count non-blank %s.%s: %w", table, opts.StatsColumn, err)
		}
	}

	if opts.SampleLimit > 0 {
		if report.Samples, err = i.sample(ctx, table, opts.SampleLimit); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// Tables inspects several tables concurrently and returns reports in the
// order the names were given.
func (i *Inspector) Tables(ctx context.Context, tables []string, opts Options) ([]*TableReport, error) {
	reports := make([]*TableReport, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	for idx, table := range tables {
		idx, table := idx, table
		g.Go(func() error {
			r, err := i.Table(gctx, table, opts)
			if err != nil {
				return err
			}
			reports[idx] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (i *Inspector) sample(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	q := i.db.Dialect().Rebind(fmt.Sprintf("SELECT * FROM %s LIMIT ?", table))
	rows, err := i.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sample columns: %w", err)
	}

	var samples []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for n := range values {
			ptrs[n] = &values[n]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for n, c := range cols {
			if b, ok := values[n].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[n]
			}
		}
		samples = append(samples, row)
	}
	return samples, rows.Err()
}
