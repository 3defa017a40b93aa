package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"datajanitor/internal/inspect"
	pstrings "datajanitor/pkg/platform/strings"
)

func (a *app) inspectCommand() *cobra.Command {
	var (
		dbPath  string
		opts    inspect.Options
		require []string
	)

	cmd := &cobra.Command{
		Use:   "inspect <table> [table...]",
		Short: "Show columns, sample rows, and value stats for tables",
		Long: `Inspect one or more tables in a database: column list, row count,
optional sample rows, non-blank counts for a chosen column, and presence
checks for required columns. Read-only.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RequireColumns = pstrings.DedupeAndTrim(require)
			return a.runInspect(cmd, dbPath, pstrings.DedupeAndTrim(args), opts)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file, relative to the data directory unless absolute")
	cmd.Flags().IntVar(&opts.SampleLimit, "limit", 10, "sample rows to show (0 = none)")
	cmd.Flags().StringVar(&opts.StatsColumn, "stats-column", "", "also count rows with a non-blank value in this column")
	cmd.Flags().StringSliceVar(&require, "require", nil, "columns that must exist; missing ones are reported")
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, dbPath string, tables []string, opts inspect.Options) error {
	ctx := cmd.Context()

	if a.cfg.PostgresDSN == "" && dbPath == "" {
		return fmt.Errorf("specify --db (SQLite file) or --dsn (PostgreSQL)")
	}
	if dbPath != "" && !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(a.cfg.DataDir, dbPath)
	}
	db, err := a.openDB(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ins := inspect.New(db, a.log)
	reports, err := ins.Tables(ctx, tables, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range reports {
		fmt.Fprintf(out, "Table %s (%d rows)\n", r.Table, r.Total)
		fmt.Fprintln(out, "Columns:")
		for _, c := range r.Columns {
			fmt.Fprintf(out, "  - %s (%s)\n", c.Name, c.Type)
		}
		for _, missing := range r.MissingColumns {
			fmt.Fprintf(out, "MISSING required column: %s\n", missing)
		}
		if opts.StatsColumn != "" {
			fmt.Fprintf(out, "Non-blank %s: %d of %d\n", opts.StatsColumn, r.NonBlank, r.Total)
		}
		if len(r.Samples) > 0 {
			fmt.Fprintf(out, "Sample rows (first %d):\n", len(r.Samples))
			for _, row := range r.Samples {
				fmt.Fprintf(out, "  %v\n", row)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
