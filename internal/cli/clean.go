package cli

import (
	"github.com/spf13/cobra"

	"datajanitor/internal/announce"
	"datajanitor/internal/reconcile"
)

func (a *app) cleanCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove blank and duplicate announcements",
		Long: `Reconcile the corporate announcements table: delete blank rows, then
collapse duplicate groups by announcement_id, by headline+datetime, and by
headline+symbol, in that order. Within each group the earliest-ingested row
survives. All passes run in one transaction; re-running removes nothing new.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runClean(cmd, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be removed, then roll back")
	return cmd
}

func (a *app) runClean(cmd *cobra.Command, dryRun bool) error {
	ctx := cmd.Context()

	db, err := a.openDB(ctx, announce.DatabasePath(a.cfg.DataDir))
	if err != nil {
		a.metrics.RunsTotal.WithLabelValues("clean", "connection_failure").Inc()
		return err
	}
	defer db.Close()

	if err := announce.EnsureTable(ctx, db); err != nil {
		return err
	}

	r := reconcile.New(db, reconcile.WithLogger(a.log), reconcile.WithMetrics(a.metrics))
	report, err := r.Run(ctx, announce.Plan(), dryRun)
	if err != nil {
		a.metrics.RunsTotal.WithLabelValues("clean", "failure").Inc()
		a.pushMetrics("datajanitor_clean")
		return err
	}

	outcome := "clean"
	if !report.Clean() {
		outcome = "remaining_duplicates"
	}
	a.metrics.RunsTotal.WithLabelValues("clean", outcome).Inc()
	a.pushMetrics("datajanitor_clean")

	a.log.Info().
		Bool("dry_run", report.DryRun).
		Int64("before", report.Before).
		Int64("after", report.After).
		Int64("removed", report.Removed).
		Int64("remaining_groups", report.TotalRemaining()).
		Msg("announcement cleanup complete")
	return nil
}
