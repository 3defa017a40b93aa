package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datajanitor/internal/admin"
	"datajanitor/internal/platform/storage"
)

func (a *app) initCommand() *cobra.Command {
	var creds admin.Credentials

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create auth tables and ensure a super_admin account exists",
		Long: `Create the auth database tables and converge the privileged-account
invariants: exactly canonical role casing, active flag set, identifier
present. Creates the account when credentials are supplied and none
exists; promotes a matching existing account otherwise. Safe to run any
number of times.

Credentials are resolved from flags, then ADMIN_USERNAME / ADMIN_EMAIL /
ADMIN_PASSWORD, then interactive prompts when a terminal is attached.
Running with no credentials still creates the tables and exits 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, creds)
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "admin username")
	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "admin email address")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "admin password (min 8 characters)")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, explicit admin.Credentials) error {
	ctx := cmd.Context()

	// Credential validation happens before any database write.
	creds, err := admin.ResolveCredentials(explicit, os.Getenv, admin.TerminalPrompter())
	if err != nil {
		a.metrics.RunsTotal.WithLabelValues("init", "validation_failure").Inc()
		return err
	}

	db, err := a.openDB(ctx, admin.DatabasePath(a.cfg.DataDir))
	if err != nil {
		a.metrics.RunsTotal.WithLabelValues("init", "connection_failure").Inc()
		return err
	}
	defer db.Close()

	if err := admin.EnsureSchema(ctx, db); err != nil {
		return err
	}
	a.log.Info().Str("data_dir", a.cfg.DataDir).Msg("database tables ready")

	// The whole pass runs in one transaction so a mid-run failure leaves
	// the users table untouched.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin admin bootstrap: %w", err)
	}
	txCtx := storage.WithTx(ctx, tx)

	svc := admin.NewService(admin.NewSQLStore(db),
		admin.WithLogger(a.log), admin.WithMetrics(a.metrics))
	result, err := svc.EnsureAdmin(txCtx, creds)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			a.log.Error().Err(rbErr).Msg("rollback failed")
		}
		a.metrics.RunsTotal.WithLabelValues("init", "failure").Inc()
		a.pushMetrics("datajanitor_init")
		return fmt.Errorf("ensure admin: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit admin bootstrap: %w", err)
	}

	a.metrics.RunsTotal.WithLabelValues("init", string(result.Outcome)).Inc()
	a.pushMetrics("datajanitor_init")

	ev := a.log.Info().Str("outcome", string(result.Outcome))
	if result.Username != "" {
		ev = ev.Str("username", result.Username)
	}
	if result.Swept > 0 {
		ev = ev.Int64("swept", result.Swept)
	}
	ev.Msg("auth database initialization complete")
	return nil
}
