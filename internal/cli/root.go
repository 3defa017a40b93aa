// Package cli wires the maintenance commands. Heavy lifting lives in the
// internal service packages; commands only resolve configuration, open the
// right database, and render results.
package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"datajanitor/internal/platform/config"
	"datajanitor/internal/platform/logger"
	"datajanitor/internal/platform/metrics"
	"datajanitor/internal/platform/storage"
)

type app struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics

	// flag values
	dataDir     string
	dsn         string
	logLevel    string
	verbose     bool
	quiet       bool
	pushGateway string
}

// New builds the root command with all subcommands attached.
func New() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "datajanitor",
		Short:         "Maintenance tooling for the financial-data databases",
		Long:          "datajanitor bootstraps the auth database and reconciles content tables:\nit removes blank rows, collapses duplicate groups, and guarantees an active\nsuper_admin account exists.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A local .env is a convenience for operators; absence is fine.
			_ = godotenv.Load()

			a.cfg = config.FromEnv()
			if a.dataDir != "" {
				a.cfg.DataDir = a.dataDir
			}
			if a.dsn != "" {
				a.cfg.PostgresDSN = a.dsn
			}
			if a.pushGateway != "" {
				a.cfg.PushGateway = a.pushGateway
			}
			a.log = logger.New(a.logLevel, a.verbose, a.quiet)
			a.metrics = metrics.New()
		},
	}

	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default from DATA_DIR / JANITOR_DATA_DIR)")
	root.PersistentFlags().StringVar(&a.dsn, "dsn", "", "PostgreSQL DSN; when set, overrides the embedded SQLite backend")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "warnings and errors only")
	root.PersistentFlags().StringVar(&a.pushGateway, "push-gateway", "", "Pushgateway URL to push run metrics to")

	root.AddCommand(a.initCommand())
	root.AddCommand(a.cleanCommand())
	root.AddCommand(a.inspectCommand())
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := New().Execute(); err != nil {
		// Root logger may not be constructed if flag parsing failed, so
		// build a minimal one for the final message.
		log := logger.New("", false, false)
		log.Error().Err(err).Msg("run failed")
		return 1
	}
	return 0
}

// openDB opens the configured backend: PostgreSQL when a DSN is set,
// otherwise the embedded SQLite file at path.
func (a *app) openDB(ctx context.Context, path string) (*storage.DB, error) {
	cfg := storage.Config{Driver: storage.DriverSQLite, Path: path}
	if a.cfg.PostgresDSN != "" {
		cfg = storage.Config{Driver: storage.DriverPostgres, DSN: a.cfg.PostgresDSN}
	}
	return storage.Open(ctx, cfg)
}

// pushMetrics delivers run metrics when a gateway is configured. Failures
// are logged, never fatal; the maintenance work already happened.
func (a *app) pushMetrics(job string) {
	if err := a.metrics.Push(a.cfg.PushGateway, job); err != nil {
		a.log.Warn().Err(err).Msg("metrics push failed")
	}
}
