// Package cli implements the dbframe command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/koustreak/dbframe/internal/config"
	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/filestore"
	"github.com/koustreak/dbframe/internal/filestore/minio"
	"github.com/koustreak/dbframe/internal/logger"
	"github.com/koustreak/dbframe/internal/objects"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		a.report(err, os.Stderr)
		return 1
	}
	return 0
}

// report logs a failed command once. Before settings are loaded (bad
// flags or config) there is no logger, so the error goes to stderr as is.
func (a *app) report(err error, stderr io.Writer) {
	if a.log == nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return
	}
	a.log.ErrorWith("command failed", err, map[string]any{
		"kind": errs.KindOf(err).String(),
	})
}

// app carries the resolved settings shared by every subcommand.
type app struct {
	configPath string
	dsn        string
	driver     string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dbframe",
		Short:         "Manage schemas and tables as objects",
		Long:          "Create, inspect, rename, load and drop schemas and tables on PostgreSQL, MySQL and DuckDB.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Flags(), cmd.ErrOrStderr())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&a.dsn, "dsn", "", "Connection string (overrides config and DBFRAME_DSN)")
	pf.StringVar(&a.driver, "driver", "", "Database driver: postgres, mysql or duckdb")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newSchemasCmd(a))
	rootCmd.AddCommand(newSchemaCmd(a))
	rootCmd.AddCommand(newTablesCmd(a))
	rootCmd.AddCommand(newDescribeCmd(a))
	rootCmd.AddCommand(newSelectCmd(a))
	rootCmd.AddCommand(newTableCmd(a))
	rootCmd.AddCommand(newColumnsCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newExportCmd(a))

	return rootCmd
}

// load resolves settings with precedence flag > env > file > default.
func (a *app) load(flags *pflag.FlagSet, stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if flags.Changed("dsn") {
		cfg.Database.DSN = a.dsn
	}
	if flags.Changed("driver") {
		cfg.Database.Driver = database.Driver(a.driver)
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	cfg.Log.Output = stderr

	a.cfg = cfg
	a.log = logger.New(&cfg.Log)
	return nil
}

// withDB opens the configured database for the duration of fn.
func (a *app) withDB(cmd *cobra.Command, fn func(ctx context.Context, db *objects.Database) error) error {
	ctx := a.log.WithContext(cmd.Context())
	db, err := objects.Connect(ctx, &a.cfg.Database, a.log)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func (a *app) openStore(ctx context.Context) (filestore.Store, error) {
	if !a.cfg.FileStore.Enabled() {
		return nil, errs.New(errs.ErrKindInvalidInput, "object storage is not configured (filestore.endpoint or DBFRAME_S3_ENDPOINT)")
	}
	return minio.New(ctx, &a.cfg.FileStore)
}

func (a *app) table(ctx context.Context, db *objects.Database, schema, table string) (*objects.Table, error) {
	s, err := db.Schema(ctx, schema)
	if err != nil {
		return nil, err
	}
	return s.Table(ctx, table)
}
