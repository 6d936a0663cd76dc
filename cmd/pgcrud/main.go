package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yuku/pgcrud"
	"github.com/yuku/pgcrud/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds the global flags and how commands reach the database.
type app struct {
	envFile    string
	verbosity  int
	logFile    string
	logQueries bool
	typedValues bool

	open func(ctx context.Context, a *app) (store, error)
}

// store is the subset of *pgcrud.Manager the commands use.
type store interface {
	CreateTable(ctx context.Context, table string, columns []pgcrud.Column) error
	Create(ctx context.Context, table string, fields pgcrud.Fields) (*pgcrud.Row, error)
	Get(ctx context.Context, table string, id any, opts ...pgcrud.RowOption) (*pgcrud.Row, error)
	List(ctx context.Context, table string, opts pgcrud.ListOptions) ([]*pgcrud.Row, error)
	Update(ctx context.Context, table string, id any, fields pgcrud.Fields, opts ...pgcrud.RowOption) (*pgcrud.Row, error)
	Delete(ctx context.Context, table string, id any, opts ...pgcrud.RowOption) (bool, error)
	Count(ctx context.Context, table string, conditions pgcrud.Fields) (int64, error)
	Execute(ctx context.Context, query string, fetch bool, params ...any) ([]*pgcrud.Row, error)
	Ping(ctx context.Context) error
	Stats() pgcrud.PoolStats
	Config() pgcrud.Config
	Close()
}

func openManager(ctx context.Context, a *app) (store, error) {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	cfg, err := pgcrud.LoadConfig(envFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var opts []pgcrud.Option
	if a.logQueries {
		opts = append(opts, pgcrud.WithQueryLogLevel(zerolog.InfoLevel))
	}
	m, err := pgcrud.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// withStore opens a store for the duration of fn.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s store) error) error {
	ctx := cmd.Context()
	s, err := a.open(ctx, a)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pgcrud",
		Short: "pgcrud - generic CRUD operations on PostgreSQL tables",
		Long: `pgcrud runs create, read, update and delete operations against any
PostgreSQL table through a bounded connection pool.

Connection settings come from DB_HOST, DB_PORT, DB_NAME, DB_USER,
DB_PASSWORD, DB_MIN_CONNECTIONS and DB_MAX_CONNECTIONS, optionally read
from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Apply(a.verbosity, a.logFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "Environment file to load (default: .env when present)")
	flags.CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	flags.StringVar(&a.logFile, "log-file", "", "Also write logs to this file, rotated by size")
	flags.BoolVar(&a.logQueries, "log-queries", false, "Log every SQL statement")
	flags.BoolVar(&a.typedValues, "typed", false, "Bind integers, floats and true/false as typed values instead of text")

	rootCmd.AddCommand(
		newCreateTableCmd(a),
		newCreateCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newCountCmd(a),
		newExecCmd(a),
		newInfoCmd(a),
		newDemoCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "pgcrud %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(&app{open: openManager}).ExecuteContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg(errorMessage(err))
		stop()
		os.Exit(1)
	}
}

// errorMessage returns a plain description of err for the common
// constraint violations.
func errorMessage(err error) string {
	switch {
	case pgcrud.IsUniqueViolation(err):
		return "A row with the same unique value already exists"
	case pgcrud.IsForeignKeyViolation(err):
		return "The row references a row that does not exist"
	case pgcrud.IsNotNullViolation(err):
		return "A required column was not given a value"
	case pgcrud.IsCheckViolation(err):
		return "A value failed a check constraint"
	case errors.Is(err, errNotFound):
		return "Row not found"
	default:
		return "Command failed"
	}
}
