package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/dialect/sql"
	"github.com/nibard/nibard/internal/cli"
	"github.com/nibard/nibard/internal/todo"
)

// app is the state shared by the commands of one invocation. It is set up
// by the root command's PersistentPreRunE.
type app struct {
	cfgFile string

	cfg        *cli.Config
	configPath string
	logger     *slog.Logger

	drv   *sql.Driver
	stats *sql.QueryStats
	store *todo.Store
}

// Command group IDs
const (
	groupTodo    = "todo"
	groupUtility = "utility"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "todos",
		Short: "A todo list kept in a SQL database",
		Long: `todos - a todo list kept in a SQL database

Every statement todos runs is rendered by the nibard statement builder for the
dialect of the configured database (SQLite, PostgreSQL or MySQL).`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			var err error
			a.cfg, a.configPath, err = cli.LoadConfig(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return cli.ConfigError("loading configuration", err)
			}
			a.logger = a.cfg.NewLogger(cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: auto-discover todos.yaml)")
	rootCmd.PersistentFlags().String("dsn", cli.DefaultDSN, "database connection string (sqlite:, postgres://, mysql://)")
	rootCmd.PersistentFlags().Bool("debug", false, "log every statement sent to the database")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupTodo, Title: "Todos:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)
	for _, cmd := range []*cobra.Command{
		newInitCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newDoneCmd(a),
		newRmCmd(a),
		newCountCmd(a),
	} {
		cmd.GroupID = groupTodo
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		newSQLCmd(a),
		newConfigCmd(a),
	} {
		cmd.GroupID = groupUtility
		rootCmd.AddCommand(cmd)
	}
	return rootCmd
}

// open connects to the configured database and returns the store. The
// driver is wrapped with the stats driver when stats are enabled and with
// the debug driver when debug is set.
func (a *app) open(ctx context.Context) (*todo.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	drv, err := sql.Open(a.cfg.DSN)
	if err != nil {
		return nil, cli.DBConnectError("opening database", err)
	}
	if err := drv.DB().PingContext(ctx); err != nil {
		_ = drv.Close()
		return nil, cli.DBConnectError("connecting to database", err)
	}
	a.drv = drv
	var r dialect.Driver = drv
	if a.cfg.Stats.Enabled {
		sd := sql.NewStatsDriver(r,
			sql.WithSlowThreshold(a.cfg.Stats.SlowThreshold),
			sql.WithSlowQueryLog(a.logger),
		)
		a.stats = sd.QueryStats()
		r = sd
	}
	if a.cfg.Debug {
		r = sql.NewDebugDriver(r, sql.DebugWithLogger(a.logger))
	}
	a.logger.Debug("database opened", "dialect", drv.Dialect())
	a.store = todo.NewStore(r)
	return a.store, nil
}

func (a *app) close(ctx context.Context) error {
	if a.drv == nil {
		return nil
	}
	if a.stats != nil {
		a.logger.InfoContext(ctx, "query stats", "stats", a.stats.Stats().String())
	}
	err := a.drv.Close()
	a.drv, a.store = nil, nil
	if err != nil {
		return cli.GeneralError("closing database", err)
	}
	return nil
}

// withStore opens the database for a command and closes it when run fails.
// On success the root command's PersistentPostRunE closes it.
func (a *app) withStore(run func(context.Context, *cobra.Command, *todo.Store, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := a.open(ctx)
		if err != nil {
			return err
		}
		if err := run(ctx, cmd, store, args); err != nil {
			return errors.Join(err, a.close(ctx))
		}
		return nil
	}
}
