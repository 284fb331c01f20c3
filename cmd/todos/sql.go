package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/dialect/sql"
	"github.com/nibard/nibard/internal/todo"
)

type sqlFlags struct {
	dialect  string
	quoteAll bool
}

func newSQLCmd(a *app) *cobra.Command {
	var f sqlFlags
	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the SQL a command would run",
		Long: `Print the statements a command would run, rendered for the dialect of the
configured database or the one given by --dialect. Nothing is sent to the
database.`,
		Example: `  # Show the DDL for PostgreSQL
  todos sql init --dialect postgres

  # Show a paged listing query for MySQL
  todos sql list --dialect mysql --offset 20`,
	}
	cmd.PersistentFlags().StringVar(&f.dialect, "dialect", "", "dialect to render for (sqlite|postgres|mysql); default from the dsn")
	cmd.PersistentFlags().BoolVar(&f.quoteAll, "quote-all", false, "quote every identifier")
	_ = cmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(dialect.All))
		for i, d := range dialect.All {
			names[i] = d.String()
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	render := func(cmd *cobra.Command, stmts ...sql.Statement) error {
		d := a.cfg.Dialect()
		if f.dialect != "" {
			var err error
			if d, err = dialect.Parse(f.dialect); err != nil {
				return err
			}
		}
		var opts []sql.Option
		if f.quoteAll {
			opts = append(opts, sql.QuoteAll())
		}
		return printStatements(cmd.OutOrStdout(), d, stmts, opts...)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Print the DDL run by init",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return render(cmd, todo.Statements()...)
			},
		},
		&cobra.Command{
			Use:   "add <label>",
			Short: "Print the INSERT run by add",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return render(cmd, todo.InsertStmt(args[0], time.Now().UTC().Truncate(time.Second)))
			},
		},
		&cobra.Command{
			Use:   "done <id>",
			Short: "Print the UPDATE run by done",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return render(cmd, todo.DoneStmt(id))
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Print the DELETE run by rm",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return render(cmd, todo.RemoveStmt(id))
			},
		},
	)

	var lf listFlags
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the SELECT run by list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return render(cmd, todo.ListStmt(todo.ListOptions{
				Limit:   lf.limit,
				Offset:  lf.offset,
				Pending: lf.pending,
				Search:  lf.search,
			}))
		},
	}
	listCmd.Flags().IntVar(&lf.limit, "limit", 0, "maximum number of todos to list")
	listCmd.Flags().IntVar(&lf.offset, "offset", 0, "number of todos to skip")
	listCmd.Flags().BoolVar(&lf.pending, "pending", false, "only list todos that are not done")
	listCmd.Flags().StringVar(&lf.search, "search", "", "only list todos whose label contains this text")
	cmd.AddCommand(listCmd)
	return cmd
}

// printStatements writes each statement terminated by a semicolon, followed
// by a comment listing its parameters when it has any.
func printStatements(w io.Writer, d dialect.Dialect, stmts []sql.Statement, opts ...sql.Option) error {
	for _, stmt := range stmts {
		query, params, err := sql.Build(d, stmt, opts...)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s;\n", query); err != nil {
			return err
		}
		if len(params) == 0 {
			continue
		}
		args := make([]string, len(params))
		for i, p := range params {
			args[i] = p.String()
		}
		if _, err := fmt.Fprintf(w, "-- params: %s\n", strings.Join(args, ", ")); err != nil {
			return err
		}
	}
	return nil
}
