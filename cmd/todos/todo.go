package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nibard/nibard/internal/todo"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the todos table",
		Long:  `Validate the schema and create the todos table and its indexes when they do not exist yet.`,
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, store *todo.Store, _ []string) error {
			if err := store.Init(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database initialized.")
			return nil
		}),
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <label>",
		Short: "Add a todo",
		Example: `  # Add a todo to the default SQLite database
  todos add "write the release notes"`,
		Args: cobra.ExactArgs(1),
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, store *todo.Store, args []string) error {
			t, err := store.Add(ctx, args[0])
			if err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "todo added", "id", t.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", t.ID, t.Label)
			return nil
		}),
	}
}

type listFlags struct {
	limit   int
	offset  int
	pending bool
	search  string
	output  string
}

func newListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Example: `  # List the first page of pending todos
  todos list --pending --limit 10

  # List todos as YAML
  todos list --output yaml`,
		Args: cobra.NoArgs,
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, store *todo.Store, _ []string) error {
			opts := todo.ListOptions{
				Limit:   f.limit,
				Offset:  f.offset,
				Pending: f.pending,
				Search:  f.search,
			}
			if !cmd.Flags().Changed("limit") {
				opts.Limit = a.cfg.List.Limit
			}
			todos, err := store.List(ctx, opts)
			if err != nil {
				return err
			}
			return writeTodos(cmd.OutOrStdout(), f.output, todos)
		}),
	}
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of todos to list (default from list.limit)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "number of todos to skip")
	cmd.Flags().BoolVar(&f.pending, "pending", false, "only list todos that are not done")
	cmd.Flags().StringVar(&f.search, "search", "", "only list todos whose label contains this text")
	cmd.Flags().StringVarP(&f.output, "output", "o", "text", "output format (text|yaml|json)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "yaml", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func writeTodos(w io.Writer, format string, todos []*todo.Todo) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(todos)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(todos); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		if len(todos) == 0 {
			_, err := fmt.Fprintln(w, "No todos.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDONE\tLABEL\tCREATED")
		for _, t := range todos {
			done := " "
			if t.Done {
				done = "x"
			}
			fmt.Fprintf(tw, "%d\t[%s]\t%s\t%s\n", t.ID, done, t.Label, t.Created.Format(time.DateTime))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo as done",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, store *todo.Store, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Complete(ctx, id); err != nil {
				return fmt.Errorf("todo #%d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed #%d\n", id)
			return nil
		}),
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a todo",
		Args:    cobra.ExactArgs(1),
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, store *todo.Store, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Remove(ctx, id); err != nil {
				return fmt.Errorf("todo #%d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed #%d\n", id)
			return nil
		}),
	}
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count todos",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, store *todo.Store, _ []string) error {
			total, done, err := store.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d todos, %d done, %d pending\n", total, done, total-done)
			return nil
		}),
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q", s)
	}
	return id, nil
}
