// Command todos is a small todo list kept in a SQL database. It exercises
// the nibard statement builder and executor against SQLite, PostgreSQL and
// MySQL.
//
// Usage:
//
//	todos [flags] <command>
//
// The database is chosen by --dsn, the TODOS_DSN environment variable or the
// dsn key of todos.yaml, in that order, and defaults to
// sqlite:./todos.sqlite.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nibard/nibard/internal/cli"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(cli.ExitCode(os.Stderr, err))
}
