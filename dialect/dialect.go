package dialect

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Dialect is one of the SQL variants the builder renders for.
// The zero value is not a valid dialect.
type Dialect uint8

// Supported dialects.
const (
	SQLite Dialect = iota + 1
	Postgres
	MySQL
)

// All lists every supported dialect in declaration order.
var All = []Dialect{SQLite, Postgres, MySQL}

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	default:
		return "Dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	return d >= SQLite && d <= MySQL
}

// DriverName returns the name the dialect's database/sql driver registers
// under (modernc.org/sqlite, lib/pq and go-sql-driver/mysql respectively).
func (d Dialect) DriverName() string {
	return d.String()
}

// Placeholder returns the positional parameter marker for the n-th
// (1-based) bound value.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// QuoteChar returns the identifier quote character of the dialect.
func (d Dialect) QuoteChar() byte {
	if d == MySQL {
		return '`'
	}
	return '"'
}

// QuoteIdent wraps name in the dialect's identifier quotes. Quote characters
// inside name are doubled; nothing else is transformed.
func (d Dialect) QuoteIdent(name string) string {
	q := string(d.QuoteChar())
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("dialect: invalid dialect %d", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dialect) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Parse returns the dialect for a name such as "sqlite3" or "postgresql".
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	default:
		return 0, fmt.Errorf("dialect: unknown dialect %q", name)
	}
}

// FromDSN detects the dialect from the prefix of a connection string
// ("sqlite:", "postgres:", "postgresql:", "mysql:") and returns the data
// source name to hand to the dialect's database/sql driver.
//
// Postgres URLs are returned unchanged because lib/pq accepts them as is.
// SQLite and MySQL lose their scheme prefix.
func FromDSN(dsn string) (Dialect, string, error) {
	scheme, rest, ok := strings.Cut(dsn, ":")
	if !ok {
		return 0, "", fmt.Errorf("dialect: connection string %q has no scheme", dsn)
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return Postgres, dsn, nil
	case "sqlite", "sqlite3":
		return SQLite, strings.TrimPrefix(rest, "//"), nil
	case "mysql":
		return MySQL, strings.TrimPrefix(rest, "//"), nil
	default:
		return 0, "", fmt.Errorf("dialect: unknown connection string scheme %q", scheme)
	}
}

// ExecQuerier wraps the Exec and Query methods shared by drivers and
// transactions. args is a []any and v a *sql.Result or *sql.Rows
// destination, matching the executor in dialect/sql.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for
// executing rendered statements.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect statements must be rendered for.
	Dialect() Dialect
}

// Tx wraps the Exec and Query operations in a transaction.
type Tx interface {
	ExecQuerier
	Dialect() Dialect
	Commit() error
	Rollback() error
}
