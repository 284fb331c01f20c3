package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"slices"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/dialect/sql/sqlerr"
	"github.com/nibard/nibard/value"
)

// Driver is a dialect.Driver implementation for SQL based databases.
type Driver struct {
	Conn
}

// NewDriver creates a new Driver with the given Conn.
func NewDriver(c Conn) *Driver {
	return &Driver{Conn: c}
}

// Open detects the dialect from the prefix of dsn ("sqlite:", "postgres:",
// "mysql:") and opens a database/sql handle with the dialect's driver. The
// driver package must be imported by the program.
func Open(dsn string) (*Driver, error) {
	d, source, err := dialect.FromDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.DriverName(), source)
	if err != nil {
		return nil, err
	}
	return OpenDB(d, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(d dialect.Dialect, db *sql.DB) *Driver {
	return NewDriver(Conn{ExecQuerier: db, dialect: d})
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: begin: %w", err)
	}
	return &Tx{
		Conn: Conn{ExecQuerier: tx, dialect: d.dialect},
		Tx:   tx,
	}, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.DB().Close() }

// Tx implements the dialect.Tx interface.
type Tx struct {
	Conn
	driver.Tx
}

// ExecQuerier wraps the standard Exec and Query methods of *sql.DB,
// *sql.Tx and *sql.Conn.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn implements dialect.ExecQuerier given ExecQuerier. Driver errors are
// wrapped in *nibard.QueryError, and constraint violations are additionally
// reported as nibard.ConstraintError.
type Conn struct {
	ExecQuerier
	dialect dialect.Dialect
}

// Dialect returns the dialect statements must be rendered for.
func (c Conn) Dialect() dialect.Dialect { return c.dialect }

// Exec implements the dialect.Exec method. v is nil or a *sql.Result.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	argv, ok := args.([]any)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	switch v := v.(type) {
	case nil:
		if _, err := c.ExecContext(ctx, query, argv...); err != nil {
			return wrapError("exec", query, err)
		}
	case *sql.Result:
		res, err := c.ExecContext(ctx, query, argv...)
		if err != nil {
			return wrapError("exec", query, err)
		}
		*v = res
	default:
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result", v)
	}
	return nil
}

// Query implements the dialect.Query method. v must be a *Rows.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	vr, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows", v)
	}
	argv, ok := args.([]any)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	rows, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return wrapError("query", query, err)
	}
	*vr = Rows{ColumnScanner: rows, query: query}
	return nil
}

func wrapError(op, query string, err error) error {
	qerr := nibard.NewQueryError(op, query, err)
	if sqlerr.IsConstraintError(err) {
		return nibard.NewConstraintError(err.Error(), qerr)
	}
	return qerr
}

var (
	_ dialect.Driver = (*Driver)(nil)
	_ dialect.Tx     = (*Tx)(nil)
)

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}

// Rows wraps the sql.Rows to avoid locks copy and decodes rows into
// values.
type Rows struct {
	ColumnScanner
	query   string
	columns []string
	types   []string
}

// Err returns the error that ended the iteration, wrapped like the errors
// of Conn.Query. Drivers that execute lazily report constraint violations
// here.
func (r *Rows) Err() error {
	if err := r.ColumnScanner.Err(); err != nil {
		return wrapError("query", r.query, err)
	}
	return nil
}

// Row returns the current row. Call it after Next reported true.
func (r *Rows) Row() (Row, error) {
	if r.columns == nil {
		if err := r.describe(); err != nil {
			return Row{}, err
		}
	}
	src := make([]any, len(r.columns))
	dest := make([]any, len(r.columns))
	for i := range src {
		dest[i] = &src[i]
	}
	if err := r.Scan(dest...); err != nil {
		return Row{}, fmt.Errorf("dialect/sql: scan: %w", err)
	}
	values := make([]value.Value, len(src))
	for i, s := range src {
		v, err := value.FromDriver(s, r.types[i])
		if err != nil {
			return Row{}, fmt.Errorf("dialect/sql: column %q: %w", r.columns[i], err)
		}
		values[i] = v
	}
	return Row{columns: r.columns, values: values}, nil
}

func (r *Rows) describe() error {
	columns, err := r.Columns()
	if err != nil {
		return fmt.Errorf("dialect/sql: columns: %w", err)
	}
	types := make([]string, len(columns))
	if cts, err := r.ColumnTypes(); err == nil && len(cts) == len(columns) {
		for i, ct := range cts {
			types[i] = ct.DatabaseTypeName()
		}
	}
	r.columns, r.types = columns, types
	return nil
}

// All reads the remaining rows and closes r.
func (r *Rows) All() (rows []Row, err error) {
	defer func() { err = errors.Join(err, r.Close()) }()
	for r.Next() {
		row, err := r.Row()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, r.Err()
}

// ErrUnknownColumn is returned by Row.TryGet for a column the row does not
// have.
var ErrUnknownColumn = errors.New("dialect/sql: unknown column")

// Row is one decoded result row. It owns its column names and values.
type Row struct {
	columns []string
	values  []value.Value
}

// NewRow returns a row of the given columns and values, which must have the
// same length.
func NewRow(columns []string, values []value.Value) Row {
	return Row{columns: slices.Clone(columns), values: slices.Clone(values)}
}

// Columns returns the column names in result order.
func (r Row) Columns() []string { return slices.Clone(r.columns) }

// Values returns the values in result order.
func (r Row) Values() []value.Value { return slices.Clone(r.values) }

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// TryGet returns the value of the named column.
func (r Row) TryGet(name string) (value.Value, error) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], nil
		}
	}
	return value.Null(), fmt.Errorf("%w %q", ErrUnknownColumn, name)
}

// Get returns the value of the named column, or Null when it is missing.
func (r Row) Get(name string) value.Value {
	v, _ := r.TryGet(name)
	return v
}

// Map returns the row as a column name to value map.
func (r Row) Map() map[string]value.Value {
	m := make(map[string]value.Value, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// Runner executes rendered statements. *Driver, *Tx and the decorators in
// this package implement it.
type Runner interface {
	dialect.ExecQuerier
	Dialect() dialect.Dialect
}

// Exec renders stmt for the runner's dialect and executes it.
func Exec(ctx context.Context, r Runner, stmt Statement) (Result, error) {
	query, params, err := Build(r.Dialect(), stmt)
	if err != nil {
		return nil, err
	}
	var res Result
	if err := r.Exec(ctx, query, Args(params), &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Query renders stmt for the runner's dialect and runs it. The caller must
// close the returned rows.
func Query(ctx context.Context, r Runner, stmt Statement) (*Rows, error) {
	query, params, err := Build(r.Dialect(), stmt)
	if err != nil {
		return nil, err
	}
	rows := &Rows{}
	if err := r.Query(ctx, query, Args(params), rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryAll is like Query but reads every row.
func QueryAll(ctx context.Context, r Runner, stmt Statement) ([]Row, error) {
	rows, err := Query(ctx, r, stmt)
	if err != nil {
		return nil, err
	}
	return rows.All()
}

// QueryRow runs stmt and returns its first row. It returns a
// *nibard.NotFoundError when the result is empty.
func QueryRow(ctx context.Context, r Runner, stmt Statement) (row Row, err error) {
	rows, err := Query(ctx, r, stmt)
	if err != nil {
		return Row{}, err
	}
	defer func() { err = errors.Join(err, rows.Close()) }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Row{}, err
		}
		return Row{}, nibard.NewNotFoundError(tableOf(stmt))
	}
	return rows.Row()
}

// tableOf returns the table a statement reads from, when it is a plain
// table name.
func tableOf(stmt Statement) string {
	s, ok := stmt.(Select)
	if !ok {
		return ""
	}
	var p selectParts
	s.collect(&p)
	if t, ok := p.target.(TableName); ok {
		return string(t)
	}
	return ""
}
