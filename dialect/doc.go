// Package dialect provides database dialect abstraction for nibard.
//
// This package defines the closed set of SQL dialects the statement builder
// renders for, together with the dialect-specific rules the builder needs:
// placeholder syntax, identifier quoting and column type names.
//
// # Supported Dialects
//
//   - SQLite: "?" placeholders, "double quoted" identifiers
//   - Postgres: "$1".."$N" placeholders, "double quoted" identifiers
//   - MySQL: "?" placeholders, `backtick quoted` identifiers
//
// # Column Types
//
// Abstract column types are mapped to DDL keywords by Dialect.ColumnType:
//
//	dialect.Postgres.ColumnType(dialect.Auto)       // SERIAL
//	dialect.SQLite.ColumnType(dialect.Auto)         // INTEGER
//	dialect.MySQL.ColumnType(dialect.VarChar(255))  // VARCHAR(255)
//
// # Connection Strings
//
// FromDSN detects the dialect from a connection string prefix and returns the
// data source name expected by the registered database/sql driver:
//
//	d, source, err := dialect.FromDSN("sqlite:./todos.sqlite")
//	// d == dialect.SQLite, source == "./todos.sqlite"
//
// # Driver Interface
//
// The package defines the Driver interface implemented by the executor in
// dialect/sql and by its decorators:
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() Dialect
//	}
package dialect
