// Package nibard holds the error taxonomy shared by the nibard SQL statement
// builder and its executor adapter.
//
// The builder itself lives in the dialect/sql package. A statement is
// composed from typed fragments and rendered for one dialect:
//
//	import (
//	    "github.com/nibard/nibard/dialect"
//	    "github.com/nibard/nibard/dialect/sql"
//	)
//
//	stmt := sql.Table("todos").
//	    Select(sql.Cols("id", "label")).
//	    Filter(sql.Col("id").EQ(1))
//
//	query, args, err := sql.Build(dialect.Postgres, stmt)
//	// SELECT id, label FROM todos WHERE id = $1  [BigInt(1)]
//
// # Errors
//
// Every error surfaced by the builder or executor is one of:
//
//   - *UnsupportedError: a statement variant that has no rendering
//   - *ConversionError: a Value could not be converted to a Go type
//   - *FormatError: the text sink failed while rendering
//   - ConstraintError, *QueryError, *NotFoundError: executor errors
//
// Use the IsXxx helpers to test for them through wrapping.
package nibard
