// Package sqlerr classifies database driver errors into constraint
// violations, independently of the driver that produced them.
package sqlerr

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nibard/nibard"
)

// Kind is the kind of a constraint violation.
type Kind uint8

// Constraint violation kinds.
const (
	None Kind = iota
	Unique
	ForeignKey
	Check
	NotNull
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case ForeignKey:
		return "foreign key"
	case Check:
		return "check"
	case NotNull:
		return "not null"
	default:
		return "none"
	}
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlNotNull                = 1048
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// sqlStateError is implemented by drivers exposing SQLSTATE codes, such as
// pgx.
type sqlStateError interface {
	SQLState() string
}

// Classify returns the kind of constraint violation err reports, or None.
// The typed errors of lib/pq, go-sql-driver/mysql and modernc.org/sqlite
// are inspected first; other drivers are matched by SQLSTATE or, as a last
// resort, by their message.
func Classify(err error) Kind {
	if err == nil {
		return None
	}
	if e, ok := asError[*pq.Error](err); ok {
		return fromSQLState(string(e.Code))
	}
	if e, ok := asError[*mysql.MySQLError](err); ok {
		return fromMySQL(e.Number)
	}
	if e, ok := asError[*sqlite.Error](err); ok {
		if k := fromSQLite(e.Code()); k != None {
			return k
		}
	}
	if e, ok := asError[sqlStateError](err); ok {
		if k := fromSQLState(e.SQLState()); k != None {
			return k
		}
	}
	return fromMessage(err.Error())
}

func fromSQLState(code string) Kind {
	switch code {
	case pgUniqueViolation:
		return Unique
	case pgForeignKeyViolation:
		return ForeignKey
	case pgCheckViolation:
		return Check
	case pgNotNullViolation:
		return NotNull
	}
	return None
}

func fromMySQL(n uint16) Kind {
	switch n {
	case mysqlDuplicateEntry:
		return Unique
	case mysqlForeignKeyParent, mysqlForeignKeyChild:
		return ForeignKey
	case mysqlCheckConstraintViolate:
		return Check
	case mysqlNotNull:
		return NotNull
	}
	return None
}

func fromSQLite(code int) Kind {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return Unique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ForeignKey
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return Check
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return NotNull
	}
	return None
}

func fromMessage(msg string) Kind {
	switch {
	case containsAny(msg, "Error 1062", "violates unique constraint", "UNIQUE constraint failed"):
		return Unique
	case containsAny(msg, "Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"):
		return ForeignKey
	case containsAny(msg, "Error 3819", "violates check constraint", "CHECK constraint failed"):
		return Check
	case containsAny(msg, "Error 1048", "violates not-null constraint", "NOT NULL constraint failed"):
		return NotNull
	}
	return None
}

// IsConstraintError returns true if the error resulted from a database
// constraint violation, or is a nibard.ConstraintError.
func IsConstraintError(err error) bool {
	return nibard.IsConstraintError(err) || Classify(err) != None
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness
// constraint violation, e.g. a duplicate value in a unique index.
func IsUniqueConstraintError(err error) bool { return Classify(err) == Unique }

// IsForeignKeyConstraintError reports if the error resulted from a database
// foreign-key constraint violation, e.g. a missing parent row.
func IsForeignKeyConstraintError(err error) bool { return Classify(err) == ForeignKey }

// IsCheckConstraintError reports if the error resulted from a database check
// constraint violation.
func IsCheckConstraintError(err error) bool { return Classify(err) == Check }

// IsNotNullConstraintError reports if the error resulted from writing NULL
// into a NOT NULL column.
func IsNotNullConstraintError(err error) bool { return Classify(err) == NotNull }

// asError attempts to extract an error of type T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
