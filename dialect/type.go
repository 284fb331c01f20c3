package dialect

import "strconv"

// TypeKind enumerates the abstract column types.
type TypeKind uint8

// Abstract column type kinds.
const (
	KindChar TypeKind = iota + 1
	KindVarChar
	KindText
	KindSmallInt
	KindInt
	KindBigInt
	KindFloat
	KindReal
	KindBool
	KindBinary
	KindDate
	KindDateTime
	KindJSON
	KindAuto
)

// Type is a dialect-agnostic column type. Size carries the length of
// Char/VarChar and the precision of Float.
type Type struct {
	Kind TypeKind
	Size int
}

// Fixed-size column types.
var (
	Text     = Type{Kind: KindText}
	SmallInt = Type{Kind: KindSmallInt}
	Int      = Type{Kind: KindInt}
	BigInt   = Type{Kind: KindBigInt}
	Real     = Type{Kind: KindReal}
	Bool     = Type{Kind: KindBool}
	Binary   = Type{Kind: KindBinary}
	Date     = Type{Kind: KindDate}
	DateTime = Type{Kind: KindDateTime}
	JSON     = Type{Kind: KindJSON}
	// Auto is an auto-incrementing integer key.
	Auto = Type{Kind: KindAuto}
)

// Char returns a CHAR(n) type.
func Char(n int) Type { return Type{Kind: KindChar, Size: n} }

// VarChar returns a VARCHAR(n) type.
func VarChar(n int) Type { return Type{Kind: KindVarChar, Size: n} }

// Float returns a FLOAT(p) type.
func Float(p int) Type { return Type{Kind: KindFloat, Size: p} }

// IsAuto reports whether t is the auto-increment pseudo type.
func (t Type) IsAuto() bool { return t.Kind == KindAuto }

// ColumnType maps an abstract column type to the dialect's DDL keyword.
//
// Auto renders as SERIAL on Postgres and as the base INTEGER type elsewhere;
// the CREATE TABLE renderer adds the trailing AUTOINCREMENT keyword for
// SQLite. It returns the empty string for an unknown kind.
func (d Dialect) ColumnType(t Type) string {
	switch t.Kind {
	case KindAuto:
		if d == Postgres {
			return "SERIAL"
		}
		return "INTEGER"
	case KindChar:
		return "CHAR(" + strconv.Itoa(t.Size) + ")"
	case KindVarChar:
		return "VARCHAR(" + strconv.Itoa(t.Size) + ")"
	case KindText:
		return "TEXT"
	case KindSmallInt:
		return "SMALLINT"
	case KindInt:
		return "INTEGER"
	case KindBigInt:
		return "BIGINT"
	case KindFloat:
		return "FLOAT(" + strconv.Itoa(t.Size) + ")"
	case KindReal:
		return "REAL"
	case KindBool:
		return "BOOL"
	case KindBinary:
		if d == Postgres {
			return "BYTEA"
		}
		return "BLOB"
	case KindDate:
		return "DATE"
	case KindDateTime:
		return "TIMESTAMP"
	case KindJSON:
		return "JSON"
	default:
		return ""
	}
}
