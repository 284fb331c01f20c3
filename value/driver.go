package value

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nibard/nibard"
)

var (
	_ driver.Valuer = Value{}
	_ sql.Scanner   = (*Value)(nil)
)

// Value implements driver.Valuer so parameter lists can be passed to
// database/sql unchanged.
func (v Value) Value() (driver.Value, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.i != 0, nil
	case KindSmallInt, KindInt, KindBigInt:
		return v.i, nil
	case KindReal, KindFloat:
		return v.f, nil
	case KindText:
		return v.s, nil
	case KindBinary:
		return bytes.Clone(v.b), nil
	case KindJSON:
		return string(v.b), nil
	case KindDate, KindDateTime:
		return v.t, nil
	}
	return nil, nibard.NewUnsupportedError("value kind", v.kind.String())
}

// Scan implements sql.Scanner. The variant is chosen from the dynamic type
// of src; use FromDriver when the column's database type is known.
func (v *Value) Scan(src any) error {
	switch src := src.(type) {
	case nil:
		*v = Null()
	case int64:
		*v = BigInt(src)
	case float64:
		*v = Float(src)
	case bool:
		*v = Bool(src)
	case []byte:
		*v = Binary(src)
	case string:
		*v = Text(src)
	case time.Time:
		*v = DateTime(src)
	default:
		return nibard.NewConversionError(fmt.Sprintf("%T", src), "Value", nil)
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// FromDriver decodes a value produced by a database/sql driver for a column
// whose database type name (as reported by sql.ColumnType.DatabaseTypeName)
// is dbType. Drivers disagree on how they deliver integers, booleans and
// timestamps, so src is normalized according to dbType. Unknown type names
// fall back to Scan.
func FromDriver(src any, dbType string) (Value, error) {
	if src == nil {
		return Null(), nil
	}
	typ := strings.ToUpper(strings.TrimSpace(dbType))
	if i := strings.IndexByte(typ, '('); i > 0 {
		typ = typ[:i]
	}
	switch typ {
	case "SMALLINT", "INT2", "TINYINT":
		i, err := driverInt(src, typ)
		if err != nil {
			return Null(), err
		}
		if i < math.MinInt16 || i > math.MaxInt16 {
			return BigInt(i), nil
		}
		return SmallInt(int16(i)), nil
	case "INT", "INT4", "INTEGER", "MEDIUMINT", "SERIAL":
		i, err := driverInt(src, typ)
		if err != nil {
			return Null(), err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return BigInt(i), nil
		}
		return Int(int32(i)), nil
	case "BIGINT", "INT8", "BIGSERIAL", "UNSIGNED BIGINT":
		i, err := driverInt(src, typ)
		if err != nil {
			return Null(), err
		}
		return BigInt(i), nil
	case "FLOAT4":
		f, err := driverFloat(src, typ)
		if err != nil {
			return Null(), err
		}
		return Real(float32(f)), nil
	case "REAL", "FLOAT", "FLOAT8", "DOUBLE", "DOUBLE PRECISION", "NUMERIC", "DECIMAL":
		f, err := driverFloat(src, typ)
		if err != nil {
			return Null(), err
		}
		return Float(f), nil
	case "BOOL", "BOOLEAN":
		switch src := src.(type) {
		case bool:
			return Bool(src), nil
		default:
			i, err := driverInt(src, typ)
			if err != nil {
				return Null(), err
			}
			return Bool(i != 0), nil
		}
	case "TEXT", "VARCHAR", "CHAR", "BPCHAR", "NVARCHAR", "NCHAR", "CHARACTER", "CHARACTER VARYING",
		"TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "UUID", "CLOB":
		switch src := src.(type) {
		case string:
			return Text(src), nil
		case []byte:
			return Text(string(src)), nil
		}
	case "BLOB", "BYTEA", "BINARY", "VARBINARY", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB":
		switch src := src.(type) {
		case []byte:
			return Binary(src), nil
		case string:
			return Binary([]byte(src)), nil
		}
	case "JSON", "JSONB":
		switch src := src.(type) {
		case []byte:
			return JSON(src), nil
		case string:
			return JSON([]byte(src)), nil
		}
	case "DATE":
		t, err := driverTime(src, typ)
		if err != nil {
			return Null(), err
		}
		return Date(t), nil
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE":
		t, err := driverTime(src, typ)
		if err != nil {
			return Null(), err
		}
		return DateTime(t), nil
	}
	var v Value
	if err := v.Scan(src); err != nil {
		return Null(), err
	}
	return v, nil
}

func driverInt(src any, typ string) (int64, error) {
	switch src := src.(type) {
	case int64:
		return src, nil
	case bool:
		if src {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt(string(src), typ)
	case string:
		return parseInt(src, typ)
	}
	return 0, nibard.NewConversionError(fmt.Sprintf("%T", src), typ, nil)
}

func parseInt(s, typ string) (int64, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, nibard.NewConversionError("string", typ, err)
	}
	return i, nil
}

func driverFloat(src any, typ string) (float64, error) {
	var s string
	switch src := src.(type) {
	case float64:
		return src, nil
	case int64:
		return float64(src), nil
	case []byte:
		s = string(src)
	case string:
		s = src
	default:
		return 0, nibard.NewConversionError(fmt.Sprintf("%T", src), typ, nil)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, nibard.NewConversionError("string", typ, err)
	}
	return f, nil
}

func driverTime(src any, typ string) (time.Time, error) {
	var s string
	switch src := src.(type) {
	case time.Time:
		return src, nil
	case []byte:
		s = string(src)
	case string:
		s = src
	default:
		return time.Time{}, nibard.NewConversionError(fmt.Sprintf("%T", src), typ, nil)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, nibard.NewConversionError("string", typ, fmt.Errorf("unrecognized time %q", s))
}
