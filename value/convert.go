package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/nibard/nibard"
)

var errOverflow = errors.New("value out of range")

// From converts a Go value into a Value. Supported inputs are the integer
// and float types, string, []byte, bool, time.Time, json.RawMessage,
// uuid.UUID, Value, nil and pointers to any of those. A nil pointer
// converts to Null. Any other type returns a *nibard.ConversionError.
//
// Integers keep their width: int32 converts to Int, while int and int64
// convert to BigInt because int is 64 bits wide on the supported platforms.
// Pass an int32 where an Int parameter is wanted, as in Col("id").EQ(int32(1)).
func From(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case *Value:
		if x == nil {
			return Null(), nil
		}
		return *x, nil
	case bool:
		return Bool(x), nil
	case int8:
		return SmallInt(int16(x)), nil
	case uint8:
		return SmallInt(int16(x)), nil
	case int16:
		return SmallInt(x), nil
	case uint16:
		return Int(int32(x)), nil
	case int32:
		return Int(x), nil
	case uint32:
		return BigInt(int64(x)), nil
	case int:
		return BigInt(int64(x)), nil
	case int64:
		return BigInt(x), nil
	case uint:
		return fromUint(uint64(x), "uint")
	case uint64:
		return fromUint(x, "uint64")
	case float32:
		return Real(x), nil
	case float64:
		return Float(x), nil
	case string:
		return Text(x), nil
	case json.RawMessage:
		return JSON(x), nil
	case []byte:
		return Binary(x), nil
	case time.Time:
		return DateTime(x), nil
	case uuid.UUID:
		return Text(x.String()), nil
	}
	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Null(), nil
		}
		return From(rv.Elem().Interface())
	}
	return Null(), nibard.NewConversionError(fmt.Sprintf("%T", x), "Value", nil)
}

func fromUint(u uint64, typ string) (Value, error) {
	if u > math.MaxInt64 {
		return Null(), nibard.NewConversionError(typ, KindBigInt.String(), errOverflow)
	}
	return BigInt(int64(u)), nil
}

// MustFrom is like From but panics if x cannot be converted. It is meant for
// literals in tests and examples.
func MustFrom(x any) Value {
	v, err := From(x)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) mismatch(to string) error {
	return nibard.NewConversionError(v.kind.String(), to, nil)
}

func (v Value) overflow(to string) error {
	return nibard.NewConversionError(v.kind.String(), to, errOverflow)
}

func (v Value) isInteger() bool {
	return v.kind == KindSmallInt || v.kind == KindInt || v.kind == KindBigInt
}

// Int16 returns the value as an int16. Int and BigInt values convert only
// when they fit.
func (v Value) Int16() (int16, error) {
	if !v.isInteger() {
		return 0, v.mismatch("int16")
	}
	if v.i < math.MinInt16 || v.i > math.MaxInt16 {
		return 0, v.overflow("int16")
	}
	return int16(v.i), nil
}

// Int32 returns the value as an int32. BigInt values convert only when they
// fit.
func (v Value) Int32() (int32, error) {
	if !v.isInteger() {
		return 0, v.mismatch("int32")
	}
	if v.i < math.MinInt32 || v.i > math.MaxInt32 {
		return 0, v.overflow("int32")
	}
	return int32(v.i), nil
}

// Int64 returns any integer variant as an int64.
func (v Value) Int64() (int64, error) {
	if !v.isInteger() {
		return 0, v.mismatch("int64")
	}
	return v.i, nil
}

// Float32 returns the value as a float32. Float and integer values convert
// only when they are exactly representable.
func (v Value) Float32() (float32, error) {
	switch v.kind {
	case KindReal:
		return float32(v.f), nil
	case KindFloat:
		if f := float32(v.f); float64(f) == v.f || math.IsNaN(v.f) {
			return f, nil
		}
		return 0, v.overflow("float32")
	case KindSmallInt, KindInt, KindBigInt:
		if f := float32(v.i); int64(f) == v.i {
			return f, nil
		}
		return 0, v.overflow("float32")
	}
	return 0, v.mismatch("float32")
}

// Float64 returns the value as a float64. BigInt values convert only when
// they are exactly representable.
func (v Value) Float64() (float64, error) {
	switch v.kind {
	case KindReal, KindFloat:
		return v.f, nil
	case KindSmallInt, KindInt:
		return float64(v.i), nil
	case KindBigInt:
		if f := float64(v.i); f >= -(1<<53) && f <= 1<<53 {
			return f, nil
		}
		return 0, v.overflow("float64")
	}
	return 0, v.mismatch("float64")
}

// Text returns the string held by a Text value.
func (v Value) Text() (string, error) {
	if v.kind != KindText {
		return "", v.mismatch("string")
	}
	return v.s, nil
}

// Bytes returns a copy of the bytes held by a Binary or Json value.
func (v Value) Bytes() ([]byte, error) {
	if v.kind != KindBinary && v.kind != KindJSON {
		return nil, v.mismatch("[]byte")
	}
	return bytes.Clone(v.b), nil
}

// Bool returns the value of a Bool.
func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch("bool")
	}
	return v.i != 0, nil
}

// Time returns the time held by a Date or DateTime value.
func (v Value) Time() (time.Time, error) {
	if v.kind != KindDate && v.kind != KindDateTime {
		return time.Time{}, v.mismatch("time.Time")
	}
	return v.t, nil
}

// RawJSON returns a copy of the document held by a Json value.
func (v Value) RawJSON() (json.RawMessage, error) {
	if v.kind != KindJSON {
		return nil, v.mismatch("json.RawMessage")
	}
	return bytes.Clone(v.b), nil
}

// UUID parses a Text or 16-byte Binary value as a UUID.
func (v Value) UUID() (uuid.UUID, error) {
	switch v.kind {
	case KindText:
		id, err := uuid.Parse(v.s)
		if err != nil {
			return uuid.Nil, nibard.NewConversionError(v.kind.String(), "uuid.UUID", err)
		}
		return id, nil
	case KindBinary:
		id, err := uuid.FromBytes(v.b)
		if err != nil {
			return uuid.Nil, nibard.NewConversionError(v.kind.String(), "uuid.UUID", err)
		}
		return id, nil
	}
	return uuid.Nil, v.mismatch("uuid.UUID")
}
