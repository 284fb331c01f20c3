// Package value provides the dialect-agnostic Value type used for bound
// statement parameters and decoded column values.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the active variant of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindSmallInt
	KindInt
	KindBigInt
	KindReal
	KindFloat
	KindText
	KindBinary
	KindDate
	KindDateTime
	KindJSON
)

var kindNames = [...]string{
	KindNull:     "Null",
	KindBool:     "Bool",
	KindSmallInt: "SmallInt",
	KindInt:      "Int",
	KindBigInt:   "BigInt",
	KindReal:     "Real",
	KindFloat:    "Float",
	KindText:     "Text",
	KindBinary:   "Binary",
	KindDate:     "Date",
	KindDateTime: "DateTime",
	KindJSON:     "Json",
}

// String returns the variant name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

func parseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Value is a tagged union over the SQL value variants. Exactly one variant is
// active. The zero Value is Null.
//
// Values are immutable: constructors copy byte slices in and accessors copy
// them out, so a Value can be shared freely.
type Value struct {
	kind Kind
	i    int64     // Bool, SmallInt, Int, BigInt
	f    float64   // Real, Float
	s    string    // Text
	b    []byte    // Binary, Json
	t    time.Time // Date, DateTime
}

// Null returns the Null value.
func Null() Value { return Value{} }

// Bool returns a Bool value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

// SmallInt returns a 16-bit integer value.
func SmallInt(i int16) Value { return Value{kind: KindSmallInt, i: int64(i)} }

// Int returns a 32-bit integer value.
func Int(i int32) Value { return Value{kind: KindInt, i: int64(i)} }

// BigInt returns a 64-bit integer value.
func BigInt(i int64) Value { return Value{kind: KindBigInt, i: i} }

// Real returns a 32-bit float value.
func Real(f float32) Value { return Value{kind: KindReal, f: float64(f)} }

// Float returns a 64-bit float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Binary returns a binary value holding a copy of b.
func Binary(b []byte) Value { return Value{kind: KindBinary, b: bytes.Clone(nonNil(b))} }

// Date returns a calendar date value. The clock part of t is dropped and the
// date is kept in UTC.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateTime returns a timestamp value.
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

// JSON returns a JSON document value holding a copy of raw. The document is
// not validated.
func JSON(raw json.RawMessage) Value { return Value{kind: KindJSON, b: bytes.Clone(nonNil(raw))} }

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindSmallInt, KindInt, KindBigInt:
		return v.i == o.i
	case KindReal, KindFloat:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	case KindBinary, KindJSON:
		return bytes.Equal(v.b, o.b)
	case KindDate, KindDateTime:
		return v.t.Equal(o.t)
	}
	return false
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	c := v
	if v.b != nil {
		c.b = bytes.Clone(v.b)
	}
	return c
}

// Any returns the payload as a plain Go value: nil, bool, int16, int32,
// int64, float32, float64, string, []byte, time.Time or json.RawMessage.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.i != 0
	case KindSmallInt:
		return int16(v.i)
	case KindInt:
		return int32(v.i)
	case KindBigInt:
		return v.i
	case KindReal:
		return float32(v.f)
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBinary:
		return bytes.Clone(v.b)
	case KindDate, KindDateTime:
		return v.t
	case KindJSON:
		return json.RawMessage(bytes.Clone(v.b))
	default:
		return nil
	}
}

// String returns a debug representation such as Int(1) or Text("a").
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "Null"
	case KindText:
		return fmt.Sprintf("Text(%q)", v.s)
	case KindBinary:
		return fmt.Sprintf("Binary(%x)", v.b)
	case KindJSON:
		return fmt.Sprintf("Json(%s)", v.b)
	case KindDate:
		return "Date(" + v.t.Format(time.DateOnly) + ")"
	case KindDateTime:
		return "DateTime(" + v.t.Format(time.RFC3339Nano) + ")"
	default:
		return fmt.Sprintf("%s(%v)", v.kind, v.Any())
	}
}
