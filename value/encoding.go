package value

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// jsonValue is the adjacently tagged wire form of a Value:
//
//	{"type":"Int","value":1}
//	{"type":"Null"}
type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Type: v.kind.String()}
	var (
		payload any
		err     error
	)
	switch v.kind {
	case KindNull:
		return json.Marshal(out)
	case KindJSON:
		// An empty document omits "value", so it stays distinct from a JSON null.
		out.Value = v.b
		return json.Marshal(out)
	case KindDate:
		payload = v.t.Format(time.DateOnly)
	default:
		payload = v.Any()
	}
	if out.Value, err = json.Marshal(payload); err != nil {
		return nil, fmt.Errorf("value: marshal %s: %w", v.kind, err)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in jsonValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	kind, ok := parseKind(in.Type)
	if !ok {
		return fmt.Errorf("value: unknown type %q", in.Type)
	}
	if kind == KindNull {
		*v = Null()
		return nil
	}
	if kind == KindJSON {
		*v = JSON(in.Value)
		return nil
	}
	if len(in.Value) == 0 {
		return fmt.Errorf("value: missing payload for %s", kind)
	}
	var err error
	switch kind {
	case KindBool:
		var b bool
		err = json.Unmarshal(in.Value, &b)
		*v = Bool(b)
	case KindSmallInt:
		var i int16
		err = json.Unmarshal(in.Value, &i)
		*v = SmallInt(i)
	case KindInt:
		var i int32
		err = json.Unmarshal(in.Value, &i)
		*v = Int(i)
	case KindBigInt:
		var i int64
		err = json.Unmarshal(in.Value, &i)
		*v = BigInt(i)
	case KindReal:
		var f float32
		err = json.Unmarshal(in.Value, &f)
		*v = Real(f)
	case KindFloat:
		var f float64
		err = json.Unmarshal(in.Value, &f)
		*v = Float(f)
	case KindText:
		var s string
		err = json.Unmarshal(in.Value, &s)
		*v = Text(s)
	case KindBinary:
		var b []byte
		err = json.Unmarshal(in.Value, &b)
		*v = Binary(b)
	case KindDate:
		var s string
		if err = json.Unmarshal(in.Value, &s); err == nil {
			var t time.Time
			t, err = time.Parse(time.DateOnly, s)
			*v = Date(t)
		}
	case KindDateTime:
		var t time.Time
		err = json.Unmarshal(in.Value, &t)
		*v = DateTime(t)
	}
	if err != nil {
		return fmt.Errorf("value: unmarshal %s: %w", kind, err)
	}
	return nil
}

var (
	_ msgpack.CustomEncoder = Value{}
	_ msgpack.CustomDecoder = (*Value)(nil)
)

// EncodeMsgpack implements msgpack.CustomEncoder. A Value is written as a
// two element array of the variant name and its payload.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString(v.kind.String()); err != nil {
		return err
	}
	switch v.kind {
	case KindNull:
		return enc.EncodeNil()
	case KindBool:
		return enc.EncodeBool(v.i != 0)
	case KindSmallInt:
		return enc.EncodeInt16(int16(v.i))
	case KindInt:
		return enc.EncodeInt32(int32(v.i))
	case KindBigInt:
		return enc.EncodeInt64(v.i)
	case KindReal:
		return enc.EncodeFloat32(float32(v.f))
	case KindFloat:
		return enc.EncodeFloat64(v.f)
	case KindText:
		return enc.EncodeString(v.s)
	case KindBinary, KindJSON:
		return enc.EncodeBytes(v.b)
	case KindDate, KindDateTime:
		return enc.EncodeTime(v.t)
	}
	return fmt.Errorf("value: encode unknown kind %s", v.kind)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("value: msgpack array of %d elements, want 2", n)
	}
	name, err := dec.DecodeString()
	if err != nil {
		return err
	}
	kind, ok := parseKind(name)
	if !ok {
		return fmt.Errorf("value: unknown type %q", name)
	}
	switch kind {
	case KindNull:
		err = dec.DecodeNil()
		*v = Null()
	case KindBool:
		var b bool
		b, err = dec.DecodeBool()
		*v = Bool(b)
	case KindSmallInt:
		var i int16
		i, err = dec.DecodeInt16()
		*v = SmallInt(i)
	case KindInt:
		var i int32
		i, err = dec.DecodeInt32()
		*v = Int(i)
	case KindBigInt:
		var i int64
		i, err = dec.DecodeInt64()
		*v = BigInt(i)
	case KindReal:
		var f float32
		f, err = dec.DecodeFloat32()
		*v = Real(f)
	case KindFloat:
		var f float64
		f, err = dec.DecodeFloat64()
		*v = Float(f)
	case KindText:
		var s string
		s, err = dec.DecodeString()
		*v = Text(s)
	case KindBinary, KindJSON:
		var b []byte
		b, err = dec.DecodeBytes()
		if kind == KindBinary {
			*v = Binary(b)
		} else {
			*v = JSON(b)
		}
	case KindDate, KindDateTime:
		var t time.Time
		t, err = dec.DecodeTime()
		if kind == KindDate {
			*v = Date(t.UTC())
		} else {
			*v = DateTime(t)
		}
	}
	return err
}
