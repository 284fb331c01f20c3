package value

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nibard/nibard"
)

func TestFrom(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	label := "hello"
	var nilPtr *int
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"int16", int16(7), SmallInt(7)},
		{"int32", int32(7), Int(7)},
		{"int", 7, BigInt(7)},
		{"int64", int64(7), BigInt(7)},
		{"float32", float32(1.5), Real(1.5)},
		{"float64", 1.5, Float(1.5)},
		{"string", "a", Text("a")},
		{"bytes", []byte{1, 2}, Binary([]byte{1, 2})},
		{"bool", true, Bool(true)},
		{"time", now, DateTime(now)},
		{"json", json.RawMessage(`{"a":1}`), JSON(json.RawMessage(`{"a":1}`))},
		{"uuid", id, Text(id.String())},
		{"value", Int(3), Int(3)},
		{"pointer", &label, Text("hello")},
		{"nil pointer", nilPtr, Null()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := From(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		_, err := From(struct{}{})
		require.Error(t, err)
		assert.True(t, nibard.IsConversionError(err))
	})

	t.Run("uint64 overflow", func(t *testing.T) {
		_, err := From(uint64(math.MaxUint64))
		require.Error(t, err)
		assert.True(t, nibard.IsConversionError(err))
	})

	t.Run("MustFrom panics", func(t *testing.T) {
		assert.Panics(t, func() { MustFrom(make(chan int)) })
		assert.Equal(t, KindBigInt, MustFrom(1).Kind())
	})
}

func TestNarrowing(t *testing.T) {
	t.Run("Int16", func(t *testing.T) {
		i, err := BigInt(100).Int16()
		require.NoError(t, err)
		assert.Equal(t, int16(100), i)

		_, err = BigInt(math.MaxInt16 + 1).Int16()
		require.Error(t, err)
		assert.True(t, nibard.IsConversionError(err))
	})

	t.Run("Int32", func(t *testing.T) {
		i, err := SmallInt(-5).Int32()
		require.NoError(t, err)
		assert.Equal(t, int32(-5), i)

		_, err = BigInt(math.MaxInt32 + 1).Int32()
		require.Error(t, err)
	})

	t.Run("Text to int32 fails", func(t *testing.T) {
		_, err := Text("12").Int32()
		require.Error(t, err)
		assert.EqualError(t, err, "nibard: cannot convert Text to int32")
	})

	t.Run("Int64 widens", func(t *testing.T) {
		i, err := Int(42).Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(42), i)
	})

	t.Run("Float32", func(t *testing.T) {
		f, err := Float(0.5).Float32()
		require.NoError(t, err)
		assert.Equal(t, float32(0.5), f)

		_, err = Float(0.1).Float32()
		require.Error(t, err)
	})

	t.Run("Float64", func(t *testing.T) {
		f, err := Real(0.25).Float64()
		require.NoError(t, err)
		assert.Equal(t, 0.25, f)

		f, err = Int(3).Float64()
		require.NoError(t, err)
		assert.Equal(t, 3.0, f)

		_, err = BigInt(1<<60 + 1).Float64()
		require.Error(t, err)
		_, err = Text("x").Float64()
		require.Error(t, err)
	})

	t.Run("Text", func(t *testing.T) {
		s, err := Text("x").Text()
		require.NoError(t, err)
		assert.Equal(t, "x", s)
		_, err = Int(1).Text()
		require.Error(t, err)
	})

	t.Run("Bytes", func(t *testing.T) {
		src := []byte{1, 2, 3}
		v := Binary(src)
		src[0] = 9
		b, err := v.Bytes()
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, b)
		b[1] = 9
		b2, _ := v.Bytes()
		assert.Equal(t, []byte{1, 2, 3}, b2)
	})

	t.Run("Bool", func(t *testing.T) {
		b, err := Bool(true).Bool()
		require.NoError(t, err)
		assert.True(t, b)
		_, err = Int(1).Bool()
		require.Error(t, err)
	})

	t.Run("Time", func(t *testing.T) {
		at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
		got, err := DateTime(at).Time()
		require.NoError(t, err)
		assert.True(t, at.Equal(got))

		got, err = Date(at).Time()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), got)

		_, err = Null().Time()
		require.Error(t, err)
	})

	t.Run("RawJSON", func(t *testing.T) {
		raw, err := JSON(json.RawMessage(`[1]`)).RawJSON()
		require.NoError(t, err)
		assert.JSONEq(t, `[1]`, string(raw))
		_, err = Text("[1]").RawJSON()
		require.Error(t, err)
	})

	t.Run("UUID", func(t *testing.T) {
		id := uuid.New()
		got, err := Text(id.String()).UUID()
		require.NoError(t, err)
		assert.Equal(t, id, got)
		got, err = Binary(id[:]).UUID()
		require.NoError(t, err)
		assert.Equal(t, id, got)
		_, err = Text("nope").UUID()
		require.Error(t, err)
	})
}

func TestEqualAndClone(t *testing.T) {
	assert.True(t, Null().Equal(Value{}))
	assert.False(t, Int(1).Equal(BigInt(1)), "variants differ")
	assert.True(t, Text("a").Equal(Text("a")))
	assert.False(t, Text("a").Equal(Text("b")))

	v := Binary([]byte("abc"))
	c := v.Clone()
	assert.True(t, v.Equal(c))
	assert.Equal(t, KindBinary, c.Kind())
}

func TestString(t *testing.T) {
	assert.Equal(t, "Null", Null().String())
	assert.Equal(t, "Int(1)", Int(1).String())
	assert.Equal(t, `Text("a")`, Text("a").String())
	assert.Equal(t, "Bool(true)", Bool(true).String())
	assert.Equal(t, "Date(2024-01-02)", Date(time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "Json", KindJSON.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestJSONEncoding(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		v    Value
		want string
	}{
		{Null(), `{"type":"Null"}`},
		{Int(1), `{"type":"Int","value":1}`},
		{SmallInt(-2), `{"type":"SmallInt","value":-2}`},
		{Bool(true), `{"type":"Bool","value":true}`},
		{Text("hi"), `{"type":"Text","value":"hi"}`},
		{Binary([]byte("hi")), `{"type":"Binary","value":"aGk="}`},
		{Date(at), `{"type":"Date","value":"2024-01-02"}`},
		{DateTime(at), `{"type":"DateTime","value":"2024-01-02T03:04:05Z"}`},
		{JSON(json.RawMessage(`{"a":[1,2]}`)), `{"type":"Json","value":{"a":[1,2]}}`},
		{JSON(json.RawMessage{}), `{"type":"Json"}`},
		{JSON(json.RawMessage(`null`)), `{"type":"Json","value":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.v.Kind().String(), func(t *testing.T) {
			data, err := json.Marshal(tt.v)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var got Value
			require.NoError(t, json.Unmarshal(data, &got))
			assert.True(t, tt.v.Equal(got), "want %s, got %s", tt.v, got)
		})
	}

	t.Run("empty json stays distinct from null", func(t *testing.T) {
		data, err := json.Marshal(JSON(nil))
		require.NoError(t, err)
		var got Value
		require.NoError(t, json.Unmarshal(data, &got))
		assert.True(t, JSON(nil).Equal(got))
		assert.False(t, JSON(json.RawMessage("null")).Equal(got))
	})

	t.Run("errors", func(t *testing.T) {
		var v Value
		require.Error(t, json.Unmarshal([]byte(`{"type":"Nope"}`), &v))
		require.Error(t, json.Unmarshal([]byte(`{"type":"Int"}`), &v))
		require.Error(t, json.Unmarshal([]byte(`{"type":"SmallInt","value":100000}`), &v))
	})
}

func TestMsgpackEncoding(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	values := []Value{
		Null(),
		Bool(false),
		SmallInt(12),
		Int(-40000),
		BigInt(1 << 40),
		Real(2.5),
		Float(3.25),
		Text("todo"),
		Binary([]byte{0, 1, 2}),
		Date(at),
		DateTime(at),
		JSON(json.RawMessage(`{"done":true}`)),
		JSON(nil),
	}
	for _, v := range values {
		t.Run(v.Kind().String(), func(t *testing.T) {
			data, err := msgpack.Marshal(v)
			require.NoError(t, err)
			var got Value
			require.NoError(t, msgpack.Unmarshal(data, &got))
			assert.Equal(t, v.Kind(), got.Kind())
			assert.True(t, v.Equal(got), "want %s, got %s", v, got)
		})
	}

	t.Run("list", func(t *testing.T) {
		data, err := msgpack.Marshal(values)
		require.NoError(t, err)
		var got []Value
		require.NoError(t, msgpack.Unmarshal(data, &got))
		require.Len(t, got, len(values))
	})
}
