package edslib

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	tm := mustType(t, db, "Telemetry")
	inst, err := tm.New()
	require.NoError(t, err)

	err = Encode(inst, map[string]any{
		"apid":        2047,
		"seq":         12,
		"mode":        "SCIENCE",
		"armed":       true,
		"temperature": -40,
		"position":    []any{1.5, -2.25, 100.0},
		"label":       "probe-1",
	})
	require.NoError(t, err)

	v, err := Decode(inst)
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, uint64(2047), m["apid"])
	assert.Equal(t, uint64(12), m["seq"])
	assert.Equal(t, "SCIENCE", m["mode"])
	assert.Equal(t, true, m["armed"])
	assert.Equal(t, int64(-40), m["temperature"])
	assert.Equal(t, []any{1.5, -2.25, 100.0}, m["position"])
	assert.Equal(t, "probe-1", m["label"])
}

func TestEncodeMissingFieldIsNoOp(t *testing.T) {
	db := openTestDB(t)
	pair := mustType(t, db, "PairAB")
	buf := []byte{0x05, 0x01, 0x00, 0x00, 0x00}
	inst, err := pair.Wrap(buf, false)
	require.NoError(t, err)

	require.NoError(t, Encode(inst, map[string]any{"b": 2}))
	assert.Equal(t, byte(0x05), buf[0], "absent member a must stay untouched")
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x00}, buf[1:])
}

func TestEncodePositionalFallback(t *testing.T) {
	db := openTestDB(t)
	pair := mustType(t, db, "PairAB")
	inst, err := pair.New()
	require.NoError(t, err)

	// sequences match members by position
	require.NoError(t, Encode(inst, []any{3, 4}))
	v, err := Decode(inst)
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, uint64(3), m["a"])
	assert.Equal(t, int64(4), m["b"])
}

func TestEncodeNilIsNoOp(t *testing.T) {
	db := openTestDB(t)
	pair := mustType(t, db, "PairAB")
	buf := []byte{1, 2, 3, 4, 5}
	inst, err := pair.Wrap(buf, false)
	require.NoError(t, err)
	require.NoError(t, Encode(inst, nil))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, buf)
}

func TestDirectCopyTruncatesAndZeroFills(t *testing.T) {
	db := openTestDB(t)
	hdr := mustType(t, db, "Header")
	tm := mustType(t, db, "Telemetry")

	src, err := tm.New()
	require.NoError(t, err)
	require.NoError(t, Encode(src, map[string]any{"apid": 7, "seq": 8, "temperature": 100}))

	// derived -> base with a smaller destination window truncates
	small := make([]byte, hdr.Size())
	dst, err := hdr.Wrap(small, false)
	require.NoError(t, err)
	ok, err := Compatible(dst, src)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, Encode(dst, src))
	v, err := Decode(dst)
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, uint64(7), m["apid"])
	assert.Equal(t, uint64(8), m["seq"])

	// base -> derived zero-fills the remainder
	big := make([]byte, tm.Size())
	for k := range big {
		big[k] = 0xFF
	}
	dst2, err := tm.Wrap(big, false)
	require.NoError(t, err)
	require.NoError(t, Encode(dst2, dst))
	assert.Equal(t, []byte{0x07, 0x00, 0x08, 0x00}, big[:4])
	for k := hdr.Size(); k < len(big); k++ {
		assert.Zero(t, big[k])
	}
}

func TestIncompatibleInstanceFallsBackToValueForm(t *testing.T) {
	db := openTestDB(t)
	pair := mustType(t, db, "PairAB")
	hdr := mustType(t, db, "Header")

	src, err := pair.New()
	require.NoError(t, err)
	dst, err := hdr.New()
	require.NoError(t, err)

	ok, err := Compatible(dst, src)
	require.NoError(t, err)
	require.False(t, ok)

	// PairAB's members {a,b} have no counterparts in Header, so the
	// structural fallback leaves the destination untouched
	require.NoError(t, Encode(dst, src))
	b, err := dst.Bytes()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, len(b)), b)
}

func TestScalarCoercions(t *testing.T) {
	db := openTestDB(t)
	i32 := mustType(t, db, "int32")
	inst, err := i32.New()
	require.NoError(t, err)

	require.NoError(t, Encode(inst, "-123"))
	v, err := inst.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(-123), v)

	require.NoError(t, Encode(inst, true))
	v, _ = inst.Int()
	assert.Equal(t, int64(1), v)

	require.NoError(t, Encode(inst, 2.9))
	v, _ = inst.Int()
	assert.Equal(t, int64(2), v)

	require.NoError(t, Encode(inst, []byte("55")))
	v, _ = inst.Int()
	assert.Equal(t, int64(55), v)

	type myTemp int16
	require.NoError(t, Encode(inst, myTemp(-7)))
	v, _ = inst.Int()
	assert.Equal(t, int64(-7), v)

	err = Encode(inst, struct{ X int }{1})
	require.ErrorIs(t, err, ErrType)
}

func TestEnumCoercions(t *testing.T) {
	db := openTestDB(t)
	mode := mustType(t, db, "Mode")
	inst, err := mode.New()
	require.NoError(t, err)

	require.NoError(t, Encode(inst, "NOMINAL"))
	v, err := Decode(inst)
	require.NoError(t, err)
	assert.Equal(t, "NOMINAL", v)

	// out-of-table values decode numerically
	require.NoError(t, Encode(inst, 9))
	v, err = Decode(inst)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)

	s, err := inst.StringValue()
	require.NoError(t, err)
	assert.Equal(t, "9", s)
}

func TestQuickArrayRoundTrip(t *testing.T) {
	db := openTestDB(t)
	arr := mustType(t, db, "U16x3")

	condition := func(a, b, c uint16) bool {
		inst, err := arr.New()
		require.NoError(t, err)
		require.NoError(t, Encode(inst, []any{a, b, c}))
		v, err := Decode(inst)
		require.NoError(t, err)
		got := v.([]any)
		return got[0] == uint64(a) && got[1] == uint64(b) && got[2] == uint64(c)
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))
}

func TestJSONBridge(t *testing.T) {
	db := openTestDB(t)
	pair := mustType(t, db, "PairAB")
	inst, err := pair.New()
	require.NoError(t, err)

	require.NoError(t, EncodeJSON(inst, []byte(`{"a": 5, "b": -2}`)))
	out, err := MarshalJSON(inst)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 5, "b": -2}`, string(out))

	err = EncodeJSON(inst, []byte(`{`))
	require.ErrorIs(t, err, ErrValue)
}

func BenchmarkEncodeTelemetry(b *testing.B) {
	db, err := Open("bench", buildTestSchema())
	if err != nil {
		b.Fatal(err)
	}
	tm, err := db.TypeByName("Telemetry")
	if err != nil {
		b.Fatal(err)
	}
	inst, err := tm.New()
	if err != nil {
		b.Fatal(err)
	}
	src := map[string]any{
		"apid":        2047,
		"seq":         12,
		"mode":        "SCIENCE",
		"armed":       true,
		"temperature": -40,
		"position":    []any{1.5, -2.25, 100.0},
		"label":       "probe-1",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := Encode(inst, src); err != nil {
			b.Fatal(err)
		}
	}
}
