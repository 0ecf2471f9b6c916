package edslib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa/EdsLib-sub002/pkg/packed"
)

func TestPackUnpackFastPath(t *testing.T) {
	db := openTestDB(t)
	tm := mustType(t, db, "Telemetry")

	src, err := tm.New()
	require.NoError(t, err)
	require.NoError(t, Encode(src, map[string]any{
		"apid": 99, "mode": "NOMINAL", "temperature": 17, "label": "x",
	}))

	for _, codec := range []packed.Codec{packed.CodecRaw, packed.CodecSnappy, packed.CodecZstd} {
		rec, err := Pack(src, codec)
		require.NoError(t, err)

		dst, err := tm.New()
		require.NoError(t, err)
		// Encode recognizes the packed form and skips element recursion
		require.NoError(t, Encode(dst, rec))

		want, err := Decode(src)
		require.NoError(t, err)
		got, err := Decode(dst)
		require.NoError(t, err)
		assert.Equal(t, want, got, "codec %d", codec)
	}
}

func TestUnpackAcrossFamily(t *testing.T) {
	db := openTestDB(t)
	tm := mustType(t, db, "Telemetry")
	hdr := mustType(t, db, "Header")

	src, err := tm.New()
	require.NoError(t, err)
	require.NoError(t, Encode(src, map[string]any{"apid": 5, "seq": 6}))
	rec, err := Pack(src, packed.CodecRaw)
	require.NoError(t, err)

	// records carry the root family id, so the base type imports them
	dst, err := hdr.Wrap(make([]byte, hdr.Size()), false)
	require.NoError(t, err)
	require.NoError(t, Unpack(dst, rec))
	v, err := Decode(dst)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v.(map[string]any)["apid"])
}

func TestUnpackWrongFamily(t *testing.T) {
	db := openTestDB(t)
	tm := mustType(t, db, "Telemetry")
	pair := mustType(t, db, "PairAB")

	src, err := tm.New()
	require.NoError(t, err)
	rec, err := Pack(src, packed.CodecRaw)
	require.NoError(t, err)

	dst, err := pair.New()
	require.NoError(t, err)
	err = Unpack(dst, rec)
	require.ErrorIs(t, err, ErrType)
}

func TestUnpackGarbage(t *testing.T) {
	db := openTestDB(t)
	pair := mustType(t, db, "PairAB")
	dst, err := pair.New()
	require.NoError(t, err)
	err = Unpack(dst, Packed("not a record"))
	require.ErrorIs(t, err, ErrValue)
}
