package edslib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapFileReadOnly(t *testing.T) {
	db := openTestDB(t)
	pair := mustType(t, db, "PairAB")

	path := filepath.Join(t.TempDir(), "pair.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x05, 0x01, 0x00, 0x00, 0x00}, 0o644))

	w, err := MapFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, 5, w.Size())
	assert.Nil(t, w.Peek(), "mapped windows are foreign")

	inst, err := pair.Bind(w, 0, 5)
	require.NoError(t, err)

	v, err := Decode(inst)
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, uint64(5), m["a"])
	assert.Equal(t, int64(1), m["b"])
	assert.Equal(t, 0, w.Refs(), "decode must release every acquisition")

	err = inst.Set("a", 9)
	require.ErrorIs(t, err, ErrBuffer)
}

func TestMapFileWritable(t *testing.T) {
	db := openTestDB(t)
	pair := mustType(t, db, "PairAB")

	path := filepath.Join(t.TempDir(), "pair.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 5), 0o644))

	w, err := MapFile(path, false)
	require.NoError(t, err)
	inst, err := pair.Bind(w, 0, 5)
	require.NoError(t, err)
	require.NoError(t, inst.Set("b", 7))

	// the mapping is released at refcount zero; re-read from disk
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x07, 0x00, 0x00, 0x00}, got)
}

func TestMapFileMissing(t *testing.T) {
	_, err := MapFile(filepath.Join(t.TempDir(), "absent.bin"), true)
	require.Error(t, err)
}
