package edslib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExternal struct {
	data     []byte
	acquires int
	releases int
	failNext bool
}

func (f *fakeExternal) AcquireBytes(writable bool) ([]byte, func(), error) {
	if f.failNext {
		return nil, nil, assert.AnError
	}
	f.acquires++
	return f.data, func() { f.releases++ }, nil
}

func TestAcquireWritableOnReadOnly(t *testing.T) {
	orig := []byte{1, 2, 3, 4}
	w := WrapBytes(orig, true)
	_, err := w.Acquire(true)
	require.ErrorIs(t, err, ErrBuffer)
	require.Equal(t, []byte{1, 2, 3, 4}, orig)

	// read acquisition still works
	ref, err := w.Acquire(false)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, ref.Data)
	ref.Release()
}

func TestAcquireReleasePairing(t *testing.T) {
	w, err := NewAllocated(8)
	require.NoError(t, err)

	r1, err := w.Acquire(true)
	require.NoError(t, err)
	r2, err := w.Acquire(false)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Refs())

	r1.Release()
	r2.Release()
	assert.Equal(t, 0, w.Refs())

	require.Panics(t, func() { r2.Release() })
}

func TestForeignLazyBinding(t *testing.T) {
	src := &fakeExternal{data: []byte{9, 9, 9}}
	w := WrapExternal(src, false, -1)

	// wrapping alone must not touch the source
	assert.Equal(t, 0, src.acquires)
	assert.Nil(t, w.Peek())

	r1, err := w.Acquire(false)
	require.NoError(t, err)
	assert.Equal(t, 1, src.acquires)
	assert.Equal(t, 3, w.Size())

	// nested acquisitions reuse the cached content
	r2, err := w.Acquire(true)
	require.NoError(t, err)
	assert.Equal(t, 1, src.acquires)

	r2.Release()
	assert.Equal(t, 0, src.releases)
	r1.Release()
	assert.Equal(t, 1, src.releases)

	// next acquisition re-binds
	r3, err := w.Acquire(false)
	require.NoError(t, err)
	assert.Equal(t, 2, src.acquires)
	r3.Release()
}

func TestForeignAcquireFailure(t *testing.T) {
	src := &fakeExternal{failNext: true}
	w := WrapExternal(src, true, -1)
	_, err := w.Acquire(false)
	require.Error(t, err)
	assert.Equal(t, 0, w.Refs())
}

func TestCopyFromIsPrivate(t *testing.T) {
	orig := []byte{1, 2, 3}
	w := CopyFrom(orig)
	ref, err := w.Acquire(true)
	require.NoError(t, err)
	ref.Data[0] = 0xFF
	ref.Release()
	assert.Equal(t, byte(1), orig[0])
}

func TestNewAllocatedRejectsNegative(t *testing.T) {
	_, err := NewAllocated(-1)
	require.ErrorIs(t, err, ErrValue)
}

func TestNewAllocatedOverLimit(t *testing.T) {
	_, err := NewAllocated(math.MaxInt)
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestPeekSelfOwned(t *testing.T) {
	w, err := NewAllocated(4)
	require.NoError(t, err)
	require.NotNil(t, w.Peek())
	assert.Len(t, w.Peek(), 4)
}
