package edslib

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// mappedFile is an External backed by a memory-mapped file. The mapping
// is created on first acquisition and torn down when the last reference
// is released, matching the lazy-binding contract of WrapExternal.
type mappedFile struct {
	path     string
	writable bool
}

func (m *mappedFile) AcquireBytes(writable bool) ([]byte, func(), error) {
	if writable && !m.writable {
		return nil, nil, errors.Wrapf(ErrBuffer, "mapping of %s is read-only", m.path)
	}
	flag := os.O_RDONLY
	prot := mmap.RDONLY
	if m.writable {
		flag = os.O_RDWR
		prot = mmap.RDWR
	}
	f, err := os.OpenFile(m.path, flag, 0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open mapped file")
	}
	mm, err := mmap.Map(f, prot, 0)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "map file")
	}
	release := func() {
		mm.Unmap()
		f.Close()
	}
	return mm, release, nil
}

// MapFile wraps a file's contents as a buffer window without reading it
// into the heap. The file size fixes the window capacity up front so
// Instance bounds are checked before any mapping exists.
func MapFile(path string, readonly bool) (*BufferWindow, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat mapped file")
	}
	return WrapExternal(&mappedFile{path: path, writable: !readonly}, readonly, int(st.Size())), nil
}
