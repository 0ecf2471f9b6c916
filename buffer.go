package edslib

import (
	"github.com/pkg/errors"
)

// External is any object exposing a buffer-view contract: it hands out
// its bytes together with a release callback. Acquisition is deferred
// until the engine first touches content, so wrapping an External never
// double-acquires the source's own locks.
type External interface {
	AcquireBytes(writable bool) (data []byte, release func(), err error)
}

// BufferWindow is a reference-counted handle over a contiguous byte
// region. It either owns allocated storage, borrows caller-supplied
// memory, or proxies a foreign buffer object. All Instances aliasing a
// window share its content; mutation through any alias is immediately
// visible to the others.
//
// Refcounts are plain integers: the engine runs under an external
// single-threaded convention (see package doc).
type BufferWindow struct {
	data        []byte
	maxSize     int
	readonly    bool
	refs        int
	initialized bool

	foreign        External
	foreignRelease func()
}

// sizeUnknown defers the bounds check of a lazily wrapped foreign buffer
// to first acquisition.
const sizeUnknown = -1

// NewAllocated creates a window over fresh zeroed storage. The window is
// uninitialized until a schema-rooted Instance claims it. Requests beyond
// the runtime's allocation limit surface as ErrOutOfMemory rather than a
// panic.
func NewAllocated(n int) (w *BufferWindow, err error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrValue, "allocate %d bytes", n)
	}
	defer func() {
		if recover() != nil {
			w, err = nil, errors.Wrapf(ErrOutOfMemory, "allocate %d bytes", n)
		}
	}()
	return &BufferWindow{data: make([]byte, n), maxSize: n}, nil
}

// CopyFrom allocates a window and copies src into it.
func CopyFrom(src []byte) *BufferWindow {
	d := make([]byte, len(src))
	copy(d, src)
	return &BufferWindow{data: d, maxSize: len(d), initialized: true}
}

// WrapBytes borrows caller memory without copying. The caller guarantees
// b outlives the window.
func WrapBytes(b []byte, readonly bool) *BufferWindow {
	return &BufferWindow{data: b, maxSize: len(b), readonly: readonly, initialized: true}
}

// WrapExternal proxies a foreign buffer object. size may be negative when
// unknown; it is then learned at first acquisition.
func WrapExternal(src External, readonly bool, size int) *BufferWindow {
	if size < 0 {
		size = sizeUnknown
	}
	return &BufferWindow{foreign: src, maxSize: size, readonly: readonly, initialized: true}
}

// Size returns the window capacity, or a negative value while a lazy
// foreign wrap has not been acquired yet.
func (w *BufferWindow) Size() int { return w.maxSize }

func (w *BufferWindow) ReadOnly() bool { return w.readonly }

// Peek returns the raw storage of a self-owned window. Foreign-wrapped
// windows return nil: there is no safe raw access without acquisition.
func (w *BufferWindow) Peek() []byte {
	if w.foreign != nil {
		return nil
	}
	return w.data
}

// ContentRef is an acquired view of a window's content. Every ContentRef
// must be released exactly once, on every exit path.
type ContentRef struct {
	win      *BufferWindow
	Data     []byte
	writable bool
}

// Acquire checks out the window content. Requesting a writable view of a
// read-only window is a hard error, never a silent downgrade. For lazily
// wrapped foreign buffers the underlying acquisition happens here on
// first use and is cached until the reference count returns to zero.
func (w *BufferWindow) Acquire(writable bool) (ContentRef, error) {
	if writable && w.readonly {
		return ContentRef{}, errors.Wrap(ErrBuffer, "writable view of read-only window")
	}
	if w.foreign != nil && w.data == nil {
		data, release, err := w.foreign.AcquireBytes(!w.readonly)
		if err != nil {
			return ContentRef{}, errors.Wrap(err, "acquire foreign buffer")
		}
		w.data = data
		w.foreignRelease = release
		if w.maxSize == sizeUnknown {
			w.maxSize = len(data)
		}
	}
	if w.data == nil {
		return ContentRef{}, errors.Wrap(ErrBuffer, "window has no content")
	}
	w.refs++
	return ContentRef{win: w, Data: w.data, writable: writable}, nil
}

// Release returns a checked-out view. Releasing more than acquired is a
// programming error and panics.
func (r ContentRef) Release() {
	w := r.win
	if w == nil {
		return
	}
	if w.refs == 0 {
		panic("edslib: BufferWindow release without matching acquire")
	}
	w.refs--
	if w.refs == 0 && w.foreignRelease != nil {
		w.foreignRelease()
		w.foreignRelease = nil
		w.data = nil
	}
}

// Refs reports the live acquisition count.
func (w *BufferWindow) Refs() int { return w.refs }

// boundsOK validates a sub-window. Unresolved lazy wraps defer the check
// to acquisition time.
func (w *BufferWindow) boundsOK(off, length int) bool {
	if off < 0 || length < 0 {
		return false
	}
	if w.maxSize == sizeUnknown {
		return true
	}
	return off+length <= w.maxSize
}

// markInitialized flips the one-time Uninitialized -> Initialized
// transition; it reports whether this call performed the transition.
func (w *BufferWindow) markInitialized() bool {
	if w.initialized {
		return false
	}
	w.initialized = true
	return true
}
