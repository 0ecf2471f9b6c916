package edslib

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/nasa/EdsLib-sub002/internal/common"
	"github.com/nasa/EdsLib-sub002/pkg/schemadb"
)

// Instance is one live value of a schema type: a (window, offset, length)
// triple. Children obtained through attribute or index access share the
// parent's window at a shifted offset; nothing is copied.
type Instance struct {
	typ    *DynamicType
	win    *BufferWindow
	off    int
	length int

	// dynamic arrays carry their element binding directly instead of a
	// schema-declared array type.
	dynElem  *DynamicType
	dynCount int
}

func newInstance(t *DynamicType, w *BufferWindow, off, length int) (*Instance, error) {
	if !w.boundsOK(off, length) {
		return nil, errors.Wrapf(ErrBuffer,
			"window of %d bytes cannot hold %q at [%d:%d]", w.maxSize, t.name, off, off+length)
	}
	return &Instance{typ: t, win: w, off: off, length: length}, nil
}

// newSubObject is the only legal way to alias a parent's storage.
func newSubObject(parent *Instance, t *DynamicType, off, length int) (*Instance, error) {
	return newInstance(t, parent.win, parent.off+off, length)
}

// NewDynamicArray binds a runtime-sized sequence of elem over caller
// memory. Element size comes from the element type; count elements must
// fit the buffer.
func NewDynamicArray(elem *DynamicType, buf []byte, count int, readonly bool) (*Instance, error) {
	if elem == nil {
		return nil, errors.Wrap(ErrType, "dynamic array of nil element type")
	}
	if count < 0 || elem.size <= 0 || count*elem.size > len(buf) {
		return nil, errors.Wrapf(ErrValue,
			"dynamic array: %d elements of %d bytes in a %d byte buffer", count, elem.size, len(buf))
	}
	w := WrapBytes(buf, readonly)
	inst, err := newInstance(elem, w, 0, count*elem.size)
	if err != nil {
		return nil, err
	}
	inst.dynElem = elem
	inst.dynCount = count
	return inst, nil
}

func (i *Instance) Type() *DynamicType    { return i.typ }
func (i *Instance) Window() *BufferWindow { return i.win }
func (i *Instance) Offset() int           { return i.off }
func (i *Instance) Length() int           { return i.length }

func (i *Instance) isArray() bool {
	return i.dynElem != nil || i.typ.kind == BaseArray
}

func (i *Instance) isContainer() bool {
	return i.dynElem == nil && i.typ.kind == BaseContainer
}

func (i *Instance) isScalar() bool {
	return i.dynElem == nil && (i.typ.kind == BaseScalar || i.typ.kind == BaseNumber)
}

func (i *Instance) elemType() (*DynamicType, error) {
	if i.dynElem != nil {
		return i.dynElem, nil
	}
	return i.typ.db.Type(i.typ.elemType)
}

func (i *Instance) elemSize() int {
	if i.dynElem != nil {
		return i.dynElem.size
	}
	return i.typ.elemSize
}

// Len is the number of declared named members for containers and the
// element count for arrays; scalars have no sub-entities.
func (i *Instance) Len() int {
	switch {
	case i.dynElem != nil:
		return i.dynCount
	case i.typ.kind == BaseContainer:
		return len(i.typ.names)
	case i.typ.kind == BaseArray:
		return i.typ.elemCount
	default:
		return 0
	}
}

// Get resolves a named member to its child Instance.
func (i *Instance) Get(name string) (*Instance, error) {
	if !i.isContainer() {
		return nil, errors.Wrapf(ErrType, "%q (%s) is not a container", i.typ.name, i.typ.kind)
	}
	a, ok := i.typ.attrs[name]
	if !ok {
		return nil, errors.Wrapf(ErrValue, "%q has no member %q", i.typ.name, name)
	}
	return a.Resolve(i)
}

// Set encodes value into the named member's storage.
func (i *Instance) Set(name string, value any) error {
	if !i.isContainer() {
		return errors.Wrapf(ErrType, "%q (%s) is not a container", i.typ.name, i.typ.kind)
	}
	a, ok := i.typ.attrs[name]
	if !ok {
		return errors.Wrapf(ErrValue, "%q has no member %q", i.typ.name, name)
	}
	return a.Assign(i, value)
}

// Each visits named members in declaration order, inherited first.
func (i *Instance) Each(fn func(name string, child *Instance) error) error {
	if !i.isContainer() {
		return errors.Wrapf(ErrType, "%q (%s) is not a container", i.typ.name, i.typ.kind)
	}
	for _, name := range i.typ.names {
		child, err := i.typ.attrs[name].Resolve(i)
		if err != nil {
			return err
		}
		if err := fn(name, child); err != nil {
			return err
		}
	}
	return nil
}

// Index resolves element k of an array.
func (i *Instance) Index(k int) (*Instance, error) {
	if !i.isArray() {
		return nil, errors.Wrapf(ErrType, "%q (%s) is not an array", i.typ.name, i.typ.kind)
	}
	if k < 0 || k >= i.Len() {
		return nil, errors.Wrapf(ErrIndex, "%d of %d", k, i.Len())
	}
	et, err := i.elemType()
	if err != nil {
		return nil, err
	}
	es := i.elemSize()
	return newSubObject(i, et, k*es, es)
}

// SetIndex encodes value into element k.
func (i *Instance) SetIndex(k int, value any) error {
	child, err := i.Index(k)
	if err != nil {
		return err
	}
	return Encode(child, value)
}

// BulkGet decodes every element of an array into a fresh slice.
func (i *Instance) BulkGet() ([]any, error) {
	if !i.isArray() {
		return nil, errors.Wrapf(ErrType, "%q (%s) is not an array", i.typ.name, i.typ.kind)
	}
	out := make([]any, i.Len())
	for k := range out {
		child, err := i.Index(k)
		if err != nil {
			return nil, err
		}
		v, err := Decode(child)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// BulkSet applies input elements positionally, truncating to
// min(len(values), element count).
func (i *Instance) BulkSet(values []any) error {
	if !i.isArray() {
		return errors.Wrapf(ErrType, "%q (%s) is not an array", i.typ.name, i.typ.kind)
	}
	n := i.Len()
	if len(values) < n {
		n = len(values)
	}
	for k := 0; k < n; k++ {
		if err := i.SetIndex(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// InitializeDefaults runs the one-time default initialization of a fresh
// window: the span is zero-filled and the window marked initialized.
// Re-initialization is rejected; wrapped buffers arrive initialized.
func (i *Instance) InitializeDefaults() error {
	if i.win.initialized {
		return errors.Wrap(ErrValue, "window already initialized")
	}
	err := i.writeSpan(func(b []byte) error {
		for k := range b {
			b[k] = 0
		}
		return nil
	})
	if err != nil {
		return err
	}
	i.win.markInitialized()
	return nil
}

// readSpan runs fn over the instance's bytes under a read acquisition,
// releasing on every exit path.
func (i *Instance) readSpan(fn func(b []byte) error) error {
	ref, err := i.win.Acquire(false)
	if err != nil {
		return err
	}
	defer ref.Release()
	if i.off+i.length > len(ref.Data) {
		return errors.Wrapf(ErrBuffer, "content of %d bytes, need [%d:%d]",
			len(ref.Data), i.off, i.off+i.length)
	}
	return fn(ref.Data[i.off : i.off+i.length])
}

// writeSpan is readSpan with a writable acquisition.
func (i *Instance) writeSpan(fn func(b []byte) error) error {
	ref, err := i.win.Acquire(true)
	if err != nil {
		return err
	}
	defer ref.Release()
	if i.off+i.length > len(ref.Data) {
		return errors.Wrapf(ErrBuffer, "content of %d bytes, need [%d:%d]",
			len(ref.Data), i.off, i.off+i.length)
	}
	return fn(ref.Data[i.off : i.off+i.length])
}

// scalarSpan bounds numeric access to the type's native width.
func (i *Instance) scalarSpan() int {
	if i.typ.size > 0 && i.typ.size < i.length {
		return i.typ.size
	}
	return i.length
}

// Bytes copies out the instance's backing bytes, embedded NULs included.
func (i *Instance) Bytes() ([]byte, error) {
	var out []byte
	err := i.readSpan(func(b []byte) error {
		out = append(out, b...)
		return nil
	})
	return out, err
}

// StringValue renders the scalar by its display hint: string-hinted
// scalars stop at the first NUL, enums prefer their symbolic label,
// binary scalars keep the full declared span, numbers format decimally.
func (i *Instance) StringValue() (string, error) {
	if !i.isScalar() {
		return "", errors.Wrapf(ErrType, "%q (%s) is not a scalar", i.typ.name, i.typ.kind)
	}
	switch i.typ.hint {
	case schemadb.HintString:
		var s string
		err := i.readSpan(func(b []byte) error {
			for k, c := range b {
				if c == 0 {
					s = string(b[:k])
					return nil
				}
			}
			s = string(b)
			return nil
		})
		return s, err
	case schemadb.HintEnum:
		v, err := i.Int()
		if err != nil {
			return "", err
		}
		if label, ok := i.typ.db.svc.EnumLabel(i.typ.id, v); ok {
			return label, nil
		}
		return strconv.FormatInt(v, 10), nil
	case schemadb.HintBoolean:
		v, err := i.Bool()
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(v), nil
	}
	switch i.typ.skind {
	case schemadb.KindBinary:
		b, err := i.Bytes()
		return string(b), err
	case schemadb.KindSignedInt:
		v, err := i.Int()
		return strconv.FormatInt(v, 10), err
	case schemadb.KindUnsignedInt:
		v, err := i.Uint()
		return strconv.FormatUint(v, 10), err
	default:
		v, err := i.Float()
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
}

// Int loads the stored value as a signed integer.
func (i *Instance) Int() (int64, error) {
	var v int64
	err := i.loadNumeric(func(s int64) { v = s }, func(u uint64) { v = int64(u) }, func(f float64) { v = int64(f) })
	return v, err
}

// Uint loads the stored value as an unsigned integer.
func (i *Instance) Uint() (uint64, error) {
	var v uint64
	err := i.loadNumeric(func(s int64) { v = uint64(s) }, func(u uint64) { v = u }, func(f float64) { v = uint64(f) })
	return v, err
}

// Float loads the stored value as a float.
func (i *Instance) Float() (float64, error) {
	var v float64
	err := i.loadNumeric(func(s int64) { v = float64(s) }, func(u uint64) { v = float64(u) }, func(f float64) { v = f })
	return v, err
}

// Bool maps any non-zero stored value to true.
func (i *Instance) Bool() (bool, error) {
	var v bool
	err := i.loadNumeric(func(s int64) { v = s != 0 }, func(u uint64) { v = u != 0 }, func(f float64) { v = f != 0 })
	return v, err
}

// numericWidthOK bounds the effective scalar width: integers load and
// store at any width within 1..8 bytes (odd widths included), floats only
// at their native 4 or 8.
func (i *Instance) numericWidthOK(n int) error {
	if i.typ.skind == schemadb.KindFloat {
		if n != 4 && n != 8 {
			return errors.Wrapf(ErrValue, "%q: float width %d", i.typ.name, n)
		}
		return nil
	}
	if n < 1 || n > 8 {
		return errors.Wrapf(ErrValue, "%q: integer width %d", i.typ.name, n)
	}
	return nil
}

func (i *Instance) loadNumeric(si func(int64), ui func(uint64), fl func(float64)) error {
	if i.typ.kind != BaseNumber {
		return errors.Wrapf(ErrType, "%q (%s) is not numeric", i.typ.name, i.typ.kind)
	}
	return i.readSpan(func(b []byte) error {
		n := i.scalarSpan()
		if err := i.numericWidthOK(n); err != nil {
			return err
		}
		switch i.typ.skind {
		case schemadb.KindSignedInt:
			si(common.GetInt(b, n))
		case schemadb.KindUnsignedInt:
			ui(common.GetUint(b, n))
		case schemadb.KindFloat:
			fl(common.GetFloat(b, n))
		default:
			return errors.Wrapf(ErrType, "%q: kind %s has no numeric form", i.typ.name, i.typ.skind)
		}
		return nil
	})
}

func (i *Instance) storeInt(v int64) error {
	return i.storeNumeric(v, uint64(v), float64(v))
}

func (i *Instance) storeUint(v uint64) error {
	return i.storeNumeric(int64(v), v, float64(v))
}

func (i *Instance) storeFloat(v float64) error {
	return i.storeNumeric(int64(v), uint64(v), v)
}

func (i *Instance) storeNumeric(si int64, ui uint64, fl float64) error {
	if i.typ.kind != BaseNumber {
		return errors.Wrapf(ErrType, "%q (%s) is not numeric", i.typ.name, i.typ.kind)
	}
	return i.writeSpan(func(b []byte) error {
		n := i.scalarSpan()
		if err := i.numericWidthOK(n); err != nil {
			return err
		}
		switch i.typ.skind {
		case schemadb.KindSignedInt:
			common.PutUint(b, uint64(si), n)
		case schemadb.KindUnsignedInt:
			common.PutUint(b, ui, n)
		case schemadb.KindFloat:
			common.PutFloat(b, fl, n)
		default:
			return errors.Wrapf(ErrType, "%q: kind %s has no numeric form", i.typ.name, i.typ.skind)
		}
		return nil
	})
}

// storeBytes raw-copies src into the span, truncating oversized input and
// zero-filling the remainder.
func (i *Instance) storeBytes(src []byte) error {
	return i.writeSpan(func(b []byte) error {
		n := copy(b, src)
		for ; n < len(b); n++ {
			b[n] = 0
		}
		return nil
	})
}
