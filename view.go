package edslib

import (
	"github.com/pkg/errors"

	"github.com/nasa/EdsLib-sub002/internal/common"
)

// View is a zero-copy window over an Instance's backing bytes: item size
// 1 for flat views, the element's native size and stride for array views.
// A View holds a content acquisition; Release it on every exit path.
// Views over read-only windows never permit writes (Writable is false and
// the typed aliases below refuse them).
type View struct {
	Data     []byte
	ItemSize int
	Stride   int
	Count    int
	Format   byte
	Writable bool

	ref ContentRef
}

func (v *View) Release() { v.ref.Release() }

// FlatView exposes the instance's bytes as items of size 1.
func (i *Instance) FlatView(writable bool) (*View, error) {
	ref, err := i.win.Acquire(writable)
	if err != nil {
		return nil, err
	}
	if i.off+i.length > len(ref.Data) {
		ref.Release()
		return nil, errors.Wrapf(ErrBuffer, "content of %d bytes, need [%d:%d]",
			len(ref.Data), i.off, i.off+i.length)
	}
	return &View{
		Data:     ref.Data[i.off : i.off+i.length],
		ItemSize: 1,
		Stride:   1,
		Count:    i.length,
		Format:   'B',
		Writable: writable,
		ref:      ref,
	}, nil
}

// StridedView exposes an array's elements with the element's native item
// size, stride and count, for bulk numeric access.
func (i *Instance) StridedView(writable bool) (*View, error) {
	if !i.isArray() {
		return nil, errors.Wrapf(ErrType, "%q (%s) is not an array", i.typ.name, i.typ.kind)
	}
	et, err := i.elemType()
	if err != nil {
		return nil, err
	}
	ref, err := i.win.Acquire(writable)
	if err != nil {
		return nil, err
	}
	if i.off+i.length > len(ref.Data) {
		ref.Release()
		return nil, errors.Wrapf(ErrBuffer, "content of %d bytes, need [%d:%d]",
			len(ref.Data), i.off, i.off+i.length)
	}
	return &View{
		Data:     ref.Data[i.off : i.off+i.length],
		ItemSize: et.size,
		Stride:   i.elemSize(),
		Count:    i.Len(),
		Format:   et.FormatCode(),
		Writable: writable,
		ref:      ref,
	}, nil
}

// The typed aliases below reinterpret a view's bytes in place. They
// require a writable view: an aliased slice cannot enforce read-only
// access, so read-only windows must go through Decode/BulkGet copies.

func (v *View) AsUint16() ([]uint16, error) {
	if err := v.aliasable(2, 'H'); err != nil {
		return nil, err
	}
	return common.AliasU16(v.Data, v.Count), nil
}

func (v *View) AsInt16() ([]int16, error) {
	if err := v.aliasable(2, 'h'); err != nil {
		return nil, err
	}
	return common.AliasI16(v.Data, v.Count), nil
}

func (v *View) AsUint32() ([]uint32, error) {
	if err := v.aliasable(4, 'I'); err != nil {
		return nil, err
	}
	return common.AliasU32(v.Data, v.Count), nil
}

func (v *View) AsInt32() ([]int32, error) {
	if err := v.aliasable(4, 'i'); err != nil {
		return nil, err
	}
	return common.AliasI32(v.Data, v.Count), nil
}

func (v *View) AsUint64() ([]uint64, error) {
	if err := v.aliasable(8, 'Q'); err != nil {
		return nil, err
	}
	return common.AliasU64(v.Data, v.Count), nil
}

func (v *View) AsInt64() ([]int64, error) {
	if err := v.aliasable(8, 'q'); err != nil {
		return nil, err
	}
	return common.AliasI64(v.Data, v.Count), nil
}

func (v *View) AsFloat32() ([]float32, error) {
	if err := v.aliasable(4, 'f'); err != nil {
		return nil, err
	}
	return common.AliasF32(v.Data, v.Count), nil
}

func (v *View) AsFloat64() ([]float64, error) {
	if err := v.aliasable(8, 'd'); err != nil {
		return nil, err
	}
	return common.AliasF64(v.Data, v.Count), nil
}

func (v *View) aliasable(size int, format byte) error {
	if !v.Writable {
		return errors.Wrap(ErrBuffer, "typed alias of read-only view")
	}
	if v.Format != format || v.ItemSize != size {
		return errors.Wrapf(ErrType, "view format %q item %d, want %q item %d",
			v.Format, v.ItemSize, format, size)
	}
	if v.Stride != v.ItemSize {
		return errors.Wrapf(ErrValue, "stride %d is not contiguous for item %d", v.Stride, v.ItemSize)
	}
	if len(v.Data) < v.Count*v.ItemSize {
		return errors.Wrapf(ErrBuffer, "view of %d bytes, need %d", len(v.Data), v.Count*v.ItemSize)
	}
	return nil
}
