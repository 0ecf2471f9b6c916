package edslib

import (
	"github.com/pkg/errors"

	"github.com/nasa/EdsLib-sub002/pkg/packed"
)

// Packed is the serialized bitstream form of an instance, distinct from
// the in-memory native layout. Encode recognizes it as a fast path and
// hands it straight to Unpack without element-wise recursion.
type Packed []byte

// Shared pack scratch state. Safe under the engine's single-threaded
// execution convention; a concurrent port would make these per-context.
var (
	packEnc packed.Encoder
	packDec packed.Decoder
)

// Pack exports the instance's native image as a packed record.
func Pack(i *Instance, codec packed.Codec) (Packed, error) {
	if i == nil {
		return nil, errors.Wrap(ErrType, "pack unbound instance")
	}
	native, err := i.Bytes()
	if err != nil {
		return nil, err
	}
	if n := i.typ.size; n > 0 && n < len(native) {
		native = native[:n]
	}
	lineage, err := i.typ.db.Lineage(i.typ.id)
	if err != nil {
		return nil, err
	}
	// records carry the root family id so any member of the family can
	// import them
	rec, err := packEnc.Pack(lineage[0], native, codec)
	if err != nil {
		return nil, errors.Wrap(ErrRuntime, err.Error())
	}
	// the encoder reuses its buffer across calls
	out := make(Packed, len(rec))
	copy(out, rec)
	return out, nil
}

// Unpack imports a packed record into the instance's storage after
// checking the record's family id against the destination's root family.
// Oversized images truncate to destination capacity; smaller ones
// zero-fill the tail.
func Unpack(i *Instance, data Packed) error {
	if i == nil {
		return errors.Wrap(ErrType, "unpack into unbound instance")
	}
	h, native, err := packDec.Unpack(data)
	if err != nil {
		return errors.Wrap(ErrValue, err.Error())
	}
	lineage, err := i.typ.db.Lineage(i.typ.id)
	if err != nil {
		return err
	}
	if lineage[0] != h.SchemaID {
		return errors.Wrapf(ErrType, "packed record family %#x does not match %q", h.SchemaID, i.typ.name)
	}
	return i.storeBytes(native)
}
