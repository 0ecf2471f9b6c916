// Package packed implements the serialized bitstream form of a bound
// object: a fixed header naming the root schema, followed by the native
// image, optionally compressed. It is the export/import counterpart of
// the in-memory layout and never interprets member structure.
package packed

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// Magic spells "EDSP" little-endian.
	Magic   uint32 = 0x50534445
	Version uint16 = 1

	// HeaderSize is the fixed record prefix length in bytes.
	HeaderSize = 20
)

// Codec selects the payload compression applied after the header.
type Codec uint16

const (
	CodecRaw Codec = iota
	CodecSnappy
	CodecZstd
)

var (
	ErrTruncated = errors.New("packed: buffer too short")
	ErrBadMagic  = errors.New("packed: bad magic")
	ErrVersion   = errors.New("packed: unsupported version")
	ErrCodec     = errors.New("packed: unknown codec")
)

// Header is the fixed record prefix.
//
//	0  magic      uint32
//	4  version    uint16
//	6  codec      uint16
//	8  schema id  uint64
//	16 native len uint32
type Header struct {
	Magic      uint32
	Version    uint16
	Codec      Codec
	SchemaID   uint64
	NativeSize uint32
}

func encodeHeader(buf []byte, h Header) []byte {
	n := len(buf)
	buf = append(buf, make([]byte, HeaderSize)...)
	binary.LittleEndian.PutUint32(buf[n:], h.Magic)
	binary.LittleEndian.PutUint16(buf[n+4:], h.Version)
	binary.LittleEndian.PutUint16(buf[n+6:], uint16(h.Codec))
	binary.LittleEndian.PutUint64(buf[n+8:], h.SchemaID)
	binary.LittleEndian.PutUint32(buf[n+16:], h.NativeSize)
	return buf
}

// ParseHeader reads the record prefix; zero copy.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.Wrapf(ErrTruncated, "%d byte header", len(buf))
	}
	h := Header{
		Magic:      binary.LittleEndian.Uint32(buf[0:]),
		Version:    binary.LittleEndian.Uint16(buf[4:]),
		Codec:      Codec(binary.LittleEndian.Uint16(buf[6:])),
		SchemaID:   binary.LittleEndian.Uint64(buf[8:]),
		NativeSize: binary.LittleEndian.Uint32(buf[16:]),
	}
	if h.Magic != Magic {
		return Header{}, errors.Wrapf(ErrBadMagic, "0x%08x", h.Magic)
	}
	if h.Version != Version {
		return Header{}, errors.Wrapf(ErrVersion, "%d", h.Version)
	}
	return h, nil
}

// Compatible reports whether two root lineages share enough structure for
// a direct byte copy: one lineage must be a prefix of the other. A lineage
// lists schema ids from the root base type down to the concrete type.
func Compatible(dst, src []uint64) bool {
	if len(dst) == 0 || len(src) == 0 {
		return false
	}
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		if dst[i] != src[i] {
			return false
		}
	}
	return true
}
