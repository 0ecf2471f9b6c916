package packed

import (
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Encoder packs native images into records, reusing its buffers across
// calls. Share an Encoder only under external serialization; it holds
// per-call scratch state.
type Encoder struct {
	out        []byte
	compressed []byte
	zenc       *zstd.Encoder
}

// Pack frames native as a record identified by schemaID. The returned
// slice aliases the Encoder's internal buffer and is valid until the next
// Pack call.
func (e *Encoder) Pack(schemaID uint64, native []byte, codec Codec) ([]byte, error) {
	payload := native
	switch codec {
	case CodecRaw:
	case CodecSnappy:
		e.compressed = snappy.Encode(e.compressed[:0], native)
		payload = e.compressed
	case CodecZstd:
		if e.zenc == nil {
			var err error
			e.zenc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
			if err != nil {
				return nil, errors.Wrap(err, "packed: zstd init")
			}
		}
		e.compressed = e.zenc.EncodeAll(native, e.compressed[:0])
		payload = e.compressed
	default:
		return nil, errors.Wrapf(ErrCodec, "%d", codec)
	}

	total := HeaderSize + len(payload)
	if cap(e.out) < total {
		e.out = make([]byte, 0, total)
	} else {
		e.out = e.out[:0]
	}
	e.out = encodeHeader(e.out, Header{
		Magic:      Magic,
		Version:    Version,
		Codec:      codec,
		SchemaID:   schemaID,
		NativeSize: uint32(len(native)),
	})
	e.out = append(e.out, payload...)
	return e.out, nil
}

// Decoder unpacks records, reusing its buffers across calls.
type Decoder struct {
	raw  []byte
	zdec *zstd.Decoder
}

// Unpack parses a record and returns its header and native image. The
// image may alias data (raw codec) or the Decoder's internal buffer, and
// is valid until the next Unpack call.
func (d *Decoder) Unpack(data []byte) (Header, []byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	payload := data[HeaderSize:]
	var native []byte
	switch h.Codec {
	case CodecRaw:
		native = payload
	case CodecSnappy:
		d.raw, err = snappy.Decode(d.raw[:0], payload)
		if err != nil {
			return Header{}, nil, errors.Wrap(err, "packed: snappy payload")
		}
		native = d.raw
	case CodecZstd:
		if d.zdec == nil {
			d.zdec, err = zstd.NewReader(nil)
			if err != nil {
				return Header{}, nil, errors.Wrap(err, "packed: zstd init")
			}
		}
		d.raw, err = d.zdec.DecodeAll(payload, d.raw[:0])
		if err != nil {
			return Header{}, nil, errors.Wrap(err, "packed: zstd payload")
		}
		native = d.raw
	default:
		return Header{}, nil, errors.Wrapf(ErrCodec, "%d", h.Codec)
	}
	if len(native) != int(h.NativeSize) {
		return Header{}, nil, errors.Wrapf(ErrTruncated,
			"native image %d bytes, header says %d", len(native), h.NativeSize)
	}
	return h, native, nil
}
