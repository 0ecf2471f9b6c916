package common

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// PutUint writes the low `size` bytes of x into b little-endian. Any
// width within 1..8 is valid; len(b) >= size.
func PutUint(b []byte, x uint64, size int) {
	switch size {
	case 1:
		b[0] = byte(x)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(x))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(x))
	case 8:
		binary.LittleEndian.PutUint64(b, x)
	default:
		for i := 0; i < size; i++ {
			b[i] = byte(x >> (8 * i))
		}
	}
}

// GetUint reads a little-endian unsigned value of the given width from b.
// Any width within 1..8 is valid.
func GetUint(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	default:
		var x uint64
		for i := size - 1; i >= 0; i-- {
			x = x<<8 | uint64(b[i])
		}
		return x
	}
}

// GetInt reads a little-endian signed value, sign-extending from the
// stored width.
func GetInt(b []byte, size int) int64 {
	u := GetUint(b, size)
	shift := uint(64 - size*8)
	return int64(u<<shift) >> shift
}

// PutFloat writes a float of the given width (4 or 8) little-endian.
func PutFloat(b []byte, f float64, size int) {
	switch size {
	case 4:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
	case 8:
		binary.LittleEndian.PutUint64(b, math.Float64bits(f))
	default:
		panic("common: bad float width")
	}
}

// GetFloat reads a float of the given width (4 or 8) little-endian.
func GetFloat(b []byte, size int) float64 {
	switch size {
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		panic("common: bad float width")
	}
}

// Alias helpers reinterpret b as a typed slice without copying. Callers
// guarantee b outlives the result and that len(b) >= n*sizeof(elem).

func AliasU16(b []byte, n int) []uint16 {
	return unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), n)
}

func AliasU32(b []byte, n int) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), n)
}

func AliasU64(b []byte, n int) []uint64 {
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)
}

func AliasI16(b []byte, n int) []int16 {
	return unsafe.Slice((*int16)(unsafe.Pointer(&b[0])), n)
}

func AliasI32(b []byte, n int) []int32 {
	return unsafe.Slice((*int32)(unsafe.Pointer(&b[0])), n)
}

func AliasI64(b []byte, n int) []int64 {
	return unsafe.Slice((*int64)(unsafe.Pointer(&b[0])), n)
}

func AliasF32(b []byte, n int) []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n)
}

func AliasF64(b []byte, n int) []float64 {
	return unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), n)
}
