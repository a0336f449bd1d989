package abi

import (
	"encoding/binary"
	"math"
)

// DiscriminantSize: smallest unsigned width whose range covers numCases.
// 1 byte for <=255 cases, 2 for <=65535, 4 for <=2^32-1, else 8.
func DiscriminantSize(numCases int) int {
	switch {
	case numCases <= math.MaxUint8:
		return 1
	case numCases <= math.MaxUint16:
		return 2
	case uint64(numCases) <= math.MaxUint32:
		return 4
	default:
		return 8
	}
}

// PutDiscriminant writes v as a size-byte little-endian integer at b[0:size].
// For size 16 the upper 8 bytes are zeroed.
func PutDiscriminant(b []byte, size int, v uint64) {
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	case 16:
		binary.LittleEndian.PutUint64(b, v)
		clear(b[8:16])
	default:
		panic("abi: invalid discriminant size")
	}
}

// ReadDiscriminant reads a size-byte little-endian discriminant from b.
// A 16-byte discriminant with nonzero upper half reports math.MaxUint64,
// which is out of range for every union.
func ReadDiscriminant(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	case 16:
		if binary.LittleEndian.Uint64(b[8:16]) != 0 {
			return math.MaxUint64
		}
		return binary.LittleEndian.Uint64(b)
	default:
		panic("abi: invalid discriminant size")
	}
}
