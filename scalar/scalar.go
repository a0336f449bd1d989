// Package scalar encodes primitive values to their fixed little-endian form.
//
// Every function is pure. Integers and floats accept every bit pattern;
// bool decodes any nonzero byte as true; char rejects values that are not
// Unicode scalar values with errors.KindInvalidChar.
package scalar

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
)

func EncodeU8(v uint8) [1]byte { return [1]byte{v} }
func DecodeU8(b [1]byte) uint8 { return b[0] }
func EncodeI8(v int8) [1]byte { return [1]byte{byte(v)} }
func DecodeI8(b [1]byte) int8 { return int8(b[0]) }
func EncodeBool(v bool) [1]byte { return [1]byte{boolByte(v)} }
func DecodeBool(b [1]byte) bool { return b[0] != 0 }
func EncodeU16(v uint16) [2]byte { return [2]byte{byte(v), byte(v >> 8)} }
func DecodeU16(b [2]byte) uint16 { return binary.LittleEndian.Uint16(b[:]) }
func EncodeI16(v int16) [2]byte { return EncodeU16(uint16(v)) }
func DecodeI16(b [2]byte) int16 { return int16(DecodeU16(b)) }

func EncodeU32(v uint32) (b [4]byte) {
	binary.LittleEndian.PutUint32(b[:], v)
	return b
}

func DecodeU32(b [4]byte) uint32 { return binary.LittleEndian.Uint32(b[:]) }
func EncodeI32(v int32) [4]byte { return EncodeU32(uint32(v)) }
func DecodeI32(b [4]byte) int32 { return int32(DecodeU32(b)) }

func EncodeU64(v uint64) (b [8]byte) {
	binary.LittleEndian.PutUint64(b[:], v)
	return b
}

func DecodeU64(b [8]byte) uint64 { return binary.LittleEndian.Uint64(b[:]) }
func EncodeI64(v int64) [8]byte { return EncodeU64(uint64(v)) }
func DecodeI64(b [8]byte) int64 { return int64(DecodeU64(b)) }

// EncodeU128 writes the low half first.
func EncodeU128(v fixedbin.Uint128) (b [16]byte) {
	PutU128(b[:], v)
	return b
}

func DecodeU128(b [16]byte) fixedbin.Uint128 { return U128(b[:]) }

func EncodeI128(v fixedbin.Int128) (b [16]byte) {
	PutI128(b[:], v)
	return b
}

func DecodeI128(b [16]byte) fixedbin.Int128 { return I128(b[:]) }

// EncodeF32 writes the IEEE-754 bits unchanged; NaN payloads are preserved.
func EncodeF32(v float32) [4]byte { return EncodeU32(math.Float32bits(v)) }
func DecodeF32(b [4]byte) float32 { return math.Float32frombits(DecodeU32(b)) }
func EncodeF64(v float64) [8]byte { return EncodeU64(math.Float64bits(v)) }
func DecodeF64(b [8]byte) float64 { return math.Float64frombits(DecodeU64(b)) }

// EncodeChar fails for surrogates and values above 0x10FFFF.
func EncodeChar(r rune) ([4]byte, error) {
	if !abi.ValidateChar(r) {
		return [4]byte{}, errors.InvalidChar(errors.PhaseEncode, nil, uint32(r))
	}
	return EncodeU32(uint32(r)), nil
}

func DecodeChar(b [4]byte) (rune, error) {
	return Char(b[:])
}

// Slice forms used by the codecs. Callers guarantee len(b) covers the value.

func PutU128(b []byte, v fixedbin.Uint128) {
	binary.LittleEndian.PutUint64(b[0:8], v.Lo)
	binary.LittleEndian.PutUint64(b[8:16], v.Hi)
}

func U128(b []byte) fixedbin.Uint128 {
	return fixedbin.Uint128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

func PutI128(b []byte, v fixedbin.Int128) {
	binary.LittleEndian.PutUint64(b[0:8], v.Lo)
	binary.LittleEndian.PutUint64(b[8:16], uint64(v.Hi))
}

func I128(b []byte) fixedbin.Int128 {
	return fixedbin.Int128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: int64(binary.LittleEndian.Uint64(b[8:16])),
	}
}

// PutChar validates r and writes it to b[0:4].
func PutChar(b []byte, r rune) error {
	if !abi.ValidateChar(r) {
		return errors.InvalidChar(errors.PhaseEncode, nil, uint32(r))
	}
	binary.LittleEndian.PutUint32(b, uint32(r))
	return nil
}

// Char reads and validates a char from b[0:4].
func Char(b []byte) (rune, error) {
	v := binary.LittleEndian.Uint32(b)
	if v > math.MaxInt32 || !abi.ValidateChar(rune(v)) {
		return 0, errors.InvalidChar(errors.PhaseDecode, nil, v)
	}
	return rune(v), nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
