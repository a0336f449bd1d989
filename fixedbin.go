package fixedbin

import (
	"math/big"
)

// Writer is the sink used by the dynamic-length path.
//
// WriteBytes checks that the sink can hold p and fails with
// errors.KindInvalidSliceLength otherwise. WriteBytesUnchecked skips that
// check and may panic when the sink is too small; callers use it only after
// validating the total length once.
type Writer interface {
	WriteBytes(p []byte) error
	WriteBytesUnchecked(p []byte)
}

// Reader is the source used by the dynamic-length path.
//
// ReadBytes returns the next n bytes or fails with
// errors.KindInvalidSliceLength when fewer are available. The returned slice
// may alias the reader's storage and is valid until the next call.
// ReadBytesUnchecked skips the length check and may panic.
// Remaining reports how many bytes are left, or -1 when unknown (streams).
type Reader interface {
	ReadBytes(n int) ([]byte, error)
	ReadBytesUnchecked(n int) []byte
	Remaining() int
}

// Char is a Unicode scalar value encoded as 4 bytes. A plain rune field
// derives to s32; declare the field as Char to get char semantics.
type Char rune

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Lo uint64
	Hi int64
}

// Uint128From64 widens v.
func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Int128From64 sign-extends v.
func Int128From64(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Lo: uint64(v), Hi: hi}
}

// Big returns u as a big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string {
	return u.Big().String()
}

// Big returns i as a big.Int.
func (i Int128) Big() *big.Int {
	b := new(big.Int).SetInt64(i.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(i.Lo))
}

func (i Int128) String() string {
	return i.Big().String()
}
