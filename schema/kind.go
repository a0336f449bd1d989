package schema

type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindU128
	KindS128
	KindF32
	KindF64
	KindChar
	KindArray
	KindRecord
	KindUnion
	KindString
	KindBytes
	KindList
)

var kindNames = [...]string{
	KindBool:   "bool",
	KindU8:     "u8",
	KindS8:     "s8",
	KindU16:    "u16",
	KindS16:    "s16",
	KindU32:    "u32",
	KindS32:    "s32",
	KindU64:    "u64",
	KindS64:    "s64",
	KindU128:   "u128",
	KindS128:   "s128",
	KindF32:    "f32",
	KindF64:    "f64",
	KindChar:   "char",
	KindArray:  "array",
	KindRecord: "record",
	KindUnion:  "union",
	KindString: "string",
	KindBytes:  "bytes",
	KindList:   "list",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsPrimitive() bool {
	return k <= KindChar
}

// IsDynamic reports whether values of this kind carry a length prefix.
func (k Kind) IsDynamic() bool {
	return k >= KindString && k <= KindList
}

// PrimitiveSize returns the natural width of a primitive kind, or 0.
func (k Kind) PrimitiveSize() int {
	switch k {
	case KindBool, KindU8, KindS8:
		return 1
	case KindU16, KindS16:
		return 2
	case KindU32, KindS32, KindF32, KindChar:
		return 4
	case KindU64, KindS64, KindF64:
		return 8
	case KindU128, KindS128:
		return 16
	default:
		return 0
	}
}
