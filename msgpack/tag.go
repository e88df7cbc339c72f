package msgpack

// Kind is the underlying-type family of a tag, independent of its exact wire
// encoding (e.g. uint8 and uint32 are both KindInt).
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBin
	KindList
	KindMap
	KindExt
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBin:
		return "bin"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindExt:
		return "ext"
	default:
		return "unknown"
	}
}

// Tag is the identity and decoded header values of one tag read from the
// stream: its name, its underlying kind, and whichever of the value fields
// below apply to that kind. Fields outside the tag's kind are zero.
type Tag struct {
	// Name identifies the exact wire encoding, e.g. "+fixint", "uint16",
	// "str8", "array32", "map16", "bin32", "nil", "true".
	Name string

	Kind Kind

	// Int is the decoded value for +fixint/-fixint/int8/int16/int32/int64,
	// sign-extended to 64 bits.
	Int int64

	// Uint is the decoded value for +fixint/uint8/uint16/uint32/uint64.
	Uint uint64

	// Bool is the decoded value for the true/false tags.
	Bool bool

	// Float32 and Float64 hold the decoded value for the corresponding
	// float tag; only one is populated, selected by Name.
	Float32 float32
	Float64 float64

	// Length is the byte length (fixstr/str8/16/32, bin8/16/32,
	// ext8/16/32, fixext1/2/4/8/16) or element count
	// (fixarray/array16/32, fixmap/map16/32) declared in the header. The
	// payload or elements themselves are not consumed by ReadNext.
	Length uint32

	// ExtType is the type id of an ext tag (fixext*/ext8/16/32).
	ExtType int8
}

// IsSignedInt reports whether Tag represents a MessagePack tag whose value
// is more naturally read via Int (as opposed to Uint): the two fixint
// families and the signed intN family.
func (t Tag) IsSignedInt() bool {
	switch t.Name {
	case "+fixint", "-fixint", "int8", "int16", "int32", "int64":
		return true
	default:
		return false
	}
}
