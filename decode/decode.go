package decode

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
	"github.com/mitterdoo/brdb/msgpack"
	"github.com/mitterdoo/brdb/schema"
)

// Unpack decodes source against the struct named rootStruct in reg,
// producing a document tree. If rootStruct is empty, the most recently
// registered struct whose name ends in "SoA" is used. The entire
// tag stream addressed by source must be consumed by the end of decoding;
// any error aborts the whole operation and no partial document is
// returned.
func Unpack(source io.Reader, reg *schema.Registry, rootStruct string) (*Document, error) {
	if rootStruct == "" {
		name, ok := reg.LatestSoARoot()
		if !ok {
			return nil, xerrors.Errorf("decode: no root struct given and no registered *SoA struct: %w", brzerr.ErrValue)
		}
		rootStruct = name
	}
	if _, ok := reg.Struct(rootStruct); !ok {
		return nil, xerrors.Errorf("decode: unknown root struct %q: %w", rootStruct, brzerr.ErrValue)
	}

	tr := msgpack.NewTagReader(source)
	root, err := decodeValue(tr, reg, rootStruct)
	if err != nil {
		return nil, err
	}

	if err := expectEOF(source); err != nil {
		return nil, err
	}

	return &Document{Root: root}, nil
}

// expectEOF fails with brzerr.ErrFormat if r has any bytes left: the tag
// stream must be fully consumed once the root struct finishes decoding,
// or the document and schema have drifted out of sync.
func expectEOF(r io.Reader) error {
	var b [1]byte
	n, err := r.Read(b[:])
	if err == io.EOF || (err == nil && n == 0) {
		return nil
	}
	if err != nil {
		return xerrors.Errorf("decode: checking for trailing bytes: %v", err)
	}
	return xerrors.Errorf("decode: trailing bytes after root struct: %w", brzerr.ErrFormat)
}

// decodeValue decodes one value of the named type: a struct (fields
// flattened into the stream with no wrapper tag), an enum (one tag,
// resolved to its symbolic name), or a primitive (one tag, promoted per
// the compatibility table).
func decodeValue(tr *msgpack.TagReader, reg *schema.Registry, typeName string) (*Node, error) {
	if structDef, ok := reg.Struct(typeName); ok {
		return decodeStruct(tr, reg, structDef)
	}
	if enumDef, ok := reg.Enum(typeName); ok {
		return decodeEnum(tr, enumDef)
	}
	return decodePrimitive(tr, typeName)
}

func decodeStruct(tr *msgpack.TagReader, reg *schema.Registry, def schema.StructDef) (*Node, error) {
	branch := newStructBranch()
	for _, field := range def.Fields {
		child, err := decodeProperty(tr, reg, field.Property)
		if err != nil {
			return nil, xerrors.Errorf("decode: struct %q field %q: %w", def.Name, field.Name, err)
		}
		branch.setField(field.Name, child)
	}
	return &Node{Kind: KindBranch, Branch: branch}, nil
}

func decodeProperty(tr *msgpack.TagReader, reg *schema.Registry, prop schema.Property) (*Node, error) {
	switch prop.Kind {
	case schema.KindValue:
		return decodeValue(tr, reg, prop.Type)
	case schema.KindArray:
		if prop.Flat {
			return decodeFlatArray(tr, reg, prop.Type)
		}
		return decodeBoxedArray(tr, reg, prop.Type)
	case schema.KindMap:
		return decodeMap(tr, reg, prop.KeyType, prop.ValueType)
	default:
		return nil, xerrors.Errorf("decode: unknown property kind %d: %w", prop.Kind, brzerr.ErrValue)
	}
}

func decodeEnum(tr *msgpack.TagReader, def schema.EnumDef) (*Node, error) {
	tag, err := tr.ReadNext()
	if err != nil {
		return nil, err
	}
	if def.IsBool {
		if tag.Kind != msgpack.KindBool {
			return nil, xerrors.Errorf("decode: enum %q: tag %q is not bool-kind: %w", def.Name, tag.Name, brzerr.ErrFormat)
		}
		name, ok := def.ResolveBool(tag.Bool)
		if !ok {
			return nil, xerrors.Errorf("decode: enum %q: value %v not in table: %w", def.Name, tag.Bool, brzerr.ErrValue)
		}
		return &Node{Kind: KindSymbol, Str: name}, nil
	}
	if tag.Kind != msgpack.KindInt {
		return nil, xerrors.Errorf("decode: enum %q: tag %q is not int-kind: %w", def.Name, tag.Name, brzerr.ErrFormat)
	}
	v := tag.Int
	if !tag.IsSignedInt() {
		v = int64(tag.Uint)
	}
	name, ok := def.ResolveInt(v)
	if !ok {
		return nil, xerrors.Errorf("decode: enum %q: value %d not in table: %w", def.Name, v, brzerr.ErrValue)
	}
	return &Node{Kind: KindSymbol, Str: name}, nil
}

func decodeBoxedArray(tr *msgpack.TagReader, reg *schema.Registry, itemType string) (*Node, error) {
	tag, err := tr.ReadNext()
	if err != nil {
		return nil, err
	}
	if tag.Kind != msgpack.KindList {
		return nil, xerrors.Errorf("decode: array: tag %q is not list-kind: %w", tag.Name, brzerr.ErrFormat)
	}
	seq := make([]*Node, 0, tag.Length)
	for i := uint32(0); i < tag.Length; i++ {
		elem, err := decodeValue(tr, reg, itemType)
		if err != nil {
			return nil, xerrors.Errorf("decode: array element %d: %w", i, err)
		}
		seq = append(seq, elem)
	}
	return &Node{Kind: KindSequence, Sequence: seq}, nil
}

func decodeMap(tr *msgpack.TagReader, reg *schema.Registry, keyType, valueType string) (*Node, error) {
	tag, err := tr.ReadNext()
	if err != nil {
		return nil, err
	}
	if tag.Kind != msgpack.KindMap {
		return nil, xerrors.Errorf("decode: map: tag %q is not map-kind: %w", tag.Name, brzerr.ErrFormat)
	}
	branch := newMapBranch()
	for i := uint32(0); i < tag.Length; i++ {
		key, err := decodeValue(tr, reg, keyType)
		if err != nil {
			return nil, xerrors.Errorf("decode: map entry %d key: %w", i, err)
		}
		value, err := decodeValue(tr, reg, valueType)
		if err != nil {
			return nil, xerrors.Errorf("decode: map entry %d value: %w", i, err)
		}
		branch.appendMapEntry(key, value)
	}
	return &Node{Kind: KindBranch, Branch: branch}, nil
}

// decodePrimitive reads one tag and promotes it to expected, per the
// tag compatibility table below.
func decodePrimitive(tr *msgpack.TagReader, expected string) (*Node, error) {
	tag, err := tr.ReadNext()
	if err != nil {
		return nil, err
	}
	if !tagAllowed(expected, tag.Name) {
		return nil, xerrors.Errorf("decode: expected %s, got tag %q: %w", expected, tag.Name, brzerr.ErrFormat)
	}

	switch schema.PrimitiveType(expected) {
	case schema.Bool:
		return &Node{Kind: KindBool, Bool: tag.Bool}, nil

	case schema.U8, schema.U16, schema.U32, schema.U64:
		v := tag.Uint
		if tag.Name == "+fixint" {
			v = uint64(tag.Int)
		}
		return &Node{Kind: KindUint, Uint: v}, nil

	case schema.I8, schema.I16, schema.I32, schema.I64:
		v := tag.Int
		if !tag.IsSignedInt() {
			v = int64(tag.Uint)
		}
		return &Node{Kind: KindInt, Int: v}, nil

	case schema.F32:
		return &Node{Kind: KindFloat32, Float32: tagAsFloat32(tag)}, nil

	case schema.F64:
		return &Node{Kind: KindFloat64, Float64: tagAsFloat64(tag)}, nil

	case schema.Str:
		payload, err := tr.ReadPayload(tag.Length)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindString, Str: string(payload)}, nil

	case schema.Object, schema.Class:
		v := tag.Int
		if !tag.IsSignedInt() {
			v = int64(tag.Uint)
		}
		return &Node{Kind: KindObject, Object: int32(v)}, nil

	default:
		return nil, xerrors.Errorf("decode: unknown primitive type %q: %w", expected, brzerr.ErrValue)
	}
}

func tagAsFloat32(tag msgpack.Tag) float32 {
	if tag.Name == "float32" {
		return tag.Float32
	}
	if tag.IsSignedInt() {
		return float32(tag.Int)
	}
	return float32(tag.Uint)
}

func tagAsFloat64(tag msgpack.Tag) float64 {
	switch tag.Name {
	case "float32":
		return float64(tag.Float32)
	case "float64":
		return tag.Float64
	}
	if tag.IsSignedInt() {
		return float64(tag.Int)
	}
	return float64(tag.Uint)
}

// tagAllowed reports whether tagName is a permitted wire encoding for the
// declared type expected.
func tagAllowed(expected, tagName string) bool {
	switch schema.PrimitiveType(expected) {
	case schema.Bool:
		return tagName == "true" || tagName == "false"
	case schema.U8:
		return setU8[tagName]
	case schema.U16:
		return setU16[tagName]
	case schema.U32:
		return setU32[tagName]
	case schema.U64:
		return setU64[tagName]
	case schema.I8:
		return setI8[tagName]
	case schema.I16:
		return setI16[tagName]
	case schema.I32:
		return setI32[tagName]
	case schema.I64:
		return setI64[tagName]
	case schema.F32:
		return setF32[tagName]
	case schema.F64:
		return setF64[tagName]
	case schema.Str:
		return tagName == "fixstr" || tagName == "str8" || tagName == "str16" || tagName == "str32"
	case schema.Object, schema.Class:
		return setObject[tagName]
	default:
		return false
	}
}

func tagSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// The promotion table is monotone in width: each wider unsigned/signed set
// is the narrower one plus its own native tags.
var (
	setU8  = tagSet("+fixint", "uint8")
	setU16 = union(setU8, tagSet("uint16"))
	setU32 = union(setU16, tagSet("uint32"))
	setU64 = union(setU32, tagSet("uint64"))

	setI8  = tagSet("+fixint", "-fixint", "int8", "uint8")
	setI16 = union(setI8, tagSet("int16", "uint16"))
	setI32 = union(setI16, tagSet("int32", "uint32"))
	setI64 = union(setI32, tagSet("int64"))

	setF32 = union(setI16, tagSet("float32"))
	setF64 = union(setI32, tagSet("float32", "float64"))

	setObject = union(setI32, map[string]bool{})
)

func union(sets ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, s := range sets {
		for k := range s {
			out[k] = true
		}
	}
	return out
}

// flatElementWidth returns the little-endian byte width of typeName when
// used as a flat-array element: primitives per their fixed width, enums
// always as 64-bit unsigned regardless of the enum's declared member
// type, and structs as the sum of their fields' widths. A struct element's
// fields must be plain primitive or enum values; array, map, and nested
// struct fields are rejected with brzerr.ErrFormat.
func flatElementWidth(reg *schema.Registry, typeName string) (int, error) {
	if _, ok := reg.Enum(typeName); ok {
		return 8, nil
	}
	if structDef, ok := reg.Struct(typeName); ok {
		total := 0
		for _, field := range structDef.Fields {
			if field.Property.Kind != schema.KindValue {
				return 0, xerrors.Errorf("decode: flat array element struct %q field %q: must be a plain value field: %w", structDef.Name, field.Name, brzerr.ErrFormat)
			}
			if _, nested := reg.Struct(field.Property.Type); nested {
				return 0, xerrors.Errorf("decode: flat array element struct %q field %q: nested struct %q not allowed: %w", structDef.Name, field.Name, field.Property.Type, brzerr.ErrFormat)
			}
			w, err := flatElementWidth(reg, field.Property.Type)
			if err != nil {
				return 0, err
			}
			total += w
		}
		return total, nil
	}
	w, ok := schema.FixedWidth(typeName)
	if !ok {
		return 0, xerrors.Errorf("decode: type %q has no fixed width for a flat array: %w", typeName, brzerr.ErrFormat)
	}
	return w, nil
}

func decodeFlatArray(tr *msgpack.TagReader, reg *schema.Registry, itemType string) (*Node, error) {
	tag, err := tr.ReadNext()
	if err != nil {
		return nil, err
	}
	if tag.Kind != msgpack.KindBin {
		return nil, xerrors.Errorf("decode: flat array: tag %q is not bin-kind: %w", tag.Name, brzerr.ErrFormat)
	}
	stride, err := flatElementWidth(reg, itemType)
	if err != nil {
		return nil, err
	}
	if stride == 0 || int(tag.Length)%stride != 0 {
		return nil, xerrors.Errorf("decode: flat array: buffer length %d not divisible by element width %d: %w", tag.Length, stride, brzerr.ErrFormat)
	}
	count := int(tag.Length) / stride

	payload, err := tr.ReadPayload(tag.Length)
	if err != nil {
		return nil, err
	}

	seq := make([]*Node, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		elem, err := decodeFlatElement(reg, itemType, payload[offset:offset+stride])
		if err != nil {
			return nil, xerrors.Errorf("decode: flat array element %d: %w", i, err)
		}
		seq = append(seq, elem)
		offset += stride
	}
	return &Node{Kind: KindSequence, Sequence: seq}, nil
}

func decodeFlatElement(reg *schema.Registry, typeName string, buf []byte) (*Node, error) {
	if enumDef, ok := reg.Enum(typeName); ok {
		v := binary.LittleEndian.Uint64(buf)
		if enumDef.IsBool {
			name, ok := enumDef.ResolveBool(v != 0)
			if !ok {
				return nil, xerrors.Errorf("decode: enum %q: value %d not in table: %w", enumDef.Name, v, brzerr.ErrValue)
			}
			return &Node{Kind: KindSymbol, Str: name}, nil
		}
		name, ok := enumDef.ResolveInt(int64(v))
		if !ok {
			return nil, xerrors.Errorf("decode: enum %q: value %d not in table: %w", enumDef.Name, v, brzerr.ErrValue)
		}
		return &Node{Kind: KindSymbol, Str: name}, nil
	}

	if structDef, ok := reg.Struct(typeName); ok {
		branch := newStructBranch()
		offset := 0
		for _, field := range structDef.Fields {
			w, err := flatElementWidth(reg, field.Property.Type)
			if err != nil {
				return nil, err
			}
			node, err := decodeFlatElement(reg, field.Property.Type, buf[offset:offset+w])
			if err != nil {
				return nil, err
			}
			branch.setField(field.Name, node)
			offset += w
		}
		return &Node{Kind: KindBranch, Branch: branch}, nil
	}

	return decodeFlatPrimitive(typeName, buf)
}

func decodeFlatPrimitive(typeName string, buf []byte) (*Node, error) {
	switch schema.PrimitiveType(typeName) {
	case schema.Bool:
		return &Node{Kind: KindBool, Bool: buf[0] != 0}, nil
	case schema.U8:
		return &Node{Kind: KindUint, Uint: uint64(buf[0])}, nil
	case schema.I8:
		return &Node{Kind: KindInt, Int: int64(int8(buf[0]))}, nil
	case schema.U16:
		return &Node{Kind: KindUint, Uint: uint64(binary.LittleEndian.Uint16(buf))}, nil
	case schema.I16:
		return &Node{Kind: KindInt, Int: int64(int16(binary.LittleEndian.Uint16(buf)))}, nil
	case schema.U32:
		return &Node{Kind: KindUint, Uint: uint64(binary.LittleEndian.Uint32(buf))}, nil
	case schema.I32:
		return &Node{Kind: KindInt, Int: int64(int32(binary.LittleEndian.Uint32(buf)))}, nil
	case schema.U64:
		return &Node{Kind: KindUint, Uint: binary.LittleEndian.Uint64(buf)}, nil
	case schema.I64:
		return &Node{Kind: KindInt, Int: int64(binary.LittleEndian.Uint64(buf))}, nil
	case schema.F32:
		return &Node{Kind: KindFloat32, Float32: math.Float32frombits(binary.LittleEndian.Uint32(buf))}, nil
	case schema.F64:
		return &Node{Kind: KindFloat64, Float64: math.Float64frombits(binary.LittleEndian.Uint64(buf))}, nil
	case schema.Object, schema.Class:
		return &Node{Kind: KindObject, Object: int32(binary.LittleEndian.Uint32(buf))}, nil
	default:
		return nil, xerrors.Errorf("decode: type %q not valid inside a flat array: %w", typeName, brzerr.ErrFormat)
	}
}
