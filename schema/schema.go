// Package schema parses a .schema MessagePack document into an enum table
// and a struct table of typed property descriptors, and exposes them to
// the decode package by name.
package schema

import (
	"sort"

	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

// PrimitiveType is one of the built-in wire type names a property
// descriptor or enum member can resolve to.
type PrimitiveType string

const (
	Bool   PrimitiveType = "bool"
	U8     PrimitiveType = "u8"
	U16    PrimitiveType = "u16"
	U32    PrimitiveType = "u32"
	U64    PrimitiveType = "u64"
	I8     PrimitiveType = "i8"
	I16    PrimitiveType = "i16"
	I32    PrimitiveType = "i32"
	I64    PrimitiveType = "i64"
	F32    PrimitiveType = "f32"
	F64    PrimitiveType = "f64"
	Str    PrimitiveType = "str"
	Object PrimitiveType = "object"
	Class  PrimitiveType = "class"
)

var primitiveTypes = map[PrimitiveType]bool{
	Bool: true, U8: true, U16: true, U32: true, U64: true,
	I8: true, I16: true, I32: true, I64: true,
	F32: true, F64: true, Str: true, Object: true, Class: true,
}

// IsPrimitive reports whether name is a built-in primitive type name.
func IsPrimitive(name string) bool {
	return primitiveTypes[PrimitiveType(name)]
}

// FixedWidth returns the little-endian element width, in bytes, of a
// primitive type when used inside a flat array. str is not permitted in
// flat arrays and has no fixed width; enum and struct names are not
// primitives and also report false.
func FixedWidth(name string) (int, bool) {
	switch PrimitiveType(name) {
	case Bool, U8, I8:
		return 1, true
	case U16, I16:
		return 2, true
	case U32, I32, Object, Class:
		return 4, true
	case U64, I64:
		return 8, true
	case F32:
		return 4, true
	case F64:
		return 8, true
	default:
		return 0, false
	}
}

// EnumDef is a registered enum: a mapping from symbolic name to a primitive
// value, all values sharing one primitive type (bool or an integer width).
type EnumDef struct {
	Name string

	// IsBool is true when the enum's values are bool; otherwise they are
	// integers stored in Members[i].Int.
	IsBool bool

	Members []EnumMember
}

// EnumMember is one name/value pair of an EnumDef, in declaration order.
type EnumMember struct {
	Name string
	Bool bool
	Int  int64
}

// ResolveInt returns the symbolic name whose integer value equals v, for a
// non-bool enum.
func (e EnumDef) ResolveInt(v int64) (string, bool) {
	for _, m := range e.Members {
		if m.Int == v {
			return m.Name, true
		}
	}
	return "", false
}

// ResolveBool returns the symbolic name whose bool value equals v, for a
// bool enum.
func (e EnumDef) ResolveBool(v bool) (string, bool) {
	for _, m := range e.Members {
		if m.Bool == v {
			return m.Name, true
		}
	}
	return "", false
}

// PropertyKind distinguishes the three shapes a struct field descriptor
// can take.
type PropertyKind int

const (
	KindValue PropertyKind = iota
	KindArray
	KindMap
)

// Property is one field's type descriptor within a StructDef.
type Property struct {
	Kind PropertyKind

	// Type is the value/element type name for KindValue and KindArray.
	Type string

	// Flat is set for KindArray: true when the array is encoded as one
	// packed byte buffer rather than a per-element tag sequence.
	Flat bool

	// KeyType/ValueType apply to KindMap only.
	KeyType   string
	ValueType string
}

// Field is one named entry of a StructDef, in declaration order (which is
// also wire order).
type Field struct {
	Name     string
	Property Property
}

// StructDef is a registered struct: an ordered mapping from field name to
// property descriptor.
type StructDef struct {
	Name   string
	Fields []Field
}

// Registry accumulates enum and struct definitions via RegisterEnum,
// RegisterStruct, and Import, then is treated as read-only during decode.
type Registry struct {
	enums       map[string]EnumDef
	structs     map[string]StructDef
	structOrder []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		enums:   make(map[string]EnumDef),
		structs: make(map[string]StructDef),
	}
}

// Enum looks up a registered enum by name.
func (r *Registry) Enum(name string) (EnumDef, bool) {
	e, ok := r.enums[name]
	return e, ok
}

// Struct looks up a registered struct by name.
func (r *Registry) Struct(name string) (StructDef, bool) {
	s, ok := r.structs[name]
	return s, ok
}

// resolves reports whether typeName can be used as a field/element/key
// type: a primitive, or an already-registered enum or struct.
func (r *Registry) resolves(typeName string) bool {
	if IsPrimitive(typeName) {
		return true
	}
	if _, ok := r.enums[typeName]; ok {
		return true
	}
	if _, ok := r.structs[typeName]; ok {
		return true
	}
	return false
}

// RegisterEnum validates and registers def under name. def's values must
// be pairwise distinct and share one primitive type.
func (r *Registry) RegisterEnum(name string, def EnumDef) error {
	if _, exists := r.enums[name]; exists {
		return xerrors.Errorf("schema: enum %q: %w", name, brzerr.ErrDuplicate)
	}
	if _, exists := r.structs[name]; exists {
		return xerrors.Errorf("schema: enum %q collides with registered struct: %w", name, brzerr.ErrDuplicate)
	}
	if len(def.Members) == 0 {
		return xerrors.Errorf("schema: enum %q: empty: %w", name, brzerr.ErrFormat)
	}
	if def.IsBool {
		seen := map[bool]bool{}
		for _, m := range def.Members {
			if seen[m.Bool] {
				return xerrors.Errorf("schema: enum %q: duplicate value %v: %w", name, m.Bool, brzerr.ErrFormat)
			}
			seen[m.Bool] = true
		}
	} else {
		seen := map[int64]bool{}
		for _, m := range def.Members {
			if seen[m.Int] {
				return xerrors.Errorf("schema: enum %q: duplicate value %v: %w", name, m.Int, brzerr.ErrFormat)
			}
			seen[m.Int] = true
		}
	}
	def.Name = name
	r.enums[name] = def
	return nil
}

// RegisterStruct validates and registers def under name. Every field's
// declared type must already resolve against primitives and previously
// registered enums/structs, except that a value or array field may name
// the struct being registered itself.
func (r *Registry) RegisterStruct(name string, def StructDef) error {
	if _, exists := r.structs[name]; exists {
		return xerrors.Errorf("schema: struct %q: %w", name, brzerr.ErrDuplicate)
	}
	if _, exists := r.enums[name]; exists {
		return xerrors.Errorf("schema: struct %q collides with registered enum: %w", name, brzerr.ErrDuplicate)
	}
	if len(def.Fields) == 0 {
		return xerrors.Errorf("schema: struct %q: empty: %w", name, brzerr.ErrFormat)
	}
	for _, f := range def.Fields {
		switch f.Property.Kind {
		case KindValue, KindArray:
			if f.Property.Type != name && !r.resolves(f.Property.Type) {
				return xerrors.Errorf("schema: struct %q field %q: unresolved type %q: %w", name, f.Name, f.Property.Type, brzerr.ErrFormat)
			}
		case KindMap:
			if PrimitiveType(f.Property.KeyType) == Object || PrimitiveType(f.Property.KeyType) == Class {
				return xerrors.Errorf("schema: struct %q field %q: map key type %q not allowed: %w", name, f.Name, f.Property.KeyType, brzerr.ErrValue)
			}
			if !IsPrimitive(f.Property.KeyType) {
				if _, isStruct := r.structs[f.Property.KeyType]; isStruct {
					return xerrors.Errorf("schema: struct %q field %q: map key type %q must not be a struct: %w", name, f.Name, f.Property.KeyType, brzerr.ErrValue)
				}
			}
			if !r.resolves(f.Property.KeyType) {
				return xerrors.Errorf("schema: struct %q field %q: unresolved key type %q: %w", name, f.Name, f.Property.KeyType, brzerr.ErrFormat)
			}
			if !r.resolves(f.Property.ValueType) {
				return xerrors.Errorf("schema: struct %q field %q: unresolved value type %q: %w", name, f.Name, f.Property.ValueType, brzerr.ErrFormat)
			}
		}
	}
	def.Name = name
	r.structs[name] = def
	r.structOrder = append(r.structOrder, name)
	return nil
}

// LatestSoARoot returns the most recently registered struct whose name
// ends in "SoA" ("structure-of-arrays"), the decoder's default root
// struct when none is named explicitly.
func (r *Registry) LatestSoARoot() (string, bool) {
	for i := len(r.structOrder) - 1; i >= 0; i-- {
		name := r.structOrder[i]
		if hasSoASuffix(name) {
			return name, true
		}
	}
	return "", false
}

func hasSoASuffix(name string) bool {
	const suffix = "SoA"
	return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
}

// sortedKeys is a small helper used by Import to register enums/structs in
// a deterministic order (map iteration order is not defined by Go, and the
// wire's own map key order is not preserved by the generic MessagePack
// decode used to parse the schema document itself).
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
