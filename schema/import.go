package schema

import (
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

// Import parses data as a .schema document: a MessagePack document whose
// root is a 2-element array [enums, structs], each a map from name to
// definition. It registers every enum, then every struct, into r.
//
// Unlike the schema-directed data decoder, this is an ordinary MessagePack
// decode: the document carries its own keys and values is not our wire
// convention, so a conventional library decoder suffices.
func (r *Registry) Import(data []byte) error {
	var root []interface{}
	if err := msgpack.Unmarshal(data, &root); err != nil {
		return xerrors.Errorf("schema: parse: %v: %w", err, brzerr.ErrFormat)
	}
	if len(root) != 2 {
		return xerrors.Errorf("schema: root must be a 2-element array, got %d: %w", len(root), brzerr.ErrFormat)
	}
	enums, ok := asStringMap(root[0])
	if !ok {
		return xerrors.Errorf("schema: enums element must be a map: %w", brzerr.ErrFormat)
	}
	structs, ok := asStringMap(root[1])
	if !ok {
		return xerrors.Errorf("schema: structs element must be a map: %w", brzerr.ErrFormat)
	}

	for _, name := range sortedKeys(enums) {
		def, err := parseEnumDef(enums[name])
		if err != nil {
			return xerrors.Errorf("schema: enum %q: %w", name, err)
		}
		if err := r.RegisterEnum(name, def); err != nil {
			return err
		}
	}

	if err := r.registerStructsResolvingOrder(structs); err != nil {
		return err
	}
	return nil
}

// registerStructsResolvingOrder registers every struct in structs,
// retrying unregistered definitions across passes until no further
// progress is made. The wire's struct map can declare structs that
// reference each other in any order; a generic MessagePack decode into a
// Go map does not preserve the original key order, so registration order
// is recovered by dependency resolution instead of document order.
func (r *Registry) registerStructsResolvingOrder(structs map[string]interface{}) error {
	pending := make(map[string]interface{}, len(structs))
	for k, v := range structs {
		pending[k] = v
	}

	for len(pending) > 0 {
		progressed := false
		for _, name := range sortedKeys(pending) {
			def, err := parseStructDef(name, pending[name], r)
			if err != nil {
				if xerrors.Is(err, errNotYetResolvable) {
					continue
				}
				return xerrors.Errorf("schema: struct %q: %w", name, err)
			}
			if err := r.RegisterStruct(name, def); err != nil {
				return err
			}
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			names := sortedKeys(pending)
			return xerrors.Errorf("schema: structs %v: unresolved field type(s): %w", names, brzerr.ErrFormat)
		}
	}
	return nil
}

var errNotYetResolvable = xerrors.New("schema: type not yet resolvable")

// parseEnumDef translates a decoded enum definition value (a map from
// symbolic name to primitive value) into an EnumDef.
func parseEnumDef(raw interface{}) (EnumDef, error) {
	m, ok := asStringMap(raw)
	if !ok {
		return EnumDef{}, xerrors.Errorf("definition must be a map: %w", brzerr.ErrFormat)
	}
	if len(m) == 0 {
		return EnumDef{}, xerrors.Errorf("empty: %w", brzerr.ErrFormat)
	}

	names := sortedKeys(m)
	var def EnumDef
	var sawBool, sawInt bool
	for _, name := range names {
		v := m[name]
		switch x := v.(type) {
		case bool:
			sawBool = true
			def.Members = append(def.Members, EnumMember{Name: name, Bool: x})
		default:
			iv, ok := asInt64(v)
			if !ok {
				return EnumDef{}, xerrors.Errorf("member %q: value must be bool or int: %w", name, brzerr.ErrFormat)
			}
			sawInt = true
			def.Members = append(def.Members, EnumMember{Name: name, Int: iv})
		}
	}
	if sawBool && sawInt {
		return EnumDef{}, xerrors.Errorf("members must share one primitive type: %w", brzerr.ErrFormat)
	}
	def.IsBool = sawBool
	return def, nil
}

// parseStructDef translates a decoded struct definition value (a map from
// field name to a string, a 1/2-element array, or a single-entry map)
// into a StructDef. It returns errNotYetResolvable if a field's type name
// does not yet resolve in reg (the caller retries after other structs
// register).
func parseStructDef(structName string, raw interface{}, reg *Registry) (StructDef, error) {
	m, ok := asStringMap(raw)
	if !ok {
		return StructDef{}, xerrors.Errorf("definition must be a map: %w", brzerr.ErrFormat)
	}
	if len(m) == 0 {
		return StructDef{}, xerrors.Errorf("empty: %w", brzerr.ErrFormat)
	}

	def := StructDef{Name: structName}
	for _, fieldName := range sortedKeys(m) {
		prop, err := parseProperty(m[fieldName])
		if err != nil {
			return StructDef{}, xerrors.Errorf("field %q: %w", fieldName, err)
		}
		switch prop.Kind {
		case KindValue, KindArray:
			if !reg.resolves(prop.Type) && !selfReference(prop.Type, structName) {
				return StructDef{}, errNotYetResolvable
			}
		case KindMap:
			if !reg.resolves(prop.KeyType) || !reg.resolves(prop.ValueType) {
				return StructDef{}, errNotYetResolvable
			}
		}
		def.Fields = append(def.Fields, Field{Name: fieldName, Property: prop})
	}
	return def, nil
}

// selfReference allows a struct to reference its own name (self-recursive
// structs are representable in the schema data model even though a
// concrete instance occupying finite wire bytes cannot actually recurse
// infinitely); resolution against the registry still applies once the
// struct itself registers.
func selfReference(typeName, structName string) bool {
	return typeName == structName
}

// parseProperty translates one struct field's raw decoded value into a
// Property: a plain string names a Value, a 1/2-element array names an
// Array, and a single-entry map names a Map.
func parseProperty(raw interface{}) (Property, error) {
	switch x := raw.(type) {
	case string:
		return Property{Kind: KindValue, Type: x}, nil

	case []interface{}:
		if len(x) != 1 && len(x) != 2 {
			return Property{}, xerrors.Errorf("array descriptor must have 1 or 2 elements, got %d: %w", len(x), brzerr.ErrFormat)
		}
		itemType, ok := x[0].(string)
		if !ok {
			return Property{}, xerrors.Errorf("array descriptor element type must be a string: %w", brzerr.ErrFormat)
		}
		flat := len(x) == 2 && x[1] == nil
		return Property{Kind: KindArray, Type: itemType, Flat: flat}, nil

	case map[string]interface{}:
		if len(x) != 1 {
			return Property{}, xerrors.Errorf("map descriptor must have exactly one entry, got %d: %w", len(x), brzerr.ErrFormat)
		}
		for k, v := range x {
			vs, ok := v.(string)
			if !ok {
				return Property{}, xerrors.Errorf("map descriptor value type must be a string: %w", brzerr.ErrFormat)
			}
			return Property{Kind: KindMap, KeyType: k, ValueType: vs}, nil
		}
	}
	return Property{}, xerrors.Errorf("unrecognized field descriptor shape %T: %w", raw, brzerr.ErrFormat)
}

func asStringMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	default:
		return 0, false
	}
}
