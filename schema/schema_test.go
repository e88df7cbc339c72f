package schema

import (
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := msgpack.Marshal(v)
	if err != nil {
		t.Fatalf("msgpack.Marshal: %v", err)
	}
	return b
}

func TestImportBasic(t *testing.T) {
	doc := []interface{}{
		map[string]interface{}{ // enums
			"Color": map[string]interface{}{"Red": 0, "Green": 1, "Blue": 2},
		},
		map[string]interface{}{ // structs
			"Point": map[string]interface{}{
				"x": "i32",
				"y": "i32",
			},
			"Shape": map[string]interface{}{
				"color":    "Color",
				"vertices": []interface{}{"Point"},
			},
		},
	}

	r := NewRegistry()
	if err := r.Import(mustMarshal(t, doc)); err != nil {
		t.Fatalf("Import: %v", err)
	}

	color, ok := r.Enum("Color")
	if !ok {
		t.Fatal("Color: not registered")
	}
	if name, ok := color.ResolveInt(1); !ok || name != "Green" {
		t.Errorf("ResolveInt(1) = (%q, %v), want (Green, true)", name, ok)
	}

	point, ok := r.Struct("Point")
	if !ok {
		t.Fatal("Point: not registered")
	}
	if len(point.Fields) != 2 {
		t.Fatalf("Point fields = %d, want 2", len(point.Fields))
	}

	shape, ok := r.Struct("Shape")
	if !ok {
		t.Fatal("Shape: not registered")
	}
	var vertices Field
	for _, f := range shape.Fields {
		if f.Name == "vertices" {
			vertices = f
		}
	}
	if vertices.Property.Kind != KindArray || vertices.Property.Type != "Point" || vertices.Property.Flat {
		t.Errorf("vertices field = %+v, want boxed array of Point", vertices.Property)
	}
}

func TestImportForwardReference(t *testing.T) {
	// "Node" references "Node" (itself) through a list, and is declared
	// before nothing else exists to resolve against but itself.
	doc := []interface{}{
		map[string]interface{}{},
		map[string]interface{}{
			"Node": map[string]interface{}{
				"value":    "i32",
				"children": []interface{}{"Node", nil},
			},
		},
	}

	r := NewRegistry()
	if err := r.Import(mustMarshal(t, doc)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	node, ok := r.Struct("Node")
	if !ok {
		t.Fatal("Node: not registered")
	}
	for _, f := range node.Fields {
		if f.Name == "children" && !f.Property.Flat {
			t.Errorf("children: Flat = false, want true")
		}
	}
}

func TestImportUnresolvedType(t *testing.T) {
	doc := []interface{}{
		map[string]interface{}{},
		map[string]interface{}{
			"Bad": map[string]interface{}{"x": "DoesNotExist"},
		},
	}
	r := NewRegistry()
	err := r.Import(mustMarshal(t, doc))
	if err == nil {
		t.Fatal("Import: expected error, got nil")
	}
	if !errors.Is(err, brzerr.ErrFormat) {
		t.Errorf("Import: got %v, want ErrFormat", err)
	}
}

func TestImportMapField(t *testing.T) {
	doc := []interface{}{
		map[string]interface{}{},
		map[string]interface{}{
			"Table": map[string]interface{}{
				"entries": map[string]interface{}{"u32": "str"},
			},
		},
	}
	r := NewRegistry()
	if err := r.Import(mustMarshal(t, doc)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	table, ok := r.Struct("Table")
	if !ok {
		t.Fatal("Table: not registered")
	}
	prop := table.Fields[0].Property
	if prop.Kind != KindMap || prop.KeyType != "u32" || prop.ValueType != "str" {
		t.Errorf("entries field = %+v, want map[u32]str", prop)
	}
}

func TestRegisterEnumDuplicateValue(t *testing.T) {
	r := NewRegistry()
	err := r.RegisterEnum("Bad", EnumDef{Members: []EnumMember{
		{Name: "A", Int: 1},
		{Name: "B", Int: 1},
	}})
	if !errors.Is(err, brzerr.ErrFormat) {
		t.Errorf("RegisterEnum: got %v, want ErrFormat", err)
	}
}

func TestLatestSoARoot(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterStruct("ThingSoA", StructDef{Fields: []Field{
		{Name: "count", Property: Property{Kind: KindValue, Type: "u32"}},
	}}); err != nil {
		t.Fatalf("RegisterStruct: %v", err)
	}
	name, ok := r.LatestSoARoot()
	if !ok || name != "ThingSoA" {
		t.Errorf("LatestSoARoot() = (%q, %v), want (ThingSoA, true)", name, ok)
	}
}
