package decode

// Kind discriminates the dynamic shape of a Node: a leaf (bool, int,
// float, string, or enum symbol) or a branch (an ordered associative
// container from a struct or map, or a sequence from an array).
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindUint
	KindFloat32
	KindFloat64
	KindString
	KindSymbol // an enum wire value resolved to its symbolic name
	KindObject // a 32-bit object/class identifier
	KindBranch
	KindSequence
)

// Node is one value in the decoded document tree: structurally identical
// to what a generic dynamic MessagePack decoder would produce, except
// struct field names come from the schema (not the wire) and enum wire
// values are translated to their symbolic names.
type Node struct {
	Kind Kind

	Bool    bool
	Int     int64
	Uint    uint64
	Float32 float32
	Float64 float64
	Str     string // KindString and KindSymbol both use this field
	Object  int32

	Branch   *Branch
	Sequence []*Node
}

// Entry is one key/value pair of a Branch. For struct-derived branches,
// FieldName is set and Key is nil (field names are always strings, taken
// from the schema). For map-derived branches, Key is the decoded key node
// and FieldName is empty.
type Entry struct {
	FieldName string
	Key       *Node
	Value     *Node
}

// Branch is the ordered associative container backing both struct and map
// document nodes. Field/entry declaration order is preserved, since that
// order is also the wire order the fields were decoded in.
type Branch struct {
	Entries []Entry
	byField map[string]int
}

func newStructBranch() *Branch {
	return &Branch{byField: make(map[string]int)}
}

func newMapBranch() *Branch {
	return &Branch{}
}

func (b *Branch) setField(name string, v *Node) {
	if idx, ok := b.byField[name]; ok {
		b.Entries[idx].Value = v
		return
	}
	b.byField[name] = len(b.Entries)
	b.Entries = append(b.Entries, Entry{FieldName: name, Value: v})
}

func (b *Branch) appendMapEntry(key, value *Node) {
	b.Entries = append(b.Entries, Entry{Key: key, Value: value})
}

// Field looks up a struct-derived branch's field by name.
func (b *Branch) Field(name string) (*Node, bool) {
	idx, ok := b.byField[name]
	if !ok {
		return nil, false
	}
	return b.Entries[idx].Value, true
}

// Visitor is implemented by callers that want to walk a document tree
// without reflecting on Node's concrete fields.
type Visitor interface {
	VisitBool(v bool)
	VisitInt(v int64)
	VisitUint(v uint64)
	VisitFloat32(v float32)
	VisitFloat64(v float64)
	VisitString(v string)
	VisitSymbol(v string)
	VisitObject(v int32)
	VisitBranchStart()
	VisitBranchField(name string)
	VisitBranchMapKey()
	VisitBranchEnd()
	VisitSequenceStart(count int)
	VisitSequenceEnd()
}

// Walk drives v over n and its descendants, depth-first, in declaration
// order.
func Walk(n *Node, v Visitor) {
	switch n.Kind {
	case KindBool:
		v.VisitBool(n.Bool)
	case KindInt:
		v.VisitInt(n.Int)
	case KindUint:
		v.VisitUint(n.Uint)
	case KindFloat32:
		v.VisitFloat32(n.Float32)
	case KindFloat64:
		v.VisitFloat64(n.Float64)
	case KindString:
		v.VisitString(n.Str)
	case KindSymbol:
		v.VisitSymbol(n.Str)
	case KindObject:
		v.VisitObject(n.Object)
	case KindSequence:
		v.VisitSequenceStart(len(n.Sequence))
		for _, elem := range n.Sequence {
			Walk(elem, v)
		}
		v.VisitSequenceEnd()
	case KindBranch:
		v.VisitBranchStart()
		for _, e := range n.Branch.Entries {
			if e.Key != nil {
				v.VisitBranchMapKey()
				Walk(e.Key, v)
			} else {
				v.VisitBranchField(e.FieldName)
			}
			Walk(e.Value, v)
		}
		v.VisitBranchEnd()
	}
}

// Plain converts a Node into ordinary Go values (bool, int64, uint64,
// float32/64, string, int32 for object/class identifiers, map[string]any
// for struct branches, a slice of {key, value} entries for map branches,
// []any for sequences), suitable for consumers such as encoding/json. A map
// branch with no entries converts to an empty map[string]any.
func (n *Node) Plain() interface{} {
	switch n.Kind {
	case KindBool:
		return n.Bool
	case KindInt:
		return n.Int
	case KindUint:
		return n.Uint
	case KindFloat32:
		return n.Float32
	case KindFloat64:
		return n.Float64
	case KindString, KindSymbol:
		return n.Str
	case KindObject:
		return n.Object
	case KindSequence:
		out := make([]interface{}, len(n.Sequence))
		for i, elem := range n.Sequence {
			out[i] = elem.Plain()
		}
		return out
	case KindBranch:
		isStruct := true
		for _, e := range n.Branch.Entries {
			if e.Key != nil {
				isStruct = false
				break
			}
		}
		if isStruct {
			out := make(map[string]interface{}, len(n.Branch.Entries))
			for _, e := range n.Branch.Entries {
				out[e.FieldName] = e.Value.Plain()
			}
			return out
		}
		type mapEntry struct {
			Key   interface{} `json:"key"`
			Value interface{} `json:"value"`
		}
		out := make([]mapEntry, len(n.Branch.Entries))
		for i, e := range n.Branch.Entries {
			out[i] = mapEntry{Key: e.Key.Plain(), Value: e.Value.Plain()}
		}
		return out
	default:
		return nil
	}
}

// Document is the result of a successful Unpack: the decoded root struct's
// document tree (always a KindBranch node).
type Document struct {
	Root *Node
}
