package msgpack

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadNext(t *testing.T) {
	for _, test := range []struct {
		desc string
		in   []byte
		want Tag
	}{
		{
			desc: "positive fixint",
			in:   []byte{0x05},
			want: Tag{Name: "+fixint", Kind: KindInt, Int: 5, Uint: 5},
		},
		{
			desc: "negative fixint",
			in:   []byte{0xff},
			want: Tag{Name: "-fixint", Kind: KindInt, Int: -1},
		},
		{
			desc: "nil",
			in:   []byte{0xc0},
			want: Tag{Name: "nil", Kind: KindNil},
		},
		{
			desc: "true",
			in:   []byte{0xc3},
			want: Tag{Name: "true", Kind: KindBool, Bool: true},
		},
		{
			desc: "uint16",
			in:   []byte{0xcd, 0x01, 0x02},
			want: Tag{Name: "uint16", Kind: KindInt, Uint: 0x0102},
		},
		{
			desc: "int32",
			in:   []byte{0xd2, 0xff, 0xff, 0xff, 0xff},
			want: Tag{Name: "int32", Kind: KindInt, Int: -1},
		},
		{
			desc: "float64",
			in:   []byte{0xcb, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0},
			want: Tag{Name: "float64", Kind: KindFloat, Float64: 1.0},
		},
		{
			desc: "fixstr",
			in:   []byte{0xa3},
			want: Tag{Name: "fixstr", Kind: KindStr, Length: 3},
		},
		{
			desc: "str8",
			in:   []byte{0xd9, 0x0a},
			want: Tag{Name: "str8", Kind: KindStr, Length: 10},
		},
		{
			desc: "bin32",
			in:   []byte{0xc6, 0, 1, 0, 0},
			want: Tag{Name: "bin32", Kind: KindBin, Length: 0x10000},
		},
		{
			desc: "fixarray",
			in:   []byte{0x93},
			want: Tag{Name: "fixarray", Kind: KindList, Length: 3},
		},
		{
			desc: "array16",
			in:   []byte{0xdc, 0x00, 0x05},
			want: Tag{Name: "array16", Kind: KindList, Length: 5},
		},
		{
			desc: "fixmap",
			in:   []byte{0x82},
			want: Tag{Name: "fixmap", Kind: KindMap, Length: 2},
		},
		{
			desc: "fixext4",
			in:   []byte{0xd6, 0x07},
			want: Tag{Name: "fixext4", Kind: KindExt, Length: 4, ExtType: 7},
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			tr := NewTagReader(bytes.NewReader(test.in))
			got, err := tr.ReadNext()
			if err != nil {
				t.Fatalf("ReadNext: %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("ReadNext() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadNextUnexpectedEOF(t *testing.T) {
	tr := NewTagReader(bytes.NewReader([]byte{0xcd, 0x01})) // uint16 missing a byte
	if _, err := tr.ReadNext(); err == nil {
		t.Fatal("ReadNext: expected error, got nil")
	}
}

func TestReadPayload(t *testing.T) {
	tr := NewTagReader(bytes.NewReader([]byte("hello")))
	got, err := tr.ReadPayload(5)
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("ReadPayload() = %q, want %q", got, "hello")
	}
}

func TestReadSequence(t *testing.T) {
	// fixarray of 2: +fixint(1), fixstr(2) "hi"
	in := []byte{0x92, 0x01, 0xa2, 'h', 'i'}
	tr := NewTagReader(bytes.NewReader(in))

	arr, err := tr.ReadNext()
	if err != nil {
		t.Fatalf("ReadNext (array): %v", err)
	}
	if arr.Kind != KindList || arr.Length != 2 {
		t.Fatalf("array tag = %+v, want list of length 2", arr)
	}

	elem1, err := tr.ReadNext()
	if err != nil {
		t.Fatalf("ReadNext (elem1): %v", err)
	}
	if elem1.Int != 1 {
		t.Errorf("elem1.Int = %d, want 1", elem1.Int)
	}

	elem2, err := tr.ReadNext()
	if err != nil {
		t.Fatalf("ReadNext (elem2): %v", err)
	}
	payload, err := tr.ReadPayload(elem2.Length)
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	if string(payload) != "hi" {
		t.Errorf("payload = %q, want %q", payload, "hi")
	}
}
