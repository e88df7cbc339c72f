package msgpack

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

// TagReader reads one tag at a time from a sequential byte stream. It never
// looks ahead past the tag's fixed-size header fields: the caller is
// responsible for consuming any variable-length payload a tag declares
// (str/bin/ext data) before the next call to ReadNext.
type TagReader struct {
	r io.Reader
}

// NewTagReader returns a TagReader reading from r.
func NewTagReader(r io.Reader) *TagReader {
	return &TagReader{r: r}
}

func (tr *TagReader) readByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(tr.r, b[:]); err != nil {
		return 0, xerrors.Errorf("msgpack: read tag byte: %w", brzerr.ErrUnexpectedEOF)
	}
	return b[0], nil
}

func (tr *TagReader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(tr.r, buf); err != nil {
		return nil, xerrors.Errorf("msgpack: read %d header bytes: %w", n, brzerr.ErrUnexpectedEOF)
	}
	return buf, nil
}

func (tr *TagReader) readU8() (uint8, error) {
	b, err := tr.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (tr *TagReader) readU16() (uint16, error) {
	b, err := tr.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (tr *TagReader) readU32() (uint32, error) {
	b, err := tr.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (tr *TagReader) readU64() (uint64, error) {
	b, err := tr.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadNext reads and returns the next tag. It returns brzerr.ErrFormat if
// the leading byte does not match any known tag pattern.
func (tr *TagReader) ReadNext() (Tag, error) {
	b, err := tr.readByte()
	if err != nil {
		return Tag{}, err
	}

	switch {
	case b&0x80 == 0x00: // +fixint: 0xxxxxxx
		v := int64(b)
		return Tag{Name: "+fixint", Kind: KindInt, Int: v, Uint: uint64(v)}, nil

	case b&0xE0 == 0xE0: // -fixint: 111xxxxx
		v := int64(int8(b))
		return Tag{Name: "-fixint", Kind: KindInt, Int: v}, nil

	case b&0xF0 == 0x80: // fixmap: 1000xxxx
		return Tag{Name: "fixmap", Kind: KindMap, Length: uint32(b & 0x0F)}, nil

	case b&0xF0 == 0x90: // fixarray: 1001xxxx
		return Tag{Name: "fixarray", Kind: KindList, Length: uint32(b & 0x0F)}, nil

	case b&0xE0 == 0xA0: // fixstr: 101xxxxx
		return Tag{Name: "fixstr", Kind: KindStr, Length: uint32(b & 0x1F)}, nil
	}

	switch b {
	case 0xc0:
		return Tag{Name: "nil", Kind: KindNil}, nil
	case 0xc2:
		return Tag{Name: "false", Kind: KindBool, Bool: false}, nil
	case 0xc3:
		return Tag{Name: "true", Kind: KindBool, Bool: true}, nil

	case 0xc4:
		n, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "bin8", Kind: KindBin, Length: uint32(n)}, nil
	case 0xc5:
		n, err := tr.readU16()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "bin16", Kind: KindBin, Length: uint32(n)}, nil
	case 0xc6:
		n, err := tr.readU32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "bin32", Kind: KindBin, Length: n}, nil

	case 0xc7:
		n, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		typ, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "ext8", Kind: KindExt, Length: uint32(n), ExtType: int8(typ)}, nil
	case 0xc8:
		n, err := tr.readU16()
		if err != nil {
			return Tag{}, err
		}
		typ, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "ext16", Kind: KindExt, Length: uint32(n), ExtType: int8(typ)}, nil
	case 0xc9:
		n, err := tr.readU32()
		if err != nil {
			return Tag{}, err
		}
		typ, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "ext32", Kind: KindExt, Length: n, ExtType: int8(typ)}, nil

	case 0xca:
		bits, err := tr.readU32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "float32", Kind: KindFloat, Float32: math.Float32frombits(bits)}, nil
	case 0xcb:
		bits, err := tr.readU64()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "float64", Kind: KindFloat, Float64: math.Float64frombits(bits)}, nil

	case 0xcc:
		v, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "uint8", Kind: KindInt, Uint: uint64(v)}, nil
	case 0xcd:
		v, err := tr.readU16()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "uint16", Kind: KindInt, Uint: uint64(v)}, nil
	case 0xce:
		v, err := tr.readU32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "uint32", Kind: KindInt, Uint: uint64(v)}, nil
	case 0xcf:
		v, err := tr.readU64()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "uint64", Kind: KindInt, Uint: v}, nil

	case 0xd0:
		v, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "int8", Kind: KindInt, Int: int64(int8(v))}, nil
	case 0xd1:
		v, err := tr.readU16()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "int16", Kind: KindInt, Int: int64(int16(v))}, nil
	case 0xd2:
		v, err := tr.readU32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "int32", Kind: KindInt, Int: int64(int32(v))}, nil
	case 0xd3:
		v, err := tr.readU64()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "int64", Kind: KindInt, Int: int64(v)}, nil

	case 0xd4:
		typ, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "fixext1", Kind: KindExt, Length: 1, ExtType: int8(typ)}, nil
	case 0xd5:
		typ, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "fixext2", Kind: KindExt, Length: 2, ExtType: int8(typ)}, nil
	case 0xd6:
		typ, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "fixext4", Kind: KindExt, Length: 4, ExtType: int8(typ)}, nil
	case 0xd7:
		typ, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "fixext8", Kind: KindExt, Length: 8, ExtType: int8(typ)}, nil
	case 0xd8:
		typ, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "fixext16", Kind: KindExt, Length: 16, ExtType: int8(typ)}, nil

	case 0xd9:
		n, err := tr.readU8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "str8", Kind: KindStr, Length: uint32(n)}, nil
	case 0xda:
		n, err := tr.readU16()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "str16", Kind: KindStr, Length: uint32(n)}, nil
	case 0xdb:
		n, err := tr.readU32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "str32", Kind: KindStr, Length: n}, nil

	case 0xdc:
		n, err := tr.readU16()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "array16", Kind: KindList, Length: uint32(n)}, nil
	case 0xdd:
		n, err := tr.readU32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "array32", Kind: KindList, Length: n}, nil

	case 0xde:
		n, err := tr.readU16()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "map16", Kind: KindMap, Length: uint32(n)}, nil
	case 0xdf:
		n, err := tr.readU32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: "map32", Kind: KindMap, Length: n}, nil
	}

	return Tag{}, xerrors.Errorf("msgpack: unknown tag byte 0x%02x: %w", b, brzerr.ErrFormat)
}

// ReadPayload reads exactly n bytes of trailing payload following a
// length-prefixed tag (str/bin/ext).
func (tr *TagReader) ReadPayload(n uint32) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(tr.r, buf); err != nil {
		return nil, xerrors.Errorf("msgpack: read %d payload bytes: %w", n, brzerr.ErrUnexpectedEOF)
	}
	return buf, nil
}
