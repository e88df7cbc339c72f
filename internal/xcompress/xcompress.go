// Package xcompress adapts the two compression methods the BRZ container
// supports (method byte 0 = none, 1 = zstd) behind a single Decompress
// operation, as a thin per-concern wrapper package alongside
// internal/bytestream and internal/xhash.
package xcompress

import (
	"github.com/klauspost/compress/zstd"
	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

// Method identifies a compression method understood by the container.
type Method uint8

const (
	MethodNone Method = 0
	MethodZstd Method = 1
)

func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Valid reports whether m is a known compression method.
func (m Method) Valid() bool {
	return m == MethodNone || m == MethodZstd
}

// Decompress decompresses compressed under method, failing if the result's
// length does not equal decompressedLen. For MethodNone, compressed must
// already have length decompressedLen and is returned unchanged.
func Decompress(method Method, compressed []byte, decompressedLen int) ([]byte, error) {
	switch method {
	case MethodNone:
		if len(compressed) != decompressedLen {
			return nil, xerrors.Errorf("xcompress: none: got %d bytes, want %d: %w", len(compressed), decompressedLen, brzerr.ErrDecompression)
		}
		return compressed, nil

	case MethodZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, xerrors.Errorf("xcompress: zstd: new reader: %w", brzerr.ErrDecompression)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(compressed, make([]byte, 0, decompressedLen))
		if err != nil {
			return nil, xerrors.Errorf("xcompress: zstd: decode: %v: %w", err, brzerr.ErrDecompression)
		}
		if len(out) != decompressedLen {
			return nil, xerrors.Errorf("xcompress: zstd: got %d bytes, want %d: %w", len(out), decompressedLen, brzerr.ErrDecompression)
		}
		return out, nil

	default:
		return nil, xerrors.Errorf("xcompress: unknown method %d: %w", method, brzerr.ErrFormat)
	}
}

