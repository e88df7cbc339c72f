package archive

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
	"github.com/mitterdoo/brdb/internal/xcompress"
)

// FormatVersion identifies the archive's container layout. Only v0 exists
// today; the type exists so a future version can be added without
// loosening the version check to a bare integer comparison.
type FormatVersion uint8

const FormatVersionV0 FormatVersion = 0

func (v FormatVersion) valid() bool {
	return v == FormatVersionV0
}

const (
	headerMagic     = "BRZ"
	headerFixedSize = 3 + 1 + 1 + 4 + 4 + 32 // magic, version, idx_comp, idx_declen, idx_clen, idx_hash
)

// Header is the fixed-size prefix of a BRZ container.
type Header struct {
	Version              FormatVersion
	IndexMethod          xcompress.Method
	IndexDecompressedLen int32
	IndexCompressedLen   int32
	IndexHash            [32]byte
}

// readHeader reads and validates the 45-byte BRZ header from r.
func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerFixedSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, xerrors.Errorf("archive: read header: %w", brzerr.ErrUnexpectedEOF)
	}

	if string(buf[0:3]) != headerMagic {
		return Header{}, xerrors.Errorf("archive: bad magic %q: %w", buf[0:3], brzerr.ErrFormat)
	}

	var h Header
	h.Version = FormatVersion(buf[3])
	if !h.Version.valid() {
		return Header{}, xerrors.Errorf("archive: unknown format version %d: %w", h.Version, brzerr.ErrVersion)
	}

	h.IndexMethod = xcompress.Method(buf[4])
	if !h.IndexMethod.Valid() {
		return Header{}, xerrors.Errorf("archive: unknown index compression method %d: %w", buf[4], brzerr.ErrFormat)
	}

	h.IndexDecompressedLen = int32(binary.LittleEndian.Uint32(buf[5:9]))
	h.IndexCompressedLen = int32(binary.LittleEndian.Uint32(buf[9:13]))
	if h.IndexDecompressedLen < 0 {
		return Header{}, xerrors.Errorf("archive: negative index decompressed length %d: %w", h.IndexDecompressedLen, brzerr.ErrFormat)
	}
	if h.IndexCompressedLen < 0 {
		return Header{}, xerrors.Errorf("archive: negative index compressed length %d: %w", h.IndexCompressedLen, brzerr.ErrFormat)
	}

	copy(h.IndexHash[:], buf[13:45])

	return h, nil
}
