package archive

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
	"github.com/mitterdoo/brdb/internal/xcompress"
)

type folderRecord struct {
	Parent int32 // -1 means root
	Name   string
}

type fileRecord struct {
	Parent      int32 // -1 means root
	ContentBlob int32
	Name        string
}

type blobRecord struct {
	Method          xcompress.Method
	DecompressedLen int32
	CompressedLen   int32
	Hash            [32]byte
}

type parsedIndex struct {
	Folders []folderRecord
	Files   []fileRecord
	Blobs   []blobRecord
}

// indexCursor is a small sequential little-endian reader over the
// decompressed index bytes, reading one fixed-width field at a time and
// wrapping short reads as brzerr.ErrUnexpectedEOF.
type indexCursor struct {
	r *bytes.Reader
}

func (c *indexCursor) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, xerrors.Errorf("archive: index: read %d bytes: %w", n, brzerr.ErrUnexpectedEOF)
	}
	return buf, nil
}

func (c *indexCursor) readI32() (int32, error) {
	b, err := c.readN(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (c *indexCursor) readU16() (uint16, error) {
	b, err := c.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *indexCursor) readU8() (uint8, error) {
	b, err := c.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *indexCursor) readHash() ([32]byte, error) {
	var h [32]byte
	b, err := c.readN(32)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

// readName reads n bytes and validates them as UTF-8, rejecting a folder
// or file name that isn't well-formed text.
func (c *indexCursor) readName(n int) (string, error) {
	b, err := c.readN(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", xerrors.Errorf("archive: index: name is not valid UTF-8: %w", brzerr.ErrFormat)
	}
	return string(b), nil
}

// parseIndex parses the decompressed index bytes: three counts, then
// parallel arrays of parent indices, name lengths, and name bytes for
// folders and files, then a fixed-width record per blob.
func parseIndex(data []byte) (parsedIndex, error) {
	c := &indexCursor{r: bytes.NewReader(data)}

	folderCount, err := c.readI32()
	if err != nil {
		return parsedIndex{}, err
	}
	fileCount, err := c.readI32()
	if err != nil {
		return parsedIndex{}, err
	}
	blobCount, err := c.readI32()
	if err != nil {
		return parsedIndex{}, err
	}
	if folderCount < 0 || fileCount < 0 || blobCount < 0 {
		return parsedIndex{}, xerrors.Errorf("archive: index: negative count (folders=%d files=%d blobs=%d): %w", folderCount, fileCount, blobCount, brzerr.ErrFormat)
	}

	folders := make([]folderRecord, folderCount)
	for i := range folders {
		p, err := c.readI32()
		if err != nil {
			return parsedIndex{}, err
		}
		folders[i].Parent = p
	}
	folderNameLens := make([]uint16, folderCount)
	for i := range folderNameLens {
		l, err := c.readU16()
		if err != nil {
			return parsedIndex{}, err
		}
		folderNameLens[i] = l
	}
	for i := range folders {
		name, err := c.readName(int(folderNameLens[i]))
		if err != nil {
			return parsedIndex{}, err
		}
		folders[i].Name = name
	}

	files := make([]fileRecord, fileCount)
	for i := range files {
		p, err := c.readI32()
		if err != nil {
			return parsedIndex{}, err
		}
		files[i].Parent = p
	}
	for i := range files {
		cb, err := c.readI32()
		if err != nil {
			return parsedIndex{}, err
		}
		files[i].ContentBlob = cb
	}
	fileNameLens := make([]uint16, fileCount)
	for i := range fileNameLens {
		l, err := c.readU16()
		if err != nil {
			return parsedIndex{}, err
		}
		fileNameLens[i] = l
	}
	for i := range files {
		name, err := c.readName(int(fileNameLens[i]))
		if err != nil {
			return parsedIndex{}, err
		}
		files[i].Name = name
	}

	blobs := make([]blobRecord, blobCount)
	for i := range blobs {
		method, err := c.readU8()
		if err != nil {
			return parsedIndex{}, err
		}
		declen, err := c.readI32()
		if err != nil {
			return parsedIndex{}, err
		}
		clen, err := c.readI32()
		if err != nil {
			return parsedIndex{}, err
		}
		hash, err := c.readHash()
		if err != nil {
			return parsedIndex{}, err
		}
		if declen < 0 || clen < 0 {
			return parsedIndex{}, xerrors.Errorf("archive: index: blob %d: negative length: %w", i, brzerr.ErrFormat)
		}
		blobs[i] = blobRecord{
			Method:          xcompress.Method(method),
			DecompressedLen: declen,
			CompressedLen:   clen,
			Hash:            hash,
		}
		if !blobs[i].Method.Valid() {
			return parsedIndex{}, xerrors.Errorf("archive: index: blob %d: unknown compression method %d: %w", i, method, brzerr.ErrFormat)
		}
	}

	return parsedIndex{Folders: folders, Files: files, Blobs: blobs}, nil
}
