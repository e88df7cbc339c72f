package archive

import (
	"bytes"
	"encoding/binary"

	"github.com/mitterdoo/brdb/internal/xhash"
)

// indexBuilder encodes a minimal index buffer by hand, mirroring
// parseIndex's expected layout.
type indexBuilder struct {
	folders []folderRecord
	files   []fileRecord
	blobs   []blobRecord
}

func (b *indexBuilder) addFolder(parent int32, name string) int32 {
	b.folders = append(b.folders, folderRecord{Parent: parent, Name: name})
	return int32(len(b.folders) - 1)
}

func (b *indexBuilder) addBlob(content []byte) int32 {
	b.blobs = append(b.blobs, blobRecord{
		Method:          0,
		DecompressedLen: int32(len(content)),
		CompressedLen:   int32(len(content)),
		Hash:            xhash.Sum(content),
	})
	return int32(len(b.blobs) - 1)
}

func (b *indexBuilder) addFile(parent int32, name string, blob int32) {
	b.files = append(b.files, fileRecord{Parent: parent, ContentBlob: blob, Name: name})
}

func (b *indexBuilder) bytes() []byte {
	var buf bytes.Buffer
	putI32 := func(v int32) { binary.Write(&buf, binary.LittleEndian, v) }
	putU16 := func(v uint16) { binary.Write(&buf, binary.LittleEndian, v) }
	putU8 := func(v uint8) { binary.Write(&buf, binary.LittleEndian, v) }

	putI32(int32(len(b.folders)))
	putI32(int32(len(b.files)))
	putI32(int32(len(b.blobs)))

	for _, f := range b.folders {
		putI32(f.Parent)
	}
	for _, f := range b.folders {
		putU16(uint16(len(f.Name)))
	}
	for _, f := range b.folders {
		buf.WriteString(f.Name)
	}

	for _, f := range b.files {
		putI32(f.Parent)
	}
	for _, f := range b.files {
		putI32(f.ContentBlob)
	}
	for _, f := range b.files {
		putU16(uint16(len(f.Name)))
	}
	for _, f := range b.files {
		buf.WriteString(f.Name)
	}

	for _, blob := range b.blobs {
		putU8(uint8(blob.Method))
		putI32(blob.DecompressedLen)
		putI32(blob.CompressedLen)
		buf.Write(blob.Hash[:])
	}

	return buf.Bytes()
}

// buildArchive assembles a full BRZ container byte stream (header,
// uncompressed index, uncompressed blobs) for one index and its blobs'
// content, all using compression method none so tests don't need a real
// zstd frame.
func buildArchive(idx *indexBuilder, blobContents [][]byte) []byte {
	indexBytes := idx.bytes()
	indexHash := xhash.Sum(indexBytes)

	var buf bytes.Buffer
	buf.WriteString("BRZ")
	buf.WriteByte(0) // version
	buf.WriteByte(0) // index method: none
	binary.Write(&buf, binary.LittleEndian, int32(len(indexBytes)))
	binary.Write(&buf, binary.LittleEndian, int32(len(indexBytes)))
	buf.Write(indexHash[:])
	buf.Write(indexBytes)
	for _, c := range blobContents {
		buf.Write(c)
	}
	return buf.Bytes()
}
