package archive

import (
	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
	"github.com/mitterdoo/brdb/internal/bytestream"
	"github.com/mitterdoo/brdb/internal/xcompress"
	"github.com/mitterdoo/brdb/internal/xhash"
)

// Archive is a fully parsed BRZ container: its header, every blob's
// decompressed bytes, and the reconstructed directory tree. Read builds it
// once; afterwards the only change the package makes to it is Tree.Create,
// which adds a file to the tree in place.
type Archive struct {
	Header Header
	Blobs  [][]byte
	Tree   *Tree
}

// Read parses a full BRZ container from src: header, compressed index, and
// every blob, verifying lengths and hashes throughout. The container is
// read once, start to finish; no blob is loaded lazily, and any error
// aborts the read without returning a partially built Archive.
func Read(src bytestream.Source) (*Archive, error) {
	header, err := readHeader(src)
	if err != nil {
		return nil, err
	}

	indexCompressed := make([]byte, header.IndexCompressedLen)
	if err := src.ReadExact(indexCompressed); err != nil {
		return nil, xerrors.Errorf("archive: read index: %w", err)
	}
	indexBytes, err := decodeAndVerify(header.IndexMethod, indexCompressed, int(header.IndexDecompressedLen), header.IndexHash)
	if err != nil {
		return nil, xerrors.Errorf("archive: index: %w", err)
	}

	idx, err := parseIndex(indexBytes)
	if err != nil {
		return nil, err
	}

	blobs := make([][]byte, len(idx.Blobs))
	for i, b := range idx.Blobs {
		compressed := make([]byte, b.CompressedLen)
		if err := src.ReadExact(compressed); err != nil {
			return nil, xerrors.Errorf("archive: blob %d: read: %w", i, err)
		}
		decoded, err := decodeAndVerify(b.Method, compressed, int(b.DecompressedLen), b.Hash)
		if err != nil {
			return nil, xerrors.Errorf("archive: blob %d: %w", i, err)
		}
		blobs[i] = decoded
	}

	tree, err := buildTree(idx, blobs)
	if err != nil {
		return nil, err
	}

	return &Archive{Header: header, Blobs: blobs, Tree: tree}, nil
}

// decodeAndVerify decompresses compressed under method and checks its
// BLAKE3-256 digest against expected. The hash always covers the
// decompressed payload, so callers need not know which compression method
// produced the bytes on disk to verify them; for method none this is
// trivially the same buffer as stored.
func decodeAndVerify(method xcompress.Method, compressed []byte, decompressedLen int, expectedHash [32]byte) ([]byte, error) {
	decoded, err := xcompress.Decompress(method, compressed, decompressedLen)
	if err != nil {
		return nil, err
	}
	if err := xhash.Verify(decoded, expectedHash); err != nil {
		return nil, err
	}
	return decoded, nil
}

// buildTree reconstructs the directory tree from a parsed index: folder
// and file nodes are created first, then a single pass resolves each
// node's raw parent index into its parent folder, inserting it as a
// child.
func buildTree(idx parsedIndex, blobs [][]byte) (*Tree, error) {
	root := newFolder("", nil)

	folders := make([]*Folder, len(idx.Folders))
	for i, rec := range idx.Folders {
		folders[i] = newFolder(rec.Name, nil)
	}

	files := make([]*File, len(idx.Files))
	for i, rec := range idx.Files {
		if rec.ContentBlob < 0 || int(rec.ContentBlob) >= len(blobs) {
			return nil, xerrors.Errorf("archive: file %d (%q): content blob index %d out of range: %w", i, rec.Name, rec.ContentBlob, brzerr.ErrFormat)
		}
		files[i] = &File{name: rec.Name, content: blobs[rec.ContentBlob]}
	}

	resolveParent := func(kind string, i int, parentIdx int32) (*Folder, error) {
		if parentIdx == -1 {
			return root, nil
		}
		if parentIdx < 0 || int(parentIdx) >= len(folders) {
			return nil, xerrors.Errorf("archive: %s %d: parent index %d out of range: %w", kind, i, parentIdx, brzerr.ErrFormat)
		}
		return folders[parentIdx], nil
	}

	for i, rec := range idx.Folders {
		parent, err := resolveParent("folder", i, rec.Parent)
		if err != nil {
			return nil, err
		}
		folders[i].parent = parent
		if err := parent.insert(rec.Name, folders[i]); err != nil {
			return nil, err
		}
	}

	for i, rec := range idx.Files {
		parent, err := resolveParent("file", i, rec.Parent)
		if err != nil {
			return nil, err
		}
		files[i].parent = parent
		if err := parent.insert(rec.Name, files[i]); err != nil {
			return nil, err
		}
	}

	return &Tree{root: root}, nil
}
