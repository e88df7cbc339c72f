package archive

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mitterdoo/brdb/internal/brzerr"
	"github.com/mitterdoo/brdb/internal/bytestream"
)

func newTestArchive(t *testing.T) []byte {
	t.Helper()
	idx := &indexBuilder{}
	assetsID := idx.addFolder(-1, "assets")
	readmeBlob := idx.addBlob([]byte("hello world"))
	spriteBlob := idx.addBlob([]byte{1, 2, 3, 4})
	idx.addFile(-1, "readme.txt", readmeBlob)
	idx.addFile(assetsID, "sprite.bin", spriteBlob)
	return buildArchive(idx, [][]byte{[]byte("hello world"), {1, 2, 3, 4}})
}

func TestReadRoundTrip(t *testing.T) {
	data := newTestArchive(t)
	src := bytestream.NewSource(bytes.NewReader(data), int64(len(data)))

	a, err := Read(src)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	names, err := a.Tree.Ls("/")
	if err != nil {
		t.Fatalf("Ls(/): %v", err)
	}
	want := []string{"assets", "readme.txt"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Ls(/) mismatch (-want +got):\n%s", diff)
	}

	content, err := a.Tree.Open("/readme.txt")
	if err != nil {
		t.Fatalf("Open(/readme.txt): %v", err)
	}
	if diff := cmp.Diff([]byte("hello world"), content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}

	spriteContent, err := a.Tree.Open("/assets/sprite.bin")
	if err != nil {
		t.Fatalf("Open(/assets/sprite.bin): %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, spriteContent); diff != "" {
		t.Errorf("sprite content mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBadMagic(t *testing.T) {
	data := newTestArchive(t)
	data[0] = 'X'
	src := bytestream.NewSource(bytes.NewReader(data), int64(len(data)))

	_, err := Read(src)
	if err == nil {
		t.Fatal("Read: expected error for bad magic, got nil")
	}
	if !errors.Is(err, brzerr.ErrFormat) {
		t.Errorf("Read: got error %v, want ErrFormat", err)
	}
}

func TestReadCorruptedBlobHash(t *testing.T) {
	idx := &indexBuilder{}
	blobID := idx.addBlob([]byte("original"))
	idx.addFile(-1, "f.txt", blobID)
	data := buildArchive(idx, [][]byte{[]byte("tampered")})
	src := bytestream.NewSource(bytes.NewReader(data), int64(len(data)))

	_, err := Read(src)
	if err == nil {
		t.Fatal("Read: expected error for hash mismatch, got nil")
	}
	if !errors.Is(err, brzerr.ErrDecompression) {
		t.Errorf("Read: got error %v, want ErrDecompression", err)
	}
}

func TestTreeNotFound(t *testing.T) {
	data := newTestArchive(t)
	src := bytestream.NewSource(bytes.NewReader(data), int64(len(data)))
	a, err := Read(src)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if _, err := a.Tree.Open("/does/not/exist"); !errors.Is(err, brzerr.ErrNotFound) {
		t.Errorf("Open(/does/not/exist): got %v, want ErrNotFound", err)
	}

	if _, err := a.Tree.Open("/assets"); !errors.Is(err, brzerr.ErrIsAFolder) {
		t.Errorf("Open(/assets): got %v, want ErrIsAFolder", err)
	}
}

func TestTreeCreateAndDump(t *testing.T) {
	data := newTestArchive(t)
	src := bytestream.NewSource(bytes.NewReader(data), int64(len(data)))
	a, err := Read(src)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if _, err := a.Tree.Create("/assets/new.txt", []byte("new content")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	content, err := a.Tree.Open("/assets/new.txt")
	if err != nil {
		t.Fatalf("Open(/assets/new.txt): %v", err)
	}
	if string(content) != "new content" {
		t.Errorf("content = %q, want %q", content, "new content")
	}

	dest := t.TempDir() + "/out"
	if err := a.Tree.Dump(dest); err != nil {
		t.Fatalf("Dump: %v", err)
	}
}

func TestReadDuplicateChildName(t *testing.T) {
	idx := &indexBuilder{}
	blob1 := idx.addBlob([]byte("a"))
	blob2 := idx.addBlob([]byte("b"))
	idx.addFile(-1, "X", blob1)
	idx.addFile(-1, "X", blob2)
	data := buildArchive(idx, [][]byte{[]byte("a"), []byte("b")})
	src := bytestream.NewSource(bytes.NewReader(data), int64(len(data)))

	_, err := Read(src)
	if !errors.Is(err, brzerr.ErrFormat) {
		t.Errorf("Read: got %v, want ErrFormat", err)
	}
}

func TestReadMinimalArchive(t *testing.T) {
	idx := &indexBuilder{}
	data := buildArchive(idx, nil)
	src := bytestream.NewSource(bytes.NewReader(data), int64(len(data)))

	a, err := Read(src)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	names, err := a.Tree.Ls("/")
	if err != nil {
		t.Fatalf("Ls(/): %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Ls(/) = %v, want empty", names)
	}
}
