package xcompress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

func TestDecompressNone(t *testing.T) {
	data := []byte("uncompressed payload")
	got, err := Decompress(MethodNone, data, len(data))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Decompress() = %q, want %q", got, data)
	}
}

func TestDecompressNoneLengthMismatch(t *testing.T) {
	_, err := Decompress(MethodNone, []byte("abc"), 10)
	if !errors.Is(err, brzerr.ErrDecompression) {
		t.Errorf("Decompress: got %v, want ErrDecompression", err)
	}
}

func TestDecompressZstd(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog")
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := enc.EncodeAll(payload, nil)
	enc.Close()

	got, err := Decompress(MethodZstd, compressed, len(payload))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Decompress() = %q, want %q", got, payload)
	}
}

func TestMethodValid(t *testing.T) {
	if !MethodNone.Valid() || !MethodZstd.Valid() {
		t.Error("expected MethodNone and MethodZstd to be valid")
	}
	if Method(2).Valid() {
		t.Error("expected Method(2) to be invalid")
	}
}
