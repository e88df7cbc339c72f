// Package xhash verifies buffers against a declared BLAKE3-256 digest.
package xhash

import (
	"bytes"

	"golang.org/x/xerrors"
	"lukechampine.com/blake3"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

// Sum computes the BLAKE3-256 digest of data.
func Sum(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// Verify computes the BLAKE3-256 digest of data and compares it against
// expected, returning brzerr.ErrDecompression (the archive's declared
// error kind for a hash mismatch) on mismatch.
func Verify(data []byte, expected [32]byte) error {
	got := Sum(data)
	if !bytes.Equal(got[:], expected[:]) {
		return xerrors.Errorf("xhash: hash mismatch: got %x, want %x: %w", got, expected, brzerr.ErrDecompression)
	}
	return nil
}
