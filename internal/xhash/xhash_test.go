package xhash

import (
	"errors"
	"testing"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

func TestVerify(t *testing.T) {
	data := []byte("the quick brown fox")
	sum := Sum(data)

	if err := Verify(data, sum); err != nil {
		t.Errorf("Verify: %v", err)
	}

	sum[0] ^= 0xff
	if err := Verify(data, sum); !errors.Is(err, brzerr.ErrDecompression) {
		t.Errorf("Verify: got %v, want ErrDecompression", err)
	}
}
