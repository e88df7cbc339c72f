package bytestream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

func TestReaderAtSource(t *testing.T) {
	data := []byte("0123456789")
	src := NewSource(bytes.NewReader(data), int64(len(data)))

	buf := make([]byte, 4)
	if err := src.ReadExact(buf); err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if string(buf) != "0123" {
		t.Errorf("ReadExact() = %q, want %q", buf, "0123")
	}

	pos, err := src.Tell()
	if err != nil || pos != 4 {
		t.Errorf("Tell() = (%d, %v), want (4, nil)", pos, err)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	full := make([]byte, len(data))
	if err := src.ReadExact(full); err != nil {
		t.Fatalf("ReadExact (full): %v", err)
	}
	if !bytes.Equal(full, data) {
		t.Errorf("ReadExact(full) = %q, want %q", full, data)
	}

	short := make([]byte, 1)
	if err := src.ReadExact(short); !errors.Is(err, brzerr.ErrUnexpectedEOF) {
		t.Errorf("ReadExact (past end): got %v, want ErrUnexpectedEOF", err)
	}
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	if _, err := sink.Write([]byte("hello ")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := sink.Write([]byte("world")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := string(sink.Bytes()), "hello world"; got != want {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
}
