// Package bytestream abstracts the two byte-level primitives the archive
// and schema codecs are built on: a seekable random-access source and a
// growable sink. Source is a thin cursor over io.ReaderAt, used by the
// archive reader; the schema decoder reads from a plain io.Reader instead.
package bytestream

import (
	"io"

	"github.com/orcaman/writerseeker"
	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

// Source is a seekable random-access byte source with exact-length reads.
type Source interface {
	io.Reader
	io.Seeker

	// ReadExact reads exactly len(p) bytes into p. If fewer bytes remain in
	// the source, it returns brzerr.ErrUnexpectedEOF.
	ReadExact(p []byte) error

	// Tell reports the current read offset.
	Tell() (int64, error)
}

// Sink is a growable byte sink: a writer that can also report and replace
// its position, for building a blob or index in memory before its final
// length is known. No package in this module writes archives, so nothing
// here calls it.
type Sink interface {
	io.Writer
	io.Seeker

	// Bytes returns the bytes written so far.
	Bytes() []byte
}

type readerAtSource struct {
	r   io.ReaderAt
	pos int64
	size int64
}

// NewSource wraps an io.ReaderAt (typically an *os.File) of the given total
// size as a Source.
func NewSource(r io.ReaderAt, size int64) Source {
	return &readerAtSource{r: r, size: size}
}

func (s *readerAtSource) Read(p []byte) (int, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}
	n, err := s.r.ReadAt(p, s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *readerAtSource) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = s.size + offset
	default:
		return 0, xerrors.Errorf("bytestream: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, xerrors.Errorf("bytestream: negative seek position %d", abs)
	}
	s.pos = abs
	return abs, nil
}

func (s *readerAtSource) Tell() (int64, error) {
	return s.pos, nil
}

func (s *readerAtSource) ReadExact(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := io.ReadFull(s, p)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return xerrors.Errorf("bytestream: read %d of %d bytes: %w", n, len(p), brzerr.ErrUnexpectedEOF)
		}
		return xerrors.Errorf("bytestream: %v", err)
	}
	return nil
}

// memorySink adapts writerseeker.WriterSeeker (io.Writer + io.Seeker) to
// Sink by adding Bytes(), read back via its BytesReader.
type memorySink struct {
	ws writerseeker.WriterSeeker
}

// NewMemorySink returns an in-memory growable Sink backed by
// writerseeker.WriterSeeker.
func NewMemorySink() Sink {
	return &memorySink{}
}

func (s *memorySink) Write(p []byte) (int, error) { return s.ws.Write(p) }

func (s *memorySink) Seek(offset int64, whence int) (int64, error) {
	return s.ws.Seek(offset, whence)
}

func (s *memorySink) Bytes() []byte {
	b, err := io.ReadAll(s.ws.BytesReader())
	if err != nil {
		// BytesReader is backed by an in-memory buffer; ReadAll cannot fail.
		panic(err)
	}
	return b
}
