// Package brzerr defines the sentinel error kinds shared by every layer of
// the archive and schema decoders. Callers distinguish failure classes with
// errors.Is; every sentinel is wrapped with positional context via
// golang.org/x/xerrors at the point of detection.
package brzerr

import "errors"

var (
	// ErrFormat indicates a structural violation of the BRZ container, the
	// index, a schema document, or a data stream: bad magic, unknown
	// compression method, an out-of-range index, a duplicate directory
	// entry, or a tag/type mismatch during schema-directed decode.
	ErrFormat = errors.New("format error")

	// ErrVersion indicates an unrecognized archive format version.
	ErrVersion = errors.New("version error")

	// ErrUnexpectedEOF indicates a short read from a byte source: fewer
	// bytes remained than an exact-length read demanded.
	ErrUnexpectedEOF = errors.New("unexpected eof")

	// ErrDecompression indicates a decompressor failure, or a decompressed
	// length or hash mismatch against the value declared in the index.
	ErrDecompression = errors.New("decompression error")

	// ErrDuplicate indicates re-registration of an already-registered enum
	// or struct name in a schema.Registry.
	ErrDuplicate = errors.New("duplicate error")

	// ErrNotFound indicates a directory tree lookup addressed a path that
	// does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrNotAFolder indicates an operation that requires a folder (ls,
	// path-component traversal) was given a file.
	ErrNotAFolder = errors.New("not a folder")

	// ErrIsAFolder indicates an operation that requires a file (open for
	// read) was given a folder.
	ErrIsAFolder = errors.New("is a folder")

	// ErrValue indicates a schema- or decode-level logic error: a missing
	// root struct, an enum wire value absent from its table, or a
	// disallowed map key type.
	ErrValue = errors.New("value error")
)
