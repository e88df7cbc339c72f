// Package archive parses the BRZ container: a header, a compressed index
// describing a directory tree of folders and files, and a set of
// compressed, content-hashed blobs holding file bytes. Read reconstructs
// the full in-memory directory tree, verifying every blob's hash and
// length, resolving every parent index, and rejecting folders whose
// children collide by name.
//
// The reader is a small cursor abstraction over a random-access byte
// source plus fixed-width field parsing, in the same style used for any
// other binary container with a header, an index, and a payload region.
//
// Writing a BRZ container back out (pack) is not implemented.
package archive
