// Package msgpack implements the low-level, MessagePack-compatible tag
// stream the schema-directed decoder drives. Unlike a conventional
// MessagePack decoder, TagReader exposes the exact tag identity that was
// read (its name and underlying-type kind), not just a decoded value,
// because the schema layer must cross-check the wire tag against the
// declared field type (see the promotion table in package decode).
//
// TagReader reads a tag's one-byte header and any immediately following
// fixed-size header fields (lengths, small values); it never consumes the
// variable-length payload that follows a length-prefixed tag (str, bin,
// ext). Callers read that payload themselves once they know how many bytes
// it spans.
//
// The symmetric encoder (pack) is a stated but unimplemented design
// obligation: a conforming Writer would need to choose, for every value,
// the smallest MessagePack tag that represents it exactly (the "promoted
// to the smallest fitting tag" behavior documents describe), and for flat
// arrays would need to know each element's schema-declared width rather
// than its MessagePack-idiomatic one. Neither concern has a safe default,
// so no Writer is provided here.
package msgpack
