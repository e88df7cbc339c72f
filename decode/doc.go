// Package decode implements the schema-directed decoder: given a tag
// stream and a registered root struct, it drives the tag reader per
// field, promotes tags to their declared types, resolves enum wire values
// to symbolic names, and expands nested structs, arrays (boxed or
// flat-packed), and maps into a dynamic document tree.
//
// Traversal is direct recursion rather than an explicit work queue: every
// struct, array, and map descriptor decodes through one recursive
// decodeValue/decodeProperty pair, which already yields depth-first,
// declared-order emission without a separate queue or cached-key slot — a
// map entry's key and value tags are simply read back to back by the same
// function.
package decode
