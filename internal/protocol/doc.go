// Package protocol owns the ANP wire contract and parsing primitives.
//
// Ownership boundary:
// - message model (header fields + ordered typed elements)
// - element encode/decode (tag + value, big-endian)
// - size limits and decode strictness
//
// Non-blocking transfer lives in protocol/transport; the meaning of the
// 32-bit type tag lives in protocol/catalog.
package protocol
