/*
Package cbor provides a streaming, event-based CBOR (RFC 8949) codec.

Basics

The core of the package is a pair of event streams. A StreamDecoder turns a
byte stream into a sequence of Events (Unsigned, Signed, ByteString, Array,
Map, Tag, Break, and so on) without ever materializing a whole document in
memory; a StreamEncoder does the reverse, accepting Events and writing CBOR
bytes. Neither side cares how deep the document is beyond the decoder's
optional WithMaxDepth guard — both just track a small stack of pending
containers.

TreeDecoder and TreeEncoder sit on top of the streaming layer and trade that
generality for convenience: they build or walk a single Item value, CBOR's
equivalent of a JSON document tree.

ExtendedDecoder, ExtendedEncoder, ExtendedTreeDecoder, and ExtendedTreeEncoder
wrap the basic codec one layer further to recognize tags 0, 1, 2, and 3 as
date-times and bignums, per RFC 8949 section 3.4.

This package does not provide struct-tag-driven marshaling of Go values the
way encoding/json does; it is a codec for CBOR's own data model, not an
object mapper.
*/
package cbor
