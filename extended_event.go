package cbor

import (
	"math/big"
	"time"
)

// ExtendedEventKind identifies which variant of ExtendedEvent is populated.
// It mirrors EventKind for every variant the extended layer passes through
// unchanged, and adds the three outcomes tag recognition can produce.
type ExtendedEventKind uint8

const (
	ExtendedUnsigned ExtendedEventKind = iota
	ExtendedSigned
	ExtendedByteString
	ExtendedUnknownLengthByteString
	ExtendedTextString
	ExtendedUnknownLengthTextString
	ExtendedArray
	ExtendedUnknownLengthArray
	ExtendedMap
	ExtendedUnknownLengthMap
	ExtendedSimple
	ExtendedFloat
	ExtendedBreak

	// ExtendedDateTime is produced for tag 0 (text) or tag 1 (numeric) when
	// DateTimeDecodeStyle is DateTimeDecodeStandard and the tagged content
	// is well-formed.
	ExtendedDateTime
	// ExtendedBigInt is produced for tag 2 (positive) or tag 3 (negative)
	// when the bignum was converted to *big.Int.
	ExtendedBigInt
	// ExtendedUnrecognizedTag is produced for any tag this layer does not
	// interpret, carrying the tag number; the caller is expected to read one
	// further ExtendedEvent for the tagged content, exactly as with the
	// basic layer's EventTag.
	ExtendedUnrecognizedTag
)

// ExtendedEvent is the extended streaming alphabet: the basic Event
// alphabet with tags 0, 1, 2, and 3 folded into typed events instead of
// passed through as a bare tag number plus content.
type ExtendedEvent struct {
	Kind ExtendedEventKind

	Unsigned uint64
	Signed   uint64

	Bytes []byte
	Text  string

	Length uint64

	Simple uint8
	Float  float64

	DateTime time.Time
	BigInt   *big.Int
	Tag      uint64
}
