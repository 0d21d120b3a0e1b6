package cbor

import (
	"math"
	"math/big"
)

// EventKind identifies which variant of Event is populated.
type EventKind uint8

const (
	EventUnsigned EventKind = iota
	EventSigned
	EventByteString
	EventUnknownLengthByteString
	EventTextString
	EventUnknownLengthTextString
	EventArray
	EventUnknownLengthArray
	EventMap
	EventUnknownLengthMap
	EventTag
	EventSimple
	EventFloat
	EventBreak
)

// Event is one unit of the basic streaming alphabet: exactly one CBOR data
// item head, or a fragment of a segmented string, or a break closing an
// indefinite-length container. A StreamDecoder produces a sequence of these;
// a StreamEncoder consumes the same sequence.
//
// Signed carries the CBOR wire value (major type 1's argument), not the
// mathematical value: the actual integer is -1-Signed, which underflows
// int64 whenever Signed exceeds math.MaxInt64. Use InterpretSigned or
// InterpretSignedWide to recover it.
type Event struct {
	Kind EventKind

	Unsigned uint64
	Signed   uint64

	Bytes []byte
	Text  string

	// Length is the element count for Array, the pair count for Map, and
	// unused for the UnknownLength* variants.
	Length uint64

	Tag uint64

	Simple uint8
	Float  float64
}

// InterpretSigned recovers the mathematical value of a CBOR negative integer
// (major type 1) from its wire argument: the item's value is -1-val. This
// wraps silently whenever val exceeds math.MaxInt64, since the true value
// (from -9223372036854775809 down to -18446744073709551616) has no int64
// representation; use InterpretSignedWide when that matters.
func InterpretSigned(val uint64) int64 {
	return -1 - int64(val)
}

// InterpretSignedChecked is InterpretSigned but reports failure instead of
// wrapping when val is too large for the result to fit in an int64.
func InterpretSignedChecked(val uint64) (int64, bool) {
	if val > math.MaxInt64 {
		return 0, false
	}
	return -1 - int64(val), true
}

// InterpretSignedWide recovers the mathematical value of a CBOR negative
// integer without the int64 overflow InterpretSigned is subject to.
func InterpretSignedWide(val uint64) *big.Int {
	result := new(big.Int).SetUint64(val)
	result.Add(result, big.NewInt(1))
	result.Neg(result)
	return result
}

// CreateSigned produces the (kind, wire argument) pair that encodes the
// given mathematical value as a CBOR integer, choosing major type 0 or 1 as
// needed.
func CreateSigned(val int64) (kind EventKind, wireValue uint64) {
	if val < 0 {
		return EventSigned, uint64(-(val + 1))
	}
	return EventUnsigned, uint64(val)
}

// CreateSignedWide is CreateSigned for values too large to fit in an int64.
// val must be representable in CBOR, i.e. within
// [-2^64, 2^64-1].
func CreateSignedWide(val *big.Int) (kind EventKind, wireValue uint64) {
	if val.Sign() < 0 {
		wire := new(big.Int).Neg(val)
		wire.Sub(wire, big.NewInt(1))
		return EventSigned, wire.Uint64()
	}
	return EventUnsigned, val.Uint64()
}
