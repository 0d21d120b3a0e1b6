package cbor

import (
	"io"
	"math/big"
	"time"
)

// ExtendedEncoder wraps a StreamEncoder to produce tag 0/1 date-times and
// tag 2/3 bignums from ExtendedEvent's DateTime and BigInt variants.
type ExtendedEncoder struct {
	basic  *StreamEncoder
	config EncodeExtensionConfig
}

// NewExtendedEncoder creates an ExtendedEncoder wrapping a new
// StreamEncoder writing to dest.
func NewExtendedEncoder(dest io.Writer) *ExtendedEncoder {
	return NewExtendedEncoderFromStream(NewStreamEncoder(dest))
}

// NewExtendedEncoderFromStream wraps an already-constructed StreamEncoder.
func NewExtendedEncoderFromStream(basic *StreamEncoder) *ExtendedEncoder {
	return &ExtendedEncoder{basic: basic}
}

// Config returns the encoder's EncodeExtensionConfig for in-place mutation
// via its setters.
func (e *ExtendedEncoder) Config() *EncodeExtensionConfig { return &e.config }

// ReadyToFinish delegates to the underlying StreamEncoder.
func (e *ExtendedEncoder) ReadyToFinish() bool { return e.basic.ReadyToFinish() }

// FeedEvent writes ev, expanding DateTime and BigInt into the tagged basic
// event pair that represents them on the wire. A BigInt whose magnitude fits
// a 64-bit CBOR integer is written as a bare Unsigned/Signed instead.
func (e *ExtendedEncoder) FeedEvent(ev ExtendedEvent) error {
	switch ev.Kind {
	case ExtendedDateTime:
		return e.feedDateTime(ev.DateTime)
	case ExtendedBigInt:
		return e.feedBigInt(ev.BigInt)
	case ExtendedUnrecognizedTag:
		return e.basic.FeedEvent(Event{Kind: EventTag, Tag: ev.Tag})
	default:
		return e.basic.FeedEvent(translateExtendedEvent(ev))
	}
}

func (e *ExtendedEncoder) feedDateTime(t time.Time) error {
	if e.config.dateTimeStyle == DateTimeEncodePreferNumeric {
		if err := e.basic.FeedEvent(Event{Kind: EventTag, Tag: 1}); err != nil {
			return err
		}
		if t.Nanosecond() != 0 {
			seconds := float64(t.UnixNano()) / 1e9
			return e.basic.FeedEvent(Event{Kind: EventFloat, Float: seconds})
		}
		kind, wire := CreateSigned(t.Unix())
		return e.basic.FeedEvent(Event{Kind: kind, Unsigned: wire, Signed: wire})
	}

	if err := e.basic.FeedEvent(Event{Kind: EventTag, Tag: 0}); err != nil {
		return err
	}
	return e.basic.FeedEvent(Event{Kind: EventTextString, Text: t.Format(time.RFC3339Nano)})
}

// feedBigInt emits n as a basic Unsigned/Signed integer when its magnitude
// fits a 64-bit CBOR integer argument, falling back to a tag 2/3 bignum
// (tag plus the magnitude's big-endian bytes) only when it doesn't.
func (e *ExtendedEncoder) feedBigInt(n *big.Int) error {
	if n == nil {
		return &MalformedError{Reason: "nil bignum"}
	}

	tag := uint64(2)
	magnitude := n
	if n.Sign() < 0 {
		tag = 3
		magnitude = new(big.Int).Neg(n)
		magnitude.Sub(magnitude, big.NewInt(1))
	}

	if magnitude.IsUint64() {
		if tag == 3 {
			return e.basic.FeedEvent(Event{Kind: EventSigned, Signed: magnitude.Uint64()})
		}
		return e.basic.FeedEvent(Event{Kind: EventUnsigned, Unsigned: magnitude.Uint64()})
	}

	if err := e.basic.FeedEvent(Event{Kind: EventTag, Tag: tag}); err != nil {
		return err
	}
	return e.basic.FeedEvent(Event{Kind: EventByteString, Bytes: magnitude.Bytes()})
}

// translateExtendedEvent is translateBasicEvent's inverse, for the event
// kinds the extended layer passes through unchanged.
func translateExtendedEvent(ev ExtendedEvent) Event {
	out := Event{
		Unsigned: ev.Unsigned,
		Signed:   ev.Signed,
		Bytes:    ev.Bytes,
		Text:     ev.Text,
		Length:   ev.Length,
		Simple:   ev.Simple,
		Float:    ev.Float,
	}
	switch ev.Kind {
	case ExtendedUnsigned:
		out.Kind = EventUnsigned
	case ExtendedSigned:
		out.Kind = EventSigned
	case ExtendedByteString:
		out.Kind = EventByteString
	case ExtendedUnknownLengthByteString:
		out.Kind = EventUnknownLengthByteString
	case ExtendedTextString:
		out.Kind = EventTextString
	case ExtendedUnknownLengthTextString:
		out.Kind = EventUnknownLengthTextString
	case ExtendedArray:
		out.Kind = EventArray
	case ExtendedUnknownLengthArray:
		out.Kind = EventUnknownLengthArray
	case ExtendedMap:
		out.Kind = EventMap
	case ExtendedUnknownLengthMap:
		out.Kind = EventUnknownLengthMap
	case ExtendedSimple:
		out.Kind = EventSimple
	case ExtendedFloat:
		out.Kind = EventFloat
	case ExtendedBreak:
		out.Kind = EventBreak
	}
	return out
}
