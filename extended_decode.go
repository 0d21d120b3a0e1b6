package cbor

import (
	"io"
	"math"
	"math/big"
	"time"
)

// ExtendedDecoder wraps a StreamDecoder to recognize tags 0, 1, 2, and 3 as
// date-times and bignums, per RFC 8949 section 3.4.1 through 3.4.3.
type ExtendedDecoder struct {
	basic  *StreamDecoder
	config DecodeExtensionConfig

	// queued holds the synthetic ByteString that follows the UnrecognizedTag
	// returned for a bignum that BignumConvert declines to fold into a basic
	// integer because its magnitude is longer than 7 bytes. At most one such
	// event can be outstanding at a time, since nothing is read from basic
	// until the queue drains.
	queued []ExtendedEvent
}

// NewExtendedDecoder creates an ExtendedDecoder wrapping a new StreamDecoder
// over source. opts, if any, are forwarded to the underlying StreamDecoder.
func NewExtendedDecoder(source io.Reader, opts ...StreamDecoderOption) *ExtendedDecoder {
	return NewExtendedDecoderFromStream(NewStreamDecoder(source, opts...))
}

// NewExtendedDecoderFromStream wraps an already-constructed StreamDecoder.
func NewExtendedDecoderFromStream(basic *StreamDecoder) *ExtendedDecoder {
	return &ExtendedDecoder{basic: basic}
}

// Config returns the decoder's DecodeExtensionConfig for in-place mutation
// via its setters.
func (d *ExtendedDecoder) Config() *DecodeExtensionConfig { return &d.config }

// NextEvent is NextEvent's basic counterpart, additionally folding
// recognized tags into ExtendedDateTime/ExtendedBigInt events.
func (d *ExtendedDecoder) NextEvent() (ExtendedEvent, error) {
	if len(d.queued) > 0 {
		ev := d.queued[0]
		d.queued = d.queued[1:]
		return ev, nil
	}

	ev, err := d.basic.NextEvent()
	if err != nil {
		return ExtendedEvent{}, err
	}

	if ev.Kind != EventTag {
		return translateBasicEvent(ev), nil
	}

	switch ev.Tag {
	case 0:
		if d.config.dateTimeStyle != DateTimeDecodeStandard {
			return ExtendedEvent{Kind: ExtendedUnrecognizedTag, Tag: ev.Tag}, nil
		}
		return d.decodeTextDateTime()
	case 1:
		if d.config.dateTimeStyle != DateTimeDecodeStandard {
			return ExtendedEvent{Kind: ExtendedUnrecognizedTag, Tag: ev.Tag}, nil
		}
		return d.decodeNumericDateTime()
	case 2, 3:
		return d.decodeBignum(ev.Tag)
	default:
		return ExtendedEvent{Kind: ExtendedUnrecognizedTag, Tag: ev.Tag}, nil
	}
}

func (d *ExtendedDecoder) decodeTextDateTime() (ExtendedEvent, error) {
	content, err := d.basic.NextEvent()
	if err != nil {
		return ExtendedEvent{}, err
	}

	var text string
	switch content.Kind {
	case EventTextString:
		text = content.Text
	case EventUnknownLengthTextString:
		text, err = collectTextSegments(d.basic)
		if err != nil {
			return ExtendedEvent{}, err
		}
	default:
		return ExtendedEvent{}, &TagInvalidError{Tag: 0, Reason: "content is not a text string"}
	}

	t, parseErr := time.Parse(time.RFC3339Nano, text)
	if parseErr != nil {
		return ExtendedEvent{}, &TagInvalidError{Tag: 0, Reason: parseErr.Error()}
	}
	return ExtendedEvent{Kind: ExtendedDateTime, DateTime: t}, nil
}

func (d *ExtendedDecoder) decodeNumericDateTime() (ExtendedEvent, error) {
	content, err := d.basic.NextEvent()
	if err != nil {
		return ExtendedEvent{}, err
	}

	switch content.Kind {
	case EventUnsigned:
		if content.Unsigned > math.MaxInt64 {
			return ExtendedEvent{}, &TagInvalidError{Tag: 1, Reason: "epoch seconds do not fit a signed 64-bit integer"}
		}
		return ExtendedEvent{Kind: ExtendedDateTime, DateTime: time.Unix(int64(content.Unsigned), 0).UTC()}, nil
	case EventSigned:
		return ExtendedEvent{Kind: ExtendedDateTime, DateTime: time.Unix(InterpretSigned(content.Signed), 0).UTC()}, nil
	case EventFloat:
		sec, frac := math.Modf(content.Float)
		return ExtendedEvent{Kind: ExtendedDateTime, DateTime: time.Unix(int64(sec), int64(frac*1e9)).UTC()}, nil
	default:
		return ExtendedEvent{}, &TagInvalidError{Tag: 1, Reason: "content is not a number"}
	}
}

func (d *ExtendedDecoder) decodeBignum(tag uint64) (ExtendedEvent, error) {
	content, err := d.basic.NextEvent()
	if err != nil {
		return ExtendedEvent{}, err
	}

	var raw []byte
	switch content.Kind {
	case EventByteString:
		raw = content.Bytes
	case EventUnknownLengthByteString:
		raw, err = collectByteSegments(d.basic)
		if err != nil {
			return ExtendedEvent{}, err
		}
	default:
		return ExtendedEvent{}, &TagInvalidError{Tag: tag, Reason: "content is not a byte string"}
	}

	if d.config.bignumStyle == BignumNum {
		n := new(big.Int).SetBytes(raw)
		if tag == 3 {
			n.Add(n, big.NewInt(1))
			n.Neg(n)
		}
		return ExtendedEvent{Kind: ExtendedBigInt, BigInt: n}, nil
	}

	stripped := raw
	for len(stripped) > 0 && stripped[0] == 0 {
		stripped = stripped[1:]
	}

	// A magnitude of 7 bytes or fewer is at most 2^56-1, which always fits a
	// 64-bit CBOR integer argument, so it can be folded into a basic
	// Unsigned/Signed event instead of kept as a tagged bignum.
	if len(stripped) <= 7 {
		var wire uint64
		for _, b := range stripped {
			wire = wire<<8 | uint64(b)
		}
		if tag == 3 {
			return ExtendedEvent{Kind: ExtendedSigned, Signed: wire}, nil
		}
		return ExtendedEvent{Kind: ExtendedUnsigned, Unsigned: wire}, nil
	}

	if d.config.bignumStyle == BignumForceConvert {
		return ExtendedEvent{}, ErrOversizedBignum
	}
	d.queued = append(d.queued, ExtendedEvent{Kind: ExtendedByteString, Bytes: raw})
	return ExtendedEvent{Kind: ExtendedUnrecognizedTag, Tag: tag}, nil
}

// translateBasicEvent converts a basic Event into the ExtendedEvent variant
// of the same shape, for the events the extended layer passes through
// unchanged.
func translateBasicEvent(ev Event) ExtendedEvent {
	out := ExtendedEvent{
		Unsigned: ev.Unsigned,
		Signed:   ev.Signed,
		Bytes:    ev.Bytes,
		Text:     ev.Text,
		Length:   ev.Length,
		Simple:   ev.Simple,
		Float:    ev.Float,
	}
	switch ev.Kind {
	case EventUnsigned:
		out.Kind = ExtendedUnsigned
	case EventSigned:
		out.Kind = ExtendedSigned
	case EventByteString:
		out.Kind = ExtendedByteString
	case EventUnknownLengthByteString:
		out.Kind = ExtendedUnknownLengthByteString
	case EventTextString:
		out.Kind = ExtendedTextString
	case EventUnknownLengthTextString:
		out.Kind = ExtendedUnknownLengthTextString
	case EventArray:
		out.Kind = ExtendedArray
	case EventUnknownLengthArray:
		out.Kind = ExtendedUnknownLengthArray
	case EventMap:
		out.Kind = ExtendedMap
	case EventUnknownLengthMap:
		out.Kind = ExtendedUnknownLengthMap
	case EventSimple:
		out.Kind = ExtendedSimple
	case EventFloat:
		out.Kind = ExtendedFloat
	case EventBreak:
		out.Kind = ExtendedBreak
	}
	return out
}
