package cbor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"unicode/utf8"

	"github.com/x448/float16"
)

// StreamDecoderOption configures a StreamDecoder at construction time.
type StreamDecoderOption func(*StreamDecoder)

// WithMaxDepth bounds how many containers (arrays, maps, tags, and
// indefinite-length strings) may be open at once. Exceeding it surfaces as a *MalformedError instead of letting the
// pending stack grow without bound. A depth of 0, the default, means
// unlimited.
func WithMaxDepth(depth int) StreamDecoderOption {
	return func(d *StreamDecoder) {
		d.maxDepth = depth
	}
}

// StreamDecoder reads a CBOR byte stream and produces a sequence of Events
// without ever materializing the whole document. It buffers only as much of
// the underlying io.Reader as the item currently in progress requires.
type StreamDecoder struct {
	source io.Reader
	buf    []byte
	pending []pendingFrame
	maxDepth int
}

// NewStreamDecoder creates a StreamDecoder reading from source.
func NewStreamDecoder(source io.Reader, opts ...StreamDecoderOption) *StreamDecoder {
	d := &StreamDecoder{source: source}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// extendBuffer reads until at least n bytes are available, returning
// ErrInsufficient translated from io.EOF/io.ErrUnexpectedEOF, or any other
// transport error wrapped for errors.Is/errors.As.
func (d *StreamDecoder) extendBuffer(n int) error {
	have := len(d.buf)
	need := n - have
	if need <= 0 {
		return nil
	}
	grown := make([]byte, n)
	copy(grown, d.buf)
	if read, err := io.ReadFull(d.source, grown[have:]); err != nil {
		// Keep whatever did arrive so that a retry continues from it.
		d.buf = grown[:have+read]
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrInsufficient
		}
		return &wrappedIOError{err}
	}
	d.buf = grown
	return nil
}

func (d *StreamDecoder) consume(n int) {
	d.buf = d.buf[n:]
}

// readArgument reads the initial byte's argument given its additional-info
// code, returning the argument value (nil for indefinite length) and the
// total number of bytes the head occupies.
func (d *StreamDecoder) readArgument(additional byte) (val *uint64, headLen int, err error) {
	switch {
	case additional < 24:
		v := uint64(additional)
		return &v, 1, nil
	case additional == additionalInformationWith1ByteArgument:
		if err := d.extendBuffer(2); err != nil {
			return nil, 0, err
		}
		v := uint64(d.buf[1])
		return &v, 2, nil
	case additional == additionalInformationWith2ByteArgument:
		if err := d.extendBuffer(3); err != nil {
			return nil, 0, err
		}
		v := uint64(binary.BigEndian.Uint16(d.buf[1:3]))
		return &v, 3, nil
	case additional == additionalInformationWith4ByteArgument:
		if err := d.extendBuffer(5); err != nil {
			return nil, 0, err
		}
		v := uint64(binary.BigEndian.Uint32(d.buf[1:5]))
		return &v, 5, nil
	case additional == additionalInformationWith8ByteArgument:
		if err := d.extendBuffer(9); err != nil {
			return nil, 0, err
		}
		v := binary.BigEndian.Uint64(d.buf[1:9])
		return &v, 9, nil
	case additional == additionalInformationAsIndefiniteLengthFlag:
		return nil, 1, nil
	default:
		return nil, 0, &MalformedError{Reason: "reserved additional information value"}
	}
}

// pushDepth checks maxDepth before growing the pending stack, and is a
// no-op when maxDepth is 0.
func (d *StreamDecoder) pushDepth() error {
	if d.maxDepth > 0 && len(d.pending) >= d.maxDepth {
		return &MalformedError{Reason: "nesting depth exceeds configured maximum"}
	}
	return nil
}

// NextEvent decodes and returns the next Event in the stream. It returns
// ErrInsufficient if the underlying reader did not have enough data to
// complete the item in progress; calling NextEvent again after more data
// becomes available resumes cleanly, since StreamDecoder keeps no state
// beyond its byte buffer and pending stack.
func (d *StreamDecoder) NextEvent() (Event, error) {
	if err := d.extendBuffer(1); err != nil {
		return Event{}, err
	}
	t, additional := parseInitialByte(d.buf[0])

	if additional == additionalInformationAsIndefiniteLengthFlag && t != cborTypeByteString &&
		t != cborTypeTextString && t != cborTypeArray && t != cborTypeMap && t != cborTypePrimitives {
		return Event{}, &MalformedError{Reason: "indefinite length not allowed for " + t.String()}
	}

	// Break closes the innermost open frame instead of consuming one of its
	// items, so it skips the general transition below entirely.
	if t == cborTypePrimitives && additional == additionalInformationAsIndefiniteLengthFlag {
		if !canBreak(d.pending) {
			return Event{}, &MalformedError{Reason: "unexpected break"}
		}
		d.pending = d.pending[:len(d.pending)-1]
		d.consume(1)
		return Event{Kind: EventBreak}, nil
	}

	// Every other event counts as one item of whatever container is
	// currently open, so the transition runs before the item-specific
	// dispatch below has a chance to push a frame of its own.
	depth := len(d.pending)
	var top pendingFrame
	if depth > 0 {
		top = d.pending[depth-1]
	}
	d.pending, _ = advance(d.pending)

	ev, headLen, err := d.decodeItem(t, additional)
	if err != nil {
		// Undo the transition so that a retry applies it exactly once.
		d.pending = d.pending[:depth]
		if depth > 0 {
			d.pending[depth-1] = top
		}
		return Event{}, err
	}
	d.consume(headLen)
	return ev, nil
}

func (d *StreamDecoder) decodeItem(t cborType, additional byte) (Event, int, error) {
	switch t {
	case cborTypePositiveInt:
		val, headLen, err := d.readArgument(additional)
		if err != nil {
			return Event{}, 0, err
		}
		return Event{Kind: EventUnsigned, Unsigned: *val}, headLen, nil

	case cborTypeNegativeInt:
		val, headLen, err := d.readArgument(additional)
		if err != nil {
			return Event{}, 0, err
		}
		return Event{Kind: EventSigned, Signed: *val}, headLen, nil

	case cborTypeByteString, cborTypeTextString:
		return d.decodeString(t, additional)

	case cborTypeArray:
		return d.decodeArray(additional)

	case cborTypeMap:
		return d.decodeMap(additional)

	case cborTypeTag:
		// val is never nil here: the indefinite-length check in NextEvent
		// already rejects additional == 31 for every type but the string,
		// array, map, and primitive ones that allow it.
		val, headLen, err := d.readArgument(additional)
		if err != nil {
			return Event{}, 0, err
		}
		if err := d.pushDepth(); err != nil {
			return Event{}, 0, err
		}
		d.pending = append(d.pending, pendingFrame{kind: pendingTag})
		return Event{Kind: EventTag, Tag: *val}, headLen, nil

	case cborTypePrimitives:
		return d.decodePrimitive(additional)

	default:
		return Event{}, 0, &MalformedError{Reason: "unrecognized major type"}
	}
}

func (d *StreamDecoder) decodeString(t cborType, additional byte) (Event, int, error) {
	isText := t == cborTypeTextString
	val, headLen, err := d.readArgument(additional)
	if err != nil {
		return Event{}, 0, err
	}
	if val == nil {
		if err := d.pushDepth(); err != nil {
			return Event{}, 0, err
		}
		d.pending = append(d.pending, pendingFrame{kind: pendingBreak})
		if isText {
			return Event{Kind: EventUnknownLengthTextString}, headLen, nil
		}
		return Event{Kind: EventUnknownLengthByteString}, headLen, nil
	}

	total := headLen + int(*val)
	if err := d.extendBuffer(total); err != nil {
		return Event{}, 0, err
	}
	content := d.buf[headLen:total]

	if isText {
		if !utf8.Valid(content) {
			return Event{}, 0, &InvalidUTF8Error{Offset: firstInvalidUTF8Offset(content)}
		}
		text := make([]byte, len(content))
		copy(text, content)
		return Event{Kind: EventTextString, Text: string(text)}, total, nil
	}

	bytesCopy := make([]byte, len(content))
	copy(bytesCopy, content)
	return Event{Kind: EventByteString, Bytes: bytesCopy}, total, nil
}

func (d *StreamDecoder) decodeArray(additional byte) (Event, int, error) {
	val, headLen, err := d.readArgument(additional)
	if err != nil {
		return Event{}, 0, err
	}
	if val == nil {
		if err := d.pushDepth(); err != nil {
			return Event{}, 0, err
		}
		d.pending = append(d.pending, pendingFrame{kind: pendingBreak})
		return Event{Kind: EventUnknownLengthArray}, headLen, nil
	}
	if *val > 0 {
		if err := d.pushDepth(); err != nil {
			return Event{}, 0, err
		}
		d.pending = append(d.pending, pendingFrame{kind: pendingArray, remaining: *val})
	}
	return Event{Kind: EventArray, Length: *val}, headLen, nil
}

func (d *StreamDecoder) decodeMap(additional byte) (Event, int, error) {
	val, headLen, err := d.readArgument(additional)
	if err != nil {
		return Event{}, 0, err
	}
	if val == nil {
		if err := d.pushDepth(); err != nil {
			return Event{}, 0, err
		}
		d.pending = append(d.pending, pendingFrame{kind: pendingUnknownLengthMap})
		return Event{Kind: EventUnknownLengthMap}, headLen, nil
	}
	if *val > 0 {
		if err := d.pushDepth(); err != nil {
			return Event{}, 0, err
		}
		d.pending = append(d.pending, pendingFrame{kind: pendingMap, remaining: *val})
	}
	return Event{Kind: EventMap, Length: *val}, headLen, nil
}

func (d *StreamDecoder) decodePrimitive(additional byte) (Event, int, error) {
	switch {
	case additional < 24:
		return Event{Kind: EventSimple, Simple: additional}, 1, nil

	case additional == additionalInformationWith1ByteArgument:
		if err := d.extendBuffer(2); err != nil {
			return Event{}, 0, err
		}
		b := d.buf[1]
		if b < 24 {
			return Event{}, 0, &MalformedError{Reason: "simple value encoded in non-canonical width"}
		}
		return Event{Kind: EventSimple, Simple: b}, 2, nil

	case additional == additionalInformationWith2ByteArgument:
		if err := d.extendBuffer(3); err != nil {
			return Event{}, 0, err
		}
		bits := binary.BigEndian.Uint16(d.buf[1:3])
		return Event{Kind: EventFloat, Float: float64(float16.Frombits(bits).Float32())}, 3, nil

	case additional == additionalInformationWith4ByteArgument:
		if err := d.extendBuffer(5); err != nil {
			return Event{}, 0, err
		}
		bits := binary.BigEndian.Uint32(d.buf[1:5])
		return Event{Kind: EventFloat, Float: float64(math.Float32frombits(bits))}, 5, nil

	case additional == additionalInformationWith8ByteArgument:
		if err := d.extendBuffer(9); err != nil {
			return Event{}, 0, err
		}
		bits := binary.BigEndian.Uint64(d.buf[1:9])
		return Event{Kind: EventFloat, Float: math.Float64frombits(bits)}, 9, nil

	default:
		return Event{}, 0, &MalformedError{Reason: "reserved additional information value"}
	}
}

// ReadyToFinish reports whether the decoder has no open containers and no
// unconsumed input, meaning the underlying stream has been fully consumed
// through a well-formed sequence of top-level items. With nothing buffered it
// peeks one byte from the source to find out; a byte read this way stays
// buffered for the next NextEvent.
func (d *StreamDecoder) ReadyToFinish() bool {
	if len(d.pending) != 0 {
		return false
	}
	if len(d.buf) == 0 {
		if err := d.extendBuffer(1); err != nil {
			return errors.Is(err, ErrInsufficient)
		}
	}
	return len(d.buf) == 0
}

// Finish returns the original reader back to the caller, or ErrInsufficient
// if the decoder is not ReadyToFinish.
func (d *StreamDecoder) Finish() (io.Reader, error) {
	if !d.ReadyToFinish() {
		return nil, ErrInsufficient
	}
	return d.source, nil
}

// ForceFinish returns a reader that replays any buffered-but-unconsumed
// bytes before continuing with the original source, regardless of whether
// the decoder is ReadyToFinish. Use this to hand the stream off to another
// reader after decoding a prefix of it.
func (d *StreamDecoder) ForceFinish() io.Reader {
	if len(d.buf) == 0 {
		return d.source
	}
	leftover := make([]byte, len(d.buf))
	copy(leftover, d.buf)
	return io.MultiReader(bytes.NewReader(leftover), d.source)
}

// firstInvalidUTF8Offset finds the byte offset of the first invalid UTF-8
// sequence in b, which utf8.Valid has already determined is not entirely
// valid UTF-8.
func firstInvalidUTF8Offset(b []byte) int {
	offset := 0
	for offset < len(b) {
		r, size := utf8.DecodeRune(b[offset:])
		if r == utf8.RuneError && size <= 1 {
			return offset
		}
		offset += size
	}
	return offset
}
