package cbor

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/x448/float16"
)

// StreamEncoder writes a sequence of Events as CBOR bytes, tracking the same
// pending-container stack a StreamDecoder would build while reading them
// back. FeedEvent rejects an unmatched Break with ErrInvalidBreak; a
// container fed too few items leaves ReadyToFinish false. Items fed after a
// definite-length Array or Map is complete are not rejected: they are
// written as further top-level items.
type StreamEncoder struct {
	dest    io.Writer
	pending []pendingFrame
}

// NewStreamEncoder creates a StreamEncoder writing to dest.
func NewStreamEncoder(dest io.Writer) *StreamEncoder {
	return &StreamEncoder{dest: dest}
}

// ReadyToFinish reports whether every container FeedEvent has opened has
// also been closed.
func (e *StreamEncoder) ReadyToFinish() bool {
	return len(e.pending) == 0
}

// FeedEvent writes ev to the underlying writer. Events must be fed in the
// same order NextEvent would produce them for the document being encoded;
// FeedEvent does not reorder or buffer anything beyond what a single head
// and its argument require.
func (e *StreamEncoder) FeedEvent(ev Event) error {
	if ev.Kind == EventBreak {
		if !canBreak(e.pending) {
			return ErrInvalidBreak
		}
		e.pending = e.pending[:len(e.pending)-1]
		return e.write([]byte{cborBreakFlag})
	}

	e.pending, _ = advance(e.pending)

	switch ev.Kind {
	case EventUnsigned:
		return e.writeHead(cborTypePositiveInt, ev.Unsigned)
	case EventSigned:
		return e.writeHead(cborTypeNegativeInt, ev.Signed)
	case EventByteString:
		if err := e.writeHead(cborTypeByteString, uint64(len(ev.Bytes))); err != nil {
			return err
		}
		return e.write(ev.Bytes)
	case EventUnknownLengthByteString:
		e.pending = append(e.pending, pendingFrame{kind: pendingBreak})
		return e.write([]byte{byte(cborTypeByteString) | additionalInformationAsIndefiniteLengthFlag})
	case EventTextString:
		if err := e.writeHead(cborTypeTextString, uint64(len(ev.Text))); err != nil {
			return err
		}
		return e.write([]byte(ev.Text))
	case EventUnknownLengthTextString:
		e.pending = append(e.pending, pendingFrame{kind: pendingBreak})
		return e.write([]byte{byte(cborTypeTextString) | additionalInformationAsIndefiniteLengthFlag})
	case EventArray:
		if ev.Length > 0 {
			e.pending = append(e.pending, pendingFrame{kind: pendingArray, remaining: ev.Length})
		}
		return e.writeHead(cborTypeArray, ev.Length)
	case EventUnknownLengthArray:
		e.pending = append(e.pending, pendingFrame{kind: pendingBreak})
		return e.write([]byte{byte(cborTypeArray) | additionalInformationAsIndefiniteLengthFlag})
	case EventMap:
		if ev.Length > 0 {
			e.pending = append(e.pending, pendingFrame{kind: pendingMap, remaining: ev.Length})
		}
		return e.writeHead(cborTypeMap, ev.Length)
	case EventUnknownLengthMap:
		e.pending = append(e.pending, pendingFrame{kind: pendingUnknownLengthMap})
		return e.write([]byte{byte(cborTypeMap) | additionalInformationAsIndefiniteLengthFlag})
	case EventTag:
		e.pending = append(e.pending, pendingFrame{kind: pendingTag})
		return e.writeHead(cborTypeTag, ev.Tag)
	case EventSimple:
		return e.writeHead(cborTypePrimitives, uint64(ev.Simple))
	case EventFloat:
		return e.writeFloat(ev.Float)
	default:
		return &MalformedError{Reason: "unrecognized event kind"}
	}
}

func (e *StreamEncoder) write(b []byte) error {
	_, err := e.dest.Write(b)
	if err != nil {
		return &wrappedIOError{err}
	}
	return nil
}

// writeHead writes the initial byte and, if needed, a big-endian argument,
// always choosing the shortest encoding that represents val exactly.
func (e *StreamEncoder) writeHead(t cborType, val uint64) error {
	switch {
	case val <= 23:
		return e.write([]byte{byte(t) | byte(val)})
	case val <= math.MaxUint8:
		return e.write([]byte{byte(t) | additionalInformationWith1ByteArgument, byte(val)})
	case val <= math.MaxUint16:
		buf := make([]byte, 3)
		buf[0] = byte(t) | additionalInformationWith2ByteArgument
		binary.BigEndian.PutUint16(buf[1:], uint16(val))
		return e.write(buf)
	case val <= math.MaxUint32:
		buf := make([]byte, 5)
		buf[0] = byte(t) | additionalInformationWith4ByteArgument
		binary.BigEndian.PutUint32(buf[1:], uint32(val))
		return e.write(buf)
	default:
		buf := make([]byte, 9)
		buf[0] = byte(t) | additionalInformationWith8ByteArgument
		binary.BigEndian.PutUint64(buf[1:], val)
		return e.write(buf)
	}
}

// writeFloat picks the shortest of half, single, and double precision that
// round-trips f exactly, per RFC 8949's preferred serialization guidance for
// floating-point values.
func (e *StreamEncoder) writeFloat(f float64) error {
	if f16 := float16.Fromfloat32(float32(f)); !math.IsNaN(f) && float64(f16.Float32()) == f {
		buf := make([]byte, 3)
		buf[0] = byte(cborTypePrimitives) | additionalInformationWith2ByteArgument
		binary.BigEndian.PutUint16(buf[1:], f16.Bits())
		return e.write(buf)
	}
	if math.IsNaN(f) {
		// The canonical NaN payload is the half-precision quiet NaN,
		// 0x7e00, regardless of the original NaN's bit pattern.
		return e.write([]byte{byte(cborTypePrimitives) | additionalInformationWith2ByteArgument, 0x7e, 0x00})
	}
	if single := float32(f); float64(single) == f {
		buf := make([]byte, 5)
		buf[0] = byte(cborTypePrimitives) | additionalInformationWith4ByteArgument
		binary.BigEndian.PutUint32(buf[1:], math.Float32bits(single))
		return e.write(buf)
	}
	buf := make([]byte, 9)
	buf[0] = byte(cborTypePrimitives) | additionalInformationWith8ByteArgument
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(f))
	return e.write(buf)
}
