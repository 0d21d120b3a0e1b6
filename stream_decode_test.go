package cbor_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	cbor "github.com/na-sa-do/borc"
)

func decodeAll(t *testing.T, data []byte, opts ...cbor.StreamDecoderOption) ([]cbor.Event, error) {
	t.Helper()
	dec := cbor.NewStreamDecoder(bytes.NewReader(data), opts...)
	var events []cbor.Event
	for {
		if dec.ReadyToFinish() {
			return events, nil
		}
		ev, err := dec.NextEvent()
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

func TestDecodeUnsignedWidths(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want uint64
	}{
		{"tiny", []byte{0x00}, 0},
		{"tiny max", []byte{0x17}, 23},
		{"1-byte", []byte{0x18, 0x64}, 100},
		{"2-byte", []byte{0x19, 0x01, 0x00}, 256},
		{"4-byte", []byte{0x1a, 0x00, 0x01, 0x00, 0x00}, 65536},
		{"8-byte", []byte{0x1b, 0, 0, 0, 1, 0, 0, 0, 0}, 1 << 32},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			events, err := decodeAll(t, c.data)
			if err != nil {
				t.Fatalf("decode %x: %v", c.data, err)
			}
			if len(events) != 1 || events[0].Kind != cbor.EventUnsigned || events[0].Unsigned != c.want {
				t.Fatalf("decode %x: got %+v, want Unsigned(%d)", c.data, events, c.want)
			}
		})
	}
}

func TestDecodeNegative(t *testing.T) {
	events, err := decodeAll(t, []byte{0x20})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 || events[0].Kind != cbor.EventSigned {
		t.Fatalf("got %+v", events)
	}
	if got := cbor.InterpretSigned(events[0].Signed); got != -1 {
		t.Errorf("InterpretSigned(%d) = %d, want -1", events[0].Signed, got)
	}
}

func TestDecodeDefiniteByteString(t *testing.T) {
	events, err := decodeAll(t, []byte{0x43, 'a', 'b', 'c'})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 || events[0].Kind != cbor.EventByteString || string(events[0].Bytes) != "abc" {
		t.Fatalf("got %+v", events)
	}
}

func TestDecodeSegmentedByteString(t *testing.T) {
	data := []byte{0x5f, 0x41, 'a', 0x41, 'b', 0xff}
	events, err := decodeAll(t, data)
	if err != nil {
		t.Fatalf("decode %x: %v", data, err)
	}
	wantKinds := []cbor.EventKind{
		cbor.EventUnknownLengthByteString,
		cbor.EventByteString,
		cbor.EventByteString,
		cbor.EventBreak,
	}
	if len(events) != len(wantKinds) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(wantKinds), events)
	}
	for i, k := range wantKinds {
		if events[i].Kind != k {
			t.Errorf("event %d: got kind %v, want %v", i, events[i].Kind, k)
		}
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	_, err := decodeAll(t, []byte{0x61, 0xff})
	var utfErr *cbor.InvalidUTF8Error
	if !errors.As(err, &utfErr) {
		t.Fatalf("got %v, want *InvalidUTF8Error", err)
	}
}

func TestDecodeArray(t *testing.T) {
	events, err := decodeAll(t, []byte{0x83, 0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 4 || events[0].Kind != cbor.EventArray || events[0].Length != 3 {
		t.Fatalf("got %+v", events)
	}
	for i, want := range []uint64{1, 2, 3} {
		if events[i+1].Kind != cbor.EventUnsigned || events[i+1].Unsigned != want {
			t.Errorf("element %d: got %+v, want Unsigned(%d)", i, events[i+1], want)
		}
	}
}

func TestDecodeMap(t *testing.T) {
	events, err := decodeAll(t, []byte{0xa1, 0x01, 0x02})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 3 || events[0].Kind != cbor.EventMap || events[0].Length != 1 {
		t.Fatalf("got %+v", events)
	}
}

func TestDecodeTag(t *testing.T) {
	events, err := decodeAll(t, []byte{0xc1, 0x00})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 2 || events[0].Kind != cbor.EventTag || events[0].Tag != 1 {
		t.Fatalf("got %+v", events)
	}
	if events[1].Kind != cbor.EventUnsigned || events[1].Unsigned != 0 {
		t.Fatalf("got %+v", events)
	}
}

func TestDecodeTagTruncated(t *testing.T) {
	_, err := decodeAll(t, []byte{0xc1})
	if !errors.Is(err, cbor.ErrInsufficient) {
		t.Fatalf("got %v, want ErrInsufficient", err)
	}
}

func TestDecodeTagMalformedContent(t *testing.T) {
	_, err := decodeAll(t, []byte{0xc1, 0xff})
	var malformed *cbor.MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("got %v, want *MalformedError", err)
	}
}

func TestDecodeSimpleAndFloat(t *testing.T) {
	events, err := decodeAll(t, []byte{0xf4, 0xf5, 0xf6, 0xf9, 0x3c, 0x00})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %+v", events)
	}
	if events[0].Kind != cbor.EventSimple || events[0].Simple != 20 {
		t.Errorf("false: got %+v", events[0])
	}
	if events[1].Kind != cbor.EventSimple || events[1].Simple != 21 {
		t.Errorf("true: got %+v", events[1])
	}
	if events[2].Kind != cbor.EventSimple || events[2].Simple != 22 {
		t.Errorf("null: got %+v", events[2])
	}
	if events[3].Kind != cbor.EventFloat || events[3].Float != 1.0 {
		t.Errorf("float: got %+v", events[3])
	}
}

func TestDecodeReservedAdditionalInfo(t *testing.T) {
	_, err := decodeAll(t, []byte{0x1c})
	var malformed *cbor.MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("got %v, want *MalformedError", err)
	}
}

func TestDecodeUnexpectedBreak(t *testing.T) {
	_, err := decodeAll(t, []byte{0xff})
	var malformed *cbor.MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("got %v, want *MalformedError", err)
	}
}

// chunkReader serves a fixed sequence of reads before reporting EOF, letting
// a test control exactly how much data is available at a time.
type chunkReader struct {
	chunks [][]byte
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func TestDecodeInsufficientThenRetry(t *testing.T) {
	src := &chunkReader{chunks: [][]byte{{0x18}}}
	dec := cbor.NewStreamDecoder(src)

	_, err := dec.NextEvent()
	if !errors.Is(err, cbor.ErrInsufficient) {
		t.Fatalf("first call: got %v, want ErrInsufficient", err)
	}

	// Simulate more data arriving on the same underlying source.
	src.chunks = [][]byte{{0x64}}

	ev, err := dec.NextEvent()
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if ev.Kind != cbor.EventUnsigned || ev.Unsigned != 100 {
		t.Fatalf("retry: got %+v, want Unsigned(100)", ev)
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	// A 2-element array whose first element is itself an array: the outer
	// frame is still open (one element left) when the inner one would need
	// to be pushed, so this is where stack depth actually reaches 2. A
	// nested array in the *last* slot wouldn't exercise the cap, since the
	// outer frame closes before the inner one is pushed.
	data := []byte{0x82, 0x81, 0x00, 0x00}
	_, err := decodeAll(t, data, cbor.WithMaxDepth(1))
	var malformed *cbor.MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("got %v, want *MalformedError", err)
	}
}
