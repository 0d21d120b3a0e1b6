package cbor_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	cbor "github.com/na-sa-do/borc"
)

func encodeAll(t *testing.T, events []cbor.Event) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := cbor.NewStreamEncoder(&buf)
	for _, ev := range events {
		if err := enc.FeedEvent(ev); err != nil {
			t.Fatalf("FeedEvent(%+v): %v", ev, err)
		}
	}
	if !enc.ReadyToFinish() {
		t.Fatalf("encoder not ready to finish after feeding %+v", events)
	}
	return buf.Bytes()
}

func TestEncodeUnsignedWidths(t *testing.T) {
	cases := []struct {
		val  uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{23, []byte{0x17}},
		{100, []byte{0x18, 0x64}},
		{256, []byte{0x19, 0x01, 0x00}},
		{65536, []byte{0x1a, 0x00, 0x01, 0x00, 0x00}},
		{1 << 32, []byte{0x1b, 0, 0, 0, 1, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		got := encodeAll(t, []cbor.Event{{Kind: cbor.EventUnsigned, Unsigned: c.val}})
		if !bytes.Equal(got, c.want) {
			t.Errorf("encode %d: got %x, want %x", c.val, got, c.want)
		}
	}
}

func TestEncodeArray(t *testing.T) {
	got := encodeAll(t, []cbor.Event{
		{Kind: cbor.EventArray, Length: 3},
		{Kind: cbor.EventUnsigned, Unsigned: 1},
		{Kind: cbor.EventUnsigned, Unsigned: 2},
		{Kind: cbor.EventUnsigned, Unsigned: 3},
	})
	want := []byte{0x83, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeIndefiniteArray(t *testing.T) {
	got := encodeAll(t, []cbor.Event{
		{Kind: cbor.EventUnknownLengthArray},
		{Kind: cbor.EventUnsigned, Unsigned: 1},
		{Kind: cbor.EventBreak},
	})
	want := []byte{0x9f, 0x01, 0xff}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeTag(t *testing.T) {
	got := encodeAll(t, []cbor.Event{
		{Kind: cbor.EventTag, Tag: 1},
		{Kind: cbor.EventUnsigned, Unsigned: 0},
	})
	want := []byte{0xc1, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInvalidBreak(t *testing.T) {
	var buf bytes.Buffer
	enc := cbor.NewStreamEncoder(&buf)
	err := enc.FeedEvent(cbor.Event{Kind: cbor.EventBreak})
	if !errors.Is(err, cbor.ErrInvalidBreak) {
		t.Fatalf("got %v, want ErrInvalidBreak", err)
	}
}

func TestEncodeFloatShortestExact(t *testing.T) {
	cases := []struct {
		name string
		val  float64
		want []byte
	}{
		{"one", 1.0, []byte{0xf9, 0x3c, 0x00}},
		{"positive infinity", math.Inf(1), []byte{0xf9, 0x7c, 0x00}},
		{"negative infinity", math.Inf(-1), []byte{0xf9, 0xfc, 0x00}},
		{"nan", math.NaN(), []byte{0xf9, 0x7e, 0x00}},
		{"needs single", float64(float32(0.999999940395355225)), []byte{0xfa, 0x3f, 0x7f, 0xff, 0xff}},
		{"needs double", 1.0000000000000002, []byte{0xfb, 0x3f, 0xf0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := encodeAll(t, []cbor.Event{{Kind: cbor.EventFloat, Float: c.val}})
			if !bytes.Equal(got, c.want) {
				t.Errorf("encode %v: got %x, want %x", c.val, got, c.want)
			}
		})
	}
}
