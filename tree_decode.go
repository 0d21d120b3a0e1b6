package cbor

import "io"

// TreeDecoder builds a single Item from a CBOR byte stream, layering
// recursive descent over a StreamDecoder.
type TreeDecoder struct {
	opts []StreamDecoderOption
}

// NewTreeDecoder creates a TreeDecoder. Any StreamDecoderOption passed here
// is forwarded to the StreamDecoder each Decode call constructs internally.
func NewTreeDecoder(opts ...StreamDecoderOption) *TreeDecoder {
	return &TreeDecoder{opts: opts}
}

// Decode reads one top-level Item from source. A lone Break at the top
// level is reported as a MalformedError.
func (t *TreeDecoder) Decode(source io.Reader) (Item, error) {
	dec := NewStreamDecoder(source, t.opts...)
	item, err := decodeItemFromStream(dec)
	if err != nil {
		return Item{}, err
	}
	if item == nil {
		return Item{}, &MalformedError{Reason: "unexpected break at top level"}
	}
	return *item, nil
}

// decodeItemFromStream consumes exactly the events that make up one Item
// (recursively, for containers) and returns it, or nil if the next event is
// a Break — the signal a caller within a container uses to know it's been
// closed rather than given another element.
func decodeItemFromStream(dec *StreamDecoder) (*Item, error) {
	ev, err := dec.NextEvent()
	if err != nil {
		return nil, err
	}

	switch ev.Kind {
	case EventBreak:
		return nil, nil

	case EventUnsigned:
		return &Item{Kind: ItemUnsigned, Unsigned: ev.Unsigned}, nil
	case EventSigned:
		return &Item{Kind: ItemSigned, Signed: ev.Signed}, nil
	case EventFloat:
		return &Item{Kind: ItemFloat, Float: ev.Float}, nil
	case EventSimple:
		return &Item{Kind: ItemSimple, Simple: ev.Simple}, nil

	case EventByteString:
		return &Item{Kind: ItemByteString, Bytes: ev.Bytes}, nil
	case EventTextString:
		return &Item{Kind: ItemTextString, Text: ev.Text}, nil

	case EventUnknownLengthByteString:
		buf, err := collectByteSegments(dec)
		if err != nil {
			return nil, err
		}
		return &Item{Kind: ItemByteString, Bytes: buf}, nil
	case EventUnknownLengthTextString:
		s, err := collectTextSegments(dec)
		if err != nil {
			return nil, err
		}
		return &Item{Kind: ItemTextString, Text: s}, nil

	case EventArray:
		elems := make([]Item, 0, ev.Length)
		for i := uint64(0); i < ev.Length; i++ {
			child, err := decodeItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if child == nil {
				return nil, &MalformedError{Reason: "premature break inside array"}
			}
			elems = append(elems, *child)
		}
		return &Item{Kind: ItemArray, Array: elems}, nil

	case EventUnknownLengthArray:
		var elems []Item
		for {
			child, err := decodeItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if child == nil {
				break
			}
			elems = append(elems, *child)
		}
		return &Item{Kind: ItemArray, Array: elems}, nil

	case EventMap:
		entries := make([]MapEntry, 0, ev.Length)
		for i := uint64(0); i < ev.Length; i++ {
			key, err := decodeItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if key == nil {
				return nil, &MalformedError{Reason: "premature break inside map"}
			}
			value, err := decodeItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if value == nil {
				return nil, &MalformedError{Reason: "premature break inside map"}
			}
			entries = append(entries, MapEntry{Key: *key, Value: *value})
		}
		return &Item{Kind: ItemMap, Map: entries}, nil

	case EventUnknownLengthMap:
		var entries []MapEntry
		for {
			key, err := decodeItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if key == nil {
				break
			}
			value, err := decodeItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if value == nil {
				return nil, &MalformedError{Reason: "break between map key and value"}
			}
			entries = append(entries, MapEntry{Key: *key, Value: *value})
		}
		return &Item{Kind: ItemMap, Map: entries}, nil

	case EventTag:
		child, err := decodeItemFromStream(dec)
		if err != nil {
			return nil, err
		}
		if child == nil {
			return nil, &MalformedError{Reason: "tag without content"}
		}
		return &Item{Kind: ItemTag, Tag: ev.Tag, Child: child}, nil

	default:
		return nil, &MalformedError{Reason: "unrecognized event kind"}
	}
}

// collectByteSegments concatenates the chunks of an indefinite-length byte
// string until it sees the terminating Break. The first chunk may itself be
// the Break, for the empty string `\x5f\xff`.
func collectByteSegments(dec *StreamDecoder) ([]byte, error) {
	var out []byte
	for {
		ev, err := dec.NextEvent()
		if err != nil {
			return nil, err
		}
		if ev.Kind == EventBreak {
			return out, nil
		}
		if ev.Kind != EventByteString {
			return nil, &MalformedError{Reason: "segmented byte string contains non-byte-string chunk"}
		}
		out = append(out, ev.Bytes...)
	}
}

// collectTextSegments is collectByteSegments for indefinite-length text
// strings. Concatenating valid UTF-8 strings always yields valid UTF-8, so
// no re-validation is needed once each chunk has already been validated by
// the decoder.
func collectTextSegments(dec *StreamDecoder) (string, error) {
	var out []byte
	for {
		ev, err := dec.NextEvent()
		if err != nil {
			return "", err
		}
		if ev.Kind == EventBreak {
			return string(out), nil
		}
		if ev.Kind != EventTextString {
			return "", &MalformedError{Reason: "segmented text string contains non-text-string chunk"}
		}
		out = append(out, ev.Text...)
	}
}
