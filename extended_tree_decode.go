package cbor

import "io"

// ExtendedTreeDecoder builds a single ExtendedItem from a CBOR byte stream,
// recognizing tags 0-3 along the way.
type ExtendedTreeDecoder struct {
	config DecodeExtensionConfig
	opts   []StreamDecoderOption
}

// NewExtendedTreeDecoder creates an ExtendedTreeDecoder.
func NewExtendedTreeDecoder(opts ...StreamDecoderOption) *ExtendedTreeDecoder {
	return &ExtendedTreeDecoder{opts: opts}
}

// Config returns the decoder's DecodeExtensionConfig for in-place mutation.
func (t *ExtendedTreeDecoder) Config() *DecodeExtensionConfig { return &t.config }

// Decode reads one top-level ExtendedItem from source.
func (t *ExtendedTreeDecoder) Decode(source io.Reader) (ExtendedItem, error) {
	dec := NewExtendedDecoderFromStream(NewStreamDecoder(source, t.opts...))
	dec.config = t.config
	item, err := decodeExtendedItemFromStream(dec)
	if err != nil {
		return ExtendedItem{}, err
	}
	if item == nil {
		return ExtendedItem{}, &MalformedError{Reason: "unexpected break at top level"}
	}
	return *item, nil
}

func decodeExtendedItemFromStream(dec *ExtendedDecoder) (*ExtendedItem, error) {
	ev, err := dec.NextEvent()
	if err != nil {
		return nil, err
	}

	switch ev.Kind {
	case ExtendedBreak:
		return nil, nil

	case ExtendedUnsigned:
		return &ExtendedItem{Kind: ExtendedItemUnsigned, Unsigned: ev.Unsigned}, nil
	case ExtendedSigned:
		return &ExtendedItem{Kind: ExtendedItemSigned, Signed: ev.Signed}, nil
	case ExtendedFloat:
		return &ExtendedItem{Kind: ExtendedItemFloat, Float: ev.Float}, nil
	case ExtendedSimple:
		return &ExtendedItem{Kind: ExtendedItemSimple, Simple: ev.Simple}, nil
	case ExtendedDateTime:
		return &ExtendedItem{Kind: ExtendedItemDateTime, DateTime: ev.DateTime}, nil
	case ExtendedBigInt:
		return &ExtendedItem{Kind: ExtendedItemBigInt, BigInt: ev.BigInt}, nil

	case ExtendedByteString:
		return &ExtendedItem{Kind: ExtendedItemByteString, Bytes: ev.Bytes}, nil
	case ExtendedTextString:
		return &ExtendedItem{Kind: ExtendedItemTextString, Text: ev.Text}, nil

	case ExtendedUnknownLengthByteString:
		buf, err := collectExtendedByteSegments(dec)
		if err != nil {
			return nil, err
		}
		return &ExtendedItem{Kind: ExtendedItemByteString, Bytes: buf}, nil
	case ExtendedUnknownLengthTextString:
		s, err := collectExtendedTextSegments(dec)
		if err != nil {
			return nil, err
		}
		return &ExtendedItem{Kind: ExtendedItemTextString, Text: s}, nil

	case ExtendedArray:
		elems := make([]ExtendedItem, 0, ev.Length)
		for i := uint64(0); i < ev.Length; i++ {
			child, err := decodeExtendedItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if child == nil {
				return nil, &MalformedError{Reason: "premature break inside array"}
			}
			elems = append(elems, *child)
		}
		return &ExtendedItem{Kind: ExtendedItemArray, Array: elems}, nil

	case ExtendedUnknownLengthArray:
		var elems []ExtendedItem
		for {
			child, err := decodeExtendedItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if child == nil {
				break
			}
			elems = append(elems, *child)
		}
		return &ExtendedItem{Kind: ExtendedItemArray, Array: elems}, nil

	case ExtendedMap:
		entries := make([]ExtendedMapEntry, 0, ev.Length)
		for i := uint64(0); i < ev.Length; i++ {
			key, err := decodeExtendedItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if key == nil {
				return nil, &MalformedError{Reason: "premature break inside map"}
			}
			value, err := decodeExtendedItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if value == nil {
				return nil, &MalformedError{Reason: "premature break inside map"}
			}
			entries = append(entries, ExtendedMapEntry{Key: *key, Value: *value})
		}
		return &ExtendedItem{Kind: ExtendedItemMap, Map: entries}, nil

	case ExtendedUnknownLengthMap:
		var entries []ExtendedMapEntry
		for {
			key, err := decodeExtendedItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if key == nil {
				break
			}
			value, err := decodeExtendedItemFromStream(dec)
			if err != nil {
				return nil, err
			}
			if value == nil {
				return nil, &MalformedError{Reason: "break between map key and value"}
			}
			entries = append(entries, ExtendedMapEntry{Key: *key, Value: *value})
		}
		return &ExtendedItem{Kind: ExtendedItemMap, Map: entries}, nil

	case ExtendedUnrecognizedTag:
		child, err := decodeExtendedItemFromStream(dec)
		if err != nil {
			return nil, err
		}
		if child == nil {
			return nil, &MalformedError{Reason: "tag without content"}
		}
		return &ExtendedItem{Kind: ExtendedItemUnrecognizedTag, Tag: ev.Tag, Child: child}, nil

	default:
		return nil, &MalformedError{Reason: "unrecognized event kind"}
	}
}

func collectExtendedByteSegments(dec *ExtendedDecoder) ([]byte, error) {
	var out []byte
	for {
		ev, err := dec.NextEvent()
		if err != nil {
			return nil, err
		}
		if ev.Kind == ExtendedBreak {
			return out, nil
		}
		if ev.Kind != ExtendedByteString {
			return nil, &MalformedError{Reason: "segmented byte string contains non-byte-string chunk"}
		}
		out = append(out, ev.Bytes...)
	}
}

func collectExtendedTextSegments(dec *ExtendedDecoder) (string, error) {
	var out []byte
	for {
		ev, err := dec.NextEvent()
		if err != nil {
			return "", err
		}
		if ev.Kind == ExtendedBreak {
			return string(out), nil
		}
		if ev.Kind != ExtendedTextString {
			return "", &MalformedError{Reason: "segmented text string contains non-text-string chunk"}
		}
		out = append(out, ev.Text...)
	}
}
