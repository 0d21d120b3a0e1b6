package cbor

import "io"

// TreeEncoder writes a single Item as CBOR bytes, layering recursive
// descent over a StreamEncoder: it walks the mirror image of what
// TreeDecoder consumes, writing definite-length Array/Map/Tag heads
// followed by each child in the same order decodeItemFromStream reads them.
type TreeEncoder struct{}

// NewTreeEncoder creates a TreeEncoder.
func NewTreeEncoder() *TreeEncoder {
	return &TreeEncoder{}
}

// Encode writes item to dest as a single top-level CBOR data item.
func (t *TreeEncoder) Encode(item Item, dest io.Writer) error {
	enc := NewStreamEncoder(dest)
	return encodeItemToStream(item, enc)
}

func encodeItemToStream(item Item, enc *StreamEncoder) error {
	switch item.Kind {
	case ItemUnsigned:
		return enc.FeedEvent(Event{Kind: EventUnsigned, Unsigned: item.Unsigned})
	case ItemSigned:
		return enc.FeedEvent(Event{Kind: EventSigned, Signed: item.Signed})
	case ItemFloat:
		return enc.FeedEvent(Event{Kind: EventFloat, Float: item.Float})
	case ItemSimple:
		return enc.FeedEvent(Event{Kind: EventSimple, Simple: item.Simple})
	case ItemByteString:
		return enc.FeedEvent(Event{Kind: EventByteString, Bytes: item.Bytes})
	case ItemTextString:
		return enc.FeedEvent(Event{Kind: EventTextString, Text: item.Text})

	case ItemArray:
		if err := enc.FeedEvent(Event{Kind: EventArray, Length: uint64(len(item.Array))}); err != nil {
			return err
		}
		for _, child := range item.Array {
			if err := encodeItemToStream(child, enc); err != nil {
				return err
			}
		}
		return nil

	case ItemMap:
		if err := enc.FeedEvent(Event{Kind: EventMap, Length: uint64(len(item.Map))}); err != nil {
			return err
		}
		for _, entry := range item.Map {
			if err := encodeItemToStream(entry.Key, enc); err != nil {
				return err
			}
			if err := encodeItemToStream(entry.Value, enc); err != nil {
				return err
			}
		}
		return nil

	case ItemTag:
		if err := enc.FeedEvent(Event{Kind: EventTag, Tag: item.Tag}); err != nil {
			return err
		}
		if item.Child == nil {
			return &MalformedError{Reason: "tag item missing content"}
		}
		return encodeItemToStream(*item.Child, enc)

	default:
		return &MalformedError{Reason: "unrecognized item kind"}
	}
}
