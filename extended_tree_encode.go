package cbor

import "io"

// ExtendedTreeEncoder writes a single ExtendedItem as CBOR bytes, walking
// the mirror image of decodeExtendedItemFromStream.
type ExtendedTreeEncoder struct {
	config EncodeExtensionConfig
}

// NewExtendedTreeEncoder creates an ExtendedTreeEncoder.
func NewExtendedTreeEncoder() *ExtendedTreeEncoder {
	return &ExtendedTreeEncoder{}
}

// Config returns the encoder's EncodeExtensionConfig for in-place mutation.
func (t *ExtendedTreeEncoder) Config() *EncodeExtensionConfig { return &t.config }

// Encode writes item to dest as a single top-level CBOR data item.
func (t *ExtendedTreeEncoder) Encode(item ExtendedItem, dest io.Writer) error {
	enc := NewExtendedEncoderFromStream(NewStreamEncoder(dest))
	enc.config = t.config
	return encodeExtendedItemToStream(item, enc)
}

func encodeExtendedItemToStream(item ExtendedItem, enc *ExtendedEncoder) error {
	switch item.Kind {
	case ExtendedItemUnsigned:
		return enc.FeedEvent(ExtendedEvent{Kind: ExtendedUnsigned, Unsigned: item.Unsigned})
	case ExtendedItemSigned:
		return enc.FeedEvent(ExtendedEvent{Kind: ExtendedSigned, Signed: item.Signed})
	case ExtendedItemFloat:
		return enc.FeedEvent(ExtendedEvent{Kind: ExtendedFloat, Float: item.Float})
	case ExtendedItemSimple:
		return enc.FeedEvent(ExtendedEvent{Kind: ExtendedSimple, Simple: item.Simple})
	case ExtendedItemByteString:
		return enc.FeedEvent(ExtendedEvent{Kind: ExtendedByteString, Bytes: item.Bytes})
	case ExtendedItemTextString:
		return enc.FeedEvent(ExtendedEvent{Kind: ExtendedTextString, Text: item.Text})
	case ExtendedItemDateTime:
		return enc.FeedEvent(ExtendedEvent{Kind: ExtendedDateTime, DateTime: item.DateTime})
	case ExtendedItemBigInt:
		return enc.FeedEvent(ExtendedEvent{Kind: ExtendedBigInt, BigInt: item.BigInt})

	case ExtendedItemArray:
		if err := enc.FeedEvent(ExtendedEvent{Kind: ExtendedArray, Length: uint64(len(item.Array))}); err != nil {
			return err
		}
		for _, child := range item.Array {
			if err := encodeExtendedItemToStream(child, enc); err != nil {
				return err
			}
		}
		return nil

	case ExtendedItemMap:
		if err := enc.FeedEvent(ExtendedEvent{Kind: ExtendedMap, Length: uint64(len(item.Map))}); err != nil {
			return err
		}
		for _, entry := range item.Map {
			if err := encodeExtendedItemToStream(entry.Key, enc); err != nil {
				return err
			}
			if err := encodeExtendedItemToStream(entry.Value, enc); err != nil {
				return err
			}
		}
		return nil

	case ExtendedItemUnrecognizedTag:
		if err := enc.FeedEvent(ExtendedEvent{Kind: ExtendedUnrecognizedTag, Tag: item.Tag}); err != nil {
			return err
		}
		if item.Child == nil {
			return &MalformedError{Reason: "tag item missing content"}
		}
		return encodeExtendedItemToStream(*item.Child, enc)

	default:
		return &MalformedError{Reason: "unrecognized item kind"}
	}
}
