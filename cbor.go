package cbor

import "strconv"

type cborType uint8

const (
	cborTypePositiveInt cborType = 0x00
	cborTypeNegativeInt cborType = 0x20
	cborTypeByteString  cborType = 0x40
	cborTypeTextString  cborType = 0x60
	cborTypeArray       cborType = 0x80
	cborTypeMap         cborType = 0xa0
	cborTypeTag         cborType = 0xc0
	cborTypePrimitives  cborType = 0xe0
)

func (t cborType) String() string {
	switch t {
	case cborTypePositiveInt:
		return "positive integer"
	case cborTypeNegativeInt:
		return "negative integer"
	case cborTypeByteString:
		return "byte string"
	case cborTypeTextString:
		return "UTF-8 text string"
	case cborTypeArray:
		return "array"
	case cborTypeMap:
		return "map"
	case cborTypeTag:
		return "tag"
	case cborTypePrimitives:
		return "primitives"
	default:
		return "invalid type " + strconv.Itoa(int(t))
	}
}

const (
	// From RFC 8949 section 3: the initial byte of each encoded data item
	// carries the major type in its high 3 bits and additional information
	// in its low 5 bits.
	typeMask                  = 0xe0
	additionalInformationMask = 0x1f

	additionalInformationWith1ByteArgument      = 24
	additionalInformationWith2ByteArgument      = 25
	additionalInformationWith4ByteArgument      = 26
	additionalInformationWith8ByteArgument      = 27
	additionalInformationAsIndefiniteLengthFlag = 31
)

func getType(raw byte) cborType {
	return cborType(raw & typeMask)
}

func getAdditionalInformation(raw byte) byte {
	return raw & additionalInformationMask
}

func parseInitialByte(b byte) (t cborType, ai byte) {
	return getType(b), getAdditionalInformation(b)
}

var cborBreakFlag = byte(0xff)
