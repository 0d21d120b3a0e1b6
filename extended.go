package cbor

// DateTimeDecodeStyle controls how the extended decoder handles tag 0 (text
// date-time) and tag 1 (numeric date-time).
type DateTimeDecodeStyle uint8

const (
	// DateTimeDecodeNone leaves tags 0 and 1 unrecognized, surfacing them as
	// ExtendedItem/ExtendedEvent's UnrecognizedTag instead of DateTime.
	DateTimeDecodeNone DateTimeDecodeStyle = iota
	// DateTimeDecodeStandard interprets tags 0 and 1 as date-times, using
	// time.Time as the Go representation.
	DateTimeDecodeStandard
)

// DateTimeEncodeStyle controls which tag the extended encoder uses to
// represent a date-time.
type DateTimeEncodeStyle uint8

const (
	// DateTimeEncodePreferText encodes date-times as tag 0 (RFC 3339 text),
	// the default. Textual encoding handles dates before the Unix epoch more
	// robustly than the numeric form, since it carries no implicit epoch.
	DateTimeEncodePreferText DateTimeEncodeStyle = iota
	// DateTimeEncodePreferNumeric encodes date-times as tag 1 (seconds since
	// the Unix epoch).
	DateTimeEncodePreferNumeric
)

// BignumDecodeStyle controls how the extended decoder handles tag 2
// (positive bignum) and tag 3 (negative bignum).
type BignumDecodeStyle uint8

const (
	// BignumConvert folds a bignum into Unsigned/Signed when its magnitude,
	// after leading zero bytes are stripped, is at most 7 bytes long, and
	// passes it through unmodified as a synthetic UnrecognizedTag/ByteString
	// event pair when it is longer, so no data is lost. An 8-byte magnitude
	// is passed through even though it would fit a 64-bit CBOR integer.
	BignumConvert BignumDecodeStyle = iota
	// BignumForceConvert is BignumConvert, but fails with ErrOversizedBignum
	// instead of passing through a bignum whose magnitude is longer than 7
	// bytes.
	BignumForceConvert
	// BignumNum always converts a bignum to *big.Int regardless of size,
	// emitting ExtendedBigInt even when the value would also fit a plain
	// Unsigned/Signed event.
	BignumNum
)

// DecodeExtensionConfig groups the options an ExtendedDecoder applies when
// interpreting tags 0-3. The zero value is DateTimeDecodeNone, BignumConvert.
type DecodeExtensionConfig struct {
	dateTimeStyle DateTimeDecodeStyle
	bignumStyle   BignumDecodeStyle
}

// DateTimeStyle returns the configured DateTimeDecodeStyle.
func (c *DecodeExtensionConfig) DateTimeStyle() DateTimeDecodeStyle { return c.dateTimeStyle }

// SetDateTimeStyle sets the DateTimeDecodeStyle and returns c for chaining.
func (c *DecodeExtensionConfig) SetDateTimeStyle(style DateTimeDecodeStyle) *DecodeExtensionConfig {
	c.dateTimeStyle = style
	return c
}

// BignumStyle returns the configured BignumDecodeStyle.
func (c *DecodeExtensionConfig) BignumStyle() BignumDecodeStyle { return c.bignumStyle }

// SetBignumStyle sets the BignumDecodeStyle and returns c for chaining.
func (c *DecodeExtensionConfig) SetBignumStyle(style BignumDecodeStyle) *DecodeExtensionConfig {
	c.bignumStyle = style
	return c
}

// EncodeExtensionConfig groups the options an ExtendedEncoder applies when
// producing tagged date-times. The zero value is DateTimeEncodePreferText.
type EncodeExtensionConfig struct {
	dateTimeStyle DateTimeEncodeStyle
}

// DateTimeStyle returns the configured DateTimeEncodeStyle.
func (c *EncodeExtensionConfig) DateTimeStyle() DateTimeEncodeStyle { return c.dateTimeStyle }

// SetDateTimeStyle sets the DateTimeEncodeStyle and returns c for chaining.
func (c *EncodeExtensionConfig) SetDateTimeStyle(style DateTimeEncodeStyle) *EncodeExtensionConfig {
	c.dateTimeStyle = style
	return c
}
