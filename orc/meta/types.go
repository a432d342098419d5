// Package meta parses the protobuf-framed descriptors at the tail of an
// ORC/DWRF file: PostScript, Footer, StripeFooter, RowIndex, Metadata.
// It hand-decodes the wire format with
// google.golang.org/protobuf/encoding/protowire instead of using generated
// code, because goorc's generated pb package is protoc output and
// isn't part of the retrieved example pack (see DESIGN.md "Open Questions").
package meta

import "github.com/nullable-io/orcreader/orc/compress"

// CompressionKind mirrors the postscript's compression enum, reusing
// orc/compress.Kind so the rest of the module has one canonical type.
type CompressionKind = compress.Kind

// PostScript is the last non-length-byte section of the file.
type PostScript struct {
	FooterLength         uint64
	Compression           CompressionKind
	CompressionBlockSize  uint64
	Version               []uint32 // absent (nil) => DWRF dialect
	MetadataLength         uint64
	WriterVersion         uint32
	HasMetadataLengthField bool // distinguishes "0" from "absent" for dialect detection
	HasVersionField        bool
}

// Type is one node of the footer's flat type tree.
type Type struct {
	Kind          TypeKind
	Subtypes      []uint32
	FieldNames    []string
	MaximumLength uint32
	Precision     uint32
	Scale         uint32
}

// TypeKind is the wire-level Type.Kind enum.
type TypeKind int32

const (
	TypeBoolean TypeKind = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
	TypeBinary
	TypeTimestamp
	TypeList
	TypeMap
	TypeStruct
	TypeUnion
	TypeDecimal
	TypeDate
	TypeVarchar
	TypeChar
)

// StripeInformation locates one stripe within the file.
type StripeInformation struct {
	Offset       uint64
	IndexLength  uint64
	DataLength   uint64
	FooterLength uint64
	NumberOfRows uint64
}

// Footer is the file-level metadata section.
type Footer struct {
	HeaderLength    uint64
	ContentLength   uint64
	Stripes         []*StripeInformation
	Types           []*Type
	NumberOfRows    uint64
	Statistics      []*ColumnStatistics
	RowIndexStride  uint32
}

// StreamKind identifies the role a stream plays for a column.
type StreamKind int32

const (
	StreamPresent StreamKind = iota
	StreamData
	StreamLength
	StreamDictionaryData
	StreamDictionaryCount
	StreamSecondary
	StreamRowIndex
	StreamBloomFilter
	StreamBloomFilterUTF8
	StreamInDictionary
	StreamRowGroupDictionary
	StreamRowGroupDictionaryLength
)

// Stream describes one byte range within a stripe's data/index section.
type Stream struct {
	Kind      StreamKind
	Column    uint32
	Length    uint64
	UseVInts  bool // DWRF-only "v-int flag"
}

// EncodingKind is the per-column encoding chosen for a stripe.
type EncodingKind int32

const (
	EncodingDirect EncodingKind = iota
	EncodingDictionary
	EncodingDirectV2
	EncodingDictionaryV2
	EncodingDwrfDirect // DWRF-only: DIRECT reinterpreted as v1 RLE for int columns
)

// ColumnEncoding is one column's encoding within a stripe.
type ColumnEncoding struct {
	Kind           EncodingKind
	DictionarySize uint32
}

// StripeFooter lists a stripe's streams and per-column encodings.
type StripeFooter struct {
	Streams        []*Stream
	Columns        []*ColumnEncoding
	WriterTimezone string
}

// IntegerStatistics covers the integral numeric columns BYTE/SHORT/INT/LONG;
// BOOLEAN and DATE carry their own statistics messages.
type IntegerStatistics struct {
	HasMinimum bool
	Minimum    int64
	HasMaximum bool
	Maximum    int64
	HasSum     bool
	Sum        int64
}

type DoubleStatistics struct {
	HasMinimum bool
	Minimum    float64
	HasMaximum bool
	Maximum    float64
}

type StringStatistics struct {
	HasMinimum bool
	Minimum    string
	HasMaximum bool
	Maximum    string
}

type DateStatistics struct {
	HasMinimum bool
	Minimum    int32
	HasMaximum bool
	Maximum    int32
}

// BucketStatistics is used for BOOLEAN columns: Count[0] is the number of
// true values observed.
type BucketStatistics struct {
	Count []uint64
}

type BinaryStatistics struct {
	HasSum bool
	Sum    int64
}

type TimestampStatistics struct {
	HasMinimum bool
	Minimum    int64
	HasMaximum bool
	Maximum    int64
}

// ColumnStatistics is the tagged-union of per-family statistics plus the
// shared NumberOfValues/HasNull fields: exactly one of the typed fields
// is populated depending on the column kind.
type ColumnStatistics struct {
	NumberOfValues uint64
	HasNull        bool

	Integer   *IntegerStatistics
	Double    *DoubleStatistics
	String    *StringStatistics
	Bucket    *BucketStatistics
	Date      *DateStatistics
	Binary    *BinaryStatistics
	Timestamp *TimestampStatistics
}

// RowIndexEntry is one row-group boundary: the position vector for every
// stream of the column plus the statistics for that row group.
type RowIndexEntry struct {
	Positions  []uint64
	Statistics *ColumnStatistics
}

// RowIndex is a column's full set of row-group boundaries within a
// stripe.
type RowIndex struct {
	Entries []*RowIndexEntry
}

// StripeStatistics is one stripe's worth of per-column statistics, found
// in the ORC metadata section (absent entirely for DWRF).
type StripeStatistics struct {
	ColumnStatistics []*ColumnStatistics
}

// Metadata is the ORC-only metadata section between the footer and the
// postscript.
type Metadata struct {
	StripeStats []*StripeStatistics
}
