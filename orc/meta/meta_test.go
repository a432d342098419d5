package meta

import (
	"testing"

	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostScriptRoundTrip(t *testing.T) {
	ps := &PostScript{
		FooterLength:           123,
		Compression:            compress.KindZlib,
		CompressionBlockSize:   256 * 1024,
		Version:                []uint32{0, 12},
		HasVersionField:        true,
		MetadataLength:         45,
		HasMetadataLengthField: true,
		WriterVersion:          6,
	}
	got, err := NewReader(DialectORC).ReadPostScript(MarshalPostScript(ps))
	require.NoError(t, err)
	assert.Equal(t, ps.FooterLength, got.FooterLength)
	assert.Equal(t, ps.Compression, got.Compression)
	assert.Equal(t, ps.CompressionBlockSize, got.CompressionBlockSize)
	assert.Equal(t, ps.Version, got.Version)
	assert.True(t, got.HasVersionField)
	assert.Equal(t, ps.MetadataLength, got.MetadataLength)
	assert.True(t, got.HasMetadataLengthField)
}

func TestDetectDialectDWRF(t *testing.T) {
	ps := &PostScript{FooterLength: 1, Compression: compress.KindNone, CompressionBlockSize: 1024}
	assert.Equal(t, DialectDWRF, DetectDialect(ps))
}

func TestDetectDialectORC(t *testing.T) {
	ps := &PostScript{FooterLength: 1, Compression: compress.KindNone, CompressionBlockSize: 1024, HasVersionField: true}
	assert.Equal(t, DialectORC, DetectDialect(ps))
}

func TestFooterRoundTrip(t *testing.T) {
	f := &Footer{
		HeaderLength:  3,
		ContentLength: 1000,
		Stripes: []*StripeInformation{
			{Offset: 3, IndexLength: 10, DataLength: 200, FooterLength: 20, NumberOfRows: 500},
		},
		Types: []*Type{
			{Kind: TypeStruct, Subtypes: []uint32{1}, FieldNames: []string{"a"}},
			{Kind: TypeInt},
		},
		NumberOfRows:   500,
		RowIndexStride: 10000,
		Statistics: []*ColumnStatistics{
			{NumberOfValues: 500},
			{NumberOfValues: 500, Integer: &IntegerStatistics{HasMinimum: true, Minimum: -5, HasMaximum: true, Maximum: 99}},
		},
	}
	got, err := NewReader(DialectORC).ReadFooter(MarshalFooter(f))
	require.NoError(t, err)
	assert.Equal(t, f.NumberOfRows, got.NumberOfRows)
	assert.Equal(t, f.RowIndexStride, got.RowIndexStride)
	require.Len(t, got.Stripes, 1)
	assert.Equal(t, f.Stripes[0].NumberOfRows, got.Stripes[0].NumberOfRows)
	require.Len(t, got.Types, 2)
	assert.Equal(t, TypeStruct, got.Types[0].Kind)
	assert.Equal(t, []string{"a"}, got.Types[0].FieldNames)
	require.Len(t, got.Statistics, 2)
	assert.Equal(t, int64(-5), got.Statistics[1].Integer.Minimum)
	assert.Equal(t, int64(99), got.Statistics[1].Integer.Maximum)
}

func TestStripeFooterRoundTrip(t *testing.T) {
	sf := &StripeFooter{
		Streams: []*Stream{
			{Kind: StreamPresent, Column: 1, Length: 10},
			{Kind: StreamData, Column: 1, Length: 200},
		},
		Columns: []*ColumnEncoding{
			{Kind: EncodingDirect},
			{Kind: EncodingDictionaryV2, DictionarySize: 7},
		},
		WriterTimezone: "America/Los_Angeles",
	}
	got, err := NewReader(DialectORC).ReadStripeFooter([]api.Kind{api.KindStruct, api.KindInt}, MarshalStripeFooter(sf))
	require.NoError(t, err)
	require.Len(t, got.Streams, 2)
	assert.Equal(t, StreamData, got.Streams[1].Kind)
	assert.Equal(t, uint64(200), got.Streams[1].Length)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, uint32(7), got.Columns[1].DictionarySize)
	assert.Equal(t, "America/Los_Angeles", got.WriterTimezone)
}

func TestRowIndexRoundTrip(t *testing.T) {
	idx := &RowIndex{Entries: []*RowIndexEntry{
		{Positions: []uint64{0, 0, 0}, Statistics: &ColumnStatistics{NumberOfValues: 10000}},
		{Positions: []uint64{100, 5, 3}, Statistics: &ColumnStatistics{NumberOfValues: 10000}},
	}}
	got, err := NewReader(DialectORC).ReadRowIndex(MarshalRowIndex(idx))
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, []uint64{100, 5, 3}, got.Entries[1].Positions)
}

func TestMetadataRoundTrip(t *testing.T) {
	m := &Metadata{StripeStats: []*StripeStatistics{
		{ColumnStatistics: []*ColumnStatistics{{NumberOfValues: 1}, {NumberOfValues: 1}}},
	}}
	got, err := NewReader(DialectORC).ReadMetadata(MarshalMetadata(m))
	require.NoError(t, err)
	require.Len(t, got.StripeStats, 1)
	assert.Len(t, got.StripeStats[0].ColumnStatistics, 2)
}

func TestDwrfResolveEncodingRewritesIntegerColumnsOnly(t *testing.T) {
	r := NewReader(DialectDWRF)
	assert.Equal(t, EncodingDwrfDirect, r.ResolveEncoding(api.KindLong, EncodingDirect))
	assert.Equal(t, EncodingDwrfDirect, r.ResolveEncoding(api.KindInt, EncodingDirect))
	assert.Equal(t, EncodingDirect, r.ResolveEncoding(api.KindTimestamp, EncodingDirect))
	assert.Equal(t, EncodingDirect, r.ResolveEncoding(api.KindDate, EncodingDirect))
}

func TestOrcResolveEncodingIsIdentity(t *testing.T) {
	r := NewReader(DialectORC)
	assert.Equal(t, EncodingDirectV2, r.ResolveEncoding(api.KindLong, EncodingDirectV2))
}

func TestDwrfResolveStreamKindRemapsNanoAndStrideDictionary(t *testing.T) {
	r := NewReader(DialectDWRF)
	assert.Equal(t, StreamSecondary, r.ResolveStreamKind(dwrfStreamNanoData))
	assert.Equal(t, StreamRowGroupDictionary, r.ResolveStreamKind(dwrfStreamStrideDictionary))
	assert.Equal(t, StreamRowGroupDictionaryLength, r.ResolveStreamKind(dwrfStreamStrideDictionaryLength))
	assert.Equal(t, StreamData, r.ResolveStreamKind(StreamData))
}

func TestUnsupportedCompressionKind(t *testing.T) {
	var b []byte
	b = appendVarintField(b, 1, 10)
	b = appendVarintField(b, 2, 99) // bogus compression kind
	_, err := NewReader(DialectORC).ReadPostScript(b)
	require.Error(t, err)
	var unsupported *UnsupportedMetadataError
	assert.ErrorAs(t, err, &unsupported)
}
