package column

import (
	"testing"
	"time"

	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/nullable-io/orcreader/orc/datasource"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i8(n int8) byte {
	return byte(n)
}

func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func blockReader(payload []byte) *compress.BlockReader {
	ds := datasource.NewMemorySource(payload)
	return compress.NewBlockReader(ds, 0, int64(len(payload)), compress.KindNone, 0)
}

// presentStream encodes a PRESENT bool stream (byte-RLE over bit-packed
// bools) for the given row mask, one literal group.
func presentStream(present []bool) []byte {
	var bits []byte
	var cur byte
	bitsInCur := 0
	for _, p := range present {
		cur <<= 1
		if p {
			cur |= 1
		}
		bitsInCur++
		if bitsInCur == 8 {
			bits = append(bits, cur)
			cur = 0
			bitsInCur = 0
		}
	}
	if bitsInCur > 0 {
		cur <<= uint(8 - bitsInCur)
		bits = append(bits, cur)
	}
	out := []byte{byte(int8(-len(bits)))}
	return append(out, bits...)
}

func intV1Literals(values []int64) []byte {
	out := []byte{byte(int8(-len(values)))}
	for _, v := range values {
		out = appendVarint(out, zigzagEncode(v))
	}
	return out
}

// uintV1Literals encodes an unsigned RLE v1 literal group (no zigzag), the
// shape LENGTH, dictionary-index and timestamp SECONDARY streams are read in.
func uintV1Literals(values []uint64) []byte {
	out := []byte{byte(int8(-len(values)))}
	for _, v := range values {
		out = appendVarint(out, v)
	}
	return out
}

func TestBooleanReaderWithNulls(t *testing.T) {
	present := []bool{true, false, true, true}
	presentRaw := presentStream(present)
	dataRaw := []byte{i8(-1), 0b10100000} // 1 literal byte holding bools true,false,true

	r := NewBooleanReader(1)
	streams := StreamSet{
		meta.StreamPresent: blockReader(presentRaw),
		meta.StreamData:    blockReader(dataRaw),
	}
	require.NoError(t, r.StartStripe(streams, nil))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, vec.IsNull(1))
	assert.False(t, vec.IsNull(0))
	assert.Equal(t, []bool{true, false, true}, vec.Booleans)
}

func TestByteReaderNoNulls(t *testing.T) {
	dataRaw := []byte{i8(-3), 5, 6, 7}
	r := NewByteReader(1)
	streams := StreamSet{meta.StreamData: blockReader(dataRaw)}
	require.NoError(t, r.StartStripe(streams, nil))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{5, 6, 7}, vec.Bytes)
	assert.Equal(t, 3, vec.CountNonNull(3))
}

func TestIntegerReaderDwrfDirectIsV1(t *testing.T) {
	dataRaw := intV1Literals([]int64{-5, 0, 1000})
	r := NewIntegerReader(1, api.KindLong)
	streams := StreamSet{meta.StreamData: blockReader(dataRaw)}
	require.NoError(t, r.StartStripe(streams, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	vec := &api.Vector{}
	_, err := r.ReadBatch(vec, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{-5, 0, 1000}, vec.Longs)
}

func TestFloatReader(t *testing.T) {
	floatRaw := []byte{0, 0, 128, 63, 0, 0, 0, 64} // 1.0f, 2.0f
	fr := NewFloatReader(1)
	require.NoError(t, fr.StartStripe(StreamSet{meta.StreamData: blockReader(floatRaw)}, nil))
	vec := &api.Vector{}
	_, err := fr.ReadBatch(vec, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0}, vec.Doubles)
}

func TestStringReaderDirect(t *testing.T) {
	lengthRaw := uintV1Literals([]uint64{3, 2})
	dataRaw := []byte("foohi")

	r := NewStringReader(1, api.KindString)
	streams := StreamSet{
		meta.StreamLength: blockReader(lengthRaw),
		meta.StreamData:   blockReader(dataRaw),
	}
	require.NoError(t, r.StartStripe(streams, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	vec := &api.Vector{}
	_, err := r.ReadBatch(vec, 2)
	require.NoError(t, err)
	assert.Equal(t, "foo", string(vec.Data[0]))
	assert.Equal(t, "hi", string(vec.Data[1]))
}

func TestStringReaderDictionary(t *testing.T) {
	// dictionary: ["ab", "cd"]
	dictLengthRaw := uintV1Literals([]uint64{2, 2})
	dictDataRaw := []byte("abcd")
	indexRaw := uintV1Literals([]uint64{1, 0, 1})

	r := NewStringReader(1, api.KindString)
	streams := StreamSet{
		meta.StreamLength:         blockReader(dictLengthRaw),
		meta.StreamDictionaryData: blockReader(dictDataRaw),
		meta.StreamData:           blockReader(indexRaw),
	}
	require.NoError(t, r.StartStripe(streams, &meta.ColumnEncoding{Kind: meta.EncodingDictionary, DictionarySize: 2}))

	vec := &api.Vector{}
	_, err := r.ReadBatch(vec, 3)
	require.NoError(t, err)
	assert.Equal(t, "cd", string(vec.Data[0]))
	assert.Equal(t, "ab", string(vec.Data[1]))
	assert.Equal(t, "cd", string(vec.Data[2]))
}

func TestDecimalReader(t *testing.T) {
	var dataRaw []byte
	dataRaw = appendVarint(dataRaw, zigzagEncode(12345))
	dataRaw = appendVarint(dataRaw, zigzagEncode(-67))

	// secondary: RLE v2 short repeat, width 1 byte, value 2, count 3+0=3
	secondaryHeader := byte(0<<6) | byte(0<<3) | 0
	secondaryRaw := []byte{secondaryHeader, 2}

	r := NewDecimalReader(1)
	streams := StreamSet{
		meta.StreamData:      blockReader(dataRaw),
		meta.StreamSecondary: blockReader(secondaryRaw),
	}
	require.NoError(t, r.StartStripe(streams, nil))

	vec := &api.Vector{}
	_, err := r.ReadBatch(vec, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), vec.Decimals[0].Unscaled)
	assert.Equal(t, 2, vec.Decimals[0].Scale)
	assert.Equal(t, int64(-67), vec.Decimals[1].Unscaled)
}

func TestStructReaderComposesChildren(t *testing.T) {
	boolChild := NewBooleanReader(2)
	intChild := NewIntegerReader(3, api.KindInt)
	r := NewStructReader(1, []Reader{boolChild, intChild})

	presentRaw := presentStream([]bool{true, false, true})
	// children carry no PRESENT stream of their own in this fixture, so
	// they decode all n rows regardless of the struct's own null mask.
	boolDataRaw := []byte{i8(-1), 0b10100000}
	intDataRaw := intV1Literals([]int64{7, 8, 9})

	require.NoError(t, r.StartStripe(StreamSet{meta.StreamPresent: blockReader(presentRaw)}, nil))
	require.NoError(t, boolChild.StartStripe(StreamSet{meta.StreamData: blockReader(boolDataRaw)}, nil))
	require.NoError(t, intChild.StartStripe(StreamSet{meta.StreamData: blockReader(intDataRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, vec.IsNull(1))
	require.Len(t, vec.Fields, 2)
	assert.Equal(t, []bool{true, false, true}, vec.Fields[0].Booleans)
	assert.Equal(t, []int64{7, 8, 9}, vec.Fields[1].Longs)
}

func TestListReaderFlattensElements(t *testing.T) {
	elem := NewIntegerReader(2, api.KindInt)
	r := NewListReader(1, elem)

	lengthRaw := uintV1Literals([]uint64{2, 0, 1})
	elemDataRaw := intV1Literals([]int64{10, 20, 99})

	require.NoError(t, r.StartStripe(StreamSet{meta.StreamLength: blockReader(lengthRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))
	require.NoError(t, elem.StartStripe(StreamSet{meta.StreamData: blockReader(elemDataRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int32{0, 2, 2, 3}, vec.Offsets)
	assert.Equal(t, []int64{10, 20, 99}, vec.Element.Longs)
}

func TestMapReaderFlattensKeysAndValues(t *testing.T) {
	keyChild := NewIntegerReader(2, api.KindInt)
	valueChild := NewStringReader(3, api.KindString)
	r := NewMapReader(1, keyChild, valueChild)

	lengthRaw := uintV1Literals([]uint64{2, 1})
	keyDataRaw := intV1Literals([]int64{1, 2, 3})
	valueLengthRaw := uintV1Literals([]uint64{1, 1, 1})
	valueDataRaw := []byte("abc")

	require.NoError(t, r.StartStripe(StreamSet{meta.StreamLength: blockReader(lengthRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))
	require.NoError(t, keyChild.StartStripe(StreamSet{meta.StreamData: blockReader(keyDataRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))
	require.NoError(t, valueChild.StartStripe(StreamSet{
		meta.StreamLength: blockReader(valueLengthRaw),
		meta.StreamData:   blockReader(valueDataRaw),
	}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int32{0, 2, 3}, vec.Offsets)
	assert.Equal(t, []int64{1, 2, 3}, vec.Key.Longs)
	assert.Equal(t, "a", string(vec.Value.Data[0]))
	assert.Equal(t, "b", string(vec.Value.Data[1]))
	assert.Equal(t, "c", string(vec.Value.Data[2]))
}

func TestMapReaderSkip(t *testing.T) {
	keyChild := NewIntegerReader(2, api.KindInt)
	valueChild := NewIntegerReader(3, api.KindInt)
	r := NewMapReader(1, keyChild, valueChild)

	lengthRaw := uintV1Literals([]uint64{1, 2})
	keyDataRaw := intV1Literals([]int64{9, 10, 11})
	valueDataRaw := intV1Literals([]int64{90, 100, 110})

	require.NoError(t, r.StartStripe(StreamSet{meta.StreamLength: blockReader(lengthRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))
	require.NoError(t, keyChild.StartStripe(StreamSet{meta.StreamData: blockReader(keyDataRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))
	require.NoError(t, valueChild.StartStripe(StreamSet{meta.StreamData: blockReader(valueDataRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	require.NoError(t, r.Skip(2))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUnionReaderRoutesByTag(t *testing.T) {
	branch0 := NewIntegerReader(2, api.KindInt)
	branch1 := NewStringReader(3, api.KindString)
	r := NewUnionReader(1, []Reader{branch0, branch1})

	tagRaw := []byte{i8(-3), 0, 1, 0} // row0->branch0, row1->branch1, row2->branch0
	branch0DataRaw := intV1Literals([]int64{5, 6})
	branch1LengthRaw := uintV1Literals([]uint64{2})
	branch1DataRaw := []byte("hi")

	require.NoError(t, r.StartStripe(StreamSet{meta.StreamData: blockReader(tagRaw)}, nil))
	require.NoError(t, branch0.StartStripe(StreamSet{meta.StreamData: blockReader(branch0DataRaw)}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))
	require.NoError(t, branch1.StartStripe(StreamSet{
		meta.StreamLength: blockReader(branch1LengthRaw),
		meta.StreamData:   blockReader(branch1DataRaw),
	}, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0, 1, 0}, vec.Tags)
	require.Len(t, vec.Branches, 2)
	assert.Equal(t, []int64{5, 6}, vec.Branches[0].Longs)
	assert.Equal(t, "hi", string(vec.Branches[1].Data[0]))
}

func TestUnionReaderRejectsOutOfRangeTag(t *testing.T) {
	branch0 := NewIntegerReader(2, api.KindInt)
	r := NewUnionReader(1, []Reader{branch0})

	tagRaw := []byte{i8(-1), 5} // tag 5, only one branch registered
	require.NoError(t, r.StartStripe(StreamSet{meta.StreamData: blockReader(tagRaw)}, nil))

	vec := &api.Vector{}
	_, err := r.ReadBatch(vec, 1)
	assert.Error(t, err)
}

func TestTimestampReaderDwrfDirectIsV1(t *testing.T) {
	secondsRaw := intV1Literals([]int64{0, 5})
	nanosRaw := uintV1Literals([]uint64{uint64(api.EncodeTrailingZeroNanos(123400000)), uint64(api.EncodeTrailingZeroNanos(0))})

	r := NewTimestampReader(1)
	r.SetWriterTimezone(time.UTC)
	streams := StreamSet{
		meta.StreamData:      blockReader(secondsRaw),
		meta.StreamSecondary: blockReader(nanosRaw),
	}
	require.NoError(t, r.StartStripe(streams, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, vec.Timestamps, 2)
	base := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(123400000), vec.Timestamps[0])
	assert.Equal(t, base.Add(5*time.Second), vec.Timestamps[1])
}

func TestTimestampReaderAppliesWriterAndSessionZones(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	secondsRaw := intV1Literals([]int64{0})
	nanosRaw := uintV1Literals([]uint64{uint64(api.EncodeTrailingZeroNanos(7))})

	r := NewTimestampReader(1)
	r.SetWriterTimezone(la)
	r.SetSessionTimezone(time.UTC)
	streams := StreamSet{
		meta.StreamData:      blockReader(secondsRaw),
		meta.StreamSecondary: blockReader(nanosRaw),
	}
	require.NoError(t, r.StartStripe(streams, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, vec.Timestamps, 1)
	assert.Equal(t, "2015-01-01 08:00:00.000000007 +0000 UTC",
		vec.Timestamps[0].Format("2006-01-02 15:04:05.000000000 -0700 MST"))
}

func TestTimestampReaderSkip(t *testing.T) {
	secondsRaw := intV1Literals([]int64{1, 2, 3})
	nanosRaw := uintV1Literals([]uint64{0, 0, 0})

	r := NewTimestampReader(1)
	streams := StreamSet{
		meta.StreamData:      blockReader(secondsRaw),
		meta.StreamSecondary: blockReader(nanosRaw),
	}
	require.NoError(t, r.StartStripe(streams, &meta.ColumnEncoding{Kind: meta.EncodingDwrfDirect}))
	require.NoError(t, r.Skip(2))

	vec := &api.Vector{}
	n, err := r.ReadBatch(vec, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	base := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(3*time.Second), vec.Timestamps[0])
}

func TestByteReaderSkip(t *testing.T) {
	dataRaw := []byte{i8(-4), 1, 2, 3, 4}
	r := NewByteReader(1)
	require.NoError(t, r.StartStripe(StreamSet{meta.StreamData: blockReader(dataRaw)}, nil))
	require.NoError(t, r.Skip(2))

	vec := &api.Vector{}
	_, err := r.ReadBatch(vec, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4}, vec.Bytes)
}
