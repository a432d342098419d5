package stream

import (
	"testing"

	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/nullable-io/orcreader/orc/datasource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i8(n int8) byte {
	return byte(n)
}

// appendVarint appends a base-128 little-endian varint, the inverse of
// readVarint, kept local to tests since this package never writes files.
func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func blockReader(t *testing.T, payload []byte) *compress.BlockReader {
	t.Helper()
	ds := datasource.NewMemorySource(payload)
	return compress.NewBlockReader(ds, 0, int64(len(payload)), compress.KindNone, 0)
}

func TestByteReaderRunAndLiteral(t *testing.T) {
	var raw []byte
	// run: control=2 -> length 5, value 7
	raw = append(raw, 2, 7)
	// literal: control=-3 -> 3 literal bytes
	raw = append(raw, i8(-3), 9, 10, 11)

	r := NewByteReader(blockReader(t, raw))
	got, err := r.ReadBytes(8)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 7, 7, 7, 7, 9, 10, 11}, got)
	assert.True(t, r.EndOfStream())
}

func TestBoolReaderBitOrder(t *testing.T) {
	// literal run of one byte: 0b10110000 -> true,false,true,true,false...
	raw := []byte{i8(-1), 0b10110000}
	r := NewBoolReader(NewByteReader(blockReader(t, raw)))
	got, err := r.ReadBools(8)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, true, false, false, false, false}, got)
}

func TestBoolReaderCountSetBits(t *testing.T) {
	raw := []byte{i8(-1), 0b10110000}
	r := NewBoolReader(NewByteReader(blockReader(t, raw)))
	n, err := r.CountSetBits(8)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIntV1Run(t *testing.T) {
	var raw []byte
	raw = append(raw, 2)              // control -> length 5
	raw = append(raw, byte(int8(3)))  // delta +3
	raw = appendVarint(raw, zigzagEncode(10))

	r := NewIntV1Reader(blockReader(t, raw), true)
	want := []int64{10, 13, 16, 19, 22}
	for _, w := range want {
		v, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, w, v)
	}
}

func TestIntV1Literals(t *testing.T) {
	var raw []byte
	raw = append(raw, i8(-3)) // 3 literals
	raw = appendVarint(raw, zigzagEncode(-5))
	raw = appendVarint(raw, zigzagEncode(100))
	raw = appendVarint(raw, zigzagEncode(0))

	r := NewIntV1Reader(blockReader(t, raw), true)
	for _, w := range []int64{-5, 100, 0} {
		v, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, w, v)
	}
}

func TestIntV2ShortRepeat(t *testing.T) {
	// header: sub=00, width code bits (header>>3)&7 = 0 -> width 1 byte,
	// repeat count bits = 4 -> repeatCount 3+4=7
	header := byte(0<<6) | byte(0<<3) | byte(4)
	raw := []byte{header, 42}

	r := NewIntV2Reader(blockReader(t, raw), false)
	for i := 0; i < 7; i++ {
		v, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, int64(42), v)
	}
}

func TestIntV2Delta(t *testing.T) {
	// sub=11 (delta), width code bits 5: (header0>>1)&0x1f must map via
	// widthDecoding(w,true); use w=0 -> fixed delta, no per-value bits.
	header0 := byte(3<<6) | byte(0<<1) | 0 // length high bit 0
	header1 := byte(2)                      // length = 2+1 = 3 values
	var raw []byte
	raw = append(raw, header0, header1)
	raw = appendVarint(raw, zigzagEncode(100)) // base
	raw = appendVarint(raw, zigzagEncode(5))   // delta step

	r := NewIntV2Reader(blockReader(t, raw), true)
	want := []int64{100, 105, 110}
	for _, w := range want {
		v, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, w, v)
	}
}

func TestFloatDoubleReaders(t *testing.T) {
	raw := []byte{0, 0, 128, 63} // 1.0f little-endian
	fr := NewFloatReader(blockReader(t, raw))
	v, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), v)

	raw8 := []byte{0, 0, 0, 0, 0, 0, 240, 63} // 1.0 double little-endian
	dr := NewDoubleReader(blockReader(t, raw8))
	dv, err := dr.Next()
	require.NoError(t, err)
	assert.Equal(t, float64(1.0), dv)
}

func TestVarintReader(t *testing.T) {
	var raw []byte
	raw = appendVarint(raw, zigzagEncode(-1))
	raw = appendVarint(raw, zigzagEncode(1000))

	r := NewVarintReader(blockReader(t, raw))
	for _, w := range []int64{-1, 1000} {
		v, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, w, v)
	}
}

func TestStringReader(t *testing.T) {
	var lengthRaw []byte
	lengthRaw = append(lengthRaw, i8(-2)) // 2 literals
	lengthRaw = appendVarint(lengthRaw, zigzagEncode(3))
	lengthRaw = appendVarint(lengthRaw, zigzagEncode(5))

	dataRaw := []byte("fooworld!")

	lengths := NewIntV1Reader(blockReader(t, lengthRaw), true)
	sr := NewStringReader(lengths, blockReader(t, dataRaw))

	v1, err := sr.Next()
	require.NoError(t, err)
	assert.Equal(t, "foo", string(v1))

	v2, err := sr.Next()
	require.NoError(t, err)
	assert.Equal(t, "world", string(v2))
}

func TestSeekIntV1ReaderMidGroup(t *testing.T) {
	var raw []byte
	raw = append(raw, 2)             // run, length 5
	raw = append(raw, byte(int8(1))) // delta +1
	raw = appendVarint(raw, zigzagEncode(0))

	ds := datasource.NewMemorySource(raw)
	br := compress.NewBlockReader(ds, 0, int64(len(raw)), compress.KindNone, 0)
	r := NewIntV1Reader(br, true)

	pos := NewPositions([]uint64{0, 0, 2})
	require.NoError(t, SeekIntV1Reader(r, pos))
	v, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}
