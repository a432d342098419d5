package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTreeFlatten(t *testing.T) {
	kinds := []Kind{KindStruct, KindInt, KindString}
	subtypes := [][]int{{1, 2}, nil, nil}
	names := [][]string{{"a", "b"}, nil, nil}
	nodes := BuildTree(kinds, subtypes, names)

	a := assert.New(t)
	a.Len(nodes, 3)
	a.Equal(0, nodes[0].Id)
	a.Equal([]string{"a", "b"}, nodes[0].ChildrenNames)

	flat := nodes[0].Flatten()
	a.Len(flat, 3)
	a.Equal(KindInt, flat[1].Kind)
	a.Equal(KindString, flat[2].Kind)
}

func TestKindIsPrimitive(t *testing.T) {
	assert.True(t, KindInt.IsPrimitive())
	assert.False(t, KindStruct.IsPrimitive())
	assert.False(t, KindList.IsPrimitive())
}

func TestVectorIsNullDefaultsAllPresent(t *testing.T) {
	v := &Vector{Len: 4}
	for i := 0; i < 4; i++ {
		assert.False(t, v.IsNull(i))
	}
	assert.Equal(t, 4, v.CountNonNull(4))
}

func TestVectorIsNullBitOrder(t *testing.T) {
	// MSB-first: bit 0 (row 0) is the high bit of byte 0.
	v := &Vector{Nulls: []byte{0b01000000}, Len: 8}
	assert.True(t, v.IsNull(0))
	assert.False(t, v.IsNull(1))
	assert.True(t, v.IsNull(2))
	assert.Equal(t, 1, v.CountNonNull(8))
}

func TestDecimal64Float64(t *testing.T) {
	d := Decimal64{Unscaled: 12345, Scale: 2}
	assert.InDelta(t, 123.45, d.Float64(), 1e-9)
}

func TestTimestampFromORCRoundTripsNanos(t *testing.T) {
	encoded := EncodeTrailingZeroNanos(123400000)
	base := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := TimestampFromORC(0, encoded, time.UTC, time.UTC)
	assert.Equal(t, base.Add(123400000), got)
}

func TestTimestampFromORCZeroNanos(t *testing.T) {
	encoded := EncodeTrailingZeroNanos(0)
	got := TimestampFromORC(5, encoded, time.UTC, time.UTC)
	want := time.Date(2015, time.January, 1, 0, 0, 5, 0, time.UTC)
	assert.Equal(t, want, got)
}

func TestTimestampFromORCAppliesSessionZoneCorrection(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	encoded := EncodeTrailingZeroNanos(7)
	got := TimestampFromORC(0, encoded, la, time.UTC)
	want := time.Date(2015, time.January, 1, 8, 0, 0, 7, time.UTC)
	assert.True(t, got.Equal(want))
	assert.Equal(t, "2015-01-01 08:00:00.000000007 +0000 UTC", got.Format("2006-01-02 15:04:05.000000000 -0700 MST"))
}
