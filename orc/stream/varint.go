package stream

import (
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/pkg/errors"
)

// readVarint reads a base-128 little-endian varint (the unsigned wire
// shape both RLE v1 and v2 share for their literal/base values).
func readVarint(r *compress.BlockReader) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "varint: read byte")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, errors.New("varint: too many continuation bytes")
		}
	}
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// VarintReader reads a bare sequence of zigzag-encoded base-128 varints,
// one per value with no run/literal framing - the shape DECIMAL's DATA
// stream uses for its unscaled value (unbounded precision narrowed to
// int64 here, see api.Decimal64).
type VarintReader struct {
	src *compress.BlockReader
}

func NewVarintReader(src *compress.BlockReader) *VarintReader {
	return &VarintReader{src: src}
}

func (r *VarintReader) Next() (int64, error) {
	v, err := readVarint(r.src)
	if err != nil {
		return 0, err
	}
	return zigzagDecode(v), nil
}

func (r *VarintReader) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := readVarint(r.src); err != nil {
			return err
		}
	}
	return nil
}
