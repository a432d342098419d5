package stream

import (
	"encoding/binary"
	"math"

	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/pkg/errors"
)

// FloatReader decodes a raw little-endian IEEE-754 float32 stream (the
// writer is always little-endian regardless of platform, matching the
// goorc's DecodeFloat comment about the Java writer). This stream
// carries no run-length framing, unlike ByteReader, so it reads straight
// off the compressed-block stream.
type FloatReader struct {
	src *compress.BlockReader
}

func NewFloatReader(src *compress.BlockReader) *FloatReader {
	return &FloatReader{src: src}
}

func (r *FloatReader) Next() (float32, error) {
	b, err := r.src.ReadBytes(4)
	if err != nil {
		return 0, errors.Wrap(err, "float stream: read value")
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *FloatReader) Skip(n int) error {
	return r.src.Skip(4 * int64(n))
}

// DoubleReader decodes a raw little-endian IEEE-754 float64 stream.
type DoubleReader struct {
	src *compress.BlockReader
}

func NewDoubleReader(src *compress.BlockReader) *DoubleReader {
	return &DoubleReader{src: src}
}

func (r *DoubleReader) Next() (float64, error) {
	b, err := r.src.ReadBytes(8)
	if err != nil {
		return 0, errors.Wrap(err, "double stream: read value")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (r *DoubleReader) Skip(n int) error {
	return r.src.Skip(8 * int64(n))
}
