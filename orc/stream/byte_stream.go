// Package stream decodes the primitive byte streams ORC/DWRF stripes are
// built from: byte run-length, boolean bit-packed, integer RLE v1/v2,
// raw IEEE-754 float/double, and length+data strings.
// It is grounded on goorc's orc/encoding package, generalized from
// a single BufferedReader abstraction to the compress.BlockReader this
// module uses for row-group-aware seeking.
package stream

import (
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/pkg/errors"
)

const minRepeatSize = 3

// ByteReader decodes the byte run-length encoding: a run byte in [0,128)
// means "repeat the next literal byte
// control+minRepeatSize times", a run byte in [128,256) (read as a
// negative int8) means "the next -control bytes are literal".
type ByteReader struct {
	src *compress.BlockReader

	buf    []byte
	pos    int
}

func NewByteReader(src *compress.BlockReader) *ByteReader {
	return &ByteReader{src: src}
}

// ReadByte returns the next decoded byte, filling a new run/literal group
// from src when the current one is exhausted.
func (r *ByteReader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes decodes n bytes into a freshly-allocated slice.
func (r *ByteReader) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func (r *ByteReader) fill() error {
	control, err := r.src.ReadByte()
	if err != nil {
		return errors.Wrap(err, "byte stream: read control byte")
	}
	r.buf = r.buf[:0]
	r.pos = 0
	if control < 0x80 {
		n := int(control) + minRepeatSize
		v, err := r.src.ReadByte()
		if err != nil {
			return errors.Wrap(err, "byte stream: read repeat value")
		}
		for i := 0; i < n; i++ {
			r.buf = append(r.buf, v)
		}
		return nil
	}
	n := int(-int8(control))
	literal, err := r.src.ReadBytes(n)
	if err != nil {
		return errors.Wrap(err, "byte stream: read literals")
	}
	r.buf = append(r.buf, literal...)
	return nil
}

// EndOfStream reports whether both the pending run/literal buffer and the
// underlying compressed stream are exhausted.
func (r *ByteReader) EndOfStream() bool {
	return r.pos >= len(r.buf) && r.src.EndOfStream()
}
