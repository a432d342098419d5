package stream

import (
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/pkg/errors"
)

// LengthReader is the subset of IntV1Reader/IntV2Reader a StringReader
// needs: either encoding may carry a column's LENGTH stream, since the
// length stream's own width is chosen independently of the DATA
// stream's encoding.
type LengthReader interface {
	Next() (int64, error)
	Skip(n int) error
}

// StringReader pairs a LENGTH integer stream with a contiguous DATA byte
// stream: the i-th value is the next `length` bytes of data. Used
// directly for DIRECT(_V2) string columns, and for decoding
// a stripe's dictionary blob (DICTIONARY(_V2) columns read the whole
// dictionary through this reader once per stripe, see orc/column).
type StringReader struct {
	lengths LengthReader
	data    *compress.BlockReader
}

func NewStringReader(lengths LengthReader, data *compress.BlockReader) *StringReader {
	return &StringReader{lengths: lengths, data: data}
}

// Next returns the next value's bytes.
func (r *StringReader) Next() ([]byte, error) {
	n, err := r.lengths.Next()
	if err != nil {
		return nil, errors.Wrap(err, "string stream: read length")
	}
	if n < 0 {
		return nil, errors.Errorf("string stream: negative length %d", n)
	}
	return r.data.ReadBytes(int(n))
}

// Skip discards n values' worth of length and data bytes, without
// materializing the skipped bytes.
func (r *StringReader) Skip(n int) error {
	var total int64
	for i := 0; i < n; i++ {
		l, err := r.lengths.Next()
		if err != nil {
			return errors.Wrap(err, "string stream: skip length")
		}
		if l < 0 {
			return errors.Errorf("string stream: negative length %d", l)
		}
		total += l
	}
	if total == 0 {
		return nil
	}
	return r.data.Skip(total)
}

// ReadDictionary reads count values from a freshly-positioned length/data
// pair, the shape a stripe or row-group dictionary is materialized in
// (DICTIONARY(_V2): DICTIONARY_DATA + DICTIONARY_COUNT).
func ReadDictionary(lengths LengthReader, data *compress.BlockReader, count int) ([][]byte, error) {
	out := make([][]byte, count)
	for i := 0; i < count; i++ {
		n, err := lengths.Next()
		if err != nil {
			return nil, errors.Wrap(err, "dictionary: read length")
		}
		if n < 0 {
			return nil, errors.Errorf("dictionary: negative length %d", n)
		}
		b, err := data.ReadBytes(int(n))
		if err != nil {
			return nil, errors.Wrap(err, "dictionary: read entry")
		}
		out[i] = b
	}
	return out, nil
}
