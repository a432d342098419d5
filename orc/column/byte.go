package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// ByteReader decodes a TINYINT column: PRESENT + a byte run-length DATA
// stream. Grounded on goorc's orc/column/byte.go.
type ByteReader struct {
	base
	data *stream.ByteReader
}

func NewByteReader(columnID int) *ByteReader {
	return &ByteReader{base: newBase(columnID, api.KindByte)}
}

func (r *ByteReader) StartStripe(streams StreamSet, _ *meta.ColumnEncoding) error {
	r.startStripePresent(streams)
	data, err := requireStream(streams, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	r.data = stream.NewByteReader(data)
	return nil
}

func (r *ByteReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	pos, err := requirePosition(positions, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	return stream.SeekByteReader(r.data, pos)
}

func (r *ByteReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, nonNull, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeFixedWidth
	out.Nulls = nulls
	out.Len = n
	vals, err := r.data.ReadBytes(nonNull)
	if err != nil {
		return 0, errors.Wrap(err, "byte column: read values")
	}
	out.Bytes = vals
	return n, nil
}

func (r *ByteReader) Skip(n int) error {
	nonNull, err := r.skipPresence(n)
	if err != nil {
		return err
	}
	_, err = r.data.ReadBytes(nonNull)
	return err
}
