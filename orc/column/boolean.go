package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// BooleanReader decodes a BOOLEAN column: PRESENT + a DATA boolean bit
// stream. Grounded on goorc's orc/column/bool.go boolReader.
type BooleanReader struct {
	base
	data *stream.BoolReader
}

func NewBooleanReader(columnID int) *BooleanReader {
	return &BooleanReader{base: newBase(columnID, api.KindBoolean)}
}

func (r *BooleanReader) StartStripe(streams StreamSet, _ *meta.ColumnEncoding) error {
	r.startStripePresent(streams)
	data, err := requireStream(streams, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	r.data = stream.NewBoolReader(stream.NewByteReader(data))
	return nil
}

func (r *BooleanReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	pos, err := requirePosition(positions, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	return stream.SeekBoolReader(r.data, pos)
}

func (r *BooleanReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, nonNull, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeFixedWidth
	out.Nulls = nulls
	out.Len = n
	out.Booleans = make([]bool, nonNull)
	for i := 0; i < nonNull; i++ {
		v, err := r.data.ReadBool()
		if err != nil {
			return 0, errors.Wrap(err, "boolean column: read value")
		}
		out.Booleans[i] = v
	}
	return n, nil
}

func (r *BooleanReader) Skip(n int) error {
	nonNull, err := r.skipPresence(n)
	if err != nil {
		return err
	}
	return r.data.Skip(nonNull)
}
