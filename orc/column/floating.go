package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// FloatReader decodes a FLOAT column: PRESENT + raw little-endian
// IEEE-754 single-precision DATA stream.
type FloatReader struct {
	base
	data *stream.FloatReader
}

func NewFloatReader(columnID int) *FloatReader {
	return &FloatReader{base: newBase(columnID, api.KindFloat)}
}

func (r *FloatReader) StartStripe(streams StreamSet, _ *meta.ColumnEncoding) error {
	r.startStripePresent(streams)
	data, err := requireStream(streams, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	r.data = stream.NewFloatReader(data)
	return nil
}

func (r *FloatReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	pos, err := requirePosition(positions, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	return stream.SeekFloatReader(r.data, pos)
}

func (r *FloatReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, nonNull, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeFixedWidth
	out.Nulls = nulls
	out.Len = n
	out.Doubles = make([]float64, nonNull)
	for i := 0; i < nonNull; i++ {
		v, err := r.data.Next()
		if err != nil {
			return 0, errors.Wrap(err, "float column: read value")
		}
		out.Doubles[i] = float64(v)
	}
	return n, nil
}

func (r *FloatReader) Skip(n int) error {
	nonNull, err := r.skipPresence(n)
	if err != nil {
		return err
	}
	return r.data.Skip(nonNull)
}

// DoubleReader decodes a DOUBLE column: PRESENT + raw little-endian
// IEEE-754 double-precision DATA stream.
type DoubleReader struct {
	base
	data *stream.DoubleReader
}

func NewDoubleReader(columnID int) *DoubleReader {
	return &DoubleReader{base: newBase(columnID, api.KindDouble)}
}

func (r *DoubleReader) StartStripe(streams StreamSet, _ *meta.ColumnEncoding) error {
	r.startStripePresent(streams)
	data, err := requireStream(streams, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	r.data = stream.NewDoubleReader(data)
	return nil
}

func (r *DoubleReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	pos, err := requirePosition(positions, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	return stream.SeekDoubleReader(r.data, pos)
}

func (r *DoubleReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, nonNull, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeFixedWidth
	out.Nulls = nulls
	out.Len = n
	out.Doubles = make([]float64, nonNull)
	for i := 0; i < nonNull; i++ {
		v, err := r.data.Next()
		if err != nil {
			return 0, errors.Wrap(err, "double column: read value")
		}
		out.Doubles[i] = v
	}
	return n, nil
}

func (r *DoubleReader) Skip(n int) error {
	nonNull, err := r.skipPresence(n)
	if err != nil {
		return err
	}
	return r.data.Skip(nonNull)
}
