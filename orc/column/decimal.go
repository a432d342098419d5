package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// DecimalReader decodes a DECIMAL column: PRESENT + a bare varint DATA
// stream of unscaled values + an unsigned RLE v2 SECONDARY stream of
// scales, per goorc's orc/column/decimal.go (decimalV2Reader).
// Values are narrowed to api.Decimal64 (int64 unscaled value), matching
// this reader's fixed-precision scope.
type DecimalReader struct {
	base
	data      *stream.VarintReader
	secondary *stream.IntV2Reader
}

func NewDecimalReader(columnID int) *DecimalReader {
	return &DecimalReader{base: newBase(columnID, api.KindDecimal)}
}

func (r *DecimalReader) StartStripe(streams StreamSet, _ *meta.ColumnEncoding) error {
	r.startStripePresent(streams)
	data, err := requireStream(streams, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	r.data = stream.NewVarintReader(data)
	secondary, err := requireStream(streams, meta.StreamSecondary, r.columnID)
	if err != nil {
		return err
	}
	r.secondary = stream.NewIntV2Reader(secondary, false)
	return nil
}

func (r *DecimalReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	dataPos, err := requirePosition(positions, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	if err := stream.SeekVarintReader(r.data, dataPos); err != nil {
		return err
	}
	secondaryPos, err := requirePosition(positions, meta.StreamSecondary, r.columnID)
	if err != nil {
		return err
	}
	return stream.SeekIntV2Reader(r.secondary, secondaryPos)
}

func (r *DecimalReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, nonNull, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeFixedWidth
	out.Nulls = nulls
	out.Len = n
	out.Decimals = make([]api.Decimal64, nonNull)
	for i := 0; i < nonNull; i++ {
		unscaled, err := r.data.Next()
		if err != nil {
			return 0, errors.Wrap(err, "decimal column: read unscaled value")
		}
		scale, err := r.secondary.Next()
		if err != nil {
			return 0, errors.Wrap(err, "decimal column: read scale")
		}
		out.Decimals[i] = api.Decimal64{Unscaled: unscaled, Scale: int(scale)}
	}
	return n, nil
}

func (r *DecimalReader) Skip(n int) error {
	nonNull, err := r.skipPresence(n)
	if err != nil {
		return err
	}
	if err := r.data.Skip(nonNull); err != nil {
		return err
	}
	return r.secondary.Skip(nonNull)
}
