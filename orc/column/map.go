package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// MapReader decodes a MAP column: PRESENT + a LENGTH stream of per-row
// pair counts, with flattened keys/values read by two child Readers.
type MapReader struct {
	base
	length     intStream
	keyChild   Reader
	valueChild Reader
}

func NewMapReader(columnID int, keyChild, valueChild Reader) *MapReader {
	return &MapReader{base: newBase(columnID, api.KindMap), keyChild: keyChild, valueChild: valueChild}
}

func (r *MapReader) StartStripe(streams StreamSet, encoding *meta.ColumnEncoding) error {
	r.startStripePresent(streams)
	lengths, err := requireStream(streams, meta.StreamLength, r.columnID)
	if err != nil {
		return err
	}
	if isV1Encoding(encoding) {
		r.length = stream.NewIntV1Reader(lengths, false)
	} else {
		r.length = stream.NewIntV2Reader(lengths, false)
	}
	return nil
}

func (r *MapReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	pos, err := requirePosition(positions, meta.StreamLength, r.columnID)
	if err != nil {
		return err
	}
	return seekIntStream(r.length, pos)
}

func (r *MapReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, _, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeComposite
	out.Nulls = nulls
	out.Len = n

	offsets := make([]int32, n+1)
	var total int64
	for i := 0; i < n; i++ {
		count, err := r.length.Next()
		if err != nil {
			return 0, errors.Wrapf(err, "map column %d: read length", r.columnID)
		}
		total += count
		offsets[i+1] = int32(total)
	}
	out.Offsets = offsets

	keyVec := &api.Vector{ColumnId: r.keyChild.ColumnID()}
	valueVec := &api.Vector{ColumnId: r.valueChild.ColumnID()}
	if total > 0 {
		if _, err := r.keyChild.ReadBatch(keyVec, int(total)); err != nil {
			return 0, errors.Wrapf(err, "map column %d: read keys", r.columnID)
		}
		if _, err := r.valueChild.ReadBatch(valueVec, int(total)); err != nil {
			return 0, errors.Wrapf(err, "map column %d: read values", r.columnID)
		}
	}
	out.Key = keyVec
	out.Value = valueVec
	return n, nil
}

func (r *MapReader) Skip(n int) error {
	if _, err := r.skipPresence(n); err != nil {
		return err
	}
	var total int64
	for i := 0; i < n; i++ {
		count, err := r.length.Next()
		if err != nil {
			return errors.Wrapf(err, "map column %d: skip length", r.columnID)
		}
		total += count
	}
	if total == 0 {
		return nil
	}
	if err := r.keyChild.Skip(int(total)); err != nil {
		return err
	}
	return r.valueChild.Skip(int(total))
}
