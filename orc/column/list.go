package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// ListReader decodes a LIST column: PRESENT + a LENGTH stream of
// per-row element counts, with the flattened element values read by a
// single child Reader.
type ListReader struct {
	base
	length intStream
	child  Reader
}

func NewListReader(columnID int, child Reader) *ListReader {
	return &ListReader{base: newBase(columnID, api.KindList), child: child}
}

func (r *ListReader) StartStripe(streams StreamSet, encoding *meta.ColumnEncoding) error {
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

func (r *ListReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	pos, err := requirePosition(positions, meta.StreamLength, r.columnID)
	if err != nil {
		return err
	}
	return seekIntStream(r.length, pos)
}

func (r *ListReader) ReadBatch(out *api.Vector, n int) (int, error) {
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
			return 0, errors.Wrapf(err, "list column %d: read length", r.columnID)
		}
		total += count
		offsets[i+1] = int32(total)
	}
	out.Offsets = offsets

	elemVec := &api.Vector{ColumnId: r.child.ColumnID()}
	if total > 0 {
		if _, err := r.child.ReadBatch(elemVec, int(total)); err != nil {
			return 0, errors.Wrapf(err, "list column %d: read elements", r.columnID)
		}
	}
	out.Element = elemVec
	return n, nil
}

func (r *ListReader) Skip(n int) error {
	if _, err := r.skipPresence(n); err != nil {
		return err
	}
	var total int64
	for i := 0; i < n; i++ {
		count, err := r.length.Next()
		if err != nil {
			return errors.Wrapf(err, "list column %d: skip length", r.columnID)
		}
		total += count
	}
	if total == 0 {
		return nil
	}
	return r.child.Skip(int(total))
}
