package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// UnionReader decodes a UNIONTYPE column: PRESENT + a byte tag stream
// selecting, per non-null row, which branch child supplies that row's
// value. Each branch's child
// reader only ever sees the rows tagged for it, so its Vector holds a
// dense run of that branch's values in row order, matching the same
// "dense non-null values" convention every other Vector field uses.
type UnionReader struct {
	base
	tags     *stream.ByteReader
	branches []Reader
}

func NewUnionReader(columnID int, branches []Reader) *UnionReader {
	return &UnionReader{base: newBase(columnID, api.KindUnion), branches: branches}
}

func (r *UnionReader) StartStripe(streams StreamSet, _ *meta.ColumnEncoding) error {
	r.startStripePresent(streams)
	data, err := requireStream(streams, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	r.tags = stream.NewByteReader(data)
	return nil
}

func (r *UnionReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	pos, err := requirePosition(positions, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	return stream.SeekByteReader(r.tags, pos)
}

func (r *UnionReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, nonNull, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeComposite
	out.Nulls = nulls
	out.Len = n

	tags, err := r.tags.ReadBytes(nonNull)
	if err != nil {
		return 0, errors.Wrapf(err, "union column %d: read tags", r.columnID)
	}

	branchCounts := make([]int, len(r.branches))
	for _, t := range tags {
		if int(t) >= len(r.branches) {
			return 0, errors.Errorf("union column %d: tag %d out of range", r.columnID, t)
		}
		branchCounts[t]++
	}

	branches := make([]*api.Vector, len(r.branches))
	for i, child := range r.branches {
		bv := &api.Vector{ColumnId: child.ColumnID()}
		if branchCounts[i] > 0 {
			if _, err := child.ReadBatch(bv, branchCounts[i]); err != nil {
				return 0, errors.Wrapf(err, "union column %d: read branch %d", r.columnID, i)
			}
		}
		branches[i] = bv
	}

	out.Tags = tags
	out.Branches = branches
	return n, nil
}

func (r *UnionReader) Skip(n int) error {
	nonNull, err := r.skipPresence(n)
	if err != nil {
		return err
	}
	tags, err := r.tags.ReadBytes(nonNull)
	if err != nil {
		return errors.Wrapf(err, "union column %d: skip tags", r.columnID)
	}
	branchCounts := make([]int, len(r.branches))
	for _, t := range tags {
		if int(t) >= len(r.branches) {
			return errors.Errorf("union column %d: tag %d out of range", r.columnID, t)
		}
		branchCounts[t]++
	}
	for i, child := range r.branches {
		if branchCounts[i] == 0 {
			continue
		}
		if err := child.Skip(branchCounts[i]); err != nil {
			return err
		}
	}
	return nil
}
