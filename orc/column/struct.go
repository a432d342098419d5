package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/pkg/errors"
)

// StructReader decodes a STRUCT column: PRESENT plus one child Reader per
// field, each reading its own n values in lockstep.
type StructReader struct {
	base
	children []Reader
}

func NewStructReader(columnID int, children []Reader) *StructReader {
	return &StructReader{base: newBase(columnID, api.KindStruct), children: children}
}

func (r *StructReader) StartStripe(streams StreamSet, _ *meta.ColumnEncoding) error {
	r.startStripePresent(streams)
	return nil
}

func (r *StructReader) StartRowGroup(positions PositionSet) error {
	return r.startRowGroupPresent(positions)
}

func (r *StructReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, _, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeComposite
	out.Nulls = nulls
	out.Len = n
	out.Fields = make([]*api.Vector, len(r.children))
	for i, child := range r.children {
		fieldVec := &api.Vector{ColumnId: child.ColumnID()}
		if _, err := child.ReadBatch(fieldVec, n); err != nil {
			return 0, errors.Wrapf(err, "struct column %d: read field %d", r.columnID, i)
		}
		out.Fields[i] = fieldVec
	}
	return n, nil
}

func (r *StructReader) Skip(n int) error {
	if _, err := r.skipPresence(n); err != nil {
		return err
	}
	for i, child := range r.children {
		if err := child.Skip(n); err != nil {
			return errors.Wrapf(err, "struct column %d: skip field %d", r.columnID, i)
		}
	}
	return nil
}
