package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/pkg/errors"
)

// Build constructs one Reader per node of the schema tree rooted at
// root, in goorc's factory-function idiom (orc/column's
// NewBooleanReader/NewByteReader/... constructors), keyed by column id
// so the stripe orchestrator can look any of them up directly.
func Build(root *api.TypeDescription) (map[int]Reader, error) {
	out := make(map[int]Reader)
	if _, err := build(root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func build(td *api.TypeDescription, out map[int]Reader) (Reader, error) {
	var r Reader
	switch td.Kind {
	case api.KindBoolean:
		r = NewBooleanReader(td.Id)
	case api.KindByte:
		r = NewByteReader(td.Id)
	case api.KindShort, api.KindInt, api.KindLong, api.KindDate:
		r = NewIntegerReader(td.Id, td.Kind)
	case api.KindFloat:
		r = NewFloatReader(td.Id)
	case api.KindDouble:
		r = NewDoubleReader(td.Id)
	case api.KindString, api.KindVarchar, api.KindChar, api.KindBinary:
		r = NewStringReader(td.Id, td.Kind)
	case api.KindTimestamp:
		r = NewTimestampReader(td.Id)
	case api.KindDecimal:
		r = NewDecimalReader(td.Id)
	case api.KindStruct:
		children := make([]Reader, len(td.Children))
		for i, c := range td.Children {
			cr, err := build(c, out)
			if err != nil {
				return nil, err
			}
			children[i] = cr
		}
		r = NewStructReader(td.Id, children)
	case api.KindList:
		if len(td.Children) != 1 {
			return nil, errors.Errorf("list column %d: expected 1 child, got %d", td.Id, len(td.Children))
		}
		child, err := build(td.Children[0], out)
		if err != nil {
			return nil, err
		}
		r = NewListReader(td.Id, child)
	case api.KindMap:
		if len(td.Children) != 2 {
			return nil, errors.Errorf("map column %d: expected 2 children, got %d", td.Id, len(td.Children))
		}
		keyChild, err := build(td.Children[0], out)
		if err != nil {
			return nil, err
		}
		valueChild, err := build(td.Children[1], out)
		if err != nil {
			return nil, err
		}
		r = NewMapReader(td.Id, keyChild, valueChild)
	case api.KindUnion:
		branches := make([]Reader, len(td.Children))
		for i, c := range td.Children {
			br, err := build(c, out)
			if err != nil {
				return nil, err
			}
			branches[i] = br
		}
		r = NewUnionReader(td.Id, branches)
	default:
		return nil, errors.Errorf("column %d: unsupported type kind %s", td.Id, td.Kind)
	}
	out[td.Id] = r
	return r, nil
}
