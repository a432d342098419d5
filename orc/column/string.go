package column

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// StringReader decodes STRING/VARCHAR/CHAR columns in either DIRECT(_V2)
// or DICTIONARY(_V2) mode. Grounded on goorc's
// orc/column/string.go, which picks one of
// stringDirectV2Reader/stringDictionaryV2Reader by the stripe's
// ColumnEncoding the same way this reader's dictionaryMode field
// switches between the direct and dictionary code paths.
//
// Row-group-scoped fallback dictionaries (ROW_GROUP_DICTIONARY /
// IN_DICTIONARY, "falls back to a per-row-group dictionary") are not
// resolved per row group: no stream carries that dictionary's entry
// count independent of row-group boundaries when IN_DICTIONARY is
// absent, so every index is resolved against the stripe dictionary
// instead.
type StringReader struct {
	base

	dictionaryMode bool

	direct *stream.StringReader

	dictionary [][]byte
	index      intStream
}

func NewStringReader(columnID int, kind api.Kind) *StringReader {
	return &StringReader{base: newBase(columnID, kind)}
}

func (r *StringReader) StartStripe(streams StreamSet, encoding *meta.ColumnEncoding) error {
	r.startStripePresent(streams)

	kind := meta.EncodingDirectV2
	if encoding != nil {
		kind = encoding.Kind
	}

	switch kind {
	case meta.EncodingDictionary, meta.EncodingDictionaryV2:
		r.dictionaryMode = true
		r.direct = nil

		lengths, err := requireStream(streams, meta.StreamLength, r.columnID)
		if err != nil {
			return err
		}
		data, err := requireStream(streams, meta.StreamDictionaryData, r.columnID)
		if err != nil {
			return err
		}
		var lengthReader stream.LengthReader
		if kind == meta.EncodingDictionary {
			lengthReader = stream.NewIntV1Reader(lengths, false)
		} else {
			lengthReader = stream.NewIntV2Reader(lengths, false)
		}
		dict, err := stream.ReadDictionary(lengthReader, data, int(encoding.DictionarySize))
		if err != nil {
			return errors.Wrap(err, "string column: read dictionary")
		}
		r.dictionary = dict

		indexData, err := requireStream(streams, meta.StreamData, r.columnID)
		if err != nil {
			return err
		}
		if kind == meta.EncodingDictionary {
			r.index = stream.NewIntV1Reader(indexData, false)
		} else {
			r.index = stream.NewIntV2Reader(indexData, false)
		}
		return nil

	default: // EncodingDirect, EncodingDirectV2, EncodingDwrfDirect
		r.dictionaryMode = false
		lengths, err := requireStream(streams, meta.StreamLength, r.columnID)
		if err != nil {
			return err
		}
		data, err := requireStream(streams, meta.StreamData, r.columnID)
		if err != nil {
			return err
		}
		var lengthReader stream.LengthReader
		if isV1Encoding(encoding) {
			lengthReader = stream.NewIntV1Reader(lengths, false)
		} else {
			lengthReader = stream.NewIntV2Reader(lengths, false)
		}
		r.direct = stream.NewStringReader(lengthReader, data)
		return nil
	}
}

func (r *StringReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	if r.dictionaryMode {
		pos, err := requirePosition(positions, meta.StreamData, r.columnID)
		if err != nil {
			return err
		}
		return seekIntStream(r.index, pos)
	}

	lenPos, err := requirePosition(positions, meta.StreamLength, r.columnID)
	if err != nil {
		return err
	}
	dataPos, err := requirePosition(positions, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	return stream.SeekStringReader(r.direct, lenPos, dataPos)
}

func seekIntStream(s intStream, pos *stream.Positions) error {
	switch d := s.(type) {
	case *stream.IntV1Reader:
		return stream.SeekIntV1Reader(d, pos)
	case *stream.IntV2Reader:
		return stream.SeekIntV2Reader(d, pos)
	default:
		return errors.New("string column: unknown index stream type")
	}
}

func (r *StringReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, nonNull, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeVariableWidth
	out.Nulls = nulls
	out.Len = n

	values := make([][]byte, nonNull)
	if r.dictionaryMode {
		for i := 0; i < nonNull; i++ {
			idx, err := r.index.Next()
			if err != nil {
				return 0, errors.Wrap(err, "string column: read dictionary index")
			}
			if idx < 0 || int(idx) >= len(r.dictionary) {
				return 0, errors.Errorf("string column %d: dictionary index %d out of range", r.columnID, idx)
			}
			values[i] = r.dictionary[idx]
		}
	} else {
		for i := 0; i < nonNull; i++ {
			v, err := r.direct.Next()
			if err != nil {
				return 0, errors.Wrap(err, "string column: read value")
			}
			values[i] = v
		}
	}
	out.Data = values
	return n, nil
}

func (r *StringReader) Skip(n int) error {
	nonNull, err := r.skipPresence(n)
	if err != nil {
		return err
	}
	if r.dictionaryMode {
		return r.index.Skip(nonNull)
	}
	return r.direct.Skip(nonNull)
}
