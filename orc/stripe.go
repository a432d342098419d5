package orc

import (
	"time"

	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/column"
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// stripeData is one stripe's demultiplexed streams, ready for column
// readers to consume. Grounded on goorc's stripeReader.NextStripe
// (orc/reader.go): it walks the stripe footer's flat Stream list,
// assigning each stream the next unclaimed byte range of its region
// (index or data) in declaration order. goorc computes this via a
// per-column running total; since the Stream list is already emitted in
// disk order within each region, a single monotonic cursor per region
// produces the identical byte ranges without the per-column bookkeeping.
type stripeData struct {
	index   int
	info    *meta.StripeInformation
	footer  *meta.StripeFooter
	streams map[int]column.StreamSet
	rowIdx  map[int]*meta.RowIndex

	// declared records, per column, the stream kinds wired for it in the
	// footer's declaration order - the same order a row index entry's
	// flat Positions slice is laid out in, needed to split it back into
	// per-stream cursors.
	declared map[int][]meta.StreamKind

	writerZone *time.Location
}

// loadStripe reads and demultiplexes stripe index+data+footer sections,
// building a StreamSet per column in wantColumns. Columns outside
// wantColumns still have their streams' byte ranges computed (so the
// cursor stays correct) but no BlockReader is built for them.
func (r *Reader) loadStripe(idx int, wantColumns map[int]bool) (*stripeData, error) {
	if idx < 0 || idx >= len(r.footer.Stripes) {
		return nil, errors.Errorf("stripe index %d out of range", idx)
	}
	info := r.footer.Stripes[idx]

	footerStart := int64(info.Offset + info.IndexLength + info.DataLength)
	footerRaw, err := r.ds.ReadAt(footerStart, int64(info.FooterLength))
	if err != nil {
		return nil, &IoError{Path: r.path, Err: err}
	}
	footerBytes, err := decompressSection(r.path, r.postScript, footerRaw)
	if err != nil {
		return nil, err
	}

	kinds := make([]api.Kind, len(r.schema))
	for _, td := range r.schema {
		kinds[td.Id] = td.Kind
	}
	sf, err := r.metaReader.ReadStripeFooter(kinds, footerBytes)
	if err != nil {
		return nil, &MalformedError{Path: r.path, Reason: errors.Wrap(err, "stripe footer").Error()}
	}

	writerZone := r.storageTimeZone()
	if sf.WriterTimezone != "" {
		if loc, err := time.LoadLocation(sf.WriterTimezone); err == nil {
			writerZone = loc
		} else {
			return nil, &UnsupportedMetadataError{Path: r.path, Reason: "writer timezone: " + err.Error()}
		}
	}

	sd := &stripeData{
		index:      idx,
		info:       info,
		footer:     sf,
		streams:    make(map[int]column.StreamSet),
		rowIdx:     make(map[int]*meta.RowIndex),
		declared:   make(map[int][]meta.StreamKind),
		writerZone: writerZone,
	}

	idxCursor := int64(info.Offset)
	dataCursor := int64(info.Offset + info.IndexLength)

	for _, s := range sf.Streams {
		kind := r.metaReader.ResolveStreamKind(s.Kind)
		columnID := int(s.Column)
		length := int64(s.Length)

		var start int64
		indexRegion := kind == meta.StreamRowIndex || kind == meta.StreamBloomFilter || kind == meta.StreamBloomFilterUTF8
		if indexRegion {
			start = idxCursor
			idxCursor += length
		} else {
			start = dataCursor
			dataCursor += length
		}

		if !wantColumns[columnID] {
			continue
		}

		if kind == meta.StreamRowIndex {
			raw, err := r.ds.ReadAt(start, length)
			if err != nil {
				return nil, &IoError{Path: r.path, Err: err}
			}
			decoded, err := decompressSection(r.path, r.postScript, raw)
			if err != nil {
				return nil, err
			}
			ri, err := r.metaReader.ReadRowIndex(decoded)
			if err != nil {
				return nil, &MalformedError{Path: r.path, Reason: errors.Wrap(err, "row index").Error()}
			}
			sd.rowIdx[columnID] = ri
			continue
		}
		if kind == meta.StreamBloomFilter || kind == meta.StreamBloomFilterUTF8 {
			continue // not used for predicate evaluation by this reader
		}

		br := compress.NewBlockReader(r.ds, start, length, r.postScript.Compression, int(r.postScript.CompressionBlockSize))
		if sd.streams[columnID] == nil {
			sd.streams[columnID] = column.StreamSet{}
		}
		sd.streams[columnID][kind] = br
		sd.declared[columnID] = append(sd.declared[columnID], kind)
	}

	return sd, nil
}

// resolvedEncoding returns the stripe's canonical encoding for columnID,
// applying the active dialect's DWRF_DIRECT reinterpretation.
func (r *Reader) resolvedEncoding(sd *stripeData, columnID int) *meta.ColumnEncoding {
	if columnID >= len(sd.footer.Columns) {
		return nil
	}
	wire := sd.footer.Columns[columnID]
	if wire == nil {
		return nil
	}
	kind := r.metaReader.ResolveEncoding(r.schema[columnID].Kind, wire.Kind)
	return &meta.ColumnEncoding{Kind: kind, DictionarySize: wire.DictionarySize}
}

// positionArity reports how many position-vector slots a row-group entry
// spends on one (column kind, stream kind) pair, and whether that stream
// is positioned at all - stripe-scoped streams like DICTIONARY_DATA are
// read once in StartStripe and never re-sought, so the row index carries
// no slots for them. Mirrors exactly what each column reader's
// StartRowGroup feeds into stream.SeekXxxReader: a raw BlockReader seek
// is 2 slots (compressed_offset, uncompressed_offset), byte-RLE and
// int-RLE streams add one more for the in-group offset already consumed,
// and a bool stream (PRESENT) adds a further bit-offset slot on top of
// that.
func positionArity(colKind api.Kind, streamKind meta.StreamKind, encoding *meta.ColumnEncoding) (arity int, positioned bool, err error) {
	switch streamKind {
	case meta.StreamPresent:
		return 4, true, nil // SeekBoolReader: blockreader(2) + group(1) + bit(1)

	case meta.StreamData:
		switch colKind {
		case api.KindBoolean:
			return 4, true, nil
		case api.KindByte, api.KindUnion:
			return 3, true, nil // byte-RLE: blockreader(2) + group(1)
		case api.KindShort, api.KindInt, api.KindLong, api.KindDate, api.KindTimestamp:
			return 3, true, nil // int v1/v2: blockreader(2) + group(1)
		case api.KindFloat, api.KindDouble:
			return 2, true, nil // raw fixed-width
		case api.KindDecimal:
			return 2, true, nil // bare varint, no decoder-internal buffering
		case api.KindString, api.KindVarchar, api.KindChar, api.KindBinary:
			if encoding != nil && (encoding.Kind == meta.EncodingDictionary || encoding.Kind == meta.EncodingDictionaryV2) {
				return 3, true, nil // dictionary index stream: int v1/v2
			}
			return 2, true, nil // direct mode: raw contiguous bytes
		default:
			return 0, false, errors.Errorf("column kind %v: DATA stream has no position rule", colKind)
		}

	case meta.StreamLength:
		if encoding != nil && (encoding.Kind == meta.EncodingDictionary || encoding.Kind == meta.EncodingDictionaryV2) {
			return 0, false, nil // dictionary lengths: read once in StartStripe
		}
		return 3, true, nil // int v1/v2: list/map/string-direct lengths

	case meta.StreamSecondary:
		switch colKind {
		case api.KindTimestamp, api.KindDecimal:
			return 3, true, nil // int v1/v2
		default:
			return 0, false, errors.Errorf("column kind %v: SECONDARY stream has no position rule", colKind)
		}

	default:
		// DICTIONARY_DATA and the bloom filter streams are not row-group
		// positioned.
		return 0, false, nil
	}
}

// splitPositions breaks one column's flat RowIndexEntry.Positions vector
// back into the per-stream-kind cursors column.Reader.StartRowGroup
// expects, in the declaration order recorded while loading the stripe.
func splitPositions(colKind api.Kind, encoding *meta.ColumnEncoding, declared []meta.StreamKind, entry *meta.RowIndexEntry) (column.PositionSet, error) {
	ps := column.PositionSet{}
	offset := 0
	for _, kind := range declared {
		arity, positioned, err := positionArity(colKind, kind, encoding)
		if err != nil {
			return nil, err
		}
		if !positioned {
			continue
		}
		if offset+arity > len(entry.Positions) {
			return nil, errors.Errorf("row index entry exhausted at stream kind %d (column kind %v)", kind, colKind)
		}
		ps[kind] = stream.NewPositions(entry.Positions[offset : offset+arity])
		offset += arity
	}
	return ps, nil
}
