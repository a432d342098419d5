package orc

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/column"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/predicate"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// state is the record-reader state machine's current position.
type state int

const (
	stateReady state = iota
	stateInStripe
	stateInGroup
	stateExhausted
	stateClosed
)

// rowGroup is one planned row group within a stripe: its row span and
// whether the predicate engine rejected it against that group's
// statistics.
type rowGroup struct {
	startRow int
	numRows  int
	survive  bool
}

// RecordReader drives stripe and row-group selection over an open Reader
// and produces batches. Grounded on goorc's
// stripeReader/recordReader split in orc/reader.go, generalized from its
// fixed int/string column support to the full column-reader tree and
// extended with the predicate-driven stripe/row-group skipping goorc
// never implemented.
type RecordReader struct {
	reader    *Reader
	predicate predicate.TupleDomain

	// columnIDs is the caller's requested output columns, in the order
	// NextBatch's returned Batch.Columns should be read back in
	// (map iteration order is not guaranteed, but callers index by id).
	columnIDs []int

	// topLevel is every column whose ReadBatch/Skip is called directly:
	// columnIDs plus any predicate-only column not already a descendant
	// of one of them. Composite readers recurse into their own children
	// internally, so a descendant of a requested column must never also
	// appear here (that would double-consume its streams).
	topLevel []int

	// wantColumns is topLevel flattened over the schema tree: every
	// column id that needs its own StreamSet/RowIndex/StartStripe/
	// StartRowGroup, including ones nested under a requested column.
	wantColumns map[int]bool

	readers map[int]column.Reader

	rangeStart, rangeEnd int64 // rangeEnd < 0 means "to end of file"

	state state

	stripeIdx int
	sd        *stripeData

	groups         []rowGroup
	groupIdx       int
	groupRemaining int
}

// NewRecordReader builds a RecordReader over reader. includedColumns
// selects which top-level fields of the root struct are materialized
// into each batch (nil/empty means all of them). pred constrains which
// stripes/row groups are scanned at all. rangeStart/rangeLength restrict
// scanning to stripes overlapping that byte range of the file;
// rangeLength < 0 means "to end of file".
func NewRecordReader(reader *Reader, includedColumns []int, pred predicate.TupleDomain, rangeStart, rangeLength int64) (*RecordReader, error) {
	if reader.closed {
		return nil, &ClosedError{Path: reader.path}
	}
	root := reader.schema[0]
	if len(includedColumns) == 0 {
		includedColumns = make([]int, 0, len(root.Children))
		for _, c := range root.Children {
			includedColumns = append(includedColumns, c.Id)
		}
	}

	readers, err := column.Build(root)
	if err != nil {
		return nil, errors.Wrap(err, "build column readers")
	}

	flattened := map[int]bool{}
	topLevel := make([]int, 0, len(includedColumns))
	for _, id := range includedColumns {
		if id < 0 || id >= len(reader.schema) {
			return nil, errors.Errorf("included column id %d not in schema", id)
		}
		topLevel = append(topLevel, id)
		for _, n := range reader.schema[id].Flatten() {
			flattened[n.Id] = true
		}
	}
	for colID := range pred.Domains {
		if colID < 0 || colID >= len(reader.schema) || flattened[colID] {
			continue
		}
		topLevel = append(topLevel, colID)
		for _, n := range reader.schema[colID].Flatten() {
			flattened[n.Id] = true
		}
	}

	rangeEnd := int64(-1)
	if rangeLength >= 0 {
		rangeEnd = rangeStart + rangeLength
	}

	return &RecordReader{
		reader:      reader,
		predicate:   pred,
		columnIDs:   includedColumns,
		topLevel:    topLevel,
		wantColumns: flattened,
		readers:     readers,
		rangeStart:  rangeStart,
		rangeEnd:    rangeEnd,
		state:       stateReady,
		stripeIdx:   -1,
	}, nil
}

// NextBatch decodes up to maxRows rows (the reader's configured RowSize
// when maxRows <= 0) and returns the included columns' vectors. A
// zero-row batch with no error means every selected stripe is exhausted.
func (rr *RecordReader) NextBatch(maxRows int) (*api.Batch, error) {
	if rr.state == stateClosed {
		return nil, &ClosedError{Path: rr.reader.path}
	}
	if maxRows <= 0 {
		maxRows = rr.reader.opts.RowSize
	}

	for {
		switch rr.state {
		case stateExhausted:
			return &api.Batch{Columns: map[int]*api.Vector{}}, nil

		case stateReady:
			ok, err := rr.advanceStripe()
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			continue

		case stateInStripe:
			ok, err := rr.startNextGroup()
			if err != nil {
				return nil, err
			}
			if !ok {
				rr.state = stateReady
			}
			continue

		case stateInGroup:
			n := maxRows
			if n > rr.groupRemaining {
				n = rr.groupRemaining
			}
			decoded := make(map[int]*api.Vector, len(rr.topLevel))
			for _, id := range rr.topLevel {
				vec := &api.Vector{ColumnId: id, Kind: rr.reader.schema[id].Kind}
				if _, err := rr.readers[id].ReadBatch(vec, n); err != nil {
					rr.state = stateClosed
					return nil, &OrcCorruptionError{
						Path: rr.reader.path, Stripe: rr.sd.index, Column: id,
						Reason: errors.Wrap(err, "read_batch").Error(),
					}
				}
				decoded[id] = vec
			}
			rr.groupRemaining -= n
			if rr.groupRemaining <= 0 {
				rr.state = stateInStripe
			}

			out := make(map[int]*api.Vector, len(rr.columnIDs))
			for _, id := range rr.columnIDs {
				out[id] = decoded[id]
			}
			return &api.Batch{RowCount: n, Columns: out}, nil

		default: // stateClosed handled above
			return nil, &ClosedError{Path: rr.reader.path}
		}
	}
}

// Close transitions the reader to Closed; further NextBatch calls fail.
func (rr *RecordReader) Close() error {
	rr.state = stateClosed
	return nil
}

// advanceStripe finds and loads the next stripe overlapping the
// requested byte range that the predicate engine's stripe-level
// statistics check (and, failing that, row-group check) doesn't reject
// outright.
func (rr *RecordReader) advanceStripe() (bool, error) {
	for {
		rr.stripeIdx++
		if rr.stripeIdx >= len(rr.reader.footer.Stripes) {
			rr.state = stateExhausted
			return false, nil
		}
		info := rr.reader.footer.Stripes[rr.stripeIdx]
		stripeStart := int64(info.Offset)
		stripeEnd := int64(info.Offset + info.IndexLength + info.DataLength + info.FooterLength)
		if rr.rangeEnd >= 0 && stripeStart >= rr.rangeEnd {
			rr.state = stateExhausted
			return false, nil
		}
		if stripeEnd <= rr.rangeStart {
			continue
		}
		if !rr.stripeMayMatch(rr.stripeIdx) {
			continue
		}

		sd, err := rr.reader.loadStripe(rr.stripeIdx, rr.wantColumns)
		if err != nil {
			rr.state = stateClosed
			return false, err
		}
		rr.sd = sd

		for id := range rr.wantColumns {
			if ts, ok := rr.readers[id].(*column.TimestampReader); ok {
				ts.SetWriterTimezone(sd.writerZone)
				ts.SetSessionTimezone(rr.reader.opts.SessionTimeZone)
			}
			enc := rr.reader.resolvedEncoding(sd, id)
			if err := rr.readers[id].StartStripe(sd.streams[id], enc); err != nil {
				rr.state = stateClosed
				return false, &OrcCorruptionError{
					Path: rr.reader.path, Stripe: rr.stripeIdx, Column: id,
					Reason: errors.Wrap(err, "start_stripe").Error(),
				}
			}
		}

		groups, err := rr.planRowGroups(sd, info)
		if err != nil {
			rr.state = stateClosed
			return false, err
		}
		survives := false
		for _, g := range groups {
			if g.survive {
				survives = true
				break
			}
		}
		if !survives {
			continue
		}

		rr.groups = groups
		rr.groupIdx = -1
		rr.state = stateInStripe
		return true, nil
	}
}

// stripeMayMatch checks the predicate against the stripe-level statistics
// section (ORC metadata only; absent entirely for DWRF, in which case
// this tier is a no-op and row-group pruning does the work).
func (rr *RecordReader) stripeMayMatch(idx int) bool {
	if rr.predicate.IsAll() {
		return true
	}
	if rr.reader.metadata == nil || idx >= len(rr.reader.metadata.StripeStats) {
		return true
	}
	ss := rr.reader.metadata.StripeStats[idx]
	stats := make(map[int]*meta.ColumnStatistics, len(ss.ColumnStatistics))
	for colID, cs := range ss.ColumnStatistics {
		stats[colID] = cs
	}
	matched := predicate.MayMatch(rr.predicate, stats)
	if !matched {
		logger.WithFields(logrus.Fields{"path": rr.reader.path, "stripe": idx}).Debug("orc: stripe rejected by statistics")
	}
	return matched
}

// planRowGroups splits a stripe's rows into row-index-stride-sized
// groups and evaluates the predicate against each one's statistics. A
// stripe with no row-index stride (or whose wanted columns carry no row
// index at all) is treated as a single surviving group spanning every
// row.
func (rr *RecordReader) planRowGroups(sd *stripeData, info *meta.StripeInformation) ([]rowGroup, error) {
	total := int(info.NumberOfRows)
	stride := int(rr.reader.footer.RowIndexStride)
	if stride <= 0 {
		return []rowGroup{{startRow: 0, numRows: total, survive: true}}, nil
	}

	entryCount := 0
	for id := range rr.wantColumns {
		if ri, ok := sd.rowIdx[id]; ok {
			entryCount = len(ri.Entries)
			break
		}
	}
	if entryCount == 0 {
		return []rowGroup{{startRow: 0, numRows: total, survive: true}}, nil
	}

	groups := make([]rowGroup, entryCount)
	for i := 0; i < entryCount; i++ {
		start := i * stride
		n := stride
		if start+n > total {
			n = total - start
		}
		stats := make(map[int]*meta.ColumnStatistics)
		for colID := range rr.predicate.Domains {
			if ri, ok := sd.rowIdx[colID]; ok && i < len(ri.Entries) {
				stats[colID] = ri.Entries[i].Statistics
			}
		}
		survive := predicate.MayMatch(rr.predicate, stats)
		if !survive {
			logger.WithFields(logrus.Fields{"path": rr.reader.path, "stripe": rr.stripeIdx, "group": i}).
				Trace("orc: row group rejected by statistics")
		}
		groups[i] = rowGroup{startRow: start, numRows: n, survive: survive}
	}
	return groups, nil
}

// startNextGroup advances to the next surviving row group in the current
// stripe, skipping rejected ones through their streams on the way.
// Returns false when the stripe is exhausted.
func (rr *RecordReader) startNextGroup() (bool, error) {
	for {
		rr.groupIdx++
		if rr.groupIdx >= len(rr.groups) {
			return false, nil
		}
		g := rr.groups[rr.groupIdx]
		if !g.survive {
			if err := rr.skipGroup(g); err != nil {
				rr.state = stateClosed
				return false, err
			}
			continue
		}
		if len(rr.groups) > 1 {
			if err := rr.seekGroup(rr.groupIdx); err != nil {
				rr.state = stateClosed
				return false, err
			}
		}
		rr.groupRemaining = g.numRows
		rr.state = stateInGroup
		return true, nil
	}
}

// seekGroup seeks every wanted column's streams to groupIdx's row-group
// boundary using that column's row-index position vector.
func (rr *RecordReader) seekGroup(groupIdx int) error {
	for id := range rr.wantColumns {
		ri, ok := rr.sd.rowIdx[id]
		if !ok || groupIdx >= len(ri.Entries) {
			continue
		}
		entry := ri.Entries[groupIdx]
		enc := rr.reader.resolvedEncoding(rr.sd, id)
		ps, err := splitPositions(rr.reader.schema[id].Kind, enc, rr.sd.declared[id], entry)
		if err != nil {
			return &OrcCorruptionError{Path: rr.reader.path, Stripe: rr.sd.index, Column: id, Reason: err.Error()}
		}
		if err := rr.readers[id].StartRowGroup(ps); err != nil {
			return &OrcCorruptionError{
				Path: rr.reader.path, Stripe: rr.sd.index, Column: id,
				Reason: errors.Wrap(err, "start_row_group").Error(),
			}
		}
	}
	return nil
}

// skipGroup discards a rejected row group's rows from every top-level
// reader (composite readers cascade the skip into their own children).
func (rr *RecordReader) skipGroup(g rowGroup) error {
	for _, id := range rr.topLevel {
		if err := rr.readers[id].Skip(g.numRows); err != nil {
			return &OrcCorruptionError{
				Path: rr.reader.path, Stripe: rr.sd.index, Column: id,
				Reason: errors.Wrap(err, "skip row group").Error(),
			}
		}
	}
	return nil
}
