package column

import (
	"time"

	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/nullable-io/orcreader/orc/stream"
	"github.com/pkg/errors"
)

// TimestampReader decodes a TIMESTAMP column: PRESENT + a signed DATA
// stream of seconds-since-ORC-epoch + an unsigned SECONDARY stream of
// trailing-zero-packed nanoseconds. The writer zone anchors those seconds
// to an absolute instant (the writer recorded wall-clock time against its
// own zone); the session zone then re-expresses that instant the way the
// query executor materializing the batch expects it. Both are applied
// exactly once, in api.TimestampFromORC, at ReadBatch time.
type TimestampReader struct {
	base

	seconds intStream
	nanos   intStream

	writerZone  *time.Location
	sessionZone *time.Location
}

func NewTimestampReader(columnID int) *TimestampReader {
	return &TimestampReader{base: newBase(columnID, api.KindTimestamp), writerZone: time.UTC, sessionZone: time.UTC}
}

// SetWriterTimezone overrides the zone applied when reconstructing
// instants; called by the stripe orchestrator from StripeFooter.WriterTimezone.
func (r *TimestampReader) SetWriterTimezone(loc *time.Location) {
	if loc != nil {
		r.writerZone = loc
	}
}

// SetSessionTimezone overrides the zone instants are re-expressed in once
// reconstructed; called by the stripe orchestrator from the reader's
// configured SessionTimeZone option.
func (r *TimestampReader) SetSessionTimezone(loc *time.Location) {
	if loc != nil {
		r.sessionZone = loc
	}
}

func (r *TimestampReader) StartStripe(streams StreamSet, encoding *meta.ColumnEncoding) error {
	r.startStripePresent(streams)

	data, err := requireStream(streams, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	secondary, err := requireStream(streams, meta.StreamSecondary, r.columnID)
	if err != nil {
		return err
	}

	// Timestamp's seconds/nanos streams are not one of the SHORT/INT/LONG
	// kinds ResolveEncoding rewrites DIRECT->DWRF_DIRECT for, so under DWRF
	// they arrive as plain EncodingDirect; isV1Encoding treats that the
	// same as EncodingDwrfDirect rather than only matching the rewritten
	// form.
	if isV1Encoding(encoding) {
		r.seconds = stream.NewIntV1Reader(data, true)
		r.nanos = stream.NewIntV1Reader(secondary, false)
	} else {
		r.seconds = stream.NewIntV2Reader(data, true)
		r.nanos = stream.NewIntV2Reader(secondary, false)
	}
	return nil
}

func (r *TimestampReader) StartRowGroup(positions PositionSet) error {
	if err := r.startRowGroupPresent(positions); err != nil {
		return err
	}
	dataPos, err := requirePosition(positions, meta.StreamData, r.columnID)
	if err != nil {
		return err
	}
	if err := seekIntStream(r.seconds, dataPos); err != nil {
		return err
	}
	secondaryPos, err := requirePosition(positions, meta.StreamSecondary, r.columnID)
	if err != nil {
		return err
	}
	return seekIntStream(r.nanos, secondaryPos)
}

func (r *TimestampReader) ReadBatch(out *api.Vector, n int) (int, error) {
	nulls, nonNull, err := r.readPresence(n)
	if err != nil {
		return 0, err
	}
	out.Shape = api.ShapeFixedWidth
	out.Nulls = nulls
	out.Len = n
	out.Timestamps = make([]time.Time, nonNull)
	for i := 0; i < nonNull; i++ {
		secs, err := r.seconds.Next()
		if err != nil {
			return 0, errors.Wrap(err, "timestamp column: read seconds")
		}
		nanos, err := r.nanos.Next()
		if err != nil {
			return 0, errors.Wrap(err, "timestamp column: read nanos")
		}
		out.Timestamps[i] = api.TimestampFromORC(secs, uint64(nanos), r.writerZone, r.sessionZone)
	}
	return n, nil
}

func (r *TimestampReader) Skip(n int) error {
	nonNull, err := r.skipPresence(n)
	if err != nil {
		return err
	}
	if err := r.seconds.Skip(nonNull); err != nil {
		return err
	}
	return r.nanos.Skip(nonNull)
}
