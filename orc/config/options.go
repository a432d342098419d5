// Package config carries reader-wide tuning knobs, the way goorc's
// orc/config package separates options from the components that consume
// them.
package config

import "time"

const (
	// DefaultRowSize is the default RowSize: the batch size NextBatch uses
	// when the caller passes a non-positive maxRows.
	DefaultRowSize = 1024

	// MinRowSize is the implementation floor on caller-supplied batch sizes.
	MinRowSize = 1

	// MaxRowSize is the implementation ceiling on caller-supplied batch sizes.
	MaxRowSize = 1024 * 16
)

// ReaderOptions tunes how a file is opened and scanned.
type ReaderOptions struct {
	// RowSize is the default batch size used by NextBatch(0).
	RowSize int

	// StorageTimeZone is the time zone TIMESTAMP columns were written in.
	// Defaults to UTC when nil.
	StorageTimeZone *time.Location

	// SessionTimeZone is the time zone TIMESTAMP values are materialized
	// in. Defaults to UTC when nil.
	SessionTimeZone *time.Location

	// MaxMergeDistance and TinyStripeThreshold are I/O coalescing knobs
	// left to the data source collaborator; they are not used by the
	// core decode path and are kept only so callers can pass them
	// through to a custom DataSource.
	MaxMergeDistance    int64
	TinyStripeThreshold int64
}

// DefaultReaderOptions returns sane defaults, mirroring goorc's
// DefaultReaderOptions constructor.
func DefaultReaderOptions() *ReaderOptions {
	return &ReaderOptions{
		RowSize:         DefaultRowSize,
		StorageTimeZone: time.UTC,
		SessionTimeZone: time.UTC,
	}
}

// Option mutates a ReaderOptions in place; used for functional-option style
// overrides layered on top of DefaultReaderOptions.
type Option func(*ReaderOptions)

func WithRowSize(n int) Option {
	return func(o *ReaderOptions) {
		if n < MinRowSize {
			n = MinRowSize
		}
		if n > MaxRowSize {
			n = MaxRowSize
		}
		o.RowSize = n
	}
}

func WithStorageTimeZone(loc *time.Location) Option {
	return func(o *ReaderOptions) { o.StorageTimeZone = loc }
}

func WithSessionTimeZone(loc *time.Location) Option {
	return func(o *ReaderOptions) { o.SessionTimeZone = loc }
}

// Apply builds a ReaderOptions from DefaultReaderOptions plus overrides.
func Apply(opts ...Option) *ReaderOptions {
	o := DefaultReaderOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
