package orc

import "github.com/pkg/errors"

// Error taxonomy for the reader's public surface: every failure the
// record reader can raise is one of these families, each carrying
// enough file/stripe/column context to diagnose without a debugger. A
// reader that returns any of these transitions to Closed - it must not
// be used again.

// IoError wraps a failure from the underlying DataSource (short read,
// closed file, OS-level error).
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return errors.Wrapf(e.Err, "orc: io error reading %s", e.Path).Error()
}
func (e *IoError) Unwrap() error { return e.Err }

// MalformedError flags a structurally invalid file: bad magic, truncated
// postscript, a protobuf message that doesn't parse.
type MalformedError struct {
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	return errors.Errorf("orc: malformed file %s: %s", e.Path, e.Reason).Error()
}

// UnsupportedMetadataError flags a structurally valid file that declares
// a feature this reader doesn't implement (an encoding/compression/type
// enum value outside what the active dialect defines).
type UnsupportedMetadataError struct {
	Path   string
	Reason string
}

func (e *UnsupportedMetadataError) Error() string {
	return errors.Errorf("orc: unsupported metadata in %s: %s", e.Path, e.Reason).Error()
}

// OrcCorruptionError flags a file that parses structurally but violates
// a content invariant this reader relies on (row counts that don't add
// up, a stream position vector that runs off the end, a dictionary
// index out of range).
type OrcCorruptionError struct {
	Path   string
	Stripe int
	Column int
	Reason string
}

func (e *OrcCorruptionError) Error() string {
	return errors.Errorf("orc: corrupt data in %s (stripe %d, column %d): %s",
		e.Path, e.Stripe, e.Column, e.Reason).Error()
}

// DecompressError wraps a codec-level failure (bad ZLIB/SNAPPY stream).
type DecompressError struct {
	Path   string
	Stripe int
	Err    error
}

func (e *DecompressError) Error() string {
	return errors.Wrapf(e.Err, "orc: decompress error in %s (stripe %d)", e.Path, e.Stripe).Error()
}
func (e *DecompressError) Unwrap() error { return e.Err }

// ClosedError is returned by any operation attempted after the reader
// transitioned to Closed, whether via Close() or a prior fatal error.
type ClosedError struct {
	Path string
}

func (e *ClosedError) Error() string {
	return errors.Errorf("orc: reader for %s is closed", e.Path).Error()
}
