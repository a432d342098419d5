// Package datasource implements random-access reads over a file of known
// length, answering range reads independently of each other so
// concurrent readers over disjoint ranges never contend.
package datasource

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// DataSource is the random-access read capability the record reader is
// built over. Implementations may be memory-mapped (zero-copy slices) or
// pread-based; both must tolerate concurrent, independent range reads
// without mutating shared state.
type DataSource interface {
	// ReadAt returns exactly length bytes starting at offset, or an error.
	ReadAt(offset int64, length int64) ([]byte, error)
	// Size returns the total byte length of the underlying file.
	Size() int64
	// Close releases any resources (file handle, mapping) held open.
	Close() error
}

// ShortReadError is returned when fewer bytes were available than
// requested.
type ShortReadError struct {
	Offset, Requested, Got int64
}

func (e *ShortReadError) Error() string {
	return errors.Errorf("short read at offset %d: requested %d got %d", e.Offset, e.Requested, e.Got).Error()
}

// fileSource is a pread-based DataSource backed by an *os.File, grounded
// on goorc's orc/io/file.go and the Seek+ReadFull pattern used
// throughout reader.go.
type fileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path and wraps it as a DataSource.
func OpenFile(path string) (DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	return &fileSource{f: f, size: fi.Size()}, nil
}

func (s *fileSource) ReadAt(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > s.size {
		return nil, errors.Errorf("range [%d,%d) out of bounds for file of size %d", offset, offset+length, s.size)
	}
	buf := make([]byte, length)
	n, err := s.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, errors.WithStack(err)
	}
	if int64(n) != length {
		return nil, &ShortReadError{Offset: offset, Requested: length, Got: int64(n)}
	}
	return buf, nil
}

func (s *fileSource) Size() int64 { return s.size }

func (s *fileSource) Close() error {
	return errors.WithStack(s.f.Close())
}

// memorySource is a DataSource over an in-memory byte slice, used by
// memory-mapped implementations and by tests building synthetic fixtures.
// Zero-copy: ReadAt returns a sub-slice of the backing array.
type memorySource struct {
	data []byte
}

// NewMemorySource wraps data (e.g. an mmap'd region) as a zero-copy
// DataSource.
func NewMemorySource(data []byte) DataSource {
	return &memorySource{data: data}
}

func (s *memorySource) ReadAt(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > int64(len(s.data)) {
		return nil, errors.Errorf("range [%d,%d) out of bounds for source of size %d", offset, offset+length, len(s.data))
	}
	return s.data[offset : offset+length], nil
}

func (s *memorySource) Size() int64 { return int64(len(s.data)) }

func (s *memorySource) Close() error { return nil }
