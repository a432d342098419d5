package compress

import (
	"bytes"

	"github.com/nullable-io/orcreader/orc/datasource"
	"github.com/pkg/errors"
)

// BlockReader is the compressed-block stream: it wraps a
// byte range of a DataSource plus a compression Kind and yields the
// logical, decompressed byte stream that is the concatenation of chunks.
// When Kind is KindNone the ORC framing omits chunk headers entirely and
// the logical stream is the raw range, matching goorc's
// orc/stream/reader.go readAChunk special case.
type BlockReader struct {
	src       datasource.DataSource
	start     int64
	length    int64
	kind      Kind
	blockSize int

	// readOffset is how many on-disk bytes (headers included) of the
	// range have been consumed so far.
	readOffset int64

	buf *bytes.Buffer

	// chunkStart is the on-disk offset (relative to start) of the chunk
	// currently loaded in buf, used to report compressed_offset positions.
	chunkStart int64

	// lastChunkLen is the decompressed length of the chunk currently in
	// buf, so UncompressedOffsetInChunk can be derived without
	// re-decoding.
	lastChunkLen int
}

// NewBlockReader opens a compressed-block stream over [start, start+length)
// of src.
func NewBlockReader(src datasource.DataSource, start, length int64, kind Kind, blockSize int) *BlockReader {
	return &BlockReader{
		src:       src,
		start:     start,
		length:    length,
		kind:      kind,
		blockSize: blockSize,
		buf:       &bytes.Buffer{},
	}
}

// EndOfStream reports whether every on-disk byte has been consumed and the
// decode buffer is drained.
func (r *BlockReader) EndOfStream() bool {
	return r.readOffset >= r.length && r.buf.Len() == 0
}

// ReadByte reads a single logical byte, pulling and decompressing chunks
// as needed.
func (r *BlockReader) ReadByte() (byte, error) {
	for r.buf.Len() == 0 {
		if r.readOffset >= r.length {
			return 0, errors.WithStack(&MalformedError{Reason: "read past end of stream"})
		}
		if err := r.fillChunk(); err != nil {
			return 0, err
		}
	}
	b, _ := r.buf.ReadByte()
	return b, nil
}

// ReadBytes reads exactly n logical bytes.
func (r *BlockReader) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if r.buf.Len() == 0 {
			if r.readOffset >= r.length {
				return nil, errors.WithStack(&MalformedError{Reason: "read past end of stream"})
			}
			if err := r.fillChunk(); err != nil {
				return nil, err
			}
		}
		need := n - len(out)
		chunk := r.buf.Next(min(need, r.buf.Len()))
		out = append(out, chunk...)
	}
	return out, nil
}

// CompressedOffset returns the on-disk offset (relative to the stream's
// start) of the chunk currently being consumed, for position-vector
// bookkeeping.
func (r *BlockReader) CompressedOffset() int64 {
	return r.chunkStart
}

// UncompressedOffsetInChunk returns how many decompressed bytes of the
// current chunk have already been consumed.
func (r *BlockReader) UncompressedOffsetInChunk() int64 {
	// buf holds the unconsumed remainder of the current chunk, so the
	// difference is the consumed prefix.
	return int64(r.lastChunkLen) - int64(r.buf.Len())
}

func (r *BlockReader) fillChunk() error {
	if r.kind == KindNone {
		n := int64(r.blockSize)
		if n <= 0 || r.length-r.readOffset < n {
			n = r.length - r.readOffset
		}
		raw, err := r.src.ReadAt(r.start+r.readOffset, n)
		if err != nil {
			return errors.WithStack(err)
		}
		r.chunkStart = r.readOffset
		r.readOffset += n
		r.lastChunkLen = len(raw)
		r.buf.Reset()
		r.buf.Write(raw)
		return nil
	}

	if r.length-r.readOffset < 3 {
		return errors.WithStack(&MalformedError{Reason: "truncated chunk header"})
	}
	header, err := r.src.ReadAt(r.start+r.readOffset, 3)
	if err != nil {
		return errors.WithStack(err)
	}
	chunkLength, original := decodeChunkHeader(header)
	if r.blockSize > 0 && chunkLength > r.blockSize {
		return errors.WithStack(&MalformedError{Reason: "chunk length exceeds compression block size"})
	}
	if int64(chunkLength) > r.length-r.readOffset-3 {
		return errors.WithStack(&MalformedError{Reason: "chunk length exceeds remaining stream"})
	}

	r.chunkStart = r.readOffset
	payload, err := r.src.ReadAt(r.start+r.readOffset+3, int64(chunkLength))
	if err != nil {
		return errors.WithStack(err)
	}
	r.readOffset += 3 + int64(chunkLength)

	decoded, err := decompressChunk(r.kind, payload, original, r.blockSize)
	if err != nil {
		return err
	}
	r.lastChunkLen = len(decoded)
	r.buf.Reset()
	r.buf.Write(decoded)
	return nil
}

// SkipTo repositions the stream at a row-group boundary: seek to the chunk
// starting at compressedOffset (relative to the stream's start) and then
// discard uncompressedOffset decompressed bytes from its start - the
// pair a row index position vector encodes for this stream.
func (r *BlockReader) SkipTo(compressedOffset, uncompressedOffset int64) error {
	r.readOffset = compressedOffset
	r.buf.Reset()
	if r.readOffset >= r.length && uncompressedOffset == 0 {
		return nil
	}
	if err := r.fillChunk(); err != nil {
		return err
	}
	if uncompressedOffset > 0 {
		r.buf.Next(int(uncompressedOffset))
	}
	return nil
}

// Skip discards n logical bytes. Every chunk it passes over is read and
// decompressed and its bytes thrown away; whole chunks are not skipped
// undecoded.
func (r *BlockReader) Skip(n int64) error {
	for n > 0 {
		if r.buf.Len() == 0 {
			if r.readOffset >= r.length {
				return errors.WithStack(&MalformedError{Reason: "skip past end of stream"})
			}
			if err := r.fillChunk(); err != nil {
				return err
			}
		}
		take := n
		if int64(r.buf.Len()) < take {
			take = int64(r.buf.Len())
		}
		r.buf.Next(int(take))
		n -= take
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
