// Package compress implements the ORC compression chunk framing and the
// compressed-block stream that turns a byte range of the file into a
// logical, decompressed byte stream.
package compress

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

// Kind is the per-stripe compression codec, from the postscript.
type Kind int

const (
	KindNone Kind = iota
	KindZlib
	KindSnappy
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NONE"
	case KindZlib:
		return "ZLIB"
	case KindSnappy:
		return "SNAPPY"
	default:
		return "UNKNOWN"
	}
}

// MalformedError flags bad chunk framing (oversized chunk, truncated
// header).
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string { return "malformed compressed stream: " + e.Reason }

// DecompressError wraps a failure inside the codec itself.
type DecompressError struct {
	Kind Kind
	Err  error
}

func (e *DecompressError) Error() string {
	return errors.Wrapf(e.Err, "decompress chunk (%s)", e.Kind).Error()
}
func (e *DecompressError) Unwrap() error { return e.Err }

// decodeChunkHeader reads the 3-byte little-endian chunk header: the low
// bit is the "original" flag, the remaining 23 bits are the on-disk chunk
// length.
func decodeChunkHeader(h []byte) (length int, original bool) {
	_ = h[2]
	length = int(h[2])<<15 | int(h[1])<<7 | int(h[0])>>1
	original = h[0]&0x01 == 1
	return
}

func encodeChunkHeader(length int, original bool) []byte {
	h := make([]byte, 3)
	l := length << 1
	if original {
		l |= 1
	}
	h[0] = byte(l)
	h[1] = byte(l >> 8)
	h[2] = byte(l >> 16)
	return h
}

// decompressChunk decompresses a single chunk's payload (already stripped
// of its header) and returns the bytes, bounded by blockSize for non-NONE kinds:
// a chunk never produces more than compression_block_size bytes.
func decompressChunk(kind Kind, payload []byte, original bool, blockSize int) ([]byte, error) {
	if original {
		return payload, nil
	}
	switch kind {
	case KindNone:
		return payload, nil
	case KindZlib:
		r := flate.NewReader(bytes.NewReader(payload))
		defer r.Close()
		out := make([]byte, 0, blockSize)
		buf := &bytes.Buffer{}
		buf.Grow(blockSize)
		if _, err := io.Copy(buf, r); err != nil {
			return nil, &DecompressError{Kind: kind, Err: err}
		}
		out = buf.Bytes()
		if blockSize > 0 && len(out) > blockSize {
			return nil, &MalformedError{Reason: "decompressed chunk exceeds compression block size"}
		}
		return out, nil
	case KindSnappy:
		out, err := snappy.Decode(nil, payload)
		if err != nil {
			return nil, &DecompressError{Kind: kind, Err: err}
		}
		if blockSize > 0 && len(out) > blockSize {
			return nil, &MalformedError{Reason: "decompressed chunk exceeds compression block size"}
		}
		return out, nil
	default:
		return nil, errors.Errorf("unsupported compression kind %v", kind)
	}
}

// compressChunk is the inverse of decompressChunk, kept so tests can build
// synthetic compressed fixtures without a separate writer module.
func compressChunk(kind Kind, payload []byte) (out []byte, original bool, err error) {
	switch kind {
	case KindNone:
		return payload, true, nil
	case KindZlib:
		buf := &bytes.Buffer{}
		w, err := flate.NewWriter(buf, flate.DefaultCompression)
		if err != nil {
			return nil, false, errors.WithStack(err)
		}
		if _, err := w.Write(payload); err != nil {
			return nil, false, errors.WithStack(err)
		}
		if err := w.Close(); err != nil {
			return nil, false, errors.WithStack(err)
		}
		if buf.Len() >= len(payload) {
			return payload, true, nil
		}
		return buf.Bytes(), false, nil
	case KindSnappy:
		out := snappy.Encode(nil, payload)
		if len(out) >= len(payload) {
			return payload, true, nil
		}
		return out, false, nil
	default:
		return nil, false, errors.Errorf("unsupported compression kind %v", kind)
	}
}

// EncodeChunks compresses payload into the full chunked-and-framed
// representation used on disk, splitting at blockSize boundaries. A
// KindNone stream carries no chunk headers, so it is returned as a plain
// copy of payload. Used only by tests to build fixtures.
func EncodeChunks(kind Kind, payload []byte, blockSize int) []byte {
	if kind == KindNone {
		return append([]byte(nil), payload...)
	}
	var out []byte
	for len(payload) > 0 {
		n := blockSize
		if n <= 0 || n > len(payload) {
			n = len(payload)
		}
		chunk := payload[:n]
		payload = payload[n:]
		c, original, err := compressChunk(kind, chunk)
		if err != nil {
			panic(err)
		}
		out = append(out, encodeChunkHeader(len(c), original)...)
		out = append(out, c...)
	}
	return out
}
