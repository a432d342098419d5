package stream

import (
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/pkg/errors"
)

// Positions is a cursor over one stream's flat position-vector tuple:
// compressed_offset, uncompressed_offset_in_chunk, then decoder-specific
// values (bytes consumed in an RLE group, bits consumed of a boolean
// byte). Each
// substream a column reader owns consumes its own fixed-arity slice from
// the shared RowIndexEntry.Positions list, in the order the streams were
// declared for that column.
type Positions struct {
	values []uint64
	idx    int
}

func NewPositions(values []uint64) *Positions {
	return &Positions{values: values}
}

func (p *Positions) next() (uint64, error) {
	if p.idx >= len(p.values) {
		return 0, errors.New("position vector: exhausted")
	}
	v := p.values[p.idx]
	p.idx++
	return v, nil
}

// SeekBlockReader consumes the (compressed_offset, uncompressed_offset)
// pair every compressed stream's position starts with and repositions
// src there.
func (p *Positions) SeekBlockReader(src *compress.BlockReader) error {
	compressedOffset, err := p.next()
	if err != nil {
		return err
	}
	uncompressedOffset, err := p.next()
	if err != nil {
		return err
	}
	return src.SkipTo(int64(compressedOffset), int64(uncompressedOffset))
}

// ConsumeGroupOffset reads the decoder-internal "values already consumed
// from the current run/literal group" position value, used by byte-run
// and RLE streams to resynchronize after a SeekBlockReader lands mid-group.
func (p *Positions) ConsumeGroupOffset() (int, error) {
	v, err := p.next()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// ConsumeBitOffset reads the "bits already consumed of the current byte"
// position value a boolean stream's tuple carries.
func (p *Positions) ConsumeBitOffset() (int, error) {
	v, err := p.next()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// SeekByteReader repositions a ByteReader at a row-group boundary: seek
// the underlying BlockReader, then discard any values already produced
// by the group straddling the boundary.
func SeekByteReader(r *ByteReader, pos *Positions) error {
	if err := pos.SeekBlockReader(r.src); err != nil {
		return err
	}
	r.buf = r.buf[:0]
	r.pos = 0
	groupOffset, err := pos.ConsumeGroupOffset()
	if err != nil {
		return err
	}
	if groupOffset == 0 {
		return nil
	}
	if err := r.fill(); err != nil {
		return err
	}
	if groupOffset > len(r.buf) {
		return errors.New("byte stream: group offset beyond current group")
	}
	r.pos = groupOffset
	return nil
}

// SeekBoolReader repositions a BoolReader, additionally resynchronizing
// the partially-consumed current byte's bit offset.
func SeekBoolReader(r *BoolReader, pos *Positions) error {
	if err := SeekByteReader(r.bytes, pos); err != nil {
		return err
	}
	bitOffset, err := pos.ConsumeBitOffset()
	if err != nil {
		return err
	}
	r.bitsLeft = 0
	r.cur = 0
	if bitOffset == 0 {
		return nil
	}
	b, err := r.bytes.ReadByte()
	if err != nil {
		return err
	}
	r.cur = b
	r.bitsLeft = 8 - bitOffset
	return nil
}

// SeekFloatReader/SeekDoubleReader reposition a raw fixed-width stream:
// these carry no decoder-internal state, so the tuple is just the
// BlockReader's own (compressed_offset, uncompressed_offset).
func SeekFloatReader(r *FloatReader, pos *Positions) error {
	return pos.SeekBlockReader(r.src)
}

func SeekDoubleReader(r *DoubleReader, pos *Positions) error {
	return pos.SeekBlockReader(r.src)
}

// SeekIntV1Reader/SeekIntV2Reader reposition an RLE stream at a row-group
// boundary, resynchronizing past any values already produced by the
// group straddling the boundary.
func SeekIntV1Reader(r *IntV1Reader, pos *Positions) error {
	if err := pos.SeekBlockReader(r.src); err != nil {
		return err
	}
	groupOffset, err := pos.ConsumeGroupOffset()
	if err != nil {
		return err
	}
	r.buf = r.buf[:0]
	r.pos = 0
	if groupOffset == 0 {
		return nil
	}
	if err := r.fill(); err != nil {
		return err
	}
	if groupOffset > len(r.buf) {
		return errors.New("int v1: group offset beyond current group")
	}
	r.pos = groupOffset
	return nil
}

func SeekIntV2Reader(r *IntV2Reader, pos *Positions) error {
	if err := pos.SeekBlockReader(r.src); err != nil {
		return err
	}
	groupOffset, err := pos.ConsumeGroupOffset()
	if err != nil {
		return err
	}
	r.forgetBits()
	r.buf = r.buf[:0]
	r.pos = 0
	if groupOffset == 0 {
		return nil
	}
	if err := r.fill(); err != nil {
		return err
	}
	if groupOffset > len(r.buf) {
		return errors.New("int v2: group offset beyond current group")
	}
	r.pos = groupOffset
	return nil
}

// SeekVarintReader repositions a bare varint stream: it carries no
// decoder-internal buffering, so only the BlockReader offset matters.
func SeekVarintReader(r *VarintReader, pos *Positions) error {
	return pos.SeekBlockReader(r.src)
}

// seekLengthReader reseeks whichever concrete RLE type backs a
// LengthReader.
func seekLengthReader(l LengthReader, pos *Positions) error {
	switch r := l.(type) {
	case *IntV1Reader:
		return SeekIntV1Reader(r, pos)
	case *IntV2Reader:
		return SeekIntV2Reader(r, pos)
	default:
		return errors.New("length stream: unknown reader type")
	}
}

// SeekStringReader repositions a DIRECT(_V2) string column's LENGTH and
// DATA streams at a row-group boundary.
func SeekStringReader(r *StringReader, lengthPos, dataPos *Positions) error {
	if err := seekLengthReader(r.lengths, lengthPos); err != nil {
		return err
	}
	return dataPos.SeekBlockReader(r.data)
}
