package stream

import (
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/pkg/errors"
)

// IntV1Reader decodes run-length integer encoding v1: runs of length
// 3..130 carry one base varint and a signed per-step delta byte; literal
// sequences of length 1..128 carry one varint per value. goorc targets
// ORC v2-only writers and never implemented v1, so this is built
// directly from the RLE v1 wire layout, in goorc's RLE-reader idiom
// (a pull-style buffered-group reader matching IntV2Reader in
// int_v2.go).
type IntV1Reader struct {
	src    *compress.BlockReader
	signed bool

	buf []int64
	pos int
}

func NewIntV1Reader(src *compress.BlockReader, signed bool) *IntV1Reader {
	return &IntV1Reader{src: src, signed: signed}
}

const (
	minV1RunLength = 3
	maxV1RunLength = 127 + minV1RunLength
	maxV1Literals  = 128
)

// Next decodes one value, filling a fresh run/literal group as needed.
func (r *IntV1Reader) Next() (int64, error) {
	if r.pos >= len(r.buf) {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// Skip discards n decoded values.
func (r *IntV1Reader) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.Next(); err != nil {
			return err
		}
	}
	return nil
}

func (r *IntV1Reader) fill() error {
	control, err := r.src.ReadByte()
	if err != nil {
		return errors.Wrap(err, "int v1: read control byte")
	}
	r.buf = r.buf[:0]
	r.pos = 0

	signedControl := int8(control)
	if signedControl >= 0 {
		return r.fillRun(int(signedControl))
	}
	return r.fillLiterals(int(-signedControl))
}

func (r *IntV1Reader) fillRun(controlValue int) error {
	length := controlValue + minV1RunLength

	deltaByte, err := r.src.ReadByte()
	if err != nil {
		return errors.Wrap(err, "int v1: read delta byte")
	}
	delta := int64(int8(deltaByte))

	baseRaw, err := readVarint(r.src)
	if err != nil {
		return errors.Wrap(err, "int v1: read base")
	}
	var base int64
	if r.signed {
		base = zigzagDecode(baseRaw)
	} else {
		base = int64(baseRaw)
	}

	for i := 0; i < length; i++ {
		r.buf = append(r.buf, base+int64(i)*delta)
	}
	return nil
}

func (r *IntV1Reader) fillLiterals(length int) error {
	for i := 0; i < length; i++ {
		raw, err := readVarint(r.src)
		if err != nil {
			return errors.Wrap(err, "int v1: read literal")
		}
		var v int64
		if r.signed {
			v = zigzagDecode(raw)
		} else {
			v = int64(raw)
		}
		r.buf = append(r.buf, v)
	}
	return nil
}
