package stream

import (
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/pkg/errors"
)

// sub-encoding tags, the top 2 bits of an RLE v2 header byte.
const (
	subShortRepeat = byte(0)
	subDirect      = byte(1)
	subPatchedBase = byte(2)
	subDelta       = byte(3)
)

// IntV2Reader decodes run-length integer encoding v2: one
// of SHORT_REPEAT/DIRECT/PATCHED_BASE/DELTA per group, chosen by the
// group's own header. Ported from goorc's orc/encoding.IntRL2,
// generalized from its BufferedReader interface to this package's
// compress.BlockReader/bit-unpacking split.
type IntV2Reader struct {
	src    *compress.BlockReader
	signed bool

	lastByte byte
	bitsLeft int

	buf []int64
	pos int
}

func NewIntV2Reader(src *compress.BlockReader, signed bool) *IntV2Reader {
	return &IntV2Reader{src: src, signed: signed}
}

// Next decodes one value, filling a fresh group as needed.
func (r *IntV2Reader) Next() (int64, error) {
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
func (r *IntV2Reader) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.Next(); err != nil {
			return err
		}
	}
	return nil
}

func (r *IntV2Reader) signExtend(v uint64) int64 {
	if r.signed {
		return zigzagDecode(v)
	}
	return int64(v)
}

func (r *IntV2Reader) fill() error {
	firstByte, err := r.src.ReadByte()
	if err != nil {
		return errors.Wrap(err, "int v2: read header")
	}
	r.buf = r.buf[:0]
	r.pos = 0

	switch firstByte >> 6 {
	case subShortRepeat:
		return r.fillShortRepeat(firstByte)
	case subDirect:
		return r.fillDirect(firstByte)
	case subPatchedBase:
		return r.fillPatchedBase(firstByte)
	case subDelta:
		return r.fillDelta(firstByte)
	default:
		return errors.New("int v2: unreachable sub-encoding")
	}
}

func (r *IntV2Reader) fillShortRepeat(header byte) error {
	width := int(1 + (header>>3)&0x07)
	repeatCount := int(3 + header&0x07)

	var v uint64
	for i := width - 1; i >= 0; i-- {
		b, err := r.src.ReadByte()
		if err != nil {
			return errors.Wrap(err, "int v2: short repeat value byte")
		}
		v |= uint64(b) << uint(8*i)
	}
	value := r.signExtend(v)
	for i := 0; i < repeatCount; i++ {
		r.buf = append(r.buf, value)
	}
	return nil
}

func (r *IntV2Reader) fillDirect(firstByte byte) error {
	b1, err := r.src.ReadByte()
	if err != nil {
		return errors.Wrap(err, "int v2: direct header second byte")
	}
	header := uint16(firstByte)<<8 | uint16(b1)
	w := byte((header >> 9) & 0x1f)
	width, err := widthDecoding(w, false)
	if err != nil {
		return err
	}
	length := int(header&0x1ff) + 1

	r.forgetBits()
	for i := 0; i < length; i++ {
		v, err := r.readBits(int(width))
		if err != nil {
			return err
		}
		r.buf = append(r.buf, r.signExtend(v))
	}
	return nil
}

func (r *IntV2Reader) fillPatchedBase(firstByte byte) error {
	header := make([]byte, 4)
	header[0] = firstByte
	rest, err := r.src.ReadBytes(3)
	if err != nil {
		return errors.Wrap(err, "int v2: patched base header")
	}
	copy(header[1:], rest)

	w := (header[0] >> 1) & 0x1f
	width, err := widthDecoding(w, false)
	if err != nil {
		return err
	}
	length := int(uint16(header[0])&0x01<<8|uint16(header[1])) + 1
	bw := int(header[2]>>5&0x07) + 1
	pw, err := widthDecoding(header[2]&0x1f, false)
	if err != nil {
		return err
	}
	pgw := int(header[3]>>5&0x07) + 1
	if pw+pgw >= 64 {
		return errors.New("int v2: patch width + gap width must be < 64")
	}
	pll := int(header[3] & 0x1f)

	baseBytes, err := r.src.ReadBytes(bw)
	if err != nil {
		return errors.Wrap(err, "int v2: patched base value")
	}
	neg := baseBytes[0]>>7 == 1
	baseBytes[0] &= 0x7f
	var ubase uint64
	for i := 0; i < bw; i++ {
		ubase |= uint64(baseBytes[i]) << uint(8*(bw-i-1))
	}
	base := int64(ubase)
	if neg {
		base = -base
	}

	values := make([]int64, length)
	r.forgetBits()
	for i := 0; i < length; i++ {
		delta, err := r.readBits(int(width))
		if err != nil {
			return err
		}
		values[i] = base + int64(delta)
	}

	r.forgetBits()
	mark := 0
	for i := 0; i < pll; i++ {
		pp, err := r.readBits(pgw + pw)
		if err != nil {
			return err
		}
		gap := int(pp >> uint(pw))
		mark += gap
		patch := pp & ((1 << uint(pw)) - 1)
		if mark >= len(values) {
			return errors.New("int v2: patch position out of range")
		}
		v := values[mark] - base
		v |= int64(patch) << uint(width)
		values[mark] = v + base
	}

	for _, v := range values {
		r.buf = append(r.buf, v)
	}
	return nil
}

func (r *IntV2Reader) fillDelta(header0 byte) error {
	header1, err := r.src.ReadByte()
	if err != nil {
		return errors.Wrap(err, "int v2: delta header second byte")
	}
	width, err := widthDecoding((header0>>1)&0x1f, true)
	if err != nil {
		return err
	}
	length := int(uint16(header0)&0x01<<8|uint16(header1)) + 1

	baseRaw, err := readVarint(r.src)
	if err != nil {
		return errors.Wrap(err, "int v2: delta base")
	}
	base := r.signExtend(baseRaw)
	r.buf = append(r.buf, base)

	deltaRaw, err := readVarint(r.src)
	if err != nil {
		return errors.Wrap(err, "int v2: delta step")
	}
	deltaBase := zigzagDecode(deltaRaw)
	r.buf = append(r.buf, base+deltaBase)

	r.forgetBits()
	for i := 2; i < length; i++ {
		if width == 0 {
			r.buf = append(r.buf, r.buf[len(r.buf)-1]+deltaBase)
			continue
		}
		d, err := r.readBits(int(width))
		if err != nil {
			return err
		}
		prev := r.buf[len(r.buf)-1]
		if deltaBase >= 0 {
			r.buf = append(r.buf, prev+int64(d))
		} else {
			r.buf = append(r.buf, prev-int64(d))
		}
	}
	return nil
}

func (r *IntV2Reader) readBits(bits int) (uint64, error) {
	hasBits := r.bitsLeft
	data := uint64(r.lastByte)
	for ; hasBits < bits; hasBits += 8 {
		b, err := r.src.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "int v2: read bits")
		}
		data = data<<8 | uint64(b)
	}
	r.bitsLeft = hasBits - bits
	value := data >> uint(r.bitsLeft)
	mask := (uint64(1) << uint(r.bitsLeft)) - 1
	r.lastByte = byte(data & mask)
	return value, nil
}

func (r *IntV2Reader) forgetBits() {
	r.bitsLeft = 0
	r.lastByte = 0
}

// widthDecoding maps the 5-bit width-table code to an actual bit width,
// per the RLEv2 fixed width table. delta=true allows width 0
// ("fixed delta", no per-value bits).
func widthDecoding(w byte, delta bool) (int, error) {
	if w >= 2 && w <= 23 {
		return int(w) + 1, nil
	}
	switch w {
	case 0:
		if delta {
			return 0, nil
		}
		return 1, nil
	case 1:
		return 2, nil
	case 24:
		return 26, nil
	case 25:
		return 28, nil
	case 26:
		return 30, nil
	case 27:
		return 32, nil
	case 28:
		return 40, nil
	case 29:
		return 48, nil
	case 30:
		return 56, nil
	case 31:
		return 64, nil
	default:
		return 0, errors.Errorf("int v2: width code %d out of range", w)
	}
}
