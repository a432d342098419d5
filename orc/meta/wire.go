package meta

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// MalformedError flags a protobuf descriptor that doesn't parse as valid
// wire format.
type MalformedError struct {
	Message string
}

func (e *MalformedError) Error() string { return "malformed metadata: " + e.Message }

// UnsupportedMetadataError flags an enum value outside the range the
// active dialect declares.
type UnsupportedMetadataError struct {
	Field string
	Value int64
}

func (e *UnsupportedMetadataError) Error() string {
	return errors.Errorf("unsupported %s enum value %d", e.Field, e.Value).Error()
}

func wireErr(n int) error {
	return errors.WithStack(&MalformedError{Message: "truncated or invalid protobuf field"})
}

// fieldVisitor is called once per top-level field of a message buffer.
// It must consume exactly the value bytes for that field (not the tag)
// and return how many bytes it consumed.
type fieldVisitor func(num protowire.Number, typ protowire.Type, b []byte) (consumed int, err error)

// walkFields iterates the tag-value pairs of a protobuf message buffer,
// dispatching each to visit. Unknown fields are skipped generically via
// protowire.ConsumeFieldValue, the way a generated parser ignores fields
// it doesn't recognize.
func walkFields(b []byte, visit fieldVisitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireErr(n)
		}
		b = b[n:]
		consumed, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if consumed < 0 || consumed > len(b) {
			return wireErr(-1)
		}
		b = b[consumed:]
	}
	return nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, wireErr(n)
	}
	return v, n, nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, wireErr(n)
	}
	return v, n, nil
}

func consumeFixed64(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, wireErr(n)
	}
	return v, n, nil
}

func consumeFixed32(b []byte) (uint32, int, error) {
	v, n := protowire.ConsumeFixed32(b)
	if n < 0 {
		return 0, 0, wireErr(n)
	}
	return v, n, nil
}

// skipUnknown consumes a field's value generically when the field number
// isn't one a decoder recognizes.
func skipUnknown(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, wireErr(n)
	}
	return n, nil
}

func zigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func zigzagEncode64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func float64FromBits(v uint64) float64 { return math.Float64frombits(v) }
func float32FromBits(v uint32) float32 { return math.Float32frombits(v) }
func float64ToBits(v float64) uint64   { return math.Float64bits(v) }

// packedVarints decodes a packed-repeated varint field's value bytes into
// a slice, used for PostScript.version.
func packedVarints(b []byte) ([]uint64, error) {
	var out []uint64
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, wireErr(n)
		}
		out = append(out, v)
		b = b[n:]
	}
	return out, nil
}
