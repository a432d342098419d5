package meta

import (
	"github.com/nullable-io/orcreader/orc/api"
	"github.com/pkg/errors"
)

// Dialect distinguishes the ORC and DWRF wire-format variants behind one
// interface.
type Dialect int

const (
	DialectORC Dialect = iota
	DialectDWRF
)

func (d Dialect) String() string {
	if d == DialectDWRF {
		return "DWRF"
	}
	return "ORC"
}

// Reader abstracts the ORC and DWRF metadata dialects behind one
// interface.
type Reader interface {
	Dialect() Dialect
	ReadPostScript(b []byte) (*PostScript, error)
	ReadFooter(b []byte) (*Footer, error)
	ReadStripeFooter(columnKinds []api.Kind, b []byte) (*StripeFooter, error)
	ReadRowIndex(b []byte) (*RowIndex, error)
	ReadMetadata(b []byte) (*Metadata, error)

	// ResolveEncoding maps a wire-level encoding to the canonical
	// EncodingKind the column readers understand, applying the DWRF
	// DIRECT->DWRF_DIRECT reinterpretation for integer-width columns.
	ResolveEncoding(columnKind api.Kind, wire EncodingKind) EncodingKind

	// ResolveStreamKind maps a wire-level stream kind to the canonical
	// StreamKind, applying the DWRF NANO_DATA/STRIDE_DICTIONARY{_LENGTH}
	// remapping.
	ResolveStreamKind(wire StreamKind) StreamKind
}

// DetectDialect implements the version-detection rule: if the postscript
// parses without a version field (and thus without a metadataLength
// field set), treat the file as DWRF; otherwise ORC.
func DetectDialect(ps *PostScript) Dialect {
	if !ps.HasVersionField && !ps.HasMetadataLengthField {
		return DialectDWRF
	}
	return DialectORC
}

// NewReader builds the dialect-appropriate Reader for ps, the way a
// record reader picks its metadata_reader_hint at open time when the
// caller doesn't force one.
func NewReader(dialect Dialect) Reader {
	if dialect == DialectDWRF {
		return dwrfReader{}
	}
	return orcReader{}
}

// --- shared decode, identical across dialects ---

func readPostScript(b []byte) (*PostScript, error) {
	ps, err := unmarshalPostScript(b)
	if err != nil {
		return nil, errors.Wrap(err, "read postscript")
	}
	return ps, nil
}

func readFooter(b []byte) (*Footer, error) {
	f, err := unmarshalFooter(b)
	if err != nil {
		return nil, errors.Wrap(err, "read footer")
	}
	return f, nil
}

func readRowIndex(b []byte) (*RowIndex, error) {
	idx, err := unmarshalRowIndex(b)
	if err != nil {
		return nil, errors.Wrap(err, "read row index")
	}
	return idx, nil
}

func readMetadata(b []byte) (*Metadata, error) {
	m, err := unmarshalMetadata(b)
	if err != nil {
		return nil, errors.Wrap(err, "read metadata")
	}
	return m, nil
}

func readStripeFooter(b []byte) (*StripeFooter, error) {
	sf, err := unmarshalStripeFooter(b)
	if err != nil {
		return nil, errors.Wrap(err, "read stripe footer")
	}
	return sf, nil
}

// --- ORC dialect ---

type orcReader struct{}

func (orcReader) Dialect() Dialect { return DialectORC }

func (orcReader) ReadPostScript(b []byte) (*PostScript, error) { return readPostScript(b) }
func (orcReader) ReadFooter(b []byte) (*Footer, error)         { return readFooter(b) }
func (orcReader) ReadRowIndex(b []byte) (*RowIndex, error)     { return readRowIndex(b) }
func (orcReader) ReadMetadata(b []byte) (*Metadata, error)     { return readMetadata(b) }

func (orcReader) ReadStripeFooter(_ []api.Kind, b []byte) (*StripeFooter, error) {
	return readStripeFooter(b)
}

func (orcReader) ResolveEncoding(_ api.Kind, wire EncodingKind) EncodingKind {
	return wire
}

func (orcReader) ResolveStreamKind(wire StreamKind) StreamKind {
	return wire
}

// --- DWRF dialect ---

type dwrfReader struct{}

func (dwrfReader) Dialect() Dialect { return DialectDWRF }

func (dwrfReader) ReadPostScript(b []byte) (*PostScript, error) { return readPostScript(b) }

// ReadFooter: DWRF files never populate file-level statistics in the
// footer the way ORC does (stripe statistics live in a metadata section
// DWRF doesn't have); the decode is otherwise identical.
func (dwrfReader) ReadFooter(b []byte) (*Footer, error) { return readFooter(b) }

func (dwrfReader) ReadRowIndex(b []byte) (*RowIndex, error) { return readRowIndex(b) }

// ReadMetadata is never called for DWRF files: metadata_length is always
// 0, but implemented for completeness/symmetry.
func (dwrfReader) ReadMetadata(b []byte) (*Metadata, error) { return readMetadata(b) }

func (dwrfReader) ReadStripeFooter(_ []api.Kind, b []byte) (*StripeFooter, error) {
	return readStripeFooter(b)
}

// ResolveEncoding applies the DWRF rule: for
// SHORT/INT/LONG types, a wire-level DIRECT encoding means v1 RLE
// (DWRF_DIRECT), not the ORC v1 "literal bytes" DIRECT. DICTIONARY
// likewise only ever means the v1 dictionary shape in DWRF (there is no
// DICTIONARY_V2 wire value in this dialect).
func (dwrfReader) ResolveEncoding(columnKind api.Kind, wire EncodingKind) EncodingKind {
	if wire == EncodingDirect {
		switch columnKind {
		case api.KindShort, api.KindInt, api.KindLong:
			return EncodingDwrfDirect
		}
	}
	return wire
}

// ResolveStreamKind applies the DWRF stream-kind remapping:
// NANO_DATA -> SECONDARY, STRIDE_DICTIONARY{_LENGTH} ->
// ROW_GROUP_DICTIONARY{_LENGTH}. The DWRF wire enum numbers for these are
// not part of the retrieved pack (goorc never implemented DWRF);
// they follow the dwrf_proto field layout documented in
// original_source/presto-orc's DwrfMetadataReader.
func (dwrfReader) ResolveStreamKind(wire StreamKind) StreamKind {
	switch wire {
	case dwrfStreamNanoData:
		return StreamSecondary
	case dwrfStreamStrideDictionary:
		return StreamRowGroupDictionary
	case dwrfStreamStrideDictionaryLength:
		return StreamRowGroupDictionaryLength
	default:
		return wire
	}
}

// DWRF-dialect-only wire stream kind values, distinct from the canonical
// StreamKind constants in types.go (which are this module's post-mapping
// representation).
const (
	dwrfStreamNanoData               StreamKind = 100
	dwrfStreamInDictionary           StreamKind = 101
	dwrfStreamStrideDictionary       StreamKind = 102
	dwrfStreamStrideDictionaryLength StreamKind = 103
)
