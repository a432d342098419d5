package meta

import "google.golang.org/protobuf/encoding/protowire"

// The Marshal* functions below are the encode-side counterpart to
// wire_decode.go, used only to build synthetic ORC/DWRF fixtures in
// tests; this module reads files, it doesn't write them.

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendFixed64Field(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, v)
}

func MarshalPostScript(ps *PostScript) []byte {
	var b []byte
	b = appendVarintField(b, 1, ps.FooterLength)
	b = appendVarintField(b, 2, uint64(ps.Compression))
	b = appendVarintField(b, 3, ps.CompressionBlockSize)
	for _, v := range ps.Version {
		b = appendVarintField(b, 4, uint64(v))
	}
	if ps.HasMetadataLengthField {
		b = appendVarintField(b, 5, ps.MetadataLength)
	}
	b = appendVarintField(b, 6, uint64(ps.WriterVersion))
	return b
}

func MarshalType(t *Type) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(t.Kind))
	for _, v := range t.Subtypes {
		b = appendVarintField(b, 2, uint64(v))
	}
	for _, name := range t.FieldNames {
		b = appendBytesField(b, 3, []byte(name))
	}
	if t.MaximumLength != 0 {
		b = appendVarintField(b, 4, uint64(t.MaximumLength))
	}
	if t.Precision != 0 {
		b = appendVarintField(b, 5, uint64(t.Precision))
	}
	if t.Scale != 0 {
		b = appendVarintField(b, 6, uint64(t.Scale))
	}
	return b
}

func MarshalStripeInformation(si *StripeInformation) []byte {
	var b []byte
	b = appendVarintField(b, 1, si.Offset)
	b = appendVarintField(b, 2, si.IndexLength)
	b = appendVarintField(b, 3, si.DataLength)
	b = appendVarintField(b, 4, si.FooterLength)
	b = appendVarintField(b, 5, si.NumberOfRows)
	return b
}

func MarshalFooter(f *Footer) []byte {
	var b []byte
	b = appendVarintField(b, 1, f.HeaderLength)
	b = appendVarintField(b, 2, f.ContentLength)
	for _, si := range f.Stripes {
		b = appendBytesField(b, 3, MarshalStripeInformation(si))
	}
	for _, t := range f.Types {
		b = appendBytesField(b, 4, MarshalType(t))
	}
	b = appendVarintField(b, 6, f.NumberOfRows)
	for _, cs := range f.Statistics {
		b = appendBytesField(b, 7, MarshalColumnStatistics(cs))
	}
	b = appendVarintField(b, 8, uint64(f.RowIndexStride))
	return b
}

func MarshalStream(s *Stream) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(s.Kind))
	b = appendVarintField(b, 2, uint64(s.Column))
	b = appendVarintField(b, 3, s.Length)
	if s.UseVInts {
		b = appendVarintField(b, 4, 1)
	}
	return b
}

func MarshalColumnEncoding(ce *ColumnEncoding) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(ce.Kind))
	if ce.DictionarySize != 0 {
		b = appendVarintField(b, 2, uint64(ce.DictionarySize))
	}
	return b
}

func MarshalStripeFooter(sf *StripeFooter) []byte {
	var b []byte
	for _, s := range sf.Streams {
		b = appendBytesField(b, 1, MarshalStream(s))
	}
	for _, ce := range sf.Columns {
		b = appendBytesField(b, 2, MarshalColumnEncoding(ce))
	}
	if sf.WriterTimezone != "" {
		b = appendBytesField(b, 3, []byte(sf.WriterTimezone))
	}
	return b
}

func MarshalColumnStatistics(cs *ColumnStatistics) []byte {
	var b []byte
	b = appendVarintField(b, 1, cs.NumberOfValues)
	if cs.Integer != nil {
		var ib []byte
		if cs.Integer.HasMinimum {
			ib = appendVarintField(ib, 1, zigzagEncode64(cs.Integer.Minimum))
		}
		if cs.Integer.HasMaximum {
			ib = appendVarintField(ib, 2, zigzagEncode64(cs.Integer.Maximum))
		}
		if cs.Integer.HasSum {
			ib = appendVarintField(ib, 3, zigzagEncode64(cs.Integer.Sum))
		}
		b = appendBytesField(b, 2, ib)
	}
	if cs.Double != nil {
		var db []byte
		if cs.Double.HasMinimum {
			db = appendFixed64Field(db, 1, float64Bits(cs.Double.Minimum))
		}
		if cs.Double.HasMaximum {
			db = appendFixed64Field(db, 2, float64Bits(cs.Double.Maximum))
		}
		b = appendBytesField(b, 3, db)
	}
	if cs.String != nil {
		var sb []byte
		if cs.String.HasMinimum {
			sb = appendBytesField(sb, 1, []byte(cs.String.Minimum))
		}
		if cs.String.HasMaximum {
			sb = appendBytesField(sb, 2, []byte(cs.String.Maximum))
		}
		b = appendBytesField(b, 4, sb)
	}
	if cs.Bucket != nil {
		var bb []byte
		for _, c := range cs.Bucket.Count {
			bb = appendVarintField(bb, 1, c)
		}
		b = appendBytesField(b, 5, bb)
	}
	if cs.Date != nil {
		var db []byte
		if cs.Date.HasMinimum {
			db = appendVarintField(db, 1, zigzagEncode64(int64(cs.Date.Minimum)))
		}
		if cs.Date.HasMaximum {
			db = appendVarintField(db, 2, zigzagEncode64(int64(cs.Date.Maximum)))
		}
		b = appendBytesField(b, 7, db)
	}
	if cs.Binary != nil {
		var bb []byte
		if cs.Binary.HasSum {
			bb = appendVarintField(bb, 1, zigzagEncode64(cs.Binary.Sum))
		}
		b = appendBytesField(b, 8, bb)
	}
	if cs.Timestamp != nil {
		var tb []byte
		if cs.Timestamp.HasMinimum {
			tb = appendVarintField(tb, 1, zigzagEncode64(cs.Timestamp.Minimum))
		}
		if cs.Timestamp.HasMaximum {
			tb = appendVarintField(tb, 2, zigzagEncode64(cs.Timestamp.Maximum))
		}
		b = appendBytesField(b, 9, tb)
	}
	if cs.HasNull {
		b = appendVarintField(b, 10, 1)
	}
	return b
}

func MarshalRowIndexEntry(e *RowIndexEntry) []byte {
	var b []byte
	for _, p := range e.Positions {
		b = appendVarintField(b, 1, p)
	}
	if e.Statistics != nil {
		b = appendBytesField(b, 2, MarshalColumnStatistics(e.Statistics))
	}
	return b
}

func MarshalRowIndex(idx *RowIndex) []byte {
	var b []byte
	for _, e := range idx.Entries {
		b = appendBytesField(b, 1, MarshalRowIndexEntry(e))
	}
	return b
}

func MarshalStripeStatistics(ss *StripeStatistics) []byte {
	var b []byte
	for _, cs := range ss.ColumnStatistics {
		b = appendBytesField(b, 1, MarshalColumnStatistics(cs))
	}
	return b
}

func MarshalMetadata(m *Metadata) []byte {
	var b []byte
	for _, ss := range m.StripeStats {
		b = appendBytesField(b, 1, MarshalStripeStatistics(ss))
	}
	return b
}

func float64Bits(f float64) uint64 {
	return float64ToBits(f)
}
