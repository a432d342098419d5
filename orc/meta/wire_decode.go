package meta

import (
	"github.com/nullable-io/orcreader/orc/compress"
	"google.golang.org/protobuf/encoding/protowire"
)

// unmarshalPostScript decodes the PostScript message. Field numbers follow
// the Apache ORC orc_proto.proto PostScript message.
func unmarshalPostScript(b []byte) (*PostScript, error) {
	ps := &PostScript{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // footerLength
			v, n, err := consumeVarint(b)
			ps.FooterLength = v
			return n, err
		case 2: // compression
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			if v > uint64(compress.KindSnappy) {
				return 0, &UnsupportedMetadataError{Field: "PostScript.compression", Value: int64(v)}
			}
			ps.Compression = compress.Kind(v)
			return n, nil
		case 3: // compressionBlockSize
			v, n, err := consumeVarint(b)
			ps.CompressionBlockSize = v
			return n, err
		case 4: // version, repeated uint32, may be packed or not
			if typ == protowire.BytesType {
				data, n, err := consumeBytes(b)
				if err != nil {
					return 0, err
				}
				vs, err := packedVarints(data)
				if err != nil {
					return 0, err
				}
				for _, v := range vs {
					ps.Version = append(ps.Version, uint32(v))
				}
				ps.HasVersionField = true
				return n, nil
			}
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			ps.Version = append(ps.Version, uint32(v))
			ps.HasVersionField = true
			return n, nil
		case 5: // metadataLength
			v, n, err := consumeVarint(b)
			ps.MetadataLength = v
			ps.HasMetadataLengthField = true
			return n, err
		case 6: // writerVersion
			v, n, err := consumeVarint(b)
			ps.WriterVersion = uint32(v)
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func unmarshalType(b []byte) (*Type, error) {
	t := &Type{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // kind
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			if v > uint64(TypeChar) {
				return 0, &UnsupportedMetadataError{Field: "Type.kind", Value: int64(v)}
			}
			t.Kind = TypeKind(v)
			return n, nil
		case 2: // subtypes, repeated uint32
			if typ == protowire.BytesType {
				data, n, err := consumeBytes(b)
				if err != nil {
					return 0, err
				}
				vs, err := packedVarints(data)
				if err != nil {
					return 0, err
				}
				for _, v := range vs {
					t.Subtypes = append(t.Subtypes, uint32(v))
				}
				return n, nil
			}
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			t.Subtypes = append(t.Subtypes, uint32(v))
			return n, nil
		case 3: // fieldNames
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			t.FieldNames = append(t.FieldNames, string(v))
			return n, nil
		case 4:
			v, n, err := consumeVarint(b)
			t.MaximumLength = uint32(v)
			return n, err
		case 5:
			v, n, err := consumeVarint(b)
			t.Precision = uint32(v)
			return n, err
		case 6:
			v, n, err := consumeVarint(b)
			t.Scale = uint32(v)
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func unmarshalStripeInformation(b []byte) (*StripeInformation, error) {
	si := &StripeInformation{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			si.Offset = v
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			si.IndexLength = v
			return n, err
		case 3:
			v, n, err := consumeVarint(b)
			si.DataLength = v
			return n, err
		case 4:
			v, n, err := consumeVarint(b)
			si.FooterLength = v
			return n, err
		case 5:
			v, n, err := consumeVarint(b)
			si.NumberOfRows = v
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return si, nil
}

func unmarshalFooter(b []byte) (*Footer, error) {
	f := &Footer{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			f.HeaderLength = v
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			f.ContentLength = v
			return n, err
		case 3:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			si, err := unmarshalStripeInformation(data)
			if err != nil {
				return 0, err
			}
			f.Stripes = append(f.Stripes, si)
			return n, nil
		case 4:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			t, err := unmarshalType(data)
			if err != nil {
				return 0, err
			}
			f.Types = append(f.Types, t)
			return n, nil
		case 6:
			v, n, err := consumeVarint(b)
			f.NumberOfRows = v
			return n, err
		case 7:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			cs, err := unmarshalColumnStatistics(data)
			if err != nil {
				return 0, err
			}
			f.Statistics = append(f.Statistics, cs)
			return n, nil
		case 8:
			v, n, err := consumeVarint(b)
			f.RowIndexStride = uint32(v)
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func unmarshalStream(b []byte) (*Stream, error) {
	s := &Stream{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			s.Kind = StreamKind(v)
			return n, nil
		case 2:
			v, n, err := consumeVarint(b)
			s.Column = uint32(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(b)
			s.Length = v
			return n, err
		case 4:
			v, n, err := consumeVarint(b)
			s.UseVInts = v != 0
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func unmarshalColumnEncoding(b []byte) (*ColumnEncoding, error) {
	ce := &ColumnEncoding{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			if v > uint64(EncodingDictionaryV2) {
				return 0, &UnsupportedMetadataError{Field: "ColumnEncoding.kind", Value: int64(v)}
			}
			ce.Kind = EncodingKind(v)
			return n, nil
		case 2:
			v, n, err := consumeVarint(b)
			ce.DictionarySize = uint32(v)
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return ce, nil
}

func unmarshalStripeFooter(b []byte) (*StripeFooter, error) {
	sf := &StripeFooter{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			s, err := unmarshalStream(data)
			if err != nil {
				return 0, err
			}
			sf.Streams = append(sf.Streams, s)
			return n, nil
		case 2:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			ce, err := unmarshalColumnEncoding(data)
			if err != nil {
				return 0, err
			}
			sf.Columns = append(sf.Columns, ce)
			return n, nil
		case 3:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			sf.WriterTimezone = string(data)
			return n, nil
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return sf, nil
}

func unmarshalColumnStatistics(b []byte) (*ColumnStatistics, error) {
	cs := &ColumnStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			cs.NumberOfValues = v
			return n, err
		case 2:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			s, err := unmarshalIntegerStatistics(data)
			if err != nil {
				return 0, err
			}
			cs.Integer = s
			return n, nil
		case 3:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			s, err := unmarshalDoubleStatistics(data)
			if err != nil {
				return 0, err
			}
			cs.Double = s
			return n, nil
		case 4:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			s, err := unmarshalStringStatistics(data)
			if err != nil {
				return 0, err
			}
			cs.String = s
			return n, nil
		case 5:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			s, err := unmarshalBucketStatistics(data)
			if err != nil {
				return 0, err
			}
			cs.Bucket = s
			return n, nil
		case 7:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			s, err := unmarshalDateStatistics(data)
			if err != nil {
				return 0, err
			}
			cs.Date = s
			return n, nil
		case 8:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			s, err := unmarshalBinaryStatistics(data)
			if err != nil {
				return 0, err
			}
			cs.Binary = s
			return n, nil
		case 9:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			s, err := unmarshalTimestampStatistics(data)
			if err != nil {
				return 0, err
			}
			cs.Timestamp = s
			return n, nil
		case 10:
			v, n, err := consumeVarint(b)
			cs.HasNull = v != 0
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func unmarshalIntegerStatistics(b []byte) (*IntegerStatistics, error) {
	s := &IntegerStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			s.Minimum, s.HasMinimum = zigzag64(v), true
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			s.Maximum, s.HasMaximum = zigzag64(v), true
			return n, err
		case 3:
			v, n, err := consumeVarint(b)
			s.Sum, s.HasSum = zigzag64(v), true
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	return s, err
}

func unmarshalDoubleStatistics(b []byte) (*DoubleStatistics, error) {
	s := &DoubleStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeFixed64(b)
			s.Minimum, s.HasMinimum = float64FromBits(v), true
			return n, err
		case 2:
			v, n, err := consumeFixed64(b)
			s.Maximum, s.HasMaximum = float64FromBits(v), true
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	return s, err
}

func unmarshalStringStatistics(b []byte) (*StringStatistics, error) {
	s := &StringStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			s.Minimum, s.HasMinimum = string(v), true
			return n, err
		case 2:
			v, n, err := consumeBytes(b)
			s.Maximum, s.HasMaximum = string(v), true
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	return s, err
}

func unmarshalBucketStatistics(b []byte) (*BucketStatistics, error) {
	s := &BucketStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			if typ == protowire.BytesType {
				data, n, err := consumeBytes(b)
				if err != nil {
					return 0, err
				}
				vs, err := packedVarints(data)
				if err != nil {
					return 0, err
				}
				s.Count = append(s.Count, vs...)
				return n, nil
			}
			v, n, err := consumeVarint(b)
			s.Count = append(s.Count, v)
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	return s, err
}

func unmarshalDateStatistics(b []byte) (*DateStatistics, error) {
	s := &DateStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			s.Minimum, s.HasMinimum = int32(zigzag64(v)), true
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			s.Maximum, s.HasMaximum = int32(zigzag64(v)), true
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	return s, err
}

func unmarshalBinaryStatistics(b []byte) (*BinaryStatistics, error) {
	s := &BinaryStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			s.Sum, s.HasSum = zigzag64(v), true
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	return s, err
}

func unmarshalTimestampStatistics(b []byte) (*TimestampStatistics, error) {
	s := &TimestampStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			s.Minimum, s.HasMinimum = zigzag64(v), true
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			s.Maximum, s.HasMaximum = zigzag64(v), true
			return n, err
		default:
			return skipUnknown(num, typ, b)
		}
	})
	return s, err
}

func unmarshalRowIndexEntry(b []byte) (*RowIndexEntry, error) {
	e := &RowIndexEntry{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			if typ == protowire.BytesType {
				data, n, err := consumeBytes(b)
				if err != nil {
					return 0, err
				}
				vs, err := packedVarints(data)
				if err != nil {
					return 0, err
				}
				e.Positions = append(e.Positions, vs...)
				return n, nil
			}
			v, n, err := consumeVarint(b)
			e.Positions = append(e.Positions, v)
			return n, err
		case 2:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			cs, err := unmarshalColumnStatistics(data)
			if err != nil {
				return 0, err
			}
			e.Statistics = cs
			return n, nil
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func unmarshalRowIndex(b []byte) (*RowIndex, error) {
	idx := &RowIndex{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			e, err := unmarshalRowIndexEntry(data)
			if err != nil {
				return 0, err
			}
			idx.Entries = append(idx.Entries, e)
			return n, nil
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func unmarshalStripeStatistics(b []byte) (*StripeStatistics, error) {
	ss := &StripeStatistics{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			cs, err := unmarshalColumnStatistics(data)
			if err != nil {
				return 0, err
			}
			ss.ColumnStatistics = append(ss.ColumnStatistics, cs)
			return n, nil
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return ss, nil
}

func unmarshalMetadata(b []byte) (*Metadata, error) {
	m := &Metadata{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			data, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			ss, err := unmarshalStripeStatistics(data)
			if err != nil {
				return 0, err
			}
			m.StripeStats = append(m.StripeStats, ss)
			return n, nil
		default:
			return skipUnknown(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
