// Package orc is the top-level ORC/DWRF reader: Open parses a file's
// tail metadata, and RecordReader drives stripe/row-group selection and
// batch production over it. Grounded on goorc's orc/reader.go
// (extractFileTail's tail-read algorithm), generalized from its single
// hard-coded os.File to the datasource.DataSource abstraction and from
// its int/string-only WIP column support to the full column-reader tree
// in orc/column.
package orc

import (
	"time"

	"github.com/nullable-io/orcreader/orc/api"
	"github.com/nullable-io/orcreader/orc/compress"
	"github.com/nullable-io/orcreader/orc/config"
	"github.com/nullable-io/orcreader/orc/datasource"
	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// logger is this package's trace/debug sink, matching goorc's
// orc/package.go logger-per-package convention.
var logger = logrus.New()

// SetLogLevel adjusts this package's logging verbosity, e.g.
// logrus.TraceLevel to see every stripe/row-group rejected by statistics.
func SetLogLevel(level logrus.Level) {
	logger.SetLevel(level)
}

// directorySizeGuess is how many trailing bytes are read speculatively
// to cover postscript+footer+metadata without a second round trip for
// the common case, mirroring goorc's DIRECTORY_SIZE_GUESS.
const directorySizeGuess = 16 * 1024

// Reader holds one open file's parsed metadata: postscript, footer,
// schema tree, and dialect. It is the immutable handle RecordReader
// instances are created from; opening is a separate, possibly-expensive
// step from scanning so a caller can inspect the schema before deciding
// which columns and predicates to scan with.
type Reader struct {
	path   string
	ds     datasource.DataSource
	opts   *config.ReaderOptions
	closed bool

	postScript *meta.PostScript
	footer     *meta.Footer
	metadata   *meta.Metadata
	dialect    meta.Dialect
	metaReader meta.Reader
	schema     []*api.TypeDescription // flat, pre-order, index == column id
}

// Open opens path and parses its tail metadata.
func Open(path string, opts ...config.Option) (*Reader, error) {
	ds, err := datasource.OpenFile(path)
	if err != nil {
		return nil, &IoError{Path: path, Err: err}
	}
	r, err := OpenDataSource(path, ds, opts...)
	if err != nil {
		ds.Close()
		return nil, err
	}
	return r, nil
}

// OpenDataSource opens an already-constructed DataSource, the path the
// goorc's extractFileTail(f *os.File) also took before this reader
// generalized it.
func OpenDataSource(path string, ds datasource.DataSource, opts ...config.Option) (*Reader, error) {
	o := config.Apply(opts...)

	size := ds.Size()
	if size == 0 {
		return nil, &MalformedError{Path: path, Reason: "empty file"}
	}
	if size <= 3 {
		return nil, &MalformedError{Path: path, Reason: "too small to be a valid ORC file"}
	}

	readSize := size
	if readSize > directorySizeGuess {
		readSize = directorySizeGuess
	}
	tail, err := ds.ReadAt(size-readSize, readSize)
	if err != nil {
		return nil, &IoError{Path: path, Err: err}
	}

	if len(tail) == 0 {
		return nil, &MalformedError{Path: path, Reason: "empty tail read"}
	}
	psLen := int64(tail[len(tail)-1])
	psOffset := int64(len(tail)) - 1 - psLen
	if psOffset < 0 {
		// postscript longer than what we spec-ulatively read; re-read
		// exactly what's needed.
		if psLen+1 > size {
			return nil, &MalformedError{Path: path, Reason: "postscript length exceeds file size"}
		}
		tail, err = ds.ReadAt(size-psLen-1, psLen+1)
		if err != nil {
			return nil, &IoError{Path: path, Err: err}
		}
		psOffset = 0
		readSize = psLen + 1
	}

	dialectProbe := meta.NewReader(meta.DialectORC)
	ps, err := dialectProbe.ReadPostScript(tail[psOffset : psOffset+psLen])
	if err != nil {
		return nil, &MalformedError{Path: path, Reason: errors.Wrap(err, "postscript").Error()}
	}

	dialect := meta.DetectDialect(ps)
	metaReader := meta.NewReader(dialect)
	logger.WithFields(logrus.Fields{"path": path, "dialect": dialect}).Debug("orc: detected dialect")

	footerSize := int64(ps.FooterLength)
	metaSize := int64(ps.MetadataLength)

	extra := psLen + 1 + footerSize + metaSize - readSize
	if extra > 0 {
		more, err := ds.ReadAt(size-readSize-extra, extra)
		if err != nil {
			return nil, &IoError{Path: path, Err: err}
		}
		tail = append(more, tail...)
		psOffset += extra
		readSize += extra
	}

	footerStart := psOffset - footerSize
	if footerStart < 0 {
		return nil, &MalformedError{Path: path, Reason: "footer length exceeds available tail"}
	}
	footerBytes, err := decompressSection(path, ps, tail[footerStart:footerStart+footerSize])
	if err != nil {
		return nil, err
	}
	footer, err := metaReader.ReadFooter(footerBytes)
	if err != nil {
		return nil, &MalformedError{Path: path, Reason: errors.Wrap(err, "footer").Error()}
	}

	var metadata *meta.Metadata
	if metaSize > 0 {
		metaStart := footerStart - metaSize
		if metaStart < 0 {
			return nil, &MalformedError{Path: path, Reason: "metadata length exceeds available tail"}
		}
		metaBytes, err := decompressSection(path, ps, tail[metaStart:metaStart+metaSize])
		if err != nil {
			return nil, err
		}
		metadata, err = metaReader.ReadMetadata(metaBytes)
		if err != nil {
			return nil, &MalformedError{Path: path, Reason: errors.Wrap(err, "metadata").Error()}
		}
	}

	schema, err := buildSchema(footer)
	if err != nil {
		return nil, &MalformedError{Path: path, Reason: errors.Wrap(err, "type tree").Error()}
	}

	return &Reader{
		path:       path,
		ds:         ds,
		opts:       o,
		postScript: ps,
		footer:     footer,
		metadata:   metadata,
		dialect:    dialect,
		metaReader: metaReader,
		schema:     schema,
	}, nil
}

// decompressSection runs a footer/metadata byte range through the same
// chunked compression framing stripe data streams use - the footer and
// metadata sections are themselves compressed blocks - by wrapping it
// in a throwaway memory DataSource so compress.BlockReader can be reused
// rather than duplicating its chunk-framing logic.
func decompressSection(path string, ps *meta.PostScript, section []byte) ([]byte, error) {
	if ps.Compression == compress.KindNone {
		return section, nil
	}
	mem := datasource.NewMemorySource(section)
	br := compress.NewBlockReader(mem, 0, int64(len(section)), ps.Compression, int(ps.CompressionBlockSize))
	out, err := drainBlockReader(br)
	if err != nil {
		return nil, &DecompressError{Path: path, Err: err}
	}
	return out, nil
}

func drainBlockReader(br *compress.BlockReader) ([]byte, error) {
	var out []byte
	for !br.EndOfStream() {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func buildSchema(footer *meta.Footer) ([]*api.TypeDescription, error) {
	kinds := make([]api.Kind, len(footer.Types))
	subtypes := make([][]int, len(footer.Types))
	fieldNames := make([][]string, len(footer.Types))
	for i, t := range footer.Types {
		k, err := toAPIKind(t.Kind)
		if err != nil {
			return nil, err
		}
		kinds[i] = k
		ids := make([]int, len(t.Subtypes))
		for j, s := range t.Subtypes {
			ids[j] = int(s)
		}
		subtypes[i] = ids
		fieldNames[i] = t.FieldNames
	}
	return api.BuildTree(kinds, subtypes, fieldNames), nil
}

func toAPIKind(k meta.TypeKind) (api.Kind, error) {
	switch k {
	case meta.TypeBoolean:
		return api.KindBoolean, nil
	case meta.TypeByte:
		return api.KindByte, nil
	case meta.TypeShort:
		return api.KindShort, nil
	case meta.TypeInt:
		return api.KindInt, nil
	case meta.TypeLong:
		return api.KindLong, nil
	case meta.TypeFloat:
		return api.KindFloat, nil
	case meta.TypeDouble:
		return api.KindDouble, nil
	case meta.TypeString:
		return api.KindString, nil
	case meta.TypeBinary:
		return api.KindBinary, nil
	case meta.TypeTimestamp:
		return api.KindTimestamp, nil
	case meta.TypeList:
		return api.KindList, nil
	case meta.TypeMap:
		return api.KindMap, nil
	case meta.TypeStruct:
		return api.KindStruct, nil
	case meta.TypeUnion:
		return api.KindUnion, nil
	case meta.TypeDecimal:
		return api.KindDecimal, nil
	case meta.TypeDate:
		return api.KindDate, nil
	case meta.TypeVarchar:
		return api.KindVarchar, nil
	case meta.TypeChar:
		return api.KindChar, nil
	default:
		return 0, errors.Errorf("unknown wire type kind %d", k)
	}
}

// Schema returns the flat, column-id-indexed type tree parsed from the
// footer. Index 0 is always the top-level struct.
func (r *Reader) Schema() []*api.TypeDescription { return r.schema }

// NumRows returns the footer's declared total row count.
func (r *Reader) NumRows() uint64 { return r.footer.NumberOfRows }

// Dialect reports which wire-format variant this file was detected as.
func (r *Reader) Dialect() meta.Dialect { return r.dialect }

func (r *Reader) storageTimeZone() *time.Location {
	if r.opts.StorageTimeZone != nil {
		return r.opts.StorageTimeZone
	}
	return time.UTC
}

// Close releases the underlying DataSource. The Reader and any
// RecordReader built from it must not be used afterward.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return errors.WithStack(r.ds.Close())
}
