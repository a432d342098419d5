package compress

import (
	"testing"

	"github.com/nullable-io/orcreader/orc/datasource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, br *BlockReader) []byte {
	t.Helper()
	var out []byte
	for !br.EndOfStream() {
		b, err := br.ReadByte()
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestBlockReaderNoCompression(t *testing.T) {
	payload := make([]byte, 200)
	for i := range payload {
		payload[i] = byte(i)
	}
	framed := EncodeChunks(KindNone, payload, 60)
	ds := datasource.NewMemorySource(framed)
	br := NewBlockReader(ds, 0, int64(len(framed)), KindNone, 60)
	assert.Equal(t, payload, readAll(t, br))
}

func TestBlockReaderZlib(t *testing.T) {
	payload := make([]byte, 300)
	for i := 0; i < 100; i++ {
		payload[i] = 1
	}
	for i := 100; i < 300; i++ {
		payload[i] = byte(i)
	}
	framed := EncodeChunks(KindZlib, payload, 128)
	ds := datasource.NewMemorySource(framed)
	br := NewBlockReader(ds, 0, int64(len(framed)), KindZlib, 128)
	assert.Equal(t, payload, readAll(t, br))
}

func TestBlockReaderSnappy(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i % 7)
	}
	framed := EncodeChunks(KindSnappy, payload, 100)
	ds := datasource.NewMemorySource(framed)
	br := NewBlockReader(ds, 0, int64(len(framed)), KindSnappy, 100)
	assert.Equal(t, payload, readAll(t, br))
}

func TestBlockReaderSkipTo(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	framed := EncodeChunks(KindZlib, payload, 64)
	ds := datasource.NewMemorySource(framed)

	br := NewBlockReader(ds, 0, int64(len(framed)), KindZlib, 64)
	require.NoError(t, br.SkipTo(0, 10))
	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(10), b)
}

func TestBlockReaderSkip(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	framed := EncodeChunks(KindNone, payload, 64)
	ds := datasource.NewMemorySource(framed)

	br := NewBlockReader(ds, 0, int64(len(framed)), KindNone, 64)
	require.NoError(t, br.Skip(150))
	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(150), b)
}

func TestBlockReaderTruncatedHeader(t *testing.T) {
	ds := datasource.NewMemorySource([]byte{1, 2})
	br := NewBlockReader(ds, 0, 2, KindZlib, 64)
	_, err := br.ReadByte()
	require.Error(t, err)
	var malformed *MalformedError
	assert.ErrorAs(t, err, &malformed)
}
