package datasource

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySourceReadAt(t *testing.T) {
	src := NewMemorySource([]byte("hello world"))
	assert.Equal(t, int64(11), src.Size())

	got, err := src.ReadAt(6, 5)
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))
	require.NoError(t, src.Close())
}

func TestMemorySourceOutOfBounds(t *testing.T) {
	src := NewMemorySource([]byte("abc"))
	_, err := src.ReadAt(1, 10)
	assert.Error(t, err)
}

func TestMemorySourceIsZeroCopy(t *testing.T) {
	data := []byte("abcdef")
	src := NewMemorySource(data)
	got, err := src.ReadAt(0, 3)
	require.NoError(t, err)
	data[0] = 'z'
	assert.Equal(t, byte('z'), got[0])
}

func TestOpenFileReadAt(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "datasource")
	require.NoError(t, err)
	_, err = f.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	src, err := OpenFile(f.Name())
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, int64(10), src.Size())
	got, err := src.ReadAt(2, 4)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(got))
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile("/nonexistent/path/does/not/exist")
	assert.Error(t, err)
}

func TestOpenFileShortRead(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "datasource")
	require.NoError(t, err)
	_, err = f.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	src, err := OpenFile(f.Name())
	require.NoError(t, err)
	defer src.Close()

	_, err = src.ReadAt(0, 10)
	assert.Error(t, err)
}
