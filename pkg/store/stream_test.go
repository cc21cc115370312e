package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStream(t *testing.T, data string) *stream {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream")
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	s := newStream(f, 16)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStreamWriteAfterReadAhead(t *testing.T) {
	s := openStream(t, "abcdef")

	head := make([]byte, 2)
	_, err := io.ReadFull(s, head)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(head))
	assert.Equal(t, int64(2), s.Offset())

	_, err = s.Write([]byte("XY"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Buffered())
	assert.Equal(t, int64(4), s.Offset())

	_, err = s.Seek(0, io.SeekStart)
	require.NoError(t, err)

	all := make([]byte, 6)
	_, err = io.ReadFull(s, all)
	require.NoError(t, err)
	assert.Equal(t, "abXYef", string(all))
}

func TestStreamReadFlushesWrites(t *testing.T) {
	s := openStream(t, "0123456789")

	_, err := s.Write([]byte("ab"))
	require.NoError(t, err)

	rest := make([]byte, 3)
	_, err = io.ReadFull(s, rest)
	require.NoError(t, err)
	assert.Equal(t, "234", string(rest))
	assert.Zero(t, s.Buffered())

	n, err := s.Discard(3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(8), s.Offset())

	_, err = s.Discard(5)
	assert.Equal(t, io.EOF, err)
}
