package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorage_EmptyBasePath(t *testing.T) {
	_, err := NewStorage("")
	assert.Error(t, err)
}

func TestStorage_SaveGetDelete(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	data := []byte("fake image bytes")

	require.NoError(t, s.Save("book-abc", data))
	assert.True(t, s.Exists("book-abc"))

	got, err := s.Get("book-abc")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, s.Delete("book-abc"))
	assert.False(t, s.Exists("book-abc"))

	_, err = s.Get("book-abc")
	assert.Error(t, err)
}

func TestStorage_SaveValidation(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Save("", []byte("data")))
	assert.Error(t, s.Save("book-abc", nil))
}

func TestStorage_DeleteMissingIsNoop(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, s.Delete("book-missing"))
}

func TestStorage_Hash(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("book-abc", []byte("fake image bytes")))

	h1, err := s.Hash("book-abc")
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, err := s.Hash("book-abc")
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
