package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docrepo/internal/config"
)

func newTestFS(t *testing.T) (Storage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "documents")
	s, err := NewFilesystem(dir, zap.NewNop())
	require.NoError(t, err)
	return s, dir
}

func TestNewFilesystem_CreatesDirectory(t *testing.T) {
	s, dir := newTestFS(t)

	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
	assert.Equal(t, dir, s.Location())

	_, err = NewFilesystem("", zap.NewNop())
	assert.Error(t, err)
}

func TestFilesystem_PutGetDelete(t *testing.T) {
	s, dir := newTestFS(t)
	ctx := context.Background()

	info, err := s.Put(ctx, "a.pdf", strings.NewReader("%PDF-1.4"), PutObjectOptions{Size: 8})
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", info.Key)
	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)

	rc, got, err := s.Get(ctx, "a.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, int64(8), got.Size)

	require.NoError(t, s.Delete(ctx, "a.pdf"))
	_, err = os.Stat(filepath.Join(dir, "a.pdf"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.ErrorIs(t, s.Delete(ctx, "a.pdf"), ErrObjectNotFound)
	_, _, err = s.Get(ctx, "a.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestFilesystem_PutNeverOverwrites(t *testing.T) {
	s, _ := newTestFS(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "x.doc", strings.NewReader("one"), PutObjectOptions{Size: -1})
	require.NoError(t, err)

	_, err = s.Put(ctx, "x.doc", strings.NewReader("two"), PutObjectOptions{Size: -1})
	assert.ErrorIs(t, err, ErrObjectExists)

	rc, _, err := s.Get(ctx, "x.doc")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "one", string(body))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestFilesystem_PutRemovesPartialFile(t *testing.T) {
	s, dir := newTestFS(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "broken.pdf", failingReader{}, PutObjectOptions{Size: -1})
	assert.Error(t, err)

	_, err = s.Put(ctx, "short.pdf", strings.NewReader("abc"), PutObjectOptions{Size: 10})
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFilesystem_InvalidKeys(t *testing.T) {
	s, _ := newTestFS(t)
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../etc/passwd", "sub/file.pdf", `sub\file.pdf`} {
		t.Run(key, func(t *testing.T) {
			_, err := s.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{Size: -1})
			assert.ErrorIs(t, err, ErrInvalidKey)
			_, _, err = s.Get(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey)
			assert.ErrorIs(t, s.Delete(ctx, key), ErrInvalidKey)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("filesystem", func(t *testing.T) {
		dir := t.TempDir()
		s, err := New(config.StorageConfig{Driver: DriverFilesystem, Dir: dir}, config.MinIOConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, dir, s.Location())
	})

	t.Run("minio without endpoint", func(t *testing.T) {
		_, err := New(config.StorageConfig{Driver: DriverMinIO}, config.MinIOConfig{}, zap.NewNop())
		assert.EqualError(t, err, "minio endpoint is required")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := New(config.StorageConfig{Driver: "ftp"}, config.MinIOConfig{}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestNewMinIO_Validation(t *testing.T) {
	_, err := NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "minio credentials are required")

	_, err = NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.EqualError(t, err, "minio bucket is required")
}
