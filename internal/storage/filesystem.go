package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// filesystemStorage keeps each blob as a file directly inside one directory.
type filesystemStorage struct {
	dir string
	log *zap.Logger
}

// NewFilesystem returns a Storage rooted at dir, creating the directory if it is missing.
func NewFilesystem(dir string, log *zap.Logger) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("documents directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve documents directory: %w", err)
	}

	if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("create documents directory: %w", err)
		}
		log.Info("documents folder created", zap.String("path", abs))
	} else if err != nil {
		return nil, fmt.Errorf("stat documents directory: %w", err)
	}

	return &filesystemStorage{dir: abs, log: log}, nil
}

func (s *filesystemStorage) path(key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, key), nil
}

// Put creates the file exclusively; a partially written file is removed on failure.
func (s *filesystemStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	p, err := s.path(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ObjectInfo{}, ErrObjectExists
		}
		return ObjectInfo{}, err
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && opt.Size >= 0 && n != opt.Size {
		err = fmt.Errorf("short write: wrote %d of %d bytes", n, opt.Size)
	}
	if err != nil {
		if rmErr := os.Remove(p); rmErr != nil {
			s.log.Warn("remove partial blob failed", zap.String("key", key), zap.Error(rmErr))
		}
		return ObjectInfo{}, err
	}

	st, err := os.Stat(p)
	if err != nil {
		return ObjectInfo{}, err
	}
	ct := opt.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(key))
	}
	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  ct,
		LastModified: st.ModTime(),
		Metadata:     opt.Metadata,
	}, nil
}

// Get opens the blob for reading. The caller closes the returned reader.
func (s *filesystemStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	return f, ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(key)),
		LastModified: st.ModTime(),
	}, nil
}

// Delete removes the blob. A missing blob yields ErrObjectNotFound.
func (s *filesystemStorage) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

func (s *filesystemStorage) Location() string {
	return s.dir
}
