package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Package storage contains blob storage abstractions with a local-directory backend and an
// S3-compatible (MinIO) backend. Keys are opaque, server-generated file names.

var (
	// ErrObjectNotFound is returned when no blob exists under the key.
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectExists is returned by Put when the key is already taken.
	ErrObjectExists = errors.New("object already exists")
	// ErrInvalidKey is returned for keys that are not a single plain name.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the blob store used for uploaded document files.
type Storage interface {
	// Put stores the reader's content under key. It never overwrites an existing blob.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves a blob's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes a blob by key.
	Delete(ctx context.Context, key string) error
	// Location describes where blobs live (a directory path or bucket URL).
	Location() string
}

// validKey reports whether key is a single path element that cannot escape the storage root.
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && filepath.Base(key) == key
}
