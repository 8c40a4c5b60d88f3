package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when an object does not exist in the store.
var ErrObjectNotFound = errors.New("object not found")

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	ObjectName string
	Size       int64
}

// Store abstracts physical content storage. Objects are written whole:
// a reader never observes a partially written object.
type Store interface {
	PutObject(ctx context.Context, object string, reader io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, object string) (io.ReadCloser, ObjectInfo, error)
	StatObject(ctx context.Context, object string) (ObjectInfo, error)
	RemoveObject(ctx context.Context, object string) error
}

// Default is the main object store instance.
var Default Store
