package service

import (
	"errors"
	"fmt"
)

var (
	ErrPayloadTooLarge       = errors.New("payload too large")
	ErrNotFound              = errors.New("file not found")
	ErrOriginalHasDependents = errors.New("original file still has duplicates")
	ErrBrokenReference       = errors.New("broken content reference")
	ErrIngestionFailed       = errors.New("ingestion failed")
	ErrInvalidName           = errors.New("invalid file name")
)

// PayloadTooLargeError carries the limit that was exceeded. Size is the number
// of bytes observed before reading stopped, so it is a lower bound.
type PayloadTooLargeError struct {
	Limit int64
	Size  int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload too large: %d bytes exceeds limit of %d", e.Size, e.Limit)
}

func (e *PayloadTooLargeError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}

// errIngestConflict marks an attempt that lost a race on the content hash.
var errIngestConflict = errors.New("concurrent ingest conflict")
