package service

import (
	"FileVault/internal/metrics"
	"FileVault/internal/repo"
	"FileVault/internal/storage"
	"FileVault/model"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Content is a resolved file: the requested record and a stream of its bytes.
// The caller must close Reader.
type Content struct {
	Record *model.FileRecord
	Reader io.ReadCloser
	Size   int64
}

// GetFile loads a record's metadata.
func (s *FileService) GetFile(ctx context.Context, id string) (*model.FileRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return rec, nil
}

// ResolveContent returns the bytes of any record. A duplicate is followed
// exactly one hop to its original.
func (s *FileService) ResolveContent(ctx context.Context, id string) (*Content, error) {
	rec, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}

	holder, err := s.contentHolder(ctx, rec)
	if err != nil {
		return nil, err
	}

	reader, info, err := s.objects.GetObject(ctx, holder.ObjectName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, s.brokenReference(rec, "content object missing")
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	if info.Size != rec.Size {
		_ = reader.Close()
		return nil, s.brokenReference(rec, fmt.Sprintf("stored size %d differs from record size %d", info.Size, rec.Size))
	}
	return &Content{Record: rec, Reader: reader, Size: info.Size}, nil
}

// contentHolder returns the record whose object holds rec's bytes.
func (s *FileService) contentHolder(ctx context.Context, rec *model.FileRecord) (*model.FileRecord, error) {
	if rec.IsOriginal {
		if rec.ObjectName == "" {
			return nil, s.brokenReference(rec, "original has no content locator")
		}
		return rec, nil
	}
	if rec.OriginalRef == nil || *rec.OriginalRef == "" {
		return nil, s.brokenReference(rec, "duplicate has no original reference")
	}

	orig, err := s.records.GetByID(ctx, *rec.OriginalRef)
	if err != nil {
		if errors.Is(err, repo.ErrRecordNotFound) {
			return nil, s.brokenReference(rec, "referenced original does not exist")
		}
		return nil, err
	}
	switch {
	case !orig.IsOriginal:
		return nil, s.brokenReference(rec, "referenced record is not an original")
	case orig.ContentHash != rec.ContentHash:
		return nil, s.brokenReference(rec, "referenced original has different content")
	case orig.ObjectName == "":
		return nil, s.brokenReference(rec, "referenced original has no content locator")
	}
	return orig, nil
}

func (s *FileService) brokenReference(rec *model.FileRecord, reason string) error {
	metrics.BrokenReferences.Inc()
	var ref string
	if rec.OriginalRef != nil {
		ref = *rec.OriginalRef
	}
	s.logger.Error("broken content reference",
		zap.String("id", rec.ID),
		zap.String("original_ref", ref),
		zap.String("hash", rec.ContentHash),
		zap.String("reason", reason),
	)
	return fmt.Errorf("%w: record %s: %s", ErrBrokenReference, rec.ID, reason)
}
