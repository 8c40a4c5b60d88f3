package service

import (
	"FileVault/internal/metrics"
	"FileVault/internal/repo"
	"FileVault/internal/storage"
	"FileVault/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// MaxNameLength matches the width of file_record.name.
const MaxNameLength = 255

// ingestAttempts is the first try plus one retry after a lost race.
const ingestAttempts = 2

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// Ingest stores an uploaded file. New content becomes an original holding the
// bytes; known content becomes a duplicate referencing the current original.
// Nothing is visible to other callers until the record commits.
func (s *FileService) Ingest(ctx context.Context, r io.Reader, name string) (*model.FileRecord, error) {
	if err := validateName(name); err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, err
	}

	content, err := readContent(r, s.maxSize)
	if err != nil {
		result := metrics.ResultFailed
		if errors.Is(err, ErrPayloadTooLarge) {
			result = metrics.ResultRejected
		}
		metrics.IngestTotal.WithLabelValues(result).Inc()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, fmt.Errorf("%w: %w", ErrIngestionFailed, err)
	}
	contentType := DetectContentType(content.data)

	var lastErr error
	for attempt := 0; attempt < ingestAttempts; attempt++ {
		rec, err := s.ingestOnce(ctx, content, name, contentType, attempt == 0)
		if err == nil {
			result := metrics.ResultDuplicate
			if rec.IsOriginal {
				result = metrics.ResultOriginal
			}
			metrics.IngestTotal.WithLabelValues(result).Inc()
			s.logger.Info("file ingested",
				zap.String("id", rec.ID),
				zap.String("hash", rec.ContentHash),
				zap.Int64("size", rec.Size),
				zap.Bool("original", rec.IsOriginal),
			)
			s.notifyIndexed(ctx, rec)
			return rec, nil
		}
		if !errors.Is(err, errIngestConflict) {
			metrics.IngestTotal.WithLabelValues(metrics.ResultFailed).Inc()
			return nil, err
		}
		metrics.IngestConflicts.Inc()
		s.logger.Debug("ingest conflict, retrying",
			zap.String("hash", content.hash),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		lastErr = err
	}
	metrics.IngestTotal.WithLabelValues(metrics.ResultFailed).Inc()
	return nil, fmt.Errorf("ingest retry exhausted: %w", lastErr)
}

func (s *FileService) ingestOnce(ctx context.Context, content *uploadContent, name, contentType string, useCache bool) (*model.FileRecord, error) {
	originalID, found, err := s.index.lookup(ctx, content.hash, useCache)
	if err != nil {
		return nil, fmt.Errorf("lookup content: %w", err)
	}

	rec := &model.FileRecord{
		ID:          s.newID(),
		Name:        name,
		Size:        int64(len(content.data)),
		ContentType: contentType,
		ContentHash: content.hash,
	}

	if found {
		rec.IsOriginal = false
		rec.OriginalRef = &originalID
		if err := s.records.Create(ctx, rec); err != nil {
			if errors.Is(err, repo.ErrOriginalGone) {
				s.index.forget(ctx, content.hash)
				return nil, fmt.Errorf("%w: %w", errIngestConflict, err)
			}
			return nil, fmt.Errorf("create duplicate record: %w", err)
		}
		return rec, nil
	}

	hash := content.hash
	rec.IsOriginal = true
	rec.OriginalHash = &hash
	rec.ObjectName = BuildObjectName(content.hash, rec.ID)

	if err := s.objects.PutObject(ctx, rec.ObjectName, bytes.NewReader(content.data), rec.Size,
		storage.PutOptions{ContentType: contentType}); err != nil {
		s.discardObject(ctx, rec.ObjectName)
		return nil, fmt.Errorf("store content: %w", err)
	}
	if err := s.records.Create(ctx, rec); err != nil {
		s.discardObject(ctx, rec.ObjectName)
		if errors.Is(err, repo.ErrOriginalExists) {
			return nil, fmt.Errorf("%w: %w", errIngestConflict, err)
		}
		return nil, fmt.Errorf("create original record: %w", err)
	}
	s.index.remember(ctx, content.hash, rec.ID)
	return rec, nil
}

// discardObject removes content whose record never committed. It runs even
// when the request context is already cancelled.
func (s *FileService) discardObject(ctx context.Context, object string) {
	if err := s.objects.RemoveObject(context.WithoutCancel(ctx), object); err != nil {
		s.logger.Warn("remove orphaned object failed", zap.String("object", object), zap.Error(err))
	}
}
