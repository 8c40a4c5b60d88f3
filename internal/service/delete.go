package service

import (
	"FileVault/internal/repo"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Delete removes a record. An original that duplicates still reference is
// refused with ErrOriginalHasDependents; delete the duplicates first.
func (s *FileService) Delete(ctx context.Context, id string) error {
	deleted, err := s.records.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrRecordNotFound):
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		case errors.Is(err, repo.ErrHasDependents):
			return fmt.Errorf("%w: %s", ErrOriginalHasDependents, id)
		default:
			return err
		}
	}

	if deleted.IsOriginal {
		s.index.forget(ctx, deleted.ContentHash)
		if deleted.ObjectName != "" {
			if err := s.objects.RemoveObject(context.WithoutCancel(ctx), deleted.ObjectName); err != nil {
				// The record is gone, so the object is unreachable either way.
				s.logger.Warn("remove content object failed",
					zap.String("id", deleted.ID),
					zap.String("object", deleted.ObjectName),
					zap.Error(err),
				)
			}
		}
	}
	s.logger.Info("file deleted", zap.String("id", deleted.ID), zap.Bool("original", deleted.IsOriginal))
	s.notifyRemoved(ctx, deleted.ID)
	return nil
}

// DependentCount reports how many duplicates reference a record.
func (s *FileService) DependentCount(ctx context.Context, id string) (int64, error) {
	return s.records.CountDependents(ctx, id)
}
