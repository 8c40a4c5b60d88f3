package service

import (
	"FileVault/internal/repo"
	"FileVault/utils"
	"context"
	"errors"

	"go.uber.org/zap"
)

// ContentIndex answers "which record currently holds this content".
type ContentIndex struct {
	records *repo.RecordStore
	cache   *utils.HashIndexCache
	logger  *zap.Logger
}

// NewContentIndex creates an index over the record store. cache may be nil.
func NewContentIndex(records *repo.RecordStore, cache *utils.HashIndexCache, logger *zap.Logger) *ContentIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentIndex{records: records, cache: cache, logger: logger}
}

// LookupByHash returns the ID of the original record for hash, if any.
func (ci *ContentIndex) LookupByHash(ctx context.Context, hash string) (string, bool, error) {
	return ci.lookup(ctx, hash, true)
}

// lookup reads through the cache unless useCache is false. A cached ID is
// confirmed against the store before use; stale entries are dropped.
func (ci *ContentIndex) lookup(ctx context.Context, hash string, useCache bool) (string, bool, error) {
	if useCache {
		if id, ok := ci.cache.Get(ctx, hash); ok {
			rec, err := ci.records.GetByID(ctx, id)
			switch {
			case err == nil && rec.IsOriginal && rec.ContentHash == hash:
				return rec.ID, true, nil
			case err == nil || errors.Is(err, repo.ErrRecordNotFound):
				ci.forget(ctx, hash)
			default:
				return "", false, err
			}
		}
	}

	rec, err := ci.records.FindOriginalByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	ci.remember(ctx, hash, rec.ID)
	return rec.ID, true, nil
}

func (ci *ContentIndex) remember(ctx context.Context, hash, id string) {
	if err := ci.cache.Set(ctx, hash, id); err != nil {
		ci.logger.Debug("hash cache set failed", zap.String("hash", hash), zap.Error(err))
	}
}

func (ci *ContentIndex) forget(ctx context.Context, hash string) {
	if err := ci.cache.Invalidate(ctx, hash); err != nil {
		ci.logger.Warn("hash cache invalidate failed", zap.String("hash", hash), zap.Error(err))
	}
}
