package service

import (
	"FileVault/config"
	"FileVault/internal/repo"
	"FileVault/internal/storage"
	"FileVault/model"
	"FileVault/utils"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// indexTimeout bounds one search-index notification.
const indexTimeout = 5 * time.Second

// Options configures a FileService. Zero values fall back to defaults.
type Options struct {
	MaxUploadSize int64
	HashCache     *utils.HashIndexCache
	Indexer       SearchIndexer
	Logger        *zap.Logger
	NewID         func() string
}

// FileService implements ingestion, retrieval, deletion, listing and
// savings accounting over a record store and an object store.
type FileService struct {
	records *repo.RecordStore
	objects storage.Store
	index   *ContentIndex
	indexer SearchIndexer
	logger  *zap.Logger
	maxSize int64
	newID   func() string
}

// NewFileService wires a service from its stores.
func NewFileService(records *repo.RecordStore, objects storage.Store, opts Options) *FileService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxSize := opts.MaxUploadSize
	if maxSize <= 0 {
		maxSize = config.DefaultMaxUploadSize
	}
	indexer := opts.Indexer
	if indexer == nil {
		indexer = NopIndexer{}
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &FileService{
		records: records,
		objects: objects,
		index:   NewContentIndex(records, opts.HashCache, logger),
		indexer: indexer,
		logger:  logger,
		maxSize: maxSize,
		newID:   newID,
	}
}

// MaxUploadSize is the inclusive size limit for Ingest.
func (s *FileService) MaxUploadSize() int64 {
	return s.maxSize
}

// ContentIndex exposes the hash lookup used by Ingest.
func (s *FileService) ContentIndex() *ContentIndex {
	return s.index
}

// Health checks that the record store answers.
func (s *FileService) Health(ctx context.Context) error {
	if err := s.records.Ping(ctx); err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	return nil
}

// BuildObjectName builds the object path for an original's content.
func BuildObjectName(hash, recordID string) string {
	return fmt.Sprintf("files/%s/%s", hash, recordID)
}

func (s *FileService) notifyIndexed(ctx context.Context, rec *model.FileRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := s.indexer.IndexFile(ctx, model.NewFileDocument(rec)); err != nil {
		s.logger.Warn("search index update failed", zap.String("id", rec.ID), zap.Error(err))
	}
}

func (s *FileService) notifyRemoved(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := s.indexer.RemoveFile(ctx, id); err != nil {
		s.logger.Warn("search index removal failed", zap.String("id", id), zap.Error(err))
	}
}
