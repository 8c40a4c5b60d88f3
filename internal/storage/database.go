package storage

import (
	"FileVault/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseStore keeps object bytes in the content_blob table.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a Store over the given database.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// PutObject writes the whole object in one statement, replacing any previous bytes.
func (s *DatabaseStore) PutObject(ctx context.Context, object string, reader io.Reader, size int64, _ PutOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read object body: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("object %s: expected %d bytes, got %d", object, size, len(data))
	}
	blob := model.ContentBlob{
		ObjectName: object,
		Data:       data,
		Size:       int64(len(data)),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "object_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "size"}),
		}).
		Create(&blob).Error
}

// GetObject loads the object bytes.
func (s *DatabaseStore) GetObject(ctx context.Context, object string) (io.ReadCloser, ObjectInfo, error) {
	var blob model.ContentBlob
	if err := s.db.WithContext(ctx).Where("object_name = ?", object).First(&blob).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, object)
		}
		return nil, ObjectInfo{}, err
	}
	return io.NopCloser(bytes.NewReader(blob.Data)), ObjectInfo{ObjectName: object, Size: blob.Size}, nil
}

// StatObject returns object metadata without loading the bytes.
func (s *DatabaseStore) StatObject(ctx context.Context, object string) (ObjectInfo, error) {
	var blob model.ContentBlob
	err := s.db.WithContext(ctx).
		Select("object_name", "size").
		Where("object_name = ?", object).
		First(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, object)
		}
		return ObjectInfo{}, err
	}
	return ObjectInfo{ObjectName: blob.ObjectName, Size: blob.Size}, nil
}

// RemoveObject deletes the object. Removing a missing object is not an error.
func (s *DatabaseStore) RemoveObject(ctx context.Context, object string) error {
	return s.db.WithContext(ctx).Where("object_name = ?", object).Delete(&model.ContentBlob{}).Error
}
