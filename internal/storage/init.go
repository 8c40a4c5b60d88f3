package storage

import (
	"FileVault/config"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Open builds the object store selected by the storage configuration.
func Open(ctx context.Context, sc config.StorageConfig, db *gorm.DB) (Store, error) {
	switch sc.Backend {
	case config.StorageBackendMinio:
		return NewMinioStoreFromConfig(ctx, sc.Minio)
	case config.StorageBackendDatabase, "":
		return NewDatabaseStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", sc.Backend)
	}
}

// InitStorage initializes the default object store.
func InitStorage(ctx context.Context, db *gorm.DB) error {
	config.InitStorageConfig()
	store, err := Open(ctx, *config.StorageConfigInstance, db)
	if err != nil {
		return err
	}
	Default = store
	return nil
}
