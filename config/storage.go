package config

import (
	"strings"
	"sync"
)

const (
	StorageBackendDatabase = "database"
	StorageBackendMinio    = "minio"
)

// StorageConfig holds physical content storage settings.
type StorageConfig struct {
	Backend string      `json:"backend"` // database, minio
	Minio   MinioConfig `json:"minio"`
}

// MinioConfig describes the MinIO node holding original content.
type MinioConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseSSL   bool   `json:"use_ssl"`
	Bucket   string `json:"bucket"`
}

var StorageConfigInstance *StorageConfig
var storageConfigOnce sync.Once

// LoadStorageConfig reads storage settings from the environment.
func LoadStorageConfig() StorageConfig {
	backend := strings.ToLower(strings.TrimSpace(getEnv("STORAGE_BACKEND", StorageBackendDatabase)))
	if backend != StorageBackendMinio {
		backend = StorageBackendDatabase
	}
	return StorageConfig{
		Backend: backend,
		Minio: MinioConfig{
			Host:     getEnv("MINIO_HOST", "localhost"),
			Port:     getEnv("MINIO_PORT", "9000"),
			Username: getEnv("MINIO_USERNAME", "minioadmin"),
			Password: getEnv("MINIO_PASSWORD", "minioadmin"),
			UseSSL:   getEnvBool("MINIO_USE_SSL", false),
			Bucket:   getEnv("BUCKET_NAME", "file-vault"),
		},
	}
}

// InitStorageConfig initializes storage config.
func InitStorageConfig() {
	storageConfigOnce.Do(func() {
		cfg := LoadStorageConfig()
		StorageConfigInstance = &cfg
	})
}
