package storage

import (
	"FileVault/config"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store with a MinIO bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore builds a Store from a MinIO client and bucket.
func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

func translateMinioError(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, resp.Key)
	}
	return err
}

// PutObject uploads an object to MinIO.
func (s *MinioStore) PutObject(ctx context.Context, object string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, s.bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return err
}

// GetObject fetches an object and its size from MinIO.
func (s *MinioStore) GetObject(ctx context.Context, object string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, translateMinioError(err)
	}
	stat, err := obj.Stat() // GetObject is lazy; Stat surfaces a missing key
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, translateMinioError(err)
	}
	return obj, ObjectInfo{ObjectName: object, Size: stat.Size}, nil
}

// StatObject returns object metadata.
func (s *MinioStore) StatObject(ctx context.Context, object string) (ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, s.bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, translateMinioError(err)
	}
	return ObjectInfo{ObjectName: object, Size: stat.Size}, nil
}

// RemoveObject deletes an object from MinIO.
func (s *MinioStore) RemoveObject(ctx context.Context, object string) error {
	return s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{})
}

// NewMinioStoreFromConfig connects to MinIO and creates the bucket when missing.
func NewMinioStoreFromConfig(ctx context.Context, cfg config.MinioConfig) (*MinioStore, error) {
	client, err := minio.New(fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Username, cfg.Password, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return NewMinioStore(client, cfg.Bucket), nil
}
