package storage

import (
	"FileVault/internal/repo"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabaseStore(t *testing.T) *DatabaseStore {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewDatabaseStore(db)
}

func TestDatabaseStoreRoundTrip(t *testing.T) {
	s := newTestDatabaseStore(t)
	ctx := context.Background()
	data := []byte("hello world")

	require.NoError(t, s.PutObject(ctx, "files/h/1", bytes.NewReader(data), int64(len(data)), PutOptions{}))

	info, err := s.StatObject(ctx, "files/h/1")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), info.Size)

	rc, info, err := s.GetObject(ctx, "files/h/1")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, int64(len(data)), info.Size)
}

func TestDatabaseStoreEmptyObject(t *testing.T) {
	s := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutObject(ctx, "empty", bytes.NewReader(nil), 0, PutOptions{}))
	rc, info, err := s.GetObject(ctx, "empty")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int64(0), info.Size)
}

func TestDatabaseStoreSizeMismatch(t *testing.T) {
	s := newTestDatabaseStore(t)
	err := s.PutObject(context.Background(), "x", bytes.NewReader([]byte("abc")), 10, PutOptions{})
	assert.Error(t, err)

	_, err = s.StatObject(context.Background(), "x")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestDatabaseStoreRemove(t *testing.T) {
	s := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutObject(ctx, "gone", bytes.NewReader([]byte("x")), 1, PutOptions{}))
	require.NoError(t, s.RemoveObject(ctx, "gone"))
	require.NoError(t, s.RemoveObject(ctx, "gone"), "removing twice is fine")

	_, _, err := s.GetObject(ctx, "gone")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestDatabaseStoreOverwrite(t *testing.T) {
	s := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutObject(ctx, "k", bytes.NewReader([]byte("one")), 3, PutOptions{}))
	require.NoError(t, s.PutObject(ctx, "k", bytes.NewReader([]byte("three")), 5, PutOptions{}))

	info, err := s.StatObject(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
}
