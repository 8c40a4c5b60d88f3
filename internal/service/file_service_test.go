package service

import (
	"FileVault/internal/repo"
	"FileVault/internal/storage"
	"FileVault/model"
	"FileVault/utils"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc     *FileService
	records *repo.RecordStore
	objects storage.Store
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	records := repo.NewRecordStore(db)
	objects := storage.NewDatabaseStore(db)
	return &testEnv{
		svc:     NewFileService(records, objects, opts),
		records: records,
		objects: objects,
	}
}

func (e *testEnv) ingest(t *testing.T, content, name string) *model.FileRecord {
	t.Helper()
	rec, err := e.svc.Ingest(context.Background(), strings.NewReader(content), name)
	require.NoError(t, err)
	return rec
}

func (e *testEnv) read(t *testing.T, id string) []byte {
	t.Helper()
	c, err := e.svc.ResolveContent(context.Background(), id)
	require.NoError(t, err)
	defer c.Reader.Close()
	data, err := io.ReadAll(c.Reader)
	require.NoError(t, err)
	return data
}

// recordingIndexer captures index events; fail makes every call error.
type recordingIndexer struct {
	mu      sync.Mutex
	fail    bool
	indexed []string
	removed []string
}

func (r *recordingIndexer) IndexFile(_ context.Context, doc model.FileDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("index unavailable")
	}
	r.indexed = append(r.indexed, doc.ID)
	return nil
}

func (r *recordingIndexer) RemoveFile(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("index unavailable")
	}
	r.removed = append(r.removed, id)
	return nil
}

// hookStore runs beforePut ahead of every PutObject and fails it with putErr when set.
type hookStore struct {
	storage.Store
	beforePut func(object string)
	putErr    error
}

func (h *hookStore) PutObject(ctx context.Context, object string, r io.Reader, size int64, opts storage.PutOptions) error {
	if h.beforePut != nil {
		h.beforePut(object)
	}
	if h.putErr != nil {
		return h.putErr
	}
	return h.Store.PutObject(ctx, object, r, size, opts)
}

// memCache is an in-process utils.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}}
}

func (m *memCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return utils.ErrCacheMiss
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(data)
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func storagePut() storage.PutOptions {
	return storage.PutOptions{ContentType: "text/plain"}
}

func recordFilterAll() repo.RecordFilter {
	return repo.RecordFilter{}
}
