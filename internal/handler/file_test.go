package handler_test

import (
	"FileVault/config"
	"FileVault/internal/handler"
	"FileVault/internal/repo"
	"FileVault/internal/service"
	"FileVault/internal/storage"
	"FileVault/router"
	"FileVault/utils"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type envelope struct {
	Code     int             `json:"code"`
	Msg      string          `json:"msg"`
	Data     json.RawMessage `json:"data"`
	MaxSize  int64           `json:"max_size"`
	FileSize int64           `json:"file_size"`
}

type fileJSON struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Size            int64   `json:"size"`
	ContentType     string  `json:"content_type"`
	DownloadURL     string  `json:"download_url"`
	IsOriginal      bool    `json:"is_original"`
	OriginalFileURL *string `json:"original_file_url"`
}

func newTestRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	return newTestRouterWithStore(t, mutate, nil)
}

// newTestRouterWithStore lets wrap replace the object store built over the test database.
func newTestRouterWithStore(t *testing.T, mutate func(*config.Config), wrap func(storage.Store) storage.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Config{
		PublicBaseURL: "http://files.test",
		JWTSecret:     testSecret,
		AuthDisabled:  true,
		MaxUploadSize: 64,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	var objects storage.Store = storage.NewDatabaseStore(db)
	if wrap != nil {
		objects = wrap(objects)
	}
	svc := service.NewFileService(repo.NewRecordStore(db), objects, service.Options{
		MaxUploadSize: cfg.MaxUploadSize,
	})
	h := handler.NewFileHandler(svc, cfg.PublicBaseURL, zap.NewNop())
	return router.InitRouter(cfg, h, zap.NewNop())
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, name string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func upload(t *testing.T, r http.Handler, name, content string) fileJSON {
	t.Helper()
	w := do(r, uploadRequest(t, name, []byte(content)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var f fileJSON
	decode(t, w, &f)
	return f
}

func TestUploadAndDownload(t *testing.T) {
	r := newTestRouter(t, nil)

	a := upload(t, r, "a.txt", "hello")
	assert.True(t, a.IsOriginal)
	assert.Nil(t, a.OriginalFileURL)
	assert.Equal(t, "http://files.test/api/files/"+a.ID+"/download/", a.DownloadURL)
	assert.Equal(t, "text/plain", a.ContentType)

	b := upload(t, r, "b.txt", "hello")
	assert.False(t, b.IsOriginal)
	require.NotNil(t, b.OriginalFileURL)
	assert.Equal(t, a.DownloadURL, *b.OriginalFileURL)

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/files/"+b.ID+"/download/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, "5", w.Header().Get("Content-Length"))
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="b.txt"`, w.Header().Get("Content-Disposition"))

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/files/"+b.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got fileJSON
	decode(t, w, &got)
	assert.Equal(t, "b.txt", got.Name)
}

func TestUploadErrors(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/files", nil)
	w := do(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, uploadRequest(t, "max.bin", bytes.Repeat([]byte("m"), 64)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, uploadRequest(t, "big.bin", bytes.Repeat([]byte("b"), 65)))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, int64(64), env.MaxSize)
	assert.Equal(t, int64(65), env.FileSize)
}

type unreachableStore struct {
	storage.Store
}

func (unreachableStore) PutObject(context.Context, string, io.Reader, int64, storage.PutOptions) error {
	return errors.New("dial tcp 10.0.0.7:9000: connection refused (bucket secret-bucket)")
}

func TestUploadStorageFailureIsGeneric(t *testing.T) {
	r := newTestRouterWithStore(t, nil, func(s storage.Store) storage.Store {
		return unreachableStore{Store: s}
	})

	w := do(r, uploadRequest(t, "a.txt", []byte("hello")))
	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
	env := decode(t, w, nil)
	assert.Equal(t, http.StatusInternalServerError, env.Code)
	assert.Equal(t, "internal server error", env.Msg)
	assert.NotContains(t, w.Body.String(), "10.0.0.7")
	assert.NotContains(t, w.Body.String(), "secret-bucket")
}

func TestDeleteStatuses(t *testing.T) {
	r := newTestRouter(t, nil)

	a := upload(t, r, "a.txt", "shared")
	b := upload(t, r, "b.txt", "shared")

	w := do(r, httptest.NewRequest(http.MethodDelete, "/api/files/"+a.ID, nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, httptest.NewRequest(http.MethodDelete, "/api/files/"+b.ID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, httptest.NewRequest(http.MethodDelete, "/api/files/"+a.ID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, httptest.NewRequest(http.MethodDelete, "/api/files/"+a.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/files/"+a.ID+"/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndSavings(t *testing.T) {
	r := newTestRouter(t, nil)

	upload(t, r, "report.txt", "quarterly numbers")
	upload(t, r, "report-copy.txt", "quarterly numbers")
	upload(t, r, "photo.txt", "not really a photo")

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/files?search=REPORT&page_size=1", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Results     []fileJSON `json:"results"`
		Total       int64      `json:"total"`
		Pages       int        `json:"pages"`
		CurrentPage int        `json:"current_page"`
	}
	decode(t, w, &list)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 2, list.Pages)
	assert.Equal(t, 1, list.CurrentPage)
	require.Len(t, list.Results, 1)

	today := time.Now().UTC().Format("2006-01-02")
	w = do(r, httptest.NewRequest(http.MethodGet, "/api/files?date_from="+today+"&date_to="+today+"&min_size=18", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &list)
	assert.Equal(t, int64(1), list.Total)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/files?date_from=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, httptest.NewRequest(http.MethodGet, "/api/files?min_size=-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/files/storage_savings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var savings struct {
		BytesSaved         int64  `json:"bytes_saved"`
		HumanReadableSaved string `json:"human_readable_saved"`
		DuplicateCount     int64  `json:"duplicate_count"`
	}
	decode(t, w, &savings)
	assert.Equal(t, int64(17), savings.BytesSaved)
	assert.Equal(t, int64(1), savings.DuplicateCount)
	assert.Equal(t, "17 B", savings.HumanReadableSaved)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/files/verify", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		Healthy bool `json:"healthy"`
	}
	decode(t, w, &report)
	assert.True(t, report.Healthy)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) { c.AuthDisabled = false })

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "filevault_http_requests_total")
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) { c.AuthDisabled = false })

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	token, err := utils.GenerateToken(testSecret, "tester", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, do(r, req).Code)
}

func TestUploadRateLimit(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) {
		c.UploadRate = 0.001
		c.UploadBurst = 1
	})

	assert.Equal(t, http.StatusCreated, do(r, uploadRequest(t, "1.txt", []byte("one"))).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, uploadRequest(t, "2.txt", []byte("two"))).Code)
}
