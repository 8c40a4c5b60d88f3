package handler

import (
	"FileVault/internal/dto"
	"FileVault/internal/service"
	"FileVault/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead is headroom for multipart framing around the file part.
const multipartOverhead = 1 << 20

type FileHandler struct {
	svc     *service.FileService
	baseURL string
	logger  *zap.Logger
}

// NewFileHandler creates the file handlers. An empty baseURL means links are
// built from the incoming request.
func NewFileHandler(svc *service.FileService, baseURL string, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{svc: svc, baseURL: baseURL, logger: logger}
}

func (h *FileHandler) base(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// logged and reported without detail.
func (h *FileHandler) writeError(c *gin.Context, err error) {
	var tooLarge *service.PayloadTooLargeError
	switch {
	case errors.As(err, &tooLarge):
		utils.Fail(c, http.StatusRequestEntityTooLarge, "file size exceeds maximum limit",
			gin.H{"max_size": tooLarge.Limit, "file_size": tooLarge.Size})
	case errors.Is(err, service.ErrNotFound):
		utils.Fail(c, http.StatusNotFound, "file not found")
	case errors.Is(err, service.ErrOriginalHasDependents):
		utils.Fail(c, http.StatusConflict, "file has duplicates referencing it; delete them first")
	case errors.Is(err, service.ErrInvalidName):
		utils.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrIngestionFailed):
		h.logger.Warn("upload read failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.Fail(c, http.StatusBadRequest, "upload failed")
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// Upload handles POST /api/files with a multipart "file" field.
func (h *FileHandler) Upload(c *gin.Context) {
	maxSize := h.svc.MaxUploadSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.Fail(c, http.StatusRequestEntityTooLarge, "file size exceeds maximum limit",
				gin.H{"max_size": maxSize, "file_size": c.Request.ContentLength})
			return
		}
		utils.Fail(c, http.StatusBadRequest, "no file provided")
		return
	}
	if header.Size > maxSize {
		h.writeError(c, &service.PayloadTooLargeError{Limit: maxSize, Size: header.Size})
		return
	}

	f, err := header.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()

	rec, err := h.svc.Ingest(c.Request.Context(), f, header.Filename)
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, dto.NewFileResponse(rec, h.base(c)))
}

// List handles GET /api/files.
func (h *FileHandler) List(c *gin.Context) {
	var q dto.ListFilesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}
	filter, err := q.Filter()
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.List(c.Request.Context(), filter, q.Page, q.PageSize)
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, dto.NewFileListResponse(res, h.base(c)))
}

// Get handles GET /api/files/:id.
func (h *FileHandler) Get(c *gin.Context) {
	rec, err := h.svc.GetFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, dto.NewFileResponse(rec, h.base(c)))
}

// Download streams a record's content as an attachment.
func (h *FileHandler) Download(c *gin.Context) {
	content, err := h.svc.ResolveContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer content.Reader.Close()

	rec := content.Record
	c.DataFromReader(http.StatusOK, content.Size, rec.ContentType, content.Reader, map[string]string{
		"Content-Disposition": utils.ContentDisposition(rec.Name),
	})
}

// Delete handles DELETE /api/files/:id.
func (h *FileHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StorageSavings reports bytes avoided through deduplication.
func (h *FileHandler) StorageSavings(c *gin.Context) {
	savings, err := h.svc.ComputeSavings(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, dto.NewSavingsResponse(savings))
}

// Verify runs the consistency audit.
func (h *FileHandler) Verify(c *gin.Context) {
	report, err := h.svc.Verify(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, report)
}

// Health reports whether the database answers.
func (h *FileHandler) Health(c *gin.Context) {
	if err := h.svc.Health(c.Request.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		utils.Fail(c, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	utils.Success(c, gin.H{"status": "healthy"})
}
