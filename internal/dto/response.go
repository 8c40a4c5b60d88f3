package dto

import (
	"FileVault/internal/service"
	"FileVault/model"
	"time"
)

// FileResponse is the external representation of a record.
type FileResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Size            int64     `json:"size"`
	ContentType     string    `json:"content_type"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DownloadURL     string    `json:"download_url"`
	IsOriginal      bool      `json:"is_original"`
	OriginalFileURL *string   `json:"original_file_url"`
}

// DownloadURL is the download link for a record under baseURL.
func DownloadURL(baseURL, id string) string {
	return baseURL + "/api/files/" + id + "/download/"
}

// NewFileResponse renders a record; original_file_url is null for originals.
func NewFileResponse(rec *model.FileRecord, baseURL string) FileResponse {
	resp := FileResponse{
		ID:          rec.ID,
		Name:        rec.Name,
		Size:        rec.Size,
		ContentType: rec.ContentType,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		DownloadURL: DownloadURL(baseURL, rec.ID),
		IsOriginal:  rec.IsOriginal,
	}
	if !rec.IsOriginal && rec.OriginalRef != nil {
		u := DownloadURL(baseURL, *rec.OriginalRef)
		resp.OriginalFileURL = &u
	}
	return resp
}

type FileListResponse struct {
	Results     []FileResponse `json:"results"`
	Total       int64          `json:"total"`
	Pages       int            `json:"pages"`
	CurrentPage int            `json:"current_page"`
	PageSize    int            `json:"page_size"`
}

func NewFileListResponse(res *service.ListResult, baseURL string) FileListResponse {
	results := make([]FileResponse, 0, len(res.Records))
	for i := range res.Records {
		results = append(results, NewFileResponse(&res.Records[i], baseURL))
	}
	return FileListResponse{
		Results:     results,
		Total:       res.TotalCount,
		Pages:       res.PageCount,
		CurrentPage: res.Page,
		PageSize:    res.PageSize,
	}
}

type SavingsResponse struct {
	BytesSaved         int64  `json:"bytes_saved"`
	HumanReadableSaved string `json:"human_readable_saved"`
	DuplicateCount     int64  `json:"duplicate_count"`
}

func NewSavingsResponse(s *service.Savings) SavingsResponse {
	return SavingsResponse{
		BytesSaved:         s.BytesSaved,
		HumanReadableSaved: s.HumanReadable,
		DuplicateCount:     s.DuplicateCount,
	}
}
