package model

import "time"

// FileDocument is the searchable projection of a FileRecord.
type FileDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ContentHash string    `json:"content_hash"`
	IsOriginal  bool      `json:"is_original"`
	CreatedAt   time.Time `json:"created_at"`
	Extension   string    `json:"extension"`
}

// NewFileDocument builds the search document for a record.
func NewFileDocument(r *FileRecord) FileDocument {
	return FileDocument{
		ID:          r.ID,
		Name:        r.Name,
		Size:        r.Size,
		ContentType: r.ContentType,
		ContentHash: r.ContentHash,
		IsOriginal:  r.IsOriginal,
		CreatedAt:   r.CreatedAt,
		Extension:   r.Extension(),
	}
}
