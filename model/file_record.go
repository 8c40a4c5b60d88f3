package model

import (
	"path"
	"strings"
	"time"
)

// FileRecord is one uploaded file, either the original holder of a content
// hash or a duplicate pointing at that original.
type FileRecord struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Name        string `gorm:"column:name;size:255;not null;index" json:"name"`
	Size        int64  `gorm:"column:size;not null" json:"size"`
	ContentType string `gorm:"column:content_type;size:100;not null;index" json:"content_type"`
	ContentHash string `gorm:"column:content_hash;size:64;not null;index" json:"content_hash"`

	IsOriginal bool `gorm:"column:is_original;not null;default:false" json:"is_original"`

	// OriginalHash mirrors ContentHash on originals and stays NULL on
	// duplicates; the unique index over it allows one original per hash.
	OriginalHash *string `gorm:"column:original_hash;size:64;uniqueIndex:uk_original_hash" json:"-"`

	// ObjectName locates the physical content. Originals only.
	ObjectName string `gorm:"column:object_name;size:512;not null;default:''" json:"-"`

	OriginalRef *string     `gorm:"column:original_ref;size:36;index" json:"original_ref,omitempty"`
	Original    *FileRecord `gorm:"foreignKey:OriginalRef;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (FileRecord) TableName() string {
	return "file_record"
}

// Extension returns the lower-cased extension of the file name without the dot.
func (r *FileRecord) Extension() string {
	ext := path.Ext(r.Name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

/*
A record is original or duplicate for its whole life:
original  -> OriginalHash = &ContentHash, ObjectName set, OriginalRef nil
duplicate -> OriginalHash nil, ObjectName empty, OriginalRef = original's ID
*/
