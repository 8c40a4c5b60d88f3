package model

import "time"

// ContentBlob holds physical file bytes when the database storage backend is used.
type ContentBlob struct {
	ObjectName string `gorm:"primaryKey;column:object_name;size:512"`

	Data []byte `gorm:"column:data"`
	Size int64  `gorm:"column:size;not null"`

	CreatedAt time.Time
}

// TableName returns the database table name.
func (ContentBlob) TableName() string {
	return "content_blob"
}
