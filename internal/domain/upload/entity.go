// internal/domain/upload/entity.go
package upload

import (
	"time"

	"gorm.io/gorm"
)

// UploadedFile represents an uploaded catalog image
type UploadedFile struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OriginalName string         `gorm:"not null;size:255" json:"original_name"`
	Filename     string         `gorm:"not null;size:255;uniqueIndex" json:"filename"`
	URL          string         `gorm:"not null;size:500" json:"url"`
	MimeType     string         `gorm:"not null;size:100" json:"mime_type"`
	Size         int64          `gorm:"not null" json:"size"`
	UploadedBy   int64          `gorm:"not null;index" json:"uploaded_by"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (UploadedFile) TableName() string { return "uploaded_files" }
