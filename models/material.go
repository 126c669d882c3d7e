package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialStatus string

const (
	MaterialUploaded   MaterialStatus = "uploaded"
	MaterialProcessing MaterialStatus = "processing"
	MaterialReady      MaterialStatus = "ready"
	MaterialFailed     MaterialStatus = "failed"
)

// Material is an uploaded reference document (PDF/DOCX/TXT). ExtractedText is
// filled in asynchronously and fed to the AI generation endpoints as context.
type Material struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	TeacherID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher       User           `gorm:"foreignKey:TeacherID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	FileURL       string         `gorm:"type:text" json:"file_url"`
	FileType      string         `gorm:"size:20" json:"file_type"`
	ExtractedText string         `gorm:"type:text" json:"extracted_text,omitempty"`
	Status        MaterialStatus `gorm:"type:varchar(20);default:'uploaded'" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
