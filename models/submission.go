package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Answers is a JSON object keyed by question id, value = the submitted text
// (for MCQ, the chosen option string).
type Submission struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	AssessmentID uuid.UUID        `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Assessment   Assessment       `gorm:"foreignKey:AssessmentID;references:ID;constraint:OnDelete:CASCADE;" json:"assessment"`
	StudentID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"student_id"`
	Student      User             `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE;" json:"student"`
	Answers      datatypes.JSON   `gorm:"type:jsonb" json:"answers"`
	Status       SubmissionStatus `gorm:"type:varchar(20);default:'submitted'" json:"status"`
	SubmittedAt  time.Time        `gorm:"autoCreateTime" json:"submitted_at"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
